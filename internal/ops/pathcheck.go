package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/ytnb/internal/config"
	"github.com/hpungsan/ytnb/internal/errors"
)

// ReportExtensions are the file extensions a report may be written with.
var ReportExtensions = []string{".md", ".html"}

// ValidateReportPath checks that a report destination is safe to write:
//   - no ".." components
//   - a .md or .html extension
//   - directly inside ~/.ytnb/reports or an allowed_paths entry, never in a subdirectory
//   - neither the parent directory nor the file itself is a symlink
//
// Requiring the file to sit directly in an allowed directory leaves no
// intermediate directory to swap for a symlink between this check and the open,
// which uses O_NOFOLLOW for the final component.
func ValidateReportPath(path string, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidInput("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidInput("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if !slices.Contains(ReportExtensions, strings.ToLower(filepath.Ext(cleaned))) {
		return errors.NewInvalidInput(fmt.Sprintf("path must have one of the extensions %v", ReportExtensions))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidInput(fmt.Sprintf("invalid path: %v", err))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		allowed, err := allowedDirs(cfg)
		if err != nil {
			return err
		}
		parent := filepath.Dir(absPath)
		if !slices.Contains(allowed, filepath.Clean(parent)) {
			return errors.NewInvalidInput(
				fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v", allowed))
		}
		if info, err := os.Lstat(parent); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidInput("parent directory must not be a symlink")
		}
	}

	// Symlink files are rejected even with allow_unsafe_paths.
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidInput("path must not be a symlink")
	}
	return nil
}

// allowedDirs returns ~/.ytnb/reports plus the absolute allowed_paths entries,
// with symlinked entries resolved to their targets.
func allowedDirs(cfg *config.Config) ([]string, error) {
	reports, err := DefaultReportsDir()
	if err != nil {
		return nil, err
	}
	dirs := []string{reports}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	result := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, errors.NewInvalidInput(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidInput(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		result = append(result, abs)
	}
	return result, nil
}

// DefaultReportsDir returns ~/.ytnb/reports.
func DefaultReportsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(home, config.DirName, "reports"), nil
}

func containsTraversal(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return true
		}
	}
	return false
}

// SanitizeForFilename makes s safe as a single file name component.
func SanitizeForFilename(s string) string {
	s = strings.NewReplacer("/", "-", "\\", "-", "..", "-").Replace(s)

	var b strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}
	s = b.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(strings.TrimSpace(s), "-")
	if s == "" {
		s = "unnamed"
	}
	return s
}
