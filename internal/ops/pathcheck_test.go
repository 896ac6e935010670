package ops

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hpungsan/ytnb/internal/config"
	"github.com/hpungsan/ytnb/internal/errors"
)

func TestValidateReportPath_TraversalRejected(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../report.md"},
		{"deep traversal", "../../etc/report.md"},
		{"mid-path traversal", "/tmp/../etc/report.md"},
		{"hidden in path", "/tmp/safe/../../../etc/shadow.html"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateReportPath(tc.path, cfg)
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got: %v", err)
			}
		})
	}
}

func TestValidateReportPath_Extension(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	dir := t.TempDir()

	for _, name := range []string{"report", "report.txt", "report.jsonl", "report.md.sh"} {
		t.Run(name, func(t *testing.T) {
			err := ValidateReportPath(filepath.Join(dir, name), cfg)
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got: %v", err)
			}
		})
	}
	for _, name := range []string{"report.md", "report.html", "REPORT.MD"} {
		t.Run(name, func(t *testing.T) {
			if err := ValidateReportPath(filepath.Join(dir, name), cfg); err != nil {
				t.Errorf("expected valid, got: %v", err)
			}
		})
	}
}

func TestValidateReportPath_AllowedDirectories(t *testing.T) {
	allowed := t.TempDir()
	other := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	if err := ValidateReportPath(filepath.Join(allowed, "r.md"), cfg); err != nil {
		t.Errorf("file directly in allowed dir should pass: %v", err)
	}
	if err := ValidateReportPath(filepath.Join(allowed, "sub", "r.md"), cfg); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("subdirectory should be rejected, got: %v", err)
	}
	if err := ValidateReportPath(filepath.Join(other, "r.md"), cfg); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("unlisted dir should be rejected, got: %v", err)
	}

	cfg.AllowUnsafePaths = true
	if err := ValidateReportPath(filepath.Join(other, "r.md"), cfg); err != nil {
		t.Errorf("allow_unsafe_paths should lift directory checks: %v", err)
	}
}

func TestValidateReportPath_SymlinkRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target.md")
	if err := os.WriteFile(target, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.md")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	if err := ValidateReportPath(link, cfg); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected symlink rejection even in unsafe mode, got: %v", err)
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"YT-abc - Title", "YT-abc - Title"},
		{"../../etc/passwd", "etc-passwd"},
		{"a/b\\c", "a-b-c"},
		{"tab\there", "tabhere"},
		{"---", "unnamed"},
		{"", "unnamed"},
	}
	for _, tc := range tests {
		if got := SanitizeForFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeForFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
