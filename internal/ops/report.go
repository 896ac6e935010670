package ops

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/notebooklm"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Notebook string // required, notebook id or NotebookLM URL
	Path     string // optional, default: ~/.ytnb/reports/<title>-<timestamp>.md
	HTML     bool   // default path gets .html; an explicit Path decides by its extension
}

// ReportOutput contains the result of the Report operation.
type ReportOutput struct {
	NotebookID string `json:"notebook_id"`
	Path       string `json:"path"`
	Format     string `json:"format"` // "markdown" or "html"
	Bytes      int    `json:"bytes"`
}

// Report downloads the notebook's report and writes it to a local file,
// as markdown or rendered to HTML.
func Report(ctx context.Context, env Env, input ReportInput) (*ReportOutput, error) {
	nb, err := FindNotebook(ctx, env.Client, input.Notebook)
	if err != nil {
		return nil, err
	}
	cfg := env.config()

	dest := input.Path
	if dest == "" {
		dest, err = defaultReportPath(nb, input.HTML, time.Now())
		if err != nil {
			return nil, err
		}
	}
	// Default paths are validated too: the notebook title ends up in the file name.
	if err := ValidateReportPath(dest, cfg); err != nil {
		return nil, err
	}
	asHTML := strings.EqualFold(filepath.Ext(dest), ".html")

	markdown, err := downloadReport(ctx, env.Client, nb.ID)
	if err != nil {
		return nil, err
	}

	content := markdown
	format := "markdown"
	if asHTML {
		content, err = renderReportHTML(nb.Title, markdown)
		if err != nil {
			return nil, err
		}
		format = "html"
	}

	if err := writeFileAtomic(dest, content); err != nil {
		return nil, err
	}
	env.Reporter.Status(MarkOK, "Report", "saved to "+dest)
	logFrom(ctx).InfoContext(ctx, "report saved", "notebook_id", nb.ID, "path", dest, "format", format)

	return &ReportOutput{
		NotebookID: nb.ID,
		Path:       dest,
		Format:     format,
		Bytes:      len(content),
	}, nil
}

// downloadReport has the notebooklm tool write the report into a private
// temporary directory and reads it back.
func downloadReport(ctx context.Context, client notebooklm.Client, notebookID string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "ytnb-report-")
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create temp dir: %w", err))
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "report.md")
	if err := client.DownloadReport(ctx, notebookID, path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewRemote("download report", "no report was written", err)
		}
		return nil, errors.NewInternal(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewRemote("download report", "report is empty", nil)
	}
	return data, nil
}

func renderReportHTML(title string, markdown []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert(markdown, &body); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("render report: %w", err))
	}
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(title))
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body.Bytes())
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// defaultReportPath returns ~/.ytnb/reports/<title>-<timestamp>.<ext>.
func defaultReportPath(nb notebooklm.Notebook, asHTML bool, now time.Time) (string, error) {
	dir, err := DefaultReportsDir()
	if err != nil {
		return "", err
	}
	name := nb.Title
	if name == "" {
		name = nb.ID
	}
	ext := ".md"
	if asHTML {
		ext = ".html"
	}
	filename := fmt.Sprintf("%s-%s%s", SanitizeForFilename(name), now.Format("2006-01-02T150405"), ext)
	return filepath.Join(dir, filename), nil
}

// writeFileAtomic writes content to a temp file next to dest and renames it
// into place, so an existing dest survives a failed write.
func writeFileAtomic(dest string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create report directory: %w", err))
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := dest + "." + hex.EncodeToString(suffix) + ".tmp"
	file, err := createNoFollow(tempPath, 0600)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to create report file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(content); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close report file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink placed at dest after validation.
	if info, err := os.Lstat(dest); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidInput("report path is a symlink")
	}
	if err := os.Rename(tempPath, dest); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(dest); statErr == nil {
				return errors.NewConflict("report destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize report: %w", err))
	}
	success = true
	return nil
}
