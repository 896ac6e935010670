package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Language != "es" {
		t.Errorf("Language = %q, want %q", cfg.Language, "es")
	}
	if cfg.Delay() != 3*time.Second {
		t.Errorf("Delay() = %v, want 3s", cfg.Delay())
	}
	if cfg.NotebookPrefix != "YT-" {
		t.Errorf("NotebookPrefix = %q, want %q", cfg.NotebookPrefix, "YT-")
	}
	if cfg.TieBreak != TieBreakNewest {
		t.Errorf("TieBreak = %q, want %q", cfg.TieBreak, TieBreakNewest)
	}
	if cfg.CallTimeout() != 2*time.Minute {
		t.Errorf("CallTimeout() = %v, want 2m", cfg.CallTimeout())
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"language": "en", "source_timeout_seconds": 90}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q, want %q", cfg.Language, "en")
	}
	if cfg.SourceTimeout() != 90*time.Second {
		t.Errorf("SourceTimeout() = %v, want 90s", cfg.SourceTimeout())
	}
	// untouched scalar keeps its default
	if cfg.YTDLPPath != "yt-dlp" {
		t.Errorf("YTDLPPath = %q, want default", cfg.YTDLPPath)
	}
}

func TestLoad_ExplicitZeroDelay(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"delay_seconds": 0}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Delay() != 0 {
		t.Errorf("Delay() = %v, want 0", cfg.Delay())
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, globalDir, `{"language": "fr", "disabled_tools": ["notebook_report"]}`)
	writeConfig(t, filepath.Join(repoRoot, DirName), `{"language": "de", "disabled_tools": ["notebook_list"]}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.Language != "de" {
		t.Errorf("Language = %q, want de (repo override)", cfg.Language)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Language != "es" {
		t.Errorf("Language = %q, want es", cfg.Language)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, DirName), `{"tie_break": "first"}`)

	subdir := filepath.Join(tmpDir, "subdir", "deeper")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), subdir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.TieBreak != TieBreakFirst {
		t.Errorf("TieBreak = %q, want %q", cfg.TieBreak, TieBreakFirst)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if found := FindRepoConfig(t.TempDir()); found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}
	if found := FindRepoConfig(""); found != "" {
		t.Errorf("FindRepoConfig(\"\") = %q, want empty string", found)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{Language: "es", CallTimeoutSeconds: 30}
	overlay := &Config{Language: "en"}

	result := Merge(base, overlay)

	if result.Language != "en" {
		t.Errorf("Language = %q, want en (overlay)", result.Language)
	}
	if result.CallTimeoutSeconds != 30 {
		t.Errorf("CallTimeoutSeconds = %d, want 30 (base, overlay is zero)", result.CallTimeoutSeconds)
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	result := Merge(&Config{Parallel: true}, &Config{AllowUnsafePaths: true})

	if !result.Parallel {
		t.Error("Parallel should be true (base OR overlay)")
	}
	if !result.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true (base OR overlay)")
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{AllowedPaths: []string{"/a", " /b "}}
	overlay := &Config{AllowedPaths: []string{"/b", "/c", ""}}

	result := Merge(base, overlay)

	want := []string{"/a", "/b", "/c"}
	if len(result.AllowedPaths) != len(want) {
		t.Fatalf("AllowedPaths = %v, want %v", result.AllowedPaths, want)
	}
	for i := range want {
		if result.AllowedPaths[i] != want[i] {
			t.Errorf("AllowedPaths[%d] = %q, want %q", i, result.AllowedPaths[i], want[i])
		}
	}
}
