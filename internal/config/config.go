package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirName is the name of both the global (~/.ytnb) and repo (.ytnb) config directories.
const DirName = ".ytnb"

// Tie-break policies for notebooks sharing a title prefix.
const (
	TieBreakNewest = "newest"
	TieBreakFirst  = "first"
)

// Config holds application configuration.
type Config struct {
	// Language is the locale code passed to artifact kinds that support one.
	Language string `json:"language,omitempty"`

	// DelaySeconds is the pause between the start of consecutive generation calls.
	// A pointer so that an explicit 0 in a config file can disable the delay.
	DelaySeconds *float64 `json:"delay_seconds,omitempty"`

	// SourceTimeoutSeconds bounds how long adding a source waits for processing.
	SourceTimeoutSeconds int `json:"source_timeout_seconds,omitempty"`

	// CallTimeoutSeconds bounds every individual notebooklm invocation.
	CallTimeoutSeconds int `json:"call_timeout_seconds,omitempty"`

	// WaitTimeoutSeconds bounds waiting for an artifact to finish when --wait is set.
	WaitTimeoutSeconds int `json:"wait_timeout_seconds,omitempty"`

	// NotebookPrefix is prepended to the video id in notebook titles.
	NotebookPrefix string `json:"notebook_prefix,omitempty"`

	// TieBreak selects between several notebooks matching the same prefix:
	// "newest" (most recently created) or "first" (remote listing order).
	TieBreak string `json:"tie_break,omitempty"`

	// Parallel runs independent generation lanes concurrently.
	Parallel bool `json:"parallel,omitempty"`

	// NotebookLMPath and YTDLPPath override the executables looked up in PATH.
	NotebookLMPath string `json:"notebooklm_path,omitempty"`
	YTDLPPath      string `json:"ytdlp_path,omitempty"`

	// AllowedPaths is an allowlist of directories report files may be written to,
	// in addition to ~/.ytnb/reports. Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for report output.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	delay := 3.0
	return &Config{
		Language:             "es",
		DelaySeconds:         &delay,
		SourceTimeoutSeconds: 60,
		CallTimeoutSeconds:   120,
		WaitTimeoutSeconds:   1200,
		NotebookPrefix:       "YT-",
		TieBreak:             TieBreakNewest,
		NotebookLMPath:       "notebooklm",
		YTDLPPath:            "yt-dlp",
	}
}

// Delay returns the configured inter-call delay as a duration.
func (c *Config) Delay() time.Duration {
	if c.DelaySeconds == nil {
		return 0
	}
	return time.Duration(*c.DelaySeconds * float64(time.Second))
}

// SourceTimeout returns the source processing timeout.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSeconds) * time.Second
}

// CallTimeout returns the per-call timeout.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// WaitTimeout returns the artifact completion timeout.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSeconds) * time.Second
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.ytnb.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.ytnb) and repo (.ytnb) directories.
// Repo config is found by walking upward from startDir to find the nearest .ytnb/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .ytnb/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the path is empty or the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Language = pickString(overlay.Language, base.Language)
	result.NotebookPrefix = pickString(overlay.NotebookPrefix, base.NotebookPrefix)
	result.TieBreak = pickString(overlay.TieBreak, base.TieBreak)
	result.NotebookLMPath = pickString(overlay.NotebookLMPath, base.NotebookLMPath)
	result.YTDLPPath = pickString(overlay.YTDLPPath, base.YTDLPPath)

	result.DelaySeconds = overlay.DelaySeconds
	if result.DelaySeconds == nil {
		result.DelaySeconds = base.DelaySeconds
	}

	result.SourceTimeoutSeconds = pickInt(overlay.SourceTimeoutSeconds, base.SourceTimeoutSeconds)
	result.CallTimeoutSeconds = pickInt(overlay.CallTimeoutSeconds, base.CallTimeoutSeconds)
	result.WaitTimeoutSeconds = pickInt(overlay.WaitTimeoutSeconds, base.WaitTimeoutSeconds)

	// Booleans: overlay wins if true, else base
	result.Parallel = base.Parallel || overlay.Parallel
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return strings.TrimSpace(overlay)
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
