package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Amazon contains configuration for the Amazon catalog search API.
type Amazon struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Marketplace    string `toml:"marketplace"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Matching contains tuning for the match strategy pipeline.
type Matching struct {
	// FuzzyThreshold is the minimum similarity score a fuzzy candidate must
	// reach to be considered at all. Candidates below it are discarded.
	FuzzyThreshold int `toml:"fuzzy_threshold"`
	// MaxAlternatives bounds the alternatives list stored on ambiguous
	// outcomes.
	MaxAlternatives int `toml:"max_alternatives"`
	// MaxAttempts caps how many times a record may be retried. Zero disables
	// the cap.
	MaxAttempts int `toml:"max_attempts"`
	// BrandKeywords is the list of tokens a candidate title must contain to
	// pass the relevance filter.
	BrandKeywords []string `toml:"brand_keywords"`
}

// Batch contains pacing configuration for resolution runs.
type Batch struct {
	RecordDelayMs int `toml:"record_delay_ms"`
	PauseEvery    int `toml:"pause_every"`
	PauseSeconds  int `toml:"pause_seconds"`
	PageSize      int `toml:"page_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for brickmatch.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Amazon: marketplace catalog search API
//   - Matching: strategy pipeline thresholds and filters
//   - Batch: run pacing and pagination
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Amazon   Amazon   `toml:"amazon"`
	Matching Matching `toml:"matching"`
	Batch    Batch    `toml:"batch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/brickmatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("brickmatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a resolution run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
