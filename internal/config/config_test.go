package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"brickmatch/internal/config"
)

func TestLoadDefaultConfigUsesEnvAmazonKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("AMAZON_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "brickmatch")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Amazon.APIKey != "test-key" {
		t.Fatalf("expected Amazon key from env, got %q", cfg.Amazon.APIKey)
	}
	if cfg.Amazon.BaseURL != config.Default().Amazon.BaseURL {
		t.Fatalf("unexpected Amazon base url: %q", cfg.Amazon.BaseURL)
	}
	if cfg.Matching.FuzzyThreshold != 60 {
		t.Fatalf("unexpected fuzzy threshold: %d", cfg.Matching.FuzzyThreshold)
	}
	if got := cfg.Matching.BrandKeywords; len(got) != 1 || got[0] != "lego" {
		t.Fatalf("unexpected brand keywords: %v", got)
	}
	if cfg.Batch.PageSize != 200 {
		t.Fatalf("unexpected page size: %d", cfg.Batch.PageSize)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestLoadRequiresAmazonKey(t *testing.T) {
	t.Setenv("AMAZON_API_KEY", "")
	os.Unsetenv("AMAZON_API_KEY")
	t.Setenv("HOME", t.TempDir())

	if _, _, _, err := config.Load(""); err == nil {
		t.Fatal("expected error when amazon.api_key is missing")
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brickmatch.toml")
	contents := `
[amazon]
api_key = "file-key"
marketplace = "de"

[matching]
brand_keywords = ["LEGO", "lego", "", "Duplo"]

[batch]
page_size = 5000
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to load, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Amazon.APIKey != "file-key" {
		t.Fatalf("unexpected api key: %q", cfg.Amazon.APIKey)
	}
	if cfg.Amazon.Marketplace != "DE" {
		t.Fatalf("expected marketplace upper-cased, got %q", cfg.Amazon.Marketplace)
	}
	if got := cfg.Matching.BrandKeywords; len(got) != 2 || got[0] != "lego" || got[1] != "duplo" {
		t.Fatalf("expected deduplicated lower-cased keywords, got %v", got)
	}
	if cfg.Batch.PageSize != 1000 {
		t.Fatalf("expected page size clamped to 1000, got %d", cfg.Batch.PageSize)
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.Amazon.APIKey = "k"
	cfg.Matching.FuzzyThreshold = 150
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for out-of-range fuzzy threshold")
	}
}
