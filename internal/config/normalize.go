package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAmazon()
	c.normalizeMatching()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAmazon() {
	c.Amazon.APIKey = strings.TrimSpace(c.Amazon.APIKey)
	if c.Amazon.APIKey == "" {
		if value, ok := os.LookupEnv("AMAZON_API_KEY"); ok {
			c.Amazon.APIKey = strings.TrimSpace(value)
		}
	}
	c.Amazon.BaseURL = strings.TrimSpace(c.Amazon.BaseURL)
	if c.Amazon.BaseURL == "" {
		c.Amazon.BaseURL = defaultAmazonBaseURL
	}
	c.Amazon.Marketplace = strings.ToUpper(strings.TrimSpace(c.Amazon.Marketplace))
	if c.Amazon.Marketplace == "" {
		c.Amazon.Marketplace = defaultAmazonMarketplace
	}
	if c.Amazon.TimeoutSeconds <= 0 {
		c.Amazon.TimeoutSeconds = defaultAmazonTimeout
	}
}

func (c *Config) normalizeMatching() {
	if c.Matching.FuzzyThreshold <= 0 {
		c.Matching.FuzzyThreshold = defaultFuzzyThreshold
	}
	if c.Matching.MaxAlternatives <= 0 {
		c.Matching.MaxAlternatives = defaultMaxAlternatives
	}
	if c.Matching.MaxAttempts < 0 {
		c.Matching.MaxAttempts = 0
	}
	keywords := make([]string, 0, len(c.Matching.BrandKeywords))
	seen := make(map[string]struct{}, len(c.Matching.BrandKeywords))
	for _, keyword := range c.Matching.BrandKeywords {
		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		keywords = append(keywords, normalized)
	}
	if len(keywords) == 0 {
		keywords = defaultBrandKeywords()
	}
	c.Matching.BrandKeywords = keywords
}

func (c *Config) normalizeBatch() {
	if c.Batch.RecordDelayMs < 0 {
		c.Batch.RecordDelayMs = defaultRecordDelayMs
	}
	if c.Batch.PauseEvery <= 0 {
		c.Batch.PauseEvery = defaultPauseEvery
	}
	if c.Batch.PauseSeconds < 0 {
		c.Batch.PauseSeconds = defaultPauseSeconds
	}
	if c.Batch.PageSize <= 0 {
		c.Batch.PageSize = defaultPageSize
	}
	if c.Batch.PageSize > 1000 {
		c.Batch.PageSize = 1000
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
