package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAmazon(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAmazon() error {
	if c.Amazon.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/brickmatch/config.toml"
		}
		return fmt.Errorf("amazon.api_key is required. Set AMAZON_API_KEY env var or edit %s (create with 'brickmatch config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.FuzzyThreshold < 0 || c.Matching.FuzzyThreshold > 100 {
		return errors.New("matching.fuzzy_threshold must be between 0 and 100")
	}
	if c.Matching.MaxAlternatives < 1 {
		return errors.New("matching.max_alternatives must be at least 1")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.PageSize < 1 || c.Batch.PageSize > 1000 {
		return errors.New("batch.page_size must be between 1 and 1000")
	}
	return nil
}
