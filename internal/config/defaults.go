package config

const (
	defaultDataDir           = "~/.local/share/brickmatch"
	defaultLogDir            = "~/.local/share/brickmatch/logs"
	defaultAmazonBaseURL     = "https://catalog.amazonservices.example/v1"
	defaultAmazonMarketplace = "UK"
	defaultAmazonTimeout     = 15
	defaultFuzzyThreshold    = 60
	defaultMaxAlternatives   = 3
	defaultMaxAttempts       = 5
	defaultRecordDelayMs     = 500
	defaultPauseEvery        = 25
	defaultPauseSeconds      = 5
	defaultPageSize          = 200
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

func defaultBrandKeywords() []string {
	return []string{"lego"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Amazon: Amazon{
			BaseURL:        defaultAmazonBaseURL,
			Marketplace:    defaultAmazonMarketplace,
			TimeoutSeconds: defaultAmazonTimeout,
		},
		Matching: Matching{
			FuzzyThreshold:  defaultFuzzyThreshold,
			MaxAlternatives: defaultMaxAlternatives,
			MaxAttempts:     defaultMaxAttempts,
			BrandKeywords:   defaultBrandKeywords(),
		},
		Batch: Batch{
			RecordDelayMs: defaultRecordDelayMs,
			PauseEvery:    defaultPauseEvery,
			PauseSeconds:  defaultPauseSeconds,
			PageSize:      defaultPageSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
