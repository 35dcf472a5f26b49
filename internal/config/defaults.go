package config

const (
	defaultTimeoutSeconds = 30
	defaultEngine         = "regex"
	defaultDataDir        = "~/.pyward"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultMaxCodeBytes   = 1 << 20
	defaultMaxScanFiles   = 2000
	defaultMaxFileBytes   = 1 << 20
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Checker: Checker{
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Extract: Extract{
			Engine: defaultEngine,
		},
		History: History{
			Enabled: true,
			DataDir: defaultDataDir,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Limits: Limits{
			MaxCodeBytes: defaultMaxCodeBytes,
			MaxScanFiles: defaultMaxScanFiles,
			MaxFileBytes: defaultMaxFileBytes,
		},
	}
}
