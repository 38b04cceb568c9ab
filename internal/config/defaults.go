package config

const (
	// DefaultThreshold matches the documented CLI default: candidates
	// with a mean pixel difference below 10 are reported.
	DefaultThreshold = 10

	defaultProgressEvery = 500
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Scan: Scan{
			Threshold:     DefaultThreshold,
			ProgressEvery: defaultProgressEvery,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
