package config

import "github.com/google/wire"

// ProviderSet is the wire provider set for the config package.
// It provides the main *Config and the sub-configurations other packages
// are built from.
var ProviderSet = wire.NewSet(
	GetConfig,
	ProvideLoggerConfig,
	ProvideDataConfig,
	ProvideLoaderConfig,
	ProvideAnalyticsConfig,
	ProvideLogoConfig,
	ProvideTracingConfig,
)

// ProvideLoggerConfig provides the logger configuration.
func ProvideLoggerConfig(cfg *Config) *Logger {
	if cfg == nil {
		return nil
	}
	return cfg.Logger
}

// ProvideDataConfig provides the data layer configuration.
func ProvideDataConfig(cfg *Config) *Data {
	if cfg == nil {
		return nil
	}
	return cfg.Data
}

// ProvideLoaderConfig provides the result loader configuration.
func ProvideLoaderConfig(cfg *Config) *Loader {
	if cfg == nil {
		return nil
	}
	return cfg.Loader
}

// ProvideAnalyticsConfig provides the analytics configuration.
func ProvideAnalyticsConfig(cfg *Config) *Analytics {
	if cfg == nil {
		return nil
	}
	return cfg.Analytics
}

// ProvideLogoConfig provides the logo configuration.
func ProvideLogoConfig(cfg *Config) *Logo {
	if cfg == nil {
		return nil
	}
	return cfg.Logo
}

// ProvideTracingConfig provides the tracing configuration.
func ProvideTracingConfig(cfg *Config) *Tracing {
	if cfg == nil {
		return nil
	}
	return cfg.Tracing
}
