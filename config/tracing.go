package config

import (
	"time"

	"github.com/ncobase/unicourse/tracing"

	"github.com/spf13/viper"
)

// Tracing tracing config
type Tracing = tracing.Config

func getTracingConfig(v *viper.Viper, appName, runMode string) *Tracing {
	return &Tracing{
		Endpoint:           v.GetString("tracing.endpoint"),
		Insecure:           valueOr(v, "tracing.insecure", true, v.GetBool),
		ServiceName:        getStringOrDefault(v, "tracing.service_name", appName),
		Environment:        getStringOrDefault(v, "tracing.environment", runMode),
		SamplingRate:       getFloat64OrDefault(v, "tracing.sampling_rate", 1.0),
		BatchTimeout:       getDurationOrDefault(v, "tracing.batch_timeout", 5*time.Second),
		ExportTimeout:      getDurationOrDefault(v, "tracing.export_timeout", 30*time.Second),
		MaxExportBatchSize: getPositiveIntOrDefault(v, "tracing.max_export_batch_size", 512),
		SentryDSN:          v.GetString("tracing.sentry.dsn"),
		SentrySampleRate:   getFloat64OrDefault(v, "tracing.sentry.sample_rate", 1.0),
	}
}
