package config

import (
	"github.com/ncobase/unicourse/logging/logger"

	"github.com/spf13/viper"
)

// Logger logger config
type Logger = logger.Config

func getLoggerConfig(v *viper.Viper) *Logger {
	return &Logger{
		Level:      v.GetInt("logger.level"),
		Format:     getStringOrDefault(v, "logger.format", "json"),
		Output:     getStringOrDefault(v, "logger.output", "stderr"),
		OutputFile: v.GetString("logger.output_file"),
	}
}
