package config

import (
	"time"

	"github.com/spf13/viper"
)

// valueOr reads key with get, or returns def when key is unset.
func valueOr[T any](v *viper.Viper, key string, def T, get func(string) T) T {
	if v.IsSet(key) {
		return get(key)
	}
	return def
}

func getDurationOrDefault(v *viper.Viper, key string, def time.Duration) time.Duration {
	return valueOr(v, key, def, v.GetDuration)
}

func getIntOrDefault(v *viper.Viper, key string, def int) int {
	return valueOr(v, key, def, v.GetInt)
}

func getFloat64OrDefault(v *viper.Viper, key string, def float64) float64 {
	return valueOr(v, key, def, v.GetFloat64)
}

func getStringOrDefault(v *viper.Viper, key string, def string) string {
	return valueOr(v, key, def, v.GetString)
}

// getPositiveIntOrDefault also falls back when the configured value is not
// positive.
func getPositiveIntOrDefault(v *viper.Viper, key string, def int) int {
	if n := getIntOrDefault(v, key, def); n > 0 {
		return n
	}
	return def
}
