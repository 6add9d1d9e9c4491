package config

import (
	"github.com/spf13/viper"
)

// Config data config struct
type Config struct {
	*MongoDB `yaml:"mongodb" json:"mongodb"`
	*Redis   `yaml:"redis" json:"redis"`
	*Search  `yaml:"search" json:"search"`
	*Kafka   `yaml:"kafka" json:"kafka"`
}

// GetConfig returns data config
func GetConfig(v *viper.Viper) *Config {
	return &Config{
		MongoDB: getMongoDBConfigs(v),
		Redis:   getRedisConfigs(v),
		Search:  getSearchConfig(v),
		Kafka:   getKafkaConfigs(v),
	}
}

// getStringOrDefault returns string value or default
func getStringOrDefault(v *viper.Viper, key, defaultValue string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return defaultValue
}

// getIntOrDefault returns int value or default
func getIntOrDefault(v *viper.Viper, key string, defaultValue int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return defaultValue
}
