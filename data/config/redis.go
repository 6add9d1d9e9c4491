package config

import (
	"time"

	"github.com/spf13/viper"
)

// Redis redis config struct
type Redis struct {
	Addr         string        `json:"addr" yaml:"addr"`
	Password     string        `json:"password" yaml:"password"`
	Db           int           `json:"db" yaml:"db"`
	KeyPrefix    string        `json:"key_prefix" yaml:"key_prefix"`
	CountTTL     time.Duration `json:"count_ttl" yaml:"count_ttl"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
}

// getRedisConfigs reads Redis configurations
func getRedisConfigs(v *viper.Viper) *Redis {
	ttl := v.GetDuration("data.redis.count_ttl")
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Redis{
		Addr:         v.GetString("data.redis.addr"),
		Password:     v.GetString("data.redis.password"),
		Db:           v.GetInt("data.redis.db"),
		KeyPrefix:    getStringOrDefault(v, "data.redis.key_prefix", "unicourse"),
		CountTTL:     ttl,
		ReadTimeout:  v.GetDuration("data.redis.read_timeout"),
		WriteTimeout: v.GetDuration("data.redis.write_timeout"),
		DialTimeout:  v.GetDuration("data.redis.dial_timeout"),
	}
}
