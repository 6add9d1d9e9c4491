package config

import (
	"time"

	"github.com/spf13/viper"
)

// Loader holds paging and search settings for the result loader.
type Loader struct {
	PageSize       int           `json:"page_size" yaml:"page_size"`
	AutoLoadCap    int           `json:"auto_load_cap" yaml:"auto_load_cap"`
	SearchEndpoint string        `json:"search_endpoint" yaml:"search_endpoint"`
	SearchTimeout  time.Duration `json:"search_timeout" yaml:"search_timeout"`
	Debounce       time.Duration `json:"debounce" yaml:"debounce"`
}

func getLoaderConfig(v *viper.Viper) *Loader {
	return &Loader{
		PageSize:       getPositiveIntOrDefault(v, "loader.page_size", 24),
		AutoLoadCap:    getIntOrDefault(v, "loader.auto_load_cap", 5),
		SearchEndpoint: v.GetString("loader.search_endpoint"),
		SearchTimeout:  getDurationOrDefault(v, "loader.search_timeout", 8*time.Second),
		Debounce:       getDurationOrDefault(v, "loader.debounce", 300*time.Millisecond),
	}
}
