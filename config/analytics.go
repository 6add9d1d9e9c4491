package config

import "github.com/spf13/viper"

// Analytics configures page view delivery. Sink is one of "log", "redis"
// or "kafka".
type Analytics struct {
	Sink      string `json:"sink" yaml:"sink"`
	Workers   int    `json:"workers" yaml:"workers"`
	QueueSize int    `json:"queue_size" yaml:"queue_size"`
	Stream    string `json:"stream" yaml:"stream"`
}

func getAnalyticsConfig(v *viper.Viper) *Analytics {
	return &Analytics{
		Sink:      getStringOrDefault(v, "analytics.sink", "log"),
		Workers:   getPositiveIntOrDefault(v, "analytics.workers", 2),
		QueueSize: getPositiveIntOrDefault(v, "analytics.queue_size", 256),
		Stream:    getStringOrDefault(v, "analytics.stream", "analytics:view_item_list"),
	}
}
