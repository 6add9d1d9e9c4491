package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Search represents search engine configuration
type Search struct {
	DefaultEngine string         `yaml:"default_engine" json:"default_engine"`
	Index         string         `yaml:"index" json:"index"`
	MaxResults    int            `yaml:"max_results" json:"max_results"`
	Meilisearch   *Meilisearch   `yaml:"meilisearch" json:"meilisearch"`
	Elasticsearch *Elasticsearch `yaml:"elasticsearch" json:"elasticsearch"`
	OpenSearch    *OpenSearch    `yaml:"opensearch" json:"opensearch"`
}

// Meilisearch meilisearch config struct
type Meilisearch struct {
	Host   string `json:"host" yaml:"host"`
	APIKey string `json:"api_key" yaml:"api_key"`
}

// Elasticsearch elasticsearch config struct
type Elasticsearch struct {
	Addresses []string `json:"addresses"`
	Username  string   `json:"username"`
	Password  string   `json:"password"`
}

// OpenSearch opensearch config struct
type OpenSearch struct {
	Addresses       []string `json:"addresses"`
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	InsecureSkipTLS bool     `json:"insecure_skip_tls"`
}

// getSearchConfig reads search configurations
func getSearchConfig(v *viper.Viper) *Search {
	return &Search{
		DefaultEngine: strings.ToLower(getStringOrDefault(v, "data.search.default_engine", "meilisearch")),
		Index:         getStringOrDefault(v, "data.search.index", "courses"),
		MaxResults:    getIntOrDefault(v, "data.search.max_results", 20),
		Meilisearch: &Meilisearch{
			Host:   v.GetString("data.meilisearch.host"),
			APIKey: v.GetString("data.meilisearch.api_key"),
		},
		Elasticsearch: &Elasticsearch{
			Addresses: v.GetStringSlice("data.elasticsearch.addresses"),
			Username:  v.GetString("data.elasticsearch.username"),
			Password:  v.GetString("data.elasticsearch.password"),
		},
		OpenSearch: &OpenSearch{
			Addresses:       v.GetStringSlice("data.opensearch.addresses"),
			Username:        v.GetString("data.opensearch.username"),
			Password:        v.GetString("data.opensearch.password"),
			InsecureSkipTLS: v.GetBool("data.opensearch.insecure_skip_tls"),
		},
	}
}
