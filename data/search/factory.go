package search

import (
	"github.com/ncobase/unicourse/data/config"
)

// NewFromConfig builds a client over every engine that has connection
// settings. Engines without settings are skipped.
func NewFromConfig(cfg *config.Search) (*Client, error) {
	if cfg == nil {
		return NewClient(string(Meilisearch)), nil
	}

	var adapters []Adapter
	if m := cfg.Meilisearch; m != nil {
		if a := NewMeiliAdapter(m.Host, m.APIKey); a != nil {
			adapters = append(adapters, a)
		}
	}
	if e := cfg.Elasticsearch; e != nil {
		a, err := NewElasticAdapter(e.Addresses, e.Username, e.Password)
		if err != nil {
			return nil, err
		}
		if a != nil {
			adapters = append(adapters, a)
		}
	}
	if o := cfg.OpenSearch; o != nil {
		a, err := NewOpenSearchAdapter(o.Addresses, o.Username, o.Password, o.InsecureSkipTLS)
		if err != nil {
			return nil, err
		}
		if a != nil {
			adapters = append(adapters, a)
		}
	}
	return NewClient(cfg.DefaultEngine, adapters...), nil
}
