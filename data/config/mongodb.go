package config

import (
	"github.com/spf13/viper"
)

// MongoDB describes the primary, its read replicas and how reads are
// balanced across them.
type MongoDB struct {
	Master   *MongoNode   `json:"master"`
	Slaves   []*MongoNode `json:"slaves"`
	Database string       `json:"database"`
	Strategy string       `json:"strategy"`
}

// MongoNode is one MongoDB endpoint. Weight only matters to the weight
// strategy.
type MongoNode struct {
	URI    string `json:"uri" mapstructure:"uri"`
	Weight int    `json:"weight" mapstructure:"weight"`
}

func getMongoDBConfigs(v *viper.Viper) *MongoDB {
	return &MongoDB{
		Master:   &MongoNode{URI: v.GetString("data.mongodb.master.uri")},
		Slaves:   getMongoSlaveConfigs(v),
		Database: getStringOrDefault(v, "data.mongodb.database", "unicourse"),
		Strategy: getStringOrDefault(v, "data.mongodb.strategy", "round_robin"),
	}
}

// getMongoSlaveConfigs decodes data.mongodb.slaves, skipping entries
// without a URI.
func getMongoSlaveConfigs(v *viper.Viper) []*MongoNode {
	var nodes []*MongoNode
	if err := v.UnmarshalKey("data.mongodb.slaves", &nodes); err != nil {
		return nil
	}

	slaves := nodes[:0]
	for _, n := range nodes {
		if n == nil || n.URI == "" {
			continue
		}
		if n.Weight <= 0 {
			n.Weight = 1
		}
		slaves = append(slaves, n)
	}
	return slaves
}
