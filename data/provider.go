package data

import (
	"github.com/google/wire"
	"github.com/ncobase/unicourse/data/config"
)

// ProviderSet is the wire provider set for the data package.
var ProviderSet = wire.NewSet(ProvideData)

// ProvideData opens the data layer; the cleanup closes all connections.
func ProvideData(cfg *config.Config) (*Data, func(), error) {
	return New(cfg)
}
