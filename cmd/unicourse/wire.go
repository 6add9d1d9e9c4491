//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/ncobase/unicourse/config"
	"github.com/ncobase/unicourse/data"
	"github.com/ncobase/unicourse/logging/logger"
)

// InitializeApp wires the HTTP server with all dependencies.
func InitializeApp() (*App, func(), error) {
	panic(wire.Build(
		config.ProviderSet,
		logger.ProviderSet,
		data.ProviderSet,

		ProvideTracing,
		ProvideCourseStore,
		ProvideTaxonomyStore,
		ProvideLeadService,
		ProvideSearchService,
		ProvideSearchClient,
		ProvideSuggester,
		ProvideDispatcher,
		ProvideLogoResolver,
		ProvideHandler,

		NewApp,
	))
}

// InitializeTools wires the components used by browse, search and reindex.
func InitializeTools() (*Tools, func(), error) {
	panic(wire.Build(
		config.ProviderSet,
		logger.ProviderSet,
		data.ProviderSet,

		ProvideTracing,
		ProvideCourseStore,
		ProvideSearchService,
		ProvideSearchClient,
		ProvideDispatcher,

		NewTools,
	))
}
