// Package config loads the unicourse configuration with Viper.
//
// A minimal config.yaml:
//
//	app_name: unicourse
//	run_mode: release
//	server:
//	  host: 0.0.0.0
//	  port: 8080
//	loader:
//	  page_size: 24
//	  auto_load_cap: 5
//	  search_endpoint: http://localhost:8080
//	data:
//	  mongodb:
//	    master:
//	      uri: mongodb://localhost:27017
//	  search:
//	    default_engine: meilisearch
//
// Environment variables prefixed with UNICOURSE_ override file values
// (UNICOURSE_SERVER_PORT, UNICOURSE_DATA_REDIS_ADDR, ...). Watch reloads the
// file on change.
package config
