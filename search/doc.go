// Package search serves and consumes the course search endpoint.
//
// Service answers queries from the configured search engine. Client calls
// the endpoint over HTTP and is what the loader uses in search mode.
// Suggester merges quick suggestions from several sources behind a
// debounce.
package search
