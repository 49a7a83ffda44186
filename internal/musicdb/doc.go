// Package musicdb defines the metadata source abstraction the importer
// queries for album and track candidates, plus decorators that add
// bounded retry and rate limiting around any concrete source.
package musicdb
