// Package media defines the core data model shared across the import
// pipeline: track observations read from files, metadata candidates
// proposed by lookup sources, and catalog entries.
package media
