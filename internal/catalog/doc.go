// Package catalog persists imported albums and singleton tracks in a
// SQLite database and provides the identity keys and per-identity locks
// the importer uses to serialize duplicate handling.
package catalog
