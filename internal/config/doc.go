// Package config loads, validates, and normalizes the importer's TOML
// configuration. Paths are tilde-expanded, defaults are applied before
// validation, and a commented sample config is embedded for `config init`.
package config
