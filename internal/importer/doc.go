// Package importer orchestrates one import run. A Session wires the
// scan, read, group, lookup, choose, resolve, and apply stages into a
// pipeline bound to this run's configuration and collaborators, drives
// it to completion, and reports a per-task summary.
package importer
