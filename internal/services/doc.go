// Package services provides shared helpers for collaborator calls:
// a sentinel-based error taxonomy used to classify stage failures, and
// context annotation helpers that carry task and stage identity through
// pipeline workers.
package services
