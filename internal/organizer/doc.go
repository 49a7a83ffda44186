// Package organizer computes library destinations for imported audio
// files and moves or copies them into place.
package organizer
