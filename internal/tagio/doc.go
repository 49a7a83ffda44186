// Package tagio reads and writes audio file tags. Reading goes through
// dhowden/tag and covers every format it understands; writing is
// dispatched per container (ID3v2 for MP3, vorbis comments for FLAC).
package tagio
