package catalog

import (
	"tonearm/internal/media"
	"tonearm/internal/textutil"
)

// AlbumIdentity returns the identity key for an album described by its
// album artist and title. Two albums with the same key are duplicates.
func AlbumIdentity(albumArtist, album string) string {
	return "album/" + textutil.IdentityToken(albumArtist) + "/" + textutil.IdentityToken(album)
}

// SingletonIdentity returns the identity key for a standalone track.
func SingletonIdentity(artist, title string) string {
	return "track/" + textutil.IdentityToken(artist) + "/" + textutil.IdentityToken(title)
}

// EntryIdentity derives the identity key from a catalog entry.
func EntryIdentity(e media.Entry) string {
	if e.Kind == media.EntrySingleton {
		return SingletonIdentity(e.Artist, e.Title)
	}
	return AlbumIdentity(e.AlbumArtist, e.Album)
}
