package tagio

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"tonearm/internal/media"
	"tonearm/internal/services"
)

// Update carries the resolved metadata to stamp onto one file. Empty
// string and zero fields are left untouched in the destination tags.
type Update struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	TrackNumber int
	TrackTotal  int
	DiscNumber  int
	Year        int
	SourceID    string
}

// UpdateFor builds the tag update for one aligned track. The reference
// track wins for per-track fields; album-level fields come from the
// album candidate when present.
func UpdateFor(ref media.TrackRef, album *media.AlbumCandidate) Update {
	u := Update{
		Title:       ref.Title,
		Artist:      ref.Artist,
		TrackNumber: ref.TrackNumber,
		DiscNumber:  ref.DiscNumber,
		SourceID:    ref.SourceID,
	}
	if album != nil {
		u.Album = album.Album
		u.AlbumArtist = album.AlbumArtist
		u.Year = album.Year
		u.TrackTotal = len(album.Tracks)
		if u.Artist == "" {
			u.Artist = album.AlbumArtist
		}
	}
	return u
}

// Writer applies metadata to an audio file in place. Writes are
// idempotent: repeating the same write yields the same tags.
type Writer interface {
	Write(ctx context.Context, path string, update Update) error
}

// FileWriter writes tags to local files, dispatching on the container
// format by extension.
type FileWriter struct{}

// NewFileWriter constructs the default tag writer.
func NewFileWriter() *FileWriter { return &FileWriter{} }

// Write stamps the update onto the file. Unsupported containers return
// a validation error so callers can fall back to leaving tags as-is.
func (w *FileWriter) Write(ctx context.Context, path string, update Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return w.writeID3(path, update)
	case ".flac":
		return w.writeFLAC(path, update)
	default:
		return services.Wrap(services.ErrValidation, "apply", "write tags", fmt.Sprintf("unsupported container %q", filepath.Ext(path)), nil)
	}
}

func (w *FileWriter) writeID3(path string, update Update) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return services.Wrap(services.ErrPermanent, "apply", "open id3 tag", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetVersion(4)

	if update.Title != "" {
		tag.SetTitle(update.Title)
	}
	if update.Artist != "" {
		tag.SetArtist(update.Artist)
	}
	if update.Album != "" {
		tag.SetAlbum(update.Album)
	}
	if update.AlbumArtist != "" {
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, update.AlbumArtist)
	}
	if update.Year > 0 {
		tag.SetYear(strconv.Itoa(update.Year))
	}
	if update.TrackNumber > 0 {
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, trackFraction(update.TrackNumber, update.TrackTotal))
	}
	if update.DiscNumber > 0 {
		tag.AddTextFrame("TPOS", id3v2.EncodingUTF8, strconv.Itoa(update.DiscNumber))
	}
	if update.SourceID != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: "MusicBrainz Release Track Id",
			Value:       update.SourceID,
		})
	}

	if err := tag.Save(); err != nil {
		return services.Wrap(services.ErrPermanent, "apply", "save id3 tag", path, err)
	}
	return nil
}

func (w *FileWriter) writeFLAC(path string, update Update) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return services.Wrap(services.ErrPermanent, "apply", "parse flac", path, err)
	}

	// Rebuild the vorbis comment block so repeated writes do not
	// accumulate duplicate fields. Fields the update does not carry are
	// merged back in afterwards.
	var existing *flacvorbis.MetaDataBlockVorbisComment
	var kept []*flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			kept = append(kept, block)
			continue
		}
		if existing == nil {
			if parsed, err := flacvorbis.ParseFromMetaDataBlock(*block); err == nil {
				existing = parsed
			}
		}
	}
	f.Meta = kept

	comment := flacvorbis.New()
	addVorbisField(comment, flacvorbis.FIELD_TITLE, update.Title)
	addVorbisField(comment, flacvorbis.FIELD_ARTIST, update.Artist)
	addVorbisField(comment, flacvorbis.FIELD_ALBUM, update.Album)
	addVorbisField(comment, "ALBUMARTIST", update.AlbumArtist)
	if update.TrackNumber > 0 {
		addVorbisField(comment, flacvorbis.FIELD_TRACKNUMBER, strconv.Itoa(update.TrackNumber))
	}
	if update.TrackTotal > 0 {
		addVorbisField(comment, "TRACKTOTAL", strconv.Itoa(update.TrackTotal))
	}
	if update.DiscNumber > 0 {
		addVorbisField(comment, "DISCNUMBER", strconv.Itoa(update.DiscNumber))
	}
	if update.Year > 0 {
		addVorbisField(comment, flacvorbis.FIELD_DATE, strconv.Itoa(update.Year))
	}
	addVorbisField(comment, "MUSICBRAINZ_RELEASETRACKID", update.SourceID)
	mergeVorbisComments(comment, existing)

	block := comment.Marshal()
	f.Meta = append(f.Meta, &block)

	if err := f.Save(path); err != nil {
		return services.Wrap(services.ErrPermanent, "apply", "save flac", path, err)
	}
	return nil
}

func addVorbisField(comment *flacvorbis.MetaDataBlockVorbisComment, field, value string) {
	if value == "" {
		return
	}
	comment.Add(field, value)
}

// mergeVorbisComments copies fields from src that dst does not already
// set, so an update never wipes unrelated tags (genre, lyrics, replay
// gain) the file carried before.
func mergeVorbisComments(dst, src *flacvorbis.MetaDataBlockVorbisComment) {
	if src == nil {
		return
	}
	written := make(map[string]bool, len(dst.Comments))
	for _, c := range dst.Comments {
		if i := strings.IndexByte(c, '='); i > 0 {
			written[strings.ToUpper(c[:i])] = true
		}
	}
	for _, c := range src.Comments {
		i := strings.IndexByte(c, '=')
		if i <= 0 || written[strings.ToUpper(c[:i])] {
			continue
		}
		dst.Comments = append(dst.Comments, c)
	}
}

func trackFraction(number, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d/%d", number, total)
	}
	return strconv.Itoa(number)
}
