package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tonearm/internal/fileutil"
	"tonearm/internal/logging"
	"tonearm/internal/services"
	"tonearm/internal/textutil"
)

// Organizer places audio files under a library root. Album tracks land
// in Artist/Album/NN Title.ext; singletons in Artist/Title.ext.
type Organizer struct {
	libraryDir string
	copyMode   bool
	logger     *slog.Logger
}

// New builds an organizer rooted at libraryDir. copyMode leaves the
// source files in place instead of moving them.
func New(libraryDir string, copyMode bool, logger *slog.Logger) *Organizer {
	return &Organizer{
		libraryDir: libraryDir,
		copyMode:   copyMode,
		logger:     logging.NewComponentLogger(logger, "organizer"),
	}
}

// AlbumDestination computes the library path for one album track.
func (o *Organizer) AlbumDestination(albumArtist, album, title, ext string, trackNumber int) string {
	artistDir := textutil.SanitizeFileName(albumArtist)
	albumDir := textutil.SanitizeFileName(album)
	name := textutil.SanitizeFileName(title)
	if trackNumber > 0 {
		name = fmt.Sprintf("%02d %s", trackNumber, name)
	}
	return filepath.Join(o.libraryDir, artistDir, albumDir, name+normalizeExt(ext))
}

// SingletonDestination computes the library path for a standalone track.
func (o *Organizer) SingletonDestination(artist, title, ext string) string {
	return filepath.Join(
		o.libraryDir,
		textutil.SanitizeFileName(artist),
		textutil.SanitizeFileName(title)+normalizeExt(ext),
	)
}

// Place moves or copies src to dest, creating parent directories and
// steering around existing files by suffixing the name. Returns the
// path the file actually landed at.
func (o *Organizer) Place(ctx context.Context, src, dest string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", services.Wrap(services.ErrPermanent, "apply", "create destination dir", dest, err)
	}
	dest = uniquePath(dest)

	var err error
	if o.copyMode {
		err = fileutil.CopyFileVerified(src, dest)
	} else {
		err = fileutil.MoveFile(src, dest)
	}
	if err != nil {
		return "", services.Wrap(services.ErrPermanent, "apply", "place file", src, err)
	}
	o.logger.Debug("placed file",
		logging.String("src", src),
		logging.String("dest", dest),
		logging.Bool("copy", o.copyMode),
	)
	return dest, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// uniquePath returns path itself when free, otherwise the first
// "name (n).ext" variant that does not exist yet.
func uniquePath(path string) string {
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
