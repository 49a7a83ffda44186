package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tonearm/internal/media"
)

const entryColumns = `id, kind, identity_key, title, artist, album, album_artist,
	year, track_count, source, source_id, paths_json, created_at, updated_at`

// FindByIdentity returns all entries sharing an identity key, oldest
// first. An empty result with a nil error means no duplicates exist.
func (s *Store) FindByIdentity(ctx context.Context, identityKey string) ([]media.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE identity_key = ? ORDER BY id`,
		identityKey,
	)
	if err != nil {
		return nil, fmt.Errorf("find by identity: %w", err)
	}
	defer rows.Close()

	var entries []media.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// GetByID fetches one entry, returning a zero entry and false when the
// id does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (media.Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return media.Entry{}, false, nil
	}
	if err != nil {
		return media.Entry{}, false, err
	}
	return entry, true, nil
}

// Upsert inserts the entry, or rewrites it when entry.ID is set.
// The stored identity key is always recomputed from the entry fields.
func (s *Store) Upsert(ctx context.Context, entry *media.Entry) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	pathsJSON, err := json.Marshal(entry.Paths)
	if err != nil {
		return fmt.Errorf("marshal paths: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	identity := EntryIdentity(*entry)

	if entry.ID > 0 {
		_, err := s.execWithRetry(ctx,
			`UPDATE entries SET kind = ?, identity_key = ?, title = ?, artist = ?, album = ?,
				album_artist = ?, year = ?, track_count = ?, source = ?, source_id = ?,
				paths_json = ?, updated_at = ?
			 WHERE id = ?`,
			string(entry.Kind), identity, entry.Title, entry.Artist, entry.Album,
			entry.AlbumArtist, entry.Year, entry.TrackCount, entry.Source, entry.SourceID,
			string(pathsJSON), now, entry.ID,
		)
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		return nil
	}

	res, err := s.execWithRetry(ctx,
		`INSERT INTO entries (
			kind, identity_key, title, artist, album, album_artist,
			year, track_count, source, source_id, paths_json, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(entry.Kind), identity, entry.Title, entry.Artist, entry.Album, entry.AlbumArtist,
		entry.Year, entry.TrackCount, entry.Source, entry.SourceID, string(pathsJSON), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// Remove deletes an entry by id. Removing a missing id is not an error.
func (s *Store) Remove(ctx context.Context, id int64) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove entry: %w", err)
	}
	return nil
}

// Counts reports how many albums and singletons the catalog holds.
func (s *Store) Counts(ctx context.Context) (albums, singletons int, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(1) FROM entries GROUP BY kind`)
	if err != nil {
		return 0, 0, fmt.Errorf("count entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return 0, 0, fmt.Errorf("scan count: %w", err)
		}
		switch media.EntryKind(kind) {
		case media.EntryAlbum:
			albums = n
		case media.EntrySingleton:
			singletons = n
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("iterate counts: %w", err)
	}
	return albums, singletons, nil
}

// RememberSource records which external source ID was applied to a
// path, so a later re-import of the same files prefers that choice.
func (s *Store) RememberSource(ctx context.Context, path, sourceID string) error {
	if path == "" || sourceID == "" {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(ctx,
		`INSERT INTO source_memory (path, source_id, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET source_id = excluded.source_id, updated_at = excluded.updated_at`,
		path, sourceID, now,
	)
	if err != nil {
		return fmt.Errorf("remember source: %w", err)
	}
	return nil
}

// PriorSourceID returns the source ID previously applied to any of the
// given paths, or "" when none was recorded.
func (s *Store) PriorSourceID(ctx context.Context, paths []string) (string, error) {
	for _, path := range paths {
		var id string
		err := s.db.QueryRowContext(ctx,
			`SELECT source_id FROM source_memory WHERE path = ?`, path,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("prior source id: %w", err)
		}
		if id != "" {
			return id, nil
		}
	}
	return "", nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (media.Entry, error) {
	var (
		entry     media.Entry
		kind      string
		identity  string
		pathsJSON string
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&entry.ID, &kind, &identity, &entry.Title, &entry.Artist, &entry.Album,
		&entry.AlbumArtist, &entry.Year, &entry.TrackCount, &entry.Source,
		&entry.SourceID, &pathsJSON, &createdAt, &updatedAt,
	)
	if err != nil {
		return media.Entry{}, err
	}
	entry.Kind = media.EntryKind(kind)
	if pathsJSON != "" {
		if err := json.Unmarshal([]byte(pathsJSON), &entry.Paths); err != nil {
			return media.Entry{}, fmt.Errorf("unmarshal paths: %w", err)
		}
	}
	return entry, nil
}
