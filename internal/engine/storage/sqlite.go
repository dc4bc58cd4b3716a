// Package storage is the SQLite place and post catalog.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/rendis/pinmap/internal/model"
)

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates a catalog database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS places (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		country TEXT,
		is_domestic INTEGER,
		address TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		seq INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		place_id TEXT NOT NULL,
		thumbnail TEXT NOT NULL DEFAULT '',
		likes INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_places_seq ON places(seq);
	CREATE INDEX IF NOT EXISTS idx_places_country ON places(country);
	CREATE INDEX IF NOT EXISTS idx_posts_place ON posts(place_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// InsertPlaces upserts places. Catalog order is insertion order; replacing a
// place keeps its original position.
func (s *Store) InsertPlaces(ctx context.Context, places []model.Place) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM places").Scan(&seq); err != nil {
		return 0, fmt.Errorf("reading sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO places
		(id, name, lat, lng, country, is_domestic, address, region, district, created_at, seq)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, lat=excluded.lat, lng=excluded.lng,
			country=excluded.country, is_domestic=excluded.is_domestic,
			address=excluded.address, region=excluded.region,
			district=excluded.district, created_at=excluded.created_at
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	for i, p := range places {
		_, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Lat, p.Lng,
			nullString(p.Country), nullBool(p.IsDomestic),
			p.Address, p.Region, p.District,
			p.CreatedAt.UTC(), seq+int64(i)+1,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting place %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}
	return len(places), nil
}

// InsertPosts replaces posts by id.
func (s *Store) InsertPosts(ctx context.Context, posts []model.Post) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO posts (id, place_id, thumbnail, likes, created_at)
		VALUES (?,?,?,?,?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		if _, err := stmt.ExecContext(ctx, p.ID, p.PlaceID, p.Thumbnail, p.Likes, p.CreatedAt.UTC()); err != nil {
			return 0, fmt.Errorf("inserting post %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}
	return len(posts), nil
}

// LoadPlaces reads the whole catalog in catalog order.
func (s *Store) LoadPlaces(ctx context.Context) ([]model.Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, lat, lng, country, is_domestic, address, region, district, created_at
		FROM places ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying places: %w", err)
	}
	defer rows.Close()

	var places []model.Place
	for rows.Next() {
		var (
			p        model.Place
			country  sql.NullString
			domestic sql.NullBool
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Lat, &p.Lng, &country, &domestic,
			&p.Address, &p.Region, &p.District, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning place: %w", err)
		}
		p.Country = country.String
		if domestic.Valid {
			p.IsDomestic = model.Bool(domestic.Bool)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating places: %w", err)
	}
	return places, nil
}

// LoadPosts reads every post.
func (s *Store) LoadPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, place_id, thumbnail, likes, created_at FROM posts ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.PlaceID, &p.Thumbnail, &p.Likes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}
	return posts, nil
}

// Count returns the number of places.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM places").Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

