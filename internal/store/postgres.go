package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pupwalk/pupwalk/internal/community"
)

// PostgresStore persists community records in Postgres via a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database, verifies the connection, and
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS comments (
			id uuid PRIMARY KEY,
			user_id text NOT NULL,
			zip_code text NOT NULL,
			body text NOT NULL,
			created_at timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS comments_zip_created_idx ON comments (zip_code, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS saved_locations (
			id uuid PRIMARY KEY,
			user_id text NOT NULL,
			location text NOT NULL,
			is_home boolean NOT NULL DEFAULT false,
			created_at timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS saved_locations_user_idx ON saved_locations (user_id)`,
		`CREATE TABLE IF NOT EXISTS dogs (
			id uuid PRIMARY KEY,
			user_id text NOT NULL,
			name text NOT NULL,
			zip_code text,
			created_at timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS dogs_user_idx ON dogs (user_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) InsertComment(ctx context.Context, c community.Comment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO comments (id, user_id, zip_code, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.UserID, c.ZipCode, c.Body, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListComments(ctx context.Context, zipCode string, since time.Time, limit int) ([]community.Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, zip_code, body, created_at
		 FROM comments
		 WHERE zip_code = $1 AND created_at >= $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		zipCode, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var result []community.Comment
	for rows.Next() {
		var c community.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.ZipCode, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *PostgresStore) InsertLocation(ctx context.Context, l community.SavedLocation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO saved_locations (id, user_id, location, is_home, created_at) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.UserID, l.Location, l.IsHome, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListLocations(ctx context.Context, userID string) ([]community.SavedLocation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, location, is_home, created_at
		 FROM saved_locations
		 WHERE user_id = $1
		 ORDER BY is_home DESC, created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var result []community.SavedLocation
	for rows.Next() {
		var l community.SavedLocation
		if err := rows.Scan(&l.ID, &l.UserID, &l.Location, &l.IsHome, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func (s *PostgresStore) DeleteLocation(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM saved_locations WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return community.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetHomeLocation(ctx context.Context, userID, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists string
	err = tx.QueryRow(ctx,
		`SELECT id FROM saved_locations WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return community.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup location: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE saved_locations SET is_home = (id = $2) WHERE user_id = $1`,
		userID, id,
	); err != nil {
		return fmt.Errorf("set home location: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) HomeLocations(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT location FROM saved_locations WHERE is_home ORDER BY location`,
	)
	if err != nil {
		return nil, fmt.Errorf("home locations: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("scan home location: %w", err)
		}
		result = append(result, loc)
	}
	return result, rows.Err()
}

func (s *PostgresStore) InsertDog(ctx context.Context, d community.DogProfile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO dogs (id, user_id, name, zip_code, created_at) VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.UserID, d.Name, d.ZipCode, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dog: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDogs(ctx context.Context, userID string) ([]community.DogProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, COALESCE(zip_code, ''), created_at
		 FROM dogs
		 WHERE user_id = $1
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list dogs: %w", err)
	}
	defer rows.Close()

	var result []community.DogProfile
	for rows.Next() {
		var d community.DogProfile
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.ZipCode, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dog: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *PostgresStore) DeleteDog(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM dogs WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("delete dog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return community.ErrNotFound
	}
	return nil
}
