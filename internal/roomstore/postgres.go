package roomstore

import (
	"context"
	"database/sql"
	"errors"

	"planningpoker/internal/room"
)

// Schema is applied by db_client.EnsureSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS rooms (
    slug       TEXT PRIMARY KEY,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps one JSONB document per room.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (p *PostgresStore) Load(ctx context.Context, slug string) (*room.Room, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx, `SELECT data FROM rooms WHERE slug = $1`, slug).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(slug, data)
}

func (p *PostgresStore) Save(ctx context.Context, slug string, r *room.Room) error {
	if err := checkSlug(slug); err != nil {
		return err
	}
	data, err := encode(r)
	if err != nil {
		return err
	}
	const upsertQ = `
	  INSERT INTO rooms (slug, data, updated_at)
	       VALUES ($1, $2, now())
	  ON CONFLICT (slug) DO UPDATE
	        SET data       = EXCLUDED.data,
	            updated_at = EXCLUDED.updated_at`
	_, err = p.db.ExecContext(ctx, upsertQ, slug, data)
	return err
}

func (p *PostgresStore) Delete(ctx context.Context, slug string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM rooms WHERE slug = $1`, slug)
	return err
}

func (p *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT slug FROM rooms ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		out = append(out, slug)
	}
	return out, rows.Err()
}
