// internal/app/store/directory/directory.go
//
// Package directory reads the umbrella body's member registry, a read-only
// Postgres database that holds the authoritative civil names and degrees of
// members linked by DirectoryID.
package directory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Entry is a directory record.
type Entry struct {
	ID       string
	FullName string
	Degree   string
}

// Directory is a read-only client of the registry.
type Directory struct {
	db *sql.DB
}

// Open connects to the registry and verifies the connection.
func Open(ctx context.Context, dsn string) (*Directory, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping directory: %w", err)
	}
	return &Directory{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Directory { return &Directory{db: db} }

func (d *Directory) Close() error { return d.db.Close() }

// Ping checks the connection.
func (d *Directory) Ping(ctx context.Context) error { return d.db.PingContext(ctx) }

// Lookup returns the entries among ids, keyed by id. Unknown ids are absent.
func (d *Directory) Lookup(ctx context.Context, ids []string) (map[string]Entry, error) {
	out := make(map[string]Entry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, full_name, COALESCE(degree, '') FROM directory_members WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("directory lookup: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.FullName, &e.Degree); err != nil {
			return nil, err
		}
		out[e.ID] = e
	}
	return out, rows.Err()
}
