package entries

import (
	"context"
	"errors"
	"fmt"

	"tortillometro/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db   dbx.Querier
	lock bool
}

func NewRepository(q dbx.Querier) Store {
	return &Repository{db: q}
}

// NewLockingRepository returns a repository whose GetByID takes a row lock
// (SELECT ... FOR UPDATE). q must be a transaction for the lock to outlive the read.
func NewLockingRepository(q dbx.Querier) Store {
	return &Repository{db: q, lock: true}
}

// List returns every entry, best rated first and newest first within a rating.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	const query = `
        SELECT id::text, name, address, latitude, longitude, rating, comment, author_name, created_at
        FROM entries
        ORDER BY rating DESC, created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	list := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.Name,
			&e.Address,
			&e.Latitude,
			&e.Longitude,
			&e.Rating,
			&e.Comment,
			&e.AuthorName,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return list, nil
}

// Create inserts entry with a fresh ID. CreatedAt is filled from the database clock.
func (r *Repository) Create(ctx context.Context, entry *Entry) error {
	const query = `
        INSERT INTO entries (id, name, address, latitude, longitude, rating, comment, author_name)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at
    `
	id := uuid.New().String()

	err := r.db.QueryRow(ctx, query,
		id,
		entry.Name,
		entry.Address,
		entry.Latitude,
		entry.Longitude,
		entry.Rating,
		entry.Comment,
		entry.AuthorName,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	entry.ID = id
	return nil
}

// GetByID returns ErrEntryNotFound for unknown or malformed ids.
func (r *Repository) GetByID(ctx context.Context, id string) (*Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrEntryNotFound
	}

	query := `
        SELECT id::text, name, address, latitude, longitude, rating, comment, author_name, created_at
        FROM entries
        WHERE id = $1
    `
	if r.lock {
		query += " FOR UPDATE"
	}

	var e Entry
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.Name,
		&e.Address,
		&e.Latitude,
		&e.Longitude,
		&e.Rating,
		&e.Comment,
		&e.AuthorName,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry %s: %w", id, err)
	}
	return &e, nil
}

// Delete removes the entry. Ownership must be checked by the caller.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrEntryNotFound
	}

	result, err := r.db.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}
