package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
)

// SQLiteRepository stores recruitments in a local SQLite file. The database
// must be opened with database.OpenSQLite so transactions begin IMMEDIATE.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository constructs a SQLiteRepository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new recruitment.
func (r *SQLiteRepository) Create(ctx context.Context, in *model.Instance) error {
	state, err := encode(in)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO recruitments (id, organizer_id, status, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.Descriptor.OrganizerID, string(in.Status), string(state),
		in.CreatedAt.UnixMilli(), in.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert recruitment: %w", err)
	}
	return nil
}

// Get returns a single recruitment or ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*model.Instance, error) {
	var state string
	err := r.db.QueryRowContext(ctx, `SELECT state FROM recruitments WHERE id = ?`, id).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get recruitment: %w", err)
	}
	return decode([]byte(state))
}

// List returns recruitments newest first, optionally filtered by status.
func (r *SQLiteRepository) List(ctx context.Context, status model.Status) ([]*model.Instance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT state FROM recruitments
		 WHERE (? = '' OR status = ?)
		 ORDER BY created_at DESC, id`,
		string(status), string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list recruitments: %w", err)
	}
	defer rows.Close()

	var out []*model.Instance
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("scan recruitment: %w", err)
		}
		in, err := decode([]byte(state))
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Update applies fn to the recruitment inside an IMMEDIATE transaction, which
// holds the database write lock from the first read until commit.
func (r *SQLiteRepository) Update(ctx context.Context, id string, fn MutateFunc) (in *model.Instance, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var state string
	err = tx.QueryRowContext(ctx, `SELECT state FROM recruitments WHERE id = ?`, id).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read recruitment: %w", err)
	}
	if in, err = decode([]byte(state)); err != nil {
		return nil, err
	}

	if err = fn(in); err != nil {
		return nil, err
	}
	in.UpdatedAt = time.Now().UTC()

	b, err := encode(in)
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE recruitments SET status = ?, state = ?, updated_at = ? WHERE id = ?`,
		string(in.Status), string(b), in.UpdatedAt.UnixMilli(), id,
	); err != nil {
		return nil, fmt.Errorf("update recruitment: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return in, nil
}

// Delete removes a recruitment. Deleting a missing row is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recruitments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete recruitment: %w", err)
	}
	return nil
}
