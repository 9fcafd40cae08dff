package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
)

// PostgresRepository stores recruitments in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new recruitment.
func (r *PostgresRepository) Create(ctx context.Context, in *model.Instance) error {
	state, err := encode(in)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO recruitments (id, organizer_id, status, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		in.ID, in.Descriptor.OrganizerID, string(in.Status), state, in.CreatedAt, in.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert recruitment: %w", err)
	}
	return nil
}

// Get returns a single recruitment or ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*model.Instance, error) {
	var state []byte
	err := r.db.QueryRow(ctx, `SELECT state FROM recruitments WHERE id = $1`, id).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get recruitment: %w", err)
	}
	return decode(state)
}

// List returns recruitments newest first, optionally filtered by status.
func (r *PostgresRepository) List(ctx context.Context, status model.Status) ([]*model.Instance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT state FROM recruitments
		 WHERE ($1::text = '' OR status = $1::text)
		 ORDER BY created_at DESC`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list recruitments: %w", err)
	}
	defer rows.Close()

	var out []*model.Instance
	for rows.Next() {
		var state []byte
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("scan recruitment: %w", err)
		}
		in, err := decode(state)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Update applies fn to the recruitment inside a transaction.
//
// SELECT … FOR UPDATE takes an exclusive lock on the row, so a second
// press on the same panel waits until this one commits and then sees its
// result. Capacity checks inside fn therefore always run against the
// latest seats.
func (r *PostgresRepository) Update(ctx context.Context, id string, fn MutateFunc) (in *model.Instance, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// ── 1. Lock the row. ──
	var state []byte
	err = tx.QueryRow(ctx, `SELECT state FROM recruitments WHERE id = $1 FOR UPDATE`, id).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock recruitment row: %w", err)
	}
	if in, err = decode(state); err != nil {
		return nil, err
	}

	// ── 2. Mutate. ──
	if err = fn(in); err != nil {
		return nil, err
	}
	in.UpdatedAt = time.Now().UTC()

	// ── 3. Write back and commit. ──
	if state, err = encode(in); err != nil {
		return nil, err
	}
	if _, err = tx.Exec(ctx,
		`UPDATE recruitments SET status = $2, state = $3, updated_at = $4 WHERE id = $1`,
		id, string(in.Status), state, in.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update recruitment: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return in, nil
}

// Delete removes a recruitment. Deleting a missing row is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM recruitments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete recruitment: %w", err)
	}
	return nil
}
