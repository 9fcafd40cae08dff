// Package repository persists recruitment instances. Each instance is stored
// as one row holding its JSON state; mutations go through Update, which
// holds a row lock (PostgreSQL) or the database write lock (SQLite) across
// the whole read-modify-write so concurrent button presses on the same
// panel never interleave.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
)

// ErrNotFound is returned when a requested recruitment does not exist.
var ErrNotFound = errors.New("recruitment not found")

// ErrAlreadyExists is returned when Create is called with a duplicate id.
var ErrAlreadyExists = errors.New("recruitment already exists")

// MutateFunc changes an instance in place. Returning an error aborts the
// transaction and nothing is written.
type MutateFunc func(in *model.Instance) error

func encode(in *model.Instance) ([]byte, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode recruitment %s: %w", in.ID, err)
	}
	return b, nil
}

func decode(b []byte) (*model.Instance, error) {
	var in model.Instance
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, fmt.Errorf("decode recruitment: %w", err)
	}
	if in.Roster == nil {
		in.Roster = []model.RosterEntry{}
	}
	return &in, nil
}
