package knowledge

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ConfirmWindow is how long a staged change waits for its yes/no answer.
const ConfirmWindow = 60 * time.Second

// ErrExpired is returned when a staged change is unknown or timed out.
var ErrExpired = errors.New("confirmation expired")

// ErrNotRequester is returned when someone else answers a confirmation.
var ErrNotRequester = errors.New("only the requester can answer this confirmation")

// Op is a staged change.
type Op string

const (
	OpPut    Op = "put"
	OpDelete Op = "delete"
)

// Change is a knowledge write waiting for confirmation.
type Change struct {
	Op          Op
	Kind        Kind
	Name        string
	Content     string
	RequesterID string
}

// Confirmations holds staged changes until they are answered or expire.
type Confirmations struct {
	mu      sync.Mutex
	pending *expirable.LRU[string, Change]
}

// NewConfirmations keeps at most size staged changes for ttl each.
func NewConfirmations(size int, ttl time.Duration) *Confirmations {
	return &Confirmations{pending: expirable.NewLRU[string, Change](size, nil, ttl)}
}

// Stage records c and returns the id its buttons refer to.
func (c *Confirmations) Stage(ch Change) string {
	id := uuid.NewString()
	c.pending.Add(id, ch)
	return id
}

// Take removes and returns the staged change. Each change can be taken
// once, by its requester.
func (c *Confirmations) Take(id, actorID string) (Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.pending.Get(id)
	if !ok {
		return Change{}, ErrExpired
	}
	if ch.RequesterID != actorID {
		return Change{}, ErrNotRequester
	}
	c.pending.Remove(id)
	return ch, nil
}

// Apply performs a confirmed change. For deletes it reports whether the
// entry still existed.
func (s *Store) Apply(ch Change) (bool, error) {
	switch ch.Op {
	case OpPut:
		return true, s.Put(ch.Kind, ch.Name, ch.Content)
	case OpDelete:
		return s.Delete(ch.Kind, ch.Name)
	}
	return false, errors.New("unknown knowledge operation")
}
