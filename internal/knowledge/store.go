// Package knowledge is the bot's small persistent knowledge base: named
// in-game macros and strategy-board codes kept in a single JSON document.
// Writes rewrite the whole file (last write wins); external edits are
// picked up by Watch.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Kind selects one collection of the document.
type Kind string

const (
	KindMacro    Kind = "macros"
	KindStrategy Kind = "strategies"
)

// MaxSuggestions is the most autocomplete choices the platform accepts.
const MaxSuggestions = 25

// ErrUnknownKind is returned for a collection name outside Kind.
var ErrUnknownKind = errors.New("unknown knowledge collection")

// ErrEmptyName is returned when a key is blank.
var ErrEmptyName = errors.New("knowledge entry name is required")

type document struct {
	Macros     map[string]string `json:"macros"`
	Strategies map[string]string `json:"strategies"`
}

func emptyDocument() document {
	return document{Macros: map[string]string{}, Strategies: map[string]string{}}
}

func (d *document) collection(k Kind) (map[string]string, error) {
	switch k {
	case KindMacro:
		return d.Macros, nil
	case KindStrategy:
		return d.Strategies, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
}

// Store is a JSON-file backed key/value store with two collections.
type Store struct {
	path   string
	logger *zap.Logger

	mu  sync.RWMutex
	doc document
}

// Open loads the document at path, creating it (and its directory) with
// empty collections when it does not exist.
func Open(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger.Named("knowledge"), doc: emptyDocument()}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create knowledge dir: %w", err)
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(s.doc); err != nil {
			return nil, err
		}
		s.logger.Info("created knowledge file", zap.String("path", path))
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Reload replaces the in-memory document with the file contents.
func (s *Store) Reload() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read knowledge file: %w", err)
	}
	doc := emptyDocument()
	if len(strings.TrimSpace(string(b))) > 0 {
		if err := json.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("parse knowledge file: %w", err)
		}
	}
	if doc.Macros == nil {
		doc.Macros = map[string]string{}
	}
	if doc.Strategies == nil {
		doc.Strategies = map[string]string{}
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	s.logger.Debug("knowledge loaded", zap.Int("macros", len(doc.Macros)), zap.Int("strategies", len(doc.Strategies)))
	return nil
}

// Get returns the text stored under key.
func (s *Store) Get(kind Kind, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.doc.collection(kind)
	if err != nil {
		return "", false
	}
	v, ok := c[key]
	return v, ok
}

// Put stores text under key and rewrites the file.
func (s *Store) Put(kind Kind, key, text string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneLocked()
	c, err := next.collection(kind)
	if err != nil {
		return err
	}
	c[key] = text
	if err := s.write(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// Delete removes key and rewrites the file. It reports whether the key
// existed; deleting a missing key writes nothing.
func (s *Store) Delete(kind Kind, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.doc.collection(kind)
	if err != nil {
		return false, err
	}
	if _, ok := c[key]; !ok {
		return false, nil
	}
	next := s.cloneLocked()
	c, _ = next.collection(kind)
	delete(c, key)
	if err := s.write(next); err != nil {
		return false, err
	}
	s.doc = next
	return true, nil
}

// Keys lists the keys of a collection in sorted order.
func (s *Store) Keys(kind Kind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.doc.collection(kind)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of a collection.
func (s *Store) Snapshot(kind Kind) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.doc.collection(kind)
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Suggest returns up to MaxSuggestions keys containing current, ignoring
// case.
func (s *Store) Suggest(kind Kind, current string) []string {
	needle := strings.ToLower(current)
	var out []string
	for _, k := range s.Keys(kind) {
		if strings.Contains(strings.ToLower(k), needle) {
			out = append(out, k)
			if len(out) == MaxSuggestions {
				break
			}
		}
	}
	return out
}

func (s *Store) cloneLocked() document {
	next := emptyDocument()
	for k, v := range s.doc.Macros {
		next.Macros[k] = v
	}
	for k, v := range s.doc.Strategies {
		next.Strategies[k] = v
	}
	return next
}

// write replaces the file atomically via a temp file in the same directory.
func (s *Store) write(doc document) error {
	b, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode knowledge: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".knowledge-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write knowledge: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace knowledge file: %w", err)
	}
	return nil
}

// FormatMacro splits a macro pasted as one line back into one chat command
// per line.
func FormatMacro(content string) string {
	if strings.Contains(content, "\n") || !strings.Contains(content, "/p ") {
		return content
	}
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(content, "/p ", "\n/p ")), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}
