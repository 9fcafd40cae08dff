package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "knowledge.json"), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestOpenCreatesEmptyDocument(t *testing.T) {
	s := openTemp(t)
	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"macros":{},"strategies":{}}`, string(b))
	assert.Empty(t, s.Keys(KindMacro))
}

func TestPutGetDeletePersist(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Put(KindMacro, " 絶竜詩 ", "/p 散開\n/p 頭割り"))
	require.NoError(t, s.Put(KindStrategy, "P1", "[stgy:abc]"))
	assert.ErrorIs(t, s.Put(KindMacro, "  ", "x"), ErrEmptyName)
	assert.ErrorIs(t, s.Put(Kind("notes"), "a", "x"), ErrUnknownKind)

	v, ok := s.Get(KindMacro, "絶竜詩")
	require.True(t, ok)
	assert.Equal(t, "/p 散開\n/p 頭割り", v)

	reopened, err := Open(s.Path(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"絶竜詩"}, reopened.Keys(KindMacro))
	assert.Equal(t, []string{"P1"}, reopened.Keys(KindStrategy))

	removed, err := s.Delete(KindMacro, "絶竜詩")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.Delete(KindMacro, "絶竜詩")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSuggestIsCaseInsensitiveAndCapped(t *testing.T) {
	s := openTemp(t)
	for i := 0; i < 30; i++ {
		require.NoError(t, s.Put(KindMacro, fmt.Sprintf("Raid%02d", i), "x"))
	}
	require.NoError(t, s.Put(KindMacro, "other", "x"))

	got := s.Suggest(KindMacro, "raid")
	assert.Len(t, got, MaxSuggestions)
	assert.Equal(t, "Raid00", got[0])
	assert.Equal(t, []string{"other"}, s.Suggest(KindMacro, "OTH"))
	assert.Len(t, s.Suggest(KindMacro, ""), MaxSuggestions)
}

func TestFormatMacro(t *testing.T) {
	assert.Equal(t, "/p 散開\n/p 頭割り", FormatMacro("/p 散開 /p 頭割り"))
	assert.Equal(t, "line1\n/p x", FormatMacro("line1\n/p x"), "multi-line macros are left alone")
	assert.Equal(t, "just text", FormatMacro("just text"))
	assert.Equal(t, "/p a\n/p b", FormatMacro("/p a   /p b  "), "no trailing blanks on any line")
}

func TestConfirmations(t *testing.T) {
	s := openTemp(t)
	c := NewConfirmations(8, time.Minute)

	id := c.Stage(Change{Op: OpPut, Kind: KindMacro, Name: "m", Content: "/p hi", RequesterID: "u1"})
	_, err := c.Take(id, "u2")
	assert.ErrorIs(t, err, ErrNotRequester)

	ch, err := c.Take(id, "u1")
	require.NoError(t, err)
	ok, err := s.Apply(ch)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = c.Take(id, "u1")
	assert.ErrorIs(t, err, ErrExpired, "a change is applied once")

	del := c.Stage(Change{Op: OpDelete, Kind: KindMacro, Name: "m", RequesterID: "u1"})
	ch, err = c.Take(del, "u1")
	require.NoError(t, err)
	ok, err = s.Apply(ch)
	require.NoError(t, err)
	assert.True(t, ok)
	_, found := s.Get(KindMacro, "m")
	assert.False(t, found)
}

func TestConfirmationsExpire(t *testing.T) {
	c := NewConfirmations(8, 20*time.Millisecond)
	id := c.Stage(Change{Op: OpPut, Kind: KindMacro, Name: "m", RequesterID: "u1"})
	require.Eventually(t, func() bool {
		_, err := c.Take(id, "u1")
		return err == ErrExpired
	}, time.Second, 10*time.Millisecond)
}

func TestWatchReloadsExternalEdits(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// Give the watcher time to register before editing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"macros":{"外部":"/p edited"},"strategies":{}}`), 0o644))

	require.Eventually(t, func() bool {
		v, ok := s.Get(KindMacro, "外部")
		return ok && v == "/p edited"
	}, 3*time.Second, 25*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
