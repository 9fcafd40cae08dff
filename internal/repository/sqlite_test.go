package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/lucybot/internal/database"
	"github.com/Shivanand-hulikatti/lucybot/internal/model"
)

func newSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.MigrateSQLite(context.Background(), db)
	require.NoError(t, err)
	return NewSQLiteRepository(db)
}

func newInstance(t *testing.T, id string, typ model.RecruitmentType, created time.Time) *model.Instance {
	t.Helper()
	in, err := model.NewInstance(id, model.Descriptor{
		Content:       "極タイタン",
		Type:          typ,
		OrganizerID:   "org",
		OrganizerName: "Lucy",
	}, "", created)
	require.NoError(t, err)
	return in
}

func TestCreateGetRoundTrip(t *testing.T) {
	repo := newSQLite(t)
	ctx := context.Background()
	in := newInstance(t, "r1", model.TypeFull, time.Now())
	require.NoError(t, in.OccupySeat("MT", model.Member{ID: "u1", Name: "Alice"}))
	require.NoError(t, in.AddAdjustable(model.Member{ID: "u2", Name: "Bob"}, "H or D"))

	require.NoError(t, repo.Create(ctx, in))
	assert.ErrorIs(t, repo.Create(ctx, in), ErrAlreadyExists)

	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, in.Seats, got.Seats)
	assert.Equal(t, in.Roster, got.Roster)
	assert.Equal(t, in.Descriptor, got.Descriptor)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAbortsOnError(t *testing.T) {
	repo := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newInstance(t, "r1", model.TypeLight, time.Now())))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, "r1", func(in *model.Instance) error {
		if err := in.OccupySeat("Tank", model.Member{ID: "u1"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Zero(t, got.Occupancy(), "failed mutation is not written")

	_, err = repo.Update(ctx, "missing", func(*model.Instance) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	repo := newSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newInstance(t, fmt.Sprintf("r%d", i), model.TypeFree4, base.Add(time.Duration(i)*time.Minute))))
	}
	_, err := repo.Update(ctx, "r1", func(in *model.Instance) error { return in.Cancel("org") })
	require.NoError(t, err)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r2", all[0].ID, "newest first")

	open, err := repo.List(ctx, model.StatusOpen)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	cancelled, err := repo.List(ctx, model.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "r1", cancelled[0].ID)

	require.NoError(t, repo.Delete(ctx, "r1"))
	_, err = repo.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentJoinsNeverOverfill(t *testing.T) {
	repo := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newInstance(t, "r1", model.TypeFull, time.Now())))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		joined  int
		notices int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := model.Member{ID: fmt.Sprintf("u%d", i)}
			var notify bool
			_, err := repo.Update(ctx, "r1", func(in *model.Instance) error {
				if err := in.AddAdjustable(m, "any"); err != nil {
					return err
				}
				notify = in.CheckAndNotify()
				return nil
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				joined++
				if notify {
					notices++
				}
			} else {
				assert.ErrorIs(t, err, model.ErrFull)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, joined)
	assert.Equal(t, 1, notices, "exactly one party-full notice per fill episode")
	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Occupancy())
}
