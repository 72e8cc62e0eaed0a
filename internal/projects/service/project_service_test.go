package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmschedule/filmschedule-backend/internal/apperr"
	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
	"github.com/filmschedule/filmschedule-backend/internal/projects/repository"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setupService(t *testing.T) (*ProjectService, *testClock, repository.Store) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repository.NewRedisStore(client, "")
	clock := &testClock{now: time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)}

	return NewProjectService(store, WithClock(clock.Now)), clock, store
}

func scheduleProject(name string, dates ...string) *domain.Project {
	p := &domain.Project{Name: name}
	for i, d := range dates {
		p.Days = append(p.Days, domain.ScheduleDay{
			Date:     d,
			Position: i,
			Rows:     []domain.ScheduleRow{{Time: "08:00", Scene: fmt.Sprintf("%d", i+1)}},
		})
	}
	return p
}

func TestSave_CreatesProject(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, scheduleProject("Feature", "20-06-2024"))
	require.NoError(t, err)

	assert.Regexp(t, `^prj_[0-9a-f]{32}$`, p.ID)
	assert.Equal(t, "15-06-2024 12:00:00", p.CreatedAt)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.False(t, p.Archived)

	require.NotNil(t, p.ColumnWidths)
	assert.Equal(t, domain.DefaultColumnWidths(), *p.ColumnWidths)
	require.NotNil(t, p.ColumnHeaders)
	require.NotNil(t, p.CalltimeHeaders)

	require.Len(t, p.Days, 1)
	assert.NotEmpty(t, p.Days[0].ID)
	assert.NotEmpty(t, p.Days[0].Rows[0].ID)
	assert.Equal(t, domain.RowTypeItem, p.Days[0].Rows[0].Type)
	assert.NotNil(t, p.Calltimes)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestSave_UpsertsByName(t *testing.T) {
	svc, clock, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, scheduleProject("Feature", "20-06-2024"))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	in := scheduleProject("Feature", "20-06-2024", "21-06-2024")
	in.Notes = "second pass"
	second, err := svc.Save(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "15-06-2024 13:00:00", second.UpdatedAt)
	assert.Equal(t, "second pass", second.Notes)
	assert.Len(t, second.Days, 2)

	list, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list.Active, 1)
	assert.Empty(t, list.Archived)
}

func TestSave_ArchivesPastSchedules(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	past, err := svc.Save(ctx, scheduleProject("Wrapped", "10-06-2024", "14-06-2024"))
	require.NoError(t, err)
	assert.True(t, past.Archived)

	today, err := svc.Save(ctx, scheduleProject("Today", "10-06-2024", "15-06-2024"))
	require.NoError(t, err)
	assert.False(t, today.Archived)

	empty, err := svc.Save(ctx, &domain.Project{Name: "No days"})
	require.NoError(t, err)
	assert.False(t, empty.Archived)
}

func TestSave_ConcurrentSameNameKeepsOneProject(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := svc.Save(ctx, scheduleProject("Race", "20-06-2024"))
			errs[i] = err
			if err == nil {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	list, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list.Active, 1)
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Get(context.Background(), "prj_missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	svc, clock, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, scheduleProject("Feature", "20-06-2024"))
	require.NoError(t, err)

	t.Run("overwrites and keeps identity", func(t *testing.T) {
		clock.Advance(time.Minute)
		in := scheduleProject("Feature renamed", "01-06-2024")
		in.ID = "ignored"
		in.CreatedAt = "01-01-2000 00:00:00"

		up, err := svc.Update(ctx, p.ID, in)
		require.NoError(t, err)
		assert.Equal(t, p.ID, up.ID)
		assert.Equal(t, p.CreatedAt, up.CreatedAt)
		assert.Equal(t, "15-06-2024 12:01:00", up.UpdatedAt)
		assert.Equal(t, "Feature renamed", up.Name)
		assert.True(t, up.Archived)
	})

	t.Run("missing id is not found", func(t *testing.T) {
		_, err := svc.Update(ctx, "prj_missing", scheduleProject("X"))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("renaming onto another project is a conflict", func(t *testing.T) {
		_, err := svc.Save(ctx, scheduleProject("Other"))
		require.NoError(t, err)

		_, err = svc.Update(ctx, p.ID, scheduleProject("Other"))
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})
}

func TestDelete(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, scheduleProject("Feature"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), apperr.ErrNotFound)
}

func TestList_SplitsAndLazilyArchives(t *testing.T) {
	svc, clock, store := setupService(t)
	ctx := context.Background()

	soon, err := svc.Save(ctx, scheduleProject("Soon", "16-06-2024"))
	require.NoError(t, err)
	_, err = svc.Save(ctx, scheduleProject("Later", "30-06-2024"))
	require.NoError(t, err)
	_, err = svc.Save(ctx, scheduleProject("Done", "01-06-2024"))
	require.NoError(t, err)

	list, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, list.Active, 2)
	assert.Empty(t, list.Archived, "archived projects are omitted unless requested")

	list, err = svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, list.Archived, 1)
	assert.Equal(t, "Done", list.Archived[0].Name)
	assert.Equal(t, 1, list.Archived[0].DayCount)

	// "Soon" passes its last shoot day; listing archives it in the store
	clock.Advance(48 * time.Hour)
	list, err = svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, list.Active, 1)
	assert.Equal(t, "Later", list.Active[0].Name)
	assert.Len(t, list.Archived, 2)

	stored, err := store.Get(ctx, soon.ID)
	require.NoError(t, err)
	assert.True(t, stored.Archived)
}

func TestToggleArchive(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, scheduleProject("Feature", "30-06-2024"))
	require.NoError(t, err)

	res, err := svc.ToggleArchive(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, res.Archived)
	assert.Equal(t, "Project archived", res.Message)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)

	res, err = svc.ToggleArchive(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, res.Archived)
	assert.Equal(t, "Project unarchived", res.Message)

	_, err = svc.ToggleArchive(ctx, "prj_missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestToggleArchive_PastProjectIsArchivedAgainOnList(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, scheduleProject("Done", "01-06-2024"))
	require.NoError(t, err)
	require.True(t, p.Archived)

	res, err := svc.ToggleArchive(ctx, p.ID)
	require.NoError(t, err)
	require.False(t, res.Archived)

	list, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, list.Active)
	assert.Len(t, list.Archived, 1)
}

func TestDuplicate(t *testing.T) {
	svc, clock, _ := setupService(t)
	ctx := context.Background()

	in := scheduleProject("Feature", "01-06-2024", "30-06-2024")
	in.Calltimes = []domain.Calltime{{Title: "Crew", Rows: []domain.CalltimeRow{{Time: "06:00", Name: "Gaffer"}}}}
	src, err := svc.Save(ctx, in)
	require.NoError(t, err)
	_, err = svc.ToggleArchive(ctx, src.ID)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	cp, err := svc.Duplicate(ctx, src.ID)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, cp.ID)
	assert.Equal(t, "Feature (Copy)", cp.Name)
	assert.False(t, cp.Archived)
	assert.Equal(t, "15-06-2024 13:00:00", cp.CreatedAt)
	assert.Equal(t, cp.CreatedAt, cp.UpdatedAt)

	require.Len(t, cp.Days, 2)
	require.Len(t, cp.Calltimes, 1)
	assert.NotEqual(t, src.Days[0].ID, cp.Days[0].ID)
	assert.NotEqual(t, src.Days[0].Rows[0].ID, cp.Days[0].Rows[0].ID)
	assert.NotEqual(t, src.Calltimes[0].ID, cp.Calltimes[0].ID)
	assert.NotEqual(t, src.Calltimes[0].Rows[0].ID, cp.Calltimes[0].Rows[0].ID)
	assert.Equal(t, src.Days[1].Rows[0].Scene, cp.Days[1].Rows[0].Scene)
	assert.Equal(t, "Gaffer", cp.Calltimes[0].Rows[0].Name)

	stored, err := svc.Get(ctx, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, cp, stored)

	second, err := svc.Duplicate(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "Feature (Copy 2)", second.Name)

	_, err = svc.Duplicate(ctx, "prj_missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSweepArchived(t *testing.T) {
	svc, clock, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, scheduleProject("A", "16-06-2024"))
	require.NoError(t, err)
	_, err = svc.Save(ctx, scheduleProject("B", "17-06-2024"))
	require.NoError(t, err)
	_, err = svc.Save(ctx, scheduleProject("C", "01-07-2024"))
	require.NoError(t, err)

	n, err := svc.SweepArchived(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.Advance(3 * 24 * time.Hour)
	sweeper := NewArchiveSweeper(svc)
	n, err = sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "already archived projects are not counted again")
}

func TestArchiveSweeper_StartRejectsBadSchedule(t *testing.T) {
	svc, _, _ := setupService(t)
	sweeper := NewArchiveSweeper(svc)

	assert.Error(t, sweeper.Start("not a schedule"))
	sweeper.Stop()

	require.NoError(t, sweeper.Start("0 0 * * * *"))
	sweeper.Stop()
}

func TestCopyName(t *testing.T) {
	assert.Equal(t, "Shoot (Copy)", copyName("Shoot", 1))
	assert.Equal(t, "Shoot (Copy 2)", copyName("Shoot", 2))
	assert.Equal(t, "Shoot (Copy 7)", copyName("Shoot", 7))
}
