package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/motosense/backend/internal/domain/datasync"
	"github.com/motosense/backend/internal/domain/prediction"
	"github.com/motosense/backend/internal/domain/profile"
	"github.com/motosense/backend/internal/domain/race"
)

func TestRaceRepository_UpsertReportsCreation(t *testing.T) {
	t.Parallel()

	repo := NewRaceRepository(nil)
	ctx := context.Background()

	item := race.Race{
		ID:          "gp-qatar-2026",
		Series:      race.SeriesMotoGP,
		Round:       1,
		Name:        "Qatar Grand Prix",
		ScheduledAt: time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC),
		Status:      race.StatusUpcoming,
	}

	created, err := repo.Upsert(ctx, item)
	require.NoError(t, err)
	require.True(t, created)

	item.Venue = "Lusail"
	created, err = repo.Upsert(ctx, item)
	require.NoError(t, err)
	require.False(t, created)

	got, ok, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Lusail", got.Venue)
}

func TestRaceRepository_ListSortsByScheduleThenID(t *testing.T) {
	t.Parallel()

	repo := NewRaceRepository(SeedRaces())

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		if prev.ScheduledAt.Equal(cur.ScheduledAt) {
			require.Less(t, prev.ID, cur.ID)
			continue
		}
		require.True(t, prev.ScheduledAt.Before(cur.ScheduledAt))
	}
}

func TestPredictionRepository_RejectsDuplicate(t *testing.T) {
	t.Parallel()

	repo := NewPredictionRepository()
	ctx := context.Background()

	item := prediction.Prediction{
		ID:          "pred-1",
		UserID:      "user-1",
		RaceID:      "gp-qatar-2026",
		Picks:       []string{"rider-mm93", "rider-fq20", "rider-pa63", "rider-eb23", "rider-jm89"},
		SubmittedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.Create(ctx, item))

	err := repo.Create(ctx, item)
	require.ErrorIs(t, err, prediction.ErrAlreadyExists)

	got, ok, err := repo.GetByUserAndRace(ctx, "user-1", "gp-qatar-2026")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, item.Picks, got.Picks)
}

func TestProfileRepository_ListTopProfilesOrdersByPoints(t *testing.T) {
	t.Parallel()

	repo := NewProfileRepository()
	ctx := context.Background()

	for _, p := range []profile.Profile{
		{UserID: "user-a", TotalPoints: 40},
		{UserID: "user-b", TotalPoints: 90},
		{UserID: "user-c", TotalPoints: 90},
		{UserID: "user-d", TotalPoints: 10},
	} {
		require.NoError(t, repo.UpsertProfile(ctx, p))
	}

	top, err := repo.ListTopProfiles(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	require.Equal(t, "user-b", top[0].UserID)
	require.Equal(t, "user-c", top[1].UserID)
	require.Equal(t, "user-a", top[2].UserID)
}

func TestDataSyncRepository_ListRunsNewestFirst(t *testing.T) {
	t.Parallel()

	repo := NewDataSyncRepository(SeedSources("http://feeds.local"))
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, repo.CreateRun(ctx, datasync.Run{
			ID:        id,
			SourceID:  SourceIDSchedule,
			Type:      datasync.SourceTypeSchedule,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Status:    datasync.RunStatusRunning,
		}))
	}

	runs, err := repo.ListRunsBySource(ctx, SourceIDSchedule, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
}
