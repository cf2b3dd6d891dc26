package service

import (
	"context"
	"testing"
	"time"

	"tangle_backend/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptService_Record(t *testing.T) {
	repo := &memAttemptRepo{}
	svc := NewAttemptService(repo)
	fixed := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		resp, err := svc.Record(ctx, RecordAttemptRequest{Username: "alice", Category: "tangle", Level: 1, Attempt: i, Points: 5})
		require.NoError(t, err)
		assert.Equal(t, "Attempt saved", resp.Msg)
	}
	// Duplicates are stored as sent.
	_, err := svc.Record(ctx, RecordAttemptRequest{Username: "alice", Category: "tangle", Level: 1, Attempt: 3, Points: 5})
	require.NoError(t, err)

	attempts, err := repo.ListByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, attempts, 4)
	for _, a := range attempts {
		assert.Equal(t, fixed, a.Timestamp)
	}

	_, err = svc.Record(ctx, RecordAttemptRequest{Category: "tangle"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAttemptService_Stats(t *testing.T) {
	repo := &memAttemptRepo{}
	svc := NewAttemptService(repo)
	ctx := context.Background()

	for _, req := range []RecordAttemptRequest{
		{Username: "alice", Category: "tangle", Level: 1, Attempt: 1, Points: 5},
		{Username: "alice", Category: "tangle", Level: 1, Attempt: 2, Points: 10},
		{Username: "alice", Category: "tangle", Level: 2, Attempt: 1, Points: 3},
		{Username: "alice", Category: "shapes", Level: 1, Attempt: 1, Points: 7},
		{Username: "bob", Category: "tangle", Level: 1, Attempt: 1, Points: 100},
	} {
		_, err := svc.Record(ctx, req)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalAttempts)
	assert.Equal(t, 25, stats.TotalPoints)
	assert.Equal(t, 3, stats.LevelsPlayed)
	assert.Equal(t, 3, stats.CategoryStats["tangle"].Attempts)
	assert.Equal(t, 2, stats.CategoryStats["tangle"].LevelsPlayed)
	assert.Equal(t, 7, stats.CategoryStats["shapes"].Points)

	empty, err := svc.Stats(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalAttempts)
	assert.Empty(t, empty.CategoryStats)
}

func TestAttemptService_Leaderboard(t *testing.T) {
	repo := &memAttemptRepo{}
	svc := NewAttemptService(repo)
	ctx := context.Background()

	for _, req := range []RecordAttemptRequest{
		{Username: "alice", Category: "tangle", Points: 10},
		{Username: "bob", Category: "tangle", Points: 20},
		{Username: "carol", Category: "shapes", Points: 50},
	} {
		_, err := svc.Record(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.Leaderboard(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "carol", all[0].Username)
	assert.Equal(t, 1, all[0].Rank)

	tangle, err := svc.Leaderboard(ctx, "tangle", 1)
	require.NoError(t, err)
	require.Len(t, tangle, 1)
	assert.Equal(t, "bob", tangle[0].Username)
}
