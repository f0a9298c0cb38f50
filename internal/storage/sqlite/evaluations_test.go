package sqlite

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

func newTestStorage(t *testing.T) *EvaluationStorage {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewEvaluationStorage(db, logger.NewNop())
	require.NoError(t, err)
	return s
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestStoreEvaluation(t *testing.T) {
	s := newTestStorage(t)

	rec := &EvaluationRecord{
		EntityID:           "usv-1",
		Latitude:           41.395,
		Longitude:          -73.952,
		Altitude:           12.5,
		Timestamp:          base,
		Allowed:            false,
		ViolatedExclusions: []string{"Impact"},
		Warnings:           []string{"Nets"},
	}
	id, err := s.StoreEvaluation(rec)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	got, err := s.GetEvaluationsByEntity("usv-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.False(t, got[0].Allowed)
	assert.Equal(t, base, got[0].Timestamp)
	assert.Equal(t, []string{"Impact"}, got[0].ViolatedExclusions)
	assert.Equal(t, []string{}, got[0].UnsatisfiedInclusions)
	assert.Equal(t, []string{"Nets"}, got[0].Warnings)
	assert.InDelta(t, 41.395, got[0].Latitude, 1e-12)
}

func TestEvaluationQueries(t *testing.T) {
	s := newTestStorage(t)
	for i := 0; i < 5; i++ {
		entity := "usv-1"
		if i%2 == 1 {
			entity = "usv-2"
		}
		_, err := s.StoreEvaluation(&EvaluationRecord{
			EntityID:  entity,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Allowed:   true,
		})
		require.NoError(t, err)
	}

	recent, err := s.GetRecentEvaluations(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, base.Add(4*time.Minute), recent[0].Timestamp)
	assert.Equal(t, base.Add(3*time.Minute), recent[1].Timestamp)

	byEntity, err := s.GetEvaluationsByEntity("usv-2", 10)
	require.NoError(t, err)
	assert.Len(t, byEntity, 2)

	ranged, err := s.GetEvaluationsByTimeRange(base.Add(time.Minute), base.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Len(t, ranged, 3)

	none, err := s.GetEvaluationsByEntity("missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTransitions(t *testing.T) {
	s := newTestStorage(t)

	for i, kind := range []string{"entered", "violation", "cleared"} {
		_, err := s.StoreTransition(&TransitionRecord{
			EntityID:  "usv-1",
			Kind:      kind,
			Areas:     []string{"Impact"},
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	got, err := s.GetTransitionsByEntity("usv-1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cleared", got[0].Kind)
	assert.Equal(t, "violation", got[1].Kind)
	assert.Equal(t, []string{"Impact"}, got[0].Areas)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestSubSecondTimestamps(t *testing.T) {
	s := newTestStorage(t)
	// A whole second sorts between two fractional ones only if every
	// stored time carries the same number of digits.
	times := []time.Time{
		base.Add(250 * time.Millisecond),
		base.Add(time.Second),
		base.Add(1500*time.Millisecond + 7*time.Nanosecond),
	}
	for _, ts := range times {
		_, err := s.StoreEvaluation(&EvaluationRecord{EntityID: "usv-1", Timestamp: ts, Allowed: true})
		require.NoError(t, err)
	}

	got, err := s.GetRecentEvaluations(10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, times[2], got[0].Timestamp)
	assert.Equal(t, times[1], got[1].Timestamp)
	assert.Equal(t, times[0], got[2].Timestamp)

	ranged, err := s.GetEvaluationsByTimeRange(base.Add(100*time.Millisecond), base.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, times[1], ranged[0].Timestamp)
	assert.Equal(t, times[0], ranged[1].Timestamp)
}
