package instance

import (
	"testing"
	"time"

	"equipd/internal/apperr"
	"equipd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStopAccruesDuration(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	d := mustDevice(t, s, "press", "SN-T1", 10)

	require.NoError(t, s.StartDevice(d))
	tree, err := s.GetDevice(d)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, tree.Status)
	require.NotNil(t, tree.LastStartAt)
	assert.True(t, tree.LastStartAt.Equal(base))

	now = base.Add(90 * time.Second)
	require.NoError(t, s.StopDevice(d))
	tree, err = s.GetDevice(d)
	require.NoError(t, err)
	assert.Equal(t, models.StatusStopped, tree.Status)
	require.NotNil(t, tree.LastStopAt)
	assert.Equal(t, 90, tree.TotalDuration)

	// вторая сессия копит дальше
	now = now.Add(time.Minute)
	require.NoError(t, s.StartDevice(d))
	now = now.Add(30 * time.Second)
	require.NoError(t, s.StopDevice(d))
	tree, err = s.GetDevice(d)
	require.NoError(t, err)
	assert.Equal(t, 120, tree.TotalDuration)
}

func TestInvalidTransitions(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	d := mustDevice(t, s, "press", "SN-T2", 10)

	// остановленное нельзя остановить
	err := s.StopDevice(d)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	require.NoError(t, s.StartDevice(d))
	err = s.StartDevice(d)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	assert.ErrorIs(t, s.StartDevice(999), apperr.ErrNotFound)
}

func TestBreakdownFromRunning(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	d := mustDevice(t, s, "press", "SN-T3", 10)
	require.NoError(t, s.StartDevice(d))

	now = base.Add(45 * time.Second)
	require.NoError(t, s.ReportBreakdown(d))

	tree, err := s.GetDevice(d)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBreakdown, tree.Status)
	assert.Equal(t, 45, tree.TotalDuration)
	require.NotNil(t, tree.LastStopAt)

	// из поломки можно запуститься снова
	require.NoError(t, s.StartDevice(d))
	tree, err = s.GetDevice(d)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, tree.Status)
}
