package repository

import (
	"context"
	"testing"
	"time"

	"hrpulse/apperrors"
	"hrpulse/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ DashboardRepository = (*FixtureRepository)(nil)

func TestFixtureRepositoryScopesByEmployee(t *testing.T) {
	repo := NewFixtureRepository(0, nil, nil)
	ctx := context.Background()

	events, err := repo.ListJourneyEvents(ctx, "emp-001")
	require.NoError(t, err)
	assert.Len(t, events, 8)

	frictions, err := repo.ListFrictions(ctx, "emp-002")
	require.NoError(t, err)
	assert.Len(t, frictions, 2)
	for _, f := range frictions {
		assert.Equal(t, "emp-002", f.EmployeeID)
	}

	all, err := repo.ListFrictions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 6)

	none, err := repo.ListJourneyEvents(ctx, "emp-404")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFixtureRepositoryFaultInjection(t *testing.T) {
	repo := NewFixtureRepository(0, []string{database.CollectionAlerts}, nil)
	ctx := context.Background()

	_, err := repo.ListAlerts(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBackendFailure, apperrors.GetCode(err))

	_, err = repo.ListMetrics(ctx)
	assert.NoError(t, err)

	repo.SetFailing(database.CollectionAlerts, false)
	alerts, err := repo.ListAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts, 5)
}

func TestFixtureRepositoryLatencyHonoursContext(t *testing.T) {
	repo := NewFixtureRepository(time.Hour, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := repo.ListHeatmap(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFixtureRepositoryReturnsFreshCopies(t *testing.T) {
	repo := NewFixtureRepository(0, nil, nil)
	ctx := context.Background()

	first, err := repo.ListHeatmap(ctx)
	require.NoError(t, err)
	first[0].Leadership = -1

	second, err := repo.ListHeatmap(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, second[0].Leadership)
}
