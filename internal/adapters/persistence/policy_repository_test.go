package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitori/dispatch-go/internal/adapters/persistence"
	"github.com/kaitori/dispatch-go/internal/domain/policy"
	"github.com/kaitori/dispatch-go/test/helpers"
)

func TestLoadSnapshot_Defaults(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPolicyRepository(db)

	snapshot, err := repo.LoadSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 13*60+10, snapshot.CutoffMinute)
	assert.Equal(t, 10*60, snapshot.RouteStartMinute)
	assert.Equal(t, 20, snapshot.MaxOrdersPerStaff)
	assert.Equal(t, policy.PrioritySpeed, snapshot.OptimizationPriority)
	assert.False(t, snapshot.WeekendProcessing)
	assert.InDelta(t, 34.7025, snapshot.DefaultStartLocation.Lat, 0.0001)
}

func TestLoadSnapshot_RulesOverrideDefaults(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPolicyRepository(db)

	helpers.SeedRule(t, db, "cutoff_time", "10:00")
	helpers.SeedRule(t, db, "weekend_processing", "true")
	helpers.SeedRule(t, db, "max_orders_per_staff", "5")
	helpers.SeedRule(t, db, "optimization_priority", "distance")
	helpers.SeedRule(t, db, "default_start_lat", "35.6812")
	helpers.SeedRule(t, db, "memo", "棚卸し週間") // unknown keys are ignored

	snapshot, err := repo.LoadSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10*60, snapshot.CutoffMinute)
	assert.True(t, snapshot.WeekendProcessing)
	assert.Equal(t, 5, snapshot.MaxOrdersPerStaff)
	assert.Equal(t, policy.PriorityDistance, snapshot.OptimizationPriority)
	assert.InDelta(t, 35.6812, snapshot.DefaultStartLocation.Lat, 0.0001)

	// Untouched keys keep their defaults
	assert.Equal(t, 8, snapshot.MaxRouteTimeHours)
}

func TestLoadSnapshot_MalformedRule(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPolicyRepository(db)

	helpers.SeedRule(t, db, "cutoff_time", "25:99")

	_, err := repo.LoadSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cutoff_time")
}

func TestUpsertRule_ReplacesValue(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormPolicyRepository(db)

	helpers.SeedRule(t, db, "auto_assign", "false")
	require.NoError(t, repo.UpsertRule(ctx, "auto_assign", "true"))

	snapshot, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snapshot.AutoAssign)
}

func TestHolidays_RoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormPolicyRepository(db)

	require.NoError(t, repo.SaveHoliday(ctx, policy.Holiday{
		Date: time.Date(2025, 7, 21, 9, 30, 0, 0, time.UTC), // time of day is dropped
		Name: "海の日",
	}))
	require.NoError(t, repo.SaveHoliday(ctx, policy.Holiday{
		Date:      time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC),
		Name:      "棚卸し出勤日",
		IsWorking: true,
	}))

	holidays, err := repo.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 2)

	// Ordered by date
	assert.Equal(t, "棚卸し出勤日", holidays[0].Name)
	assert.True(t, holidays[0].IsWorking)
	assert.Equal(t, time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC), holidays[1].Date)
	assert.False(t, holidays[1].IsWorking)
}
