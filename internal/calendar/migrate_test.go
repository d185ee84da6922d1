package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscal/internal/domain"
)

func TestRezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	noon := dt(2025, time.March, 3, 12, 0)
	west := Rezone(noon, ny, la)
	assert.Equal(t, dt(2025, time.March, 3, 9, 0), west)
	assert.Equal(t, noon, Rezone(west, la, ny))
}

func TestSetTimezoneMigratesEvents(t *testing.T) {
	registry := NewRegistry()
	ctx, err := registry.Create("work", "America/New_York")
	require.NoError(t, err)

	timed := mustSingle(t, "Lunch", dt(2025, time.March, 3, 12, 0), dt(2025, time.March, 3, 13, 0))
	require.NoError(t, ctx.Store().Add(timed, false))

	open := mustSingle(t, "Open House", dt(2025, time.March, 3, 14, 0), time.Time{})
	require.NoError(t, ctx.Store().Add(open, false))

	days, err := domain.ParseWeekdays("MWF")
	require.NoError(t, err)
	series, err := domain.NewRecurringEvent("Standup", dt(2025, time.March, 3, 9, 0),
		dt(2025, time.March, 3, 9, 15), "", "", true, days,
		domain.UnboundedCount, dt(2025, time.March, 10, 0, 0))
	require.NoError(t, err)
	require.NoError(t, ctx.Store().Add(series, false))

	require.NoError(t, registry.SetTimezone("work", "America/Los_Angeles"))

	assert.Equal(t, "America/Los_Angeles", ctx.Timezone().String())
	assert.Equal(t, dt(2025, time.March, 3, 9, 0), timed.Start())
	assert.Equal(t, dt(2025, time.March, 3, 10, 0), timed.EffectiveEnd())

	// An event with no explicit end acquires the migrated end-of-day default.
	assert.Equal(t, dt(2025, time.March, 3, 11, 0), open.Start())
	assert.Equal(t, dt(2025, time.March, 3, 20, 59), open.EffectiveEnd())

	// NY midnight on the recurrence end date is still the previous day out west.
	assert.Equal(t, dt(2025, time.March, 3, 6, 0), series.Start())
	assert.Equal(t, dt(2025, time.March, 9, 0, 0), series.RecurrenceEndDate())
}
