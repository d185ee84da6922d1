package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dt(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func mustSingle(t *testing.T, subject string, start, end time.Time) *SingleEvent {
	t.Helper()
	event, err := NewSingleEvent(subject, start, end, "", "", true)
	require.NoError(t, err)
	return event
}

func TestEffectiveEndDefaultsToEndOfDay(t *testing.T) {
	event := mustSingle(t, "Dentist", dt(2025, time.March, 3, 14, 0), time.Time{})
	assert.False(t, event.HasExplicitEnd())
	assert.Equal(t, dt(2025, time.March, 3, 23, 59), event.EffectiveEnd())
}

func TestNewSingleEventRejectsEndBeforeStart(t *testing.T) {
	_, err := NewSingleEvent("Broken", dt(2025, time.March, 3, 10, 0),
		dt(2025, time.March, 3, 9, 0), "", "", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestSetEnd(t *testing.T) {
	event := mustSingle(t, "Review", dt(2025, time.March, 3, 10, 0), dt(2025, time.March, 3, 11, 0))

	err := event.SetEnd(dt(2025, time.March, 3, 9, 0))
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, dt(2025, time.March, 3, 11, 0), event.EffectiveEnd())

	require.NoError(t, event.SetEnd(time.Time{}))
	assert.False(t, event.HasExplicitEnd())
	assert.Equal(t, dt(2025, time.March, 3, 23, 59), event.EffectiveEnd())
}

func TestSingleEventConflicts(t *testing.T) {
	a := mustSingle(t, "A", dt(2025, time.March, 3, 9, 0), dt(2025, time.March, 3, 10, 0))
	b := mustSingle(t, "B", dt(2025, time.March, 3, 9, 30), dt(2025, time.March, 3, 10, 30))
	c := mustSingle(t, "C", dt(2025, time.March, 3, 10, 0), dt(2025, time.March, 3, 11, 0))

	assert.True(t, a.ConflictsWith(b))
	assert.True(t, b.ConflictsWith(a))

	// Back-to-back intervals do not overlap.
	assert.False(t, a.ConflictsWith(c))
	assert.False(t, c.ConflictsWith(a))
}

func TestSingleConflictsWithRecurring(t *testing.T) {
	days, err := ParseWeekdays("MWF")
	require.NoError(t, err)
	series, err := NewRecurringEvent("Standup", dt(2025, time.March, 3, 9, 0),
		dt(2025, time.March, 3, 9, 15), "", "", true, days, 3, time.Time{})
	require.NoError(t, err)

	hit := mustSingle(t, "Sync", dt(2025, time.March, 5, 9, 0), dt(2025, time.March, 5, 10, 0))
	miss := mustSingle(t, "Sync", dt(2025, time.March, 4, 9, 0), dt(2025, time.March, 4, 10, 0))

	assert.True(t, hit.ConflictsWith(series))
	assert.True(t, series.ConflictsWith(hit))
	assert.False(t, miss.ConflictsWith(series))
}
