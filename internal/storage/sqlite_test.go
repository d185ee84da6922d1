package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscal/internal/calendar"
	"crosscal/internal/domain"
)

func dt(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	defer store.Close()

	registry := calendar.NewRegistry()
	work, err := registry.Create("work", "America/New_York")
	require.NoError(t, err)
	_, err = registry.Create("home", "Europe/Paris")
	require.NoError(t, err)

	timed, err := domain.NewSingleEvent("Review", dt(2025, time.March, 3, 10, 0),
		dt(2025, time.March, 3, 11, 0), "notes", "Room 4", false)
	require.NoError(t, err)
	timed.SetAutoDecline(true)
	require.NoError(t, work.Store().Add(timed, true))

	open, err := domain.NewSingleEvent("Open House", dt(2025, time.March, 4, 14, 0),
		time.Time{}, "", "", true)
	require.NoError(t, err)
	require.NoError(t, work.Store().Add(open, false))

	days, err := domain.ParseWeekdays("MWF")
	require.NoError(t, err)
	series, err := domain.NewRecurringEvent("Standup", dt(2025, time.March, 3, 9, 0),
		dt(2025, time.March, 3, 9, 15), "", "", true, days,
		domain.UnboundedCount, dt(2025, time.March, 10, 0, 0))
	require.NoError(t, err)
	require.NoError(t, work.Store().Add(series, false))

	require.NoError(t, store.SaveRegistry(registry))

	restored, err := store.LoadRegistry()
	require.NoError(t, err)
	require.Len(t, restored.All(), 2)

	workRestored, err := restored.Get("work")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", workRestored.Timezone().String())

	events := workRestored.Store().All()
	require.Len(t, events, 3)

	assert.Equal(t, "Review", events[0].Subject())
	assert.Equal(t, dt(2025, time.March, 3, 10, 0), events[0].Start())
	assert.Equal(t, dt(2025, time.March, 3, 11, 0), events[0].EffectiveEnd())
	assert.Equal(t, "notes", events[0].Description())
	assert.Equal(t, "Room 4", events[0].Location())
	assert.False(t, events[0].IsPublic())
	assert.True(t, events[0].AutoDecline())

	// No explicit end stored means the end-of-day default survives.
	single, ok := events[1].(*domain.SingleEvent)
	require.True(t, ok)
	assert.False(t, single.HasExplicitEnd())
	assert.Equal(t, dt(2025, time.March, 4, 23, 59), single.EffectiveEnd())

	restoredSeries, ok := events[2].(*domain.RecurringEvent)
	require.True(t, ok)
	assert.Equal(t, "MWF", restoredSeries.Weekdays().String())
	assert.Equal(t, domain.UnboundedCount, restoredSeries.OccurrenceCount())
	assert.Equal(t, dt(2025, time.March, 10, 0, 0), restoredSeries.RecurrenceEndDate())
	assert.Len(t, restoredSeries.Occurrences(), 4)

	homeRestored, err := restored.Get("home")
	require.NoError(t, err)
	assert.Empty(t, homeRestored.Store().All())
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	registry := calendar.NewRegistry()
	_, err = registry.Create("one", "UTC")
	require.NoError(t, err)
	require.NoError(t, store.SaveRegistry(registry))

	replacement := calendar.NewRegistry()
	_, err = replacement.Create("two", "UTC")
	require.NoError(t, err)
	require.NoError(t, store.SaveRegistry(replacement))

	restored, err := store.LoadRegistry()
	require.NoError(t, err)
	require.Len(t, restored.All(), 1)
	_, err = restored.Get("two")
	assert.NoError(t, err)
	_, err = restored.Get("one")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadEmptyDatabase(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	registry, err := store.LoadRegistry()
	require.NoError(t, err)
	assert.Empty(t, registry.All())
}
