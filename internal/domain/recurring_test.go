package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSeries(t *testing.T, letters string, start, end time.Time, count int, recEnd time.Time) *RecurringEvent {
	t.Helper()
	days, err := ParseWeekdays(letters)
	require.NoError(t, err)
	series, err := NewRecurringEvent("Standup", start, end, "", "", true, days, count, recEnd)
	require.NoError(t, err)
	return series
}

func TestOccurrencesCountBound(t *testing.T) {
	// 2025-03-03 is a Monday.
	series := mustSeries(t, "MWF", dt(2025, time.March, 3, 9, 0), dt(2025, time.March, 3, 9, 15),
		3, time.Time{})

	occs := series.Occurrences()
	require.Len(t, occs, 3)
	assert.Equal(t, dt(2025, time.March, 3, 9, 0), occs[0].Start())
	assert.Equal(t, dt(2025, time.March, 5, 9, 0), occs[1].Start())
	assert.Equal(t, dt(2025, time.March, 7, 9, 0), occs[2].Start())
	assert.Equal(t, dt(2025, time.March, 5, 9, 15), occs[1].EffectiveEnd())
}

func TestOccurrencesEndDateBoundIsInclusive(t *testing.T) {
	// The end date 2025-03-10 is itself a Monday; the occurrence landing on
	// it is part of the series.
	series := mustSeries(t, "MWF", dt(2025, time.March, 3, 9, 0), dt(2025, time.March, 3, 9, 15),
		UnboundedCount, dt(2025, time.March, 10, 0, 0))

	occs := series.Occurrences()
	require.Len(t, occs, 4)
	assert.Equal(t, dt(2025, time.March, 10, 9, 0), occs[3].Start())
}

func TestOccurrencesBothBounds(t *testing.T) {
	// Count runs out before the end date does.
	series := mustSeries(t, "MWF", dt(2025, time.March, 3, 9, 0), dt(2025, time.March, 3, 9, 15),
		2, dt(2025, time.March, 31, 0, 0))

	occs := series.Occurrences()
	require.Len(t, occs, 2)
	assert.Equal(t, dt(2025, time.March, 5, 9, 0), occs[1].Start())
}

func TestNewRecurringEventValidation(t *testing.T) {
	days, err := ParseWeekdays("M")
	require.NoError(t, err)

	_, err = NewRecurringEvent("Bad", dt(2025, time.March, 3, 9, 0),
		dt(2025, time.March, 4, 9, 15), "", "", true, days, 3, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = NewRecurringEvent("Bad", dt(2025, time.March, 3, 9, 0),
		dt(2025, time.March, 3, 9, 15), "", "", true, days, UnboundedCount, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetRecurrenceEndDateTruncates(t *testing.T) {
	series := mustSeries(t, "MWF", dt(2025, time.March, 3, 9, 0), dt(2025, time.March, 3, 9, 15),
		UnboundedCount, dt(2025, time.March, 10, 0, 0))
	series.SetRecurrenceEndDate(dt(2025, time.March, 5, 17, 30))

	assert.Equal(t, dt(2025, time.March, 5, 0, 0), series.RecurrenceEndDate())
	require.Len(t, series.Occurrences(), 2)
}
