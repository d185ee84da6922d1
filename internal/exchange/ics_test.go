package exchange

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscal/internal/domain"
)

func TestICSRoundTrip(t *testing.T) {
	source := newTestContext(t)

	timed, err := domain.NewSingleEvent("Review", dt(2025, time.March, 3, 10, 0),
		dt(2025, time.March, 3, 11, 0), "quarterly notes", "Room 4", false)
	require.NoError(t, err)
	require.NoError(t, source.Store().Add(timed, false))

	allDay, err := domain.NewSingleEvent("Holiday", dt(2025, time.March, 4, 0, 0),
		time.Time{}, "", "", true)
	require.NoError(t, err)
	require.NoError(t, source.Store().Add(allDay, false))

	path := filepath.Join(t.TempDir(), "work.ics")
	written, err := (&ICSExporter{}).Export(source, rawExpand, path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	target := newTestContext(t)
	report, err := (&ICSImporter{}).Import(target, path)
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 events.", report)

	events := target.Store().All()
	require.Len(t, events, 2)

	assert.Equal(t, "Review", events[0].Subject())
	assert.Equal(t, dt(2025, time.March, 3, 10, 0), events[0].Start())
	assert.Equal(t, dt(2025, time.March, 3, 11, 0), events[0].EffectiveEnd())
	assert.Equal(t, "quarterly notes", events[0].Description())
	assert.Equal(t, "Room 4", events[0].Location())
	assert.False(t, events[0].IsPublic())

	assert.Equal(t, "Holiday", events[1].Subject())
	assert.Equal(t, dt(2025, time.March, 4, 0, 0), events[1].Start())
	assert.Equal(t, dt(2025, time.March, 4, 23, 59), events[1].EffectiveEnd())
	assert.True(t, events[1].IsPublic())
}

func TestSeriesExportExpanded(t *testing.T) {
	source := newTestContext(t)
	days, err := domain.ParseWeekdays("MWF")
	require.NoError(t, err)
	series, err := domain.NewRecurringEvent("Standup", dt(2025, time.March, 3, 9, 0),
		dt(2025, time.March, 3, 9, 15), "", "", true, days, 3, time.Time{})
	require.NoError(t, err)
	require.NoError(t, source.Store().Add(series, false))

	path := filepath.Join(t.TempDir(), "standup.ics")
	_, err = (&ICSExporter{}).Export(source, rawExpand, path)
	require.NoError(t, err)

	target := newTestContext(t)
	report, err := (&ICSImporter{}).Import(target, path)
	require.NoError(t, err)
	assert.Equal(t, "Imported 3 events.", report)
	assert.Equal(t, dt(2025, time.March, 7, 9, 0), target.Store().All()[2].Start())
}

func TestFormatFactories(t *testing.T) {
	for _, format := range []string{"csv", "ics"} {
		exporter, err := NewExporter(format)
		require.NoError(t, err)
		assert.NotNil(t, exporter)
		importer, err := NewImporter(format)
		require.NoError(t, err)
		assert.NotNil(t, importer)
	}

	_, err := NewExporter("xml")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	_, err = NewImporter("")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
