// Package exchange moves calendars in and out of the engine: a fixed-schema
// CSV format and an iCalendar rendering. The event model is losslessly
// constructible from and projectable to the CSV row schema.
package exchange

import (
	"fmt"

	"crosscal/internal/calendar"
	"crosscal/internal/domain"
)

// ExpandFunc expands an event into its occurrences. The facade passes the
// edit service's override-aware expansion so edited instances are exported.
type ExpandFunc func(domain.Event) []*domain.SingleEvent

// Exporter writes a calendar to a file and returns the written path.
type Exporter interface {
	Export(ctx *calendar.Context, expand ExpandFunc, path string) (string, error)
}

// Importer reads events from a file into a calendar, inserting each with
// conflict checking forced on, and returns a per-line report.
type Importer interface {
	Import(ctx *calendar.Context, path string) (string, error)
}

// NewExporter returns the exporter for a format keyword.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "csv":
		return &CSVExporter{}, nil
	case "ics":
		return &ICSExporter{}, nil
	}
	return nil, fmt.Errorf("export format %q: %w", format, domain.ErrUnsupportedFormat)
}

// NewImporter returns the importer for a format keyword.
func NewImporter(format string) (Importer, error) {
	switch format {
	case "csv":
		return &CSVImporter{}, nil
	case "ics":
		return &ICSImporter{}, nil
	}
	return nil, fmt.Errorf("import format %q: %w", format, domain.ErrUnsupportedFormat)
}

// isAllDay reports whether an occurrence spans the implicit full day:
// midnight to 23:59 on one date.
func isAllDay(occ *domain.SingleEvent) bool {
	start := occ.Start()
	end := occ.EffectiveEnd()
	return domain.SameDate(start, end) &&
		start.Hour() == 0 && start.Minute() == 0 &&
		end.Hour() == 23 && end.Minute() == 59
}
