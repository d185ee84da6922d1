package calendar

import (
	"fmt"
	"time"

	"crosscal/internal/domain"
)

// Rezone reinterprets a naive timestamp as wall-clock time in from, then
// renders the same instant's wall-clock time in to. Migrating A→B→A restores
// the original value except for timestamps inside a DST gap or overlap of
// either zone, where the instant is ambiguous.
func Rezone(t time.Time, from, to *time.Location) time.Time {
	instant := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, from)
	local := instant.In(to)
	return time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), 0, time.UTC)
}

// MigrateZone rewrites every stored event's start, effective end and (for a
// series) recurrence end date from oldZone into newZone, keeping absolute
// instants fixed. An event with no explicit end acquires one: the migrated
// rendering of its end-of-day default.
func MigrateZone(ctx *Context, oldZone, newZone *time.Location) error {
	for _, event := range ctx.Store().All() {
		newStart := Rezone(event.Start(), oldZone, newZone)
		newEnd := Rezone(event.EffectiveEnd(), oldZone, newZone)
		event.SetStart(newStart)
		if err := event.SetEnd(newEnd); err != nil {
			return fmt.Errorf("event %q: %w", event.Subject(), err)
		}
		if series, ok := event.(*domain.RecurringEvent); ok {
			if !series.RecurrenceEndDate().IsZero() {
				migrated := Rezone(series.RecurrenceEndDate(), oldZone, newZone)
				series.SetRecurrenceEndDate(domain.DateOf(migrated))
			}
		}
	}
	return nil
}
