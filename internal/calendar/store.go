// Package calendar holds the per-calendar event store, the calendar registry
// and timezone migration.
package calendar

import (
	"fmt"
	"time"

	"crosscal/internal/domain"
)

// Store is the ordered event collection for one calendar. It is not safe for
// concurrent mutation; callers needing that wrap it in their own mutex, since
// Add is a check-then-insert sequence.
type Store struct {
	events []domain.Event
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add inserts an event, scanning the stored events for conflicts first. Only
// the incoming event's autoDecline flag gates rejection: an incoming event
// with the flag off is accepted even when it overlaps, while an overlapping
// incoming event with the flag on fails with ErrConflict naming both
// subjects.
func (s *Store) Add(event domain.Event, autoDecline bool) error {
	for _, existing := range s.events {
		if existing.ConflictsWith(event) && event.AutoDecline() {
			return fmt.Errorf("event %q conflicts with existing event %q: %w",
				event.Subject(), existing.Subject(), domain.ErrConflict)
		}
	}
	s.events = append(s.events, event)
	return nil
}

// EventsOn returns the events occurring on the given calendar date. A single
// event occurs on every date its interval touches; a series occurs on a date
// only if an occurrence starts there.
func (s *Store) EventsOn(date time.Time) []domain.Event {
	date = domain.DateOf(date)
	var result []domain.Event
	for _, event := range s.events {
		if occursOn(event, date) {
			result = append(result, event)
		}
	}
	return result
}

func occursOn(event domain.Event, date time.Time) bool {
	if single, ok := event.(*domain.SingleEvent); ok {
		start := domain.DateOf(single.Start())
		end := domain.DateOf(single.EffectiveEnd())
		return !date.Before(start) && !date.After(end)
	}
	for _, occ := range event.Occurrences() {
		if domain.DateOf(occ.Start()).Equal(date) {
			return true
		}
	}
	return false
}

// All returns every stored event, series unexpanded.
func (s *Store) All() []domain.Event {
	return append([]domain.Event(nil), s.events...)
}

// IsBusyAt reports whether any occurrence strictly contains the timestamp.
// A timestamp exactly on a start or end boundary is not busy.
func (s *Store) IsBusyAt(t time.Time) bool {
	for _, event := range s.events {
		for _, occ := range event.Occurrences() {
			if occ.Start().Before(t) && occ.EffectiveEnd().After(t) {
				return true
			}
		}
	}
	return false
}
