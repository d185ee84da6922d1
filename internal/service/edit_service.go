package service

import (
	"fmt"
	"strings"
	"time"

	"crosscal/internal/calendar"
	"crosscal/internal/domain"
)

// EditMode selects how far an edit reaches into a recurring series.
type EditMode int

const (
	// EditSingle edits one occurrence (or a non-recurring event).
	EditSingle EditMode = iota
	// EditFrom edits an anchor occurrence and everything after it,
	// splitting the series.
	EditFrom
	// EditAll edits the series definition itself.
	EditAll
)

// EditService applies scoped property edits to stored events. It also owns
// the override table for SINGLE-mode edits on recurring series; readers that
// want edited instances reflected expand through OccurrencesOf instead of
// Event.Occurrences.
type EditService struct {
	overrides map[*domain.RecurringEvent]map[int64]*domain.SingleEvent
}

// NewEditService creates an edit service with an empty override table.
func NewEditService() *EditService {
	return &EditService{overrides: make(map[*domain.RecurringEvent]map[int64]*domain.SingleEvent)}
}

// EditEvent finds events by case-insensitive subject and applies a property
// change under the given mode. Non-recurring matches additionally require
// start == from and permit only EditSingle. A FROM edit with future
// occurrences truncates the original series in place and inserts a split-off
// series carrying the change, with conflict checking forced on.
func (s *EditService) EditEvent(store *calendar.Store, subject string, from time.Time,
	property, newValue string, mode EditMode) error {
	edited := false
	var newSeries []*domain.RecurringEvent

	for _, event := range store.All() {
		if !strings.EqualFold(event.Subject(), subject) {
			continue
		}
		series, ok := event.(*domain.RecurringEvent)
		if !ok {
			if mode != EditSingle {
				return fmt.Errorf("for non-recurring events, only SINGLE mode is allowed: %w",
					domain.ErrUnsupportedOperation)
			}
			if event.Start().Equal(from) {
				if err := s.updateEvent(store, event, property, newValue); err != nil {
					return err
				}
				edited = true
			}
			continue
		}
		switch mode {
		case EditAll:
			if err := s.updateEvent(store, series, property, newValue); err != nil {
				return err
			}
			edited = true
		case EditSingle:
			found := false
			for _, occ := range series.Occurrences() {
				if occ.Start().Equal(from) {
					override, err := createOverride(occ, property, newValue)
					if err != nil {
						return err
					}
					byStart := s.overrides[series]
					if byStart == nil {
						byStart = make(map[int64]*domain.SingleEvent)
						s.overrides[series] = byStart
					}
					byStart[occ.Start().Unix()] = override
					found = true
					edited = true
					break
				}
			}
			if !found {
				return fmt.Errorf("no occurrence found at the specified time for recurring event: %w",
					domain.ErrNotFound)
			}
		case EditFrom:
			var future []*domain.SingleEvent
			for _, occ := range series.Occurrences() {
				if !occ.Start().Before(from) {
					future = append(future, occ)
				}
			}
			if len(future) == 0 {
				break
			}
			dayBefore := domain.DateOf(future[0].Start()).AddDate(0, 0, -1)
			series.SetRecurrenceEndDate(dayBefore)
			split, err := s.createSplitSeries(store, series, future, property, newValue)
			if err != nil {
				return err
			}
			newSeries = append(newSeries, split)
			edited = true
		}
	}

	for _, split := range newSeries {
		if err := store.Add(split, split.AutoDecline()); err != nil {
			return err
		}
	}
	if !edited {
		return fmt.Errorf("no matching event found to edit: %w", domain.ErrNotFound)
	}
	return nil
}

// updateEvent applies one property change in place, re-validating ordering
// for start/end edits and re-checking conflicts when the edited event itself
// carries autoDecline. A conflicting edit is rolled back.
func (s *EditService) updateEvent(store *calendar.Store, event domain.Event, property, newValue string) error {
	switch strings.ToLower(property) {
	case "subject":
		event.SetSubject(newValue)
	case "description":
		event.SetDescription(newValue)
	case "location":
		event.SetLocation(newValue)
	case "public", "visibility":
		event.SetPublic(strings.EqualFold(newValue, "true"))
	case "autodecline":
		event.SetAutoDecline(true)
	case "start", "startdatetime":
		newStart, err := domain.ParseDateTime(newValue)
		if err != nil {
			return fmt.Errorf("parse start %q: %w", newValue, err)
		}
		if _, ok := event.(*domain.SingleEvent); !ok {
			return fmt.Errorf("editing start time for recurring events in ALL mode not allowed; use FROM mode: %w",
				domain.ErrUnsupportedOperation)
		}
		if newStart.After(event.EffectiveEnd()) {
			return fmt.Errorf("start time cannot be after end time: %w", domain.ErrInvalidDate)
		}
		oldStart := event.Start()
		event.SetStart(newStart)
		if event.AutoDecline() && conflictsWithOthers(store, event) {
			event.SetStart(oldStart)
			return fmt.Errorf("edit would cause a conflict: %w", domain.ErrConflict)
		}
	case "end", "enddatetime":
		newEnd, err := domain.ParseDateTime(newValue)
		if err != nil {
			return fmt.Errorf("parse end %q: %w", newValue, err)
		}
		if newEnd.Before(event.Start()) {
			return fmt.Errorf("end time cannot be before start time: %w", domain.ErrInvalidDate)
		}
		if _, ok := event.(*domain.SingleEvent); !ok {
			return fmt.Errorf("editing end time for recurring events in ALL mode not allowed; use FROM mode: %w",
				domain.ErrUnsupportedOperation)
		}
		oldEnd := event.EffectiveEnd()
		if err := event.SetEnd(newEnd); err != nil {
			return err
		}
		if event.AutoDecline() && conflictsWithOthers(store, event) {
			_ = event.SetEnd(oldEnd)
			return fmt.Errorf("edit would cause a conflict: %w", domain.ErrConflict)
		}
	default:
		return fmt.Errorf("editing property not supported: %s: %w", property, domain.ErrUnsupportedOperation)
	}
	return nil
}

func conflictsWithOthers(store *calendar.Store, updated domain.Event) bool {
	for _, other := range store.All() {
		if other == updated {
			continue
		}
		if updated.ConflictsWith(other) || other.ConflictsWith(updated) {
			return true
		}
	}
	return false
}

// createSplitSeries builds the series covering the future occurrences of a
// FROM edit. The occurrence count is carried over verbatim, so the new series
// is bounded by whichever of the count and its own end date is hit first.
func (s *EditService) createSplitSeries(store *calendar.Store, old *domain.RecurringEvent,
	future []*domain.SingleEvent, property, newValue string) (*domain.RecurringEvent, error) {
	newStart := future[0].Start()
	newEnd := domain.At(newStart, old.EffectiveEnd())
	lastDay := domain.DateOf(future[len(future)-1].Start())
	split, err := domain.NewRecurringEvent(old.Subject(), newStart, newEnd,
		old.Description(), old.Location(), old.IsPublic(),
		old.Weekdays(), old.OccurrenceCount(), lastDay)
	if err != nil {
		return nil, err
	}
	split.SetAutoDecline(true)
	if err := s.updateEvent(store, split, property, newValue); err != nil {
		return nil, err
	}
	return split, nil
}

// createOverride copies an occurrence and applies the property change to the
// copy, leaving the series untouched.
func createOverride(occ *domain.SingleEvent, property, newValue string) (*domain.SingleEvent, error) {
	override, err := domain.NewSingleEvent(occ.Subject(), occ.Start(), occ.EffectiveEnd(),
		occ.Description(), occ.Location(), occ.IsPublic())
	if err != nil {
		return nil, err
	}
	override.SetAutoDecline(true)
	switch strings.ToLower(property) {
	case "subject":
		override.SetSubject(newValue)
	case "description":
		override.SetDescription(newValue)
	case "location":
		override.SetLocation(newValue)
	case "public", "visibility":
		override.SetPublic(strings.EqualFold(newValue, "true"))
	case "autodecline":
		override.SetAutoDecline(true)
	case "start", "startdatetime":
		newStart, err := domain.ParseDateTime(newValue)
		if err != nil {
			return nil, fmt.Errorf("parse start %q: %w", newValue, err)
		}
		if newStart.After(occ.EffectiveEnd()) {
			return nil, fmt.Errorf("start time cannot be after end time: %w", domain.ErrInvalidDate)
		}
		override.SetStart(newStart)
	case "end", "enddatetime":
		newEnd, err := domain.ParseDateTime(newValue)
		if err != nil {
			return nil, fmt.Errorf("parse end %q: %w", newValue, err)
		}
		if newEnd.Before(occ.Start()) {
			return nil, fmt.Errorf("end time cannot be before start time: %w", domain.ErrInvalidDate)
		}
		if err := override.SetEnd(newEnd); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("editing property not supported: %s: %w", property, domain.ErrUnsupportedOperation)
	}
	return override, nil
}

// OccurrencesOf expands an event, substituting any SINGLE-mode override
// recorded for an occurrence's start. Conflict admission deliberately keeps
// using the raw expansion.
func (s *EditService) OccurrencesOf(event domain.Event) []*domain.SingleEvent {
	occurrences := event.Occurrences()
	series, ok := event.(*domain.RecurringEvent)
	if !ok {
		return occurrences
	}
	byStart := s.overrides[series]
	if len(byStart) == 0 {
		return occurrences
	}
	out := make([]*domain.SingleEvent, len(occurrences))
	for i, occ := range occurrences {
		if override, found := byStart[occ.Start().Unix()]; found {
			out[i] = override
		} else {
			out[i] = occ
		}
	}
	return out
}
