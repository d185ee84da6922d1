package domain

import (
	"fmt"
	"time"
)

// UnboundedCount is the sentinel occurrence count for a series bounded only
// by its recurrence end date.
const UnboundedCount = -1

// RecurringEvent is a series definition: a weekday set plus a count or
// end-date bound. Occurrences are regenerated on demand and never stored.
type RecurringEvent struct {
	baseEvent
	weekdays          WeekdaySet
	occurrenceCount   int
	recurrenceEndDate time.Time // zero means unset
}

// NewRecurringEvent constructs a series. Each occurrence runs from start's
// clock to end's clock on a single day, so end must share start's calendar
// date. At least one of occurrenceCount (UnboundedCount = unset) and
// recurrenceEndDate (zero = unset) must be given.
func NewRecurringEvent(subject string, start, end time.Time, description, location string,
	isPublic bool, weekdays WeekdaySet, occurrenceCount int, recurrenceEndDate time.Time) (*RecurringEvent, error) {
	if end.Before(start) || !SameDate(start, end) {
		return nil, fmt.Errorf("end date time must be after start date time and on the same date: %w", ErrInvalidDate)
	}
	if occurrenceCount == UnboundedCount && recurrenceEndDate.IsZero() {
		return nil, fmt.Errorf("either occurrence count or recurrence end date must be provided: %w", ErrInvalidArgument)
	}
	return &RecurringEvent{
		baseEvent: baseEvent{
			subject:     subject,
			start:       start,
			end:         end,
			description: description,
			location:    location,
			isPublic:    isPublic,
		},
		weekdays:          weekdays,
		occurrenceCount:   occurrenceCount,
		recurrenceEndDate: DateOf(recurrenceEndDate),
	}, nil
}

func (e *RecurringEvent) Weekdays() WeekdaySet { return e.weekdays }

// OccurrenceCount returns the count bound, or UnboundedCount if the series is
// bounded only by its end date.
func (e *RecurringEvent) OccurrenceCount() int { return e.occurrenceCount }

// RecurrenceEndDate returns the end-date bound (midnight), zero if unset.
func (e *RecurringEvent) RecurrenceEndDate() time.Time { return e.recurrenceEndDate }

// SetRecurrenceEndDate truncates or extends the series in place.
func (e *RecurringEvent) SetRecurrenceEndDate(d time.Time) {
	e.recurrenceEndDate = DateOf(d)
}

// Occurrences walks day by day from the series start. A day in the weekday
// set yields an occurrence at the series' start/end clock; the count bound is
// checked after each match and the end-date bound after each day advance, so
// an occurrence landing exactly on the recurrence end date is included.
func (e *RecurringEvent) Occurrences() []*SingleEvent {
	var occurrences []*SingleEvent
	date := DateOf(e.start)
	count := 0
	for {
		if e.weekdays.Contains(date.Weekday()) {
			occurrences = append(occurrences, &SingleEvent{baseEvent{
				subject:     e.subject,
				start:       At(date, e.start),
				end:         At(date, e.EffectiveEnd()),
				description: e.description,
				location:    e.location,
				isPublic:    e.isPublic,
			}})
			count++
			if e.occurrenceCount != UnboundedCount && count >= e.occurrenceCount {
				break
			}
		}
		date = date.AddDate(0, 0, 1)
		if !e.recurrenceEndDate.IsZero() && date.After(e.recurrenceEndDate) {
			break
		}
	}
	return occurrences
}

func (e *RecurringEvent) ConflictsWith(other Event) bool {
	for _, occ := range e.Occurrences() {
		if other.ConflictsWith(occ) {
			return true
		}
	}
	return false
}
