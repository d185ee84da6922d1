package domain

import (
	"fmt"
	"time"
)

// Event is the shared surface of single and recurring events. All timestamps
// are naive wall-clock values interpreted in the owning calendar's timezone.
type Event interface {
	Subject() string
	Start() time.Time
	// EffectiveEnd returns the explicit end if one is set, otherwise 23:59
	// on the start's calendar date.
	EffectiveEnd() time.Time
	Description() string
	Location() string
	IsPublic() bool
	AutoDecline() bool

	// ConflictsWith reports whether any occurrence of this event overlaps
	// any occurrence of other. Back-to-back events do not conflict.
	ConflictsWith(other Event) bool

	// Occurrences expands the event into its concrete instances: the event
	// itself for a single event, one instance per matching weekday for a
	// recurring one.
	Occurrences() []*SingleEvent

	SetSubject(string)
	SetStart(time.Time)
	SetEnd(time.Time) error
	SetDescription(string)
	SetLocation(string)
	SetPublic(bool)
	SetAutoDecline(bool)
}

// baseEvent carries the fields and mutators common to both event kinds.
type baseEvent struct {
	subject     string
	start       time.Time
	end         time.Time // zero means unset
	description string
	location    string
	isPublic    bool
	autoDecline bool
}

func (e *baseEvent) Subject() string       { return e.subject }
func (e *baseEvent) Start() time.Time      { return e.start }
func (e *baseEvent) Description() string   { return e.description }
func (e *baseEvent) Location() string      { return e.location }
func (e *baseEvent) IsPublic() bool        { return e.isPublic }
func (e *baseEvent) AutoDecline() bool     { return e.autoDecline }
func (e *baseEvent) SetSubject(s string)   { e.subject = s }
func (e *baseEvent) SetStart(t time.Time)  { e.start = t }
func (e *baseEvent) SetDescription(s string) { e.description = s }
func (e *baseEvent) SetLocation(s string)  { e.location = s }
func (e *baseEvent) SetPublic(p bool)      { e.isPublic = p }
func (e *baseEvent) SetAutoDecline(a bool) { e.autoDecline = a }

func (e *baseEvent) EffectiveEnd() time.Time {
	if e.end.IsZero() {
		return EndOfDay(e.start)
	}
	return e.end
}

// SetEnd replaces the explicit end. A zero value clears it, reverting to the
// end-of-day default.
func (e *baseEvent) SetEnd(t time.Time) error {
	if !t.IsZero() && t.Before(e.start) {
		return fmt.Errorf("end date & time must be after start date & time: %w", ErrInvalidDate)
	}
	e.end = t
	return nil
}

// SingleEvent is a one-off event occupying a single time interval.
type SingleEvent struct {
	baseEvent
}

// NewSingleEvent constructs a single event. A zero end means the event has no
// explicit end and runs until 23:59 of the start date.
func NewSingleEvent(subject string, start, end time.Time, description, location string, isPublic bool) (*SingleEvent, error) {
	if !end.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("end date & time must be after start date & time: %w", ErrInvalidDate)
	}
	return &SingleEvent{baseEvent{
		subject:     subject,
		start:       start,
		end:         end,
		description: description,
		location:    location,
		isPublic:    isPublic,
	}}, nil
}

func (e *SingleEvent) ConflictsWith(other Event) bool {
	switch o := other.(type) {
	case *SingleEvent:
		return e.start.Before(o.EffectiveEnd()) && o.start.Before(e.EffectiveEnd())
	case *RecurringEvent:
		for _, occ := range o.Occurrences() {
			if e.ConflictsWith(occ) {
				return true
			}
		}
	}
	return false
}

func (e *SingleEvent) Occurrences() []*SingleEvent {
	return []*SingleEvent{e}
}

// HasExplicitEnd reports whether an end was set rather than defaulted.
func (e *SingleEvent) HasExplicitEnd() bool {
	return !e.end.IsZero()
}
