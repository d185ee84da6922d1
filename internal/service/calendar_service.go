// Package service implements the event operations exposed to callers: the
// add/query facade, the scoped edit engine and cross-calendar transfer.
package service

import (
	"fmt"
	"time"

	"crosscal/internal/calendar"
	"crosscal/internal/domain"
	"crosscal/internal/exchange"
)

// CalendarService is the per-calendar facade. It owns the edit service (and
// with it the override table) for its context's store.
type CalendarService struct {
	ctx     *calendar.Context
	editSvc *EditService
}

// NewCalendarService creates a service bound to one calendar context.
func NewCalendarService(ctx *calendar.Context) *CalendarService {
	return &CalendarService{ctx: ctx, editSvc: NewEditService()}
}

// Context returns the calendar context this service operates on.
func (s *CalendarService) Context() *calendar.Context { return s.ctx }

// AddSingleEvent creates and stores a one-off event. A zero end means no
// explicit end.
func (s *CalendarService) AddSingleEvent(subject string, start, end time.Time,
	description, location string, isPublic, autoDecline bool) error {
	event, err := domain.NewSingleEvent(subject, start, end, description, location, isPublic)
	if err != nil {
		return err
	}
	event.SetAutoDecline(autoDecline)
	return s.ctx.Store().Add(event, autoDecline)
}

// AddRecurringEvent creates and stores a series.
func (s *CalendarService) AddRecurringEvent(subject string, start, end time.Time,
	description, location string, isPublic bool, weekdays domain.WeekdaySet,
	occurrenceCount int, recurrenceEndDate time.Time, autoDecline bool) error {
	event, err := domain.NewRecurringEvent(subject, start, end, description, location,
		isPublic, weekdays, occurrenceCount, recurrenceEndDate)
	if err != nil {
		return err
	}
	event.SetAutoDecline(autoDecline)
	return s.ctx.Store().Add(event, autoDecline)
}

// EventsOn returns the events occurring on the given date.
func (s *CalendarService) EventsOn(date time.Time) []domain.Event {
	return s.ctx.Store().EventsOn(date)
}

// AllEvents returns every stored event, series unexpanded.
func (s *CalendarService) AllEvents() []domain.Event {
	return s.ctx.Store().All()
}

// IsBusyAt reports whether any occurrence strictly contains the timestamp.
func (s *CalendarService) IsBusyAt(t time.Time) bool {
	return s.ctx.Store().IsBusyAt(t)
}

// EditEvent applies a scoped property edit; see EditService.EditEvent.
func (s *CalendarService) EditEvent(subject string, from time.Time,
	property, newValue string, mode EditMode) error {
	return s.editSvc.EditEvent(s.ctx.Store(), subject, from, property, newValue, mode)
}

// OccurrencesOf expands an event with SINGLE-mode overrides applied.
func (s *CalendarService) OccurrencesOf(event domain.Event) []*domain.SingleEvent {
	return s.editSvc.OccurrencesOf(event)
}

// ExportTo writes the calendar to path in the given format ("csv" or "ics"),
// returning the written path.
func (s *CalendarService) ExportTo(format, path string) (string, error) {
	exporter, err := exchange.NewExporter(format)
	if err != nil {
		return "", err
	}
	return exporter.Export(s.ctx, s.editSvc.OccurrencesOf, path)
}

// ImportFrom reads events from path in the given format, inserting each with
// conflict checking forced on, and returns a per-line report.
func (s *CalendarService) ImportFrom(format, path string) (string, error) {
	importer, err := exchange.NewImporter(format)
	if err != nil {
		return "", err
	}
	return importer.Import(s.ctx, path)
}

// PrintEventsOn renders the events occurring on a date, one line per event.
func (s *CalendarService) PrintEventsOn(date time.Time) string {
	events := s.EventsOn(date)
	if len(events) == 0 {
		return ""
	}
	out := fmt.Sprintf("Events on %s:\n", date.Format(domain.DateLayout))
	for _, event := range events {
		out += formatEventLine(event.Subject(), event.Location(), event.Start())
	}
	return out
}

// PrintEventsRange renders every occurrence starting inside [start, end),
// with SINGLE-mode overrides applied.
func (s *CalendarService) PrintEventsRange(start, end time.Time) string {
	out := fmt.Sprintf("Events from %s to %s:\n",
		start.Format(domain.DateTimeLayout), end.Format(domain.DateTimeLayout))
	for _, event := range s.AllEvents() {
		for _, occ := range s.editSvc.OccurrencesOf(event) {
			if !occ.Start().Before(start) && occ.Start().Before(end) {
				out += formatEventLine(occ.Subject(), occ.Location(), occ.Start())
			}
		}
	}
	return out
}

func formatEventLine(subject, location string, start time.Time) string {
	line := "- " + subject + " at "
	if location != "" {
		line += location + " "
	}
	return line + start.Format(domain.DateTimeLayout) + "\n"
}
