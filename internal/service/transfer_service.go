package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"crosscal/internal/calendar"
	"crosscal/internal/domain"
)

// TransferService copies events between calendars that may sit in different
// timezones. Single-item copies propagate the first error; the batch copies
// catch conflicts per event and fold them into the returned report.
type TransferService struct{}

// NewTransferService creates a transfer service.
func NewTransferService() *TransferService {
	return &TransferService{}
}

// CopySingle copies a standalone event into the target calendar at
// targetStart, preserving its duration and forcing autoDecline on. A match
// that is an occurrence of a series is rejected.
func (s *TransferService) CopySingle(source, target *calendar.Context, name string,
	sourceStart, targetStart time.Time) (string, error) {
	event, occ, err := findOccurrence(source, name, sourceStart)
	if err != nil {
		return "", err
	}
	if _, ok := event.(*domain.SingleEvent); !ok {
		return "", fmt.Errorf("event %q is not a single event: %w", name, domain.ErrUnsupportedOperation)
	}
	duration := occ.EffectiveEnd().Sub(occ.Start())
	copied, err := domain.NewSingleEvent(occ.Subject(), targetStart, targetStart.Add(duration),
		occ.Description(), occ.Location(), occ.IsPublic())
	if err != nil {
		return "", err
	}
	copied.SetAutoDecline(true)
	if err := target.Store().Add(copied, true); err != nil {
		return "", err
	}
	return fmt.Sprintf("Event '%s' copied to calendar '%s' starting at %s",
		occ.Subject(), target.Name(), targetStart.Format(domain.DateTimeLayout)), nil
}

// CopyRecurring copies the series owning the occurrence at
// sourceOccurrenceStart. The series' nominal start is rendered as the same
// instant in the target zone; the gap between that rendering and targetStart
// becomes a naive offset applied to the series start, and its whole-day
// component shifts the recurrence end date.
func (s *TransferService) CopyRecurring(source, target *calendar.Context, name string,
	sourceOccurrenceStart, targetStart time.Time) (string, error) {
	series, err := findSeries(source, name, sourceOccurrenceStart)
	if err != nil {
		return "", err
	}
	convertedStart := calendar.Rezone(series.Start(), source.Timezone(), target.Timezone())
	offset := targetStart.Sub(convertedStart)
	newStart := series.Start().Add(offset)
	duration := series.EffectiveEnd().Sub(series.Start())
	newEnd := newStart.Add(duration)

	var newRecurrenceEnd time.Time
	if !series.RecurrenceEndDate().IsZero() {
		converted := calendar.Rezone(series.RecurrenceEndDate(), source.Timezone(), target.Timezone())
		offsetDays := int(offset / (24 * time.Hour))
		newRecurrenceEnd = domain.DateOf(converted).AddDate(0, 0, offsetDays)
	}

	copied, err := domain.NewRecurringEvent(series.Subject(), newStart, newEnd,
		series.Description(), series.Location(), series.IsPublic(),
		series.Weekdays(), series.OccurrenceCount(), newRecurrenceEnd)
	if err != nil {
		return "", err
	}
	copied.SetAutoDecline(true)
	if err := target.Store().Add(copied, true); err != nil {
		return "", err
	}
	return fmt.Sprintf("Recurring event '%s' copied to calendar '%s' starting at %s",
		series.Subject(), target.Name(), newStart.Format(domain.DateTimeLayout)), nil
}

// CopyEvent dispatches to CopySingle or CopyRecurring based on the kind of
// the matched event.
func (s *TransferService) CopyEvent(source, target *calendar.Context, name string,
	sourceStart, targetStart time.Time) (string, error) {
	event, _, err := findOccurrence(source, name, sourceStart)
	if err != nil {
		return "", err
	}
	switch event.(type) {
	case *domain.SingleEvent:
		return s.CopySingle(source, target, name, sourceStart, targetStart)
	case *domain.RecurringEvent:
		return s.CopyRecurring(source, target, name, sourceStart, targetStart)
	}
	return "", fmt.Errorf("unsupported event type: %w", domain.ErrUnsupportedOperation)
}

// CopyOnDate copies every occurrence starting on sourceDate, re-anchoring its
// time of day onto targetDate. Conflicts are reported per event rather than
// aborting the batch.
func (s *TransferService) CopyOnDate(source, target *calendar.Context,
	sourceDate, targetDate time.Time) (string, error) {
	events := source.Store().EventsOn(sourceDate)
	if len(events) == 0 {
		return fmt.Sprintf("No events found on %s", sourceDate.Format(domain.DateLayout)), nil
	}
	sourceDate = domain.DateOf(sourceDate)
	var report strings.Builder
	for _, event := range events {
		for _, occ := range event.Occurrences() {
			if !domain.DateOf(occ.Start()).Equal(sourceDate) {
				continue
			}
			targetStart := domain.At(targetDate, occ.Start())
			var msg string
			var err error
			switch event.(type) {
			case *domain.SingleEvent:
				msg, err = s.CopySingle(source, target, occ.Subject(), occ.Start(), targetStart)
			case *domain.RecurringEvent:
				msg, err = s.CopyRecurring(source, target, occ.Subject(), occ.Start(), targetStart)
			}
			if err != nil {
				if isConflict(err) {
					report.WriteString(fmt.Sprintf("Conflict for event '%s'\n", occ.Subject()))
					continue
				}
				return "", err
			}
			report.WriteString(msg + "\n")
		}
	}
	return report.String(), nil
}

// CopyBetweenDates copies every occurrence whose date falls inside
// [sourceStart, sourceEnd], shifted by the whole-day offset between
// sourceStart and targetStart after instant-preserving zone conversion.
// Each copy lands as a standalone event; conflicts are reported per event.
func (s *TransferService) CopyBetweenDates(source, target *calendar.Context,
	sourceStart, sourceEnd, targetStart time.Time) (string, error) {
	events := source.Store().All()
	if len(events) == 0 {
		return "No events found in source calendar.", nil
	}
	sourceStart = domain.DateOf(sourceStart)
	sourceEnd = domain.DateOf(sourceEnd)
	dayOffset := int(domain.DateOf(targetStart).Sub(sourceStart) / (24 * time.Hour))

	var report strings.Builder
	for _, event := range events {
		for _, occ := range event.Occurrences() {
			occDate := domain.DateOf(occ.Start())
			if occDate.Before(sourceStart) || occDate.After(sourceEnd) {
				continue
			}
			converted := calendar.Rezone(occ.Start(), source.Timezone(), target.Timezone())
			copiedStart := converted.AddDate(0, 0, dayOffset)
			duration := occ.EffectiveEnd().Sub(occ.Start())
			copied, err := domain.NewSingleEvent(occ.Subject(), copiedStart, copiedStart.Add(duration),
				occ.Description(), occ.Location(), occ.IsPublic())
			if err != nil {
				return "", err
			}
			copied.SetAutoDecline(true)
			if err := target.Store().Add(copied, true); err != nil {
				if isConflict(err) {
					report.WriteString(fmt.Sprintf("Conflict for event '%s'\n", occ.Subject()))
					continue
				}
				return "", err
			}
			report.WriteString(fmt.Sprintf("Copied event '%s' to %s\n",
				occ.Subject(), copiedStart.Format(domain.DateTimeLayout)))
		}
	}
	if report.Len() == 0 {
		return fmt.Sprintf("No events found between %s and %s",
			sourceStart.Format(domain.DateLayout), sourceEnd.Format(domain.DateLayout)), nil
	}
	return report.String(), nil
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}

// findOccurrence locates the stored event owning an occurrence that matches
// the subject (case-insensitive) and exact start.
func findOccurrence(source *calendar.Context, name string, start time.Time) (domain.Event, *domain.SingleEvent, error) {
	for _, event := range source.Store().All() {
		for _, occ := range event.Occurrences() {
			if strings.EqualFold(occ.Subject(), name) && occ.Start().Equal(start) {
				return event, occ, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("event %q not found at %s: %w",
		name, start.Format(domain.DateTimeLayout), domain.ErrNotFound)
}

// findSeries locates the recurring series owning the occurrence at start.
func findSeries(source *calendar.Context, name string, start time.Time) (*domain.RecurringEvent, error) {
	for _, event := range source.Store().All() {
		series, ok := event.(*domain.RecurringEvent)
		if !ok || !strings.EqualFold(series.Subject(), name) {
			continue
		}
		for _, occ := range series.Occurrences() {
			if occ.Start().Equal(start) {
				return series, nil
			}
		}
	}
	return nil, fmt.Errorf("recurring event %q not found at %s: %w",
		name, start.Format(domain.DateTimeLayout), domain.ErrNotFound)
}
