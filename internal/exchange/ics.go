package exchange

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"crosscal/internal/calendar"
	"crosscal/internal/domain"
)

const icsProductID = "-//crosscal//calendar//EN"

// ICSExporter renders the calendar as iCalendar, one VEVENT per occurrence.
// The engine's weekday rule is not an RFC 5545 RRULE, so series are exported
// expanded rather than as recurrence definitions.
type ICSExporter struct{}

func (e *ICSExporter) Export(ctx *calendar.Context, expand ExpandFunc, path string) (string, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)

	for _, event := range ctx.Store().All() {
		for _, occ := range expand(event) {
			cal.Children = append(cal.Children, occurrenceToVEvent(occ, ctx.Timezone()).Component)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := ical.NewEncoder(f).Encode(cal); err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return path, nil
}

func occurrenceToVEvent(occ *domain.SingleEvent, zone *time.Location) *ical.Event {
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%d@crosscal",
		strings.ReplaceAll(strings.ToLower(occ.Subject()), " ", "-"), occ.Start().Unix()))
	vevent.Props.SetText(ical.PropSummary, occ.Subject())
	if occ.Description() != "" {
		vevent.Props.SetText(ical.PropDescription, occ.Description())
	}
	if occ.Location() != "" {
		vevent.Props.SetText(ical.PropLocation, occ.Location())
	}
	if occ.IsPublic() {
		vevent.Props.SetText(ical.PropClass, "PUBLIC")
	} else {
		vevent.Props.SetText(ical.PropClass, "PRIVATE")
	}

	if isAllDay(occ) {
		vevent.Props.SetDate(ical.PropDateTimeStart, occ.Start())
	} else {
		vevent.Props.SetDateTime(ical.PropDateTimeStart, inZone(occ.Start(), zone).UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, inZone(occ.EffectiveEnd(), zone).UTC())
	}
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	return vevent
}

// inZone reattaches the calendar's zone to a naive wall-clock value.
func inZone(t time.Time, zone *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, zone)
}

// ICSImporter reads VEVENTs back as single events, with the same forced
// conflict checking and per-item reporting as the CSV importer.
type ICSImporter struct{}

func (i *ICSImporter) Import(ctx *calendar.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	imported := 0
	errorCount := 0
	var errs strings.Builder
	decoder := ical.NewDecoder(f)
	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", path, err)
		}
		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			event, err := veventToEvent(comp, ctx.Timezone())
			if err == nil {
				event.SetAutoDecline(true)
				err = ctx.Store().Add(event, true)
			}
			if err != nil {
				errs.WriteString(fmt.Sprintf("Event: %v\n", err))
				errorCount++
				continue
			}
			imported++
		}
	}

	result := fmt.Sprintf("Imported %d events.", imported)
	if errorCount > 0 {
		result += fmt.Sprintf("\n%d errors:\n%s", errorCount, errs.String())
	}
	return result, nil
}

func veventToEvent(comp *ical.Component, zone *time.Location) (*domain.SingleEvent, error) {
	var subject, description, location string
	isPublic := true
	var start, end time.Time
	allDay := false

	if prop := comp.Props.Get(ical.PropSummary); prop != nil {
		subject = prop.Value
	}
	if prop := comp.Props.Get(ical.PropDescription); prop != nil {
		description = prop.Value
	}
	if prop := comp.Props.Get(ical.PropLocation); prop != nil {
		location = prop.Value
	}
	if prop := comp.Props.Get(ical.PropClass); prop != nil {
		isPublic = !strings.EqualFold(prop.Value, "PRIVATE")
	}
	if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil {
		t, err := prop.DateTime(zone)
		if err != nil {
			return nil, fmt.Errorf("parse DTSTART: %w", err)
		}
		start = naive(t, zone)
		if prop.Params.Get(ical.ParamValue) == string(ical.ValueDate) {
			allDay = true
		}
	}
	if start.IsZero() {
		return nil, fmt.Errorf("event %q has no start: %w", subject, domain.ErrInvalidDate)
	}
	if prop := comp.Props.Get(ical.PropDateTimeEnd); prop != nil {
		t, err := prop.DateTime(zone)
		if err != nil {
			return nil, fmt.Errorf("parse DTEND: %w", err)
		}
		end = naive(t, zone)
	}
	if allDay {
		start = domain.DateOf(start)
		end = domain.EndOfDay(start)
	}
	return domain.NewSingleEvent(subject, start, end, description, location, isPublic)
}

// naive renders an absolute time as a zone-less wall-clock value in zone.
func naive(t time.Time, zone *time.Location) time.Time {
	local := t.In(zone)
	return time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), 0, time.UTC)
}
