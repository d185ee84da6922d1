package exchange

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"crosscal/internal/calendar"
	"crosscal/internal/domain"
)

// csvHeader is the fixed row schema shared by export and import.
var csvHeader = []string{
	"Subject", "Start Date", "Start Time", "End Date", "End Time",
	"AllDayEvent", "Description", "Location", "Private",
}

// CSVExporter writes one row per occurrence, expanding series.
type CSVExporter struct{}

func (e *CSVExporter) Export(ctx *calendar.Context, expand ExpandFunc, path string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, event := range ctx.Store().All() {
		for _, occ := range expand(event) {
			if err := w.Write(eventRow(occ)); err != nil {
				return "", fmt.Errorf("write row for %q: %w", occ.Subject(), err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

func eventRow(occ *domain.SingleEvent) []string {
	start := occ.Start()
	end := occ.EffectiveEnd()
	return []string{
		occ.Subject(),
		start.Format(domain.DateLayout),
		start.Format(domain.TimeLayout),
		end.Format(domain.DateLayout),
		end.Format(domain.TimeLayout),
		strconv.FormatBool(isAllDay(occ)),
		occ.Description(),
		occ.Location(),
		strconv.FormatBool(!occ.IsPublic()),
	}
}

// CSVImporter reads rows back into single events. Every imported event is
// inserted with autoDecline forced on; row-level failures are collected into
// the report rather than aborting the import.
type CSVImporter struct{}

func (i *CSVImporter) Import(ctx *calendar.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return "Error: CSV file is empty.", nil
	}

	imported := 0
	errorCount := 0
	var errs strings.Builder
	for n, record := range records[1:] {
		lineNumber := n + 2
		if len(record) < 9 {
			errs.WriteString(fmt.Sprintf("Line %d: Invalid number of fields.\n", lineNumber))
			errorCount++
			continue
		}
		event, err := eventFromRow(record)
		if err == nil {
			event.SetAutoDecline(true)
			err = ctx.Store().Add(event, true)
		}
		if err != nil {
			errs.WriteString(fmt.Sprintf("Line %d: %v\n", lineNumber, err))
			errorCount++
			continue
		}
		imported++
	}

	result := fmt.Sprintf("Imported %d events.", imported)
	if errorCount > 0 {
		result += fmt.Sprintf("\n%d errors:\n%s", errorCount, errs.String())
	}
	return result, nil
}

func eventFromRow(record []string) (*domain.SingleEvent, error) {
	subject := strings.TrimSpace(record[0])
	start, err := parseDateTimeFields(record[1], record[2])
	if err != nil {
		return nil, err
	}
	end, err := parseDateTimeFields(record[3], record[4])
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(record[6])
	location := strings.TrimSpace(record[7])
	isPublic := !strings.EqualFold(strings.TrimSpace(record[8]), "true")
	return domain.NewSingleEvent(subject, start, end, description, location, isPublic)
}

func parseDateTimeFields(dateField, timeField string) (time.Time, error) {
	date, err := domain.ParseDate(strings.TrimSpace(dateField))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", dateField, err)
	}
	clockField := strings.TrimSpace(timeField)
	clock, err := time.ParseInLocation(domain.TimeLayout, clockField, time.UTC)
	if err != nil {
		clock, err = time.ParseInLocation("15:04:05", clockField, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse time %q: %w", timeField, err)
		}
	}
	return domain.At(date, clock), nil
}
