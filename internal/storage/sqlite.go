// Package storage snapshots the calendar registry to SQLite. The in-memory
// stores stay authoritative; snapshotting is an explicit save/load so the
// engine makes no durability promises between them.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crosscal/internal/calendar"
	"crosscal/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const persistLayout = "2006-01-02T15:04:05"

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS calendars (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			timezone TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			calendar_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			subject TEXT NOT NULL,
			start_at TEXT NOT NULL,
			end_at TEXT DEFAULT '',
			description TEXT DEFAULT '',
			location TEXT DEFAULT '',
			is_public INTEGER DEFAULT 1,
			auto_decline INTEGER DEFAULT 0,
			weekdays TEXT DEFAULT '',
			occurrence_count INTEGER DEFAULT -1,
			recurrence_end TEXT DEFAULT '',
			FOREIGN KEY (calendar_id) REFERENCES calendars(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_calendar_id ON events(calendar_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// SaveRegistry replaces the stored snapshot with the registry's current
// calendars and events.
func (s *Storage) SaveRegistry(registry *calendar.Registry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM calendars`); err != nil {
		return fmt.Errorf("clear calendars: %w", err)
	}

	for _, ctx := range registry.All() {
		res, err := tx.Exec(`INSERT INTO calendars (name, timezone) VALUES (?, ?)`,
			ctx.Name(), ctx.Timezone().String())
		if err != nil {
			return fmt.Errorf("insert calendar %q: %w", ctx.Name(), err)
		}
		calendarID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("calendar id for %q: %w", ctx.Name(), err)
		}
		for _, event := range ctx.Store().All() {
			if err := insertEvent(tx, calendarID, event); err != nil {
				return fmt.Errorf("insert event %q: %w", event.Subject(), err)
			}
		}
	}

	return tx.Commit()
}

func insertEvent(tx *sql.Tx, calendarID int64, event domain.Event) error {
	kind := "single"
	weekdays := ""
	occurrenceCount := domain.UnboundedCount
	recurrenceEnd := ""
	endAt := ""

	if series, ok := event.(*domain.RecurringEvent); ok {
		kind = "recurring"
		weekdays = series.Weekdays().String()
		occurrenceCount = series.OccurrenceCount()
		if !series.RecurrenceEndDate().IsZero() {
			recurrenceEnd = series.RecurrenceEndDate().Format(domain.DateLayout)
		}
		endAt = series.EffectiveEnd().Format(persistLayout)
	} else if single, ok := event.(*domain.SingleEvent); ok && single.HasExplicitEnd() {
		endAt = single.EffectiveEnd().Format(persistLayout)
	}

	_, err := tx.Exec(`INSERT INTO events
		(calendar_id, kind, subject, start_at, end_at, description, location,
		 is_public, auto_decline, weekdays, occurrence_count, recurrence_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		calendarID, kind, event.Subject(), event.Start().Format(persistLayout), endAt,
		event.Description(), event.Location(), event.IsPublic(), event.AutoDecline(),
		weekdays, occurrenceCount, recurrenceEnd)
	return err
}

// LoadRegistry rebuilds a registry from the stored snapshot. Events are
// re-inserted without re-running conflict admission; the snapshot was
// admitted once already.
func (s *Storage) LoadRegistry() (*calendar.Registry, error) {
	registry := calendar.NewRegistry()

	rows, err := s.db.Query(`SELECT id, name, timezone FROM calendars ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query calendars: %w", err)
	}
	defer rows.Close()

	type calRow struct {
		id       int64
		name     string
		timezone string
	}
	var cals []calRow
	for rows.Next() {
		var c calRow
		if err := rows.Scan(&c.id, &c.name, &c.timezone); err != nil {
			return nil, fmt.Errorf("scan calendar: %w", err)
		}
		cals = append(cals, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calendars: %w", err)
	}

	for _, c := range cals {
		ctx, err := registry.Create(c.name, c.timezone)
		if err != nil {
			return nil, fmt.Errorf("restore calendar %q: %w", c.name, err)
		}
		if err := s.loadEvents(ctx, c.id); err != nil {
			return nil, fmt.Errorf("restore events for %q: %w", c.name, err)
		}
	}

	return registry, nil
}

func (s *Storage) loadEvents(ctx *calendar.Context, calendarID int64) error {
	rows, err := s.db.Query(`SELECT kind, subject, start_at, end_at, description,
		location, is_public, auto_decline, weekdays, occurrence_count, recurrence_end
		FROM events WHERE calendar_id = ? ORDER BY id`, calendarID)
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, subject, startAt, endAt, description, location, weekdays, recurrenceEnd string
		var isPublic, autoDecline bool
		var occurrenceCount int
		if err := rows.Scan(&kind, &subject, &startAt, &endAt, &description, &location,
			&isPublic, &autoDecline, &weekdays, &occurrenceCount, &recurrenceEnd); err != nil {
			return fmt.Errorf("scan event: %w", err)
		}

		start, err := time.ParseInLocation(persistLayout, startAt, time.UTC)
		if err != nil {
			return fmt.Errorf("parse start %q: %w", startAt, err)
		}
		var end time.Time
		if endAt != "" {
			end, err = time.ParseInLocation(persistLayout, endAt, time.UTC)
			if err != nil {
				return fmt.Errorf("parse end %q: %w", endAt, err)
			}
		}

		var event domain.Event
		if kind == "recurring" {
			days, err := domain.ParseWeekdays(weekdays)
			if err != nil {
				return fmt.Errorf("parse weekdays %q: %w", weekdays, err)
			}
			var recEnd time.Time
			if recurrenceEnd != "" {
				recEnd, err = domain.ParseDate(recurrenceEnd)
				if err != nil {
					return fmt.Errorf("parse recurrence end %q: %w", recurrenceEnd, err)
				}
			}
			event, err = domain.NewRecurringEvent(subject, start, end, description, location,
				isPublic, days, occurrenceCount, recEnd)
			if err != nil {
				return fmt.Errorf("restore series %q: %w", subject, err)
			}
		} else {
			event, err = domain.NewSingleEvent(subject, start, end, description, location, isPublic)
			if err != nil {
				return fmt.Errorf("restore event %q: %w", subject, err)
			}
		}
		// Insert before restoring the autoDecline flag so admission cannot
		// re-reject events that were already accepted when first added.
		if err := ctx.Store().Add(event, false); err != nil {
			return fmt.Errorf("add event %q: %w", subject, err)
		}
		event.SetAutoDecline(autoDecline)
	}
	return rows.Err()
}
