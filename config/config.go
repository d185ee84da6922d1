package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabasePath          string
	DefaultCalendar       string
	Timezone              *time.Location
	ReminderWindowMinutes int
	CalDAVURL             string
	CalDAVUsername        string
	CalDAVPassword        string
}

func Load() (*Config, error) {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/crosscal.db"
	}

	defaultCalendar := os.Getenv("DEFAULT_CALENDAR")
	if defaultCalendar == "" {
		defaultCalendar = "default"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "America/New_York"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	window := 30
	if w := os.Getenv("REMINDER_WINDOW_MINUTES"); w != "" {
		window, err = strconv.Atoi(w)
		if err != nil || window <= 0 {
			return nil, fmt.Errorf("REMINDER_WINDOW_MINUTES must be a positive number")
		}
	}

	return &Config{
		DatabasePath:          dbPath,
		DefaultCalendar:       defaultCalendar,
		Timezone:              tz,
		ReminderWindowMinutes: window,
		CalDAVURL:             os.Getenv("CALDAV_URL"),
		CalDAVUsername:        os.Getenv("CALDAV_USERNAME"),
		CalDAVPassword:        os.Getenv("CALDAV_PASSWORD"),
	}, nil
}
