package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"crosscal/config"
	"crosscal/internal/calendar"
	"crosscal/internal/domain"
)

// Notifier receives reminder texts for upcoming occurrences.
type Notifier interface {
	Notify(calendarName, text string) error
}

// LogNotifier writes reminders to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(calendarName, text string) error {
	log.Printf("[%s] %s", calendarName, text)
	return nil
}

// Scheduler sweeps every calendar once a minute and fires a reminder for
// each occurrence starting within the configured window. An occurrence is
// reminded at most once.
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	registry *calendar.Registry
	notifier Notifier
	expand   func(domain.Event) []*domain.SingleEvent

	notified map[string]bool
}

func New(cfg *config.Config, registry *calendar.Registry,
	expand func(domain.Event) []*domain.SingleEvent) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Timezone))

	return &Scheduler{
		cron:     c,
		cfg:      cfg,
		registry: registry,
		notifier: LogNotifier{},
		expand:   expand,
		notified: make(map[string]bool),
	}
}

func (s *Scheduler) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("* * * * *", s.checkReminders); err != nil {
		return fmt.Errorf("add reminder check: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler started (TZ: %s, window: %d min)",
		s.cfg.Timezone, s.cfg.ReminderWindowMinutes)

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) checkReminders() {
	window := time.Duration(s.cfg.ReminderWindowMinutes) * time.Minute

	for _, ctx := range s.registry.All() {
		// Event times are naive wall-clock values in the calendar's zone.
		local := time.Now().In(ctx.Timezone())
		now := time.Date(local.Year(), local.Month(), local.Day(),
			local.Hour(), local.Minute(), 0, 0, time.UTC)

		for _, event := range ctx.Store().All() {
			for _, occ := range s.expand(event) {
				if occ.Start().Before(now) || occ.Start().After(now.Add(window)) {
					continue
				}
				key := fmt.Sprintf("%s/%s/%d", ctx.Name(), occ.Subject(), occ.Start().Unix())
				if s.notified[key] {
					continue
				}
				text := fmt.Sprintf("Upcoming: %s at %s",
					occ.Subject(), occ.Start().Format(domain.DateTimeLayout))
				if occ.Location() != "" {
					text += fmt.Sprintf(" (%s)", occ.Location())
				}
				if err := s.notifier.Notify(ctx.Name(), text); err != nil {
					log.Printf("Error sending reminder for %q: %v", occ.Subject(), err)
					continue
				}
				s.notified[key] = true
			}
		}
	}
}
