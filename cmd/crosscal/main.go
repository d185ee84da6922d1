package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"crosscal/config"
	"crosscal/internal/calendar"
	"crosscal/internal/clients/caldav"
	"crosscal/internal/scheduler"
	"crosscal/internal/service"
	"crosscal/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	registry, err := store.LoadRegistry()
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}
	if len(registry.All()) == 0 {
		if _, err := registry.Create(cfg.DefaultCalendar, cfg.Timezone.String()); err != nil {
			log.Fatalf("Failed to create default calendar: %v", err)
		}
	}
	if err := registry.Use(cfg.DefaultCalendar); err != nil {
		log.Printf("Default calendar not active: %v", err)
	}

	// Snapshots carry no overrides, so a fresh edit service expands cleanly.
	editSvc := service.NewEditService()

	publishCalendars(cfg, registry, editSvc)

	sched := scheduler.New(cfg, registry, editSvc.OccurrencesOf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			log.Printf("Scheduler error: %v", err)
		}
	}()

	log.Printf("crosscal started (%d calendars)", len(registry.All()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	cancel()
	sched.Stop()

	if err := store.SaveRegistry(registry); err != nil {
		log.Printf("Error saving snapshot: %v", err)
	}

	log.Println("crosscal stopped")
}

func publishCalendars(cfg *config.Config, registry *calendar.Registry, editSvc *service.EditService) {
	client := caldav.NewClient(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword)
	if !client.IsConfigured() {
		return
	}

	collections, err := client.DiscoverCalendars()
	if err != nil {
		log.Printf("CalDAV discovery failed: %v", err)
		return
	}
	if len(collections) == 0 {
		log.Println("CalDAV: no collections found")
		return
	}

	for _, ctx := range registry.All() {
		if err := client.PublishCalendar(collections[0].URL, ctx, editSvc.OccurrencesOf); err != nil {
			log.Printf("CalDAV publish failed for %q: %v", ctx.Name(), err)
			continue
		}
		log.Printf("Published calendar %q to CalDAV", ctx.Name())
	}
}
