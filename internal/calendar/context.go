package calendar

import (
	"fmt"
	"time"

	"crosscal/internal/domain"
)

// Context owns one calendar: its name, timezone and event store. Contexts are
// passed explicitly; there is no ambient current-calendar state outside the
// Registry.
type Context struct {
	name     string
	timezone *time.Location
	store    *Store
}

// NewContext creates a calendar context with an empty store.
func NewContext(name string, timezone *time.Location) *Context {
	return &Context{name: name, timezone: timezone, store: NewStore()}
}

func (c *Context) Name() string             { return c.name }
func (c *Context) Timezone() *time.Location { return c.timezone }
func (c *Context) Store() *Store            { return c.store }

// Registry tracks the known calendars and which one is active.
type Registry struct {
	calendars map[string]*Context
	current   *Context
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{calendars: make(map[string]*Context)}
}

// Create adds a calendar with the given IANA timezone name. A duplicate name
// or an unknown zone is an error.
func (r *Registry) Create(name, timezone string) (*Context, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	if _, exists := r.calendars[name]; exists {
		return nil, fmt.Errorf("calendar %q already exists", name)
	}
	ctx := NewContext(name, loc)
	r.calendars[name] = ctx
	return ctx, nil
}

// Get returns the named calendar.
func (r *Registry) Get(name string) (*Context, error) {
	ctx, ok := r.calendars[name]
	if !ok {
		return nil, fmt.Errorf("calendar %q: %w", name, domain.ErrNotFound)
	}
	return ctx, nil
}

// Use marks the named calendar as active.
func (r *Registry) Use(name string) error {
	ctx, err := r.Get(name)
	if err != nil {
		return err
	}
	r.current = ctx
	return nil
}

// Current returns the active calendar.
func (r *Registry) Current() (*Context, error) {
	if r.current == nil {
		return nil, fmt.Errorf("no active calendar set: %w", domain.ErrNotFound)
	}
	return r.current, nil
}

// All returns every registered calendar.
func (r *Registry) All() []*Context {
	var all []*Context
	for _, ctx := range r.calendars {
		all = append(all, ctx)
	}
	return all
}

// Rename changes a calendar's name, refusing to shadow an existing one.
func (r *Registry) Rename(oldName, newName string) error {
	ctx, err := r.Get(oldName)
	if err != nil {
		return err
	}
	if _, exists := r.calendars[newName]; exists {
		return fmt.Errorf("calendar %q already exists", newName)
	}
	delete(r.calendars, oldName)
	ctx.name = newName
	r.calendars[newName] = ctx
	return nil
}

// SetTimezone re-zones a calendar, migrating every stored event so each keeps
// its absolute instant while its wall-clock rendering changes.
func (r *Registry) SetTimezone(name, timezone string) error {
	ctx, err := r.Get(name)
	if err != nil {
		return err
	}
	newZone, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	oldZone := ctx.timezone
	ctx.timezone = newZone
	if err := MigrateZone(ctx, oldZone, newZone); err != nil {
		return fmt.Errorf("migrate %q: %w", name, err)
	}
	return nil
}

// Remove drops a calendar, clearing the active pointer if it was current.
func (r *Registry) Remove(name string) {
	if r.current != nil && r.current.name == name {
		r.current = nil
	}
	delete(r.calendars, name)
}
