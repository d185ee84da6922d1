// Package caldav publishes calendars to a CalDAV server. Series are uploaded
// expanded, since the engine's weekday rule is not an RFC 5545 RRULE.
package caldav

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"crosscal/internal/calendar"
	"crosscal/internal/domain"
)

// Client is a CalDAV client configured with basic-auth credentials.
type Client struct {
	baseURL  string
	username string
	password string
	client   *caldav.Client
}

// NewClient creates a CalDAV client.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
	}
}

// IsConfigured returns true if the client has an endpoint and credentials.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.username != "" && c.password != ""
}

func (c *Client) connect() (*caldav.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	httpClient := &http.Client{
		Transport: &basicAuthTransport{
			username: c.username,
			password: c.password,
		},
		Timeout: 30 * time.Second,
	}

	client, err := caldav.NewClient(httpClient, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}

	c.client = client
	return client, nil
}

// basicAuthTransport adds Basic Auth to HTTP requests.
type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}

// DiscoverCalendars returns all calendar collections for the user.
func (c *Client) DiscoverCalendars() ([]Calendar, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}

	var result []Calendar
	for _, cal := range cals {
		result = append(result, Calendar{
			ID:          cal.Path,
			DisplayName: cal.Name,
			URL:         cal.Path,
		})
	}

	return result, nil
}

// PublishCalendar uploads every occurrence of the given calendar context as
// one iCalendar object named after the calendar. Naive event times are
// interpreted in the context's timezone.
func (c *Client) PublishCalendar(collectionPath string, cal *calendar.Context,
	expand func(domain.Event) []*domain.SingleEvent) error {
	client, err := c.connect()
	if err != nil {
		return err
	}
	if collectionPath == "" {
		return fmt.Errorf("calendar path not specified")
	}

	ics := ical.NewCalendar()
	ics.Props.SetText(ical.PropVersion, "2.0")
	ics.Props.SetText(ical.PropProductID, "-//crosscal//CalDAV//EN")

	for _, event := range cal.Store().All() {
		for _, occ := range expand(event) {
			ics.Children = append(ics.Children, occurrenceToVEvent(occ, cal.Timezone()).Component)
		}
	}

	objectPath := collectionPath
	if !strings.HasSuffix(objectPath, "/") {
		objectPath += "/"
	}
	objectPath += sanitizeName(cal.Name()) + ".ics"

	if _, err := client.PutCalendarObject(context.Background(), objectPath, ics); err != nil {
		return fmt.Errorf("publish calendar %q: %w", cal.Name(), err)
	}
	return nil
}

func occurrenceToVEvent(occ *domain.SingleEvent, zone *time.Location) *ical.Event {
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%d@crosscal",
		sanitizeName(occ.Subject()), occ.Start().Unix()))
	vevent.Props.SetText(ical.PropSummary, occ.Subject())
	if occ.Description() != "" {
		vevent.Props.SetText(ical.PropDescription, occ.Description())
	}
	if occ.Location() != "" {
		vevent.Props.SetText(ical.PropLocation, occ.Location())
	}

	start := time.Date(occ.Start().Year(), occ.Start().Month(), occ.Start().Day(),
		occ.Start().Hour(), occ.Start().Minute(), 0, 0, zone)
	end := time.Date(occ.EffectiveEnd().Year(), occ.EffectiveEnd().Month(), occ.EffectiveEnd().Day(),
		occ.EffectiveEnd().Hour(), occ.EffectiveEnd().Minute(), 0, 0, zone)
	vevent.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	return vevent
}

func sanitizeName(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}
