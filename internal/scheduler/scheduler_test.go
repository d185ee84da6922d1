package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscal/config"
	"crosscal/internal/calendar"
	"crosscal/internal/domain"
)

type captureNotifier struct {
	messages []string
}

func (c *captureNotifier) Notify(calendarName, text string) error {
	c.messages = append(c.messages, calendarName+": "+text)
	return nil
}

func TestCheckRemindersFiresOnceInsideWindow(t *testing.T) {
	registry := calendar.NewRegistry()
	ctx, err := registry.Create("work", "UTC")
	require.NoError(t, err)

	soon := time.Now().UTC().Add(10 * time.Minute).Truncate(time.Minute)
	event, err := domain.NewSingleEvent("Review", soon, soon.Add(15*time.Minute), "", "Room 4", true)
	require.NoError(t, err)
	require.NoError(t, ctx.Store().Add(event, false))

	far, err := domain.NewSingleEvent("Later", soon.Add(4*time.Hour), soon.Add(5*time.Hour), "", "", true)
	require.NoError(t, err)
	require.NoError(t, ctx.Store().Add(far, false))

	cfg := &config.Config{Timezone: time.UTC, ReminderWindowMinutes: 30}
	sched := New(cfg, registry, func(e domain.Event) []*domain.SingleEvent { return e.Occurrences() })
	notifier := &captureNotifier{}
	sched.SetNotifier(notifier)

	sched.checkReminders()
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "work: Upcoming: Review")
	assert.Contains(t, notifier.messages[0], "(Room 4)")

	// The same occurrence is not reminded twice.
	sched.checkReminders()
	assert.Len(t, notifier.messages, 1)
}
