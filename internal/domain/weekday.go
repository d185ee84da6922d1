package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// WeekdaySet is the set of weekdays a recurring event repeats on.
type WeekdaySet map[time.Weekday]bool

var weekdayLetters = map[byte]time.Weekday{
	'M': time.Monday,
	'T': time.Tuesday,
	'W': time.Wednesday,
	'R': time.Thursday,
	'F': time.Friday,
	'S': time.Saturday,
	'U': time.Sunday,
}

// ParseWeekdays parses a compact weekday string such as "MWF". Letters are
// case-insensitive: M T W R F S U for Monday through Sunday.
func ParseWeekdays(s string) (WeekdaySet, error) {
	days := make(WeekdaySet)
	upper := strings.ToUpper(s)
	for i := 0; i < len(upper); i++ {
		day, ok := weekdayLetters[upper[i]]
		if !ok {
			return nil, fmt.Errorf("unknown weekday letter %q: %w", string(upper[i]), ErrInvalidArgument)
		}
		days[day] = true
	}
	return days, nil
}

// Contains reports whether d is in the set.
func (ws WeekdaySet) Contains(d time.Weekday) bool {
	return ws[d]
}

// String renders the set back into letter form, Monday first.
func (ws WeekdaySet) String() string {
	order := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	letters := map[time.Weekday]string{
		time.Monday: "M", time.Tuesday: "T", time.Wednesday: "W",
		time.Thursday: "R", time.Friday: "F", time.Saturday: "S",
		time.Sunday: "U",
	}
	var sb strings.Builder
	for _, d := range order {
		if ws[d] {
			sb.WriteString(letters[d])
		}
	}
	return sb.String()
}

// Days returns the members in Sunday-first order, for stable iteration.
func (ws WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := range ws {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}
