package event

import (
	"fmt"
	"strings"
	"time"
)

// Status classifies an activity relative to a reference instant.
type Status string

const (
	StatusPast     Status = "past"
	StatusOngoing  Status = "ongoing"
	StatusUpcoming Status = "upcoming"
	StatusUnknown  Status = "unknown"
)

// Status derives the display status of the activity at the given instant.
// The comparison is pure: date plus start/end times against now, in now's
// location. Unparseable schedules yield StatusUnknown rather than a guess.
func (a Activity) Status(now time.Time) Status {
	start, err := a.timeAt(a.StartTime, now.Location())
	if err != nil {
		return StatusUnknown
	}
	end, err := a.timeAt(a.EndTime, now.Location())
	if err != nil {
		return StatusUnknown
	}

	switch {
	case now.After(end):
		return StatusPast
	case !now.Before(start): // start <= now <= end
		return StatusOngoing
	default:
		return StatusUpcoming
	}
}

func (a Activity) timeAt(clock string, loc *time.Location) (time.Time, error) {
	stamp := a.Date + "T" + normalizeClock(clock)
	return time.ParseInLocation("2006-01-02T15:04:05", stamp, loc)
}

// normalizeClock tolerates hh:mm schedules next to hh:mm:ss ones.
func normalizeClock(clock string) string {
	if strings.Count(clock, ":") == 1 {
		return clock + ":00"
	}
	return clock
}

// DisplayDate reformats the wire date (yyyy-mm-dd) the way the operator
// console shows it (dd-mm-yyyy). Malformed input comes back empty.
func (a Activity) DisplayDate() string {
	parts := strings.Split(a.Date, "-")
	if len(parts) != 3 {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", parts[2], parts[1], parts[0])
}

// FilterByStatus keeps only events that have at least one activity with
// the wanted status, with non-matching activities stripped out.
func FilterByStatus(events []Event, want Status, now time.Time) []Event {
	filtered := make([]Event, 0, len(events))
	for _, ev := range events {
		matching := make([]Activity, 0, len(ev.Activities))
		for _, act := range ev.Activities {
			if act.Status(now) == want {
				matching = append(matching, act)
			}
		}
		if len(matching) > 0 {
			ev.Activities = matching
			filtered = append(filtered, ev)
		}
	}
	return filtered
}
