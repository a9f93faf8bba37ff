package event

import (
	"testing"
	"time"
)

// A fixed reference instant keeps every case deterministic.
var noon = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func TestActivityStatus(t *testing.T) {
	tests := []struct {
		name     string
		activity Activity
		want     Status
	}{
		{
			name:     "ongoing: today, started, not yet ended",
			activity: Activity{Date: "2026-08-31", StartTime: "10:00:00", EndTime: "14:00:00"},
			want:     StatusOngoing,
		},
		{
			name:     "ongoing at exact start",
			activity: Activity{Date: "2026-08-31", StartTime: "12:00:00", EndTime: "14:00:00"},
			want:     StatusOngoing,
		},
		{
			name:     "ongoing at exact end",
			activity: Activity{Date: "2026-08-31", StartTime: "10:00:00", EndTime: "12:00:00"},
			want:     StatusOngoing,
		},
		{
			name:     "upcoming: future date",
			activity: Activity{Date: "2026-09-15", StartTime: "18:00:00", EndTime: "22:00:00"},
			want:     StatusUpcoming,
		},
		{
			name:     "upcoming: later today",
			activity: Activity{Date: "2026-08-31", StartTime: "19:00:00", EndTime: "23:00:00"},
			want:     StatusUpcoming,
		},
		{
			name:     "past: earlier today",
			activity: Activity{Date: "2026-08-31", StartTime: "08:00:00", EndTime: "10:00:00"},
			want:     StatusPast,
		},
		{
			name:     "past: previous date",
			activity: Activity{Date: "2026-08-30", StartTime: "18:00:00", EndTime: "22:00:00"},
			want:     StatusPast,
		},
		{
			name:     "short clock format tolerated",
			activity: Activity{Date: "2026-08-31", StartTime: "10:00", EndTime: "14:00"},
			want:     StatusOngoing,
		},
		{
			name:     "unparseable schedule",
			activity: Activity{Date: "soon", StartTime: "10:00:00", EndTime: "14:00:00"},
			want:     StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.activity.Status(noon); got != tt.want {
				t.Errorf("Status() = %s, expected %s", got, tt.want)
			}
		})
	}
}

func TestDisplayDate(t *testing.T) {
	act := Activity{Date: "2026-08-31"}
	if got := act.DisplayDate(); got != "31-08-2026" {
		t.Errorf("DisplayDate() = %q, expected 31-08-2026", got)
	}
	if got := (Activity{Date: "bogus"}).DisplayDate(); got != "" {
		t.Errorf("expected empty display date for malformed input, got %q", got)
	}
}

func TestFilterByStatus(t *testing.T) {
	events := []Event{
		{
			EventID:   1,
			EventName: "Concert A",
			Activities: []Activity{
				{EventActivityID: 10, Date: "2026-08-31", StartTime: "10:00:00", EndTime: "14:00:00"},
				{EventActivityID: 11, Date: "2026-09-15", StartTime: "18:00:00", EndTime: "22:00:00"},
			},
		},
		{
			EventID:   2,
			EventName: "Expo B",
			Activities: []Activity{
				{EventActivityID: 20, Date: "2026-08-01", StartTime: "09:00:00", EndTime: "17:00:00"},
			},
		},
	}

	ongoing := FilterByStatus(events, StatusOngoing, noon)
	if len(ongoing) != 1 || ongoing[0].EventID != 1 {
		t.Fatalf("unexpected ongoing filter result: %+v", ongoing)
	}
	if len(ongoing[0].Activities) != 1 || ongoing[0].Activities[0].EventActivityID != 10 {
		t.Fatalf("expected only the ongoing activity to remain: %+v", ongoing[0].Activities)
	}

	past := FilterByStatus(events, StatusPast, noon)
	if len(past) != 1 || past[0].EventID != 2 {
		t.Fatalf("unexpected past filter result: %+v", past)
	}

	// Source slice keeps its activities untouched.
	if len(events[0].Activities) != 2 {
		t.Fatalf("filter must not mutate the input, got %+v", events[0].Activities)
	}
}
