package announce

import (
	"testing"
	"time"

	"herald/internal/store"
)

func testPolicy() Policy {
	return NewPolicy(PolicyConfig{
		HorizonDays:   7,
		AdvanceHour:   9,
		Lead:          3 * time.Hour,
		Granularity:   15 * time.Minute,
		LateTolerance: time.Hour,
		Location:      time.UTC,
	})
}

func date(t *testing.T, s string) store.Date {
	t.Helper()
	d, err := store.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func at(t *testing.T, day, clock string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

const today = "2026-09-15"

func event(t *testing.T, day, clock string) store.Event {
	t.Helper()
	return store.Event{
		ID:           "ev-" + day + "-" + clock,
		Title:        "Meetup",
		Date:         date(t, day),
		Time:         clock,
		Announcement: store.Pending,
		Reminder:     store.Pending,
	}
}

func kinds(due []Due) []Kind {
	out := make([]Kind, len(due))
	for i, d := range due {
		out[i] = d.Kind
	}
	return out
}

func TestAdvanceDueExactlyAtHorizon(t *testing.T) {
	p := testPolicy()
	now := at(t, today, "09:00")

	cases := []struct {
		day string
		due bool
	}{
		{"2026-09-22", true},  // today + 7
		{"2026-09-21", false}, // today + 6
		{"2026-09-23", false}, // today + 8
		{today, false},        // today itself is never advance-due
		{"2026-09-10", false}, // past
	}
	for _, tc := range cases {
		ev := event(t, tc.day, "7:00 PM")
		got := p.Due(now, []store.Event{ev}, ModeScheduled)
		isDue := len(got) == 1 && got[0].Kind == KindAdvance
		if isDue != tc.due {
			t.Errorf("date %s: advance due = %v, want %v", tc.day, isDue, tc.due)
		}
	}
}

func TestAdvanceNotDueOnceSent(t *testing.T) {
	p := testPolicy()
	ev := event(t, "2026-09-22", "7:00 PM")
	ev.Announcement = store.Sent

	if got := p.Due(at(t, today, "09:00"), []store.Event{ev}, ModeScheduled); len(got) != 0 {
		t.Errorf("sent event still due: %v", got)
	}
	if got := p.Due(at(t, today, "12:00"), []store.Event{ev}, ModeCatchUp); len(got) != 0 {
		t.Errorf("sent event due in catch-up: %v", got)
	}
}

func TestAdvanceCatchUpGatedOnDailyCutoff(t *testing.T) {
	p := testPolicy()
	ev := event(t, "2026-09-18", "7:00 PM") // inside horizon

	if got := p.Due(at(t, today, "08:59"), []store.Event{ev}, ModeCatchUp); len(got) != 0 {
		t.Errorf("catch-up fired before 09:00: %v", got)
	}
	got := p.Due(at(t, today, "09:00"), []store.Event{ev}, ModeCatchUp)
	if len(got) != 1 || got[0].Kind != KindAdvance {
		t.Errorf("catch-up at 09:00 = %v", kinds(got))
	}

	// Beyond the horizon stays silent even in catch-up.
	far := event(t, "2026-09-23", "7:00 PM")
	if got := p.Due(at(t, today, "12:00"), []store.Event{far}, ModeCatchUp); len(got) != 0 {
		t.Errorf("beyond-horizon event due in catch-up: %v", got)
	}
}

func TestAdvanceMidnightCutoffIsHonored(t *testing.T) {
	p := NewPolicy(PolicyConfig{
		HorizonDays: 7,
		// A configured 00:00 cutoff stays midnight; it must not turn into
		// the 09:00 default.
		AdvanceHour:   0,
		AdvanceMinute: 0,
		Location:      time.UTC,
	})
	ev := event(t, "2026-09-18", "7:00 PM")

	got := p.Due(at(t, today, "00:01"), []store.Event{ev}, ModeCatchUp)
	if len(got) != 1 || got[0].Kind != KindAdvance {
		t.Fatalf("due at 00:01 = %v, want one advance", got)
	}
}

func TestReminderScheduledWindow(t *testing.T) {
	p := testPolicy()
	ev := event(t, today, "7:00 PM") // start 19:00, window (15:45, 16:15]

	cases := []struct {
		clock string
		due   bool
	}{
		{"15:15", false}, // well before the window
		{"15:45", false}, // lower bound is exclusive
		{"15:46", true},
		{"16:05", true},
		{"16:15", true},  // upper bound is inclusive
		{"16:16", false}, // past the window
		{"19:30", false},
	}
	for _, tc := range cases {
		got := p.Due(at(t, today, tc.clock), []store.Event{ev}, ModeScheduled)
		isDue := len(got) == 1 && got[0].Kind == KindReminder
		if isDue != tc.due {
			t.Errorf("at %s: reminder due = %v, want %v", tc.clock, isDue, tc.due)
		}
	}
}

func TestReminderCatchUpWindow(t *testing.T) {
	p := testPolicy()
	ev := event(t, today, "7:00 PM") // catch-up window (16:00, 20:00]

	cases := []struct {
		clock string
		due   bool
	}{
		{"16:00", false}, // exclusive lower bound
		{"16:01", true},
		{"18:30", true},
		{"19:50", true},  // 50 minutes late is still recovered
		{"20:00", true},  // inclusive upper bound
		{"20:01", false}, // tolerance elapsed
	}
	for _, tc := range cases {
		got := p.Due(at(t, today, tc.clock), []store.Event{ev}, ModeCatchUp)
		isDue := len(got) == 1 && got[0].Kind == KindReminder
		if isDue != tc.due {
			t.Errorf("at %s: catch-up reminder due = %v, want %v", tc.clock, isDue, tc.due)
		}
	}
}

func TestReminderNotDueAgainOnceSent(t *testing.T) {
	p := testPolicy()
	ev := event(t, today, "7:00 PM")
	ev.Reminder = store.Sent

	// Still inside both windows, but the flag wins.
	if got := p.Due(at(t, today, "16:05"), []store.Event{ev}, ModeScheduled); len(got) != 0 {
		t.Errorf("sent reminder due again: %v", got)
	}
	if got := p.Due(at(t, today, "18:30"), []store.Event{ev}, ModeCatchUp); len(got) != 0 {
		t.Errorf("sent reminder due in catch-up: %v", got)
	}
}

func TestReminderRequiresTodayAndParseableTime(t *testing.T) {
	p := testPolicy()

	tomorrow := event(t, "2026-09-16", "7:00 PM")
	if got := p.Due(at(t, today, "16:05"), []store.Event{tomorrow}, ModeScheduled); len(got) != 0 {
		t.Errorf("tomorrow's event reminder-due today: %v", got)
	}

	for _, raw := range []string{"TBA", "", "tomorrow night", "7 - 8:30pm"} {
		ev := event(t, today, raw)
		if got := p.Due(at(t, today, "16:05"), []store.Event{ev}, ModeScheduled); len(got) != 0 {
			t.Errorf("time %q: unparseable event due: %v", raw, got)
		}
		if got := p.Due(at(t, today, "18:30"), []store.Event{ev}, ModeCatchUp); len(got) != 0 {
			t.Errorf("time %q: unparseable event due in catch-up: %v", raw, got)
		}
	}
}

func TestDueOrderingAscendingByDate(t *testing.T) {
	p := testPolicy()
	now := at(t, today, "12:00")

	evs := []store.Event{
		event(t, "2026-09-20", "7:00 PM"),
		event(t, "2026-09-17", "7:00 PM"),
		event(t, "2026-09-17", "8:00 PM"), // same date, later in store order
		event(t, "2026-09-16", "7:00 PM"),
	}
	got := p.Due(now, evs, ModeCatchUp)
	if len(got) != 4 {
		t.Fatalf("due = %d items", len(got))
	}
	wantIDs := []string{
		"ev-2026-09-16-7:00 PM",
		"ev-2026-09-17-7:00 PM",
		"ev-2026-09-17-8:00 PM",
		"ev-2026-09-20-7:00 PM",
	}
	for i, w := range wantIDs {
		if got[i].Event.ID != w {
			t.Errorf("due[%d] = %s, want %s", i, got[i].Event.ID, w)
		}
	}
}

func TestReminderCatchUpCrossesMidnight(t *testing.T) {
	p := testPolicy()
	ev := event(t, "2026-09-14", "11:30 PM")

	// 00:15 the next day is inside the +1h tolerance of a 23:30 start.
	got := p.Due(at(t, today, "00:15"), []store.Event{ev}, ModeCatchUp)
	if len(got) != 1 || got[0].Kind != KindReminder {
		t.Fatalf("due = %v, want one reminder", got)
	}

	// Past the tolerance it is gone for good.
	if got := p.Due(at(t, today, "00:45"), []store.Event{ev}, ModeCatchUp); len(got) != 0 {
		t.Errorf("due past tolerance: %v", got)
	}

	// The tight scheduled window never reaches back across the day boundary.
	if got := p.Due(at(t, today, "00:15"), []store.Event{ev}, ModeScheduled); len(got) != 0 {
		t.Errorf("scheduled mode reached into yesterday: %v", got)
	}
}

func TestPastDatedEventNeverDue(t *testing.T) {
	p := testPolicy()
	ev := event(t, "2026-09-01", "7:00 PM")

	for _, mode := range []Mode{ModeScheduled, ModeCatchUp} {
		if got := p.Due(at(t, today, "12:00"), []store.Event{ev}, mode); len(got) != 0 {
			t.Errorf("mode %v: past event due: %v", mode, got)
		}
	}
}
