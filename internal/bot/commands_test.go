package bot

import (
	"testing"

	"herald/internal/announce"
	"herald/internal/store"
)

func TestSplitPipes(t *testing.T) {
	got := splitPipes("Go Meetup | 2026-09-22 | 7:00 PM | Room 101 |  ")
	want := []string{"Go Meetup", "2026-09-22", "7:00 PM", "Room 101"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
	if got := splitPipes(""); len(got) != 0 {
		t.Errorf("empty payload = %v", got)
	}
}

func TestParseFieldEdits(t *testing.T) {
	today, _ := store.ParseDate("2026-09-15")

	up, err := parseFieldEdits([]string{"title=New Name", "time=8 PM", "date=2026-10-01"}, today)
	if err != nil {
		t.Fatal(err)
	}
	if up.Title == nil || *up.Title != "New Name" {
		t.Errorf("title = %v", up.Title)
	}
	if up.Time == nil || *up.Time != "8 PM" {
		t.Errorf("time = %v", up.Time)
	}
	if up.Date == nil || up.Date.String() != "2026-10-01" {
		t.Errorf("date = %v", up.Date)
	}

	if _, err := parseFieldEdits([]string{"date=2026-09-01"}, today); err == nil {
		t.Error("past date accepted")
	}
	if _, err := parseFieldEdits([]string{"color=red"}, today); err == nil {
		t.Error("unknown field accepted")
	}
	if _, err := parseFieldEdits([]string{"just text"}, today); err == nil {
		t.Error("missing = accepted")
	}
}

func TestAnnounceKinds(t *testing.T) {
	if k, err := announceKinds(""); err != nil || k != nil {
		t.Errorf("empty = %v, %v", k, err)
	}
	if k, err := announceKinds("advance"); err != nil || len(k) != 1 || k[0] != announce.KindAdvance {
		t.Errorf("advance = %v, %v", k, err)
	}
	if k, err := announceKinds("Reminder"); err != nil || len(k) != 1 || k[0] != announce.KindReminder {
		t.Errorf("reminder = %v, %v", k, err)
	}
	if _, err := announceKinds("everything"); err == nil {
		t.Error("bad kind accepted")
	}
}

func TestFilterUpcoming(t *testing.T) {
	mk := func(s string) store.Event {
		d, err := store.ParseDate(s)
		if err != nil {
			t.Fatal(err)
		}
		return store.Event{ID: s, Date: d}
	}
	today, _ := store.ParseDate("2026-09-15")

	got := filterUpcoming([]store.Event{
		mk("2026-09-14"), mk("2026-09-15"), mk("2026-09-16"),
	}, today)
	if len(got) != 2 || got[0].ID != "2026-09-15" {
		t.Errorf("got %v", got)
	}
}
