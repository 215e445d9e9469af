package announce

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"herald/internal/store"
	logx "herald/pkg/logx"
)

// memStore is a minimal in-memory store.Store for driver tests.
type memStore struct {
	events []store.Event
}

func (m *memStore) List(ctx context.Context) ([]store.Event, error) {
	out := make([]store.Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

func (m *memStore) ByDate(ctx context.Context, d store.Date) ([]store.Event, error) {
	var out []store.Event
	for _, ev := range m.events {
		if ev.Date.Equal(d) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memStore) Get(ctx context.Context, id string) (store.Event, error) {
	for _, ev := range m.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return store.Event{}, store.ErrNotFound
}

func (m *memStore) Create(ctx context.Context, ev store.Event) (store.Event, error) {
	m.events = append(m.events, ev)
	return ev, nil
}

func (m *memStore) Update(ctx context.Context, id string, up store.Update) (store.Event, error) {
	return store.Event{}, errors.New("not implemented")
}

func (m *memStore) Delete(ctx context.Context, id string) error { return errors.New("not implemented") }

func (m *memStore) MarkAnnouncementSent(ctx context.Context, id string) error {
	return m.mark(id, func(ev *store.Event) { ev.Announcement = store.Sent })
}

func (m *memStore) MarkReminderSent(ctx context.Context, id string) error {
	return m.mark(id, func(ev *store.Event) { ev.Reminder = store.Sent })
}

func (m *memStore) mark(id string, set func(*store.Event)) error {
	for i := range m.events {
		if m.events[i].ID == id {
			set(&m.events[i])
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) SaveImage(ctx context.Context, id string, data []byte, ext string) (string, error) {
	return "", errors.New("not implemented")
}

func (m *memStore) Close() error { return nil }

// fakeSender records sends and can be told to fail.
type fakeSender struct {
	sent []Due
	fail bool
}

func (f *fakeSender) Send(ctx context.Context, d Due, daysUntil int) error {
	if f.fail {
		return errors.New("transport down")
	}
	f.sent = append(f.sent, d)
	return nil
}

func newTestDriver(st store.Store, snd Sender, clock time.Time) *Driver {
	d := NewDriver(st, snd, DriverConfig{
		Policy: PolicyConfig{
			HorizonDays: 7,
			AdvanceHour: 9,
			Location:    time.UTC,
		},
	}, logx.Nop())
	d.SetClock(func() time.Time { return clock })
	return d
}

func TestTickSendsAndMarks(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	ev := event(t, "2026-09-22", "7:00 PM") // today + 7
	ms.events = append(ms.events, ev)

	snd := &fakeSender{}
	d := newTestDriver(ms, snd, at(t, today, "09:00"))

	d.tick(ctx, ModeScheduled, KindAdvance)
	if len(snd.sent) != 1 || snd.sent[0].Kind != KindAdvance {
		t.Fatalf("sent = %v", snd.sent)
	}
	got, _ := ms.Get(ctx, ev.ID)
	if got.Announcement != store.Sent {
		t.Errorf("announcement flag = %s", got.Announcement)
	}

	// Ticking again must not resend.
	d.tick(ctx, ModeScheduled, KindAdvance)
	d.tick(ctx, ModeCatchUp, KindAdvance, KindReminder)
	if len(snd.sent) != 1 {
		t.Errorf("resent: %d sends", len(snd.sent))
	}
}

func TestFailedSendLeavesFlagPending(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	ev := event(t, "2026-09-22", "7:00 PM")
	ms.events = append(ms.events, ev)

	snd := &fakeSender{fail: true}
	d := newTestDriver(ms, snd, at(t, today, "09:00"))

	d.tick(ctx, ModeScheduled, KindAdvance)
	got, _ := ms.Get(ctx, ev.ID)
	if got.Announcement != store.Pending {
		t.Fatalf("flag marked despite failure: %s", got.Announcement)
	}

	// Transport recovers; the next tick retries and marks.
	snd.fail = false
	d.tick(ctx, ModeScheduled, KindAdvance)
	if len(snd.sent) != 1 {
		t.Fatalf("sent = %d", len(snd.sent))
	}
	got, _ = ms.Get(ctx, ev.ID)
	if got.Announcement != store.Sent {
		t.Errorf("flag = %s after retry", got.Announcement)
	}
}

func TestReminderTickMarksReminderOnly(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	ev := event(t, today, "7:00 PM")
	ms.events = append(ms.events, ev)

	snd := &fakeSender{}
	d := newTestDriver(ms, snd, at(t, today, "16:05"))

	d.tick(ctx, ModeScheduled, KindReminder)
	if len(snd.sent) != 1 || snd.sent[0].Kind != KindReminder {
		t.Fatalf("sent = %v", snd.sent)
	}
	got, _ := ms.Get(ctx, ev.ID)
	if got.Reminder != store.Sent || got.Announcement != store.Pending {
		t.Errorf("flags = %s/%s", got.Announcement, got.Reminder)
	}
}

func TestDispatchSharedByManualFlow(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	ev := event(t, "2026-09-18", "7:00 PM")
	ms.events = append(ms.events, ev)

	snd := &fakeSender{}
	d := newTestDriver(ms, snd, at(t, today, "12:00"))

	due, err := d.DueNow(ctx, ModeCatchUp)
	if err != nil || len(due) != 1 {
		t.Fatalf("DueNow = %v, %v", due, err)
	}

	sent, failed := d.Dispatch(ctx, due)
	if sent != 1 || failed != 0 {
		t.Fatalf("Dispatch = %d/%d", sent, failed)
	}
	got, _ := ms.Get(ctx, ev.ID)
	if got.Announcement != store.Sent {
		t.Errorf("flag = %s", got.Announcement)
	}

	// Manual resend of the same item is suppressed by the flag on the next
	// evaluation.
	due, _ = d.DueNow(ctx, ModeCatchUp)
	if len(due) != 0 {
		t.Errorf("still due after dispatch: %v", due)
	}
}

func TestDispatchSkipsItemsSentMeanwhile(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	ev := event(t, "2026-09-18", "7:00 PM")
	ms.events = append(ms.events, ev)

	snd := &fakeSender{}
	d := newTestDriver(ms, snd, at(t, today, "12:00"))

	// The manual flow snapshots its due list, then a scheduled tick fires
	// while the operator's selection is still open.
	due, err := d.DueNow(ctx, ModeCatchUp)
	if err != nil || len(due) != 1 {
		t.Fatalf("DueNow = %v, %v", due, err)
	}
	d.tick(ctx, ModeCatchUp, KindAdvance)
	if len(snd.sent) != 1 {
		t.Fatalf("tick sends = %d", len(snd.sent))
	}

	// Confirming the stale snapshot must not deliver the notice again.
	sent, failed := d.Dispatch(ctx, due)
	if sent != 0 || failed != 0 {
		t.Errorf("stale dispatch = %d/%d, want 0/0", sent, failed)
	}
	if len(snd.sent) != 1 {
		t.Errorf("total sends = %d, want 1", len(snd.sent))
	}
}

func TestDispatchSkipsDeletedEvent(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	ev := event(t, "2026-09-18", "7:00 PM")
	ms.events = append(ms.events, ev)

	snd := &fakeSender{}
	d := newTestDriver(ms, snd, at(t, today, "12:00"))

	due, err := d.DueNow(ctx, ModeCatchUp)
	if err != nil || len(due) != 1 {
		t.Fatalf("DueNow = %v, %v", due, err)
	}
	ms.events = nil

	sent, failed := d.Dispatch(ctx, due)
	if sent != 0 || failed != 0 || len(snd.sent) != 0 {
		t.Errorf("dispatch after delete = %d/%d, sends %d", sent, failed, len(snd.sent))
	}
}

func TestComposeReminder(t *testing.T) {
	ev := store.Event{Title: "Go Meetup", Time: "7:00 PM", Location: "Room 101"}
	got := ComposeReminder(ev)
	want := "We have our **Go Meetup** today at **7:00 PM** in **Room 101**. Hope to see you there!"
	if got != want {
		t.Errorf("reminder = %q", got)
	}
}

func TestComposeAdvance(t *testing.T) {
	ev := store.Event{
		Title:       "Go Meetup",
		Description: "Talks and pizza.",
		Date:        mustParseDate(t, "2026-09-22"),
		Time:        "7:00 PM",
		Location:    "Room 101",
	}
	got := ComposeAdvance(ev, 7)
	for _, want := range []string{
		"📅 **Upcoming Event**",
		"**Go Meetup** is coming up in 7 days!",
		"Talks and pizza.",
		"📅 **Date:** Tuesday, September 22, 2026",
		"🕐 **Time:** 7:00 PM",
		"📍 **Location:** Room 101",
		"Mark your calendars! 📝",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("advance card missing %q:\n%s", want, got)
		}
	}

	if one := ComposeAdvance(ev, 1); !strings.Contains(one, "in 1 day!") {
		t.Errorf("singular day form missing:\n%s", one)
	}
}

func mustParseDate(t *testing.T, s string) store.Date {
	t.Helper()
	d, err := store.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
