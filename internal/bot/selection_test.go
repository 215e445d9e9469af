package bot

import (
	"testing"
	"time"

	"herald/internal/announce"
	"herald/internal/store"
)

func dueItem(id string, kind announce.Kind) announce.Due {
	return announce.Due{Event: store.Event{ID: id, Title: "t-" + id}, Kind: kind}
}

func TestSelectionToggleAndConfirm(t *testing.T) {
	items := []announce.Due{
		dueItem("a", announce.KindAdvance),
		dueItem("b", announce.KindReminder),
		dueItem("c", announce.KindAdvance),
	}
	s := NewSelection(items, time.Minute, nil)

	// Everything starts selected.
	for _, it := range items {
		if !s.Chosen(key(it)) {
			t.Errorf("%s should start selected", key(it))
		}
	}

	if sel, ok := s.Toggle(key(items[1])); !ok || sel {
		t.Errorf("toggle off = %v, %v", sel, ok)
	}

	out, ok := s.Confirm()
	if !ok || out.TimedOut {
		t.Fatalf("Confirm = %+v, %v", out, ok)
	}
	if len(out.Selected) != 2 || out.Selected[0].Event.ID != "a" || out.Selected[1].Event.ID != "c" {
		t.Errorf("selected = %+v", out.Selected)
	}

	// Session is resolved; further interaction is rejected.
	if _, ok := s.Toggle(key(items[0])); ok {
		t.Error("toggle after confirm accepted")
	}
	if _, ok := s.Confirm(); ok {
		t.Error("double confirm accepted")
	}
}

func TestSelectionCancel(t *testing.T) {
	s := NewSelection([]announce.Due{dueItem("a", announce.KindAdvance)}, time.Minute, nil)
	if !s.Cancel() {
		t.Fatal("cancel rejected")
	}
	if _, ok := s.Confirm(); ok {
		t.Error("confirm after cancel accepted")
	}
}

func TestSelectionTimeout(t *testing.T) {
	fired := make(chan struct{})
	s := NewSelection([]announce.Due{dueItem("a", announce.KindAdvance)},
		10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timeout callback never fired")
	}
	if _, ok := s.Confirm(); ok {
		t.Error("confirm after timeout accepted")
	}
	if s.Cancel() {
		t.Error("cancel after timeout accepted")
	}
}

func TestSelectionDistinguishesKindsForSameEvent(t *testing.T) {
	items := []announce.Due{
		dueItem("a", announce.KindAdvance),
		dueItem("a", announce.KindReminder),
	}
	s := NewSelection(items, time.Minute, nil)

	if _, ok := s.Toggle(key(items[0])); !ok {
		t.Fatal("toggle advance entry rejected")
	}
	out, _ := s.Confirm()
	if len(out.Selected) != 1 || out.Selected[0].Kind != announce.KindReminder {
		t.Errorf("selected = %+v", out.Selected)
	}
}

func TestSelectorReplacesLiveSession(t *testing.T) {
	m := newSelector()
	s1 := NewSelection([]announce.Due{dueItem("a", announce.KindAdvance)}, time.Minute, nil)
	s2 := NewSelection([]announce.Due{dueItem("b", announce.KindAdvance)}, time.Minute, nil)

	m.put(7, s1)
	m.put(7, s2)
	if m.get(7) != s2 {
		t.Fatal("newest session should win")
	}
	// The replaced session was cancelled.
	if _, ok := s1.Confirm(); ok {
		t.Error("replaced session still confirmable")
	}

	m.drop(7, s2)
	if m.get(7) != nil {
		t.Error("drop left the session behind")
	}
}
