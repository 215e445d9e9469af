package bot

import (
	"sync"
	"time"

	"herald/internal/announce"
)

// DefaultSelectionTimeout is how long a manual announce keyboard stays live.
const DefaultSelectionTimeout = 60 * time.Second

// Outcome is the result of one selection session.
type Outcome struct {
	Selected []announce.Due
	TimedOut bool
}

// Selection is one live "pick events to announce" session. All items start
// selected; toggles flip individual events; Confirm or Cancel resolves it,
// and an unattended session resolves as timed out.
type Selection struct {
	mu      sync.Mutex
	items   []announce.Due
	chosen  map[string]bool
	timer   *time.Timer
	done    bool
	expired func()
}

func NewSelection(items []announce.Due, timeout time.Duration, onTimeout func()) *Selection {
	if timeout <= 0 {
		timeout = DefaultSelectionTimeout
	}
	s := &Selection{
		items:   items,
		chosen:  make(map[string]bool, len(items)),
		expired: onTimeout,
	}
	for _, it := range items {
		s.chosen[key(it)] = true
	}
	s.timer = time.AfterFunc(timeout, s.timeout)
	return s
}

// key separates the advance and reminder entry of the same event.
func key(d announce.Due) string { return d.Kind.String() + ":" + d.Event.ID }

func (s *Selection) timeout() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	cb := s.expired
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Toggle flips one item and reports its new state. A resolved session
// ignores toggles.
func (s *Selection) Toggle(k string) (selected, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false, false
	}
	if _, exists := s.chosen[k]; !exists {
		return false, false
	}
	s.chosen[k] = !s.chosen[k]
	return s.chosen[k], true
}

func (s *Selection) Chosen(k string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chosen[k]
}

func (s *Selection) Items() []announce.Due {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]announce.Due, len(s.items))
	copy(out, s.items)
	return out
}

// Confirm resolves the session and returns the selected subset in the
// original order. ok is false when the session already resolved.
func (s *Selection) Confirm() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return Outcome{}, false
	}
	s.done = true
	s.timer.Stop()

	var sel []announce.Due
	for _, it := range s.items {
		if s.chosen[key(it)] {
			sel = append(sel, it)
		}
	}
	return Outcome{Selected: sel}, true
}

// Cancel resolves the session with nothing selected.
func (s *Selection) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.done = true
	s.timer.Stop()
	return true
}

// selector tracks one live selection per chat.
type selector struct {
	mu     sync.Mutex
	byChat map[int64]*Selection
}

func newSelector() *selector {
	return &selector{byChat: make(map[int64]*Selection)}
}

// put replaces the chat's live session; any previous one is cancelled.
func (m *selector) put(chatID int64, s *Selection) {
	m.mu.Lock()
	prev := m.byChat[chatID]
	m.byChat[chatID] = s
	m.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}
}

func (m *selector) get(chatID int64) *Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byChat[chatID]
}

func (m *selector) drop(chatID int64, s *Selection) {
	m.mu.Lock()
	if m.byChat[chatID] == s {
		delete(m.byChat, chatID)
	}
	m.mu.Unlock()
}
