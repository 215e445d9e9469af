package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	logx "herald/pkg/logx"
)

// fileStore is a dependency-free persistence backend: one JSON document
// holding every event, plus an images directory for photo blobs.
//
// The document is rewritten atomically (tmp + rename) on every mutation;
// the in-memory copy is the source of truth between rewrites.
type fileStore struct {
	log logx.Logger

	mu        sync.Mutex
	path      string
	imagesDir string
	events    []Event
}

type fileDocument struct {
	Events []Event `json:"events"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("store.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	imagesDir := strings.TrimSpace(cfg.ImagesDir)
	if imagesDir == "" {
		imagesDir = filepath.Join(filepath.Dir(path), "images")
	}

	s := &fileStore{log: log, path: path, imagesDir: imagesDir}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileStore) load() error {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.events = nil
		return nil
	}
	if err != nil {
		return err
	}
	var doc fileDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	s.events = doc.Events
	return nil
}

// persist rewrites the whole document. Callers hold s.mu.
func (s *fileStore) persist() error {
	b, err := json.MarshalIndent(fileDocument{Events: s.events}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (s *fileStore) indexOf(id string) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) List(ctx context.Context) ([]Event, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *fileStore) ByDate(ctx context.Context, d Date) ([]Event, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Date.Equal(d) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *fileStore) Get(ctx context.Context, id string) (Event, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.events[i], nil
	}
	return Event{}, ErrNotFound
}

func (s *fileStore) Create(ctx context.Context, ev Event) (Event, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Announcement == "" {
		ev.Announcement = Pending
	}
	if ev.Reminder == "" {
		ev.Reminder = Pending
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	s.events = append(s.events, ev)
	if err := s.persist(); err != nil {
		s.events = s.events[:len(s.events)-1]
		return Event{}, err
	}
	return ev, nil
}

func (s *fileStore) Update(ctx context.Context, id string, up Update) (Event, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Event{}, ErrNotFound
	}
	if up.isEmpty() {
		return s.events[i], nil
	}
	prev := s.events[i]
	up.apply(&s.events[i])
	if err := s.persist(); err != nil {
		s.events[i] = prev
		return Event{}, err
	}
	return s.events[i], nil
}

func (s *fileStore) Delete(ctx context.Context, id string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	removed := s.events[i]
	s.events = append(s.events[:i], s.events[i+1:]...)
	if err := s.persist(); err != nil {
		return err
	}
	if err := removeImage(removed.ImagePath); err != nil {
		s.log.Warn("image cleanup failed",
			logx.String("event_id", id), logx.Err(err))
	}
	return nil
}

func (s *fileStore) MarkAnnouncementSent(ctx context.Context, id string) error {
	return s.mark(ctx, id, func(ev *Event) { ev.Announcement = Sent })
}

func (s *fileStore) MarkReminderSent(ctx context.Context, id string) error {
	return s.mark(ctx, id, func(ev *Event) { ev.Reminder = Sent })
}

func (s *fileStore) mark(ctx context.Context, id string, set func(*Event)) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	prev := s.events[i]
	set(&s.events[i])
	if s.events[i] == prev {
		return nil // already sent
	}
	if err := s.persist(); err != nil {
		s.events[i] = prev
		return err
	}
	return nil
}

func (s *fileStore) SaveImage(ctx context.Context, id string, data []byte, ext string) (string, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return "", ErrNotFound
	}
	path, err := writeImage(s.imagesDir, id, data, ext)
	if err != nil {
		return "", err
	}
	prev := s.events[i].ImagePath
	s.events[i].ImagePath = path
	if err := s.persist(); err != nil {
		s.events[i].ImagePath = prev
		return "", err
	}
	return path, nil
}
