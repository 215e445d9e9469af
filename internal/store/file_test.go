package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	logx "herald/pkg/logx"
)

func newFileStore(t *testing.T) Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(Config{
		Driver:    "file",
		Path:      filepath.Join(dir, "events.json"),
		ImagesDir: filepath.Join(dir, "images"),
	}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestFileStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	ev, err := s.Create(ctx, Event{
		Title:    "Go Meetup",
		Date:     mustDate(t, "2026-09-22"),
		Time:     "7:00 PM",
		Location: "Room 101",
		Source:   SourceManual,
	})
	if err != nil {
		t.Fatal(err)
	}
	if ev.ID == "" {
		t.Fatal("Create should assign an id")
	}
	if ev.Announcement != Pending || ev.Reminder != Pending {
		t.Errorf("new event flags = %s/%s", ev.Announcement, ev.Reminder)
	}

	got, err := s.Get(ctx, ev.ID)
	if err != nil || got.Title != "Go Meetup" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	title := "Go Meetup (moved)"
	loc := "Room 202"
	up, err := s.Update(ctx, ev.ID, Update{Title: &title, Location: &loc})
	if err != nil {
		t.Fatal(err)
	}
	if up.Title != title || up.Location != loc || up.Time != "7:00 PM" {
		t.Errorf("Update result = %+v", up)
	}

	if err := s.Delete(ctx, ev.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, ev.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
	if err := s.Delete(ctx, ev.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete = %v", err)
	}
}

func TestFileStoreListOrderedByDate(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	for _, d := range []string{"2026-10-01", "2026-09-20", "2026-09-25"} {
		if _, err := s.Create(ctx, Event{Title: d, Date: mustDate(t, d)}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2026-09-20", "2026-09-25", "2026-10-01"}
	if len(list) != len(want) {
		t.Fatalf("len = %d", len(list))
	}
	for i, w := range want {
		if list[i].Date.String() != w {
			t.Errorf("list[%d] = %s, want %s", i, list[i].Date, w)
		}
	}

	byDate, err := s.ByDate(ctx, mustDate(t, "2026-09-25"))
	if err != nil || len(byDate) != 1 || byDate[0].Title != "2026-09-25" {
		t.Errorf("ByDate = %+v, %v", byDate, err)
	}
}

func TestFileStoreMarkIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	ev, err := s.Create(ctx, Event{Title: "x", Date: mustDate(t, "2026-09-22")})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := s.MarkAnnouncementSent(ctx, ev.ID); err != nil {
			t.Fatalf("mark #%d: %v", i, err)
		}
	}
	got, _ := s.Get(ctx, ev.ID)
	if got.Announcement != Sent {
		t.Errorf("announcement = %s", got.Announcement)
	}
	if got.Reminder != Pending {
		t.Errorf("reminder should be untouched, got %s", got.Reminder)
	}

	if err := s.MarkReminderSent(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("mark unknown id = %v", err)
	}
}

func TestFileStoreUpdateCannotTouchSentFlags(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	ev, _ := s.Create(ctx, Event{Title: "x", Date: mustDate(t, "2026-09-22")})
	if err := s.MarkAnnouncementSent(ctx, ev.ID); err != nil {
		t.Fatal(err)
	}

	title := "y"
	up, err := s.Update(ctx, ev.ID, Update{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if up.Announcement != Sent {
		t.Errorf("update reset the sent flag: %s", up.Announcement)
	}
}

func TestFileStoreImageLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	ev, _ := s.Create(ctx, Event{Title: "x", Date: mustDate(t, "2026-09-22")})
	path, err := s.SaveImage(ctx, ev.ID, []byte("fake-jpeg"), "jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("image not on disk: %v", err)
	}
	got, _ := s.Get(ctx, ev.ID)
	if got.ImagePath != path {
		t.Errorf("ImagePath = %q, want %q", got.ImagePath, path)
	}

	if err := s.Delete(ctx, ev.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("image should be removed with the event, stat = %v", err)
	}
}

func TestFileStoreReloadsFromDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := Config{Driver: "file", Path: filepath.Join(dir, "events.json")}

	s1, err := Open(cfg, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ev, err := s1.Create(ctx, Event{Title: "persisted", Date: mustDate(t, "2026-09-22")})
	if err != nil {
		t.Fatal(err)
	}
	_ = s1.Close()

	s2, err := Open(cfg, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.Get(ctx, ev.ID)
	if err != nil || got.Title != "persisted" {
		t.Fatalf("reopen Get = %+v, %v", got, err)
	}
}
