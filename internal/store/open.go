package store

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "herald/pkg/logx"
)

// Config configures the event store.
//
// Driver values:
//   - "file": JSON document plus an images directory
//   - "sqlite": SQLite database file
//   - "postgres": PostgreSQL via DSN
//
// An empty Driver means "file".
type Config struct {
	Driver      string
	Path        string
	DSN         string
	ImagesDir   string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the persistence API for calendar events.
//
// List returns events ordered by ascending date, then insertion order.
// Single-writer semantics; reads observe completed writes.
type Store interface {
	List(ctx context.Context) ([]Event, error)
	ByDate(ctx context.Context, d Date) ([]Event, error)
	Get(ctx context.Context, id string) (Event, error)
	Create(ctx context.Context, ev Event) (Event, error)
	Update(ctx context.Context, id string, up Update) (Event, error)
	Delete(ctx context.Context, id string) error

	// MarkAnnouncementSent and MarkReminderSent are idempotent and only ever
	// move a flag from pending to sent.
	MarkAnnouncementSent(ctx context.Context, id string) error
	MarkReminderSent(ctx context.Context, id string) error

	// SaveImage stores the blob and records its path on the event.
	SaveImage(ctx context.Context, id string, data []byte, ext string) (string, error)

	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "postgres", "postgresql":
		return openPostgres(cfg, log)
	default:
		return nil, errors.New("unknown store driver: " + driver)
	}
}
