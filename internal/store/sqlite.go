package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	logx "herald/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db        *sql.DB
	log       logx.Logger
	imagesDir string
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("store.path is required for sqlite driver")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	imagesDir := strings.TrimSpace(cfg.ImagesDir)
	if imagesDir == "" {
		imagesDir = filepath.Join(filepath.Dir(path), "images")
	}

	s := &sqliteStore{db: db, log: log, imagesDir: imagesDir}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const sqliteColumns = `id, title, speaker, description, location, date, time_text,
	image_path, announcement, reminder, source, row_number, created_by, created_at`

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var ev Event
	var createdAt string
	err := row.Scan(&ev.ID, &ev.Title, &ev.Speaker, &ev.Description, &ev.Location,
		&ev.Date, &ev.Time, &ev.ImagePath, &ev.Announcement, &ev.Reminder,
		&ev.Source, &ev.RowNumber, &ev.CreatedBy, &createdAt)
	if err != nil {
		return Event{}, err
	}
	if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
		ev.CreatedAt = t
	}
	return ev, nil
}

func (s *sqliteStore) query(ctx context.Context, where string, args ...any) ([]Event, error) {
	q := `SELECT ` + sqliteColumns + ` FROM events ` + where
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *sqliteStore) List(ctx context.Context) ([]Event, error) {
	return s.query(ctx, `ORDER BY date ASC, created_at ASC`)
}

func (s *sqliteStore) ByDate(ctx context.Context, d Date) ([]Event, error) {
	return s.query(ctx, `WHERE date = ? ORDER BY created_at ASC`, d.String())
}

func (s *sqliteStore) Get(ctx context.Context, id string) (Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return ev, err
}

func (s *sqliteStore) Create(ctx context.Context, ev Event) (Event, error) {
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events(`+sqliteColumns+`)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		ev.ID, ev.Title, ev.Speaker, ev.Description, ev.Location, ev.Date.String(),
		ev.Time, ev.ImagePath, ev.Announcement, ev.Reminder, ev.Source,
		ev.RowNumber, ev.CreatedBy, ev.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (s *sqliteStore) Update(ctx context.Context, id string, up Update) (Event, error) {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if up.isEmpty() {
		return ev, nil
	}
	up.apply(&ev)

	_, err = s.db.ExecContext(ctx,
		`UPDATE events SET title=?, speaker=?, description=?, location=?,
		 date=?, time_text=?, row_number=? WHERE id=?`,
		ev.Title, ev.Speaker, ev.Description, ev.Location,
		ev.Date.String(), ev.Time, ev.RowNumber, id,
	)
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id=?`, id); err != nil {
		return err
	}
	if err := removeImage(ev.ImagePath); err != nil {
		s.log.Warn("image cleanup failed",
			logx.String("event_id", id), logx.Err(err))
	}
	return nil
}

func (s *sqliteStore) MarkAnnouncementSent(ctx context.Context, id string) error {
	return s.mark(ctx, `UPDATE events SET announcement=? WHERE id=?`, id)
}

func (s *sqliteStore) MarkReminderSent(ctx context.Context, id string) error {
	return s.mark(ctx, `UPDATE events SET reminder=? WHERE id=?`, id)
}

func (s *sqliteStore) mark(ctx context.Context, q, id string) error {
	res, err := s.db.ExecContext(ctx, q, Sent, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) SaveImage(ctx context.Context, id string, data []byte, ext string) (string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	path, err := writeImage(s.imagesDir, id, data, ext)
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE events SET image_path=? WHERE id=?`, path, id); err != nil {
		return "", err
	}
	return path, nil
}
