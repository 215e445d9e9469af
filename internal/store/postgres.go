package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	logx "herald/pkg/logx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS events (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    speaker      TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    location     TEXT NOT NULL DEFAULT '',
    date         TEXT NOT NULL,
    time_text    TEXT NOT NULL DEFAULT '',
    image_path   TEXT NOT NULL DEFAULT '',
    announcement TEXT NOT NULL DEFAULT 'pending',
    reminder     TEXT NOT NULL DEFAULT 'pending',
    source       TEXT NOT NULL DEFAULT 'manual',
    row_number   INTEGER NOT NULL DEFAULT 0,
    created_by   BIGINT NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
`

type postgresStore struct {
	db        *sqlx.DB
	log       logx.Logger
	imagesDir string
}

func openPostgres(cfg Config, log logx.Logger) (Store, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("store.dsn is required for postgres driver")
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &postgresStore{db: db, log: log, imagesDir: strings.TrimSpace(cfg.ImagesDir)}, nil
}

func (s *postgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const pgColumns = `id, title, speaker, description, location, date, time_text,
	image_path, announcement, reminder, source, row_number, created_by, created_at`

func (s *postgresStore) List(ctx context.Context) ([]Event, error) {
	var out []Event
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+pgColumns+` FROM events ORDER BY date ASC, created_at ASC`)
	return out, err
}

func (s *postgresStore) ByDate(ctx context.Context, d Date) ([]Event, error) {
	var out []Event
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+pgColumns+` FROM events WHERE date = $1 ORDER BY created_at ASC`,
		d.String())
	return out, err
}

func (s *postgresStore) Get(ctx context.Context, id string) (Event, error) {
	var ev Event
	err := s.db.GetContext(ctx, &ev,
		`SELECT `+pgColumns+` FROM events WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return ev, err
}

func (s *postgresStore) Create(ctx context.Context, ev Event) (Event, error) {
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

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO events (id, title, speaker, description, location, date,
		 time_text, image_path, announcement, reminder, source, row_number,
		 created_by, created_at)
		 VALUES (:id, :title, :speaker, :description, :location, :date,
		 :time_text, :image_path, :announcement, :reminder, :source,
		 :row_number, :created_by, :created_at)`, ev)
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (s *postgresStore) Update(ctx context.Context, id string, up Update) (Event, error) {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if up.isEmpty() {
		return ev, nil
	}
	up.apply(&ev)

	_, err = s.db.ExecContext(ctx,
		`UPDATE events SET title=$1, speaker=$2, description=$3, location=$4,
		 date=$5, time_text=$6, row_number=$7 WHERE id=$8`,
		ev.Title, ev.Speaker, ev.Description, ev.Location,
		ev.Date.String(), ev.Time, ev.RowNumber, id,
	)
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (s *postgresStore) Delete(ctx context.Context, id string) error {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id=$1`, id); err != nil {
		return err
	}
	if err := removeImage(ev.ImagePath); err != nil {
		s.log.Warn("image cleanup failed",
			logx.String("event_id", id), logx.Err(err))
	}
	return nil
}

func (s *postgresStore) MarkAnnouncementSent(ctx context.Context, id string) error {
	return s.mark(ctx, `UPDATE events SET announcement=$1 WHERE id=$2`, id)
}

func (s *postgresStore) MarkReminderSent(ctx context.Context, id string) error {
	return s.mark(ctx, `UPDATE events SET reminder=$1 WHERE id=$2`, id)
}

func (s *postgresStore) mark(ctx context.Context, q, id string) error {
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

func (s *postgresStore) SaveImage(ctx context.Context, id string, data []byte, ext string) (string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	path, err := writeImage(s.imagesDir, id, data, ext)
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE events SET image_path=$1 WHERE id=$2`, path, id); err != nil {
		return "", err
	}
	return path, nil
}
