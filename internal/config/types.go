package config

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Store    StoreConfig    `json:"store"`
	Announce AnnounceConfig `json:"announce"`
	Sheets   *SheetsConfig  `json:"sheets,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// AnnounceChatID is the chat all announcements and reminders go to.
	AnnounceChatID int64 `json:"announce_chat_id"`
	// AdminUserIDs may manage events and trigger manual announcement runs.
	AdminUserIDs []int64 `json:"admin_user_ids"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// StoreConfig selects and configures the event store backend.
//
// Driver values:
//   - "file": JSON document store plus an images directory
//   - "sqlite": SQLite database file
//   - "postgres": PostgreSQL via DSN
type StoreConfig struct {
	Driver    string `json:"driver"`
	Path      string `json:"path,omitempty"`
	DSN       string `json:"dsn,omitempty"`
	ImagesDir string `json:"images_dir,omitempty"`
	// BusyTimeout is a Go duration string (sqlite only).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// AnnounceConfig controls the announcement scheduler.
//
// All duration fields are Go duration strings.
type AnnounceConfig struct {
	// HorizonDays is how many days before an event the advance notice goes
	// out. A pointer so an omitted field defaults to 7; configured values
	// must be >= 1.
	HorizonDays *int `json:"horizon_days,omitempty"`
	// AdvanceAt is the local wall-clock time ("HH:MM") of the daily advance
	// check. Default "09:00".
	AdvanceAt string `json:"advance_at,omitempty"`
	// ReminderLead is how long before the event start the same-day reminder
	// fires. Default "3h".
	ReminderLead string `json:"reminder_lead,omitempty"`
	// ReminderEvery is the reminder check cadence; it also bounds the
	// scheduled reminder window. Default "15m".
	ReminderEvery string `json:"reminder_every,omitempty"`
	// Timezone is the IANA zone all "today" and time-of-day comparisons use.
	Timezone string `json:"timezone,omitempty"`

	CatchUp CatchUpConfig `json:"catchup"`
}

// CatchUpConfig controls recovery of sends missed during downtime.
//
// Enabled is a pointer so an omitted field defaults to true.
type CatchUpConfig struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Every   string `json:"every,omitempty"` // default "1h"
	// LateTolerance is how long past an event's start a missed reminder may
	// still be recovered. Default "1h".
	LateTolerance string `json:"late_tolerance,omitempty"`
}

// SheetsConfig configures the read-only Google Sheets import source.
type SheetsConfig struct {
	Enabled             bool   `json:"enabled"`
	SpreadsheetID       string `json:"spreadsheet_id"`
	ServiceAccountEmail string `json:"service_account_email"`
	// PrivateKeyPath points at the service account's PEM key file.
	PrivateKeyPath string `json:"private_key_path"`
	// Range defaults to "A2:E100" (row 1 is headers).
	Range string `json:"range,omitempty"`
}
