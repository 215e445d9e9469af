package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks the parts of the config that would otherwise fail deep in a
// subsystem at an awkward time (mid-reload, first cron tick).
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token: required")
	}
	if cfg.Telegram.AnnounceChatID == 0 {
		return fmt.Errorf("telegram.announce_chat_id: required")
	}
	if _, err := ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout); err != nil {
		return err
	}

	switch cfg.Store.Driver {
	case "", "file":
		if cfg.Store.Driver == "file" && strings.TrimSpace(cfg.Store.Path) == "" {
			return fmt.Errorf("store.path: required for the file driver")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.Store.Path) == "" {
			return fmt.Errorf("store.path: required for the sqlite driver")
		}
		if _, err := ParseDurationField("store.busy_timeout", cfg.Store.BusyTimeout); err != nil {
			return err
		}
	case "postgres":
		if strings.TrimSpace(cfg.Store.DSN) == "" {
			return fmt.Errorf("store.dsn: required for the postgres driver")
		}
	default:
		return fmt.Errorf("store.driver: unknown driver %q", cfg.Store.Driver)
	}

	a := cfg.Announce
	if a.HorizonDays != nil && *a.HorizonDays < 1 {
		return fmt.Errorf("announce.horizon_days: must be >= 1")
	}
	if a.AdvanceAt != "" {
		if _, _, err := ParseHHMM("announce.advance_at", a.AdvanceAt); err != nil {
			return err
		}
	}
	for _, f := range []struct{ path, raw string }{
		{"announce.reminder_lead", a.ReminderLead},
		{"announce.reminder_every", a.ReminderEvery},
		{"announce.catchup.every", a.CatchUp.Every},
		{"announce.catchup.late_tolerance", a.CatchUp.LateTolerance},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}
	if a.Timezone != "" {
		if _, err := time.LoadLocation(a.Timezone); err != nil {
			return fmt.Errorf("announce.timezone: %w", err)
		}
	}

	if s := cfg.Sheets; s != nil && s.Enabled {
		if strings.TrimSpace(s.SpreadsheetID) == "" {
			return fmt.Errorf("sheets.spreadsheet_id: required when sheets is enabled")
		}
		if strings.TrimSpace(s.ServiceAccountEmail) == "" {
			return fmt.Errorf("sheets.service_account_email: required when sheets is enabled")
		}
		if strings.TrimSpace(s.PrivateKeyPath) == "" {
			return fmt.Errorf("sheets.private_key_path: required when sheets is enabled")
		}
	}
	return nil
}
