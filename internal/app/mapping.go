package app

import (
	"fmt"
	"time"

	"herald/internal/announce"
	"herald/internal/bot"
	"herald/internal/config"
	"herald/internal/store"
	logx "herald/pkg/logx"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	lc := cfg.Logging
	return logx.Config{
		Level:   lc.Level,
		Console: lc.Console,
		File: logx.FileConfig{
			Enabled: lc.File.Enabled,
			Path:    lc.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    lc.Telegram.Enabled,
			MinLevel:   lc.Telegram.MinLevel,
			RatePerSec: lc.Telegram.RatePerSec,
		},
	}
}

func mapStoreConfig(cfg *config.Config) (store.Config, error) {
	sc := cfg.Store
	busy, err := config.ParseDurationOrDefault("store.busy_timeout", sc.BusyTimeout, 0)
	if err != nil {
		return store.Config{}, err
	}
	return store.Config{
		Driver:      sc.Driver,
		Path:        sc.Path,
		DSN:         sc.DSN,
		ImagesDir:   sc.ImagesDir,
		BusyTimeout: busy,
	}, nil
}

func mapDriverConfig(cfg *config.Config) (announce.DriverConfig, error) {
	ac := cfg.Announce

	// Defaults live here, where an omitted field is distinguishable from a
	// configured zero ("00:00" is a valid advance time).
	hour, minute := 9, 0
	var err error
	if ac.AdvanceAt != "" {
		hour, minute, err = config.ParseHHMM("announce.advance_at", ac.AdvanceAt)
		if err != nil {
			return announce.DriverConfig{}, err
		}
	}
	horizon := 7
	if ac.HorizonDays != nil {
		horizon = *ac.HorizonDays
	}
	lead, err := config.ParseDurationOrDefault("announce.reminder_lead", ac.ReminderLead, 3*time.Hour)
	if err != nil {
		return announce.DriverConfig{}, err
	}
	every, err := config.ParseDurationOrDefault("announce.reminder_every", ac.ReminderEvery, 15*time.Minute)
	if err != nil {
		return announce.DriverConfig{}, err
	}
	catchEvery, err := config.ParseDurationOrDefault("announce.catchup.every", ac.CatchUp.Every, time.Hour)
	if err != nil {
		return announce.DriverConfig{}, err
	}
	late, err := config.ParseDurationOrDefault("announce.catchup.late_tolerance", ac.CatchUp.LateTolerance, time.Hour)
	if err != nil {
		return announce.DriverConfig{}, err
	}

	loc := time.Local
	if ac.Timezone != "" {
		loc, err = time.LoadLocation(ac.Timezone)
		if err != nil {
			return announce.DriverConfig{}, fmt.Errorf("announce.timezone: %w", err)
		}
	}

	catchEnabled := true
	if ac.CatchUp.Enabled != nil {
		catchEnabled = *ac.CatchUp.Enabled
	}

	return announce.DriverConfig{
		Policy: announce.PolicyConfig{
			HorizonDays:   horizon,
			AdvanceHour:   hour,
			AdvanceMinute: minute,
			Lead:          lead,
			Granularity:   every,
			LateTolerance: late,
			Location:      loc,
		},
		ReminderEvery:  every,
		CatchUpEnabled: catchEnabled,
		CatchUpEvery:   catchEvery,
	}, nil
}

func mapBotConfig(cfg *config.Config, loc *time.Location) bot.Config {
	return bot.Config{
		AdminUserIDs:     cfg.Telegram.AdminUserIDs,
		Timezone:         loc,
		SelectionTimeout: bot.DefaultSelectionTimeout,
	}
}
