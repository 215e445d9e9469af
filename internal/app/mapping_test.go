package app

import (
	"testing"
	"time"

	"herald/internal/config"
)

func TestMapDriverConfigDefaults(t *testing.T) {
	cfg := &config.Config{}
	dc, err := mapDriverConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if dc.Policy.HorizonDays != 7 {
		t.Errorf("horizon = %d, want 7", dc.Policy.HorizonDays)
	}
	if dc.Policy.AdvanceHour != 9 || dc.Policy.AdvanceMinute != 0 {
		t.Errorf("advance = %02d:%02d, want 09:00", dc.Policy.AdvanceHour, dc.Policy.AdvanceMinute)
	}
	if dc.Policy.Lead != 3*time.Hour || dc.Policy.Granularity != 15*time.Minute {
		t.Errorf("lead/granularity = %v/%v", dc.Policy.Lead, dc.Policy.Granularity)
	}
	if !dc.CatchUpEnabled || dc.CatchUpEvery != time.Hour {
		t.Errorf("catchup = %v every %v", dc.CatchUpEnabled, dc.CatchUpEvery)
	}
}

func TestMapDriverConfigKeepsConfiguredZeros(t *testing.T) {
	one := 1
	cfg := &config.Config{}
	cfg.Announce.AdvanceAt = "00:00"
	cfg.Announce.HorizonDays = &one

	dc, err := mapDriverConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if dc.Policy.AdvanceHour != 0 || dc.Policy.AdvanceMinute != 0 {
		t.Errorf("advance = %02d:%02d, want 00:00", dc.Policy.AdvanceHour, dc.Policy.AdvanceMinute)
	}
	if dc.Policy.HorizonDays != 1 {
		t.Errorf("horizon = %d, want 1", dc.Policy.HorizonDays)
	}
}

func TestMapDriverConfigRejectsBadFields(t *testing.T) {
	cfg := &config.Config{}
	cfg.Announce.AdvanceAt = "9am"
	if _, err := mapDriverConfig(cfg); err == nil {
		t.Error("expected advance_at error")
	}

	cfg = &config.Config{}
	cfg.Announce.Timezone = "Mars/Olympus"
	if _, err := mapDriverConfig(cfg); err == nil {
		t.Error("expected timezone error")
	}
}
