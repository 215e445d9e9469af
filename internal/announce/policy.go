package announce

import (
	"sort"
	"time"

	"herald/internal/store"
	"herald/internal/timeofday"
)

// Kind is the notification kind an event is due for.
type Kind int

const (
	KindAdvance Kind = iota
	KindReminder
)

func (k Kind) String() string {
	if k == KindReminder {
		return "reminder"
	}
	return "advance"
}

// Mode selects the policy's evaluation window.
type Mode int

const (
	// ModeScheduled uses the tight windows of the regular ticks.
	ModeScheduled Mode = iota
	// ModeCatchUp uses the wide windows that recover sends missed during
	// downtime.
	ModeCatchUp
)

// Due is one pending notification.
type Due struct {
	Event store.Event
	Kind  Kind
}

type PolicyConfig struct {
	// HorizonDays is how many days ahead the advance notice goes out.
	HorizonDays int
	// AdvanceHour/AdvanceMinute is the local wall-clock time of the daily
	// advance check; catch-up never announces before it. Midnight is a
	// valid cutoff; the config layer owns the 09:00 default.
	AdvanceHour   int
	AdvanceMinute int
	// Lead is how long before the event start the reminder fires.
	Lead time.Duration
	// Granularity bounds the scheduled reminder window; it should match the
	// reminder tick cadence.
	Granularity time.Duration
	// LateTolerance is how long past the event start a missed reminder may
	// still be recovered.
	LateTolerance time.Duration
	Location      *time.Location
}

func (c PolicyConfig) withDefaults() PolicyConfig {
	if c.HorizonDays == 0 {
		c.HorizonDays = 7
	}
	if c.Lead <= 0 {
		c.Lead = 3 * time.Hour
	}
	if c.Granularity <= 0 {
		c.Granularity = 15 * time.Minute
	}
	if c.LateTolerance <= 0 {
		c.LateTolerance = time.Hour
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}

// Policy decides which notifications are due at a given instant. It has no
// side effects and never touches sent flags; marking is the driver's job.
type Policy struct {
	cfg PolicyConfig
}

func NewPolicy(cfg PolicyConfig) Policy {
	return Policy{cfg: cfg.withDefaults()}
}

// Due returns the notifications due at now, ordered by ascending event date
// (same-date events keep their input order). Events whose time cannot be
// parsed are never reminder-due; that is the caller's to log, not an error.
func (p Policy) Due(now time.Time, events []store.Event, mode Mode) []Due {
	now = now.In(p.cfg.Location)
	today := store.DateOf(now)

	var out []Due
	for _, ev := range events {
		if p.advanceDue(now, today, ev, mode) {
			out = append(out, Due{Event: ev, Kind: KindAdvance})
		}
		if p.reminderDue(now, today, ev, mode) {
			out = append(out, Due{Event: ev, Kind: KindReminder})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Event.Date.Before(out[j].Event.Date)
	})
	return out
}

func (p Policy) advanceDue(now time.Time, today store.Date, ev store.Event, mode Mode) bool {
	if ev.Announcement != store.Pending {
		return false
	}
	if !ev.Date.After(today) {
		return false
	}

	switch mode {
	case ModeScheduled:
		return ev.Date.Equal(today.AddDays(p.cfg.HorizonDays))
	case ModeCatchUp:
		cutoff := today.At(p.cfg.AdvanceHour, p.cfg.AdvanceMinute, p.cfg.Location)
		if now.Before(cutoff) {
			return false
		}
		return today.DaysUntil(ev.Date) <= p.cfg.HorizonDays
	}
	return false
}

func (p Policy) reminderDue(now time.Time, today store.Date, ev store.Event, mode Mode) bool {
	if ev.Reminder != store.Pending {
		return false
	}
	// Catch-up also considers yesterday's date so an event starting just
	// before midnight can still be recovered within the late tolerance.
	if !ev.Date.Equal(today) {
		if mode != ModeCatchUp || !ev.Date.Equal(today.AddDays(-1)) {
			return false
		}
	}
	tod, ok := timeofday.Parse(ev.Time)
	if !ok {
		return false
	}
	start := ev.Date.At(tod.Hour, tod.Minute, p.cfg.Location)

	switch mode {
	case ModeScheduled:
		// (start - lead - gran, start - lead + gran]
		lo := start.Add(-p.cfg.Lead - p.cfg.Granularity)
		hi := start.Add(-p.cfg.Lead + p.cfg.Granularity)
		return now.After(lo) && !now.After(hi)
	case ModeCatchUp:
		// (start - lead, start + lateTolerance]
		lo := start.Add(-p.cfg.Lead)
		hi := start.Add(p.cfg.LateTolerance)
		return now.After(lo) && !now.After(hi)
	}
	return false
}
