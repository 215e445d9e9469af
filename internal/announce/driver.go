package announce

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"herald/internal/store"
	logx "herald/pkg/logx"
)

// DriverConfig configures the scheduler.
type DriverConfig struct {
	Policy PolicyConfig

	// ReminderEvery is the reminder tick cadence. Default 15m; it should
	// match Policy.Granularity.
	ReminderEvery time.Duration
	// CatchUpEnabled turns the periodic catch-up tick on. Startup catch-up
	// runs regardless.
	CatchUpEnabled bool
	CatchUpEvery   time.Duration // default 1h
	// StartupDelay is how long after Start the one-shot catch-up runs.
	StartupDelay time.Duration // default 5s
}

func (c DriverConfig) withDefaults() DriverConfig {
	c.Policy = c.Policy.withDefaults()
	if c.ReminderEvery <= 0 {
		c.ReminderEvery = c.Policy.Granularity
	}
	if c.CatchUpEvery <= 0 {
		c.CatchUpEvery = time.Hour
	}
	if c.StartupDelay <= 0 {
		c.StartupDelay = 5 * time.Second
	}
	return c
}

// Driver runs the announcement schedule: a daily advance tick, a periodic
// reminder tick, a catch-up tick, and a one-shot catch-up shortly after
// start. All ticks serialize through one mutex, and a flag is marked sent
// only after the send succeeded; a failed send is retried by the next tick.
type Driver struct {
	store  store.Store
	sender Sender
	log    logx.Logger
	now    func() time.Time

	cfg DriverConfig

	mu     sync.Mutex // serializes ticks and policy swaps
	policy Policy

	cron    *cron.Cron
	startup *time.Timer
}

func NewDriver(st store.Store, sender Sender, cfg DriverConfig, log logx.Logger) *Driver {
	cfg = cfg.withDefaults()
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Driver{
		store:  st,
		sender: sender,
		log:    log,
		now:    time.Now,
		cfg:    cfg,
		policy: NewPolicy(cfg.Policy),
	}
}

// SetClock replaces the wall clock. Tests only.
func (d *Driver) SetClock(now func() time.Time) { d.now = now }

// ApplyPolicy swaps the evaluation policy on config reload. Tick cadences
// are fixed at Start; changing them needs a driver restart.
func (d *Driver) ApplyPolicy(cfg PolicyConfig) {
	d.mu.Lock()
	d.policy = NewPolicy(cfg.withDefaults())
	d.mu.Unlock()
}

func (d *Driver) Start(ctx context.Context) error {
	p := d.cfg.Policy
	c := cron.New(
		cron.WithLocation(p.Location),
		cron.WithParser(cron.NewParser(
			cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
	)

	daily := fmt.Sprintf("%d %d * * *", p.AdvanceMinute, p.AdvanceHour)
	if _, err := c.AddFunc(daily, func() {
		d.tick(ctx, ModeScheduled, KindAdvance)
	}); err != nil {
		return fmt.Errorf("advance schedule: %w", err)
	}

	if _, err := c.AddFunc("@every "+d.cfg.ReminderEvery.String(), func() {
		d.tick(ctx, ModeScheduled, KindReminder)
	}); err != nil {
		return fmt.Errorf("reminder schedule: %w", err)
	}

	if d.cfg.CatchUpEnabled {
		if _, err := c.AddFunc("@every "+d.cfg.CatchUpEvery.String(), func() {
			d.tick(ctx, ModeCatchUp, KindAdvance, KindReminder)
		}); err != nil {
			return fmt.Errorf("catch-up schedule: %w", err)
		}
	}

	// One-shot recovery after restart, once the transport has settled.
	d.startup = time.AfterFunc(d.cfg.StartupDelay, func() {
		if ctx.Err() != nil {
			return
		}
		d.tick(ctx, ModeCatchUp, KindAdvance, KindReminder)
	})

	d.cron = c
	c.Start()
	d.log.Info("announcement scheduler started",
		logx.String("advance_at", fmt.Sprintf("%02d:%02d", p.AdvanceHour, p.AdvanceMinute)),
		logx.Duration("reminder_every", d.cfg.ReminderEvery),
		logx.Bool("catchup", d.cfg.CatchUpEnabled))
	return nil
}

func (d *Driver) Stop() {
	if d.startup != nil {
		d.startup.Stop()
	}
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}
}

// DueNow evaluates the policy against the current store contents without
// sending anything. The manual announce flow uses it to build its list.
func (d *Driver) DueNow(ctx context.Context, mode Mode, kinds ...Kind) ([]Due, error) {
	events, err := d.store.List(ctx)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	pol := d.policy
	d.mu.Unlock()
	return filterKinds(pol.Due(d.now(), events, mode), kinds), nil
}

func (d *Driver) tick(ctx context.Context, mode Mode, kinds ...Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("tick panicked", logx.Any("panic", r))
		}
	}()

	events, err := d.store.List(ctx)
	if err != nil {
		d.log.Error("tick: listing events failed", logx.Err(err))
		return
	}
	due := filterKinds(d.policy.Due(d.now(), events, mode), kinds)
	if len(due) == 0 {
		return
	}
	sent, failed := d.dispatchLocked(ctx, due)
	d.log.Info("tick done",
		logx.String("mode", modeName(mode)),
		logx.Int("due", len(due)), logx.Int("sent", sent), logx.Int("failed", failed))
}

// Dispatch sends each due item and marks its flag on success. The manual
// announce flow shares this path with the automatic ticks.
func (d *Driver) Dispatch(ctx context.Context, items []Due) (sent, failed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dispatchLocked(ctx, items)
}

func (d *Driver) dispatchLocked(ctx context.Context, items []Due) (sent, failed int) {
	today := store.Today(d.cfg.Policy.Location, d.now())
	for _, it := range items {
		// The due list may be a stale snapshot (the manual flow keeps its
		// selection open for up to a minute). Re-read the flag here, under
		// the mutex, so a send that already happened is not repeated.
		ev, err := d.store.Get(ctx, it.Event.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				d.log.Warn("due event no longer exists, skipping",
					logx.String("event_id", it.Event.ID),
					logx.String("kind", it.Kind.String()))
				continue
			}
			failed++
			d.log.Error("reloading due event failed",
				logx.String("event_id", it.Event.ID), logx.Err(err))
			continue
		}
		flag := ev.Announcement
		if it.Kind == KindReminder {
			flag = ev.Reminder
		}
		if flag != store.Pending {
			d.log.Info("already sent, skipping",
				logx.String("event_id", ev.ID),
				logx.String("kind", it.Kind.String()))
			continue
		}
		it.Event = ev

		if err := d.sender.Send(ctx, it, today.DaysUntil(it.Event.Date)); err != nil {
			failed++
			d.log.Warn("send failed, will retry on a later tick",
				logx.String("event_id", it.Event.ID),
				logx.String("kind", it.Kind.String()),
				logx.Err(err))
			continue
		}

		var markErr error
		if it.Kind == KindAdvance {
			markErr = d.store.MarkAnnouncementSent(ctx, it.Event.ID)
		} else {
			markErr = d.store.MarkReminderSent(ctx, it.Event.ID)
		}
		if markErr != nil {
			// The message went out but the flag did not stick; surface it
			// loudly since the next tick may repeat the send.
			failed++
			d.log.Error("sent but marking failed",
				logx.String("event_id", it.Event.ID),
				logx.String("kind", it.Kind.String()),
				logx.Err(markErr))
			continue
		}
		sent++
		d.log.Info("notification sent",
			logx.String("event_id", it.Event.ID),
			logx.String("title", it.Event.Title),
			logx.String("kind", it.Kind.String()))
	}
	return sent, failed
}

func filterKinds(items []Due, kinds []Kind) []Due {
	if len(kinds) == 0 {
		return items
	}
	var out []Due
	for _, it := range items {
		for _, k := range kinds {
			if it.Kind == k {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

func modeName(m Mode) string {
	if m == ModeCatchUp {
		return "catchup"
	}
	return "scheduled"
}
