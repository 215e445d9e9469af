// Package app wires configuration, logging, storage, the scheduler and the
// Telegram command layer into one process.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"herald/internal/announce"
	"herald/internal/bot"
	"herald/internal/config"
	"herald/internal/sheets"
	"herald/internal/store"
	"herald/internal/transport"
	"herald/internal/transport/telegram"
	logx "herald/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	logs *logx.Service
	log  logx.Logger

	adapter  *telegram.Adapter
	st       store.Store
	notifier *announce.Notifier
	driver   *announce.Driver
	handlers *bot.Handlers

	watchCancel context.CancelFunc
	watchWG     sync.WaitGroup
	sub         chan *config.Config
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	bootLog := logx.NewConsole("INFO").With(logx.String("comp", "telegram"))
	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	ad, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, bootLog)
	if err != nil {
		return nil, err
	}

	// Bootstrap with the Telegram sink disabled, set the relay target, then
	// apply the real config; this avoids a false warning about a missing
	// target during startup.
	logCfg := mapLogConfig(cfg)
	bootCfg := logCfg
	bootCfg.Telegram.Enabled = false
	logSvc, log := logx.New(bootCfg, ad)
	logSvc.SetTelegramTarget(transport.ChatTarget{ChatID: cfg.Telegram.AnnounceChatID})
	logSvc.Apply(logCfg)
	log = log.With(logx.String("comp", "app"))

	cfgm.SetLogger(log.With(logx.String("comp", "config")))
	cfgm.SetValidator(func(ctx context.Context, c *config.Config) error {
		return config.Validate(c)
	})

	storeCfg, err := mapStoreConfig(cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(storeCfg, log.With(logx.String("comp", "store")))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	log.Info("store opened", logx.String("driver", storeCfg.Driver))

	driverCfg, err := mapDriverConfig(cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	notif := announce.NewNotifier(ad,
		transport.ChatTarget{ChatID: cfg.Telegram.AnnounceChatID},
		log.With(logx.String("comp", "notifier")))
	driver := announce.NewDriver(st, notif, driverCfg,
		log.With(logx.String("comp", "scheduler")))

	var importer *sheets.Importer
	if sc := cfg.Sheets; sc != nil && sc.Enabled {
		client, err := sheets.NewClient(sheets.ClientConfig{
			SpreadsheetID:       sc.SpreadsheetID,
			ServiceAccountEmail: sc.ServiceAccountEmail,
			PrivateKeyPath:      sc.PrivateKeyPath,
			Range:               sc.Range,
		}, log.With(logx.String("comp", "sheets")))
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		importer = sheets.NewImporter(client, st, log.With(logx.String("comp", "sheets")))
		log.Info("sheets import enabled", logx.String("spreadsheet", sc.SpreadsheetID))
	}

	handlers := bot.New(ad.Bot(), ad, st, driver, importer,
		mapBotConfig(cfg, driverCfg.Policy.Location),
		log.With(logx.String("comp", "bot")))
	handlers.Register()

	return &App{
		cfgm:     cfgm,
		logs:     logSvc,
		log:      log,
		adapter:  ad,
		st:       st,
		notifier: notif,
		driver:   driver,
		handlers: handlers,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	if err := a.adapter.Start(ctx); err != nil {
		return err
	}
	if err := a.driver.Start(ctx); err != nil {
		return err
	}

	wctx, cancel := context.WithCancel(ctx)
	a.watchCancel = cancel
	a.sub = a.cfgm.Subscribe(1)

	a.watchWG.Add(2)
	go func() {
		defer a.watchWG.Done()
		if err := a.cfgm.Watch(wctx); err != nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()
	go func() {
		defer a.watchWG.Done()
		for {
			select {
			case <-wctx.Done():
				return
			case cfg, ok := <-a.sub:
				if !ok {
					return
				}
				a.applyReload(cfg)
			}
		}
	}()

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Warn("sd_notify failed", logx.Err(err))
	} else if sent {
		a.log.Debug("systemd notified ready")
	}
	a.log.Info("started")
	return nil
}

// applyReload pushes a validated config change into the running services.
// Tick cadences and the transport token stay fixed until restart.
func (a *App) applyReload(cfg *config.Config) {
	a.logs.Apply(mapLogConfig(cfg))
	a.logs.SetTelegramTarget(transport.ChatTarget{ChatID: cfg.Telegram.AnnounceChatID})

	driverCfg, err := mapDriverConfig(cfg)
	if err != nil {
		a.log.Warn("reload: announce config rejected", logx.Err(err))
		return
	}
	a.driver.ApplyPolicy(driverCfg.Policy)
	a.notifier.SetChat(transport.ChatTarget{ChatID: cfg.Telegram.AnnounceChatID})
	a.handlers.ApplyConfig(mapBotConfig(cfg, driverCfg.Policy.Location))
	a.log.Info("config applied")
}

func (a *App) Stop(ctx context.Context) error {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if a.watchCancel != nil {
		a.watchCancel()
	}
	a.driver.Stop()
	if err := a.adapter.Stop(ctx); err != nil {
		a.log.Warn("adapter stop", logx.Err(err))
	}
	a.watchWG.Wait()
	if a.sub != nil {
		a.cfgm.Unsubscribe(a.sub)
	}
	if err := a.st.Close(); err != nil {
		a.log.Warn("store close", logx.Err(err))
	}
	a.log.Info("stopped")
	return a.logs.Close()
}
