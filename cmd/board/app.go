package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/Nixie-Tech-LLC/masjid/internal/broker"
	"github.com/Nixie-Tech-LLC/masjid/internal/config"
	"github.com/Nixie-Tech-LLC/masjid/internal/gateway"
	"github.com/Nixie-Tech-LLC/masjid/internal/notify"
	masjidredis "github.com/Nixie-Tech-LLC/masjid/internal/redis"
	"github.com/Nixie-Tech-LLC/masjid/internal/session"
	"github.com/Nixie-Tech-LLC/masjid/internal/state"
)

var (
	_ state.Gateway         = (*gateway.Client)(nil)
	_ session.Authenticator = (*gateway.Client)(nil)
	_ gateway.TokenSource   = (*session.Session)(nil)
)

// app wires gateway, session, notifier and store for one command run.
type app struct {
	cfg      *config.Client
	gw       *gateway.Client
	session  *session.Session
	notifier *notify.Notifier
	out      io.Writer

	closers []func()
}

func newApp(c *cli.Context) (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if v := c.String("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v := c.String("session-file"); v != "" {
		cfg.SessionFile = v
		cfg.SessionRedis = ""
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	setupLogging(cfg)

	gw, err := gateway.New(gateway.Config{
		BaseURL:       cfg.APIURL,
		Timeout:       cfg.RequestTimeout,
		MaxImageBytes: cfg.MaxImageBytes,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		gw:       gw,
		notifier: notify.New(cfg.NotifyDuration),
		out:      c.App.Writer,
	}
	a.session = session.New(gw, a.persistence(), session.Options{ValidateOnBoot: cfg.ValidateSession})
	gw.SetTokenSource(a.session)

	if err := a.session.Init(c.Context); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func setupLogging(cfg *config.Client) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func (a *app) persistence() session.Persistence {
	if a.cfg.SessionRedis == "" {
		return session.NewFileStore(a.cfg.SessionFile)
	}
	rdb := masjidredis.NewClient(a.cfg.SessionRedis, "", "")
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	return session.NewRedisStore(rdb, session.DefaultRedisKey, 0)
}

// printNotifications echoes every notification for one-shot commands.
func (a *app) printNotifications() {
	a.notifier.OnChange(func(n *notify.Notification) {
		if n != nil {
			fmt.Fprintf(a.out, "[%s] %s\n", n.Kind, n.Message)
		}
	})
}

// openStore loads every resource. With live set, MQTT announcements (when
// configured) trigger refreshes between polls.
func (a *app) openStore(ctx context.Context, live bool) (*state.Store, error) {
	opts := state.Options{RefreshInterval: a.cfg.RefreshInterval}
	if live && a.cfg.MQTTBrokerURL != "" {
		if changes, err := a.subscribe(); err != nil {
			log.Warn().Err(err).Msg("[board] change announcements unavailable, polling only")
		} else {
			opts.Changes = changes
		}
	}

	store := state.New(a.gw, a.notifier, opts)
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Dispose)
	return store, nil
}

func (a *app) subscribe() (<-chan string, error) {
	suffix, err := gonanoid.New(8)
	if err != nil {
		return nil, err
	}
	b, err := broker.Connect(a.cfg.MQTTBrokerURL, "masjid-board-"+suffix)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, b.Close)
	return b.Changes(16)
}

// admin opens the store for a write, refusing when nobody is signed in.
// Partial updates start from the server's record: the snapshot may hold
// fallback data after a failed load.
func (a *app) admin(ctx context.Context) (*state.Store, error) {
	if err := a.session.RequireAuthenticated(); err != nil {
		return nil, fmt.Errorf("%w: run `board login` first", err)
	}
	a.printNotifications()
	return a.openStore(ctx, false)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// withApp runs fn with a wired app and releases it afterwards.
func withApp(fn func(c *cli.Context, a *app) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := newApp(c)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(c, a)
	}
}
