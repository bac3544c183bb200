// Package state keeps the client's reconciled copy of every backend resource.
package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/masjid/internal/gateway"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// ErrDesync reports a targeted write to a record the backend no longer has.
var ErrDesync = errors.New("local state out of sync with server")

var ErrAlreadyInitialized = errors.New("store already initialized")

const DefaultRefreshInterval = 5 * time.Second

type Gateway interface {
	PrayerTimes(ctx context.Context) ([]model.PrayerTime, error)
	UpdatePrayerTime(ctx context.Context, id int64, patch model.PrayerTimePatch) (model.PrayerTime, error)

	Events(ctx context.Context) ([]model.Event, error)
	CreateEvent(ctx context.Context, in gateway.EventInput) (model.Event, error)
	UpdateEvent(ctx context.Context, id int64, in gateway.EventInput) (model.Event, error)
	DeleteEvent(ctx context.Context, id int64) error

	Transactions(ctx context.Context) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, in gateway.TransactionInput) (model.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error

	DonationInfo(ctx context.Context) (model.DonationInfo, error)
	UpdateDonationInfo(ctx context.Context, in model.DonationInfo) (model.DonationInfo, error)
	ContactInfo(ctx context.Context) (model.ContactInfo, error)
	UpdateContactInfo(ctx context.Context, in model.ContactInfo) (model.ContactInfo, error)
	AboutInfo(ctx context.Context) (model.AboutContent, error)
	UpdateAboutInfo(ctx context.Context, in model.AboutContent) (model.AboutContent, error)
}

type Notifier interface {
	Success(message string)
	Error(message string)
}

type Phase int

const (
	Uninitialized Phase = iota
	Loading
	Ready
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Status describes how current the snapshot is.
type Status struct {
	Phase      Phase
	Refreshing bool
	// Stale is set when the latest background refresh failed.
	Stale bool
	// Degraded is set while the snapshot still holds built-in fallback data.
	Degraded         bool
	LastRefreshError error
	LastSyncedAt     time.Time
}

type Options struct {
	RefreshInterval time.Duration
	// Changes carries resource names announced by the backend; each one
	// triggers an immediate background refresh.
	Changes <-chan string
	Now     func() time.Time
}

type Store struct {
	gw       Gateway
	notifier Notifier
	opts     Options

	mu     sync.RWMutex
	state  model.AppState
	status Status

	lifeMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(gw Gateway, notifier Notifier, opts Options) *Store {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{gw: gw, notifier: notifier, opts: opts}
}

// Init performs the initial load and starts background refresh. If any
// resource fails to load the whole snapshot is replaced by fallback data.
func (s *Store) Init(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	s.mu.Lock()
	if s.status.Phase != Uninitialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.status.Phase = Loading
	s.state.Loading = true
	s.mu.Unlock()

	snap, err := s.fetchAll(ctx)

	s.mu.Lock()
	if err != nil {
		log.Warn().Err(err).Msg("[state] initial load failed, using fallback data")
		snap = model.FallbackState(model.FallbackEvents(s.opts.Now()))
		s.status.Degraded = true
		s.status.LastRefreshError = err
	} else {
		s.status.LastSyncedAt = s.opts.Now()
	}
	snap.Loading = false
	s.state = snap
	s.status.Phase = Ready
	s.mu.Unlock()

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(loopCtx, s.done)
	return nil
}

// Dispose stops background refresh, aborts any refresh in flight and waits
// for the loop to exit. It is safe to call more than once.
func (s *Store) Dispose() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

func (s *Store) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()

	changes := s.opts.Changes
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		case resource, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			log.Debug().Str("resource", resource).Msg("[state] change announced, refreshing")
			_ = s.Refresh(ctx)
		}
	}
}

// Refresh re-fetches everything silently. On failure the snapshot is left
// untouched and the store is marked stale.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.status.Refreshing = true
	s.mu.Unlock()

	snap, err := s.fetchAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Refreshing = false

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		log.Debug().Err(err).Msg("[state] background refresh failed")
		s.status.Stale = true
		s.status.LastRefreshError = err
		return err
	}
	s.replace(snap)
	return nil
}

// Reload is a visible full re-fetch used after a detected desync.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.state.Loading = true
	s.mu.Unlock()

	snap, err := s.fetchAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.status.Stale = true
		s.status.LastRefreshError = err
		return fmt.Errorf("reload: %w", err)
	}
	s.replace(snap)
	return nil
}

// replace installs a freshly fetched snapshot. Caller holds s.mu.
func (s *Store) replace(snap model.AppState) {
	snap.Loading = false
	s.state = snap
	s.status.Stale = false
	s.status.Degraded = false
	s.status.LastRefreshError = nil
	s.status.LastSyncedAt = s.opts.Now()
}

func (s *Store) fetchAll(ctx context.Context) (model.AppState, error) {
	var snap model.AppState
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.PrayerTimes, err = s.gw.PrayerTimes(gctx)
		return wrap("prayer times", err)
	})
	g.Go(func() (err error) {
		snap.Events, err = s.gw.Events(gctx)
		return wrap("events", err)
	})
	g.Go(func() (err error) {
		snap.Transactions, err = s.gw.Transactions(gctx)
		return wrap("transactions", err)
	})
	g.Go(func() (err error) {
		snap.DonationInfo, err = s.gw.DonationInfo(gctx)
		return wrap("donation info", err)
	})
	g.Go(func() (err error) {
		snap.ContactInfo, err = s.gw.ContactInfo(gctx)
		return wrap("contact info", err)
	})
	g.Go(func() (err error) {
		snap.About, err = s.gw.AboutInfo(gctx)
		return wrap("about info", err)
	})

	if err := g.Wait(); err != nil {
		return model.AppState{}, err
	}
	if snap.PrayerTimes == nil {
		snap.PrayerTimes = []model.PrayerTime{}
	}
	if snap.Events == nil {
		snap.Events = []model.Event{}
	}
	if snap.Transactions == nil {
		snap.Transactions = []model.Transaction{}
	}
	return snap, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("fetch %s: %w", what, err)
}

func (s *Store) Snapshot() model.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) FinanceSummary() model.FinanceSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Summarize(s.state.Transactions)
}

func (s *Store) NextPrayer(now time.Time) (model.UpcomingPrayer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.NextPrayer(s.state.PrayerTimes, now)
}

func (s *Store) UpcomingEvents(n int) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Upcoming(s.state.Events, n)
}

// Board assembles one board refresh: active prayers in display order, the
// next prayer, the first n upcoming events and the finance totals.
func (s *Store) Board(now time.Time, n int) model.BoardPage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order := make(map[string]int, len(model.PrayerNames()))
	for i, name := range model.PrayerNames() {
		order[name] = i
	}
	prayers := make([]model.PrayerTime, 0, len(s.state.PrayerTimes))
	for _, p := range s.state.PrayerTimes {
		if p.IsActive {
			prayers = append(prayers, p)
		}
	}
	sort.SliceStable(prayers, func(i, j int) bool { return order[prayers[i].Name] < order[prayers[j].Name] })

	page := model.BoardPage{
		Date:    strings.ToUpper(now.Format("January 2, 2006")),
		Prayers: prayers,
		Events:  model.Upcoming(s.state.Events, n),
		Finance: model.Summarize(s.state.Transactions),
	}
	if next, ok := model.NextPrayer(s.state.PrayerTimes, now); ok {
		page.Next = &next
	}
	return page
}
