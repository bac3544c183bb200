package state

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/masjid/internal/gateway"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

type fakeGateway struct {
	mu sync.Mutex

	prayers      []model.PrayerTime
	events       []model.Event
	transactions []model.Transaction
	donation     model.DonationInfo
	contact      model.ContactInfo
	about        model.AboutContent

	failEvents  error
	failAll     error
	writeErr    error
	eventsCalls int32
	nextID      int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		prayers: []model.PrayerTime{
			{ID: 1, Name: "Subuh", Time: "04:30", IsActive: true},
			{ID: 2, Name: "Dzuhur", Time: "12:00", IsActive: true},
		},
		events: []model.Event{
			{ID: 1, Title: "Kajian", Date: model.ParseEventDate("Setiap Sabtu")},
		},
		transactions: []model.Transaction{
			{ID: 1, Title: "Infaq Jumat", Amount: model.NewMoney(1500000), Type: model.Income, Date: "2025-01-03"},
		},
		donation: model.DonationInfo{ID: 1, BankName: "Live Bank"},
		contact:  model.ContactInfo{ID: 1, Address: "Live Street"},
		about:    model.AboutContent{ID: 1, History: "Live history"},
		nextID:   100,
	}
}

func (f *fakeGateway) set(fn func(f *fakeGateway)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeGateway) readErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failAll
}

func (f *fakeGateway) PrayerTimes(context.Context) ([]model.PrayerTime, error) {
	if err := f.readErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.PrayerTime(nil), f.prayers...), nil
}

func (f *fakeGateway) UpdatePrayerTime(_ context.Context, id int64, patch model.PrayerTimePatch) (model.PrayerTime, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return model.PrayerTime{}, f.writeErr
	}
	for i, p := range f.prayers {
		if p.ID == id {
			f.prayers[i] = patch.Apply(p)
			return f.prayers[i], nil
		}
	}
	return model.PrayerTime{}, &gateway.APIError{Status: http.StatusNotFound, Message: "Prayer time not found"}
}

func (f *fakeGateway) Events(context.Context) ([]model.Event, error) {
	atomic.AddInt32(&f.eventsCalls, 1)
	if err := f.readErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEvents != nil {
		return nil, f.failEvents
	}
	return append([]model.Event(nil), f.events...), nil
}

func (f *fakeGateway) CreateEvent(_ context.Context, in gateway.EventInput) (model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return model.Event{}, f.writeErr
	}
	f.nextID++
	ev := model.Event{ID: f.nextID, Title: in.Title, Date: in.Date}
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeGateway) UpdateEvent(_ context.Context, id int64, in gateway.EventInput) (model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.events {
		if e.ID == id {
			f.events[i].Title = in.Title
			return f.events[i], nil
		}
	}
	return model.Event{}, &gateway.APIError{Status: http.StatusNotFound, Message: "Event not found"}
}

func (f *fakeGateway) DeleteEvent(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.events {
		if e.ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return &gateway.APIError{Status: http.StatusNotFound, Message: "Event not found"}
}

func (f *fakeGateway) Transactions(context.Context) ([]model.Transaction, error) {
	if err := f.readErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Transaction(nil), f.transactions...), nil
}

func (f *fakeGateway) CreateTransaction(_ context.Context, in gateway.TransactionInput) (model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	tx := model.Transaction{ID: f.nextID, Title: in.Title, Amount: in.Amount, Type: in.Type, Date: in.Date}
	f.transactions = append([]model.Transaction{tx}, f.transactions...)
	return tx, nil
}

func (f *fakeGateway) DeleteTransaction(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.transactions {
		if t.ID == id {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return &gateway.APIError{Status: http.StatusNotFound, Message: "Transaction not found"}
}

func (f *fakeGateway) DonationInfo(context.Context) (model.DonationInfo, error) {
	if err := f.readErr(); err != nil {
		return model.DonationInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.donation, nil
}

func (f *fakeGateway) UpdateDonationInfo(_ context.Context, in model.DonationInfo) (model.DonationInfo, error) {
	if in.QrisImage.Size() > 64 {
		return model.DonationInfo{}, &gateway.APIError{Status: http.StatusRequestEntityTooLarge}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	in.ID = 1
	f.donation = in
	return in, nil
}

func (f *fakeGateway) ContactInfo(context.Context) (model.ContactInfo, error) {
	if err := f.readErr(); err != nil {
		return model.ContactInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contact, nil
}

func (f *fakeGateway) UpdateContactInfo(_ context.Context, in model.ContactInfo) (model.ContactInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in.ID = 1
	f.contact = in
	return in, nil
}

func (f *fakeGateway) AboutInfo(context.Context) (model.AboutContent, error) {
	if err := f.readErr(); err != nil {
		return model.AboutContent{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.about, nil
}

func (f *fakeGateway) UpdateAboutInfo(_ context.Context, in model.AboutContent) (model.AboutContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in.ID = 1
	f.about = in
	return in, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	success  []string
	failures []string
}

func (r *recordingNotifier) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success = append(r.success, msg)
}

func (r *recordingNotifier) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

func (r *recordingNotifier) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T, gw *fakeGateway, interval time.Duration) (*Store, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	s := New(gw, n, Options{RefreshInterval: interval, Now: func() time.Time { return fixedNow }})
	t.Cleanup(s.Dispose)
	return s, n
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestStore_InitLoadsEveryResource(t *testing.T) {
	gw := newFakeGateway()
	s, _ := newStore(t, gw, time.Hour)

	require.NoError(t, s.Init(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, gw.prayers, snap.PrayerTimes)
	assert.Equal(t, gw.events, snap.Events)
	assert.Equal(t, gw.transactions, snap.Transactions)
	assert.Equal(t, gw.donation, snap.DonationInfo)
	assert.Equal(t, gw.contact, snap.ContactInfo)
	assert.Equal(t, gw.about, snap.About)
	assert.False(t, snap.Loading)

	st := s.Status()
	assert.Equal(t, Ready, st.Phase)
	assert.False(t, st.Degraded)
	assert.Equal(t, fixedNow, st.LastSyncedAt)

	assert.ErrorIs(t, s.Init(context.Background()), ErrAlreadyInitialized)
}

func TestStore_InitEmptyCollectionsAreNotNil(t *testing.T) {
	gw := newFakeGateway()
	gw.events, gw.transactions = nil, nil
	s, _ := newStore(t, gw, time.Hour)

	require.NoError(t, s.Init(context.Background()))
	snap := s.Snapshot()
	assert.NotNil(t, snap.Events)
	assert.NotNil(t, snap.Transactions)
}

func TestStore_InitFailureUsesFallbackOnly(t *testing.T) {
	gw := newFakeGateway()
	gw.failEvents = gateway.ErrUnreachable
	s, n := newStore(t, gw, time.Hour)

	require.NoError(t, s.Init(context.Background()))

	want := model.FallbackState(model.FallbackEvents(fixedNow))
	assert.Equal(t, mustJSON(t, want), mustJSON(t, s.Snapshot()))
	assert.NotEqual(t, "Live Bank", s.Snapshot().DonationInfo.BankName)

	st := s.Status()
	assert.True(t, st.Degraded)
	assert.ErrorIs(t, st.LastRefreshError, gateway.ErrUnreachable)
	assert.Zero(t, n.errorCount())
}

func TestStore_FailedRefreshLeavesSnapshotUnchanged(t *testing.T) {
	gw := newFakeGateway()
	s, n := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	before := mustJSON(t, s.Snapshot())
	gw.set(func(f *fakeGateway) {
		f.failAll = gateway.ErrUnreachable
		f.donation.BankName = "changed"
	})

	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, mustJSON(t, s.Snapshot()))
	assert.True(t, s.Status().Stale)
	assert.Zero(t, n.errorCount())

	gw.set(func(f *fakeGateway) { f.failAll = nil })
	require.NoError(t, s.Refresh(context.Background()))
	assert.False(t, s.Status().Stale)
	assert.Equal(t, "changed", s.Snapshot().DonationInfo.BankName)
}

func TestStore_BackgroundLoopRefreshesUntilDisposed(t *testing.T) {
	gw := newFakeGateway()
	s, _ := newStore(t, gw, 10*time.Millisecond)
	require.NoError(t, s.Init(context.Background()))

	gw.set(func(f *fakeGateway) { f.contact.Address = "New Street" })
	assert.Eventually(t, func() bool {
		return s.Snapshot().ContactInfo.Address == "New Street"
	}, time.Second, 5*time.Millisecond)

	s.Dispose()
	calls := atomic.LoadInt32(&gw.eventsCalls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, atomic.LoadInt32(&gw.eventsCalls))
	s.Dispose()
}

func TestStore_ChangeAnnouncementTriggersRefresh(t *testing.T) {
	gw := newFakeGateway()
	changes := make(chan string, 1)
	n := &recordingNotifier{}
	s := New(gw, n, Options{RefreshInterval: time.Hour, Changes: changes})
	t.Cleanup(s.Dispose)
	require.NoError(t, s.Init(context.Background()))

	gw.set(func(f *fakeGateway) { f.about.History = "Updated" })
	changes <- "about-info"

	assert.Eventually(t, func() bool {
		return s.Snapshot().About.History == "Updated"
	}, time.Second, 5*time.Millisecond)
}

func TestStore_CreateTransactionPrepends(t *testing.T) {
	gw := newFakeGateway()
	s, n := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	tx, err := s.CreateTransaction(context.Background(), gateway.TransactionInput{
		Title: "Listrik", Amount: model.NewMoney(250000), Type: model.Expense, Date: "2025-03-10",
	})
	require.NoError(t, err)

	txs := s.Snapshot().Transactions
	require.Len(t, txs, 2)
	assert.Equal(t, tx.ID, txs[0].ID)
	assert.Equal(t, model.NewMoney(1250000), s.FinanceSummary().Balance)
	assert.Len(t, n.success, 1)
}

func TestStore_DeleteTransactionFilters(t *testing.T) {
	gw := newFakeGateway()
	s, _ := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	require.NoError(t, s.DeleteTransaction(context.Background(), 1))
	assert.Empty(t, s.Snapshot().Transactions)
}

func TestStore_UpdatePrayerTimeKeepsUnspecifiedFields(t *testing.T) {
	gw := newFakeGateway()
	s, _ := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	clock := "05:00"
	updated, err := s.UpdatePrayerTime(context.Background(), 1, model.PrayerTimePatch{Time: &clock})
	require.NoError(t, err)
	assert.Equal(t, "05:00", updated.Time)

	p := s.Snapshot().PrayerTimes[0]
	assert.Equal(t, "05:00", p.Time)
	assert.True(t, p.IsActive)
}

func TestStore_EventWritesRefetchCollection(t *testing.T) {
	gw := newFakeGateway()
	s, _ := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	ev, err := s.CreateEvent(context.Background(), gateway.EventInput{Title: "Tarawih", Date: model.ParseEventDate("2025-03-12")})
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Events, 2)

	_, err = s.UpdateEvent(context.Background(), ev.ID, gateway.EventInput{Title: "Tarawih Berjamaah"})
	require.NoError(t, err)
	assert.Equal(t, "Tarawih Berjamaah", s.Snapshot().Events[1].Title)

	require.NoError(t, s.DeleteEvent(context.Background(), ev.ID))
	assert.Len(t, s.Snapshot().Events, 1)
}

func TestStore_DeleteMissingEventReloads(t *testing.T) {
	gw := newFakeGateway()
	s, n := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	// another admin removed the event and added a new one
	gw.set(func(f *fakeGateway) {
		f.events = []model.Event{{ID: 9, Title: "Other"}}
	})

	err := s.DeleteEvent(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDesync)
	assert.True(t, gateway.IsNotFound(err))

	events := s.Snapshot().Events
	require.Len(t, events, 1)
	assert.Equal(t, int64(9), events[0].ID)
	assert.Equal(t, 1, n.errorCount())
}

func TestStore_DeleteMissingTransactionReloads(t *testing.T) {
	gw := newFakeGateway()
	s, _ := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	gw.set(func(f *fakeGateway) { f.transactions = nil })

	err := s.DeleteTransaction(context.Background(), 1)
	assert.ErrorIs(t, err, ErrDesync)
	assert.Empty(t, s.Snapshot().Transactions)
}

func TestStore_UpdateMissingPrayerTimeReloads(t *testing.T) {
	gw := newFakeGateway()
	s, n := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	gw.set(func(f *fakeGateway) {
		f.prayers = []model.PrayerTime{{ID: 7, Name: "Ashar", Time: "15:15", IsActive: true}}
	})

	clock := "05:00"
	_, err := s.UpdatePrayerTime(context.Background(), 1, model.PrayerTimePatch{Time: &clock})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDesync)
	assert.True(t, gateway.IsNotFound(err))

	prayers := s.Snapshot().PrayerTimes
	require.Len(t, prayers, 1)
	assert.Equal(t, int64(7), prayers[0].ID)
	assert.Equal(t, 1, n.errorCount())
}

func TestStore_UpdateMissingEventReloads(t *testing.T) {
	gw := newFakeGateway()
	s, n := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))
	calls := atomic.LoadInt32(&gw.eventsCalls)

	gw.set(func(f *fakeGateway) {
		f.events = []model.Event{{ID: 9, Title: "Other"}}
	})

	_, err := s.UpdateEvent(context.Background(), 1, gateway.EventInput{Title: "Kajian Ahad"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDesync)
	assert.True(t, gateway.IsNotFound(err))
	assert.Greater(t, atomic.LoadInt32(&gw.eventsCalls), calls)

	events := s.Snapshot().Events
	require.Len(t, events, 1)
	assert.Equal(t, int64(9), events[0].ID)
	assert.Equal(t, "Other", events[0].Title)
	assert.Equal(t, 1, n.errorCount())
}

func TestStore_OversizedDonationImageLeavesStateUnchanged(t *testing.T) {
	gw := newFakeGateway()
	s, n := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))
	before := mustJSON(t, s.Snapshot())

	big := model.DonationInfo{BankName: "X", QrisImage: model.InlineImage("data:image/png;base64," + string(make([]byte, 128)))}
	_, err := s.UpdateDonationInfo(context.Background(), big)

	require.Error(t, err)
	assert.True(t, gateway.IsPayloadTooLarge(err))
	assert.False(t, errors.Is(err, ErrDesync))
	assert.Equal(t, before, mustJSON(t, s.Snapshot()))
	assert.Equal(t, 1, n.errorCount())
}

func TestStore_SingletonsReplacedWithServerRecord(t *testing.T) {
	gw := newFakeGateway()
	s, _ := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	_, err := s.UpdateContactInfo(context.Background(), model.ContactInfo{Address: "Jl. Baru"})
	require.NoError(t, err)
	_, err = s.UpdateAboutInfo(context.Background(), model.AboutContent{Vision: "Makmur"})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, model.ContactInfo{ID: 1, Address: "Jl. Baru"}, snap.ContactInfo)
	assert.Equal(t, "Makmur", snap.About.Vision)
}

func TestStore_WriteFailureIsNotifiedAndReturned(t *testing.T) {
	gw := newFakeGateway()
	s, n := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	gw.set(func(f *fakeGateway) {
		f.writeErr = &gateway.APIError{Status: http.StatusBadRequest, Message: "Title is required"}
	})
	_, err := s.CreateEvent(context.Background(), gateway.EventInput{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, gateway.StatusOf(err))

	n.mu.Lock()
	defer n.mu.Unlock()
	require.Len(t, n.failures, 1)
	assert.Contains(t, n.failures[0], "Title is required")
}

func TestStore_DerivedReads(t *testing.T) {
	gw := newFakeGateway()
	s, _ := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	next, ok := s.NextPrayer(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "Dzuhur", next.Prayer.Name)
	assert.Equal(t, 2*time.Hour, next.Remaining)

	assert.Len(t, s.UpcomingEvents(5), 1)
}

func TestStore_BoardOrdersActivePrayers(t *testing.T) {
	gw := newFakeGateway()
	gw.prayers = []model.PrayerTime{
		{ID: 3, Name: "Isya", Time: "19:00", IsActive: true},
		{ID: 4, Name: "Imsak", Time: "04:20", IsActive: false},
		{ID: 1, Name: "Subuh", Time: "04:30", IsActive: true},
	}
	s, _ := newStore(t, gw, time.Hour)
	require.NoError(t, s.Init(context.Background()))

	now := time.Date(2025, time.August, 5, 12, 0, 0, 0, time.UTC)
	page := s.Board(now, 3)

	assert.Equal(t, "AUGUST 5, 2025", page.Date)
	require.Len(t, page.Prayers, 2)
	assert.Equal(t, "Subuh", page.Prayers[0].Name)
	assert.Equal(t, "Isya", page.Prayers[1].Name)
	require.NotNil(t, page.Next)
	assert.Equal(t, "Isya", page.Next.Prayer.Name)
	assert.Equal(t, 7*time.Hour, page.Next.Remaining)
	assert.Len(t, page.Events, 1)
	assert.Equal(t, model.NewMoney(1500000), page.Finance.Balance)
}
