// Package dbtest provides an in-memory db.Store for endpoint tests.
package dbtest

import (
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

type MemoryStore struct {
	mu sync.Mutex

	nextID       int64
	users        map[int64]model.User
	prayers      []model.PrayerTime
	events       map[int64]model.Event
	transactions []model.Transaction
	donation     *model.DonationInfo
	contact      *model.ContactInfo
	about        *model.AboutContent
}

var _ db.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  map[int64]model.User{},
		events: map[int64]model.Event{},
	}
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) CreateUser(email, hashedPassword, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	now := time.Now()
	m.users[id] = model.User{ID: id, Email: email, HashedPassword: hashedPassword, Name: name, CreatedAt: now, UpdatedAt: now}
	return id, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MemoryStore) GetUserByID(id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *MemoryStore) UpdateUserProfile(id int64, name, hashedPassword *string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if name != nil {
		u.Name = *name
	}
	if hashedPassword != nil {
		u.HashedPassword = *hashedPassword
	}
	u.UpdatedAt = time.Now()
	m.users[id] = u
	return &u, nil
}

func (m *MemoryStore) CountUsers() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *MemoryStore) ListPrayerTimes() ([]model.PrayerTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.PrayerTime{}, m.prayers...), nil
}

func (m *MemoryStore) CreatePrayerTime(p model.PrayerTime) (*model.PrayerTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.prayers {
		if existing.Name == p.Name {
			return &existing, nil
		}
	}
	p.ID = m.id()
	m.prayers = append(m.prayers, p)
	return &p, nil
}

func (m *MemoryStore) UpdatePrayerTime(id int64, patch model.PrayerTimePatch) (*model.PrayerTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.prayers {
		if p.ID == id {
			m.prayers[i] = patch.Apply(p)
			out := m.prayers[i]
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MemoryStore) ListEvents() ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return model.SortEvents(out), nil
}

func (m *MemoryStore) GetEvent(id int64) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (m *MemoryStore) CreateEvent(e model.Event) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.events[e.ID] = e
	return &e, nil
}

func (m *MemoryStore) UpdateEvent(e model.Event) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[e.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	e.UpdatedAt = time.Now()
	m.events[e.ID] = e
	return &e, nil
}

func (m *MemoryStore) DeleteEvent(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.events, id)
	return nil
}

func (m *MemoryStore) CountEvents() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events), nil
}

func (m *MemoryStore) ListTransactions() ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.Transaction{}, m.transactions...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) CreateTransaction(t model.Transaction) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	t.CreatedAt = time.Now()
	m.transactions = append(m.transactions, t)
	return &t, nil
}

func (m *MemoryStore) DeleteTransaction(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.transactions {
		if t.ID == id {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *MemoryStore) CountTransactions() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions), nil
}

func (m *MemoryStore) GetDonationInfo() (*model.DonationInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.donation == nil {
		d := model.DefaultDonationInfo()
		d.ID = m.id()
		m.donation = &d
	}
	out := *m.donation
	return &out, nil
}

func (m *MemoryStore) UpsertDonationInfo(in model.DonationInfo) (*model.DonationInfo, error) {
	current, _ := m.GetDonationInfo()
	m.mu.Lock()
	defer m.mu.Unlock()
	in.ID = current.ID
	m.donation = &in
	out := in
	return &out, nil
}

func (m *MemoryStore) GetContactInfo() (*model.ContactInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.contact == nil {
		c := model.DefaultContactInfo()
		c.ID = m.id()
		m.contact = &c
	}
	out := *m.contact
	return &out, nil
}

func (m *MemoryStore) UpsertContactInfo(in model.ContactInfo) (*model.ContactInfo, error) {
	current, _ := m.GetContactInfo()
	m.mu.Lock()
	defer m.mu.Unlock()
	in.ID = current.ID
	m.contact = &in
	out := in
	return &out, nil
}

func (m *MemoryStore) GetAboutContent() (*model.AboutContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.about == nil {
		a := model.DefaultAbout()
		a.ID = m.id()
		m.about = &a
	}
	out := *m.about
	return &out, nil
}

func (m *MemoryStore) UpsertAboutContent(in model.AboutContent) (*model.AboutContent, error) {
	current, _ := m.GetAboutContent()
	m.mu.Lock()
	defer m.mu.Unlock()
	in.ID = current.ID
	m.about = &in
	out := in
	return &out, nil
}
