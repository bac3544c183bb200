// Package db is the Postgres repository behind the HTTP API.
package db

import (
	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// Store is what endpoints depend on. Lookups of a missing row return sql.ErrNoRows.
type Store interface {
	// users
	CreateUser(email, hashedPassword, name string) (int64, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int64) (*model.User, error)
	UpdateUserProfile(id int64, name, hashedPassword *string) (*model.User, error)
	CountUsers() (int, error)

	// prayer times
	ListPrayerTimes() ([]model.PrayerTime, error)
	CreatePrayerTime(p model.PrayerTime) (*model.PrayerTime, error)
	UpdatePrayerTime(id int64, patch model.PrayerTimePatch) (*model.PrayerTime, error)

	// events
	ListEvents() ([]model.Event, error)
	GetEvent(id int64) (*model.Event, error)
	CreateEvent(e model.Event) (*model.Event, error)
	UpdateEvent(e model.Event) (*model.Event, error)
	DeleteEvent(id int64) error
	CountEvents() (int, error)

	// finance
	ListTransactions() ([]model.Transaction, error)
	CreateTransaction(t model.Transaction) (*model.Transaction, error)
	DeleteTransaction(id int64) error
	CountTransactions() (int, error)

	// singletons: Get creates the row with defaults when absent
	GetDonationInfo() (*model.DonationInfo, error)
	UpsertDonationInfo(in model.DonationInfo) (*model.DonationInfo, error)
	GetContactInfo() (*model.ContactInfo, error)
	UpsertContactInfo(in model.ContactInfo) (*model.ContactInfo, error)
	GetAboutContent() (*model.AboutContent, error)
	UpsertAboutContent(in model.AboutContent) (*model.AboutContent, error)
}

type pgStore struct {
	db *sqlx.DB
}

var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}
