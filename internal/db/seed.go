package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

type SeedConfig struct {
	AdminName         string
	AdminEmail        string
	AdminPasswordHash string
	Today             time.Time
}

// Seed fills empty tables with the initial data of a fresh installation.
// Tables that already hold rows are left alone.
func Seed(store Store, cfg SeedConfig) error {
	existing, err := store.ListPrayerTimes()
	if err != nil {
		return fmt.Errorf("seed prayer times: %w", err)
	}
	if len(existing) == 0 {
		log.Info().Msg("seeding prayer times")
		for _, name := range model.RequiredPrayers {
			if _, err := store.CreatePrayerTime(model.DefaultPrayerTime(name)); err != nil {
				return fmt.Errorf("seed prayer time %s: %w", name, err)
			}
		}
	}

	users, err := store.CountUsers()
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if users == 0 && cfg.AdminEmail != "" && cfg.AdminPasswordHash != "" {
		log.Info().Str("email", cfg.AdminEmail).Msg("creating admin user")
		if _, err := store.CreateUser(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.AdminName); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	txs, err := store.CountTransactions()
	if err != nil {
		return fmt.Errorf("seed transactions: %w", err)
	}
	if txs == 0 {
		log.Info().Msg("seeding transactions")
		for _, t := range sampleTransactions(cfg.Today) {
			if _, err := store.CreateTransaction(t); err != nil {
				return fmt.Errorf("seed transaction %q: %w", t.Title, err)
			}
		}
	}

	events, err := store.CountEvents()
	if err != nil {
		return fmt.Errorf("seed events: %w", err)
	}
	if events == 0 {
		log.Info().Msg("seeding events")
		if _, err := store.CreateEvent(model.Event{
			Title:       "Kajian Rutin Sabtu",
			Date:        model.RecurringLabel("Setiap Sabtu"),
			Time:        "09:00",
			Description: "Kajian rutin membahas tafsir Al-Quran bersama Ustadz Abdullah. Terbuka untuk umum.",
		}); err != nil {
			return fmt.Errorf("seed event: %w", err)
		}
	}

	if _, err := store.GetDonationInfo(); err != nil {
		return fmt.Errorf("seed donation info: %w", err)
	}
	if _, err := store.GetContactInfo(); err != nil {
		return fmt.Errorf("seed contact info: %w", err)
	}
	if _, err := store.GetAboutContent(); err != nil {
		return fmt.Errorf("seed about content: %w", err)
	}
	return nil
}

func sampleTransactions(today time.Time) []model.Transaction {
	day := today.Format("2006-01-02")
	infaq := "Infaq"
	ops := "Operasional"
	return []model.Transaction{
		{Title: "Infaq Jumat", Amount: model.NewMoney(2500000), Type: model.Income, Date: day, Category: &infaq},
		{Title: "Bayar Listrik Bulan Ini", Amount: model.NewMoney(500000), Type: model.Expense, Date: day, Category: &ops},
		{Title: "Sumbangan Hamba Allah", Amount: model.NewMoney(1000000), Type: model.Income, Date: day, Category: &infaq},
	}
}
