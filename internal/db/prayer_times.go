package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

func (s *pgStore) ListPrayerTimes() ([]model.PrayerTime, error) {
	out := []model.PrayerTime{}
	err := s.db.Select(&out, `SELECT id, name, time, is_active FROM prayer_times ORDER BY id ASC`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list prayer times")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) CreatePrayerTime(p model.PrayerTime) (*model.PrayerTime, error) {
	query := `
	INSERT INTO prayer_times (name, time, is_active)
	VALUES ($1, $2, $3)
	ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
	RETURNING id, name, time, is_active;
	`
	var out model.PrayerTime
	if err := s.db.Get(&out, query, p.Name, p.Time, p.IsActive); err != nil {
		log.Error().Err(err).Str("name", p.Name).Msg("failed to create prayer time")
		return nil, err
	}
	return &out, nil
}

// UpdatePrayerTime applies only the fields set in patch.
func (s *pgStore) UpdatePrayerTime(id int64, patch model.PrayerTimePatch) (*model.PrayerTime, error) {
	query := `
	UPDATE prayer_times
	SET time = COALESCE($2, time),
	    is_active = COALESCE($3, is_active),
	    updated_at = now()
	WHERE id = $1
	RETURNING id, name, time, is_active;
	`
	var out model.PrayerTime
	if err := s.db.Get(&out, query, id, patch.Time, patch.IsActive); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int64("id", id).Msg("failed to update prayer time")
		}
		return nil, err
	}
	return &out, nil
}
