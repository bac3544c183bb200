package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

const eventColumns = `id, title, date, time, description, image, created_at, updated_at`

// ListEvents orders recurring labels first, then exact dates ascending,
// ties by id. The date column holds both forms, so ordering happens after the scan.
func (s *pgStore) ListEvents() ([]model.Event, error) {
	out := []model.Event{}
	err := s.db.Select(&out, `SELECT `+eventColumns+` FROM events ORDER BY id ASC`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list events")
		return nil, err
	}
	return model.SortEvents(out), nil
}

func (s *pgStore) GetEvent(id int64) (*model.Event, error) {
	var e model.Event
	if err := s.db.Get(&e, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *pgStore) CreateEvent(e model.Event) (*model.Event, error) {
	query := `
	INSERT INTO events (title, date, time, description, image, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, now(), now())
	RETURNING ` + eventColumns
	var out model.Event
	if err := s.db.Get(&out, query, e.Title, e.Date, e.Time, e.Description, e.Image); err != nil {
		log.Error().Err(err).Msg("failed to create event")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) UpdateEvent(e model.Event) (*model.Event, error) {
	query := `
	UPDATE events
	SET title = $2, date = $3, time = $4, description = $5, image = $6, updated_at = now()
	WHERE id = $1
	RETURNING ` + eventColumns
	var out model.Event
	if err := s.db.Get(&out, query, e.ID, e.Title, e.Date, e.Time, e.Description, e.Image); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int64("id", e.ID).Msg("failed to update event")
		}
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) DeleteEvent(id int64) error {
	res, err := s.db.Exec(`DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to delete event")
		return err
	}
	return requireAffected(res)
}

func (s *pgStore) CountEvents() (int, error) {
	var n int
	err := s.db.Get(&n, `SELECT COUNT(*) FROM events`)
	return n, err
}

// requireAffected maps a statement that touched no row to sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
