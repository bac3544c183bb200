package db

import (
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

const transactionColumns = `id, title, amount, type, to_char(date, 'YYYY-MM-DD') AS date, category, created_at`

func (s *pgStore) ListTransactions() ([]model.Transaction, error) {
	out := []model.Transaction{}
	err := s.db.Select(&out, `SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, created_at DESC`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list transactions")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) CreateTransaction(t model.Transaction) (*model.Transaction, error) {
	query := `
	INSERT INTO transactions (title, amount, type, date, category, created_at)
	VALUES ($1, $2, $3, $4, $5, now())
	RETURNING ` + transactionColumns
	var out model.Transaction
	if err := s.db.Get(&out, query, t.Title, t.Amount, string(t.Type), t.Date, t.Category); err != nil {
		log.Error().Err(err).Msg("failed to create transaction")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) DeleteTransaction(id int64) error {
	res, err := s.db.Exec(`DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to delete transaction")
		return err
	}
	return requireAffected(res)
}

func (s *pgStore) CountTransactions() (int, error) {
	var n int
	err := s.db.Get(&n, `SELECT COUNT(*) FROM transactions`)
	return n, err
}
