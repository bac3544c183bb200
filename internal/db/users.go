package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

const userColumns = `id, email, hashed_password, name, created_at, updated_at`

func (s *pgStore) CreateUser(email, hashedPassword, name string) (int64, error) {
	query := `
	INSERT INTO users (email, hashed_password, name, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id;
	`
	var id int64
	if err := s.db.QueryRow(query, email, hashedPassword, name).Scan(&id); err != nil {
		log.Error().Err(err).Str("email", email).Msg("failed to create user")
		return 0, err
	}
	return id, nil
}

func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Msg("failed to get user by email")
		}
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) GetUserByID(id int64) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int64("id", id).Msg("failed to get user by id")
		}
		return nil, err
	}
	return &u, nil
}

// UpdateUserProfile changes the non-nil fields and returns the stored user.
func (s *pgStore) UpdateUserProfile(id int64, name, hashedPassword *string) (*model.User, error) {
	query := `
	UPDATE users
	SET name = COALESCE($2, name),
	    hashed_password = COALESCE($3, hashed_password),
	    updated_at = now()
	WHERE id = $1
	RETURNING ` + userColumns
	var u model.User
	if err := s.db.Get(&u, query, id, name, hashedPassword); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int64("id", id).Msg("failed to update user profile")
		}
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) CountUsers() (int, error) {
	var n int
	err := s.db.Get(&n, `SELECT COUNT(*) FROM users`)
	return n, err
}
