package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

const (
	donationColumns = `id, bank_name, account_number, account_name, qris_image, confirmation_phone`
	contactColumns  = `id, address, map_embed_link, phone, email, operational_hours, facebook, instagram, youtube`
	aboutColumns    = `id, history, vision, mission, image`
)

// GetDonationInfo returns the single row, creating it from defaults first if needed.
func (s *pgStore) GetDonationInfo() (*model.DonationInfo, error) {
	var out model.DonationInfo
	err := s.db.Get(&out, `SELECT `+donationColumns+` FROM donation_info ORDER BY id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return s.insertDonationInfo(model.DefaultDonationInfo())
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to get donation info")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) insertDonationInfo(in model.DonationInfo) (*model.DonationInfo, error) {
	query := `
	INSERT INTO donation_info (bank_name, account_number, account_name, qris_image, confirmation_phone)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + donationColumns
	var out model.DonationInfo
	if err := s.db.Get(&out, query, in.BankName, in.AccountNumber, in.AccountName, in.QrisImage, in.ConfirmationPhone); err != nil {
		log.Error().Err(err).Msg("failed to create donation info")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) UpsertDonationInfo(in model.DonationInfo) (*model.DonationInfo, error) {
	current, err := s.GetDonationInfo()
	if err != nil {
		return nil, err
	}
	query := `
	UPDATE donation_info
	SET bank_name = $2, account_number = $3, account_name = $4, qris_image = $5, confirmation_phone = $6
	WHERE id = $1
	RETURNING ` + donationColumns
	var out model.DonationInfo
	if err := s.db.Get(&out, query, current.ID, in.BankName, in.AccountNumber, in.AccountName, in.QrisImage, in.ConfirmationPhone); err != nil {
		log.Error().Err(err).Msg("failed to update donation info")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) GetContactInfo() (*model.ContactInfo, error) {
	var out model.ContactInfo
	err := s.db.Get(&out, `SELECT `+contactColumns+` FROM contact_info ORDER BY id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return s.insertContactInfo(model.DefaultContactInfo())
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to get contact info")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) insertContactInfo(in model.ContactInfo) (*model.ContactInfo, error) {
	query := `
	INSERT INTO contact_info (address, map_embed_link, phone, email, operational_hours, facebook, instagram, youtube)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + contactColumns
	var out model.ContactInfo
	err := s.db.Get(&out, query, in.Address, in.MapEmbedLink, in.Phone, in.Email,
		in.OperationalHours, in.Facebook, in.Instagram, in.Youtube)
	if err != nil {
		log.Error().Err(err).Msg("failed to create contact info")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) UpsertContactInfo(in model.ContactInfo) (*model.ContactInfo, error) {
	current, err := s.GetContactInfo()
	if err != nil {
		return nil, err
	}
	query := `
	UPDATE contact_info
	SET address = $2, map_embed_link = $3, phone = $4, email = $5,
	    operational_hours = $6, facebook = $7, instagram = $8, youtube = $9
	WHERE id = $1
	RETURNING ` + contactColumns
	var out model.ContactInfo
	err = s.db.Get(&out, query, current.ID, in.Address, in.MapEmbedLink, in.Phone, in.Email,
		in.OperationalHours, in.Facebook, in.Instagram, in.Youtube)
	if err != nil {
		log.Error().Err(err).Msg("failed to update contact info")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) GetAboutContent() (*model.AboutContent, error) {
	var out model.AboutContent
	err := s.db.Get(&out, `SELECT `+aboutColumns+` FROM about_content ORDER BY id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return s.insertAboutContent(model.DefaultAbout())
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to get about content")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) insertAboutContent(in model.AboutContent) (*model.AboutContent, error) {
	query := `
	INSERT INTO about_content (history, vision, mission, image)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + aboutColumns
	var out model.AboutContent
	if err := s.db.Get(&out, query, in.History, in.Vision, in.Mission, in.Image); err != nil {
		log.Error().Err(err).Msg("failed to create about content")
		return nil, err
	}
	return &out, nil
}

func (s *pgStore) UpsertAboutContent(in model.AboutContent) (*model.AboutContent, error) {
	current, err := s.GetAboutContent()
	if err != nil {
		return nil, err
	}
	query := `
	UPDATE about_content
	SET history = $2, vision = $3, mission = $4, image = $5
	WHERE id = $1
	RETURNING ` + aboutColumns
	var out model.AboutContent
	if err := s.db.Get(&out, query, current.ID, in.History, in.Vision, in.Mission, in.Image); err != nil {
		log.Error().Err(err).Msg("failed to update about content")
		return nil, err
	}
	return &out, nil
}
