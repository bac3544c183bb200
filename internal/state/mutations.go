package state

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/gateway"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// Reconciliation per entity:
//   prayer times  patch the provided fields in place; ids are seeded and stable
//   transactions  prepend the created record, filter on delete
//   events        re-fetch the collection; date and image are normalized server-side
//   singletons    replace with the record the server returns

// UpdatePrayerTime changes only the fields set in patch.
func (s *Store) UpdatePrayerTime(ctx context.Context, id int64, patch model.PrayerTimePatch) (model.PrayerTime, error) {
	updated, err := s.gw.UpdatePrayerTime(ctx, id, patch)
	if err != nil {
		return model.PrayerTime{}, s.fail(ctx, "Failed to update prayer time", err, true)
	}

	s.mu.Lock()
	prayers := make([]model.PrayerTime, len(s.state.PrayerTimes))
	for i, p := range s.state.PrayerTimes {
		if p.ID == id {
			p = patch.Apply(p)
			updated = p
		}
		prayers[i] = p
	}
	s.state.PrayerTimes = prayers
	s.mu.Unlock()

	s.notifier.Success(fmt.Sprintf("Prayer time %s updated", updated.Name))
	return updated, nil
}

func (s *Store) CreateEvent(ctx context.Context, in gateway.EventInput) (model.Event, error) {
	ev, err := s.gw.CreateEvent(ctx, in)
	if err != nil {
		return model.Event{}, s.fail(ctx, "Failed to save event", err, false)
	}
	s.refetchEvents(ctx)
	s.notifier.Success("Event added")
	return ev, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id int64, in gateway.EventInput) (model.Event, error) {
	ev, err := s.gw.UpdateEvent(ctx, id, in)
	if err != nil {
		return model.Event{}, s.fail(ctx, "Failed to save event", err, true)
	}
	s.refetchEvents(ctx)
	s.notifier.Success("Event updated")
	return ev, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.gw.DeleteEvent(ctx, id); err != nil {
		return s.fail(ctx, "Failed to delete event", err, true)
	}
	s.refetchEvents(ctx)
	s.notifier.Success("Event deleted")
	return nil
}

// refetchEvents replaces the events collection. The write already succeeded,
// so a failed re-fetch only marks the store stale.
func (s *Store) refetchEvents(ctx context.Context) {
	events, err := s.gw.Events(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Msg("[state] re-fetch events after write failed")
		s.status.Stale = true
		s.status.LastRefreshError = err
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	s.state.Events = events
}

func (s *Store) CreateTransaction(ctx context.Context, in gateway.TransactionInput) (model.Transaction, error) {
	tx, err := s.gw.CreateTransaction(ctx, in)
	if err != nil {
		return model.Transaction{}, s.fail(ctx, "Failed to add transaction", err, false)
	}

	s.mu.Lock()
	txs := make([]model.Transaction, 0, len(s.state.Transactions)+1)
	txs = append(txs, tx)
	s.state.Transactions = append(txs, s.state.Transactions...)
	s.mu.Unlock()

	s.notifier.Success("Transaction added")
	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.gw.DeleteTransaction(ctx, id); err != nil {
		return s.fail(ctx, "Failed to delete transaction", err, true)
	}

	s.mu.Lock()
	txs := make([]model.Transaction, 0, len(s.state.Transactions))
	for _, t := range s.state.Transactions {
		if t.ID != id {
			txs = append(txs, t)
		}
	}
	s.state.Transactions = txs
	s.mu.Unlock()

	s.notifier.Success("Transaction deleted")
	return nil
}

func (s *Store) UpdateDonationInfo(ctx context.Context, in model.DonationInfo) (model.DonationInfo, error) {
	info, err := s.gw.UpdateDonationInfo(ctx, in)
	if err != nil {
		return model.DonationInfo{}, s.fail(ctx, "Failed to update donation info", err, false)
	}
	s.mu.Lock()
	s.state.DonationInfo = info
	s.mu.Unlock()

	s.notifier.Success("Donation info updated")
	return info, nil
}

func (s *Store) UpdateContactInfo(ctx context.Context, in model.ContactInfo) (model.ContactInfo, error) {
	info, err := s.gw.UpdateContactInfo(ctx, in)
	if err != nil {
		return model.ContactInfo{}, s.fail(ctx, "Failed to update contact info", err, false)
	}
	s.mu.Lock()
	s.state.ContactInfo = info
	s.mu.Unlock()

	s.notifier.Success("Contact info updated")
	return info, nil
}

func (s *Store) UpdateAboutInfo(ctx context.Context, in model.AboutContent) (model.AboutContent, error) {
	about, err := s.gw.UpdateAboutInfo(ctx, in)
	if err != nil {
		return model.AboutContent{}, s.fail(ctx, "Failed to update about info", err, false)
	}
	s.mu.Lock()
	s.state.About = about
	s.mu.Unlock()

	s.notifier.Success("About info updated")
	return about, nil
}

// fail notifies the operator and returns the error for the caller. A 404 on a
// targeted write means the record is gone: the store reloads everything and
// the returned error wraps ErrDesync.
func (s *Store) fail(ctx context.Context, what string, err error, targeted bool) error {
	if targeted && gateway.IsNotFound(err) {
		s.notifier.Error(what + ": it no longer exists on the server, reloading")
		if rerr := s.Reload(ctx); rerr != nil {
			log.Error().Err(rerr).Msg("[state] reload after desync failed")
		}
		return fmt.Errorf("%w: %w", ErrDesync, err)
	}

	msg := gateway.MessageOf(err)
	switch {
	case gateway.IsPayloadTooLarge(err):
		msg = "Image is too large"
	case msg == "":
		msg = what
	default:
		msg = what + ": " + msg
	}
	s.notifier.Error(msg)
	log.Error().Err(err).Msg("[state] " + what)
	return err
}
