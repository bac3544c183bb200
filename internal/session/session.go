// Package session holds the admin credential and the signed-in user.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/gateway"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

const LoginFailedMessage = "Login failed. Check your email and password."

var ErrUnauthenticated = errors.New("not signed in")

type Authenticator interface {
	Login(ctx context.Context, email, password string) (gateway.LoginResult, error)
	Profile(ctx context.Context) (model.Account, error)
	UpdateProfile(ctx context.Context, in gateway.ProfileUpdate) (model.Account, error)
}

type Options struct {
	// ValidateOnBoot checks a restored token with the backend before trusting it.
	ValidateOnBoot bool
}

// Session implements gateway.TokenSource.
type Session struct {
	auth  Authenticator
	store Persistence
	opts  Options

	mu      sync.RWMutex
	state   State
	token   string
	user    *model.Account
	lastErr string
}

func New(auth Authenticator, store Persistence, opts Options) *Session {
	return &Session{auth: auth, store: store, opts: opts}
}

// Init restores a persisted session. With ValidateOnBoot a token the backend
// rejects is discarded; an unreachable backend keeps the restored session.
func (s *Session) Init(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if snap == nil {
		s.set(Anonymous, "", nil)
		return nil
	}

	user := snap.User
	s.set(Authenticated, snap.Token, &user)
	if !s.opts.ValidateOnBoot {
		return nil
	}

	acct, err := s.auth.Profile(ctx)
	switch {
	case err == nil:
		s.mu.Lock()
		s.user = &acct
		s.mu.Unlock()
		return s.store.Save(ctx, Snapshot{Token: snap.Token, User: acct})
	case gateway.IsUnauthorized(err):
		log.Info().Str("email", snap.User.Email).Msg("[session] stored token rejected, signing out")
		s.set(Anonymous, "", nil)
		return s.store.Clear(ctx)
	default:
		log.Warn().Err(err).Msg("[session] could not validate stored token, keeping session")
		return nil
	}
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	s.state = Authenticating
	s.lastErr = ""
	s.mu.Unlock()

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		msg := gateway.MessageOf(err)
		if msg == "" {
			msg = LoginFailedMessage
		}
		s.mu.Lock()
		s.state = Anonymous
		s.token = ""
		s.user = nil
		s.lastErr = msg
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", msg, err)
	}

	user := res.User
	s.set(Authenticated, res.Token, &user)
	if err := s.store.Save(ctx, Snapshot{Token: res.Token, User: res.User}); err != nil {
		log.Error().Err(err).Msg("[session] failed to persist session")
	}
	return nil
}

// Logout always ends in Anonymous; persistence failures are only logged.
func (s *Session) Logout(ctx context.Context) {
	s.set(Anonymous, "", nil)
	if err := s.store.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("[session] failed to clear persisted session")
	}
}

func (s *Session) UpdateProfile(ctx context.Context, in gateway.ProfileUpdate) (model.Account, error) {
	if err := s.RequireAuthenticated(); err != nil {
		return model.Account{}, err
	}
	acct, err := s.auth.UpdateProfile(ctx, in)
	if err != nil {
		return model.Account{}, err
	}

	s.mu.Lock()
	s.user = &acct
	token := s.token
	s.mu.Unlock()

	if err := s.store.Save(ctx, Snapshot{Token: token, User: acct}); err != nil {
		log.Error().Err(err).Msg("[session] failed to persist profile")
	}
	return acct, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.Account{}, false
	}
	return *s.user, true
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastError is the message of the most recent failed login.
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Session) RequireAuthenticated() error {
	if s.State() != Authenticated {
		return ErrUnauthenticated
	}
	return nil
}

func (s *Session) set(state State, token string, user *model.Account) {
	s.mu.Lock()
	s.state = state
	s.token = token
	s.user = user
	s.mu.Unlock()
}
