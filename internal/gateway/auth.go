package gateway

import (
	"context"
	"net/http"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

type LoginResult struct {
	Token string        `json:"token"`
	User  model.Account `json:"user"`
}

// ProfileUpdate changes only the non-nil fields.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

func (c *Client) Profile(ctx context.Context) (model.Account, error) {
	var out model.Account
	if err := c.sendJSON(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return model.Account{}, err
	}
	return out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (model.Account, error) {
	var out model.Account
	if err := c.sendJSON(ctx, http.MethodPut, "/auth/profile", in, &out); err != nil {
		return model.Account{}, err
	}
	return out, nil
}
