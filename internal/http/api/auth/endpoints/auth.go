package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api/auth/packets"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// AuthPublicModule mounts POST /auth/login.
func AuthPublicModule(jwtSecret string, store db.Store) api.Module {
	ctl := newAccountManager(jwtSecret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/auth/login", ctl.userLogin)
	})
}

// AuthSessionModule mounts the profile endpoints (JWT required).
func AuthSessionModule(jwtSecret string, store db.Store) api.Module {
	ctl := newAccountManager(jwtSecret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/profile", ctl.getProfile)
		c.PUT("/auth/profile", ctl.updateProfile)
	})
}

type AccountManager struct {
	jwtSecret string
	store     db.Store
}

func newAccountManager(secret string, store db.Store) *AccountManager {
	return &AccountManager{jwtSecret: secret, store: store}
}

// POST /api/auth/login
func (a *AccountManager) userLogin(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}

	user, err := a.store.GetUserByEmail(strings.TrimSpace(request.Email))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, api.NewError(http.StatusInternalServerError, "could not look up user")
	}
	if user == nil || !middleware.CheckPassword(user.HashedPassword, request.Password) {
		log.Warn().Str("email", request.Email).Msg("[auth] failed login")
		return nil, api.NewError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := middleware.GenerateJWT(user.ID, a.jwtSecret)
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not generate token")
	}

	return packets.LoginResponse{Token: token, User: user.Account()}, nil
}

// GET /api/auth/profile
func (a *AccountManager) getProfile(_ *gin.Context, user *model.User) (any, *api.APIError) {
	return user.Account(), nil
}

// PUT /api/auth/profile
func (a *AccountManager) updateProfile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.UpdateProfileRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}

	var name, hashed *string
	if request.Name != nil && strings.TrimSpace(*request.Name) != "" {
		trimmed := strings.TrimSpace(*request.Name)
		name = &trimmed
	}
	if request.Password != nil && strings.TrimSpace(*request.Password) != "" {
		h, err := middleware.HashPassword(*request.Password)
		if err != nil {
			return nil, api.NewError(http.StatusInternalServerError, "could not hash password")
		}
		hashed = &h
	}

	updated, err := a.store.UpdateUserProfile(user.ID, name, hashed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.NewError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not update profile")
	}
	return updated.Account(), nil
}
