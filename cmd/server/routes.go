package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/masjid/internal/config"
	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/masjid/internal/http/api/auth/endpoints"
	masjidapi "github.com/Nixie-Tech-LLC/masjid/internal/http/api/masjid/endpoints"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/masjid/internal/storage"
)

const apiPrefix = "/api"

// Dependencies are the optional collaborators; nil disables the feature.
type Dependencies struct {
	Versions  middleware.VersionSource
	Announcer middleware.Announcer
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Server, store db.Store, storageSystem storage.Storage, deps Dependencies) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"If-None-Match",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"ETag",
		},
		AllowCredentials: false,
	}))

	public := []gin.HandlerFunc{middleware.MaxBodyBytes(cfg.MaxBodyBytes)}
	if deps.Versions != nil {
		public = append(public, middleware.ETag(deps.Versions, apiPrefix))
	}

	api.MountGroup(r, api.GroupConfig{
		Prefix:     apiPrefix,
		Middleware: public,
	},
		masjidapi.PublicModule(store, storageSystem, cfg.MaxUploadBytes),
		authapi.AuthPublicModule(cfg.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    apiPrefix,
		Auth:      true,
		SecretKey: cfg.SecretKey,
		Users:     store,
		Middleware: []gin.HandlerFunc{
			middleware.MaxBodyBytes(cfg.MaxBodyBytes),
			middleware.Changed(deps.Versions, deps.Announcer, apiPrefix, "auth"),
		},
	},
		masjidapi.AdminModule(store, storageSystem, cfg.MaxUploadBytes),
		authapi.AuthSessionModule(cfg.SecretKey, store),
	)

	// Static content
	if !cfg.UseSpaces {
		r.Static("/uploads", cfg.UploadDir)
	}
}
