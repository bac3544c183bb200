package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/broker"
	"github.com/Nixie-Tech-LLC/masjid/internal/config"
	"github.com/Nixie-Tech-LLC/masjid/internal/db"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	masjidredis "github.com/Nixie-Tech-LLC/masjid/internal/redis"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	// initialize PostgreSQL
	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(db.DB, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	store := db.NewStore(db.DB)
	if err := seed(store, cfg); err != nil {
		log.Fatal().Err(err).Msg("db seed")
	}

	deps := Dependencies{}
	if cfg.RedisAddress != "" {
		rdb := masjidredis.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		if err := masjidredis.Ping(context.Background(), rdb); err != nil {
			log.Warn().Err(err).Str("address", cfg.RedisAddress).Msg("redis unavailable, ETags disabled")
		} else {
			deps.Versions = masjidredis.NewVersions(rdb, 24*time.Hour)
		}
	}
	if cfg.MQTTBrokerURL != "" {
		b, err := broker.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			log.Warn().Err(err).Msg("mqtt unavailable, change announcements disabled")
		} else {
			defer b.Close()
			deps.Announcer = b
		}
	}

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	RegisterRoutes(r, cfg, store, InitStorage(cfg), deps)

	log.Info().Str("address", cfg.ServerAddress).Msg("listening")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func setupLogging(cfg *config.Server) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Development() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func seed(store db.Store, cfg *config.Server) error {
	hash, err := middleware.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	return db.Seed(store, db.SeedConfig{
		AdminName:         cfg.AdminName,
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: hash,
		Today:             time.Now(),
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("[http] request")
	}
}
