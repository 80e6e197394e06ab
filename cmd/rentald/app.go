package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-rental-core/internal/catalog"
	"github.com/tbourn/go-rental-core/internal/config"
	httpapi "github.com/tbourn/go-rental-core/internal/http"
	"github.com/tbourn/go-rental-core/internal/http/handlers"
	"github.com/tbourn/go-rental-core/internal/kv"
	"github.com/tbourn/go-rental-core/internal/navigation"
	"github.com/tbourn/go-rental-core/internal/repo"
	"github.com/tbourn/go-rental-core/internal/services"
)

// memoryDSN keeps idempotency records in-process when KV_BACKEND=memory.
const memoryDSN = "file:rentald?mode=memory&cache=shared"

// app owns the storage handles and services of one process.
type app struct {
	cfg     config.Config
	db      *gorm.DB // idempotency records, and the KV table for sqlite
	store   kv.Store
	catalog *catalog.Catalog
	replays *repo.IdempotencyStore

	ratings   *services.RatingService
	comments  *services.CommentService
	favorites *services.FavoritesService

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	dsn := cfg.KV.DBPath
	if cfg.KV.Backend == "memory" {
		dsn = memoryDSN
	}
	db, err := repo.OpenSQLite(dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	a.db = db
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	switch cfg.KV.Backend {
	case "memory":
		a.store = kv.NewMemory()
	case "redis":
		r, err := kv.OpenRedis(ctx, cfg.KV.RedisURL, cfg.KV.RedisPrefix)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.store = r
		a.closers = append(a.closers, r.Close)
	default:
		a.store = repo.NewKVStore(db)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.catalog = cat

	a.replays = repo.NewIdempotencyStore(db, cfg.IdempotencyTTL)
	a.ratings = services.NewRatingService(a.store)
	a.comments = services.NewCommentService(a.store, a.ratings)
	a.comments.MaxTextRunes = cfg.MaxCommentRunes
	a.favorites = services.NewFavoritesService(a.store)
	return a, nil
}

// Engine builds the Gin engine with every route mounted.
func (a *app) Engine() *gin.Engine {
	r := gin.New()
	nav := navigation.NewResolver(nil, navigation.ParsePlatform(a.cfg.Nav.Platform))
	nav.Preferred = navigation.ParseProvider(a.cfg.Nav.Preference)

	httpapi.RegisterRoutes(r, httpapi.Deps{
		Deps: handlers.Deps{
			Ratings:    a.ratings,
			Comments:   a.comments,
			Favorites:  a.favorites,
			Catalog:    a.catalog,
			Navigation: *nav,
		},
		Replays: a.replays,
	}, a.cfg)
	return r
}

// purgeIdempotency drops expired replay records every interval until ctx ends.
func (a *app) purgeIdempotency(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := a.replays.Purge(ctx, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("idempotency records purged")
			}
		}
	}
}

// Close releases storage handles in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
	a.closers = nil
}
