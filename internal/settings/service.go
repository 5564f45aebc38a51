package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voxcart/voxcart/internal/cache"
	"github.com/voxcart/voxcart/internal/models"
)

const (
	cacheKey = "app_settings"
	cacheTTL = 30 * time.Second
)

// Defaults returned before the settings row has been written.
var defaultSettings = models.AppSettings{
	FreeDailyLimit:    3,
	BasicDailyLimit:   25,
	PremiumDailyLimit: 200,
}

// Service reads and writes the single-row app settings table. Reads go
// through a short-TTL Redis cache: the TTL is the refresh boundary, so a
// settings change is visible everywhere within cacheTTL. Callers receive a
// value snapshot; nothing holds ambient global state.
type Service struct {
	db    *pgxpool.Pool
	cache *cache.Cache
}

func NewService(db *pgxpool.Pool, c *cache.Cache) *Service {
	return &Service{db: db, cache: c}
}

// Snapshot returns the current settings. Cache misses and cache errors
// fall through to the database.
func (s *Service) Snapshot(ctx context.Context) (models.AppSettings, error) {
	if s.cache != nil {
		var cached models.AppSettings
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	snap, err := s.load(ctx)
	if err != nil {
		return models.AppSettings{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, snap, cacheTTL); err != nil {
			slog.Warn("settings cache set failed", "error", err)
		}
	}
	return snap, nil
}

func (s *Service) load(ctx context.Context) (models.AppSettings, error) {
	var snap models.AppSettings
	err := s.db.QueryRow(ctx,
		`SELECT unlimited_generations_for_all, hide_pricing_features,
		        free_daily_limit, basic_daily_limit, premium_daily_limit, updated_at
		 FROM app_settings WHERE id = 1`,
	).Scan(&snap.UnlimitedGenerationsForAll, &snap.HidePricingFeatures,
		&snap.FreeDailyLimit, &snap.BasicDailyLimit, &snap.PremiumDailyLimit, &snap.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return defaultSettings, nil
	}
	if err != nil {
		return models.AppSettings{}, fmt.Errorf("load app settings: %w", err)
	}
	return snap, nil
}

// Update writes the settings row and drops the cached snapshot.
func (s *Service) Update(ctx context.Context, snap models.AppSettings) (models.AppSettings, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO app_settings (id, unlimited_generations_for_all, hide_pricing_features,
		                           free_daily_limit, basic_daily_limit, premium_daily_limit, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, now())
		 ON CONFLICT (id) DO UPDATE SET
		   unlimited_generations_for_all = EXCLUDED.unlimited_generations_for_all,
		   hide_pricing_features = EXCLUDED.hide_pricing_features,
		   free_daily_limit = EXCLUDED.free_daily_limit,
		   basic_daily_limit = EXCLUDED.basic_daily_limit,
		   premium_daily_limit = EXCLUDED.premium_daily_limit,
		   updated_at = now()
		 RETURNING unlimited_generations_for_all, hide_pricing_features,
		           free_daily_limit, basic_daily_limit, premium_daily_limit, updated_at`,
		snap.UnlimitedGenerationsForAll, snap.HidePricingFeatures,
		snap.FreeDailyLimit, snap.BasicDailyLimit, snap.PremiumDailyLimit,
	).Scan(&snap.UnlimitedGenerationsForAll, &snap.HidePricingFeatures,
		&snap.FreeDailyLimit, &snap.BasicDailyLimit, &snap.PremiumDailyLimit, &snap.UpdatedAt)
	if err != nil {
		return models.AppSettings{}, fmt.Errorf("update app settings: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			slog.Warn("settings cache invalidation failed", "error", err)
		}
	}
	return snap, nil
}
