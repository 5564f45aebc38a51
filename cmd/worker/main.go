package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/voxcart/voxcart/internal/cache"
	"github.com/voxcart/voxcart/internal/config"
	"github.com/voxcart/voxcart/internal/copywriter"
	"github.com/voxcart/voxcart/internal/database"
	"github.com/voxcart/voxcart/internal/generation"
	"github.com/voxcart/voxcart/internal/profile"
	"github.com/voxcart/voxcart/internal/queue"
	"github.com/voxcart/voxcart/internal/queue/workers"
	"github.com/voxcart/voxcart/internal/quota"
	"github.com/voxcart/voxcart/internal/settings"
	"github.com/voxcart/voxcart/internal/storage"
	"github.com/voxcart/voxcart/internal/tts"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	settingsSvc := settings.NewService(db, cache.NewCache(rdb))
	profileSvc := profile.NewService(db, settingsSvc)
	accountant := quota.NewAccountant(quota.NewPGCountStore(db), profileSvc)
	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	jobs := generation.NewService(db, queueClient)
	store := storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey, cfg.Storage.Bucket)
	synth := generation.NewSynthesizer(
		jobs,
		copywriter.NewService(cfg.Copy),
		tts.NewOpenAITTS(cfg.TTS),
		store,
		accountant,
	)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()
	registry.Register(queue.TypeGenerationSynthesize, asynq.HandlerFunc(workers.NewGenerationWorker(synth).ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
