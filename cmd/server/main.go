package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/scythe504/photoguessr-backend/internal/config"
	"github.com/scythe504/photoguessr-backend/internal/game"
	"github.com/scythe504/photoguessr-backend/internal/logger"
	"github.com/scythe504/photoguessr-backend/internal/metrics"
	"github.com/scythe504/photoguessr-backend/internal/relay"
	"github.com/scythe504/photoguessr-backend/internal/server"
	"github.com/scythe504/photoguessr-backend/internal/storage"
	"github.com/scythe504/photoguessr-backend/internal/storage/migrations"
	"github.com/scythe504/photoguessr-backend/internal/utils"
	"github.com/scythe504/photoguessr-backend/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("[main] server stopped with error")
	}
	log.Info().Msg("[main] server exited")
}

func run(ctx context.Context, cfg *config.Config) error {
	photos, closePhotos, err := openPhotoStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePhotos()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store := game.NewStore()
	hub := websocket.NewHub()

	var bc game.Broadcaster = hub
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		bc = game.MultiBroadcaster{hub, relay.NewRedisBroadcaster(rdb, cfg.RedisChanPrefix)}
		log.Info().Str("addr", cfg.RedisAddr).Str("prefix", cfg.RedisChanPrefix).Msg("[main] relaying room events to redis")
	}

	manager := game.NewManager(store, photos, bc, cfg.Game, game.WithRecorder(metrics.New(reg, store)))

	srv := server.New(server.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		RoomIdle:       cfg.RoomIdleTimeout,
	}, manager, photos, hub, reg)
	httpServer := srv.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("photoStore", string(cfg.PhotoStore)).Msg("[main] server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return manager.RunSweeper(gctx, cfg.CleanupInterval, cfg.RoomIdleTimeout)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("[main] shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openPhotoStore builds the configured backend. Database backends are seeded
// from the CSV pool when they are empty.
func openPhotoStore(ctx context.Context, cfg *config.Config) (game.PhotoStore, func(), error) {
	switch cfg.PhotoStore {
	case config.PhotoBackendPostgres:
		if err := migrations.Migrate(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		store, err := storage.NewPostgresPhotoStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		seedFromCSV(ctx, store, cfg.PhotosCSV)
		return store, store.Close, nil

	case config.PhotoBackendMongo:
		store, err := storage.NewMongoPhotoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		seedFromCSV(ctx, store, cfg.PhotosCSV)
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := store.Close(closeCtx); err != nil {
				log.Warn().Err(err).Msg("[main] mongo disconnect failed")
			}
		}
		return store, closeFn, nil

	default:
		photos, err := utils.ReadPhotosCSV(cfg.PhotosCSV)
		if err != nil {
			return nil, nil, err
		}
		if len(photos) == 0 {
			log.Warn().Str("file", cfg.PhotosCSV).Msg("[main] photo pool is empty, rooms cannot be created")
		}
		log.Info().Int("photos", len(photos)).Msg("[main] in-memory photo pool loaded")
		return storage.NewMemoryPhotoStore(photos), func() {}, nil
	}
}

func seedFromCSV(ctx context.Context, store storage.Seedable, path string) {
	if path == "" {
		return
	}
	photos, err := utils.ReadPhotosCSV(path)
	if err != nil {
		log.Warn().Err(err).Msg("[main] skipping seed, photos file unreadable")
		return
	}
	if _, err := storage.SeedIfEmpty(ctx, store, photos); err != nil {
		log.Warn().Err(err).Msg("[main] seeding photo store failed")
	}
}
