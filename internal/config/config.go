package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/scythe504/photoguessr-backend/internal"
	"github.com/scythe504/photoguessr-backend/internal/game"
)

type PhotoBackend string

const (
	PhotoBackendMemory   PhotoBackend = "memory"
	PhotoBackendPostgres PhotoBackend = "postgres"
	PhotoBackendMongo    PhotoBackend = "mongo"
)

type Config struct {
	Port           string
	LogLevel       string
	LogJSON        bool
	AllowedOrigins []string

	PhotoStore      PhotoBackend
	PhotosCSV       string
	DatabaseURL     string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RedisChanPrefix string

	Game            game.Options
	RoomIdleTimeout time.Duration
	CleanupInterval time.Duration
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function, so tests need not touch
// the real environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		Port:            p.str("PORT", "8080"),
		LogLevel:        p.str("LOG_LEVEL", "info"),
		LogJSON:         strings.EqualFold(p.str("LOG_FORMAT", "console"), "json"),
		AllowedOrigins:  p.list("ALLOWED_ORIGINS", []string{"*"}),
		PhotoStore:      PhotoBackend(strings.ToLower(p.str("PHOTO_STORE", string(PhotoBackendMemory)))),
		PhotosCSV:       p.str("PHOTOS_CSV", "data/photos.csv"),
		DatabaseURL:     p.str("DATABASE_URL", ""),
		MongoURI:        p.str("MONGODB_URI", ""),
		MongoDatabase:   p.str("MONGODB_DATABASE", "photoguessr"),
		RedisAddr:       p.str("REDIS_ADDR", ""),
		RedisChanPrefix: p.str("REDIS_CHANNEL_PREFIX", "photoguessr"),
		Game: game.Options{
			TotalRounds:    p.integer("TOTAL_ROUNDS", internal.MaxRounds),
			MinPlayers:     p.integer("MIN_PLAYERS", internal.MinPlayersToStart),
			MaxPlayers:     p.integer("MAX_PLAYERS", internal.MaxPlayersPerRoom),
			RoundDuration:  p.duration("ROUND_DURATION", internal.DefaultRoundDuration),
			CountdownTicks: p.integer("COUNTDOWN_TICKS", internal.DefaultCountdownTicks),
			TickInterval:   p.duration("TICK_INTERVAL", internal.DefaultTickInterval),
			AdvanceDelay:   p.duration("ADVANCE_DELAY", internal.DefaultAdvanceDelay),
			PhotoTimeout:   p.duration("PHOTO_TIMEOUT", game.DefaultOptions().PhotoTimeout),
		},
		RoomIdleTimeout: p.duration("ROOM_IDLE_TIMEOUT", internal.DefaultRoomIdleTimeout),
		CleanupInterval: p.duration("CLEANUP_INTERVAL", 5*time.Minute),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.PhotoStore {
	case PhotoBackendMemory:
	case PhotoBackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when PHOTO_STORE=postgres"))
		}
	case PhotoBackendMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when PHOTO_STORE=mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("PHOTO_STORE: unknown backend %q", c.PhotoStore))
	}

	g := c.Game
	if g.TotalRounds < 1 {
		errs = append(errs, fmt.Errorf("TOTAL_ROUNDS must be at least 1, got %d", g.TotalRounds))
	}
	if g.MinPlayers < 1 {
		errs = append(errs, fmt.Errorf("MIN_PLAYERS must be at least 1, got %d", g.MinPlayers))
	}
	if g.MaxPlayers < g.MinPlayers {
		errs = append(errs, fmt.Errorf("MAX_PLAYERS (%d) is below MIN_PLAYERS (%d)", g.MaxPlayers, g.MinPlayers))
	}
	if g.CountdownTicks < 0 {
		errs = append(errs, fmt.Errorf("COUNTDOWN_TICKS must not be negative, got %d", g.CountdownTicks))
	}
	for name, d := range map[string]time.Duration{
		"ROUND_DURATION":    g.RoundDuration,
		"TICK_INTERVAL":     g.TickInterval,
		"ADVANCE_DELAY":     g.AdvanceDelay,
		"PHOTO_TIMEOUT":     g.PhotoTimeout,
		"ROOM_IDLE_TIMEOUT": c.RoomIdleTimeout,
		"CLEANUP_INTERVAL":  c.CleanupInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	return errors.Join(errs...)
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) list(key string, def []string) []string {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (p *parser) integer(key string, def int) int {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		return def
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, raw))
		return def
	}
	return v
}
