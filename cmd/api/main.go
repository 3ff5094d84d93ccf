// Main api binary: loads configuration, wires storage, bus and listeners,
// and serves the voting HTTP API with health and metrics endpoints.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/awards/internal/app/bus"
	"github.com/marcelojr/awards/internal/app/httpapi"
	"github.com/marcelojr/awards/internal/app/listeners"
	"github.com/marcelojr/awards/internal/app/results"
	"github.com/marcelojr/awards/internal/app/voting"
	"github.com/marcelojr/awards/internal/domain"
	"github.com/marcelojr/awards/internal/platform/clock"
	"github.com/marcelojr/awards/internal/platform/config"
	"github.com/marcelojr/awards/internal/platform/health"
	"github.com/marcelojr/awards/internal/platform/ids"
	"github.com/marcelojr/awards/internal/platform/logger"
	"github.com/marcelojr/awards/internal/platform/migrations"
	"github.com/marcelojr/awards/internal/platform/ratelimit"
	postgresstorage "github.com/marcelojr/awards/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/awards/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("invalid timezone", "err", err)
	}

	// The GORM connection is shared across the whole lifecycle to reuse the
	// pool and back the readiness probe.
	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("postgres connection failed", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("sql.DB unwrap failed", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		// Automatic migrations only when enabled, to avoid production surprises.
		if err := migrations.Run(db); err != nil {
			logger.Fatal("automatic migration failed", "err", err)
		}
	}

	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis connection failed", "err", err)
	}
	defer redisClient.Close()

	eventRepo := postgresstorage.NewEventRepository(db)
	categoryRepo := postgresstorage.NewCategoryRepository(db)
	nomineeRepo := postgresstorage.NewNomineeRepository(db)
	voterRepo := postgresstorage.NewVoterRepository(db)
	ballotRepo := postgresstorage.NewBallotRepository(db)
	systemClock := clock.NewSystemClock(loc)
	idGen := ids.NewGenerator()

	var limiter domain.RateLimiter = ratelimit.NewNoop()
	if cfg.RateLimitEnabled {
		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimitMaxCasts, window, cfg.RateLimitKeyPrefix)
	}

	tally := results.NewTally(eventRepo, categoryRepo, nomineeRepo, ballotRepo, loc)

	// Listener registration order is dispatch order: audit first, then live
	// counters, then the dashboard recalculation.
	var busOpts []bus.Option
	if cfg.ListenerTimeout > 0 {
		busOpts = append(busOpts, bus.WithListenerTimeout(cfg.ListenerTimeout))
	}
	notifier := bus.New(logger.L(), busOpts...)

	audit := listeners.NewAuditLog(logger.L())
	liveCounters := listeners.NewLiveCounters()
	dashboard := listeners.NewDashboard(tally, systemClock, cfg.LeaderboardSize)
	notifier.Subscribe(audit)
	notifier.Subscribe(liveCounters)
	notifier.Subscribe(dashboard)

	// Seed the live counters from the ledger so dashboards start from real
	// baselines after a restart.
	if err := liveCounters.Rebuild(ctx, ballotRepo); err != nil {
		logger.Error("live counters rebuild failed", "err", err)
	}

	engine := voting.NewEngine(
		eventRepo,
		categoryRepo,
		nomineeRepo,
		voterRepo,
		ballotRepo,
		limiter,
		systemClock,
		notifier,
		idGen,
	)

	mux := http.NewServeMux()
	checker := health.NewChecker(sqlDB, redisClient)

	api := httpapi.New(engine, tally, dashboard, liveCounters, logger.L())
	api.Register(mux)
	mux.HandleFunc("/readyz", checker.ReadyHandler())
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("api listening", "addr", cfg.HTTPAddress)
	if err := http.ListenAndServe(cfg.HTTPAddress, mux); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
