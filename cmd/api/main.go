package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chronomate/chronomate/internal/activity"
	"github.com/chronomate/chronomate/internal/api"
	"github.com/chronomate/chronomate/internal/assistant"
	"github.com/chronomate/chronomate/internal/auth"
	"github.com/chronomate/chronomate/internal/chat"
	"github.com/chronomate/chronomate/internal/config"
	"github.com/chronomate/chronomate/internal/database"
	"github.com/chronomate/chronomate/internal/llm"
	"github.com/chronomate/chronomate/internal/memory"
	mw "github.com/chronomate/chronomate/internal/middleware"
	inats "github.com/chronomate/chronomate/internal/nats"
	"github.com/chronomate/chronomate/internal/orchestrator"
	"github.com/chronomate/chronomate/internal/planner"
	"github.com/chronomate/chronomate/internal/quota"
	iredis "github.com/chronomate/chronomate/internal/redis"
	"github.com/chronomate/chronomate/internal/server"
	"github.com/chronomate/chronomate/internal/users"
	ixmpp "github.com/chronomate/chronomate/internal/xmpp"
	"github.com/chronomate/chronomate/migrations"
)

var errNATSDisconnected = errors.New("nats disconnected")

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := run(cfg); err != nil {
		slog.Error("chronomate stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.RunMigrations(cfg.DB.DSN(), migrations.FS); err != nil {
		return err
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	readiness := []api.ReadinessCheck{
		{Name: "database", Check: func(ctx context.Context) error { return database.HealthCheck(ctx, pool) }},
		{Name: "redis", Check: func(ctx context.Context) error { return iredis.HealthCheck(ctx, redisClient) }},
	}

	// NATS is optional; without it there is no chat gateway and no activity log.
	var (
		natsClient  *inats.Client
		publisher   *inats.Publisher
		consumerMgr *inats.ConsumerManager
		sink        planner.EventSink
	)
	if cfg.NATS.Enabled() {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			return err
		}
		defer natsClient.Close()

		publisher = inats.NewPublisher(natsClient.JetStream())
		consumerMgr = inats.NewConsumerManager(natsClient.JetStream())
		sink = publisher
		readiness = append(readiness, api.ReadinessCheck{
			Name:     "nats",
			Optional: true,
			Check: func(context.Context) error {
				if !natsClient.Healthy() {
					return errNATSDisconnected
				}
				return nil
			},
		})
	}

	// Auth and accounts
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)
	userSvc := users.NewService(users.NewRepository(pool))
	authHandler := auth.NewHandler(authSvc, userSvc)

	// Planner
	plannerSvc := planner.NewService(planner.NewRepository(pool), sink)
	plannerHandler := planner.NewHandler(plannerSvc)

	// Assistant
	quotaSvc := quota.NewService(redisClient, quota.Limits{PerMinute: cfg.Quota.PerMinute, PerDay: cfg.Quota.PerDay})
	var (
		backend assistant.Backend
		budget  chat.Budget
	)
	if cfg.LLM.Enabled() {
		client, err := llm.NewClient(llm.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Timeout:     cfg.LLM.Timeout,
			Temperature: cfg.LLM.Temperature,
		})
		if err != nil {
			return err
		}
		backend, budget = client, quotaSvc
		slog.Info("generative replies enabled", "provider", cfg.LLM.Provider, "model", client.Model())
	}
	chatSvc := chat.NewService(
		assistant.New(nil, backend),
		plannerSvc,
		memory.NewHistoryStore(redisClient, cfg.Chat.HistoryTTL),
		budget,
	)
	chatHandler := chat.NewHandler(chatSvc)

	activityRepo := activity.NewRepository(pool)

	routerCfg := api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Readiness:          readiness,
	}
	if cfg.Server.AuthRateLimit > 0 {
		routerCfg.AuthRateLimiter = mw.NewRateLimiter(redisClient, "auth", cfg.Server.AuthRateLimit, time.Minute).Middleware
	}

	handlers := api.HandlerSet{
		Register:       authHandler.Register,
		Login:          authHandler.Login,
		Refresh:        authHandler.Refresh,
		Logout:         authHandler.Logout,
		Me:             authHandler.Me,
		LinkJID:        authHandler.LinkJID,
		UnlinkJID:      authHandler.UnlinkJID,
		ChatRoutes:     chatHandler.Routes,
		PlannerRoutes:  plannerHandler.Routes,
		GetQuota:       quota.NewHandler(quotaSvc).Get,
		ListActivity:   activity.NewHandler(activityRepo).List,
		AuthMiddleware: auth.Middleware(jwtManager),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.New(cfg.Server, api.NewRouter(routerCfg, handlers)).Run(ctx)
	})

	if natsClient != nil {
		g.Go(func() error {
			return activity.NewConsumer(activityRepo, consumerMgr).Start(ctx)
		})

		orch := orchestrator.NewOrchestrator(
			publisher,
			consumerMgr,
			orchestrator.NewValidator(cfg.XMPP.ComponentName),
			orchestrator.NewRouter(userSvc),
			chatSvc,
		)
		g.Go(func() error { return orch.Start(ctx) })
	}

	if cfg.XMPP.Enabled {
		xmppHandler := ixmpp.NewHandler(publisher)
		component, err := ixmpp.NewComponent(cfg.XMPP, xmppHandler)
		if err != nil {
			return err
		}
		relay := ixmpp.NewOutboundRelay(xmppHandler, component.Sender(), consumerMgr)

		g.Go(func() error { return component.Start(ctx) })
		g.Go(func() error { return relay.Start(ctx) })
	}

	return g.Wait()
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
