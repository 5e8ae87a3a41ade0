package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/holon/witness/internal/api"
	"github.com/holon/witness/internal/command"
	"github.com/holon/witness/internal/config"
	"github.com/holon/witness/internal/engine"
	"github.com/holon/witness/internal/gateway"
	"github.com/holon/witness/internal/provider"
	msgrouter "github.com/holon/witness/internal/router"
	"github.com/holon/witness/internal/session"
	pgstore "github.com/holon/witness/internal/store"
	"github.com/holon/witness/internal/thoughtlog"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting Recursive Witness...")

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/witness.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("Config loaded", zap.String("path", cfgPath))

	// Initialize provider router
	router := provider.NewRouter(logger)
	for _, pc := range cfg.Providers {
		provCfg := provider.Config{
			ID: pc.ID, Type: pc.Type, Name: pc.Name,
			Endpoint: pc.Endpoint, APIKey: pc.APIKey,
		}
		switch pc.Type {
		case "ollama":
			router.Register(provider.NewOllamaProvider(provCfg, logger))
		case "openai":
			router.Register(provider.NewOpenAIProvider(provCfg, logger))
		default:
			logger.Warn("unknown provider type", zap.String("id", pc.ID), zap.String("type", pc.Type))
		}
	}
	if len(router.ListProviders()) == 0 {
		// Local Ollama daemon is the out-of-the-box default.
		router.Register(provider.NewOllamaProvider(provider.Config{ID: "local", Name: "ollama"}, logger))
	}

	// Thought log (NDJSON, one file per day)
	thoughtLog, err := thoughtlog.NewWriter(cfg.Engine.LogDir, logger)
	if err != nil {
		logger.Fatal("failed to open thought log", zap.Error(err))
	}

	// Recursion engine
	eng := engine.New(router, thoughtLog, cfg.Engine.Model, logger)
	eng.SetContinueOnError(cfg.Engine.ContinueOnError)

	// Optional PostgreSQL thought archive
	var archive *pgstore.Store
	if cfg.Database.Postgres.DSN != "" {
		ps, pgErr := pgstore.New(cfg.Database.Postgres.DSN, logger)
		if pgErr != nil {
			logger.Warn("PostgreSQL unavailable, running without archive", zap.Error(pgErr))
		} else {
			if mErr := ps.Migrate(context.Background(), "migrations"); mErr != nil {
				logger.Fatal("migration failed", zap.Error(mErr))
			}
			archive = ps
			eng.SetArchiver(ps)
		}
	}

	// Session mode store: Redis when configured, in-memory otherwise
	var modeStore session.ModeStore
	var redisModes *session.RedisModeStore
	if cfg.Database.Redis.URL != "" {
		rs, rErr := session.NewRedisModeStore(cfg.Database.Redis.URL, logger)
		if rErr != nil {
			logger.Warn("Redis unavailable, using in-memory mode store", zap.Error(rErr))
			modeStore = session.NewMemoryModeStore()
		} else {
			redisModes = rs
			modeStore = rs
		}
	} else {
		modeStore = session.NewMemoryModeStore()
	}

	// Chat commands
	commands := command.NewRegistry()
	command.RegisterBuiltins(commands, eng, modeStore)

	// Initialize gateway; wire the message router BEFORE registering
	// adapters (Register captures the handler).
	gw := gateway.NewGateway(logger)
	msgRouter := msgrouter.New(gw, commands, logger)
	gw.SetHandler(msgRouter.Handle)

	restAdapter := gateway.NewRESTAdapter(logger)
	gw.Register(restAdapter)

	if cfg.Gateway.Discord.Enabled && cfg.Gateway.Discord.BotToken != "" {
		gw.Register(gateway.NewDiscordAdapter(cfg.Gateway.Discord.BotToken, logger))
	}
	if cfg.Gateway.Slack.Enabled && cfg.Gateway.Slack.BotToken != "" {
		gw.Register(gateway.NewSlackAdapter(cfg.Gateway.Slack.BotToken, cfg.Gateway.Slack.AppToken, logger))
	}

	broadcaster := gateway.NewBroadcaster(gw, logger)

	gwCtx, gwCancel := context.WithCancel(context.Background())
	defer gwCancel()
	if err := gw.ConnectAll(gwCtx); err != nil {
		logger.Warn("some gateway adapters failed to connect", zap.Error(err))
	}

	// Announce presence on the chat platforms.
	startupErr := broadcaster.Send(gwCtx, &gateway.BroadcastMessage{
		Type:  gateway.BroadcastStartup,
		Title: "🌀 Recursive Witness Online",
		Content: "📝 Commands:\n" +
			"`!think [prompt]` - Generate recursive thoughts\n" +
			"`!mode [mode]` - Change thinking mode\n" +
			"`!modes` - List available modes",
		Platforms: []string{"discord", "slack"},
	})
	if startupErr != nil {
		logger.Warn("startup announcement failed", zap.Error(startupErr))
	}

	// Build HTTP handler
	handler := api.NewHandler(eng, archive, restAdapter, logger)

	port := cfg.Server.Port
	if port == 0 {
		port = 8888
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Recursive Witness listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Recursive Witness...")
	srv.Shutdown(context.Background())
	gwCancel()
	gw.Close()
	if archive != nil {
		archive.Close()
	}
	if redisModes != nil {
		redisModes.Close()
	}
}
