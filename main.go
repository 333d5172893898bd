package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	contractx "github.com/obinna/neargent/agent/contract"
	llmx "github.com/obinna/neargent/agent/llm"
	"github.com/obinna/neargent/agent/memory"
	"github.com/obinna/neargent/agent/neargent"
	"github.com/obinna/neargent/agent/places"
	promptx "github.com/obinna/neargent/agent/prompt"
	toolx "github.com/obinna/neargent/agent/tool"
	configx "github.com/obinna/neargent/pkg/config"
	"github.com/obinna/neargent/pkg/geoapify"
	_ "github.com/obinna/neargent/pkg/logger/autoload"
	openrouterx "github.com/obinna/neargent/pkg/openrouter"
	"github.com/obinna/neargent/pkg/webhook"
	"github.com/obinna/neargent/server/rpc"
)

type AppConfig struct {
	Addr            string        `envconfig:"ADDR" default:":4111"`
	AgentID         string        `envconfig:"AGENT_ID" default:"neargent"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("SERVER")
	geoCfg := configx.MustNew[geoapify.Config]("GEOAPIFY")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	memCfg := configx.MustNew[memory.Config]("MEMORY")
	webhookCfg := configx.MustNew[webhook.Config]("WEBHOOK")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	verifyCredentials(ctx, llmCfg.ClientConfig())

	finder, err := places.NewService(geoapify.MustNew(*geoCfg))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build places service")
	}

	store, closeStore := newMemoryStore(ctx, *memCfg)
	defer closeStore()

	agent, err := neargent.New(ctx, *llmCfg, promptx.Load().NearbyHelp, toolx.NewExecutor(finder))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build agent")
	}

	dispatcher := rpc.NewDispatcher()
	handler, err := rpc.NewHandler(rpc.Deps{
		Agents:     map[string]contractx.Agent{appCfg.AgentID: agent},
		Dispatcher: dispatcher,
		Callbacks:  webhook.NewClient(*webhookCfg),
		Memory:     store,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build rpc handler")
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handler.Register(engine)

	srv := &http.Server{
		Addr:    appCfg.Addr,
		Handler: engine,
	}

	go func() {
		log.Info().Str("addr", appCfg.Addr).Str("agent", appCfg.AgentID).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}
	// In-flight agent calls keep running after the listener closes; give them
	// the rest of the shutdown window to finish their callback deliveries.
	if err := dispatcher.Drain(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("background tasks did not drain in time")
	}

	log.Info().Msg("shutdown complete")
}

// verifyCredentials probes the model gateway once at startup so a bad key
// surfaces in the logs immediately instead of on the first agent call.
func verifyCredentials(ctx context.Context, cfg openrouterx.Config) {
	client := openrouterx.NewClient(cfg)
	if client == nil {
		log.Warn().Msg("no openrouter api key configured; skipping credential check")
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := client.Models.List(probeCtx); err != nil {
		log.Warn().Err(err).Msg("openrouter credential check failed")
		return
	}
	log.Info().Msg("openrouter credentials verified")
}

func newMemoryStore(ctx context.Context, cfg memory.Config) (contractx.MemoryStore, func()) {
	if cfg.DSN == "" {
		log.Info().Msg("no memory dsn configured; conversation history disabled")
		return memory.Noop{}, func() {}
	}

	store, err := memory.NewBunStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open conversation store")
	}
	if err := store.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize conversation store")
	}
	log.Info().Msg("conversation store ready")

	return store, func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("conversation store close error")
		}
	}
}
