package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
	gwaudit "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/audit"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/config"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/httpapi"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/runstatus"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/session"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/tasks"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/tools"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/transport"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Studio MCP Gateway",
		Long: `Start the gateway: load configuration, wire the Service Client
Facade against the backing workflow-automation platform, register the MCP
tool catalog, and begin accepting Streamable HTTP sessions.`,
		RunE: runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	configPath := viper.GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: "stdout",
	})
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	resolver, err := gwauth.NewAPIKeyResolver(cfg.Auth.CapabilityMatrixFile)
	if err != nil {
		return fmt.Errorf("loading capability matrix: %w", err)
	}
	authMiddleware := gwauth.Middleware(resolver, log)

	sessions := session.NewManager(log)

	var statusCache runstatus.Cache
	if cfg.Cache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr, DB: cfg.Cache.RedisDB})
		statusCache = runstatus.NewRedisCache(rdb, cfg.Cache.TTL(), log)
		log.Info("run-status cache backed by redis", zap.String("addr", cfg.Cache.RedisAddr))
	} else {
		statusCache = runstatus.NewMemoryCache()
		log.Info("run-status cache backed by in-process memory")
	}

	facade := buildFacade(cfg.Services)

	var auditEmitter *gwaudit.Emitter
	if cfg.Audit.Enabled {
		auditEmitter = gwaudit.NewEmitter(gwaudit.NewLogStore(log), log)
	}

	resolverSvc := runstatus.NewResolver(facade.Workflows, facade.Trace, facade.HumanInputs, statusCache, log)

	stop := make(chan struct{})
	defer close(stop)
	taskStore := tasks.NewMemoryStore(stop)
	taskEngine := tasks.NewEngine(taskStore, facade.Workflows, log)

	metrics := httpapi.NewMetrics(sessions.Count, taskEngine.ActiveCount)

	registry := tools.NewRegistry(tools.Deps{
		Facade:   facade,
		Tasks:    taskEngine,
		Resolver: resolverSvc,
		Audit:    auditEmitter,
		Log:      log,
		Metrics:  metrics,
	})

	mcpServer := server.NewMCPServer("studio-mcp-gateway", version, server.WithToolCapabilities(true))
	registry.Register(mcpServer)

	adapter := transport.NewAdapter(mcpServer, sessions, log)

	mux := chi.NewRouter()
	httpapi.Mount(mux, facade, statusCache, metrics)
	mux.Handle(cfg.Server.MCPPath, authMiddleware(adapter))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
		WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("gateway listening", zap.String("addr", addr), zap.String("mcp_path", cfg.Server.MCPPath))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown error", zap.Error(err))
	}
	if err := adapter.Shutdown(shutdownCtx); err != nil {
		log.Warn("transport shutdown error", zap.Error(err))
	}

	// In-flight background-task monitors are NOT cancelled on shutdown.
	// They keep polling against the engine and will write their terminal
	// result whenever the run actually finishes; only the sessions that
	// initiated them are torn down here.
	destroyed := sessions.DestroyAll()
	log.Info("sessions destroyed on shutdown", zap.Int("count", destroyed))

	return nil
}

func buildFacade(cfg config.ServicesConfig) *services.Facade {
	f := &services.Facade{
		Components: services.NewComponentsHTTP(cfg.Components.BaseURL, cfg.Components.TimeoutDuration()),
	}
	if cfg.Workflows.BaseURL != "" {
		f.Workflows = services.NewWorkflowsHTTP(cfg.Workflows.BaseURL, cfg.Workflows.TimeoutDuration())
	}
	if cfg.Artifacts.BaseURL != "" {
		f.Artifacts = services.NewArtifactsHTTP(cfg.Artifacts.BaseURL, cfg.Artifacts.TimeoutDuration())
	}
	if cfg.Schedules.BaseURL != "" {
		f.Schedules = services.NewSchedulesHTTP(cfg.Schedules.BaseURL, cfg.Schedules.TimeoutDuration())
	}
	if cfg.Secrets.BaseURL != "" {
		f.Secrets = services.NewSecretsHTTP(cfg.Secrets.BaseURL, cfg.Secrets.TimeoutDuration())
	}
	if cfg.HumanInputs.BaseURL != "" {
		f.HumanInputs = services.NewHumanInputsHTTP(cfg.HumanInputs.BaseURL, cfg.HumanInputs.TimeoutDuration())
	}
	if cfg.Trace.BaseURL != "" {
		f.Trace = services.NewTraceHTTP(cfg.Trace.BaseURL, cfg.Trace.TimeoutDuration())
	}
	if cfg.LogStream.BaseURL != "" {
		f.LogStream = services.NewLogStreamHTTP(cfg.LogStream.BaseURL, cfg.LogStream.TimeoutDuration())
	}
	if cfg.NodeIO.BaseURL != "" {
		f.NodeIO = services.NewNodeIOHTTP(cfg.NodeIO.BaseURL, cfg.NodeIO.TimeoutDuration())
	}
	return f
}

// version is overridden at build time via -ldflags.
var version = "dev"
