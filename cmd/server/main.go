package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/drive-image-mcp-go/internal/auth"
	"github.com/evert/drive-image-mcp-go/internal/config"
	"github.com/evert/drive-image-mcp-go/internal/imageproxy"
	"github.com/evert/drive-image-mcp-go/internal/middleware"
	"github.com/evert/drive-image-mcp-go/internal/pkg/drivelink"
	"github.com/evert/drive-image-mcp-go/internal/registry"
	"github.com/evert/drive-image-mcp-go/internal/services"
)

func main() {
	// Structured logging to stderr (stdout is reserved for MCP stdio transport)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := run(ctx); err != nil {
		cancel()
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
	cancel()
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// Stateless mode keeps tokens in memory only, for read-only container filesystems.
	var tokenStore auth.TokenStore
	if cfg.StatelessMode {
		tokenStore = auth.NewInMemoryTokenStore()
	} else {
		fileStore, err := auth.NewFileTokenStore(cfg.CredentialsDir)
		if err != nil {
			return fmt.Errorf("initializing token store: %w", err)
		}
		tokenStore = fileStore
	}

	oauthMgr := auth.NewOAuthManager(
		cfg.OAuth.ClientID,
		cfg.OAuth.ClientSecret,
		cfg.OAuth.RedirectURL,
		auth.AllScopes(cfg.EnabledServices, cfg.ReadOnly),
		tokenStore,
	)
	factory := services.NewFactory(oauthMgr)

	// Load tier config — try absolute path (container) then relative (local dev)
	tierConfigPath := "/configs/tool_tiers.yaml"
	if _, statErr := os.Stat(tierConfigPath); statErr != nil {
		tierConfigPath = filepath.Join("configs", "tool_tiers.yaml")
	}
	tierMap, err := config.LoadTiers(tierConfigPath)
	if err != nil {
		slog.Warn("could not load tier config — all tools will be registered unfiltered",
			"path", tierConfigPath,
			"error", err,
		)
		tierMap = make(map[string]config.ToolInfo)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "drive-image-mcp",
		Version: "1.0.0",
	}, nil)

	server.AddReceivingMiddleware(
		middleware.LoggingMiddleware(logger),
		middleware.AuthEnhancerMiddleware(oauthMgr),
	)

	registry.RegisterAll(server, factory, cfg, tierMap, oauthMgr)

	slog.Info("starting Drive image MCP server",
		"transport", cfg.Server.Transport,
		"tier", cfg.ToolTier,
		"readOnly", cfg.ReadOnly,
		"catalog", cfg.Images.CatalogPath,
	)

	switch cfg.Server.Transport {
	case "stdio":
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
			return fmt.Errorf("stdio server error: %w", err)
		}

	case "streamable-http":
		mcpHandler := mcp.NewStreamableHTTPHandler(
			func(r *http.Request) *mcp.Server { return server },
			nil,
		)
		resolver := drivelink.New(cfg.Images.MinFileIDLength, logger)

		mux := http.NewServeMux()
		mux.Handle("/mcp", mcpHandler)
		mux.HandleFunc("/oauth/callback", auth.OAuthCallbackHandler(oauthMgr, factory))
		mux.HandleFunc("/image", imageproxy.Handler(resolver, cfg.Images.RedirectHosts, logger))

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			slog.Info("shutting down HTTP server")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP server shutdown error", "error", err)
			}
		}()

		slog.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}

	default:
		return fmt.Errorf("unknown transport %q — use 'stdio' or 'streamable-http'", cfg.Server.Transport)
	}

	return nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
