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

	"github.com/labstack/echo/v4"
	"github.com/page-builder/backend/internal/api"
	"github.com/page-builder/backend/internal/builder"
	"github.com/page-builder/backend/internal/config"
	"github.com/page-builder/backend/internal/logging"
	"github.com/page-builder/backend/internal/remote"
	"github.com/page-builder/backend/internal/tracing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	configPath string
	port       int
	userID     string
	remoteURL  string
)

var rootCmd = &cobra.Command{
	Use:   "builder",
	Short: "Page builder editing shell",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to PageBuilder.config (default: next to the executable)")
	rootCmd.Flags().IntVar(&port, "port", 0, "override the configured builder port")
	rootCmd.Flags().StringVar(&userID, "user", "", "override the configured user id")
	rootCmd.Flags().StringVar(&remoteURL, "remote", "", "override the layout store URL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfgPath, err := config.ResolvePath(configPath)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if port > 0 {
		cfg.Builder.Port = port
	}
	if userID != "" {
		cfg.Builder.UserID = userID
	}
	if remoteURL != "" {
		cfg.Builder.RemoteURL = remoteURL
	}

	logger, err := logging.New(cfg.Advanced.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Advanced.OTLPEndpoint, "page-builder", Version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	items, sections, err := config.LoadPalette(cfg.Builder.PaletteFile)
	if err != nil {
		return err
	}

	timeout := time.Duration(cfg.Builder.RemoteTimeoutSeconds) * time.Second
	client := remote.NewClient(cfg.Builder.RemoteURL, timeout, logger)
	store := builder.NewStore(client, sections, builder.ParseLoadPolicy(cfg.Builder.LoadPolicy), logger)
	app := builder.NewApp(store, builder.NewPalette(items), cfg.Builder.UserID)

	// The initial load runs once in the background; its outcome is logged
	// by the store.
	app.Start(ctx)

	handlers := api.NewHandlers(&api.Dependencies{
		App:         app,
		SaveTimeout: timeout,
		Logger:      logger,
		Service:     "builder",
		Version:     Version,
	})
	defer handlers.Close()

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, api.MiddlewareConfig{
		Logger:         logger,
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		BodyLimit:      cfg.Server.BodyLimit,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
	})
	api.RegisterRoutes(e, handlers)

	// No write timeout: the WebSocket route holds its connection open.
	s := &http.Server{
		Addr:        cfg.GetBuilderAddr(),
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		IdleTimeout: time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Page Builder                                    ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  User:       %-45s║\n", cfg.Builder.UserID)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", cfgPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetBuilderAddr())
	fmt.Printf("║  Store:     %-46s║\n", cfg.Builder.RemoteURL)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
