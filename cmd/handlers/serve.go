package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pressroom/internal/config"
	"pressroom/internal/dispatch"
	"pressroom/internal/logger"
	"pressroom/internal/observability"
	"pressroom/internal/persistence"
	"pressroom/internal/server"
	"pressroom/internal/tracer"
)

const shutdownTimeout = 30 * time.Second

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port         int
		host         string
		articlesFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the pressroom HTTP server.

The server provides:
  • POST /api/assignments and /api/assignments/batch for template assignment
  • POST /api/render to assign and render in one call
  • GET /articles/{id} to render a stored article as HTML
  • /health and Prometheus /metrics

Articles come from the database when database.connection_string is set,
otherwise from --articles or articles.file.

Examples:
  # Start server on default port 8080
  pressroom serve

  # Serve articles from a file on a custom port
  pressroom serve --port 3000 --articles articles.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host, articlesFile)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")
	cmd.Flags().StringVar(&articlesFile, "articles", "", "YAML or JSON articles file used when no database is configured")

	return cmd
}

func runServe(ctx context.Context, port int, host, articlesFile string) error {
	log := logger.Get()
	cfg := config.Get()

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
		Enabled:     cfg.Tracing.Enabled,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("Failed to flush traces", "error", err)
		}
	}()

	analytics, err := observability.NewPostHogClient(cfg.PostHog)
	if err != nil {
		return err
	}
	defer func() {
		if err := analytics.Shutdown(context.Background()); err != nil {
			log.Warn("Failed to flush analytics", "error", err)
		}
	}()

	deps := server.Dependencies{
		UseAILayout:      cfg.Dispatch.UseAILayout,
		BatchConcurrency: cfg.Dispatch.BatchConcurrency,
	}

	var tracker dispatch.Tracker
	if analytics.IsEnabled() {
		tracker = analytics
		deps.Tracker = analytics
	}

	if cfg.Database.ConnectionString != "" {
		log.Info("Connecting to database")
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return fmt.Errorf("%w\n\nMake sure PostgreSQL is running and run 'pressroom migrate up' to initialize the schema", err)
		}
		defer db.Close()

		deps.Articles = db
		deps.Recorder = db
		deps.Database = db
	} else {
		if articlesFile == "" {
			articlesFile = cfg.Articles.File
		}
		if articlesFile != "" {
			src, err := persistence.NewFileSource(articlesFile)
			if err != nil {
				return err
			}
			log.Info("Serving articles from file", "path", src.Path(), "count", len(src.Articles()))
			deps.Articles = src
		}
	}

	d, cleanup, err := buildDispatcher(ctx, cfg, tracker)
	if err != nil {
		return err
	}
	defer cleanup()
	deps.Dispatcher = d

	srv := server.New(serverCfg, deps)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s", serverCfg.Addr()))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
			return err
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
