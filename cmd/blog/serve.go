package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blog-cms/internal/api"
	"github.com/blog-cms/internal/events"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/blog-cms/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the schema and start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info().Str("driver", db.Driver()).Msg("Starting blog server...")

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}

	// Initialize repositories
	repos := repository.New(db)

	// Event publisher
	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQ.URL != "" {
		rmq, err := events.NewRabbitMQ(events.RabbitMQConfig{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, log)
		if err != nil {
			return err
		}
		publisher = rmq
	}
	defer publisher.Close()

	// Initialize services
	services := service.NewServices(repos, publisher, log)

	if cfg.Blog.SeedCategories {
		created, err := services.Category.Seed(cmd.Context(), models.DefaultCategories)
		if err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		log.Info().Int("created", created).Msg("Default categories seeded")
	}

	// Initialize router
	router, err := api.NewRouter(services, db, cfg, log)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}
