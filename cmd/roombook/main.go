package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/navikt/roombook/internal/api"
	"github.com/navikt/roombook/internal/config"
	"github.com/navikt/roombook/internal/events"
	"github.com/navikt/roombook/internal/logging"
	"github.com/navikt/roombook/internal/repository"
	"github.com/navikt/roombook/internal/service"
)

func main() {
	// A missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.Logging)

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// Initialize the repository using the factory
	repo, err := repository.NewRepository(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			slog.Error("error closing repository", "error", err)
		}
	}()

	// Initialize the service layer
	roomService := service.NewRoomService(repo)
	bookingService := service.NewBookingService(repo)

	// Publish every change on the event streams
	broker := events.NewBroker(cfg.Events.Replay)
	roomService.RegisterUpdateCallback(broker.PublishRoom)
	bookingService.RegisterUpdateCallback(broker.PublishBooking)

	router := api.NewRouter(api.Deps{
		Rooms:          roomService,
		Bookings:       bookingService,
		Store:          repo,
		Events:         broker,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // Disable write timeout for SSE connections
		IdleTimeout:       60 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("starting roombook server",
			"addr", server.Addr,
			"store", cfg.Store.Backend,
		)
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case sig := <-shutdown:
		slog.Info("shutting down server", "signal", sig.String())

		// Close event streams first so long lived connections do not hold up shutdown
		broker.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			_ = server.Close()
			return err
		}

		slog.Info("server gracefully stopped")
		return nil
	}
}
