package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/config"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/repository"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/usecase"
	"github.com/rocketscienceinc/tictactoe4x4-backend/transport/rest"
	"github.com/rocketscienceinc/tictactoe4x4-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionRepo, closeRepo, err := newSessionRepository(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	handler := newHandler(logger, sessionRepo)

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage.Driver)

	if err = rest.Start(ctx, conf.HTTPPort, handler, conf.ShutdownTimeout); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shut down")

	return nil
}

// newHandler wires the session manager to both transports on one router.
func newHandler(logger *slog.Logger, sessionRepo repository.SessionRepository) http.Handler {
	hub := websocket.NewHub()
	sessions := usecase.NewSessionManager(logger, sessionRepo, hub)

	router := rest.NewRouter(logger, sessions)
	router.Method(http.MethodGet, "/ws/sessions/{id}", websocket.New(logger, sessions, hub))

	return router
}

func newSessionRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.SessionRepository, func(), error) {
	log := logger.With("component", "app")

	if conf.Storage.Driver != config.StorageRedis {
		return repository.NewMemorySessionRepository(conf.Storage.SessionTTL), func() {}, nil
	}

	redisAddr := conf.Redis.GetRedisAddr()
	if redisAddr == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddr, conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeFn := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewSessionRepository(redisStorage, conf.Storage.SessionTTL), closeFn, nil
}
