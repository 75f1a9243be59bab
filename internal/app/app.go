package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskBoard/internal/auth"
	"taskBoard/internal/config"
	"taskBoard/internal/handlers"
	"taskBoard/internal/logger"
	"taskBoard/internal/migrations"
	"taskBoard/internal/repository/board"
	"taskBoard/internal/repository/task/inmemory"
	"taskBoard/internal/repository/task/postgres"
	"taskBoard/internal/repository/task/sqlite"
	"taskBoard/internal/service"
	"taskBoard/internal/worker"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    http.Handler
	service   handlers.Service
	sessions  *auth.Sessions
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if a.config.Auth.SessionSecret != "" {
		a.sessions = auth.NewSessions(a.config.Auth.SessionSecret, a.config.Auth.SessionTTL)
	}

	if err := a.initService(ctx); err != nil {
		a.Shutdown()
		return nil, err
	}

	a.router = a.newRouter()
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("App: Инициализация завершена",
		zap.String("backend", a.service.Backend()),
		zap.String("addr", a.server.Addr))
	return a, nil
}

func (a *App) initService(ctx context.Context) error {
	if a.config.Backend.Type == service.BackendBoard {
		a.service = a.newBoardService()
		return nil
	}

	store, err := a.initStore(ctx)
	if err != nil {
		return err
	}

	local := service.NewLocalService(store)
	if err := local.Seed(ctx); err != nil {
		return fmt.Errorf("начальные данные: %w", err)
	}
	a.service = local

	if interval := a.config.Worker.OverdueInterval; interval > 0 {
		a.worker = worker.NewOverdueWorker(store, interval)
	}
	return nil
}

func (a *App) newBoardService() *service.BoardService {
	cfg := a.config.Board
	client := board.New(board.Config{
		APIURL:        cfg.APIURL,
		Token:         cfg.Token,
		BoardID:       cfg.BoardID,
		Timeout:       cfg.Timeout,
		AllowedGroups: cfg.Groups.Allowed,
		GroupEmoji:    cfg.GroupEmoji,
		DefaultEmoji:  cfg.DefaultEmoji,
	}, &http.Client{})

	return service.NewBoardService(client, service.BoardGroups{
		Allowed:  cfg.Groups.Allowed,
		Done:     cfg.Groups.Done,
		Canceled: cfg.Groups.Canceled,
		Reopen:   cfg.Groups.Reopen,
	})
}

// initStore открывает хранилище и применяет миграции до того, как сервер начнёт принимать запросы
func (a *App) initStore(ctx context.Context) (service.TaskStore, error) {
	switch a.config.Repository.Type {
	case "postgres":
		db := a.config.Database
		if err := migrations.Up(migrations.Postgres, db.URL); err != nil {
			return nil, fmt.Errorf("миграции postgres: %w", err)
		}
		store, err := postgres.New(ctx, db.URL, postgres.WithPoolLimits(db.MaxConnections, db.MinConnections, db.IdleTimeout))
		if err != nil {
			return nil, fmt.Errorf("подключение к postgres: %w", err)
		}
		a.shutdowns = append(a.shutdowns, store.Close)
		return store, nil

	case "sqlite":
		path := a.config.SQLite.Path
		if err := migrations.Up(migrations.SQLite, sqlite.DSN(path)); err != nil {
			return nil, fmt.Errorf("миграции sqlite: %w", err)
		}
		store, err := sqlite.New(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("открытие sqlite: %w", err)
		}
		a.shutdowns = append(a.shutdowns, store.Close)
		return store, nil

	case "inmemory":
		logger.Warn("App: Данные хранятся в памяти и пропадут после перезапуска")
		return inmemory.NewTaskStorage(), nil

	default:
		return nil, fmt.Errorf("неизвестный тип хранилища %q", a.config.Repository.Type)
	}
}

func (a *App) Router() http.Handler {
	return a.router
}

// Run обслуживает запросы, пока не отменён ctx, затем корректно останавливает сервер
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("сервер: %w", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			a.worker.Start(gCtx)
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("App: Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown освобождает ресурсы в обратном порядке
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
