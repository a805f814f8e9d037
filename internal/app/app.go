package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/groph-rewards/internal/config"
	"github.com/fsdevblog/groph-rewards/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-rewards/internal/service"
	"github.com/fsdevblog/groph-rewards/internal/transport/api"
	"github.com/fsdevblog/groph-rewards/internal/transport/api/middlewares"
	"github.com/fsdevblog/groph-rewards/internal/transport/expiry"
	"github.com/fsdevblog/groph-rewards/internal/transport/notify"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.WithFields(logrus.Fields{
		"address":       a.Config.RunAddress,
		"migrations":    a.Config.MigrationsDir,
		"redis":         a.Config.RedisAddr != "",
		"nats":          a.Config.NatsURL != "",
		"lockTimeout":   a.Config.LockTimeout,
		"expirySweeper": a.Config.ExpirySweepEnabled,
	}).Info("starting app")

	conn, connErr := pgrepo.Connect(notifyCtx, pgrepo.ConnectArgs{
		DSN:           a.Config.DatabaseDSN,
		MigrationsDir: a.Config.MigrationsDir,
	}, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork := uow.NewUnitOfWork(conn, uow.WithLockTimeout(a.Config.LockTimeout))
	if regErr := pgrepo.Register(unitOfWork, pgrepo.Factories()); regErr != nil {
		return fmt.Errorf("app run: %s", regErr.Error())
	}

	notifier, closeNotifier, notifierErr := a.initNotifier()
	if notifierErr != nil {
		return fmt.Errorf("app run: %s", notifierErr.Error())
	}
	defer closeNotifier()

	services, sErr := service.Factory(unitOfWork, notifier, a.Logger)
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}
	// дожидаемся отправки уведомлений до закрытия брокера.
	defer services.RedemptionService.WaitNotifications()

	routerArgs := api.RouterArgs{
		Logger:            a.Logger,
		RedemptionService: services.RedemptionService,
		LedgerService:     services.LedgerService,
		JWTSecretKey:      []byte(a.Config.JWTSecret),
		IdempotencyTTL:    a.Config.IdempotencyTTL,
		LockTimeout:       a.Config.LockTimeout,
	}
	rdb, redisErr := middlewares.ConnectRedis(notifyCtx, a.Config.RedisAddr)
	if redisErr != nil {
		return fmt.Errorf("app run: %s", redisErr.Error())
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		routerArgs.IdempotencyStore = middlewares.NewRedisIdempotencyStore(rdb)
	}

	router, routerErr := api.New(routerArgs)
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}

	srv := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
	}

	g, ctx := errgroup.WithContext(notifyCtx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.Config.ExpirySweepEnabled {
		processor := expiry.New(services.RedemptionService, a.Logger).
			SetInterval(a.Config.ExpirySweepInterval).
			SetLimitPerIteration(a.Config.ExpirySweepBatch).
			SetWorkers(a.Config.ExpirySweepWorkers)
		g.Go(func() error {
			processor.Run(ctx)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}
	return notifyCtx.Err() //nolint:wrapcheck
}

// initNotifier возвращает NATS нотификатор, если задан NATS_URL, иначе нотификатор в лог.
func (a *App) initNotifier() (service.Notifier, func(), error) {
	nc, err := notify.Connect(a.Config.NatsURL)
	if err != nil {
		return nil, nil, fmt.Errorf("init notifier: %w", err)
	}
	if nc == nil {
		return notify.NewLogNotifier(a.Logger), func() {}, nil
	}
	return notify.NewNatsNotifier(nc, a.Logger), func() {
		if drainErr := nc.Drain(); drainErr != nil {
			a.Logger.WithError(drainErr).Warn("drain nats connection")
		}
	}, nil
}
