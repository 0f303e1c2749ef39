// Package app assembles the ledger from configuration. The server, the
// scheduler and the operator CLI all start from Build.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
	"github.com/enesxunal/markaworld-g-sub000/internal/config"
	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/lock"
	"github.com/enesxunal/markaworld-g-sub000/internal/notification"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
	"github.com/enesxunal/markaworld-g-sub000/internal/service"
	"github.com/enesxunal/markaworld-g-sub000/internal/token"
)

type App struct {
	Config *config.Config
	Log    *logrus.Logger
	DB     *sqlx.DB
	Redis  redis.UniversalClient
	Store  repository.Store
	Locker lock.Locker
	Clock  clock.Clock

	Customers *service.CustomerService
	Plans     *service.PlanService
	Payments  *service.PaymentService
	Rates     *service.RateService
	Checks    *service.Checks
}

// Build opens the database and, for the redis lock backend, the redis
// client, then wires every service. sqlite databases are migrated on open.
func Build(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	db, err := initDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Log:    log,
		DB:     db,
		Store:  repository.NewStore(db),
		Clock:  clock.System{Location: cfg.GetSchedulerLocation()},
	}

	switch cfg.Lock.Backend {
	case "redis":
		client, err := initRedis(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.Redis = client
		a.Locker = lock.NewRedisLocker(client, cfg.GetLockTTL(), log)
	default:
		a.Locker = lock.NewKeyedMutex()
	}

	notifier := notification.NewNotifier(notification.NewSender(cfg.Notification, log), log)

	deps := service.Deps{
		Store:    a.Store,
		Locker:   a.Locker,
		Notifier: notifier,
		Clock:    a.Clock,
		Log:      log,
	}

	policy := domain.LimitAdjustmentPolicy{
		MaxLimit:     cfg.GetMaxCreditLimit(),
		IncreaseRate: cfg.GetLimitIncreaseRate(),
		DecreaseRate: cfg.GetLimitDecreaseRate(),
	}
	tokens := token.NewIssuer(cfg.Approval.Secret, cfg.GetApprovalTokenTTL(), a.Clock)

	a.Customers = service.NewCustomerService(deps)
	a.Plans = service.NewPlanService(deps, domain.DefaultInterestSchedule, tokens, cfg.Business.FirstDueDays)
	a.Payments = service.NewPaymentService(deps, policy)
	a.Rates = service.NewRateService(deps)
	a.Checks = service.NewChecks(
		service.NewOverdueScanner(deps, policy),
		service.NewLateFeeAccrual(deps),
		service.NewReminderScheduler(deps, cfg.Business.ReminderDays),
		a.Locker,
		a.Clock,
		log,
	)

	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.WithError(err).Warn("closing redis client failed")
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Log.WithError(err).Warn("closing database failed")
	}
}

func initDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == repository.DriverSQLite {
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	} else if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}

	return db, nil
}

func initRedis(ctx context.Context, cfg *config.Config) (redis.UniversalClient, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.URL != "" {
		parsed, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not reach redis: %w", err)
	}
	return client, nil
}
