// Package app assembles repositories, services and background workers from
// configuration. Both the HTTP server and the admin CLI build on it.
package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/cache"
	"github.com/spec-kit/adoption-service/internal/config"
	"github.com/spec-kit/adoption-service/internal/events"
	"github.com/spec-kit/adoption-service/internal/notify"
	"github.com/spec-kit/adoption-service/internal/observability"
	"github.com/spec-kit/adoption-service/internal/persistence"
	"github.com/spec-kit/adoption-service/internal/repository"
	"github.com/spec-kit/adoption-service/internal/repository/memory"
	"github.com/spec-kit/adoption-service/internal/service"
	"github.com/spec-kit/adoption-service/internal/worker"
)

// Repositories groups the storage ports.
type Repositories struct {
	Users        repository.UserRepository
	Vendors      repository.VendorRepository
	Applications repository.VendorApplicationRepository
	Pets         repository.PetRepository
	Adoptions    repository.AdoptionRepository
	Analytics    repository.AnalyticsRepository
}

// Services groups the application services.
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Vendors       *service.VendorService
	Pets          *service.PetService
	Adoptions     *service.AdoptionService
	Analytics     *service.AnalyticsService
	Notifications *service.NotificationService
}

// Container owns every long-lived dependency of the process.
type Container struct {
	Config   config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
	Repos    Repositories
	Services Services

	Notifications *worker.NotificationWorker
	email         *notify.EmailSender
}

// Build connects storage and wires services. Without a Postgres DSN the
// container runs on the in-memory store and an in-process dashboard cache.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger, Metrics: observability.NewMetrics()}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	c.Postgres = pg

	var dashboardCache cache.DashboardCache
	if pool := pg.PoolHandle(); pool != nil {
		c.Repos = Repositories{
			Users:        repository.NewUserRepository(pool),
			Vendors:      repository.NewVendorRepository(pool),
			Applications: repository.NewVendorApplicationRepository(pool),
			Pets:         repository.NewPetRepository(pool),
			Adoptions:    repository.NewAdoptionRepository(pool),
			Analytics:    repository.NewAnalyticsRepository(pool),
		}
		if c.Redis = persistence.NewRedis(cfg.Redis, logger); c.Redis != nil {
			dashboardCache = cache.NewRedisDashboardCache(c.Redis.Client)
		} else {
			dashboardCache = cache.NewMemoryDashboardCache(nil)
		}
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory store")
		store := memory.NewStore()
		c.Repos = Repositories{
			Users:        store.Users(),
			Vendors:      store.Vendors(),
			Applications: store.Applications(),
			Pets:         store.Pets(),
			Adoptions:    store.Adoptions(),
			Analytics:    store.Analytics(),
		}
		dashboardCache = cache.NewMemoryDashboardCache(nil)
	}

	deliverer, err := c.buildNotifier(cfg.Notification)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Notifications = worker.NewNotificationWorker(deliverer, logger,
		cfg.Notification.Workers, cfg.Notification.QueueSize, cfg.Notification.SendTimeout())

	dispatcher := events.NewInMemoryDispatcher(logger)
	r := c.Repos
	c.Services = Services{
		Auth: service.NewAuthService(cfg, service.AuthDependencies{UserRepo: r.Users}),
		Users: service.NewUserService(service.UserDependencies{
			UserRepo:   r.Users,
			Dispatcher: dispatcher,
			Recorder:   c.Metrics,
			Logger:     logger,
		}),
		Vendors: service.NewVendorService(service.VendorDependencies{
			UserRepo:        r.Users,
			VendorRepo:      r.Vendors,
			ApplicationRepo: r.Applications,
			Dispatcher:      dispatcher,
			Logger:          logger,
		}),
		Pets: service.NewPetService(service.PetDependencies{
			UserRepo:   r.Users,
			VendorRepo: r.Vendors,
			PetRepo:    r.Pets,
			Logger:     logger,
		}),
		Adoptions: service.NewAdoptionService(service.AdoptionDependencies{
			UserRepo:     r.Users,
			PetRepo:      r.Pets,
			VendorRepo:   r.Vendors,
			AdoptionRepo: r.Adoptions,
			Dispatcher:   dispatcher,
			Recorder:     c.Metrics,
			Logger:       logger,
		}),
		Analytics: service.NewAnalyticsService(cfg.Analytics, service.AnalyticsDependencies{
			AnalyticsRepo: r.Analytics,
			Cache:         dashboardCache,
			Logger:        logger,
		}),
		Notifications: service.NewNotificationService(dispatcher, c.Notifications, logger),
	}
	c.Services.Notifications.RegisterHandlers()
	return c, nil
}

func (c *Container) buildNotifier(cfg config.NotificationConfig) (*notify.Dispatcher, error) {
	senders := map[notify.Channel]notify.Sender{
		notify.ChannelEmail:    notify.NewLogSender(notify.ChannelEmail, c.Logger),
		notify.ChannelWhatsApp: notify.NewLogSender(notify.ChannelWhatsApp, c.Logger),
	}
	if cfg.RabbitMQURL != "" {
		email, err := notify.NewEmailSender(cfg.RabbitMQURL, cfg.EmailQueue, cfg.EmailFrom,
			config.NewCircuitBreaker("email", c.Logger))
		if err != nil {
			return nil, err
		}
		c.email = email
		senders[notify.ChannelEmail] = email
	}
	if cfg.WhatsAppRelayURL != "" {
		senders[notify.ChannelWhatsApp] = notify.NewWhatsAppSender(cfg.WhatsAppRelayURL, cfg.WhatsAppToken,
			cfg.SendTimeout(), config.NewCircuitBreaker("whatsapp", c.Logger))
	}
	return notify.NewDispatcher(senders, notify.DefaultTemplates(), c.Logger, c.Metrics), nil
}

// Migrate applies pending migrations when Postgres is configured.
func (c *Container) Migrate(ctx context.Context) (int, error) {
	pool := c.Postgres.PoolHandle()
	if pool == nil {
		return 0, errors.New("migrations require POSTGRES_DSN")
	}
	return persistence.RunMigrations(ctx, pool, c.Config.Postgres.MigrationsDir, c.Logger)
}

// StartWorkers launches the notification pool and the unban sweep. The sweep
// stops when ctx is cancelled.
func (c *Container) StartWorkers(ctx context.Context) {
	c.Notifications.Start()
	unban := worker.NewUnbanWorker(c.Services.Users, c.Config.Scheduler.UnbanSweepInterval(), c.Logger)
	go unban.Run(ctx)
}

// Shutdown drains queued notifications and releases connections.
func (c *Container) Shutdown(ctx context.Context) {
	if err := c.Notifications.Stop(ctx); err != nil {
		c.Logger.Warn("notification queue not drained", zap.Error(err))
	}
	c.Close()
}

// Close releases connections without draining workers.
func (c *Container) Close() {
	if c.email != nil {
		if err := c.email.Close(); err != nil {
			c.Logger.Warn("closing email sender", zap.Error(err))
		}
	}
	c.Redis.Close()
	c.Postgres.Close()
}

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second
