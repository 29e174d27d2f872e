package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ice-breakun/backend/internal/events"
	"ice-breakun/backend/internal/repository"
	"ice-breakun/backend/internal/service"
	"ice-breakun/backend/internal/ws"
	"ice-breakun/backend/pkg/config"
	"ice-breakun/backend/pkg/health"
	"ice-breakun/backend/pkg/logger"
	"ice-breakun/backend/pkg/observability"
	"ice-breakun/backend/pkg/resilience"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const bridgeRetryDelay = 5 * time.Second

// Container holds all the dependencies for the application.
// The storage handle is owned by the caller; Close does not close it.
type Container struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config

	Bus       *events.Bus
	Bridge    *events.RedisBridge
	Publisher events.Publisher

	UserRepository    repository.UserRepository
	MessageRepository repository.MessageRepository
	UserService       *service.UserService
	MessageService    *service.MessageService

	Hub     *ws.Hub
	Health  *health.Checker
	Metrics *observability.Metrics

	redis  *redis.Client
	cancel context.CancelFunc
	done   []<-chan struct{}
}

// New wires every component around db
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Container, error) {
	if db == nil {
		return nil, errors.New("di: database handle is required")
	}
	if cfg == nil {
		cfg = config.Load()
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	c := &Container{
		DB:     db,
		Logger: log,
		Config: cfg,
		Bus:    events.NewBus(0, log),
	}
	c.Publisher = c.Bus

	if cfg.Events.RedisURL != "" {
		client, err := events.NewRedisClient(cfg.Events.RedisURL)
		if err != nil {
			return nil, err
		}
		c.redis = client
		c.Bridge = events.NewRedisBridge(client, cfg.Events.Channel, c.Bus, log)
		c.Publisher = events.Fanout{c.Bus, c.Bridge}
	}

	c.UserRepository = repository.NewGormUserRepository(db)
	c.MessageRepository = repository.NewGormMessageRepository(db)
	c.UserService = service.NewUserService(c.UserRepository, c.Publisher)
	c.MessageService = service.NewMessageService(c.MessageRepository, c.Publisher)

	c.Hub = ws.NewHub(c.Bus, log, cfg.Security.AllowedOrigins)

	c.Health = health.NewChecker(log, cfg.Health.CheckPeriod)
	c.Health.RegisterDatabaseCheck(func(ctx context.Context) error {
		return config.Ping(ctx, db)
	})
	if c.Bridge != nil {
		c.Health.RegisterCheck("events", false, c.checkBridge)
	}

	if cfg.Observability.MetricsEnabled {
		metrics, err := observability.NewMetrics(cfg.Observability.ServiceName, cfg.Server.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to set up metrics: %w", err)
		}
		c.Metrics = metrics
		if err := c.registerGauges(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// checkBridge reports the Redis relay. An open breaker means publishes are
// being skipped even if Redis answers again.
func (c *Container) checkBridge(ctx context.Context) (health.Status, string, error) {
	if err := c.Bridge.Ping(ctx); err != nil {
		return health.StatusDegraded, "Redis unreachable, events stay local", err
	}
	if state := c.Bridge.Breaker().State(); state != resilience.StateClosed {
		return health.StatusDegraded, "Redis circuit " + string(state) + ", publishes are skipped", nil
	}
	return health.StatusUp, "Redis event bridge connected", nil
}

func (c *Container) registerGauges() error {
	if err := c.Metrics.RegisterGauge("ws.clients", "Connected WebSocket clients", func() int64 {
		return int64(c.Hub.Clients())
	}); err != nil {
		return err
	}
	return c.Metrics.RegisterGauge("events.dropped", "Event deliveries skipped for slow subscribers", func() int64 {
		return int64(c.Bus.Dropped())
	})
}

// Start launches the background workers: WebSocket hub, health checks and the event bridge
func (c *Container) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go c.Hub.Run(ctx)
	c.done = append(c.done, c.Hub.Done())

	c.Health.Start(ctx)

	if c.Bridge != nil {
		bridgeDone := make(chan struct{})
		c.done = append(c.done, bridgeDone)
		go func() {
			defer close(bridgeDone)
			for {
				err := c.Bridge.Run(ctx)
				if ctx.Err() != nil {
					return
				}
				c.Logger.LogError(err, "Event bridge stopped, resubscribing", "retry_in", bridgeRetryDelay.String())
				select {
				case <-ctx.Done():
					return
				case <-time.After(bridgeRetryDelay):
				}
			}
		}()
	}
}

// Close stops the workers and releases everything except the storage handle
func (c *Container) Close(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
		for _, done := range c.done {
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	c.Bus.Close()

	var errs []error
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if c.Metrics != nil {
		errs = append(errs, c.Metrics.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
