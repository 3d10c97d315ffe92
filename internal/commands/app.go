package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/thablackcodes/gresh-finance/internal/config"
	"github.com/thablackcodes/gresh-finance/internal/db"
	"github.com/thablackcodes/gresh-finance/internal/domain"
	"github.com/thablackcodes/gresh-finance/internal/events"
	"github.com/thablackcodes/gresh-finance/internal/memory"
)

// storage bundles the repositories of one backend.
type storage struct {
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
	customers    domain.CustomerRepository
	txManager    domain.TransactionManager
	pinger       interface{ Ping(context.Context) error }
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		store := memory.NewStore()
		log.Warn("using in-memory storage, data will not survive a restart")
		return &storage{
			accounts:     store.Accounts(),
			transactions: store.Transactions(),
			customers:    store.Customers(),
			txManager:    store,
			pinger:       store,
			close:        func() {},
		}, nil
	}

	pool, err := db.NewPool(ctx, cfg.Database.URL, db.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, err
	}
	log.Info("database connection pool initialized")

	if cfg.Database.AutoMigrate {
		applied, err := db.Migrate(ctx, pool.Pool, log)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.WithField("applied", len(applied)).Info("database migrations checked")
	}

	return &storage{
		accounts:     db.NewAccountRepository(pool.Pool),
		transactions: db.NewTransactionRepository(pool.Pool),
		customers:    db.NewCustomerRepository(pool.Pool),
		txManager:    db.NewTransactionManager(pool.Pool, log),
		pinger:       pool,
		close:        pool.Close,
	}, nil
}

// openPublisher returns the configured event publisher and a function that
// releases it. The publisher is nil when events are disabled.
func openPublisher(cfg *config.Config, log logrus.FieldLogger) (domain.EventPublisher, func(), error) {
	switch cfg.Events.Broker {
	case config.BrokerRabbitMQ:
		p, err := events.NewRabbitMQPublisher(cfg.Events.RabbitMQ.URL,
			cfg.Events.RabbitMQ.Exchange, cfg.Events.RabbitMQ.RoutingKey)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("exchange", cfg.Events.RabbitMQ.Exchange).Info("publishing events to RabbitMQ")
		return p, closeLogged(p.Close, log), nil
	case config.BrokerKafka:
		p := events.NewKafkaPublisher(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic)
		log.WithField("topic", cfg.Events.Kafka.Topic).Info("publishing events to Kafka")
		return p, closeLogged(p.Close, log), nil
	case config.BrokerNone:
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown events broker %q", cfg.Events.Broker)
	}
}

func closeLogged(closeFn func() error, log logrus.FieldLogger) func() {
	return func() {
		if err := closeFn(); err != nil {
			log.WithError(err).Warn("failed to close event publisher")
		}
	}
}
