// Package store opens the repository backend named by the configuration.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"catapi/internal/config"
	"catapi/internal/db"
	"catapi/internal/repository"
	"catapi/internal/repository/memory"
	mongorepo "catapi/internal/repository/mongo"
	mysqlrepo "catapi/internal/repository/mysql"
)

// Store is an open backend.
type Store struct {
	Cats  repository.CatRepository
	Users repository.UserRepository
	close func(context.Context) error
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the configured driver and prepares its schema.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN, log)
		if err != nil {
			return nil, err
		}
		if err := mysqlrepo.AutoMigrate(gormDB); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		return &Store{
			Cats:  mysqlrepo.NewCatRepository(gormDB),
			Users: mysqlrepo.NewUserRepository(gormDB),
			close: func(context.Context) error { return sqlDB.Close() },
		}, nil

	case config.DriverMongo:
		client, err := db.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.MongoDatabase)
		if err := mongorepo.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return &Store{
			Cats:  mongorepo.NewCatRepository(database),
			Users: mongorepo.NewUserRepository(database),
			close: client.Disconnect,
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on exit")
		return &Store{Cats: memory.NewCatRepo(), Users: memory.NewUserRepo()}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
