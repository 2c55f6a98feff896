// Package store opens the repository backing selected by configuration.
package store

import (
	"context"
	"fmt"

	"dmchat/internal/config"
	"dmchat/internal/domain"
	"dmchat/internal/store/mongo"
	"dmchat/internal/store/postgres"
	"dmchat/internal/store/sqlite"
)

// Repositories bundles the repositories of one backing with the function
// that releases its connections.
type Repositories struct {
	Users    domain.UserRepository
	Messages domain.MessageRepository
	close    func(context.Context) error
}

// Close releases the underlying connections.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// Open connects to the backing named by cfg.StoreDriver and migrates it.
func Open(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return &Repositories{
			Users:    sqlite.NewUserRepo(db),
			Messages: sqlite.NewMessageRepo(db),
			close:    func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &Repositories{
			Users:    postgres.NewUserRepo(db),
			Messages: postgres.NewMessageRepo(db),
			close:    func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMongo:
		db, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := mongo.Migrate(ctx, db); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, fmt.Errorf("migrate mongo: %w", err)
		}
		return &Repositories{
			Users:    mongo.NewUserRepo(db),
			Messages: mongo.NewMessageRepo(db),
			close:    func(ctx context.Context) error { return db.Client().Disconnect(ctx) },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
