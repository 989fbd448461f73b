package repo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"user-account-service/internal/core/config"
	"user-account-service/internal/core/database"
	"user-account-service/internal/domain"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

// Open builds the repository for c.Driver. The returned closer releases the
// underlying connection pool and is never nil.
func Open(ctx context.Context, c config.DB, l *zap.Logger) (domain.UserRepository, func(), error) {
	var (
		r       domain.UserRepository
		closeFn = func() {}
	)
	switch c.Driver {
	case "memory":
		l.Warn("using in-memory user store; data is lost on restart")
		return NewMemoryUserRepo(), closeFn, nil
	case "mongo":
		client, db, err := database.NewMongo(ctx, c.DSN, c.Database)
		if err != nil {
			return nil, nil, err
		}
		r = NewMongoUserRepo(db)
		closeFn = func() { _ = client.Disconnect(context.Background()) }
	case "postgres", "mysql":
		db, err := database.NewGorm(database.Opts{
			Driver:             c.Driver,
			DSN:                c.DSN,
			Username:           c.Username,
			Password:           c.Password,
			MaxOpenConns:       c.MaxOpenConns,
			MaxIdleConns:       c.MaxIdleConns,
			ConnMaxLifetimeMin: c.ConnMaxLifetimeMin,
			LogLevel:           c.LogLevel,
		}, l)
		if err != nil {
			return nil, nil, err
		}
		r = NewUserRepo(db)
		closeFn = func() { _ = database.Close(db) }
	default:
		return nil, nil, fmt.Errorf("%w: %q", database.ErrUnsupportedDriver, c.Driver)
	}
	l.Info("database connected", zap.String("driver", c.Driver))

	if m, ok := r.(migrator); ok && c.AutoMigrate {
		if err := m.Migrate(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		l.Info("migration done")
	}
	return r, closeFn, nil
}
