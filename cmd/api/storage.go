package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/persistence"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/repository/mongorepo"
)

// storage is the selected backend behind the user and issue directories.
// migrate applies the embedded SQL migrations; mongo indexes are always ensured.
type storage struct {
	users  repository.UserRepository
	issues repository.IssueRepository
	health handlers.Dependency
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger, migrate bool) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		return &storage{
			users:  repository.NewUserRepository(pool),
			issues: repository.NewIssueRepository(pool),
			health: handlers.Dependency{Name: "postgres", Pinger: pg},
			close:  pg.Close,
		}, nil

	case config.StorageDriverMongo:
		mg, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		if err := mongorepo.EnsureIndexes(ctx, mg.Database); err != nil {
			mg.Close(context.Background())
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.Info("mongo indexes ensured")
		return &storage{
			users:  mongorepo.NewUserRepository(mg.Database),
			issues: mongorepo.NewIssueRepository(mg.Database),
			health: handlers.Dependency{Name: "mongo", Pinger: mg},
			close:  func() { mg.Close(context.Background()) },
		}, nil
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
}
