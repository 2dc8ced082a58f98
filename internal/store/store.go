// Package store opens the configured task and user store.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"dayplanner/internal/auth"
	"dayplanner/internal/config"
	"dayplanner/internal/db"
	"dayplanner/internal/db/models"
	"dayplanner/internal/db/sqlite"
	"dayplanner/internal/planner"

	"github.com/google/uuid"
)

// Store is implemented by both the postgres and the sqlite backend.
type Store interface {
	planner.TaskStore
	auth.UserStore

	GetTask(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error)
	CountTasks(ctx context.Context, userID uuid.UUID) (int, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*db.DB)(nil)
	_ Store = (*sqlite.DB)(nil)
)

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		database, err := db.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Printf("[db] connected to postgres at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
		return database, nil
	case "sqlite":
		database, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Printf("[db] opened sqlite database %s", database.Path())
		return database, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// OpenAndMigrate opens the store and brings its schema up to date.
func OpenAndMigrate(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	st, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("error migrating database: %w", err)
	}
	return st, nil
}
