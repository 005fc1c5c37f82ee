package repositories

import (
	"context"
	"errors"
	"fmt"

	"catalog/pkg/config"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// Store is the handle on the catalog database: both repositories plus the
// connection lifecycle. It is opened once at startup and passed explicitly.
type Store struct {
	Categories CategoryRepository
	Products   ProductRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the database selected by cfg.Driver and prepares its
// indexes or schema.
func Open(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return OpenMongo(ctx, cfg)
	case config.DriverPostgres, config.DriverSQLite:
		return OpenGORM(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
