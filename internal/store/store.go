/*
Package store
File: internal/store/store.go
Description:
    Component C3 — the durable, transactional store. Open wires a GORM
    SQLite connection the way acdtunes-spacetraders wires gorm.io/gorm +
    gorm.io/driver/sqlite, and AutoMigrate stands in for that project's
    migration step.

    All mutating paths are single-threaded per player per spec.md §5; the
    store itself is safe for concurrent access from many goroutines (GORM
    serializes through the underlying *sql.DB connection pool), but
    callers still route writes through a single queue where the spec
    requires total ordering (see internal/sim's persistence batch).
*/
package store

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store is the durable persistence layer for users, ships, inventory,
// relics, the marketplace, and fleets.
type Store struct {
	db *gorm.DB
}

// Open connects to (and creates, if absent) the SQLite database at path
// and runs auto-migration for every table in models.go. path may be
// ":memory:" for tests, in which case a shared cache is used so every
// connection in the pool sees the same in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// SQLite allows only one writer at a time; a single pooled connection
	// avoids "database is locked" errors under concurrent access and
	// keeps the in-memory shared-cache database from vanishing when one
	// pooled connection closes.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(
		&User{}, &Ship{}, &InventoryItem{}, &RelicInstance{},
		&MarketListing{}, &Fleet{}, &FleetMember{}, &DepletedObject{},
	); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("not found")

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
