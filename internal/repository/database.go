// File: internal/repository/database.go
package repository

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-messenger/internal/domain"
)

// Open connects to the sqlite file backing the shared store and migrates
// the schema. A path of ":memory:" or one starting with "file:" and
// containing "mode=memory" opens an in-memory database.
func Open(path string) (*gorm.DB, error) {
	dsn := path
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open shared store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("shared store handle: %w", err)
	}
	// sqlite allows a single writer; one connection keeps transactions serialized.
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table of the shared store.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.ChatSession{}, &domain.Message{}, &domain.MessageRead{}); err != nil {
		return fmt.Errorf("migrate shared store: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
