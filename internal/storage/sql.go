package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const defaultSQLitePath = "prayer-tracker.db"

// entry is one row of the kv_entries table.
type entry struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (entry) TableName() string { return "kv_entries" }

// SQL stores values in a relational table through GORM.
type SQL struct {
	db *gorm.DB
}

// NewSQLite opens (or creates) a SQLite database file.
// An empty path uses prayer-tracker.db in the working directory.
func NewSQLite(path string) (*SQL, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	return openSQL(sqlite.Open(path))
}

// NewPostgres connects to PostgreSQL with the given connection URL.
func NewPostgres(dsn string) (*SQL, error) {
	return openSQL(postgres.Open(dsn))
}

// NewSQLFromDB wraps an existing connection and migrates the table.
func NewSQLFromDB(db *gorm.DB) (*SQL, error) {
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &SQL{db: db}, nil
}

func openSQL(dialector gorm.Dialector) (*SQL, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialector.Name(), err)
	}
	return NewSQLFromDB(db)
}

// Dialect reports the underlying database ("sqlite" or "postgres").
func (s *SQL) Dialect() string {
	return s.db.Dialector.Name()
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var e entry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return e.Value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	e := entry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
