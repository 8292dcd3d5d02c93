// Package storage is the key-value persistence layer. Each collection is one
// JSON blob under a namespaced key, written atomically per Save.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Keys under which the application persists its state.
const (
	KeyReports      = "motodiag_reports"
	KeyInspections  = "motodiag_inspections"
	KeyTheme        = "motodiag_theme"
	KeyFormSnapshot = "motodiag_form_data"
	KeyReminderTime = "motodiag_reminder_time"

	// KeyPrefix namespaces every application key; bulk clear removes
	// everything under it.
	KeyPrefix = "motodiag_"
)

type entry struct {
	Key   string `gorm:"primaryKey"`
	Value []byte
}

func (entry) TableName() string { return "kv_entries" }

// Store persists key-value blobs in a sqlite table.
type Store struct {
	db  *gorm.DB
	log *logrus.Entry
}

// Open initializes the backing database, creating the directory and schema
// as needed.
func Open(dbPath string, log *logrus.Logger) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db, log: log.WithField("component", "storage")}, nil
}

// Load returns the blob stored under key. A missing or unreadable value
// yields ok=false and a warning; it never fails the caller.
func (s *Store) Load(key string) ([]byte, bool) {
	var e entry
	if err := s.db.First(&e, "key = ?", key).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			s.log.WithError(err).WithField("key", key).Warn("failed to load stored value")
		}
		return nil, false
	}
	return e.Value, true
}

// Save writes the blob under key, replacing any previous value. Callers treat
// a failure as non-fatal and surface it as a notification.
func (s *Store) Save(key string, value []byte) error {
	e := entry{Key: key, Value: value}
	if err := s.db.Save(&e).Error; err != nil {
		return fmt.Errorf("failed to save %q: %w", key, err)
	}
	return nil
}

// Remove deletes the blob under key. Removing a missing key is a no-op.
func (s *Store) Remove(key string) error {
	if err := s.db.Delete(&entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys with the given prefix.
func (s *Store) Keys(prefix string) []string {
	var keys []string
	if err := s.db.Model(&entry{}).Where("key LIKE ?", prefix+"%").Pluck("key", &keys).Error; err != nil {
		s.log.WithError(err).Warn("failed to list keys")
		return nil
	}
	return keys
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	return sqlDB.Close()
}
