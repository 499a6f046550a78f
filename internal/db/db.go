// Package db stores per-target sync run history in a local SQLite database.
package db

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
)

// Run statuses recorded in history.
const (
	StatusSynced  = "synced"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// SyncRun is one target repository's outcome within a sync pass.
type SyncRun struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	SourceRepo string `gorm:"index"`
	TargetRepo string `gorm:"index"`
	Branch     string
	CommitSHA  string
	PRNumber   int
	PRURL      string

	Status     string `gorm:"index"`
	FileCount  int
	DurationMs int64
	Error      string
}

// Store persists sync run history.
type Store struct {
	orm *gorm.DB
}

// Open opens (or creates) the history database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	orm, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "open history database")
	}

	if err := orm.AutoMigrate(&SyncRun{}); err != nil {
		return nil, appErrors.WrapWithContext(err, "migrate history schema")
	}

	return &Store{orm: orm}, nil
}

// RecordRun appends one run to the history.
func (s *Store) RecordRun(run *SyncRun) error {
	if err := s.orm.Create(run).Error; err != nil {
		return appErrors.WrapWithContext(err, "record sync run")
	}
	return nil
}

// RecentRuns returns the newest runs, most recent first.
func (s *Store) RecentRuns(limit int) ([]SyncRun, error) {
	var runs []SyncRun
	err := s.orm.Order("id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "load sync runs")
	}
	return runs, nil
}

// RunsForTarget returns the newest runs for one target repository.
func (s *Store) RunsForTarget(targetRepo string, limit int) ([]SyncRun, error) {
	var runs []SyncRun
	err := s.orm.Where("target_repo = ?", targetRepo).
		Order("id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "load sync runs for "+targetRepo)
	}
	return runs, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.orm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
