// Package store persists accepted detections in the detected_codes table.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when none of the requested records exist.
var ErrNotFound = errors.New("store: record not found")

// Statuses written for accepted detections.
const (
	StatusOK    = "OK"
	StatusNotOK = "Not OK"
)

// Record is one accepted detection.
type Record struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Timestamp     time.Time `gorm:"index;not null" json:"timestamp"`
	Code          string    `gorm:"size:64;not null" json:"code"`
	Preset        string    `gorm:"size:8;not null" json:"preset"`
	ImagePath     string    `gorm:"size:512" json:"image_path"`
	Status        string    `gorm:"size:16;not null" json:"status"`
	TargetSession string    `gorm:"size:64" json:"target_session"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (Record) TableName() string { return "detected_codes" }

// Stats summarises records by status.
type Stats struct {
	Total int64 `json:"total"`
	OK    int64 `json:"ok"`
	NotOK int64 `json:"not_ok"`
}

// Config selects the database.
type Config struct {
	Driver string `mapstructure:"driver" yaml:"driver" json:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
}

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultConfig returns a local sqlite file.
func DefaultConfig() Config {
	return Config{Driver: DriverSQLite, DSN: "detection.db"}
}

// Store is a gorm-backed record store. It is safe for concurrent use.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to the configured database and migrates the schema.
func Open(cfg Config, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "", DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Driver, err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db, logger: log}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append inserts rec and returns its new id.
func (s *Store) Append(ctx context.Context, rec Record) (uint, error) {
	rec.ID = 0
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("store: append: %w", err)
	}
	return rec.ID, nil
}

// dayBounds returns the local start of day and start of the following day.
func dayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// LoadDay returns the records of the calendar day containing day, oldest
// first.
func (s *Store) LoadDay(ctx context.Context, day time.Time) ([]Record, error) {
	return s.Range(ctx, day, day)
}

// Range returns the records from the start of from's day to the end of
// to's day, oldest first.
func (s *Store) Range(ctx context.Context, from, to time.Time) ([]Record, error) {
	start, _ := dayBounds(from)
	_, end := dayBounds(to)
	var out []Record
	err := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("store: range: %w", err)
	}
	return out, nil
}

// Get returns a single record.
func (s *Store) Get(ctx context.Context, id uint) (Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: get: %w", err)
	}
	return rec, nil
}

// Delete removes the given records and their evidence images. A missing
// image file is not an error; other file errors are logged. It returns
// ErrNotFound when no record matched.
func (s *Store) Delete(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var paths []string
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Record{}).Where("id IN ?", ids).
			Where("image_path <> ''").Pluck("image_path", &paths).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&Record{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("store: delete: %w", err)
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove evidence image", "path", p, "error", err)
		}
	}
	if deleted == 0 {
		return 0, ErrNotFound
	}
	return deleted, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Record{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// DayStats counts the records of day's calendar day by status.
func (s *Store) DayStats(ctx context.Context, day time.Time) (Stats, error) {
	start, end := dayBounds(day)
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&Record{}).
		Select("status, COUNT(*) AS n").
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return Stats{}, fmt.Errorf("store: stats: %w", err)
	}
	var st Stats
	for _, r := range rows {
		st.Total += r.N
		switch r.Status {
		case StatusOK:
			st.OK += r.N
		case StatusNotOK:
			st.NotOK += r.N
		}
	}
	return st, nil
}
