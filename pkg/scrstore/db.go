package scrstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// Config holds SCR store configuration.
type Config struct {
	Path string // path to the SQLite database file
}

// Store wraps the GORM connection and exposes channel-keyed SCR persistence.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open opens (creating if needed) the SCR store database and runs migrations.
func Open(cfg Config, log *logger.Logger) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = "tetrapol-scr.db"
	}
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create scrstore directory: %w", err)
		}
	}

	gormLog := gormlogger.New(
		&gormLogAdapter{log: log},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	dialector := sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        cfg.Path,
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open scr store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := db.AutoMigrate(&ScrRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run scr store migrations: %w", err)
	}

	log.Info("scr store initialized", logger.String("path", cfg.Path))

	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load returns the last confirmed SCR and confidence for a channel. The
// third return value, ok, is false when no record exists yet.
func (s *Store) Load(channelID string) (scr, confidence int, ok bool) {
	var rec ScrRecord
	if err := s.db.Where("channel_id = ?", channelID).First(&rec).Error; err != nil {
		return 0, 0, false
	}
	return rec.SCR, rec.Confidence, true
}

// Save upserts the confirmed SCR for a channel.
func (s *Store) Save(channelID string, scr, confidence int) error {
	rec := ScrRecord{
		ChannelID:  channelID,
		SCR:        scr,
		Confidence: confidence,
		UpdatedAt:  time.Now(),
	}
	return s.db.Save(&rec).Error
}

// gormLogAdapter adapts the structured logger to GORM's logger interface.
type gormLogAdapter struct {
	log *logger.Logger
}

func (l *gormLogAdapter) Printf(format string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(format, args...))
}
