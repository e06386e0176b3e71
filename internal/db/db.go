package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/tend/internal/models"
)

// ErrNotFound is returned (wrapped) when a lookup by ID matches nothing
var ErrNotFound = errors.New("not found")

// Options configures how the store is opened
type Options struct {
	// Path to the SQLite database file. Parent directories are created.
	Path string
	// Debug turns on GORM SQL logging
	Debug bool
	// Logger receives store diagnostics; log.Default() when nil
	Logger *log.Logger
	// PollInterval is how often watches check for commits made through other
	// connections, such as another tend process. DefaultPollInterval when zero.
	PollInterval time.Duration
}

// DefaultPollInterval is used when Options.PollInterval is zero
const DefaultPollInterval = 500 * time.Millisecond

// Store is the handle to the embedded database. Open it once and pass it to
// every consumer.
type Store struct {
	db   *gorm.DB
	hub  *hub
	log  *log.Logger
	poll time.Duration
}

// Open sets up the database connection, registers change publishing and runs migrations
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("database path is empty")
	}
	logr := opts.Logger
	if logr == nil {
		logr = log.Default()
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	gormLogger := logger.Default.LogMode(logger.Silent) // Quiet by default
	if opts.Debug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	gdb, err := gorm.Open(sqlite.Open(dsn(opts.Path)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	s := &Store{
		db:   gdb,
		hub:  newHub(),
		log:  logr.WithPrefix("store"),
		poll: poll,
	}

	if err := s.hub.register(gdb); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register change callbacks: %w", err)
	}

	// Run auto-migrations
	if err := s.runMigrations(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s.log.Debug("database ready", "path", opts.Path)
	return s, nil
}

// dsn builds the connection string with foreign keys enforced so cascades work
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// runMigrations creates/updates the database schema
func (s *Store) runMigrations() error {
	return s.db.AutoMigrate(
		&models.Workspace{},
		&models.Task{},
		&models.ChecklistItem{},
		&models.Habit{},
		&models.HabitHistory{},
		&models.Course{},
		&models.AttendanceRecord{},
	)
}

// Close closes the database connection and ends every subscription
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.hub.closeAll()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// conn returns a session bound to ctx
func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// transaction runs fn in a single database transaction. Change notifications
// for writes made inside fn are held back until the commit succeeds.
func (s *Store) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	pending := &pendingTables{}
	ctx = context.WithValue(ctx, pendingKey{}, pending)

	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		return err
	}

	s.hub.publish(pending.list()...)
	return nil
}

// notFound converts gorm's record-not-found into ErrNotFound
func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s #%d %w", what, id, ErrNotFound)
	}
	return err
}
