// Package sqlstore implements the stores on a relational database through gorm.
package sqlstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	sqlitedriver "modernc.org/sqlite"

	"prospectcrm/models"
	"prospectcrm/store"
)

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ store.Backing = (*Store)(nil)

type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// OpenPostgres connects to PostgreSQL with the given DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// sqliteLower folds case like strings.ToLower; sqlite's LOWER folds ASCII only.
const sqliteLower = "unicode_lower"

func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction(sqliteLower, 1, unicodeLower)
}

func unicodeLower(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// OpenSQLite opens (or creates) a SQLite database file using the pure Go driver.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema of every table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.conn(ctx).AutoMigrate(
		&models.Stage{},
		&models.StageAction{},
		&models.ProspectStage{},
		&models.ProspectAction{},
		&models.CRMEmail{},
		&models.Prospect{},
		&models.Client{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

// Initialize migrates the schema and seeds every empty table with the default data.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.Migrate(ctx); err != nil {
		return err
	}

	db := s.conn(ctx)
	seed := models.DefaultSeed(s.timestamp())
	if err := seedTable(db, seed.Stages); err != nil {
		return err
	}
	if err := seedTable(db, seed.StageActions); err != nil {
		return err
	}
	if err := seedTable(db, seed.ProspectStages); err != nil {
		return err
	}
	if err := seedTable(db, seed.ProspectActions); err != nil {
		return err
	}
	if err := seedTable(db, seed.Emails); err != nil {
		return err
	}
	if err := seedTable(db, seed.Prospects); err != nil {
		return err
	}
	if err := seedTable(db, seed.Clients); err != nil {
		return err
	}
	for _, user := range seed.Users {
		if err := db.FirstOrCreate(&user, "id = ?", user.ID).Error; err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}
	return nil
}

// seedTable inserts rows only when the table holds no record yet.
func seedTable[T any](db *gorm.DB, rows []T) error {
	var count int64
	if err := db.Model(new(T)).Count(&count).Error; err != nil {
		return fmt.Errorf("seed %T: %w", rows, err)
	}
	if count > 0 || len(rows) == 0 {
		return nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("seed %T: %w", rows, err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// timestamp is truncated to microseconds, the finest precision every medium keeps.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// conn scopes the handle to ctx and to the store clock.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Session(&gorm.Session{NowFunc: s.timestamp})
}

func (s *Store) isPostgres() bool {
	return s.db.Dialector.Name() == "postgres"
}

// lowerFunc names the SQL function that case-folds filter columns.
func (s *Store) lowerFunc() string {
	if s.db.Dialector.Name() == "sqlite" {
		return sqliteLower
	}
	return "LOWER"
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// escapeLikePattern escapes LIKE wildcard characters so they match literally.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
