package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"prospectcrm/store"
	"prospectcrm/store/kvstore"
	"prospectcrm/store/sqlstore"
)

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// OpenBacking builds the store backing selected by cfg, migrated and seeded.
// The choice is made once at startup; callers only see store.Backing.
func OpenBacking(ctx context.Context, cfg Config) (store.Backing, error) {
	var backing store.Backing
	switch cfg.StoreBackend {
	case BackendKV:
		kv, err := openKV(ctx, cfg)
		if err != nil {
			return nil, err
		}
		backing = kvstore.New(kv)
	case BackendSQL:
		db, err := ConnectDB(cfg)
		if err != nil {
			return nil, err
		}
		backing = sqlstore.New(db)
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	logrus.Info("Initializing store")
	if err := backing.Initialize(ctx); err != nil {
		_ = backing.Close()
		return nil, fmt.Errorf("store initialization failed: %w", err)
	}
	logrus.WithField("backend", cfg.StoreBackend).Info("Store ready")
	return backing, nil
}

func openKV(ctx context.Context, cfg Config) (kvstore.KV, error) {
	if cfg.KVDriver != KVDriverRedis {
		return kvstore.NewMemoryKV(), nil
	}
	client, err := NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	return kvstore.NewRedisKV(client, cfg.Redis.Prefix), nil
}

// ConnectDB opens the relational database selected by cfg.DBDriver.
func ConnectDB(cfg Config) (*gorm.DB, error) {
	if cfg.DBDriver == DBDriverSQLite {
		logrus.WithField("path", cfg.SQLitePath).Info("Opening sqlite database")
		return sqlstore.OpenSQLite(cfg.SQLitePath)
	}

	dsn := cfg.PostgresDSN()
	logrus.WithField("dsn", maskPassword(dsn)).Info("Attempting to connect to database")

	db, err := sqlstore.OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logrus.Info("Successfully connected to the database")
	return db, nil
}
