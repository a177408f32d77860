// Package bootstrap turns configuration into the collaborators the scheduling
// service and HTTP handlers run on. Optional pieces come back nil when disabled.
package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/dental-receptionist/internal/compliance"
	appconfig "github.com/wolfman30/dental-receptionist/internal/config"
	"github.com/wolfman30/dental-receptionist/internal/daylock"
	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available; booking day lock disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildDayLocker serializes bookings per clinic day across replicas. Without
// Redis, concurrent bookings for the same day are not serialized.
func BuildDayLocker(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) scheduling.DayLocker {
	if redisClient == nil {
		return nil
	}
	var opts []daylock.Option
	if cfg != nil {
		if cfg.BookingLockTTL > 0 {
			opts = append(opts, daylock.WithTTL(cfg.BookingLockTTL))
		}
		if cfg.BookingLockWait > 0 {
			opts = append(opts, daylock.WithWait(cfg.BookingLockWait))
		}
	}
	return daylock.NewRedisLocker(redisClient, logger, opts...)
}

// BuildAuditDB opens the Postgres pool used by the booking audit trail, or
// returns nil when DATABASE_URL is unset.
func BuildAuditDB(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*sql.DB, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: ping database: %w", err)
	}
	logger.Info("booking audit trail enabled")
	return db, nil
}

// BuildAuditor wraps db, returning a nil interface when db is nil.
func BuildAuditor(db *sql.DB) scheduling.Auditor {
	if db == nil {
		return nil
	}
	return compliance.NewBookingAuditor(db)
}
