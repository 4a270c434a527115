/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// SupportedTypes lists the accepted values of ConnectionConfig.Type.
var SupportedTypes = []string{"mysql", "postgres", "postgresql", "sqlite", "sqlite3"}

// IsSupportedType reports whether t names a supported database type.
func IsSupportedType(t string) bool {
	for _, s := range SupportedTypes {
		if strings.EqualFold(s, t) {
			return true
		}
	}
	return false
}

// BaseDatabaseFactory creates and manages a configured database manager and
// provides helpers for initialization, health checks, and statistics.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	logger  Logger
}

// NewDatabaseFactory returns a new database factory using the global logger.
func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{
		logger: GetLogger(),
	}
}

// CreateFromConfig constructs a database manager from the given connection
// configuration after applying DB_* environment overrides.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *ConnectionConfig) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	OverrideFromEnv(cfg)

	if !IsSupportedType(cfg.Type) {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v", cfg.Type, SupportedTypes)
	}

	manager := NewDatabaseManager(cfg)
	manager.SetLogger(f.logger)

	f.manager = manager
	return manager, nil
}

// OverrideFromEnv overrides connection settings from DB_* environment
// variables. Credentials are normally supplied this way rather than in files.
// Durations accept Go syntax ("90s") or a bare number of seconds.
func OverrideFromEnv(cfg *ConnectionConfig) {
	envString("DB_TYPE", func(v string) { cfg.Type = strings.ToLower(v) })
	envString("DB_HOST", func(v string) { cfg.Host = v })
	envString("DB_USERNAME", func(v string) { cfg.Username = v })
	envString("DB_PASSWORD", func(v string) { cfg.Password = v })
	envString("DB_NAME", func(v string) { cfg.DBName = v })
	envString("DB_SSLMODE", func(v string) { cfg.SSLMode = v })
	envString("DB_CHARSET", func(v string) { cfg.Charset = v })

	envInt("DB_PORT", &cfg.Port)
	envInt("DB_MAX_IDLE_CONNS", &cfg.MaxIdleConns)
	envInt("DB_MAX_OPEN_CONNS", &cfg.MaxOpenConns)
	envInt("DB_MAX_RECONNECT_TRIES", &cfg.MaxReconnectTries)

	envDuration("DB_CONN_MAX_LIFETIME", &cfg.ConnMaxLifetime)
	envDuration("DB_RECONNECT_INTERVAL", &cfg.ReconnectInterval)
	envDuration("DB_HEALTH_CHECK_INTERVAL", &cfg.HealthCheckInterval)
	envDuration("DB_SLOW_QUERY_TIME", &cfg.SlowQueryTime)

	envBool("DB_ENABLE_RECONNECT", &cfg.EnableReconnect)
	envBool("DB_ENABLE_QUERY_LOG", &cfg.EnableQueryLog)
}

func envString(key string, set func(string)) {
	if v := os.Getenv(key); v != "" {
		set(v)
	}
}

func envInt(key string, dst *int) {
	envString(key, func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	})
}

func envDuration(key string, dst *time.Duration) {
	envString(key, func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Second
		} else if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	})
}

func envBool(key string, dst *bool) {
	envString(key, func(v string) {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	})
}

// InitializeDatabase connects to the database and optionally runs migrations.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context, runMigrations bool) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}

	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if runMigrations {
		if err := f.manager.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	f.logger.Info("Database initialization completed")
	return nil
}

// GetManager returns the underlying database manager.
func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

// GetDB returns the Bun database instance, or nil if not initialized.
func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

// SetLogger sets the logger on the factory and the underlying manager.
func (f *BaseDatabaseFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

// Close closes the database connection managed by the factory.
func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

// GetHealthStatus returns the current database health status from the manager.
func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			Healthy:       false,
			Connected:     false,
			LastError:     "Database manager not initialized",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

// GetStats returns database connection statistics from the manager.
func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
