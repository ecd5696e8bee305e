package config

import (
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Log
		Auth
		Audit
		Tasks
		Maintenance
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		Environment              string
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Log struct {
		Level  string
		Format string // "json" or "text"; empty picks by environment
	}
	Auth struct {
		BcryptCost int
	}
	Audit struct {
		Enabled       bool
		RetentionDays int // Days to keep audit events (default: 30)
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Maintenance struct {
		Schedule       string        // Cron format: "30 3 * * *" = nightly
		PurgeEnabled   bool          // Hard-delete aged soft-deleted records
		PurgeRetention time.Duration // Soft-deleted records older than this are purged
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("environment", "development")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "")
	v.SetDefault("auth_bcrypt_cost", 12)

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("maintenance_schedule", DefaultMaintenanceSchedule)
	v.SetDefault("maintenance_purge_enabled", false)
	v.SetDefault("maintenance_purge_retention", "720h") // 30 days

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			Environment:              v.GetString("ENVIRONMENT"),
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Auth: Auth{
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		Audit: Audit{
			Enabled:       v.GetBool("AUDIT_ENABLED"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Maintenance: Maintenance{
			Schedule:       v.GetString("MAINTENANCE_SCHEDULE"),
			PurgeEnabled:   v.GetBool("MAINTENANCE_PURGE_ENABLED"),
			PurgeRetention: v.GetDuration("MAINTENANCE_PURGE_RETENTION"),
		},
	}
}

// Address returns the host:port pair the HTTP server listens on.
func (h HTTP) Address() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(int(h.Port)))
}
