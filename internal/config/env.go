package config

import (
	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/sweeps"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/cache"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/database"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/logging"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/storage"
)

// Environment variable names, one block per section.

var envDatabase = &database.Env{
	Host:            "INSPECT_DB_HOST",
	Port:            "INSPECT_DB_PORT",
	Name:            "INSPECT_DB_NAME",
	User:            "INSPECT_DB_USER",
	Password:        "INSPECT_DB_PASSWORD",
	SSLMode:         "INSPECT_DB_SSL_MODE",
	MaxOpenConns:    "INSPECT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "INSPECT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "INSPECT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "INSPECT_DB_CONN_TIMEOUT",
}

var envStorage = &storage.Env{
	ContainerName:    "INSPECT_STORAGE_CONTAINER_NAME",
	ConnectionString: "INSPECT_STORAGE_CONNECTION_STRING",
}

var envRedis = &cache.Env{
	Addr:        "INSPECT_REDIS_ADDR",
	Password:    "INSPECT_REDIS_PASSWORD",
	DB:          "INSPECT_REDIS_DB",
	DialTimeout: "INSPECT_REDIS_DIAL_TIMEOUT",
}

var envLog = &logging.Env{
	Level:  "INSPECT_LOG_LEVEL",
	Format: "INSPECT_LOG_FORMAT",
}

var envSweeps = &sweeps.Env{
	Disabled:            "INSPECT_SWEEPS_DISABLED",
	MaterializeSchedule: "INSPECT_SWEEPS_MATERIALIZE_SCHEDULE",
	OverdueSchedule:     "INSPECT_SWEEPS_OVERDUE_SCHEDULE",
	LockTTL:             "INSPECT_SWEEPS_LOCK_TTL",
}

var envFollowups = &followups.Env{
	DefaultOffsetDays: "INSPECT_FOLLOWUPS_DEFAULT_OFFSET_DAYS",
	Timezone:          "INSPECT_FOLLOWUPS_TIMEZONE",
}

var envNotifications = &notifications.Env{
	Timeout:      "INSPECT_NOTIFICATIONS_TIMEOUT",
	Concurrency:  "INSPECT_NOTIFICATIONS_CONCURRENCY",
	Stream:       "INSPECT_NOTIFICATIONS_STREAM",
	StreamMaxLen: "INSPECT_NOTIFICATIONS_STREAM_MAX_LEN",
}
