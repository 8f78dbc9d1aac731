package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
drain_timeout = "20s"

[database]
host = "localhost"
port = 5432
name = "inspection"
user = "inspection"
password = "inspection"
ssl_mode = "disable"

[storage]
container_name = "snapshots"
connection_string = "UseDevelopmentStorage=true"

[redis]
addr = "localhost:6379"

[log]
level = "debug"
format = "console"

[api]
base_path = "/api"

[api.pagination]
default_page_size = 25
max_page_size = 50

[sweeps]
materialize_schedule = "10 0 * * *"
overdue_schedule = "*/30 * * * *"

[followups]
default_offset_days = 14
timezone = "Asia/Riyadh"

[notifications]
timeout = "5s"
concurrency = 4
stream = "inspect:events"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[sweeps]
disabled = true
`

const minimalConfig = `
[database]
name = "inspection"
user = "inspection"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func load(t *testing.T, content string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, content)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := load(t, baseConfig)

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if d := cfg.Server.DrainTimeoutDuration(); d != 20*time.Second {
		t.Errorf("drain timeout: got %v, want 20s", d)
	}
	if cfg.Storage.ContainerName != "snapshots" {
		t.Errorf("storage container: got %s, want snapshots", cfg.Storage.ContainerName)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("log format: got %s, want console", cfg.Log.Format)
	}
	if cfg.Sweeps.OverdueSchedule != "*/30 * * * *" {
		t.Errorf("overdue schedule: got %s", cfg.Sweeps.OverdueSchedule)
	}
	if cfg.Followups.DefaultOffsetDays != 14 {
		t.Errorf("default offset: got %d, want 14", cfg.Followups.DefaultOffsetDays)
	}
	if loc := cfg.Followups.Location(); loc.String() != "Asia/Riyadh" {
		t.Errorf("timezone: got %s, want Asia/Riyadh", loc)
	}
	if opts := cfg.Notifications.Options(); opts.Timeout != 5*time.Second || opts.Concurrency != 4 {
		t.Errorf("notification options: got %+v", opts)
	}
	if cfg.Notifications.Stream != "inspect:events" {
		t.Errorf("stream: got %s, want inspect:events", cfg.Notifications.Stream)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv(config.EnvInspectEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if !cfg.Sweeps.Disabled {
		t.Error("sweeps should be disabled by the overlay")
	}
	if cfg.Sweeps.MaterializeSchedule != "10 0 * * *" {
		t.Errorf("materialize schedule: got %s (want base value)", cfg.Sweeps.MaterializeSchedule)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	t.Setenv("INSPECT_VERSION", "2.0.0")
	t.Setenv("INSPECT_SERVER_PORT", "3000")
	t.Setenv("INSPECT_FOLLOWUPS_DEFAULT_OFFSET_DAYS", "3")
	t.Setenv("INSPECT_REDIS_ADDR", "redis:6379")
	t.Setenv("INSPECT_LOG_LEVEL", "warn")

	cfg := load(t, baseConfig)

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Followups.DefaultOffsetDays != 3 {
		t.Errorf("default offset: got %d, want 3", cfg.Followups.DefaultOffsetDays)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("redis addr: got %s, want redis:6379", cfg.Redis.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level: got %s, want warn", cfg.Log.Level)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("INSPECT_DB_NAME", "testdb")
	t.Setenv("INSPECT_DB_USER", "testuser")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Storage.Enabled() {
		t.Error("storage should be disabled without a connection string")
	}
}

func TestDefaults(t *testing.T) {
	cfg := load(t, minimalConfig)

	if cfg.API.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default_page_size: got %d, want 20", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max_page_size: got %d, want 100", cfg.API.Pagination.MaxPageSize)
	}
	if cfg.Followups.DefaultOffsetDays != 7 {
		t.Errorf("default offset: got %d, want 7", cfg.Followups.DefaultOffsetDays)
	}
	if cfg.Followups.Timezone != "UTC" {
		t.Errorf("timezone: got %s, want UTC", cfg.Followups.Timezone)
	}
	if cfg.Sweeps.LockTTLDuration() != 10*time.Minute {
		t.Errorf("lock ttl: got %v, want 10m", cfg.Sweeps.LockTTLDuration())
	}
	if cfg.Notifications.Stream != "inspect:notifications" {
		t.Errorf("stream: got %s, want inspect:notifications", cfg.Notifications.Stream)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log: got %s/%s, want info/json", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
	if d := cfg.Server.DrainTimeoutDuration(); d != 15*time.Second {
		t.Errorf("drain timeout: got %v, want 15s", d)
	}
	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, `server = {`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "invalid port",
			config:  minimalConfig + "\n[server]\nport = 99999\n",
			wantErr: "invalid port",
		},
		{
			name:    "invalid read_timeout",
			config:  minimalConfig + "\n[server]\nread_timeout = \"bad\"\n",
			wantErr: "invalid read_timeout",
		},
		{
			name:    "drain longer than shutdown",
			config:  minimalConfig + "\n[server]\ndrain_timeout = \"1m\"\n",
			wantErr: "exceeds shutdown_timeout",
		},
		{
			name:    "nested base path",
			config:  minimalConfig + "\n[api]\nbase_path = \"/api/v1\"\n",
			wantErr: "invalid base_path",
		},
		{
			name:    "invalid timezone",
			config:  minimalConfig + "\n[followups]\ntimezone = \"Mars/Olympus\"\n",
			wantErr: "invalid timezone",
		},
		{
			name:    "invalid cron",
			config:  minimalConfig + "\n[sweeps]\noverdue_schedule = \"hourly please\"\n",
			wantErr: "invalid overdue_schedule",
		},
		{
			name:    "invalid log format",
			config:  minimalConfig + "\n[log]\nformat = \"xml\"\n",
			wantErr: "invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
