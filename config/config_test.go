package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bodygraph/gatesdb/config"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 5s

catalog:
  default_locale: es
  hot_reload: true
  locales:
    ru: "/data/ru.json"
    es: "/data/es.yaml"

database:
  driver: "sqlite"
  dsn: "/var/lib/gatesdb/snapshots.db"

logging:
  level: debug
  format: console

metrics:
  enabled: true

openapi:
  enabled: true
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Host = %s, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr = %s, want 127.0.0.1:9090", cfg.Server.Addr())
	}
	if cfg.Catalog.DefaultLocale != "es" {
		t.Errorf("DefaultLocale = %s, want es", cfg.Catalog.DefaultLocale)
	}
	if !cfg.Catalog.HotReload {
		t.Error("HotReload = false, want true")
	}
	if cfg.Catalog.Locales["ru"] != "/data/ru.json" {
		t.Errorf("Locales[ru] = %s, want /data/ru.json", cfg.Catalog.Locales["ru"])
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %s, want sqlite", cfg.Database.Driver)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %s, want console", cfg.Logging.Format)
	}
	if !cfg.Metrics.Enabled || !cfg.OpenAPI.Enabled {
		t.Error("metrics and openapi should be enabled")
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
catalog:
  locales:
    ru: "/data/ru.json"
    es: "/data/es.json"
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default Host = %s, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.WriteTimeout != 60*time.Second {
		t.Errorf("default WriteTimeout = %v, want 60s", cfg.Server.WriteTimeout)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("default ShutdownTimeout = %v, want 30s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Catalog.DefaultLocale != "es" {
		t.Errorf("default DefaultLocale = %s, want es (first sorted)", cfg.Catalog.DefaultLocale)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("default Database.Driver = %s, want memory", cfg.Database.Driver)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("default Logging.Format = %s, want json", cfg.Logging.Format)
	}
}

func TestLoad_DSNImpliesSQLite(t *testing.T) {
	content := `
catalog:
  locales:
    ru: "/data/ru.json"
database:
  dsn: "/tmp/snapshots.db"
`

	cfg := writeAndLoad(t, content)

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %s, want sqlite", cfg.Database.Driver)
	}
}

func TestLoad_RelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gatesdb.yaml")
	content := `
catalog:
  locales:
    ru: "data/ru.json"
    es: "/abs/es.json"
database:
  dsn: "snapshots.db"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if want := filepath.Join(dir, "data", "ru.json"); cfg.Catalog.Locales["ru"] != want {
		t.Errorf("Locales[ru] = %s, want %s", cfg.Catalog.Locales["ru"], want)
	}
	if cfg.Catalog.Locales["es"] != "/abs/es.json" {
		t.Errorf("Locales[es] = %s, want /abs/es.json", cfg.Catalog.Locales["es"])
	}
	if want := filepath.Join(dir, "snapshots.db"); cfg.Database.DSN != want {
		t.Errorf("DSN = %s, want %s", cfg.Database.DSN, want)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_GATES_FILE", "/env/ru.json")

	content := `
catalog:
  locales:
    ru: "${TEST_GATES_FILE}"
`

	cfg := writeAndLoad(t, content)

	if cfg.Catalog.Locales["ru"] != "/env/ru.json" {
		t.Errorf("Locales[ru] = %s, want /env/ru.json", cfg.Catalog.Locales["ru"])
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no locales",
			content: "server:\n  port: 8080\n",
			wantErr: "catalog.locales",
		},
		{
			name:    "unknown default locale",
			content: "catalog:\n  default_locale: de\n  locales:\n    ru: /ru.json\n",
			wantErr: "default_locale",
		},
		{
			name:    "bad port",
			content: "server:\n  port: 70000\ncatalog:\n  locales:\n    ru: /ru.json\n",
			wantErr: "server.port",
		},
		{
			name:    "bad driver",
			content: "catalog:\n  locales:\n    ru: /ru.json\ndatabase:\n  driver: postgres\n",
			wantErr: "database.driver",
		},
		{
			name:    "sqlite without dsn",
			content: "catalog:\n  locales:\n    ru: /ru.json\ndatabase:\n  driver: sqlite\n",
			wantErr: "database.dsn",
		},
		{
			name:    "bad log level",
			content: "catalog:\n  locales:\n    ru: /ru.json\nlogging:\n  level: loud\n",
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			content: "catalog:\n  locales:\n    ru: /ru.json\nlogging:\n  format: xml\n",
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := writeAndLoadErr(t, tt.content)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GATESDB_CATALOG_LOCALES", "ru=/data/ru.json, es=/data/es.json,broken")
	t.Setenv("GATESDB_CATALOG_DEFAULT_LOCALE", "ru")
	t.Setenv("GATESDB_SERVER_PORT", "9999")
	t.Setenv("GATESDB_DATABASE_DSN", "/tmp/env-test.db")
	t.Setenv("GATESDB_LOG_LEVEL", "debug")
	t.Setenv("GATESDB_METRICS_ENABLED", "true")
	t.Setenv("GATESDB_CATALOG_HOT_RELOAD", "yes")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if len(cfg.Catalog.Locales) != 2 {
		t.Fatalf("len(Locales) = %d, want 2", len(cfg.Catalog.Locales))
	}
	if cfg.Catalog.Locales["es"] != "/data/es.json" {
		t.Errorf("Locales[es] = %s, want /data/es.json", cfg.Catalog.Locales["es"])
	}
	if cfg.Catalog.DefaultLocale != "ru" {
		t.Errorf("DefaultLocale = %s, want ru", cfg.Catalog.DefaultLocale)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %s, want sqlite", cfg.Database.Driver)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if !cfg.Catalog.HotReload {
		t.Error("HotReload = false, want true")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("GATESDB_SERVER_PORT", "7777")
	t.Setenv("GATESDB_LOG_LEVEL", "error")

	content := `
server:
  port: 8080
catalog:
  locales:
    ru: /ru.json
logging:
  level: info
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Port != 7777 {
		t.Errorf("Port = %d, want 7777 (env override)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %s, want error (env override)", cfg.Logging.Level)
	}
}

func TestLoadWithFallback_UsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gatesdb.yaml")
	if err := os.WriteFile(path, []byte("catalog:\n  locales:\n    ru: /file/ru.json\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Catalog.Locales["ru"] != "/file/ru.json" {
		t.Errorf("Locales[ru] = %s, want /file/ru.json", cfg.Catalog.Locales["ru"])
	}
}

func TestLoadWithFallback_UsesEnv(t *testing.T) {
	t.Setenv("GATESDB_CATALOG_LOCALES", "ru=/env/ru.json")

	cfg, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Catalog.Locales["ru"] != "/env/ru.json" {
		t.Errorf("Locales[ru] = %s, want /env/ru.json", cfg.Catalog.Locales["ru"])
	}
}

func TestLoadWithFallback_NoConfig(t *testing.T) {
	t.Setenv("GATESDB_CATALOG_LOCALES", "")

	_, err := config.LoadWithFallback("")
	if err == nil {
		t.Fatal("expected error when no configuration is available")
	}
}

func TestHasEnvConfig(t *testing.T) {
	t.Setenv("GATESDB_CATALOG_LOCALES", "")
	if config.HasEnvConfig() {
		t.Error("HasEnvConfig = true with empty locales")
	}

	t.Setenv("GATESDB_CATALOG_LOCALES", "ru=/ru.json")
	if !config.HasEnvConfig() {
		t.Error("HasEnvConfig = false with locales set")
	}
}

func TestParseBoolValues(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("GATESDB_CATALOG_LOCALES", "ru=/ru.json")
			t.Setenv("GATESDB_METRICS_ENABLED", tt.value)
			cfg, err := config.LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv error: %v", err)
			}
			if cfg.Metrics.Enabled != tt.want {
				t.Errorf("parseBool(%q) = %v, want %v", tt.value, cfg.Metrics.Enabled, tt.want)
			}
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := writeAndLoadErr(t, "catalog: [unclosed\n")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Errorf("error = %v, want parse config error", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := config.Load("/nonexistent/gatesdb.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := writeAndLoadErr(t, content)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}

func writeAndLoadErr(t *testing.T, content string) (*config.Config, error) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return config.Load(path)
}
