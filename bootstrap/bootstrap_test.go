package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apihttp "github.com/bodygraph/gatesdb/adapters/http"
	"github.com/bodygraph/gatesdb/app"
	"github.com/bodygraph/gatesdb/bootstrap"
	"github.com/bodygraph/gatesdb/config"
	"github.com/bodygraph/gatesdb/domain/schema"
)

func sampleDB() schema.GatesDatabase {
	db := schema.Empty()
	db.Gates["1"] = schema.Gate{
		Name:        "Self-Expression",
		Description: "The creative",
		Lines:       map[string]string{"1": "Creation is independent of will"},
		Crosses:     []string{},
	}
	return db
}

func testConfig(t *testing.T, driver, dsn string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ru.json")
	if err := app.WriteDatabase(path, sampleDB()); err != nil {
		t.Fatalf("write database: %v", err)
	}

	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Catalog: config.CatalogConfig{
			DefaultLocale: "ru",
			Locales:       map[string]string{"ru": path},
		},
		Database: config.DatabaseConfig{Driver: driver, DSN: dsn},
		Logging:  config.LoggingConfig{Level: "debug", Format: "json"},
		Metrics:  config.MetricsConfig{Enabled: true},
		OpenAPI:  config.OpenAPIConfig{Enabled: true},
	}
}

func newApp(t *testing.T, cfg *config.Config) *bootstrap.App {
	t.Helper()
	a, err := bootstrap.New(cfg, bootstrap.Options{
		Version:   apihttp.VersionResponse{Version: "test", Service: "gatesdb"},
		LogOutput: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	return a
}

func TestBootstrap_Integration(t *testing.T) {
	a := newApp(t, testConfig(t, "memory", ""))
	defer a.Shutdown()

	if a.Store == nil {
		t.Error("Store should not be nil")
	}
	if a.DB != nil {
		t.Error("DB should be nil for the memory driver")
	}
	if a.HTTPServer == nil {
		t.Fatal("HTTPServer should not be nil")
	}
	if a.HTTPServer.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %s, want 127.0.0.1:8080", a.HTTPServer.Addr)
	}
	if !a.Registry.Ready() {
		t.Error("registry not ready after initial load")
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/health/ready", http.StatusOK},
		{"/version", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/.well-known/openapi.json", http.StatusOK},
		{"/v1/ru/gates/1", http.StatusOK},
		{"/v1/de/gates/1", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		a.HTTPServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.status)
		}
	}
}

func TestBootstrap_SnapshotRecorded(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "snapshots.db")
	a := newApp(t, testConfig(t, "sqlite", dsn))
	defer a.Shutdown()

	if a.DB == nil {
		t.Fatal("DB should not be nil for the sqlite driver")
	}

	snap, err := a.Store.Latest(context.Background(), "ru")
	if err != nil {
		t.Fatalf("Latest error: %v", err)
	}
	if snap.Checksum != a.Registry.Default().Get().Checksum {
		t.Errorf("snapshot checksum = %s, want catalog checksum", snap.Checksum)
	}
}

func TestBootstrap_RestoreOnFailure(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "snapshots.db")
	cfg := testConfig(t, "sqlite", dsn)

	first := newApp(t, cfg)
	want := first.Registry.Default().Get().Checksum
	first.Shutdown()

	if err := os.WriteFile(cfg.Catalog.Locales["ru"], []byte(`{"gates": 1}`), 0644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}
	cfg.Catalog.RestoreOnFailure = true

	second := newApp(t, cfg)
	defer second.Shutdown()

	cat := second.Registry.Default().Get()
	if cat == nil {
		t.Fatal("catalog not restored")
	}
	if cat.Checksum != want {
		t.Errorf("restored checksum = %s, want %s", cat.Checksum, want)
	}
}

func TestBootstrap_FailedLocaleNotReady(t *testing.T) {
	cfg := testConfig(t, "memory", "")
	cfg.Catalog.Locales["es"] = filepath.Join(t.TempDir(), "missing.json")

	a := newApp(t, cfg)
	defer a.Shutdown()

	if a.Registry.Ready() {
		t.Error("registry ready with a missing locale")
	}

	rec := httptest.NewRecorder()
	a.HTTPServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/es/gates", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /v1/es/gates status = %d, want 503", rec.Code)
	}
}

func TestBootstrap_Reload(t *testing.T) {
	cfg := testConfig(t, "memory", "")
	a := newApp(t, cfg)
	defer a.Shutdown()

	db := sampleDB()
	g := db.Gates["1"]
	g.Name = "Creative"
	db.Gates["1"] = g
	if err := app.WriteDatabase(cfg.Catalog.Locales["ru"], db); err != nil {
		t.Fatalf("write database: %v", err)
	}

	if err := a.Reload(context.Background()); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if got := a.Registry.Default().Get().Database.Gates["1"].Name; got != "Creative" {
		t.Errorf("gate name = %s, want Creative", got)
	}
}

func TestBootstrap_GracefulShutdown(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "shutdown.db")
	a := newApp(t, testConfig(t, "sqlite", dsn))

	if err := a.Shutdown(); err != nil {
		t.Errorf("shutdown error: %v", err)
	}

	// Verify DB is closed (should error on query)
	if _, err := a.DB.DB.Query("SELECT 1"); err == nil {
		t.Error("expected error querying closed database")
	}
}

func TestBootstrap_BadDatabasePath(t *testing.T) {
	cfg := testConfig(t, "sqlite", "/nonexistent/dir/snapshots.db")

	_, err := bootstrap.New(cfg, bootstrap.Options{LogOutput: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("expected error for unopenable database")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := bootstrap.NewLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("locale", "ru").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %s", out)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, out)
	}
	if entry["locale"] != "ru" || entry["message"] != "shown" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewLogger_AutoNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := bootstrap.NewLogger(config.LoggingConfig{Level: "info", Format: "auto"}, &buf)
	logger.Info().Msg("hello")

	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("auto format on a buffer = %q, want JSON", buf.String())
	}
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := bootstrap.NewLogger(config.LoggingConfig{Level: "info", Format: "console"}, &buf)
	logger.Info().Time("at", time.Unix(0, 0)).Msg("hello")

	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("console format = %q, want human readable", buf.String())
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}
