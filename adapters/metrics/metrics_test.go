package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/bodygraph/gatesdb/adapters/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
	if m.RequestsInFlight == nil {
		t.Error("RequestsInFlight is nil")
	}
	if m.CatalogReloads == nil {
		t.Error("CatalogReloads is nil")
	}
	if m.CatalogEntities == nil {
		t.Error("CatalogEntities is nil")
	}
	if m.SnapshotsSaved == nil {
		t.Error("SnapshotsSaved is nil")
	}
}

func TestNewWithRegistry_Independent(t *testing.T) {
	// Two collectors on separate registries must not collide.
	metrics.NewWithRegistry(prometheus.NewRegistry())
	metrics.NewWithRegistry(prometheus.NewRegistry())
}

func TestCatalogMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.CatalogReloads.WithLabelValues("ru").Inc()
	m.CatalogReloads.WithLabelValues("es").Inc()
	m.CatalogReloadErrors.WithLabelValues("ru").Inc()
	m.CatalogEntities.WithLabelValues("ru", "gates").Set(64)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	want := map[string]int{
		"gatesdb_catalog_reloads_total":       2,
		"gatesdb_catalog_reload_errors_total": 1,
		"gatesdb_catalog_entities":            1,
	}
	for _, f := range families {
		if n, ok := want[f.GetName()]; ok {
			if len(f.GetMetric()) != n {
				t.Errorf("%s series = %d, want %d", f.GetName(), len(f.GetMetric()), n)
			}
			delete(want, f.GetName())
		}
	}
	for name := range want {
		t.Errorf("%s metric not found", name)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/v1/ru/gates/12", "/v1/ru/gates/:id"},
		{"/v1/ru/phs/diet", "/v1/ru/phs/:id"},
		{"/v1/ru/gates", "/v1/ru/gates"},
		{"/health", "/health"},
		{"/" + strings.Repeat("a", 60), "/" + strings.Repeat("a", 49) + "..."},
	}

	for _, tt := range tests {
		if got := metrics.NormalizePath(tt.path); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCatalogObserver(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	at := time.Unix(1700000000, 0)

	m.CatalogLoaded("ru", map[string]int{"gates": 64, "channels": 36}, at)
	m.CatalogLoaded("ru", map[string]int{"gates": 64, "channels": 36}, at)
	m.CatalogLoadFailed("es")
	m.SnapshotSaved("ru")

	if got := testutil.ToFloat64(m.CatalogReloads.WithLabelValues("ru")); got != 2 {
		t.Errorf("reloads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CatalogLastReload.WithLabelValues("ru")); got != 1700000000 {
		t.Errorf("last reload = %v, want 1700000000", got)
	}
	if got := testutil.ToFloat64(m.CatalogEntities.WithLabelValues("ru", "channels")); got != 36 {
		t.Errorf("channels = %v, want 36", got)
	}
	if got := testutil.ToFloat64(m.CatalogReloadErrors.WithLabelValues("es")); got != 1 {
		t.Errorf("reload errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SnapshotsSaved.WithLabelValues("ru")); got != 1 {
		t.Errorf("snapshots saved = %v, want 1", got)
	}
}
