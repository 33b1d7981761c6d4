package idgen_test

import (
	"sort"
	"testing"

	"github.com/bodygraph/gatesdb/adapters/idgen"
	"github.com/google/uuid"
)

func TestUUID_New(t *testing.T) {
	g := idgen.UUID{}

	id, err := uuid.Parse(g.New())
	if err != nil {
		t.Fatalf("generated ID is not a UUID: %v", err)
	}
	if id.Version() != 7 {
		t.Errorf("Version = %d, want 7", id.Version())
	}
}

func TestUUID_New_SortsInCreationOrder(t *testing.T) {
	g := idgen.UUID{}

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = g.New()
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("UUIDv7 IDs are not in creation order")
	}

	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestSequential_New(t *testing.T) {
	g := idgen.NewSequential("snap_")

	if got := g.New(); got != "snap_1" {
		t.Errorf("first ID = %s, want snap_1", got)
	}
	if got := g.New(); got != "snap_2" {
		t.Errorf("second ID = %s, want snap_2", got)
	}
}
