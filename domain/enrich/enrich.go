// Package enrich derives cross-reference fields of a gates database from
// auxiliary documents: the channel list, the gate to center table and the
// circuit mapping.
//
// All functions are pure. They return a new database and never modify the
// one they are given.
package enrich

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/bodygraph/gatesdb/domain/schema"
)

// GateMeta is one entry of the gate to center table.
type GateMeta struct {
	Center      schema.Optional[string] `json:"center,omitzero"`
	Zodiac      schema.Optional[string] `json:"zodiac,omitzero"`
	StartDegree schema.Optional[string] `json:"startDegree,omitzero"`
}

// Options selects the auxiliary documents used by Build.
type Options struct {
	Centers  map[string]GateMeta    // gate id -> meta; nil skips centers
	Circuits *schema.CircuitMapping // nil skips circuits
}

// Build normalizes line keys, then applies centers, across gates and the
// circuit mapping.
func Build(db schema.GatesDatabase, opts Options) schema.GatesDatabase {
	out := NormalizeLines(db)
	if opts.Centers != nil {
		out = ApplyCenters(out, opts.Centers)
	}
	out = ApplyAcross(out)
	if opts.Circuits != nil {
		out = ApplyCircuitMapping(out, *opts.Circuits)
	}
	return out
}

// AcrossMap pairs the two gates of every channel id of the form "a-b".
// Ids that do not consist of two gate numbers are skipped.
func AcrossMap(channels map[string]schema.Channel) map[string]uint8 {
	across := make(map[string]uint8)
	for id := range channels {
		left, right, ok := strings.Cut(id, "-")
		if !ok {
			continue
		}
		left, right = strings.TrimSpace(left), strings.TrimSpace(right)
		a, errA := strconv.ParseUint(left, 10, 8)
		b, errB := strconv.ParseUint(right, 10, 8)
		if errA != nil || errB != nil {
			continue
		}
		across[left] = uint8(b)
		across[right] = uint8(a)
	}
	return across
}

// ApplyAcross sets Gate.Across for every gate that appears in a channel id.
func ApplyAcross(db schema.GatesDatabase) schema.GatesDatabase {
	across := AcrossMap(db.Channels)
	out := db
	out.Gates = make(map[string]schema.Gate, len(db.Gates))
	for id, g := range db.Gates {
		if other, ok := across[id]; ok {
			g.Across = schema.Some(other)
		}
		out.Gates[id] = g
	}
	return out
}

// ApplyCenters sets Gate.Center from the gate to center table.
func ApplyCenters(db schema.GatesDatabase, centers map[string]GateMeta) schema.GatesDatabase {
	out := db
	out.Gates = make(map[string]schema.Gate, len(db.Gates))
	for id, g := range db.Gates {
		if c, ok := centers[id].Center.Get(); ok && c != "" {
			g.Center = schema.Some(c)
		}
		out.Gates[id] = g
	}
	return out
}

// ParseCircuitPath splits a mapping value "circuit/subcircuit". sub is
// empty when the value has no slash.
func ParseCircuitPath(path string) (circuit, sub string) {
	circuit, sub, _ = strings.Cut(path, "/")
	return circuit, sub
}

// ApplyCircuitMapping classifies gates and channels listed in the mapping
// and copies the circuit catalogue into the database when it is non-empty.
func ApplyCircuitMapping(db schema.GatesDatabase, m schema.CircuitMapping) schema.GatesDatabase {
	out := db

	out.Gates = make(map[string]schema.Gate, len(db.Gates))
	for id, g := range db.Gates {
		if p, ok := m.GateMapping[id]; ok {
			g.Circuit, g.SubCircuit = circuitFields(p)
		}
		out.Gates[id] = g
	}

	out.Channels = make(map[string]schema.Channel, len(db.Channels))
	for id, ch := range db.Channels {
		if p, ok := m.ChannelMapping[id]; ok {
			ch.Circuit, ch.SubCircuit = circuitFields(p)
		}
		out.Channels[id] = ch
	}

	if len(m.Circuits) > 0 {
		out.Circuits = schema.Some(maps.Clone(m.Circuits))
	}
	return out
}

func circuitFields(path string) (circuit, sub schema.Optional[string]) {
	c, s := ParseCircuitPath(path)
	if c != "" {
		circuit = schema.Some(c)
	}
	if s != "" {
		sub = schema.Some(s)
	}
	return circuit, sub
}

// NormalizeLineKeys rewrites keys such as "Line 3" to their first run of
// digits. Keys without digits are kept. When two keys normalize to the same
// value the lexically greater source key wins.
func NormalizeLineKeys(lines map[string]string) map[string]string {
	out := make(map[string]string, len(lines))
	for _, k := range slices.Sorted(maps.Keys(lines)) {
		out[lineNumber(k)] = lines[k]
	}
	return out
}

// NormalizeLines applies NormalizeLineKeys to every gate.
func NormalizeLines(db schema.GatesDatabase) schema.GatesDatabase {
	out := db
	out.Gates = make(map[string]schema.Gate, len(db.Gates))
	for id, g := range db.Gates {
		if g.Lines != nil {
			g.Lines = NormalizeLineKeys(g.Lines)
		}
		out.Gates[id] = g
	}
	return out
}

func lineNumber(key string) string {
	start := strings.IndexFunc(key, isDigit)
	if start < 0 {
		return key
	}
	end := start
	for end < len(key) && isDigit(rune(key[end])) {
		end++
	}
	return key[start:end]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// SyncTechnicalKeys copies locale-independent fields from src into dst:
// center, circuit and subCircuit of gates, circuit and subCircuit of
// channels. Only ids present in both databases are touched and only fields
// present in src are copied.
func SyncTechnicalKeys(src, dst schema.GatesDatabase) schema.GatesDatabase {
	out := dst

	out.Gates = make(map[string]schema.Gate, len(dst.Gates))
	for id, g := range dst.Gates {
		if s, ok := src.Gates[id]; ok {
			g.Center = pick(s.Center, g.Center)
			g.Circuit = pick(s.Circuit, g.Circuit)
			g.SubCircuit = pick(s.SubCircuit, g.SubCircuit)
		}
		out.Gates[id] = g
	}

	out.Channels = make(map[string]schema.Channel, len(dst.Channels))
	for id, ch := range dst.Channels {
		if s, ok := src.Channels[id]; ok {
			ch.Circuit = pick(s.Circuit, ch.Circuit)
			ch.SubCircuit = pick(s.SubCircuit, ch.SubCircuit)
		}
		out.Channels[id] = ch
	}
	return out
}

// pick returns from when it holds a non-empty value, otherwise keep.
func pick(from, keep schema.Optional[string]) schema.Optional[string] {
	if v, ok := from.Get(); ok && v != "" {
		return from
	}
	return keep
}
