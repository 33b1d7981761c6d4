// Package schema provides the reference knowledge base records and their
// interchange encoding.
//
// All values are plain immutable records: they are decoded once from a
// source document, held for the lifetime of the process and never mutated
// by this package. Optional fields use Optional and are omitted from encoded
// output when absent.
package schema

// Gate describes one gate of the reference database.
type Gate struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Lines       map[string]string `json:"lines"`   // line number -> description
	Crosses     []string          `json:"crosses"` // cross ids, order preserved

	Center     Optional[string] `json:"center,omitzero"`
	Across     Optional[uint8]  `json:"across,omitzero"` // gate on the other side of the channel
	Fear       Optional[string] `json:"fear,omitzero"`
	Sexuality  Optional[string] `json:"sexuality,omitzero"`
	Love       Optional[string] `json:"love,omitzero"`
	Business   Optional[string] `json:"business,omitzero"`
	Circuit    Optional[string] `json:"circuit,omitzero"`
	SubCircuit Optional[string] `json:"subCircuit,omitzero"`
}

// Channel describes a channel joining two gates.
type Channel struct {
	Name        Optional[string] `json:"name,omitzero"`
	Description string           `json:"description"`
	Circuit     Optional[string] `json:"circuit,omitzero"`
	SubCircuit  Optional[string] `json:"subCircuit,omitzero"`
}

// MetaObject is a named description. It is used for types, profiles,
// authorities and crosses.
type MetaObject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Center describes a center in its normal and distorted states.
type Center struct {
	Name      string `json:"name"`
	Normal    string `json:"normal"`
	Distorted string `json:"distorted"`
}

// PhsBlock holds color and tone descriptions for one attribute group
// (diet, motivation, vision or environment).
type PhsBlock struct {
	Colors map[string]string `json:"colors"`
	Tones  map[string]string `json:"tones"`
}

// SubCircuit is a named sub-grouping inside a circuit.
type SubCircuit struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CircuitGroup is a circuit and its sub-circuits.
type CircuitGroup struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	SubCircuits map[string]SubCircuit `json:"sub_circuits"`
}

// GatesDatabase is the aggregate root of one locale of the knowledge base.
type GatesDatabase struct {
	Gates       map[string]Gate       `json:"gates"`
	Channels    map[string]Channel    `json:"channels"`
	Centers     map[string]Center     `json:"centers"`
	Types       map[string]MetaObject `json:"types"`
	Profiles    map[string]MetaObject `json:"profiles"`
	Authorities map[string]MetaObject `json:"authorities"`
	Crosses     map[string]MetaObject `json:"crosses"`

	Diet        PhsBlock `json:"diet"`
	Motivation  PhsBlock `json:"motivation"`
	Vision      PhsBlock `json:"vision"`
	Environment PhsBlock `json:"environment"`

	Circuits Optional[map[string]CircuitGroup] `json:"circuits,omitzero"`
}

// CircuitMapping pairs the circuit catalogue with flat gate and channel
// lookups. Mapping values have the form "circuit/subcircuit".
type CircuitMapping struct {
	Circuits       map[string]CircuitGroup `json:"circuits"`
	GateMapping    map[string]string       `json:"gateMapping"`
	ChannelMapping map[string]string       `json:"channelMapping"`
}

// PhsGroup names one of the four PhsBlock fields of a GatesDatabase.
type PhsGroup string

const (
	PhsDiet        PhsGroup = "diet"
	PhsMotivation  PhsGroup = "motivation"
	PhsVision      PhsGroup = "vision"
	PhsEnvironment PhsGroup = "environment"
)

// Phs returns the block for the given group.
func (db *GatesDatabase) Phs(group PhsGroup) (PhsBlock, bool) {
	switch group {
	case PhsDiet:
		return db.Diet, true
	case PhsMotivation:
		return db.Motivation, true
	case PhsVision:
		return db.Vision, true
	case PhsEnvironment:
		return db.Environment, true
	}
	return PhsBlock{}, false
}

// MetaKind names one of the four MetaObject maps of a GatesDatabase.
type MetaKind string

const (
	MetaTypes       MetaKind = "types"
	MetaProfiles    MetaKind = "profiles"
	MetaAuthorities MetaKind = "authorities"
	MetaCrosses     MetaKind = "crosses"
)

// Meta returns the MetaObject map for the given kind.
func (db *GatesDatabase) Meta(kind MetaKind) (map[string]MetaObject, bool) {
	switch kind {
	case MetaTypes:
		return db.Types, true
	case MetaProfiles:
		return db.Profiles, true
	case MetaAuthorities:
		return db.Authorities, true
	case MetaCrosses:
		return db.Crosses, true
	}
	return nil, false
}

// Empty returns a database with every map allocated and empty.
func Empty() GatesDatabase {
	return GatesDatabase{
		Gates:       map[string]Gate{},
		Channels:    map[string]Channel{},
		Centers:     map[string]Center{},
		Types:       map[string]MetaObject{},
		Profiles:    map[string]MetaObject{},
		Authorities: map[string]MetaObject{},
		Crosses:     map[string]MetaObject{},
		Diet:        EmptyPhsBlock(),
		Motivation:  EmptyPhsBlock(),
		Vision:      EmptyPhsBlock(),
		Environment: EmptyPhsBlock(),
	}
}

// EmptyPhsBlock returns a block with both maps allocated.
func EmptyPhsBlock() PhsBlock {
	return PhsBlock{Colors: map[string]string{}, Tones: map[string]string{}}
}
