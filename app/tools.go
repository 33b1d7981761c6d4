package app

import (
	"context"
	"fmt"
	"os"

	"github.com/bodygraph/gatesdb/domain/enrich"
	"github.com/bodygraph/gatesdb/domain/schema"
	"github.com/bodygraph/gatesdb/ports"
)

// Document kinds accepted by ValidateFile.
const (
	KindDatabase = "database"
	KindCircuits = "circuits"
	KindCenters  = "centers"
)

// ValidateFile strictly decodes the document at path as kind. The returned
// error matches schema.ErrStructuralMismatch when the document has the
// wrong shape.
func ValidateFile(path, kind string) error {
	var err error
	switch kind {
	case KindDatabase, "":
		_, err = ReadDatabase(path)
	case KindCircuits:
		_, err = readDocument[schema.CircuitMapping](path)
	case KindCenters:
		_, err = readDocument[map[string]enrich.GateMeta](path)
	default:
		return fmt.Errorf("unknown document kind %q", kind)
	}
	return err
}

// BuildOptions names the files used by BuildFile.
type BuildOptions struct {
	In       string // gates database to enrich
	Out      string // destination; may equal In
	Circuits string // optional circuit mapping
	Centers  string // optional gate to center table
}

// BuildFile enriches the database at opts.In with the optional auxiliary
// documents and writes the result to opts.Out.
func BuildFile(opts BuildOptions) (schema.GatesDatabase, error) {
	db, err := ReadDatabase(opts.In)
	if err != nil {
		return schema.GatesDatabase{}, err
	}

	var eo enrich.Options
	if opts.Centers != "" {
		centers, err := readDocument[map[string]enrich.GateMeta](opts.Centers)
		if err != nil {
			return schema.GatesDatabase{}, err
		}
		eo.Centers = centers
	}
	if opts.Circuits != "" {
		mapping, err := readDocument[schema.CircuitMapping](opts.Circuits)
		if err != nil {
			return schema.GatesDatabase{}, err
		}
		eo.Circuits = &mapping
	}

	out := enrich.Build(db, eo)
	if err := WriteDatabase(opts.Out, out); err != nil {
		return schema.GatesDatabase{}, err
	}
	return out, nil
}

// SyncFiles copies the technical keys of the database at from into the
// database at to and rewrites to.
func SyncFiles(from, to string) (schema.GatesDatabase, error) {
	src, err := ReadDatabase(from)
	if err != nil {
		return schema.GatesDatabase{}, err
	}
	dst, err := ReadDatabase(to)
	if err != nil {
		return schema.GatesDatabase{}, err
	}

	out := enrich.SyncTechnicalKeys(src, dst)
	if err := WriteDatabase(to, out); err != nil {
		return schema.GatesDatabase{}, err
	}
	return out, nil
}

// WriteDatabase writes db to path as indented JSON, or as YAML when the
// path has a YAML extension.
func WriteDatabase(path string, db schema.GatesDatabase) error {
	var (
		data []byte
		err  error
	)
	if IsYAML(path) {
		data, err = schema.EncodeYAML(db)
	} else {
		data, err = schema.EncodeIndent(db, "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ImportSnapshot strictly decodes the database at path and stores it as a
// snapshot of locale. saved is false when the locale's latest snapshot
// already holds the same document.
func ImportSnapshot(ctx context.Context, deps CatalogDeps, locale, path string) (snap ports.Snapshot, saved bool, err error) {
	if deps.Store == nil {
		return ports.Snapshot{}, false, fmt.Errorf("import snapshot: no store configured")
	}
	db, err := ReadDatabase(path)
	if err != nil {
		return ports.Snapshot{}, false, err
	}
	cat, err := NewCatalog(locale, db, deps.Clock.Now())
	if err != nil {
		return ports.Snapshot{}, false, err
	}

	snap = ports.Snapshot{
		ID:        deps.IDGen.New(),
		Locale:    locale,
		Checksum:  cat.Checksum,
		Document:  cat.Document,
		CreatedAt: cat.LoadedAt,
	}
	saved, err = deps.Store.Save(ctx, snap)
	if err != nil {
		return ports.Snapshot{}, false, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, saved, nil
}

func readDocument[T any](path string) (T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", path, err)
	}
	var v T
	if IsYAML(path) {
		v, err = schema.DecodeYAML[T](data)
	} else {
		v, err = schema.Decode[T](data)
	}
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}
