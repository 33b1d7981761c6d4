package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bodygraph/gatesdb/ports"
)

// SnapshotStore implements ports.SnapshotStore using SQLite.
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore creates a new SQLite snapshot store.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save inserts s unless the latest snapshot of its locale has the same
// checksum. The check and the insert share one transaction.
func (s *SnapshotStore) Save(ctx context.Context, snap ports.Snapshot) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var latest string
	err = tx.QueryRowContext(ctx, `
		SELECT checksum FROM snapshots
		WHERE locale = ?
		ORDER BY seq DESC
		LIMIT 1
	`, snap.Locale).Scan(&latest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("query latest checksum: %w", err)
	case latest == snap.Checksum:
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, locale, checksum, document, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, snap.ID, snap.Locale, snap.Checksum, snap.Document, snap.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit snapshot: %w", err)
	}
	return true, nil
}

// Get retrieves a snapshot by ID.
func (s *SnapshotStore) Get(ctx context.Context, id string) (ports.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, locale, checksum, document, created_at
		FROM snapshots
		WHERE id = ?
	`, id)
	return scanSnapshot(row)
}

// Latest returns the most recent snapshot of a locale.
func (s *SnapshotStore) Latest(ctx context.Context, locale string) (ports.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, locale, checksum, document, created_at
		FROM snapshots
		WHERE locale = ?
		ORDER BY seq DESC
		LIMIT 1
	`, locale)
	return scanSnapshot(row)
}

// List returns snapshots newest first, without documents.
func (s *SnapshotStore) List(ctx context.Context, locale string, limit int) ([]ports.Snapshot, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, locale, checksum, created_at
		FROM snapshots
		WHERE ? = '' OR locale = ?
		ORDER BY seq DESC
		LIMIT ?
	`, locale, locale, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []ports.Snapshot
	for rows.Next() {
		var snap ports.Snapshot
		if err := rows.Scan(&snap.ID, &snap.Locale, &snap.Checksum, &snap.CreatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func scanSnapshot(row *sql.Row) (ports.Snapshot, error) {
	var snap ports.Snapshot
	err := row.Scan(&snap.ID, &snap.Locale, &snap.Checksum, &snap.Document, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Snapshot{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.Snapshot{}, err
	}
	return snap, nil
}

// Ensure interface compliance.
var _ ports.SnapshotStore = (*SnapshotStore)(nil)
