package simplesurface

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS ledger_slots (
	actor_key TEXT    NOT NULL,
	path      TEXT    NOT NULL,
	slot      INTEGER NOT NULL,
	material  TEXT    NOT NULL,
	PRIMARY KEY (actor_key, path, slot)
);`

// noSlot marks the row stored for a record that captured no slots.
const noSlot = -1

// LedgerStore keeps ledger records across sessions, keyed by an actor key the
// host chooses (usually the actor name).
type LedgerStore struct {
	db *sql.DB
}

// OpenLedgerStore opens or creates the sqlite database at path. ":memory:"
// gives a throwaway store.
func OpenLedgerStore(path string) (*LedgerStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %w", err)
	}
	// A single connection keeps ":memory:" databases alive between calls
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", err)
	}
	return &LedgerStore{db: db}, nil
}

// Save replaces everything stored under key with records.
func (s *LedgerStore) Save(ctx context.Context, key string, records []OverrideLedgerRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_slots WHERE actor_key = ?`, key); err != nil {
		return fmt.Errorf("clear ledger %q: %w", key, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledger_slots (actor_key, path, slot, material) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		path := r.Path.String()
		if len(r.Slots) == 0 {
			if _, err := stmt.ExecContext(ctx, key, path, noSlot, ""); err != nil {
				return fmt.Errorf("save ledger %q at %s: %w", key, path, err)
			}
			continue
		}
		for _, slot := range r.Slots.Slots() {
			if _, err := stmt.ExecContext(ctx, key, path, slot, string(r.Slots[slot])); err != nil {
				return fmt.Errorf("save ledger %q at %s[%d]: %w", key, path, slot, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Load returns the records stored under key ordered by path. A missing key
// yields no records and no error.
func (s *LedgerStore) Load(ctx context.Context, key string) ([]OverrideLedgerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, slot, material FROM ledger_slots WHERE actor_key = ? ORDER BY path, slot`, key)
	if err != nil {
		return nil, fmt.Errorf("load ledger %q: %w", key, err)
	}
	defer rows.Close()

	byPath := make(map[string]*OverrideLedgerRecord)
	var order []string
	for rows.Next() {
		var (
			pathStr  string
			slot     int
			material string
		)
		if err := rows.Scan(&pathStr, &slot, &material); err != nil {
			return nil, fmt.Errorf("scan ledger %q: %w", key, err)
		}
		rec, ok := byPath[pathStr]
		if !ok {
			path, err := ParseStructuralPath(pathStr)
			if err != nil {
				return nil, fmt.Errorf("load ledger %q: %w", key, err)
			}
			rec = &OverrideLedgerRecord{Path: path, Slots: SlotMaterialSnapshot{}}
			byPath[pathStr] = rec
			order = append(order, pathStr)
		}
		if slot == noSlot {
			continue
		}
		rec.Slots[slot] = AssetId(material)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load ledger %q: %w", key, err)
	}

	records := make([]OverrideLedgerRecord, 0, len(order))
	for _, p := range order {
		records = append(records, *byPath[p])
	}
	sort.SliceStable(records, func(i, j int) bool {
		return lessPath(records[i].Path, records[j].Path)
	})
	return records, nil
}

func (s *LedgerStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ledger_slots WHERE actor_key = ?`, key); err != nil {
		return fmt.Errorf("delete ledger %q: %w", key, err)
	}
	return nil
}

// Keys lists every actor key with stored records.
func (s *LedgerStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT actor_key FROM ledger_slots ORDER BY actor_key`)
	if err != nil {
		return nil, fmt.Errorf("list ledger keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("list ledger keys: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *LedgerStore) Close() error {
	return s.db.Close()
}

// lessPath orders paths the way EnumerateAll visits them.
func lessPath(a, b StructuralPath) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
