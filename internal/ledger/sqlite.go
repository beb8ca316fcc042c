package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"machinecraft.ai/internal/protocol"
)

// SQLite persists ledger state across restarts. A single connection is
// enough: every call comes from the world goroutine.
type SQLite struct {
	observers

	db    *sql.DB
	types map[string]struct{}
}

func OpenSQLite(path string, storageTypes []string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db, types: validTypeSet(storageTypes)}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-heavy write pattern of silent corrections.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS machine_storage (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			dimension TEXT NOT NULL,
			type TEXT NOT NULL,
			amount INTEGER NOT NULL,
			PRIMARY KEY (x, y, z, dimension, type)
		);`,
		`CREATE TABLE IF NOT EXISTS machine_slots (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			dimension TEXT NOT NULL,
			slot_id TEXT NOT NULL,
			type_index INTEGER NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (x, y, z, dimension, slot_id)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (l *SQLite) Close() error { return l.db.Close() }

func (l *SQLite) GetStorage(pos protocol.BlockPos, typeID string) (int, error) {
	var amount int
	err := l.db.QueryRow(
		`SELECT amount FROM machine_storage WHERE x=? AND y=? AND z=? AND dimension=? AND type=?`,
		pos.X, pos.Y, pos.Z, pos.Dimension, typeID,
	).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return amount, nil
}

func (l *SQLite) SetStorage(pos protocol.BlockPos, typeID string, amount int) error {
	if _, ok := l.types[typeID]; !ok {
		return ErrUnknownStorageType
	}
	if amount < 0 || amount > MaxMachineStorage {
		return ErrStorageOutOfRange
	}
	_, err := l.db.Exec(
		`INSERT INTO machine_storage (x, y, z, dimension, type, amount) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (x, y, z, dimension, type) DO UPDATE SET amount=excluded.amount`,
		pos.X, pos.Y, pos.Z, pos.Dimension, typeID, amount,
	)
	return err
}

func (l *SQLite) GetSlotItem(pos protocol.BlockPos, slotID string) (*SlotItem, error) {
	var it SlotItem
	err := l.db.QueryRow(
		`SELECT type_index, count FROM machine_slots WHERE x=? AND y=? AND z=? AND dimension=? AND slot_id=?`,
		pos.X, pos.Y, pos.Z, pos.Dimension, slotID,
	).Scan(&it.TypeIndex, &it.Count)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (l *SQLite) SetSlotItem(pos protocol.BlockPos, slotID string, item *SlotItem, mode WriteMode) error {
	var err error
	if item == nil {
		_, err = l.db.Exec(
			`DELETE FROM machine_slots WHERE x=? AND y=? AND z=? AND dimension=? AND slot_id=?`,
			pos.X, pos.Y, pos.Z, pos.Dimension, slotID,
		)
	} else {
		_, err = l.db.Exec(
			`INSERT INTO machine_slots (x, y, z, dimension, slot_id, type_index, count) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (x, y, z, dimension, slot_id) DO UPDATE SET type_index=excluded.type_index, count=excluded.count`,
			pos.X, pos.Y, pos.Z, pos.Dimension, slotID, item.TypeIndex, item.Count,
		)
	}
	if err != nil {
		return err
	}
	if mode == Notify {
		l.notify(pos, slotID)
	}
	return nil
}
