/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package settingsstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

const schema = `CREATE TABLE IF NOT EXISTS visual_settings (
	visual_id TEXT NOT NULL,
	object    TEXT NOT NULL,
	property  TEXT NOT NULL,
	value     TEXT NOT NULL,
	PRIMARY KEY (visual_id, object, property)
)`

const upsert = `INSERT INTO visual_settings (visual_id, object, property, value)
VALUES (?, ?, ?, ?)
ON CONFLICT (visual_id, object, property) DO UPDATE SET value = excluded.value`

// SQLiteStore is a Store backed by a SQLite database.  The driver is chosen
// at build time: github.com/mattn/go-sqlite3 by default, or the pure-Go
// modernc.org/sqlite with the native_sqlite build tag.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = &SQLiteStore{}

// OpenSQLite opens, creating if needed, the settings database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	slog.Info("opening settings database", "path", path, "driver", SQLiteDriverName)
	db, err := sql.Open(SQLiteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database '%s': %w", path, err)
	}
	// In-memory databases are per-connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}

func (ss *SQLiteStore) PersistProperties(ctx context.Context, visualID string, changes []Change) (err error) {
	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range changes {
		if _, err := stmt.ExecContext(ctx, visualID, c.Object, c.Property, c.Value); err != nil {
			return fmt.Errorf("failed to persist %s.%s: %w", c.Object, c.Property, err)
		}
	}
	return tx.Commit()
}

func (ss *SQLiteStore) Objects(ctx context.Context, visualID string) (Objects, error) {
	rows, err := ss.db.QueryContext(ctx,
		`SELECT object, property, value FROM visual_settings WHERE visual_id = ?`, visualID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var changes []Change
	for rows.Next() {
		var c Change
		if err := rows.Scan(&c.Object, &c.Property, &c.Value); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, ErrNoVisual
	}
	ret := Objects{}
	ret.apply(changes)
	return ret, nil
}
