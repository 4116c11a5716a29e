// Package sqlite provides a SQLite-backed implementation of the preset
// repository port.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
	"github.com/ewilliams-labs/cadenza/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// Adapter implements the preset repository port for SQLite.
type Adapter struct {
	db *sql.DB
}

var _ ports.PresetRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration.
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// GetByName loads one preset. The spec documents are stored as JSON so the
// schema never has to chase every new tuning knob.
func (a *Adapter) GetByName(ctx context.Context, name string) (ports.Preset, error) {
	row := a.db.QueryRowContext(ctx,
		"SELECT name, seeds, filter, params FROM presets WHERE name = ?", name)

	var p ports.Preset
	var seeds, filter, params []byte
	if err := row.Scan(&p.Name, &seeds, &filter, &params); err != nil {
		if err == sql.ErrNoRows {
			return ports.Preset{}, fmt.Errorf("preset %q: %w", name, ports.ErrNotFound)
		}
		return ports.Preset{}, fmt.Errorf("failed to load preset: %w", err)
	}

	if err := json.Unmarshal(seeds, &p.Seeds); err != nil {
		return ports.Preset{}, fmt.Errorf("failed to decode preset seeds: %w", err)
	}
	if err := json.Unmarshal(filter, &p.Filter); err != nil {
		return ports.Preset{}, fmt.Errorf("failed to decode preset filter: %w", err)
	}
	if err := json.Unmarshal(params, &p.Params); err != nil {
		return ports.Preset{}, fmt.Errorf("failed to decode preset params: %w", err)
	}
	return p, nil
}

// Save upserts a preset under its name. The stored documents are validated
// before they touch the database; a preset that cannot run is never saved.
func (a *Adapter) Save(ctx context.Context, p ports.Preset) error {
	if p.Name == "" {
		return fmt.Errorf("%w: preset name must not be empty", domain.ErrInvalidParams)
	}
	if err := p.Params.Validate(); err != nil {
		return err
	}
	if err := p.Filter.Validate(); err != nil {
		return err
	}

	seeds, err := json.Marshal(p.Seeds)
	if err != nil {
		return fmt.Errorf("failed to encode preset seeds: %w", err)
	}
	filter, err := json.Marshal(p.Filter)
	if err != nil {
		return fmt.Errorf("failed to encode preset filter: %w", err)
	}
	params, err := json.Marshal(p.Params)
	if err != nil {
		return fmt.Errorf("failed to encode preset params: %w", err)
	}

	query := `
		INSERT INTO presets (name, seeds, filter, params, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			seeds=excluded.seeds,
			filter=excluded.filter,
			params=excluded.params,
			updated_at=CURRENT_TIMESTAMP;
	`
	if _, err := a.db.ExecContext(ctx, query, p.Name, seeds, filter, params); err != nil {
		return fmt.Errorf("failed to save preset %q: %w", p.Name, err)
	}
	return nil
}

// List returns all preset names in alphabetical order.
func (a *Adapter) List(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT name FROM presets ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan preset name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate presets: %w", err)
	}
	return names, nil
}

// Delete removes a preset. Deleting an unknown name reports ErrNotFound so
// the API layer can answer 404 instead of silently succeeding.
func (a *Adapter) Delete(ctx context.Context, name string) error {
	res, err := a.db.ExecContext(ctx, "DELETE FROM presets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete preset %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("preset %q: %w", name, ports.ErrNotFound)
	}
	return nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS presets (
		name TEXT PRIMARY KEY,
		seeds TEXT NOT NULL,
		filter TEXT NOT NULL,
		params TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}
	return nil
}
