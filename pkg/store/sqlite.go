package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lemonberrylabs/unitconv/pkg/catalog"
	"github.com/lemonberrylabs/unitconv/pkg/units"
)

const schema = `
CREATE TABLE IF NOT EXISTS units (
	symbol TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	measure TEXT NOT NULL DEFAULT '',
	dim_length INTEGER NOT NULL DEFAULT 0,
	dim_time INTEGER NOT NULL DEFAULT 0,
	dim_mass INTEGER NOT NULL DEFAULT 0,
	dim_substance INTEGER NOT NULL DEFAULT 0,
	dim_temperature INTEGER NOT NULL DEFAULT 0,
	dim_current INTEGER NOT NULL DEFAULT 0,
	dim_luminosity INTEGER NOT NULL DEFAULT 0,
	multiplier REAL NOT NULL,
	offset_value REAL NOT NULL DEFAULT 0
);
`

// SQLitePersister keeps the catalog in a SQLite database, one row per unit.
type SQLitePersister struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLitePersister{db: db}, nil
}

// Close closes the database.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

// Load reads every stored unit. A row that does not describe a valid unit
// fails the whole load, as a malformed catalog file does.
func (p *SQLitePersister) Load(ctx context.Context) ([]units.Unit, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT symbol, name, measure, dim_length, dim_time, dim_mass,
			dim_substance, dim_temperature, dim_current, dim_luminosity,
			multiplier, offset_value
		FROM units`)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var us []units.Unit
	for rows.Next() {
		var u units.Unit
		d := &u.Dims
		if err := rows.Scan(&u.Symbol, &u.Name, &u.Measure.Name,
			&d[units.Length], &d[units.Time], &d[units.Mass], &d[units.Substance],
			&d[units.Temperature], &d[units.Current], &d[units.Luminosity],
			&u.Multiplier, &u.Offset); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		if err := catalog.Validate(u); err != nil {
			return nil, fmt.Errorf("invalid stored unit: %w", err)
		}
		us = append(us, u)
	}
	return us, rows.Err()
}

// Save replaces the stored units in a single transaction.
func (p *SQLitePersister) Save(ctx context.Context, us []units.Unit) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM units`); err != nil {
		return fmt.Errorf("failed to clear units: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO units (symbol, name, measure, dim_length, dim_time, dim_mass,
			dim_substance, dim_temperature, dim_current, dim_luminosity,
			multiplier, offset_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range us {
		d := u.Dims
		if _, err := stmt.ExecContext(ctx, u.Symbol, u.Name, u.Measure.Name,
			d[units.Length], d[units.Time], d[units.Mass], d[units.Substance],
			d[units.Temperature], d[units.Current], d[units.Luminosity],
			u.Multiplier, u.Offset); err != nil {
			return fmt.Errorf("failed to save unit %q: %w", u.Symbol, err)
		}
	}
	return tx.Commit()
}
