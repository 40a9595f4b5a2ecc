package store

import (
	"context"
	"database/sql"
	"fmt"

	"popstats/internal/models"

	_ "modernc.org/sqlite"
)

// Tables is everything ExportSQLite writes.
type Tables struct {
	Countries  []models.Country
	Indicators []models.Indicator
	Population []models.PopulationRecord
}

const exportSchema = `
CREATE TABLE IF NOT EXISTS paises (
	codigo_iso3 TEXT PRIMARY KEY,
	nombre TEXT NOT NULL,
	codigo_iso TEXT
);

CREATE TABLE IF NOT EXISTS indicadores (
	id_indicador TEXT PRIMARY KEY,
	descripcion TEXT
);

CREATE TABLE IF NOT EXISTS poblacion (
	ano INTEGER NOT NULL,
	pais TEXT NOT NULL,
	codigo_iso3 TEXT NOT NULL,
	indicador_id TEXT NOT NULL,
	descripcion TEXT,
	valor REAL,
	estado TEXT,
	unidad TEXT,
	PRIMARY KEY (ano, codigo_iso3, indicador_id)
);
CREATE INDEX IF NOT EXISTS idx_poblacion_pais ON poblacion(pais, indicador_id, ano);
`

// ExportSQLite writes the tables into a SQLite database at path in a single
// transaction. Rows with an existing key are replaced.
func ExportSQLite(ctx context.Context, path string, t Tables) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = MEMORY"); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, exportSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := insertTables(ctx, tx, t); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

func insertTables(ctx context.Context, tx *sql.Tx, t Tables) error {
	stmtCountry, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO paises (codigo_iso3, nombre, codigo_iso) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmtCountry.Close() }()
	for _, c := range t.Countries {
		if _, err := stmtCountry.ExecContext(ctx, c.ISO3, c.Name, c.ISO2); err != nil {
			return fmt.Errorf("insert country %s: %w", c.ISO3, err)
		}
	}

	stmtIndicator, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO indicadores (id_indicador, descripcion) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmtIndicator.Close() }()
	for _, ind := range t.Indicators {
		if _, err := stmtIndicator.ExecContext(ctx, ind.ID, ind.Description); err != nil {
			return fmt.Errorf("insert indicator %s: %w", ind.ID, err)
		}
	}

	stmtRecord, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO poblacion (ano, pais, codigo_iso3, indicador_id, descripcion, valor, estado, unidad)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmtRecord.Close() }()
	for _, r := range t.Population {
		if _, err := stmtRecord.ExecContext(ctx, r.Year, r.Country, r.ISO3, r.IndicatorID, r.Description, r.Value, r.Status, r.Unit); err != nil {
			return fmt.Errorf("insert record %d/%s/%s: %w", r.Year, r.ISO3, r.IndicatorID, err)
		}
	}
	return nil
}
