// Package specdb persists per-shot reduction results in SQLite so batch
// runs can be compared across shots without re-reducing raw frames.
package specdb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"math"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zap-plasma/doppler.report/internal/spectroscopy"
)

// SpecDB wraps the results database.
type SpecDB struct {
	*sql.DB
}

// schema.sql defines the shots and chord_temps tables.
//
//go:embed schema.sql
var schemaSQL string

// New opens (and if needed initializes) the results database at path.
// Use ":memory:" for tests.
func New(path string) (*SpecDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SpecDB{db}, nil
}

// RecordShot inserts a shot row for a source file and its acquisition
// metadata, returning the new shot ID.
func (db *SpecDB) RecordShot(sourceFile string, meta spectroscopy.Metadata) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO shots (shot_id, source_file, gain, gate_width_s, gate_delay_s) VALUES (?, ?, ?, ?, ?)`,
		id, sourceFile, meta.Gain, meta.GateWidth, meta.GateDelay,
	)
	if err != nil {
		return "", fmt.Errorf("record shot: %w", err)
	}
	return id, nil
}

// RecordChordResults stores every chord result of a shot in one
// transaction. Failed fits are stored too, with converged=0 and their
// sentinel-derived temperature; a NaN temperature is stored as 0 so the
// column stays queryable.
func (db *SpecDB) RecordChordResults(shotID string, results []spectroscopy.ChordResult) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		`INSERT INTO chord_temps (shot_id, chord, line, bin_center, roi_lo, roi_hi, amplitude, center, width, yoffset, converged, temp_ev)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		converged := 0
		if r.Temp.Fit.Converged {
			converged = 1
		}
		temp := r.Temp.TempEV
		if math.IsNaN(temp) || math.IsInf(temp, 0) {
			temp = 0
		}
		f := r.Temp.Fit
		if _, err := stmt.Exec(
			shotID, r.Chord, r.Line, r.BinCenter, r.ROI.Lo, r.ROI.Hi,
			f.Amplitude, f.Center, f.Width, f.Offset, converged, temp,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record chord %d line %d: %w", r.Chord, r.Line, err)
		}
	}
	return tx.Commit()
}

// ChordTemp is one persisted chord temperature row.
type ChordTemp struct {
	Chord     int
	Line      int
	BinCenter int
	Converged bool
	TempEV    float64
	Fit       spectroscopy.GaussianFit
}

// ChordTemps reads back every chord temperature of a shot in (chord, line)
// order.
func (db *SpecDB) ChordTemps(shotID string) ([]ChordTemp, error) {
	rows, err := db.Query(
		`SELECT chord, line, bin_center, amplitude, center, width, yoffset, converged, temp_ev
		 FROM chord_temps WHERE shot_id = ? ORDER BY chord, line`,
		shotID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChordTemp
	for rows.Next() {
		var ct ChordTemp
		var converged int
		if err := rows.Scan(
			&ct.Chord, &ct.Line, &ct.BinCenter,
			&ct.Fit.Amplitude, &ct.Fit.Center, &ct.Fit.Width, &ct.Fit.Offset,
			&converged, &ct.TempEV,
		); err != nil {
			return nil, err
		}
		ct.Converged = converged != 0
		ct.Fit.Converged = ct.Converged
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
