// Package sqlite provides SQLite database writing for fragment ladders
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ChrisMcGann/FragMass/pkg/core"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"

	schemaVersion = 1
)

// Writer handles writing ladders to SQLite database files
type Writer struct {
	db           *sql.DB
	outputPath   string
	tx           *sql.Tx
	peptideStmt  *sql.Stmt
	fragmentStmt *sql.Stmt
	peptideID    int
	fragmentID   int
	finalized    bool
	closed       bool
	description  string
}

// NewWriter creates a new SQLite writer. An existing file at outputPath is
// replaced.
func NewWriter(outputPath string) (*Writer, error) {
	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove existing output %s: %w", outputPath, err)
	}

	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		peptideID:  1,
		fragmentID: 1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// SetDescription sets the description stored in HeaderTable
func (w *Writer) SetDescription(desc string) {
	w.description = desc
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS PeptideTable (
		PeptideId INTEGER PRIMARY KEY,
		Sequence TEXT,
		StaticMods TEXT,
		VariableMods TEXT,
		NTermMod DOUBLE,
		CTermMod DOUBLE,
		blobMonoN BLOB,
		blobMonoC BLOB,
		blobAvgN BLOB,
		blobAvgC BLOB
	);

	CREATE TABLE IF NOT EXISTS FragmentTable (
		FragmentId INTEGER PRIMARY KEY,
		PeptideId INTEGER REFERENCES PeptideTable(PeptideId),
		SplitIndex INTEGER,
		Terminus TEXT,
		Residues TEXT,
		MonoMass DOUBLE,
		AvgMass DOUBLE
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements starts the write transaction and prepares the insert
// statements inside it
func (w *Writer) prepareStatements() error {
	var err error

	w.tx, err = w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.peptideStmt, err = w.tx.Prepare(`
		INSERT INTO PeptideTable (
			PeptideId, Sequence, StaticMods, VariableMods, NTermMod, CTermMod,
			blobMonoN, blobMonoC, blobAvgN, blobAvgC
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		return fmt.Errorf("failed to prepare peptide statement: %w", err)
	}

	w.fragmentStmt, err = w.tx.Prepare(`
		INSERT INTO FragmentTable (
			FragmentId, PeptideId, SplitIndex, Terminus, Residues, MonoMass, AvgMass
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		return fmt.Errorf("failed to prepare fragment statement: %w", err)
	}

	return nil
}

// WriteLadder writes a peptide with its fragments. The peptide blobs hold
// the masses of full; FragmentTable gets the rows of filtered, which may be
// the same ladder.
func (w *Writer) WriteLadder(p *core.Peptide, full, filtered *core.Ladder) error {
	if w.finalized || w.closed {
		return fmt.Errorf("writer for %s is finalized", w.outputPath)
	}

	// Handle optional terminal modifications
	var nterm, cterm interface{}
	if m, ok := p.NTermMod(); ok {
		nterm = m
	}
	if m, ok := p.CTermMod(); ok {
		cterm = m
	}

	_, err := w.peptideStmt.Exec(
		w.peptideID,                                               // PeptideId
		p.Sequence(),                                              // Sequence
		p.StaticModString(),                                       // StaticMods
		p.VariableModString(),                                     // VariableMods
		nterm,                                                     // NTermMod
		cterm,                                                     // CTermMod
		encodeFloat64(full.Masses(core.NTerm, core.Monoisotopic)), // blobMonoN
		encodeFloat64(full.Masses(core.CTerm, core.Monoisotopic)), // blobMonoC
		encodeFloat64(full.Masses(core.NTerm, core.Average)),      // blobAvgN
		encodeFloat64(full.Masses(core.CTerm, core.Average)),      // blobAvgC
	)
	if err != nil {
		return fmt.Errorf("failed to insert peptide: %w", err)
	}

	for _, f := range filtered.Fragments {
		_, err := w.fragmentStmt.Exec(
			w.fragmentID,        // FragmentId
			w.peptideID,         // PeptideId
			f.Index,             // SplitIndex
			f.Terminus.String(), // Terminus
			f.Residues,          // Residues
			f.Mono,              // MonoMass
			f.Avg,               // AvgMass
		)
		if err != nil {
			return fmt.Errorf("failed to insert fragment %s: %w", f.Name(), err)
		}
		w.fragmentID++
	}

	w.peptideID++
	return nil
}

// Count returns the number of peptides written so far
func (w *Writer) Count() int {
	return w.peptideID - 1
}

// encodeFloat64 encodes values as a little-endian float64 blob
func encodeFloat64(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, value := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

// DecodeFloat64 decodes a little-endian float64 blob
func DecodeFloat64(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(buf))
	}
	values := make([]float64, len(buf)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return values, nil
}

// Finalize writes the header table, commits and closes the database.
// Calling it more than once is a no-op.
func (w *Writer) Finalize() error {
	if w.finalized || w.closed {
		return nil
	}
	w.finalized = true

	// Write HeaderTable
	_, err := w.tx.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, Description)
		VALUES (?, ?, ?)
	`, schemaVersion, time.Now().Format(headerDateFormat), w.description)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Close prepared statements
	if w.peptideStmt != nil {
		w.peptideStmt.Close()
	}
	if w.fragmentStmt != nil {
		w.fragmentStmt.Close()
	}

	if err := w.tx.Commit(); err != nil {
		w.db.Close()
		return fmt.Errorf("failed to commit: %w", err)
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close discards everything written since NewWriter unless Finalize already
// committed it, and removes the output file. After Finalize it is a no-op.
func (w *Writer) Close() error {
	if w.finalized || w.closed {
		return nil
	}
	w.closed = true

	if w.peptideStmt != nil {
		w.peptideStmt.Close()
	}
	if w.fragmentStmt != nil {
		w.fragmentStmt.Close()
	}

	if err := w.tx.Rollback(); err != nil {
		w.db.Close()
		return fmt.Errorf("failed to roll back: %w", err)
	}
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := os.Remove(w.outputPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove incomplete output %s: %w", w.outputPath, err)
	}
	return nil
}
