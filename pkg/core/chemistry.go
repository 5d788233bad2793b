// Package core provides chemistry calculations for peptide fragment masses
package core

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Atomic masses (monoisotopic)
const (
	MassH = 1.0078250321
	MassC = 12.0000000000
	MassN = 14.0030740052
	MassO = 15.9949146221
	MassS = 31.9720706900
)

// Atomic masses (isotope-weighted average)
const (
	AvgMassH = 1.00794
	AvgMassC = 12.0107
	AvgMassN = 14.0067
	AvgMassO = 15.9994
	AvgMassS = 32.065
)

// Residue holds the two mass conventions for a single amino acid residue.
type Residue struct {
	Mono float64
	Avg  float64
}

// Mass returns the residue mass for the requested kind.
func (r Residue) Mass(kind MassKind) (float64, error) {
	switch kind {
	case Monoisotopic:
		return r.Mono, nil
	case Average:
		return r.Avg, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownMassKind, int(kind))
	}
}

// AminoAcidTable resolves a residue code to its masses.
// Implementations return *UnknownResidueError for codes they do not know.
type AminoAcidTable interface {
	Lookup(code rune) (Residue, error)
}

// AminoAcidComposition stores elemental composition
type AminoAcidComposition struct {
	C, H, N, O, S int
}

// Mono returns the monoisotopic mass of the composition.
func (c AminoAcidComposition) Mono() float64 {
	return float64(c.C)*MassC +
		float64(c.H)*MassH +
		float64(c.N)*MassN +
		float64(c.O)*MassO +
		float64(c.S)*MassS
}

// Avg returns the average mass of the composition.
func (c AminoAcidComposition) Avg() float64 {
	return float64(c.C)*AvgMassC +
		float64(c.H)*AvgMassH +
		float64(c.N)*AvgMassN +
		float64(c.O)*AvgMassO +
		float64(c.S)*AvgMassS
}

// CompositionTable derives residue masses from elemental composition.
type CompositionTable map[rune]AminoAcidComposition

// Lookup implements AminoAcidTable.
func (t CompositionTable) Lookup(code rune) (Residue, error) {
	comp, ok := t[code]
	if !ok {
		return Residue{}, &UnknownResidueError{Residue: code, Position: -1}
	}
	return Residue{Mono: comp.Mono(), Avg: comp.Avg()}, nil
}

// AminoAcidMasses maps amino acid one-letter codes to elemental composition
var AminoAcidMasses = CompositionTable{
	'A': {C: 3, H: 5, N: 1, O: 1, S: 0},
	'R': {C: 6, H: 12, N: 4, O: 1, S: 0},
	'N': {C: 4, H: 6, N: 2, O: 2, S: 0},
	'D': {C: 4, H: 5, N: 1, O: 3, S: 0},
	'C': {C: 3, H: 5, N: 1, O: 1, S: 1},
	'E': {C: 5, H: 7, N: 1, O: 3, S: 0},
	'Q': {C: 5, H: 8, N: 2, O: 2, S: 0},
	'G': {C: 2, H: 3, N: 1, O: 1, S: 0},
	'H': {C: 6, H: 7, N: 3, O: 1, S: 0},
	'I': {C: 6, H: 11, N: 1, O: 1, S: 0},
	'L': {C: 6, H: 11, N: 1, O: 1, S: 0},
	'K': {C: 6, H: 12, N: 2, O: 1, S: 0},
	'M': {C: 5, H: 9, N: 1, O: 1, S: 1},
	'F': {C: 9, H: 9, N: 1, O: 1, S: 0},
	'P': {C: 5, H: 7, N: 1, O: 1, S: 0},
	'S': {C: 3, H: 5, N: 1, O: 2, S: 0},
	'T': {C: 4, H: 7, N: 1, O: 2, S: 0},
	'W': {C: 11, H: 10, N: 2, O: 1, S: 0},
	'Y': {C: 9, H: 9, N: 1, O: 2, S: 0},
	'V': {C: 5, H: 9, N: 1, O: 1, S: 0},
}

// MassTable is an AminoAcidTable with explicit per-residue masses, used for
// alternate isotope tables.
type MassTable map[rune]Residue

// Lookup implements AminoAcidTable.
func (t MassTable) Lookup(code rune) (Residue, error) {
	r, ok := t[code]
	if !ok {
		return Residue{}, &UnknownResidueError{Residue: code, Position: -1}
	}
	return r, nil
}

// LoadMassTable reads a residue table from CSV (format: code,mono,avg).
// The first line is a header and is skipped.
func LoadMassTable(r io.Reader) (MassTable, error) {
	scanner := bufio.NewScanner(r)

	// Skip header line
	scanner.Scan()

	table := make(MassTable)
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			return nil, fmt.Errorf("line %d: expected 3 fields (code,mono,avg), got %d", lineNum, len(parts))
		}

		code := strings.TrimSpace(parts[0])
		if utf8.RuneCountInString(code) != 1 {
			return nil, fmt.Errorf("line %d: residue code '%s' must be a single character", lineNum, code)
		}

		mono, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid monoisotopic mass '%s': %w", lineNum, parts[1], err)
		}
		avg, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid average mass '%s': %w", lineNum, parts[2], err)
		}

		aa, _ := utf8.DecodeRuneInString(code)
		table[aa] = Residue{Mono: mono, Avg: avg}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}

	return table, nil
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
