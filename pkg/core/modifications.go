// Package core provides named modification lookup
package core

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ModDatabase resolves modification names to mass shifts
type ModDatabase struct {
	mods     map[string]float64 // name -> mass shift
	residues map[string]rune    // name -> default residue
}

// NewModDatabase creates an empty modification database
func NewModDatabase() *ModDatabase {
	return &ModDatabase{
		mods:     make(map[string]float64),
		residues: make(map[string]rune),
	}
}

// LoadFromCSV loads modifications from a CSV file (format: mod,massshift[,aa]).
// Entries replace existing ones with the same name.
func (db *ModDatabase) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	scanner.Scan()

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected at least 2 comma-separated fields", lineNum)
		}

		modName := strings.TrimSpace(parts[0])
		massStr := strings.TrimSpace(parts[1])

		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass value '%s': %w", lineNum, massStr, err)
		}

		db.mods[modName] = mass

		// Only a single residue gives a usable default; anything else
		// clears the default of an overridden entry
		var aa string
		if len(parts) > 2 {
			aa = strings.TrimSpace(parts[2])
		}
		if utf8.RuneCountInString(aa) == 1 {
			r, _ := utf8.DecodeRuneInString(aa)
			db.residues[modName] = r
		} else {
			delete(db.residues, modName)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// GetMass returns the mass shift for a modification name
func (db *ModDatabase) GetMass(name string) (float64, bool) {
	mass, ok := db.mods[name]
	return mass, ok
}

// GetResidue returns the residue a modification targets by default, if known
func (db *ModDatabase) GetResidue(name string) (rune, bool) {
	aa, ok := db.residues[name]
	return aa, ok
}

// Add adds or updates a modification
func (db *ModDatabase) Add(name string, mass float64) {
	db.mods[name] = mass
}

// AddWithResidue adds or updates a modification with its default residue
func (db *ModDatabase) AddWithResidue(name string, mass float64, aa rune) {
	db.mods[name] = mass
	db.residues[name] = aa
}

// Names returns the modification names in sorted order
func (db *ModDatabase) Names() []string {
	names := make([]string, 0, len(db.mods))
	for name := range db.mods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of modifications
func (db *ModDatabase) Len() int {
	return len(db.mods)
}

// StaticModification resolves a named modification into a static
// modification. aa may be zero when the database knows the default residue.
func (db *ModDatabase) StaticModification(name string, aa rune) (StaticModification, error) {
	mass, ok := db.GetMass(name)
	if !ok {
		return StaticModification{}, fmt.Errorf("unknown modification '%s'", name)
	}
	if aa == 0 {
		if aa, ok = db.GetResidue(name); !ok {
			return StaticModification{}, fmt.Errorf("modification '%s' needs a residue", name)
		}
	}
	return StaticModification{AminoAcid: aa, Mass: mass, Name: name}, nil
}

// DefaultModDatabase returns a ModDatabase pre-loaded with common modifications
func DefaultModDatabase() *ModDatabase {
	db := NewModDatabase()

	// Common modifications from unimod
	db.Add("Acetyl", 42.010565)
	db.Add("Amidated", -0.984016)
	db.Add("Biotin", 226.077598)
	db.AddWithResidue("Carbamidomethyl", 57.021464, 'C')
	db.Add("Carbamyl", 43.005814)
	db.Add("Carboxymethyl", 58.005479)
	db.Add("Deamidated", 0.984016)
	db.Add("Met->Hse", -29.992806)
	db.Add("Met->Hsl", -48.003371)
	db.Add("NIPCAM", 99.068414)
	db.Add("Phospho", 79.966331)
	db.Add("Dehydrated", -18.010565)
	db.AddWithResidue("Propionamide", 71.037114, 'C')
	db.Add("Pyro-carbamidomethyl", 39.994915)
	db.Add("Glu->pyro-Glu", -18.010565)
	db.Add("Gln->pyro-Glu", -17.026549)
	db.Add("Cation:Na", 21.981943)
	db.Add("Methyl", 14.01565)
	db.AddWithResidue("Oxidation", 15.994915, 'M')
	db.Add("Dimethyl", 28.0313)
	db.Add("Trimethyl", 42.04695)
	db.Add("Methylthio", 45.987721)
	db.Add("Sulfo", 79.956815)
	db.Add("Hex", 162.052824)
	db.Add("Lipoyl", 188.032956)
	db.Add("HexNAc", 203.079373)
	db.Add("Farnesyl", 204.187801)
	db.Add("Myristoyl", 210.198366)
	db.Add("PyridoxalPhosphate", 229.014009)
	db.Add("Palmitoyl", 238.229666)
	db.Add("GeranylGeranyl", 272.250401)
	db.Add("Phosphopantetheine", 340.085794)
	db.Add("FAD", 783.141486)
	db.Add("Guanidinyl", 42.021798)
	db.Add("HNE", 156.11503)
	db.Add("Glucuronyl", 176.032088)
	db.Add("Glutathione", 305.068156)
	db.Add("Propionyl", 56.026215)
	db.Add("TMT", 229.162932)
	db.Add("TMTPro", 304.207146)
	db.Add("TMT6plex", 229.162932)
	db.Add("TMT10plex", 229.162932)
	db.Add("TMT11plex", 229.162932)
	db.Add("TMT16plex", 304.207146)
	db.Add("iTRAQ4plex", 144.102063)
	db.Add("iTRAQ8plex", 304.205360)

	return db
}
