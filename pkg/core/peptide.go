// Package core provides the peptide model and fragment mass calculations
package core

import (
	"fmt"
	"sort"
	"strings"
)

// StaticModification is a mass shift applied to every occurrence of a residue.
type StaticModification struct {
	AminoAcid rune
	Mass      float64
	Name      string // Modification name (e.g., "Carbamidomethyl"), optional
}

// VariableModification is a mass shift applied to a single residue.
type VariableModification struct {
	Position  int // 1-based position in the sequence
	AminoAcid rune
	Mass      float64
	Name      string
}

// Peptide is a sequence together with its modifications. It is immutable
// once built and safe for concurrent mass queries.
type Peptide struct {
	sequence   []rune
	staticMods map[rune]StaticModification
	varMods    map[int]VariableModification
	ntermMod   *float64
	ctermMod   *float64
}

// NewPeptide builds a Peptide. Static modifications are keyed by residue and
// variable modifications by position; a later entry replaces an earlier one
// with the same key. Positions are not checked against the sequence length,
// out of range entries never match. nterm and cterm may be nil.
func NewPeptide(sequence string, static []StaticModification, variable []VariableModification, nterm, cterm *float64) *Peptide {
	p := &Peptide{
		sequence:   []rune(sequence),
		staticMods: make(map[rune]StaticModification, len(static)),
		varMods:    make(map[int]VariableModification, len(variable)),
		ntermMod:   copyFloat(nterm),
		ctermMod:   copyFloat(cterm),
	}

	for _, mod := range static {
		p.staticMods[mod.AminoAcid] = mod
	}
	for _, mod := range variable {
		p.varMods[mod.Position] = mod
	}

	return p
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Sequence returns the peptide sequence.
func (p *Peptide) Sequence() string {
	return string(p.sequence)
}

// Len returns the number of residues.
func (p *Peptide) Len() int {
	return len(p.sequence)
}

// StaticMod returns the static modification registered for a residue.
func (p *Peptide) StaticMod(aa rune) (StaticModification, bool) {
	mod, ok := p.staticMods[aa]
	return mod, ok
}

// VariableMod returns the variable modification at a 1-based position.
func (p *Peptide) VariableMod(position int) (VariableModification, bool) {
	mod, ok := p.varMods[position]
	return mod, ok
}

// NTermMod returns the N-terminal mass shift, if set.
func (p *Peptide) NTermMod() (float64, bool) {
	if p.ntermMod == nil {
		return 0, false
	}
	return *p.ntermMod, true
}

// CTermMod returns the C-terminal mass shift, if set.
func (p *Peptide) CTermMod() (float64, bool) {
	if p.ctermMod == nil {
		return 0, false
	}
	return *p.ctermMod, true
}

// StaticMods returns the static modifications ordered by residue.
func (p *Peptide) StaticMods() []StaticModification {
	mods := make([]StaticModification, 0, len(p.staticMods))
	for _, mod := range p.staticMods {
		mods = append(mods, mod)
	}
	sort.Slice(mods, func(i, j int) bool {
		return mods[i].AminoAcid < mods[j].AminoAcid
	})
	return mods
}

// VariableMods returns the variable modifications ordered by position.
func (p *Peptide) VariableMods() []VariableModification {
	mods := make([]VariableModification, 0, len(p.varMods))
	for _, mod := range p.varMods {
		mods = append(mods, mod)
	}
	sort.Slice(mods, func(i, j int) bool {
		return mods[i].Position < mods[j].Position
	})
	return mods
}

// StaticModString returns the static modifications in format "aa:mass;aa:mass;..."
func (p *Peptide) StaticModString() string {
	var parts []string
	for _, mod := range p.StaticMods() {
		parts = append(parts, fmt.Sprintf("%c:%.6f", mod.AminoAcid, mod.Mass))
	}
	return strings.Join(parts, ";")
}

// VariableModString returns the variable modifications in format "mass@pos;mass@pos;..."
func (p *Peptide) VariableModString() string {
	var parts []string
	for _, mod := range p.VariableMods() {
		parts = append(parts, fmt.Sprintf("%.6f@%d", mod.Mass, mod.Position))
	}
	return strings.Join(parts, ";")
}
