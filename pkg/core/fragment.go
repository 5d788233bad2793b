package core

import (
	"errors"
	"fmt"
	"strings"
)

// Terminus selects the direction of a fragment.
type Terminus int

const (
	// NTerm is the prefix fragment, residues [0, index).
	NTerm Terminus = iota
	// CTerm is the suffix fragment, residues [index, len).
	CTerm
)

func (t Terminus) String() string {
	switch t {
	case NTerm:
		return "n"
	case CTerm:
		return "c"
	default:
		return fmt.Sprintf("Terminus(%d)", int(t))
	}
}

// ParseTerminus accepts "n"/"c" and the long forms "nterm"/"cterm", any case.
func ParseTerminus(s string) (Terminus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "nterm", "n-term":
		return NTerm, nil
	case "c", "cterm", "c-term":
		return CTerm, nil
	default:
		return 0, fmt.Errorf("%w: '%s'", ErrUnknownTerminus, s)
	}
}

// MassKind selects monoisotopic or average residue masses.
type MassKind int

const (
	Monoisotopic MassKind = iota
	Average
)

func (k MassKind) String() string {
	switch k {
	case Monoisotopic:
		return "mono"
	case Average:
		return "avg"
	default:
		return fmt.Sprintf("MassKind(%d)", int(k))
	}
}

// ParseMassKind accepts "mono"/"monoisotopic" and "avg"/"average", any case.
func ParseMassKind(s string) (MassKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mono", "monoisotopic":
		return Monoisotopic, nil
	case "avg", "average":
		return Average, nil
	default:
		return 0, fmt.Errorf("%w: '%s'", ErrUnknownMassKind, s)
	}
}

// FragmentMass returns the neutral mass of a fragment of the peptide.
//
// For NTerm the fragment is the residues before index (index excluded), for
// CTerm it is the residues from index onward (index included). Residue
// masses come from table. The terminal shift of the requested terminus is
// added once. Variable modifications count only inside the fragment.
//
// Static modifications are counted over the whole sequence, not just the
// fragment, so every fragment of a peptide carries the full static shift.
// This matches the annotations produced by existing tools and is kept for
// compatibility.
func (p *Peptide) FragmentMass(table AminoAcidTable, index int, term Terminus, kind MassKind) (float64, error) {
	if index < 0 || index > len(p.sequence) {
		return 0, &InvalidIndexError{Index: index, Length: len(p.sequence)}
	}

	if kind != Monoisotopic && kind != Average {
		return 0, fmt.Errorf("%w: %d", ErrUnknownMassKind, int(kind))
	}

	start, end, err := p.fragmentRange(index, term)
	if err != nil {
		return 0, err
	}

	mass := 0.0
	for i := start; i < end; i++ {
		residue, err := table.Lookup(p.sequence[i])
		if err != nil {
			return 0, withPosition(err, i)
		}
		m, err := residue.Mass(kind)
		if err != nil {
			return 0, err
		}
		mass += m
	}

	return p.addModMasses(mass, start, end, term), nil
}

// FragmentMassMono is FragmentMass with monoisotopic residue masses.
func (p *Peptide) FragmentMassMono(table AminoAcidTable, index int, term Terminus) (float64, error) {
	return p.FragmentMass(table, index, term, Monoisotopic)
}

// FragmentMassAvg is FragmentMass with average residue masses.
func (p *Peptide) FragmentMassAvg(table AminoAcidTable, index int, term Terminus) (float64, error) {
	return p.FragmentMass(table, index, term, Average)
}

// fragmentRange returns the half-open residue range covered by a fragment.
func (p *Peptide) fragmentRange(index int, term Terminus) (int, int, error) {
	switch term {
	case NTerm:
		return 0, index, nil
	case CTerm:
		return index, len(p.sequence), nil
	default:
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownTerminus, int(term))
	}
}

// addModMasses adds terminal, static and variable modification shifts to the
// residue mass of the fragment [start, end).
func (p *Peptide) addModMasses(mass float64, start, end int, term Terminus) float64 {
	if term == NTerm && p.ntermMod != nil {
		mass += *p.ntermMod
	}
	if term == CTerm && p.ctermMod != nil {
		mass += *p.ctermMod
	}

	// whole sequence, see FragmentMass
	for _, aa := range p.sequence {
		if mod, ok := p.staticMods[aa]; ok {
			mass += mod.Mass
		}
	}

	// variable positions are 1-based
	for i := start; i < end; i++ {
		if mod, ok := p.varMods[i+1]; ok {
			mass += mod.Mass
		}
	}

	return mass
}

// withPosition fills in the sequence position of an UnknownResidueError
// returned by a table lookup.
func withPosition(err error, pos int) error {
	var ure *UnknownResidueError
	if errors.As(err, &ure) {
		return &UnknownResidueError{Residue: ure.Residue, Position: pos}
	}
	return fmt.Errorf("residue at position %d: %w", pos, err)
}
