package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Fragment is one N- or C-terminal fragment of a peptide.
type Fragment struct {
	Index    int      // split index in the sequence
	Terminus Terminus // NTerm: [0, Index), CTerm: [Index, len)
	Residues string   // residues covered by the fragment
	Mono     float64  // monoisotopic neutral mass
	Avg      float64  // average neutral mass
}

// Mass returns the fragment mass of the requested kind.
func (f Fragment) Mass(kind MassKind) float64 {
	if kind == Average {
		return f.Avg
	}
	return f.Mono
}

// Name returns the fragment label in format "n3" or "c4" (terminus and residue count)
func (f Fragment) Name() string {
	return fmt.Sprintf("%s%d", f.Terminus, len([]rune(f.Residues)))
}

// Ladder holds every fragment of a peptide.
type Ladder struct {
	Sequence  string
	Fragments []Fragment
}

// Ladder computes the N- and C-terminal fragments for every split index
// 0..len, in index order with the N fragment first.
func (p *Peptide) Ladder(table AminoAcidTable) (*Ladder, error) {
	l := &Ladder{
		Sequence:  p.Sequence(),
		Fragments: make([]Fragment, 0, 2*(len(p.sequence)+1)),
	}

	for i := 0; i <= len(p.sequence); i++ {
		for _, term := range []Terminus{NTerm, CTerm} {
			mono, err := p.FragmentMass(table, i, term, Monoisotopic)
			if err != nil {
				return nil, err
			}
			avg, err := p.FragmentMass(table, i, term, Average)
			if err != nil {
				return nil, err
			}

			start, end, _ := p.fragmentRange(i, term)
			l.Fragments = append(l.Fragments, Fragment{
				Index:    i,
				Terminus: term,
				Residues: string(p.sequence[start:end]),
				Mono:     mono,
				Avg:      avg,
			})
		}
	}

	return l, nil
}

// Validate checks that every fragment mass is a finite number.
func (l *Ladder) Validate() error {
	var errs []string

	for i, f := range l.Fragments {
		if math.IsNaN(f.Mono) || math.IsInf(f.Mono, 0) {
			errs = append(errs, fmt.Sprintf("fragment %d has invalid monoisotopic mass", i))
		}
		if math.IsNaN(f.Avg) || math.IsInf(f.Avg, 0) {
			errs = append(errs, fmt.Sprintf("fragment %d has invalid average mass", i))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Ladder",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// SortByMass sorts fragments by mass in ascending order.
func (l *Ladder) SortByMass(kind MassKind) {
	sort.SliceStable(l.Fragments, func(i, j int) bool {
		return l.Fragments[i].Mass(kind) < l.Fragments[j].Mass(kind)
	})
}

// Masses returns the fragment masses of one terminus in ladder order.
func (l *Ladder) Masses(term Terminus, kind MassKind) []float64 {
	var masses []float64
	for _, f := range l.Fragments {
		if f.Terminus == term {
			masses = append(masses, f.Mass(kind))
		}
	}
	return masses
}
