package core

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

// testTable uses round residue masses so expected sums are easy to check.
var testTable = MassTable{
	'P': {Mono: 97.05, Avg: 97.12},
	'E': {Mono: 129.04, Avg: 129.12},
	'T': {Mono: 101.05, Avg: 101.10},
	'I': {Mono: 113.08, Avg: 113.16},
	'D': {Mono: 115.03, Avg: 115.09},
}

func fptr(v float64) *float64 { return &v }

func mustMass(t *testing.T, p *Peptide, index int, term Terminus, kind MassKind) float64 {
	t.Helper()
	m, err := p.FragmentMass(testTable, index, term, kind)
	if err != nil {
		t.Fatalf("FragmentMass(%d, %s, %s) error = %v", index, term, kind, err)
	}
	return m
}

func TestFragmentMassScenarios(t *testing.T) {
	tests := []struct {
		name     string
		peptide  *Peptide
		index    int
		term     Terminus
		wantMass float64
	}{
		{
			name:     "unmodified prefix",
			peptide:  NewPeptide("PEPTIDE", nil, nil, nil, nil),
			index:    3,
			term:     NTerm,
			wantMass: 323.14,
		},
		{
			name:     "unmodified suffix",
			peptide:  NewPeptide("PEPTIDE", nil, nil, nil, nil),
			index:    3,
			term:     CTerm,
			wantMass: 458.20,
		},
		{
			name: "static mod counted outside suffix",
			peptide: NewPeptide("PEPTIDE",
				[]StaticModification{{AminoAcid: 'P', Mass: 10}}, nil, nil, nil),
			index:    3,
			term:     CTerm,
			wantMass: 478.20,
		},
		{
			name: "variable mod after prefix",
			peptide: NewPeptide("PEPTIDE", nil,
				[]VariableModification{{Position: 2, AminoAcid: 'E', Mass: 5}}, nil, nil),
			index:    1,
			term:     NTerm,
			wantMass: 97.05,
		},
		{
			name: "variable mod inside prefix",
			peptide: NewPeptide("PEPTIDE", nil,
				[]VariableModification{{Position: 2, AminoAcid: 'E', Mass: 5}}, nil, nil),
			index:    2,
			term:     NTerm,
			wantMass: 97.05 + 129.04 + 5,
		},
		{
			name: "variable mod at suffix start",
			peptide: NewPeptide("PEPTIDE", nil,
				[]VariableModification{{Position: 2, AminoAcid: 'E', Mass: 5}}, nil, nil),
			index:    1,
			term:     CTerm,
			wantMass: 129.04 + 458.20 + 97.05 + 5,
		},
		{
			name: "variable mod before suffix",
			peptide: NewPeptide("PEPTIDE", nil,
				[]VariableModification{{Position: 2, AminoAcid: 'E', Mass: 5}}, nil, nil),
			index:    2,
			term:     CTerm,
			wantMass: 458.20 + 97.05,
		},
		{
			name:     "empty prefix gets terminal mod",
			peptide:  NewPeptide("PEPTIDE", nil, nil, fptr(42), fptr(-1)),
			index:    0,
			term:     NTerm,
			wantMass: 42,
		},
		{
			name:     "empty suffix gets terminal mod",
			peptide:  NewPeptide("PEPTIDE", nil, nil, fptr(42), fptr(-1)),
			index:    7,
			term:     CTerm,
			wantMass: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustMass(t, tt.peptide, tt.index, tt.term, Monoisotopic)
			if math.Abs(got-tt.wantMass) > tolerance {
				t.Errorf("FragmentMass() = %.6f, want %.6f", got, tt.wantMass)
			}
		})
	}
}

func TestFragmentMassComplementarity(t *testing.T) {
	p := NewPeptide("PEPTIDE", nil, nil, nil, nil)

	for _, kind := range []MassKind{Monoisotopic, Average} {
		whole := mustMass(t, p, 0, CTerm, kind)
		for i := 0; i <= p.Len(); i++ {
			n := mustMass(t, p, i, NTerm, kind)
			c := mustMass(t, p, i, CTerm, kind)
			if math.Abs(n+c-whole) > tolerance {
				t.Errorf("%s index %d: n + c = %.6f, want %.6f", kind, i, n+c, whole)
			}
		}
	}
}

func TestFragmentMassStaticModWholeSequence(t *testing.T) {
	plain := NewPeptide("PEPTIDE", nil, nil, nil, nil)
	modded := NewPeptide("PEPTIDE", []StaticModification{{AminoAcid: 'E', Mass: 3.5}}, nil, nil, nil)

	// two E residues in the full sequence
	want := 2 * 3.5

	for _, kind := range []MassKind{Monoisotopic, Average} {
		for _, term := range []Terminus{NTerm, CTerm} {
			for i := 0; i <= plain.Len(); i++ {
				diff := mustMass(t, modded, i, term, kind) - mustMass(t, plain, i, term, kind)
				if math.Abs(diff-want) > tolerance {
					t.Errorf("%s %s index %d: shift = %.6f, want %.6f", kind, term, i, diff, want)
				}
			}
		}
	}
}

func TestFragmentMassVariableModScope(t *testing.T) {
	const pos = 4
	plain := NewPeptide("PEPTIDE", nil, nil, nil, nil)
	modded := NewPeptide("PEPTIDE", nil, []VariableModification{{Position: pos, AminoAcid: 'T', Mass: 80}}, nil, nil)

	for i := 0; i <= plain.Len(); i++ {
		nDiff := mustMass(t, modded, i, NTerm, Monoisotopic) - mustMass(t, plain, i, NTerm, Monoisotopic)
		cDiff := mustMass(t, modded, i, CTerm, Monoisotopic) - mustMass(t, plain, i, CTerm, Monoisotopic)

		wantN, wantC := 0.0, 0.0
		if i > pos-1 {
			wantN = 80
		}
		if i <= pos-1 {
			wantC = 80
		}

		if math.Abs(nDiff-wantN) > tolerance {
			t.Errorf("index %d: n shift = %.6f, want %.6f", i, nDiff, wantN)
		}
		if math.Abs(cDiff-wantC) > tolerance {
			t.Errorf("index %d: c shift = %.6f, want %.6f", i, cDiff, wantC)
		}
	}
}

func TestFragmentMassTerminalModsOnce(t *testing.T) {
	plain := NewPeptide("PEPTIDE", nil, nil, nil, nil)
	modded := NewPeptide("PEPTIDE", nil, nil, fptr(42.010565), fptr(-0.984016))

	for i := 0; i <= plain.Len(); i++ {
		nDiff := mustMass(t, modded, i, NTerm, Average) - mustMass(t, plain, i, NTerm, Average)
		cDiff := mustMass(t, modded, i, CTerm, Average) - mustMass(t, plain, i, CTerm, Average)

		if math.Abs(nDiff-42.010565) > tolerance {
			t.Errorf("index %d: n shift = %.6f, want 42.010565", i, nDiff)
		}
		if math.Abs(cDiff+0.984016) > tolerance {
			t.Errorf("index %d: c shift = %.6f, want -0.984016", i, cDiff)
		}
	}
}

func TestFragmentMassOutOfRangeVariableMod(t *testing.T) {
	plain := NewPeptide("PEPTIDE", nil, nil, nil, nil)
	modded := NewPeptide("PEPTIDE", nil, []VariableModification{
		{Position: 0, Mass: 1000},
		{Position: 8, Mass: 1000},
		{Position: -3, Mass: 1000},
	}, nil, nil)

	for i := 0; i <= plain.Len(); i++ {
		for _, term := range []Terminus{NTerm, CTerm} {
			if got, want := mustMass(t, modded, i, term, Monoisotopic), mustMass(t, plain, i, term, Monoisotopic); got != want {
				t.Errorf("%s index %d: mass = %.6f, want %.6f", term, i, got, want)
			}
		}
	}
}

func TestFragmentMassErrors(t *testing.T) {
	p := NewPeptide("PEPXIDE", nil, nil, nil, nil)

	t.Run("index below range", func(t *testing.T) {
		_, err := p.FragmentMass(testTable, -1, NTerm, Monoisotopic)
		var iie *InvalidIndexError
		if !errors.As(err, &iie) {
			t.Fatalf("error = %v, want InvalidIndexError", err)
		}
		if iie.Index != -1 || iie.Length != 7 {
			t.Errorf("InvalidIndexError = %+v", iie)
		}
	})

	t.Run("index above range", func(t *testing.T) {
		_, err := p.FragmentMass(testTable, 8, CTerm, Monoisotopic)
		var iie *InvalidIndexError
		if !errors.As(err, &iie) {
			t.Fatalf("error = %v, want InvalidIndexError", err)
		}
	})

	t.Run("unknown residue in fragment", func(t *testing.T) {
		_, err := p.FragmentMass(testTable, 5, NTerm, Monoisotopic)
		var ure *UnknownResidueError
		if !errors.As(err, &ure) {
			t.Fatalf("error = %v, want UnknownResidueError", err)
		}
		if ure.Residue != 'X' || ure.Position != 3 {
			t.Errorf("UnknownResidueError = %+v, want X at 3", ure)
		}
	})

	t.Run("unknown residue outside fragment", func(t *testing.T) {
		got, err := p.FragmentMass(testTable, 3, NTerm, Monoisotopic)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if math.Abs(got-323.14) > tolerance {
			t.Errorf("FragmentMass() = %.6f, want 323.14", got)
		}
	})

	t.Run("unknown terminus", func(t *testing.T) {
		_, err := p.FragmentMass(testTable, 0, Terminus(9), Monoisotopic)
		if !errors.Is(err, ErrUnknownTerminus) {
			t.Errorf("error = %v, want ErrUnknownTerminus", err)
		}
	})

	t.Run("unknown mass kind", func(t *testing.T) {
		_, err := p.FragmentMass(testTable, 0, NTerm, MassKind(9))
		if !errors.Is(err, ErrUnknownMassKind) {
			t.Errorf("error = %v, want ErrUnknownMassKind", err)
		}
	})
}

func TestFragmentMassMonoAvg(t *testing.T) {
	p := NewPeptide("PEPTIDE", nil, nil, nil, nil)

	mono, err := p.FragmentMassMono(testTable, 2, NTerm)
	if err != nil {
		t.Fatal(err)
	}
	avg, err := p.FragmentMassAvg(testTable, 2, NTerm)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(mono-(97.05+129.04)) > tolerance {
		t.Errorf("FragmentMassMono() = %.6f", mono)
	}
	if math.Abs(avg-(97.12+129.12)) > tolerance {
		t.Errorf("FragmentMassAvg() = %.6f", avg)
	}
}

func TestParseTerminus(t *testing.T) {
	tests := []struct {
		in      string
		want    Terminus
		wantErr bool
	}{
		{"n", NTerm, false},
		{"N", NTerm, false},
		{"nterm", NTerm, false},
		{"c", CTerm, false},
		{" C-term ", CTerm, false},
		{"x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTerminus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTerminus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTerminus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMassKind(t *testing.T) {
	tests := []struct {
		in      string
		want    MassKind
		wantErr bool
	}{
		{"mono", Monoisotopic, false},
		{"Monoisotopic", Monoisotopic, false},
		{"avg", Average, false},
		{"AVERAGE", Average, false},
		{"heavy", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMassKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMassKind() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMassKind() = %v, want %v", got, tt.want)
			}
		})
	}
}
