package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChrisMcGann/FragMass/pkg/core"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peptidesYAML = `
kind: avg
ladder:
  termini: [n]
  top-n: 5
peptides:
  - sequence: PEPTCDE
    nterm: 42.010565
    static:
      - name: Carbamidomethyl
      - aa: P
        mass: 10
    variable:
      - position: 2
        aa: E
        mass: 5
      - position: 4
        name: Phospho
`

func readConfig(t *testing.T, yaml string) Config {
	t.Helper()

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))

	c, err := New(v)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	c := readConfig(t, peptidesYAML)

	kind, err := c.MassKind()
	require.NoError(t, err)
	assert.Equal(t, core.Average, kind)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, []string{"n"}, c.Ladder.Termini)
	assert.Equal(t, 5, c.Ladder.TopN)

	require.Len(t, c.Peptides, 1)
	pc := c.Peptides[0]
	assert.Equal(t, "PEPTCDE", pc.Sequence)
	require.NotNil(t, pc.NTerm)
	assert.InDelta(t, 42.010565, *pc.NTerm, 1e-9)
	assert.Nil(t, pc.CTerm)
	assert.Len(t, pc.Static, 2)
	assert.Len(t, pc.Variable, 2)
}

func TestNewDefaults(t *testing.T) {
	c := readConfig(t, "peptides: []\n")

	kind, err := c.MassKind()
	require.NoError(t, err)
	assert.Equal(t, core.Monoisotopic, kind)
}

func TestNewBadKind(t *testing.T) {
	v := viper.New()
	v.Set("kind", "heavy")

	_, err := New(v)
	assert.ErrorIs(t, err, core.ErrUnknownMassKind)
}

func TestPeptideConfigBuild(t *testing.T) {
	c := readConfig(t, peptidesYAML)

	p, err := c.Peptides[0].Build(core.DefaultModDatabase())
	require.NoError(t, err)

	cam, ok := p.StaticMod('C')
	require.True(t, ok)
	assert.InDelta(t, 57.021464, cam.Mass, 1e-9)

	pro, ok := p.StaticMod('P')
	require.True(t, ok)
	assert.InDelta(t, 10.0, pro.Mass, 1e-9)

	phos, ok := p.VariableMod(4)
	require.True(t, ok)
	assert.InDelta(t, 79.966331, phos.Mass, 1e-9)

	nterm, ok := p.NTermMod()
	require.True(t, ok)
	assert.InDelta(t, 42.010565, nterm, 1e-9)
}

func TestPeptideConfigBuildLowercase(t *testing.T) {
	pc := PeptideConfig{
		Sequence: " peptide ",
		Static:   []ModConfig{{AA: "p", Name: "Oxidation"}},
	}

	p, err := pc.Build(core.DefaultModDatabase())
	require.NoError(t, err)
	assert.Equal(t, "PEPTIDE", p.Sequence())

	ox, ok := p.StaticMod('P')
	require.True(t, ok)
	assert.InDelta(t, 15.994915, ox.Mass, 1e-9)
}

func TestPeptideConfigBuildErrors(t *testing.T) {
	mass := 1.0

	tests := []struct {
		name string
		pc   PeptideConfig
	}{
		{
			name: "missing sequence",
			pc:   PeptideConfig{},
		},
		{
			name: "unknown static name",
			pc:   PeptideConfig{Sequence: "PEP", Static: []ModConfig{{AA: "P", Name: "NotAMod"}}},
		},
		{
			name: "static mass without residue",
			pc:   PeptideConfig{Sequence: "PEP", Static: []ModConfig{{Mass: &mass}}},
		},
		{
			name: "multi-character residue",
			pc:   PeptideConfig{Sequence: "PEP", Static: []ModConfig{{AA: "PE", Mass: &mass}}},
		},
		{
			name: "variable without position",
			pc:   PeptideConfig{Sequence: "PEP", Variable: []ModConfig{{Mass: &mass}}},
		},
		{
			name: "variable without mass or name",
			pc:   PeptideConfig{Sequence: "PEP", Variable: []ModConfig{{Position: 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.pc.Build(core.DefaultModDatabase())
			assert.Error(t, err)
		})
	}
}

func TestConfigTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "residues.csv")
	require.NoError(t, os.WriteFile(path, []byte("code,mono,avg\nP,97.05,97.12\n"), 0o644))

	table, err := Config{}.Table()
	require.NoError(t, err)
	assert.Equal(t, core.AminoAcidMasses, table)

	table, err = Config{ResiduesCSV: path}.Table()
	require.NoError(t, err)
	r, err := table.Lookup('P')
	require.NoError(t, err)
	assert.Equal(t, core.Residue{Mono: 97.05, Avg: 97.12}, r)

	_, err = Config{ResiduesCSV: filepath.Join(dir, "missing.csv")}.Table()
	assert.Error(t, err)
}

func TestConfigModDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mods.csv")
	require.NoError(t, os.WriteFile(path, []byte("mod,massshift,aa\nMyTag,12.5,K\n"), 0o644))

	db, err := Config{ModsCSV: path}.ModDatabase()
	require.NoError(t, err)

	mass, ok := db.GetMass("MyTag")
	require.True(t, ok)
	assert.Equal(t, 12.5, mass)

	_, ok = db.GetMass("Carbamidomethyl")
	assert.True(t, ok, "built-in modifications are kept")
}
