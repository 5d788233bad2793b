// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd/fragmass/cmd)
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ChrisMcGann/FragMass/pkg/core"
	"github.com/spf13/viper"
)

// DefaultModsCSV is loaded on top of the built-in modifications when it
// exists in the working directory and no other file is configured.
const DefaultModsCSV = "unimod_custom.csv"

// ModConfig describes one static or variable modification. Either Mass or
// Name must be given; a Name is resolved through the modification database.
type ModConfig struct {
	// residue code, optional for named static mods with a default residue
	AA string `mapstructure:"aa"`

	// modification name, e.g. Carbamidomethyl
	Name string `mapstructure:"name"`

	// explicit mass shift, takes precedence over Name
	Mass *float64 `mapstructure:"mass"`

	// 1-based position, variable modifications only
	Position int `mapstructure:"position"`
}

// PeptideConfig is one peptide and its modifications
type PeptideConfig struct {
	Sequence string      `mapstructure:"sequence"`
	NTerm    *float64    `mapstructure:"nterm"`
	CTerm    *float64    `mapstructure:"cterm"`
	Static   []ModConfig `mapstructure:"static"`
	Variable []ModConfig `mapstructure:"variable"`
}

// LadderConfig holds settings for ladder output and filtering
type LadderConfig struct {
	// output database, stdout table when empty
	Out string `mapstructure:"out"`

	// termini to keep, e.g. [n, c]
	Termini []string `mapstructure:"termini"`

	// mass window, 0 disables a bound
	MinMass float64 `mapstructure:"min-mass"`
	MaxMass float64 `mapstructure:"max-mass"`

	// keep only the N heaviest fragments
	TopN int `mapstructure:"top-n"`
}

// Config is the root-level settings struct and is a mix
// of settings available in the config file and those
// available from the command line
type Config struct {
	// mass kind: mono or avg
	Kind string `mapstructure:"kind"`

	// extra named modifications (format: mod,massshift[,aa])
	ModsCSV string `mapstructure:"mods-csv"`

	// alternate residue table (format: code,mono,avg)
	ResiduesCSV string `mapstructure:"residues-csv"`

	Verbose   bool   `mapstructure:"verbose"`
	LogFormat string `mapstructure:"log-format"`

	Ladder   LadderConfig    `mapstructure:"ladder"`
	Peptides []PeptideConfig `mapstructure:"peptides"`
}

// New decodes a Config from Viper settings
func New(v *viper.Viper) (Config, error) {
	c := Config{
		Kind:      "mono",
		LogFormat: "text",
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	if _, err := c.MassKind(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// MassKind returns the configured mass kind
func (c Config) MassKind() (core.MassKind, error) {
	return core.ParseMassKind(c.Kind)
}

// Table returns the residue mass table: the CSV table when configured,
// otherwise the built-in composition table
func (c Config) Table() (core.AminoAcidTable, error) {
	if c.ResiduesCSV == "" {
		return core.AminoAcidMasses, nil
	}

	f, err := os.Open(c.ResiduesCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to open residue table: %w", err)
	}
	defer f.Close()

	table, err := core.LoadMassTable(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load residue table %s: %w", c.ResiduesCSV, err)
	}
	return table, nil
}

// ModDatabase returns the built-in modifications extended with ModsCSV, or
// with unimod_custom.csv from the working directory if it exists
func (c Config) ModDatabase() (*core.ModDatabase, error) {
	db := core.DefaultModDatabase()

	path := c.ModsCSV
	if path == "" {
		if _, err := os.Stat(DefaultModsCSV); err != nil {
			return db, nil
		}
		path = DefaultModsCSV
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open modifications: %w", err)
	}
	defer f.Close()

	if err := db.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return db, nil
}

// Build resolves the peptide's modifications against db
func (pc PeptideConfig) Build(db *core.ModDatabase) (*core.Peptide, error) {
	// Residue codes are upper case in every table
	seq := strings.ToUpper(strings.TrimSpace(pc.Sequence))
	if seq == "" {
		return nil, &core.ValidationError{Field: "sequence", Message: "sequence is required"}
	}

	var errs []error

	static := make([]core.StaticModification, 0, len(pc.Static))
	for i, mc := range pc.Static {
		mod, err := mc.static(db)
		if err != nil {
			errs = append(errs, fmt.Errorf("static mod %d: %w", i+1, err))
			continue
		}
		static = append(static, mod)
	}

	variable := make([]core.VariableModification, 0, len(pc.Variable))
	for i, mc := range pc.Variable {
		mod, err := mc.variable(db)
		if err != nil {
			errs = append(errs, fmt.Errorf("variable mod %d: %w", i+1, err))
			continue
		}
		variable = append(variable, mod)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("peptide %s: %w", seq, err)
	}

	return core.NewPeptide(seq, static, variable, pc.NTerm, pc.CTerm), nil
}

func (mc ModConfig) static(db *core.ModDatabase) (core.StaticModification, error) {
	aa, err := mc.residue()
	if err != nil {
		return core.StaticModification{}, err
	}

	if mc.Mass != nil {
		if aa == 0 {
			return core.StaticModification{}, fmt.Errorf("residue is required with an explicit mass")
		}
		return core.StaticModification{AminoAcid: aa, Mass: *mc.Mass, Name: mc.Name}, nil
	}
	if mc.Name == "" {
		return core.StaticModification{}, fmt.Errorf("either mass or name is required")
	}

	return db.StaticModification(mc.Name, aa)
}

func (mc ModConfig) variable(db *core.ModDatabase) (core.VariableModification, error) {
	aa, err := mc.residue()
	if err != nil {
		return core.VariableModification{}, err
	}
	if mc.Position < 1 {
		return core.VariableModification{}, fmt.Errorf("position %d must be 1 or greater", mc.Position)
	}

	mod := core.VariableModification{Position: mc.Position, AminoAcid: aa, Name: mc.Name}
	switch {
	case mc.Mass != nil:
		mod.Mass = *mc.Mass
	case mc.Name != "":
		mass, ok := db.GetMass(mc.Name)
		if !ok {
			return core.VariableModification{}, fmt.Errorf("unknown modification '%s'", mc.Name)
		}
		mod.Mass = mass
	default:
		return core.VariableModification{}, fmt.Errorf("either mass or name is required")
	}

	return mod, nil
}

// residue returns the configured residue code, 0 when unset
func (mc ModConfig) residue() (rune, error) {
	if mc.AA == "" {
		return 0, nil
	}
	if utf8.RuneCountInString(mc.AA) != 1 {
		return 0, fmt.Errorf("residue '%s' must be a single character", mc.AA)
	}
	aa, _ := utf8.DecodeRuneInString(mc.AA)
	return unicode.ToUpper(aa), nil
}
