// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/ChrisMcGann/FragMass/pkg/config"
	"github.com/ChrisMcGann/FragMass/pkg/core"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the settings shared by all subcommands of one root command
type app struct {
	v      *viper.Viper
	logger *log.Logger

	// single peptide given on the command line instead of a config file
	seq   string
	nterm float64
	cterm float64
}

// Execute runs the root command with os.Args
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree with its own Viper instance
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "fragmass",
		Short: "FragMass - Peptide fragment mass calculator",
		Long: `FragMass computes neutral masses of N- and C-terminal peptide fragments,
accounting for terminal, static and variable modifications.

Peptides come from --seq for a single unmodified peptide, or from a config
file (YAML, JSON or TOML) listing peptides and their modifications:

  kind: mono
  peptides:
    - sequence: PEPTCDE
      nterm: 42.010565
      static:
        - name: Carbamidomethyl
      variable:
        - position: 2
          aa: E
          mass: 5`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file with peptides and settings")
	flags.String("kind", "mono", "Mass kind: mono or avg")
	flags.String("mods-csv", "", "CSV of named modifications (mod,massshift,aa)")
	flags.String("residues-csv", "", "CSV residue table (code,mono,avg) replacing the built-in one")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("log-format", "text", "Log format: text or json")
	flags.StringVarP(&a.seq, "seq", "s", "", "Peptide sequence (overrides peptides from config)")
	flags.Float64Var(&a.nterm, "nterm", 0, "N-terminal mass shift for --seq")
	flags.Float64Var(&a.cterm, "cterm", 0, "C-terminal mass shift for --seq")

	for _, key := range []string{"config", "kind", "mods-csv", "residues-csv", "verbose", "log-format"} {
		a.v.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(newMassCmd(a))
	rootCmd.AddCommand(newLadderCmd(a))
	rootCmd.AddCommand(newModsCmd(a))

	return rootCmd
}

// init reads the config file and sets up logging
func (a *app) init(cmd *cobra.Command) error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	logger, err := newLogger(cmd.ErrOrStderr(), a.v.GetBool("verbose"), a.v.GetString("log-format"))
	if err != nil {
		return err
	}
	a.logger = logger

	if f := a.v.ConfigFileUsed(); f != "" {
		a.logger.Debug("loaded config", "file", f)
	}
	return nil
}

// newLogger builds the CLI logger writing to w
func newLogger(w io.Writer, verbose bool, format string) (*log.Logger, error) {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "fragmass",
	})

	switch strings.ToLower(format) {
	case "", "text":
		logger.SetFormatter(log.TextFormatter)
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		return nil, fmt.Errorf("invalid log format '%s', must be text, json or logfmt", format)
	}

	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}

	return logger, nil
}

// settings decodes the Viper state into a Config
func (a *app) settings() (config.Config, error) {
	return config.New(a.v)
}

// peptides builds the peptides to process: --seq when given, otherwise the
// config file entries
func (a *app) peptides(cmd *cobra.Command, c config.Config) ([]config.PeptideConfig, error) {
	if a.seq != "" {
		pc := config.PeptideConfig{Sequence: a.seq}
		if cmd.Flags().Changed("nterm") {
			nterm := a.nterm
			pc.NTerm = &nterm
		}
		if cmd.Flags().Changed("cterm") {
			cterm := a.cterm
			pc.CTerm = &cterm
		}
		return []config.PeptideConfig{pc}, nil
	}

	if len(c.Peptides) == 0 {
		return nil, fmt.Errorf("no peptides: pass --seq or a --config file with peptides")
	}
	return c.Peptides, nil
}

// resources loads the residue table and modification database for c
func (a *app) resources(c config.Config) (core.AminoAcidTable, *core.ModDatabase, error) {
	table, err := c.Table()
	if err != nil {
		return nil, nil, err
	}
	if c.ResiduesCSV != "" {
		a.logger.Debug("using residue table", "file", c.ResiduesCSV)
	}

	modDB, err := c.ModDatabase()
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("loaded modifications", "count", modDB.Len())

	return table, modDB, nil
}
