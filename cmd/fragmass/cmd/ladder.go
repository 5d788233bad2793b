package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ChrisMcGann/FragMass/pkg/config"
	"github.com/ChrisMcGann/FragMass/pkg/core"
	"github.com/ChrisMcGann/FragMass/pkg/filter"
	"github.com/ChrisMcGann/FragMass/pkg/writer/sqlite"
	"github.com/spf13/cobra"
)

func newLadderCmd(a *app) *cobra.Command {
	var skipEmpty bool

	ladderCmd := &cobra.Command{
		Use:   "ladder",
		Short: "Compute every N- and C-terminal fragment of each peptide",
		Long: `Compute the fragment ladder of each peptide: the N- and C-terminal fragment
at every split index, with monoisotopic and average masses.

The ladder is printed as a table, or written to a SQLite database with --out.

Examples:
  # Print the ladder of PEPTIDE
  fragmass ladder --seq PEPTIDE

  # Write N-terminal fragments between 200 and 2000 Da to a database
  fragmass ladder --config peptides.yaml --out ladder.db --termini n --min-mass 200 --max-mass 2000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLadder(cmd, skipEmpty)
		},
	}

	flags := ladderCmd.Flags()
	flags.StringP("out", "o", "", "Output database file (table on stdout if empty)")
	flags.StringSlice("termini", nil, "Termini to keep, e.g. n,c (default all)")
	flags.Float64("min-mass", 0, "Drop fragments lighter than this (0 = no bound)")
	flags.Float64("max-mass", 0, "Drop fragments heavier than this (0 = no bound)")
	flags.Int("top-n", 0, "Keep only the N heaviest fragments per peptide (0 = no limit)")
	flags.BoolVar(&skipEmpty, "skip-empty", false, "Drop the zero-length fragments at both ends")

	for _, key := range []string{"out", "termini", "min-mass", "max-mass", "top-n"} {
		a.v.BindPFlag("ladder."+key, flags.Lookup(key))
	}

	return ladderCmd
}

func (a *app) runLadder(cmd *cobra.Command, skipEmpty bool) error {
	c, err := a.settings()
	if err != nil {
		return err
	}

	filterConfig, err := newFilterConfig(c)
	if err != nil {
		return err
	}
	if err := filterConfig.Validate(); err != nil {
		return err
	}

	peptides, err := a.peptides(cmd, c)
	if err != nil {
		return err
	}
	table, modDB, err := a.resources(c)
	if err != nil {
		return err
	}

	var writer *sqlite.Writer
	if c.Ladder.Out != "" {
		writer, err = sqlite.NewWriter(c.Ladder.Out)
		if err != nil {
			return fmt.Errorf("failed to create output database: %w", err)
		}
		defer writer.Close()
		writer.SetDescription(fmt.Sprintf("fragment ladders, %s masses", filterConfig.Kind))
		a.logger.Info("writing ladders", "out", c.Ladder.Out)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if writer == nil {
		fmt.Fprintln(tw, "sequence\tfragment\tindex\tresidues\tmono\tavg")
	}

	count := 0
	skipped := 0

	for _, pc := range peptides {
		p, err := pc.Build(modDB)
		if err != nil {
			a.logger.Warn("invalid peptide", "sequence", pc.Sequence, "err", err)
			skipped++
			continue
		}

		full, err := p.Ladder(table)
		if err != nil {
			a.logger.Warn("failed to compute ladder", "sequence", p.Sequence(), "err", err)
			skipped++
			continue
		}

		// Validate ladder
		if err := full.Validate(); err != nil {
			a.logger.Warn("invalid ladder", "sequence", p.Sequence(), "err", err)
			skipped++
			continue
		}

		filtered := &core.Ladder{
			Sequence:  full.Sequence,
			Fragments: append([]core.Fragment(nil), full.Fragments...),
		}
		if skipEmpty {
			filter.RemoveEmptyFragments(filtered)
		}
		if err := filterConfig.Apply(filtered); err != nil {
			return err
		}

		if writer != nil {
			if err := writer.WriteLadder(p, full, filtered); err != nil {
				return fmt.Errorf("failed to write ladder %s: %w", p.Sequence(), err)
			}
		} else {
			writeTable(tw, filtered)
		}

		count++
		if count%1000 == 0 {
			a.logger.Info("processing", "peptides", count)
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if writer != nil {
		if err := writer.Finalize(); err != nil {
			return fmt.Errorf("failed to finalize database: %w", err)
		}
	}

	a.logger.Info("ladders complete", "processed", count, "skipped", skipped)
	if count == 0 && skipped > 0 {
		return fmt.Errorf("no ladder computed, %d peptides skipped", skipped)
	}
	return nil
}

func newFilterConfig(c config.Config) (*filter.Config, error) {
	kind, err := c.MassKind()
	if err != nil {
		return nil, err
	}
	termini, err := filter.ParseTermini(c.Ladder.Termini)
	if err != nil {
		return nil, err
	}

	return &filter.Config{
		Termini: termini,
		MinMass: c.Ladder.MinMass,
		MaxMass: c.Ladder.MaxMass,
		TopN:    c.Ladder.TopN,
		Kind:    kind,
	}, nil
}

func writeTable(w io.Writer, l *core.Ladder) {
	for _, f := range l.Fragments {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.6f\t%.6f\n", l.Sequence, f.Name(), f.Index, f.Residues, f.Mono, f.Avg)
	}
}
