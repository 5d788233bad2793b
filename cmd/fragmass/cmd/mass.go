package cmd

import (
	"fmt"

	"github.com/ChrisMcGann/FragMass/pkg/core"
	"github.com/spf13/cobra"
)

func newMassCmd(a *app) *cobra.Command {
	var (
		index    int
		terminus string
	)

	massCmd := &cobra.Command{
		Use:   "mass",
		Short: "Compute the neutral mass of one fragment per peptide",
		Long: `Compute the neutral mass of the N- or C-terminal fragment at a split index.

An N-terminal fragment covers the residues before the index, a C-terminal
fragment the residues from the index onward. Static modifications always
count over the whole peptide.

Examples:
  # Prefix PEP of PEPTIDE
  fragmass mass --seq PEPTIDE --index 3 --term n

  # Average mass of every peptide's C-terminal fragment from residue 2
  fragmass mass --config peptides.yaml --index 2 --term c --kind avg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			term, err := core.ParseTerminus(terminus)
			if err != nil {
				return err
			}
			return a.runMass(cmd, index, term)
		},
	}

	massCmd.Flags().IntVarP(&index, "index", "i", 0, "Split index, 0-based (required)")
	massCmd.Flags().StringVarP(&terminus, "term", "t", "n", "Fragment terminus: n or c")
	massCmd.MarkFlagRequired("index")

	return massCmd
}

func (a *app) runMass(cmd *cobra.Command, index int, term core.Terminus) error {
	c, err := a.settings()
	if err != nil {
		return err
	}
	kind, err := c.MassKind()
	if err != nil {
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

	out := cmd.OutOrStdout()
	count := 0
	skipped := 0

	for _, pc := range peptides {
		p, err := pc.Build(modDB)
		if err != nil {
			a.logger.Warn("invalid peptide", "sequence", pc.Sequence, "err", err)
			skipped++
			continue
		}

		mass, err := p.FragmentMass(table, index, term, kind)
		if err != nil {
			a.logger.Warn("failed to compute fragment mass", "sequence", p.Sequence(), "err", err)
			skipped++
			continue
		}

		fmt.Fprintf(out, "%s\t%s%d\t%s\t%.6f\n", p.Sequence(), term, index, kind, mass)
		count++
	}

	a.logger.Debug("fragment masses computed", "count", count, "skipped", skipped)
	if count == 0 && skipped > 0 {
		return fmt.Errorf("no fragment mass computed, %d peptides skipped", skipped)
	}
	return nil
}
