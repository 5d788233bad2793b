package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mods",
		Short: "List the named modifications available to config files",
		Long: `List the modification names that peptide config files may reference,
with their mass shift and default residue. The built-in unimod entries are
extended by --mods-csv, or by unimod_custom.csv in the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.settings()
			if err != nil {
				return err
			}
			modDB, err := c.ModDatabase()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "name\tmass\tresidue")
			for _, name := range modDB.Names() {
				mass, _ := modDB.GetMass(name)
				residue := "-"
				if aa, ok := modDB.GetResidue(name); ok {
					residue = string(aa)
				}
				fmt.Fprintf(tw, "%s\t%.6f\t%s\n", name, mass, residue)
			}
			return tw.Flush()
		},
	}
}
