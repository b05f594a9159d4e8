package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	sim "github.com/resistance-sim/resistance-sim/sim"
)

// drugsCmd lists the built-in drug catalog.
var drugsCmd = &cobra.Command{
	Use:   "drugs",
	Short: "List the built-in drug catalog",
	Run: func(cmd *cobra.Command, args []string) {
		printCatalog(cmd.OutOrStdout())
	},
}

func printCatalog(w io.Writer) {
	fmt.Fprintf(w, "%-5s %10s %12s %6s %14s %12s %10s\n",
		"DRUG", "K_MAX/DAY", "EC50", "HILL", "CONCENTRATION", "MUTATION", "P(KILL)")
	for _, id := range sim.KnownDrugs() {
		p, _ := sim.DefaultDrugParams(id)
		fmt.Fprintf(w, "%-5s %10.4f %12.4g %6.2f %14.4g %12.2e %10.4f\n",
			id, p.KMax, p.EC50, p.Hill, p.Concentration, p.MutationRate,
			sim.KillProbability(sim.KillRate(p)))
	}
}
