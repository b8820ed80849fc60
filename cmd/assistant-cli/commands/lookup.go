package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/textnorm"
)

var lookupLimit int

// lookup shows the raw ranking behind a resolution, which is what the
// scoring weights are tuned against.
var lookupCmd = &cobra.Command{
	Use:   "lookup [query]",
	Short: "Search the catalog and print every scored candidate",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newContainer()
		defer c.Close()

		query := strings.Join(args, " ")
		tokens := textnorm.ExtractModelTokens(query)
		brand := textnorm.ExtractBrand(query, catalog.KnownBrands)

		w := cmd.OutOrStdout()
		dimColor.Fprintf(w, "normalized=%q tokens=%v brand=%q\n", textnorm.Normalize(query), tokens, brand)

		records := c.Catalog.Search(cmd.Context(), query, lookupLimit)
		if len(records) == 0 {
			errorColor.Fprintln(w, "no catalog hits")
			return nil
		}
		for i, cand := range c.Scorer.Rank(records, query, tokens, brand) {
			fmt.Fprintf(w, "%2d. %6.1f  %-16s %s", i+1, cand.Score, cand.MatchedSignal, cand.Name)
			dimColor.Fprintf(w, "  [%s]\n", cand.Source)
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().IntVarP(&lookupLimit, "limit", "n", 20, "maximum catalog hits to rank")
	rootCmd.AddCommand(lookupCmd)
}
