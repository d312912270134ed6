package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"askdata/pkg/client"
)

func newCatalogCmd(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the queryable dimensions and metrics",
		Example: `  askdata catalog
  askdata catalog --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := newClient().Catalog(cmd.Context())
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog version %s\n\nDimensions:\n", resp.Version)
			printTable(out, []string{"key", "label", "filterable", "synonyms"}, entryRows(resp.Dimensions))
			fmt.Fprintf(out, "\nMetrics:\n")
			printTable(out, []string{"key", "label", "synonyms"}, metricRows(resp.Metrics))
			return nil
		},
	}
}

func entryRows(entries []client.CatalogEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Key, e.Label, fmt.Sprintf("%v", e.Filterable), strings.Join(e.Synonyms, ", "),
		})
	}
	return rows
}

func metricRows(entries []client.CatalogEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, e.Label, strings.Join(e.Synonyms, ", ")})
	}
	return rows
}
