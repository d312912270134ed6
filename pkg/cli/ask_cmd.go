package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"askdata/pkg/client"
)

func newAskCmd(newClient func() *client.Client) *cobra.Command {
	var planFile string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Run an analytic question or an explicit plan",
		Example: `  # Ask in natural language
  askdata ask "revenue by brand"

  # Run an explicit plan from a file
  askdata ask --plan plan.json

  # JSON output for scripting
  askdata ask "top 10 brands" --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.AskRequest{}
			switch {
			case planFile != "" && len(args) > 0:
				return fmt.Errorf("provide either a question or --plan, not both")
			case planFile != "":
				raw, err := os.ReadFile(planFile) //nolint:gosec // path is caller-controlled
				if err != nil {
					return fmt.Errorf("read plan file: %w", err)
				}
				req.Plan = json.RawMessage(raw)
			case len(args) == 1 && strings.TrimSpace(args[0]) != "":
				q := args[0]
				req.Question = &q
			default:
				return fmt.Errorf("a question argument or --plan is required")
			}

			resp, err := newClient().Ask(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printAskResult(cmd, resp)
		},
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "Path to a JSON plan file")
	return cmd
}

func printAskResult(cmd *cobra.Command, resp *client.AskResponse) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), resp)
	}

	rows := make([][]string, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		cells := make([]string, 0, len(resp.Columns))
		for _, col := range resp.Columns {
			cells = append(cells, formatCell(r[col]))
		}
		rows = append(rows, cells)
	}
	printTable(cmd.OutOrStdout(), resp.Columns, rows)

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d rows in %dms (cache hit: %v)\n",
		resp.RowCount, resp.DurationMs, resp.CacheHit)
	return nil
}
