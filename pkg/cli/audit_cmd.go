package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"askdata/pkg/client"
)

func newAuditCmd(newClient func() *client.Client) *cobra.Command {
	var (
		onlyErrors bool
		maxResults int
		pageToken  string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List the query audit log, newest first",
		Example: `  askdata audit
  askdata audit --only-errors
  askdata audit --max-results 20 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := newClient().Audit(cmd.Context(), client.AuditListOptions{
				OnlyErrors: onlyErrors,
				MaxResults: maxResults,
				PageToken:  pageToken,
			})
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			rows := make([][]string, 0, len(resp.Records))
			for _, rec := range resp.Records {
				question := ""
				if rec.Question != nil {
					question = truncate(*rec.Question, 40)
				}
				status := "ok"
				if rec.Error != nil {
					status = "error: " + truncate(*rec.Error, 40)
				}
				rows = append(rows, []string{
					rec.CreatedAt.Format("2006-01-02 15:04:05"),
					question,
					fmt.Sprintf("%d", rec.RowCount),
					fmt.Sprintf("%dms", rec.DurationMs),
					fmt.Sprintf("%v", rec.CacheHit),
					status,
				})
			}

			out := cmd.OutOrStdout()
			printTable(out, []string{"created", "question", "rows", "duration", "cached", "status"}, rows)
			fmt.Fprintf(out, "\n%d of %d records\n", len(resp.Records), resp.Total)
			if resp.NextPageToken != "" {
				fmt.Fprintf(out, "next page: --page-token %s\n", resp.NextPageToken)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "Show only failed requests")
	cmd.Flags().IntVar(&maxResults, "max-results", 100, "Maximum number of records")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "Page token from a previous listing")
	return cmd
}
