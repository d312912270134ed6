// Package cli implements the askdata command-line client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"askdata/pkg/client"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			printJSONError(os.Stdout, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		host   string
		output string
	)

	rootCmd := &cobra.Command{
		Use:           "askdata",
		Short:         "Ask-data analytic query CLI",
		Long:          "Command-line interface for the ask-data query API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flag > env > default.
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("ASKDATA_HOST"); v != "" {
					host = v
				}
			}
			return validateOutputFormat(output)
		},
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "Server base URL")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format: table or json")

	newClient := func() *client.Client { return client.NewClient(host) }
	rootCmd.AddCommand(newAskCmd(newClient))
	rootCmd.AddCommand(newCatalogCmd(newClient))
	rootCmd.AddCommand(newAuditCmd(newClient))

	return rootCmd
}
