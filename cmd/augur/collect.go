package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ternarybob/augur/internal/models"
)

var collectCmd = &cobra.Command{
	Use:   "collect <name>",
	Short: "Run a single collector",
	Long:  `Runs one collector outside the batch. Use --list to print the available names in batch order.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if collectList {
			return nil
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runCollect,
}

var collectList bool

func init() {
	collectCmd.Flags().BoolVar(&collectList, "list", false, "List collector names")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	out := cmd.OutOrStdout()
	if collectList {
		for _, entry := range application.Collectors.Entries() {
			fmt.Fprintf(out, "%d  %-16s %s\n", entry.Wave, entry.Collector.Name(), entry.Collector.Category())
		}
		return nil
	}

	report, err := application.RunCollector(ctx, args[0])
	if report != nil {
		fmt.Fprintf(out, "%s: saved=%d skipped=%d failed=%d\n", report.Collector,
			report.Count(models.ItemSaved), report.Count(models.ItemSkipped), report.Count(models.ItemFailed))
		for _, item := range report.Items {
			if item.Status == models.ItemFailed {
				fmt.Fprintf(out, "  failed %s: %s\n", item.ID, strings.TrimSpace(item.Reason))
			}
		}
	}
	return err
}
