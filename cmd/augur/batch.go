package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run every collector and then the analysis once",
	RunE:  runBatch,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run only the staged analysis over the collected data",
	RunE:  runAnalyze,
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := application.SchedulerService.RunBatch(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, step := range report.Steps {
		status := "ok"
		if !step.Succeeded() {
			status = "FAILED: " + step.Error
		}
		fmt.Fprintf(out, "[wave %d] %-16s %8s  %s\n", step.Wave, step.Name, step.Duration.Round(time.Millisecond), status)
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	outcome, err := application.SchedulerService.RunAnalysis(ctx)
	if err != nil {
		return err
	}
	if !outcome.Succeeded() {
		return fmt.Errorf("analysis failed: %s", outcome.Error)
	}

	report, err := application.StorageManager.InsightStorage().Latest(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Content)
	return nil
}
