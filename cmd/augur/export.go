package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the latest briefing as a PDF",
	RunE:  runExport,
}

var exportOut string

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: briefing_<date>.pdf)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := application.StorageManager.InsightStorage().Latest(ctx)
	if err != nil {
		return fmt.Errorf("failed to load latest briefing: %w", err)
	}

	data, err := application.PDFExporter.ConvertMarkdownToPDF(report.Content, "Daily Briefing "+report.CreatedAt.Format("2006-01-02"))
	if err != nil {
		return err
	}

	path := exportOut
	if path == "" {
		path = "briefing_" + report.CreatedAt.Format("20060102") + ".pdf"
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info().Str("path", path).Int("bytes", len(data)).Msg("Briefing exported")
	return nil
}
