package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ledgerlens/ledgerlens/internal/export"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var (
		format          string
		recordID        string
		displayCurrency string
		outputDir       string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Serialize session records for downstream systems",
		Long: `Export the session history (or a single record) as generic CSV, a
ledger-import CSV dialect, a pipe-delimited dialect, spreadsheet formats, or
pretty-printed JSON. Amounts can be converted to a display currency without
touching the stored records.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			records, err := initRecordStore()
			if err != nil {
				return err
			}
			defer func() { _ = records.Close() }()

			var toExport []model.Record
			if recordID != "" {
				record, err := records.Get(ctx, recordID)
				if err != nil {
					return fmt.Errorf("record %s: %w", recordID, err)
				}
				toExport = []model.Record{*record}
			} else {
				toExport, err = records.All(ctx)
				if err != nil {
					return fmt.Errorf("failed to load session history: %w", err)
				}
			}

			if len(toExport) == 0 {
				return fmt.Errorf("nothing to export; run 'lens process' first")
			}

			if displayCurrency != "" {
				toExport = export.WithDisplayCurrency(toExport, displayCurrency)
			}

			data, err := export.Serialize(toExport, export.Format(format))
			if err != nil {
				return err
			}

			path := filepath.Join(outputDir, export.Filename(toExport, export.Format(format)))
			if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- export meant to be shared
				return fmt.Errorf("failed to write export: %w", err)
			}

			slog.Info("Export written",
				"path", path,
				"format", format,
				"records", len(toExport))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV),
		fmt.Sprintf("export format (one of %v)", export.Formats()))
	cmd.Flags().StringVar(&recordID, "record", "", "export a single record by id")
	cmd.Flags().StringVar(&displayCurrency, "display-currency", "", "convert amounts to this currency for display")
	cmd.Flags().StringVar(&outputDir, "output", ".", "directory to write the export into")

	return cmd
}
