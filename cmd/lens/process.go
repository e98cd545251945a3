package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ledgerlens/ledgerlens/internal/corrections"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/pipeline"
	"github.com/ledgerlens/ledgerlens/internal/service"
	"github.com/spf13/cobra"
)

func processCmd() *cobra.Command {
	var (
		demo     bool
		forceAdd bool
		skipDups bool
	)

	cmd := &cobra.Command{
		Use:   "process <files...>",
		Short: "Extract records from scanned documents",
		Long: `Run the ingestion pipeline over one or more image or PDF files.
Each file is extracted, quality-checked, run through the learned correction
memory, checked against the session history for duplicates, and appended.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			files, err := readFiles(args)
			if err != nil {
				return err
			}

			records, err := initRecordStore()
			if err != nil {
				return err
			}
			defer func() { _ = records.Close() }()

			correctionStore, err := initCorrectionStore()
			if err != nil {
				return err
			}
			defer func() { _ = correctionStore.Close() }()

			extractor, err := newExtractor(ctx, demo)
			if err != nil {
				return err
			}
			defer func() { _ = extractor.Close() }()

			events := &consoleEvents{forceAdd: forceAdd, skipDuplicates: skipDups, input: bufio.NewReader(os.Stdin)}
			p := pipeline.New(extractor, records, corrections.NewMemory(correctionStore), events, pipelineConfig(demo))

			if err := p.Run(ctx, files); err != nil {
				return err
			}

			// A quota error parks the remainder; wait out the cooldown and let
			// the pipeline retry once.
			for p.State().Status == pipeline.StatusQuotaCooldown {
				if err := p.Cooldown(ctx); err != nil {
					return err
				}
			}

			return printSummary(ctx, records, len(files))
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "use the synthetic demo extractor instead of the vision model")
	cmd.Flags().BoolVar(&forceAdd, "force", false, "add records even when they duplicate existing ones")
	cmd.Flags().BoolVar(&skipDups, "skip-duplicates", false, "skip duplicates without prompting")

	return cmd
}

// consoleEvents surfaces pipeline progress on the terminal and prompts on
// duplicates unless a flag already decided the answer.
type consoleEvents struct {
	input          *bufio.Reader
	forceAdd       bool
	skipDuplicates bool
	lastCooldown   int
	mu             sync.Mutex
}

func (e *consoleEvents) StateChanged(state pipeline.State) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch state.Status {
	case pipeline.StatusProcessing:
		if state.CurrentFile != "" {
			slog.Info("Processing document",
				"file", state.CurrentFile,
				"position", state.Processed+1,
				"total", state.Total)
		}
	case pipeline.StatusQuotaCooldown:
		// The countdown ticks once a second; log every ten to stay readable.
		if state.CooldownRemaining != e.lastCooldown && state.CooldownRemaining%10 == 0 {
			slog.Info("Waiting out extraction quota", "seconds_remaining", state.CooldownRemaining)
		}
		e.lastCooldown = state.CooldownRemaining
	case pipeline.StatusComplete:
		slog.Info("Batch complete", "processed", state.Processed)
	case pipeline.StatusError:
		slog.Error("Batch failed", "message", state.Message)
	case pipeline.StatusIdle:
	}
}

func (e *consoleEvents) DuplicateFound(candidate, existing model.Record) bool {
	if e.forceAdd {
		return true
	}
	if e.skipDuplicates {
		return false
	}

	fmt.Printf("\n%s on %s for %.2f looks like a duplicate of an existing record (%s).\n",
		candidate.VendorName, candidate.InvoiceDate, candidate.TotalAmount, existing.ID)
	fmt.Print("Add it anyway? [y/N]: ")

	answer, err := e.input.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// printSummary shows the newest records, most recent first.
func printSummary(ctx context.Context, records service.RecordStore, batchSize int) error {
	all, err := records.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session history: %w", err)
	}
	if len(all) == 0 {
		fmt.Println("No records in the session history.")
		return nil
	}

	shown := all
	if len(shown) > batchSize {
		shown = shown[:batchSize]
	}

	fmt.Printf("\n%-36s  %-12s  %-24s  %-10s  %10s  %s\n", "ID", "Date", "Vendor", "Confidence", "Total", "Flags")
	for _, record := range shown {
		fmt.Printf("%-36s  %-12s  %-24s  %-10s  %10.2f  %s\n",
			record.ID,
			record.InvoiceDate,
			truncate(record.VendorName, 24),
			record.Confidence,
			record.TotalAmount,
			flagSummary(record))
	}
	return nil
}

func flagSummary(record model.Record) string {
	var flags []string
	if record.Flags.HasZeroPrices {
		flags = append(flags, "zero-prices")
	}
	if record.Flags.LowItemCount {
		flags = append(flags, "few-items")
	}
	if record.Flags.MissingMetadata {
		flags = append(flags, "missing-metadata")
	}
	if record.Flags.UnsupportedCurrency {
		flags = append(flags, "unknown-currency")
	}
	if record.Flags.UnsupportedLanguage {
		flags = append(flags, "unknown-language")
	}
	if record.HasSensitiveData {
		flags = append(flags, "sensitive:"+strings.Join(record.SensitiveDataTypes, ","))
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, " ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
