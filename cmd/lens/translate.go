package main

import (
	"fmt"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/translate"
	"github.com/spf13/cobra"
)

func translateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <record-id> <language>",
		Short: "Translate a record's line items",
		Long: `Translate a stored record's line-item text into the target language.
Translation always works from the originally extracted text, so switching
languages repeatedly never degrades the content. Use the language name
"Original" to restore the untranslated text.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			recordID, language := args[0], args[1]

			records, err := initRecordStore()
			if err != nil {
				return err
			}
			defer func() { _ = records.Close() }()

			record, err := records.Get(ctx, recordID)
			if err != nil {
				return fmt.Errorf("record %s: %w", recordID, err)
			}

			var orch *translate.Orchestrator
			if language == model.LanguageOriginal {
				// Restoring the original needs no collaborator.
				orch = translate.NewOrchestrator(nil, records)
			} else {
				translator, err := newTranslator(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = translator.Close() }()
				orch = translate.NewOrchestrator(translator, records)
			}

			orch.SetActive(record.ID)
			if err := orch.SetLanguage(ctx, record, language); err != nil {
				return err
			}

			fmt.Printf("%s (%s)\n", record.VendorName, record.Language)
			for _, item := range record.LineItems {
				fmt.Printf("  %-40s  %s\n", truncate(item.Description, 40), item.GLCategory)
			}
			return nil
		},
	}
}
