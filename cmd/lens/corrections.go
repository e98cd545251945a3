package main

import (
	"fmt"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/corrections"
	"github.com/spf13/cobra"
)

func correctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "Manage learned category corrections",
		Long: `View, teach, and forget keyword-to-category corrections. A correction
taught here is applied automatically to every future extraction whose line-item
description contains the keyword.`,
	}

	cmd.AddCommand(correctionsListCmd())
	cmd.AddCommand(correctionsAddCmd())
	cmd.AddCommand(correctionsDeleteCmd())

	return cmd
}

func correctionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learned corrections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initCorrectionStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			all, err := store.All(cmd.Context())
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Println("No corrections learned yet.")
				return nil
			}

			fmt.Printf("%-24s  %-24s  %6s  %s\n", "Keyword", "Category", "Used", "Updated")
			for _, c := range all {
				fmt.Printf("%-24s  %-24s  %6d  %s\n",
					c.Keyword, c.Category, c.UseCount, c.LastUpdated.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func correctionsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <description> <category>",
		Short: "Teach a correction",
		Long: `Teach the correction memory that items like <description> belong to
<category>. The keyword to remember is derived from the description the same
way it would be from an in-session edit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initCorrectionStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			memory := corrections.NewMemory(store)
			correction, err := memory.Record(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if correction == nil {
				return fmt.Errorf("no usable keyword in %q; use a description with a word of 4+ letters", args[0])
			}

			fmt.Printf("Learned: descriptions containing %q -> %s\n", correction.Keyword, correction.Category)
			return nil
		},
	}
}

func correctionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <keyword>",
		Short: "Forget a correction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initCorrectionStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			keyword := strings.ToLower(strings.TrimSpace(args[0]))
			if err := store.Delete(cmd.Context(), keyword); err != nil {
				return err
			}

			fmt.Printf("Forgot correction for %q\n", keyword)
			return nil
		},
	}
}
