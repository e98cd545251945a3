package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func clearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the session history",
		Long:  `Delete every record from the session history. Learned corrections are kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				fmt.Print("Delete all records from the session history? [y/N]: ")
				answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return err
				}
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			records, err := initRecordStore()
			if err != nil {
				return err
			}
			defer func() { _ = records.Close() }()

			if err := records.Clear(cmd.Context()); err != nil {
				return err
			}

			fmt.Println("Session history cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
