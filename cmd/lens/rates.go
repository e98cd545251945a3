package main

import (
	"fmt"
	"strconv"

	"github.com/ledgerlens/ledgerlens/internal/currency"
	"github.com/spf13/cobra"
)

func ratesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates [amount] [from] [to]",
		Short: "Show the currency table or convert an amount",
		Long: `With no arguments, print the fixed currency rate table. With an amount,
a source currency (symbol or code), and a target code, convert the amount.
The table is a static constant, not live market data.`,
		Args: cobra.RangeArgs(0, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Printf("%-6s  %14s\n", "Code", "Units per USD")
				for _, code := range currency.Codes() {
					rate, _ := currency.USDRate(code)
					fmt.Printf("%-6s  %14.4f\n", code, rate)
				}
				return nil
			}

			if len(args) != 3 {
				return fmt.Errorf("conversion needs <amount> <from> <to>")
			}

			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			from, fromOK := currency.ResolveCode(args[1])
			to, toOK := currency.ResolveCode(args[2])
			if !fromOK {
				fmt.Printf("Unrecognized currency %q, treating it as %s\n", args[1], from)
			}
			if !toOK {
				fmt.Printf("Unrecognized currency %q, treating it as %s\n", args[2], to)
			}

			converted := currency.Convert(amount, from, to)
			fmt.Printf("%.2f %s = %.2f %s\n", amount, from, converted, to)
			return nil
		},
	}
}
