package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/reactor"
	"github.com/vango-dev/reactor/internal/demo"
)

func demoCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the order sheet demo",
		Long: `Run a scripted demo on the order-total sheet.

Builds a small spreadsheet (quantity, unit price, tax rate, and
discount feeding subtotal, tax, total, and a free-shipping flag),
attaches callbacks to every derived cell, and plays through a mutation
script, printing each change notification as it fires.

Examples:
  reactor demo
  reactor demo --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")

	return cmd
}

func runDemo(verbose bool) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	sheet, err := demo.NewSheet(3, 19.99, 0.08, 0, reactor.WithLogger[float64](logger))
	if err != nil {
		return err
	}
	r := sheet.Reactor

	printBanner()
	fmt.Println("  demo")
	fmt.Println()

	printSheet(sheet)
	fmt.Println()

	for _, cell := range []reactor.ComputeCellID{sheet.Subtotal, sheet.Tax, sheet.Total, sheet.FreeShipping} {
		label := sheet.Label(cell)
		if _, ok := r.AddCallback(cell, func(v float64) {
			success("%-13s -> %.2f", label, v)
		}); !ok {
			return fmt.Errorf("failed to attach callback to %s", label)
		}
	}

	script := []struct {
		input reactor.InputCellID
		value float64
	}{
		{sheet.Quantity, 5},
		{sheet.Discount, 10},
		{sheet.UnitPrice, 24.99},
		// Restating an unchanged input notifies nothing.
		{sheet.Quantity, 5},
		{sheet.TaxRate, 0},
	}
	for _, step := range script {
		info("set %s = %v", sheet.Label(step.input), step.value)
		if !r.SetValue(step.input, step.value) {
			return fmt.Errorf("failed to set %s", sheet.Label(step.input))
		}
	}

	fmt.Println()
	printSheet(sheet)
	return nil
}

// printSheet prints every cell of the sheet in layout order.
func printSheet(s *demo.Sheet) {
	values := s.Values()
	for _, lc := range s.Cells() {
		fmt.Printf("  %-13s %10.2f\n", lc.Label, values[lc.Label])
	}
}
