package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦═╗┌─┐┌─┐┌─┐┌┬┐┌─┐┬─┐
  ╠╦╝├┤ ├─┤│   │ │ │├┬┘
  ╩╚═└─┘┴ ┴└─┘ ┴ └─┘┴└─
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "reactor",
		Short: "A reactive cell evaluation engine for Go",
		Long: `Reactor models spreadsheet-like dependency graphs: input cells hold
values, compute cells derive values from other cells, and callbacks
report changes after each mutation.

This CLI is the development harness around the library:

  • Scripted demo on an order-total sheet
  • Inspector server with a live WebSocket stream and Prometheus metrics
  • SetValue throughput benchmarks`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		demoCmd(),
		serveCmd(),
		benchCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the reactor ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
