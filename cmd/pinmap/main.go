package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		var run func([]string) error
		switch os.Args[1] {
		case "import":
			run = runImport
		case "export":
			run = runExport
		case "countries":
			run = runCountries
		case "version":
			fmt.Println("pinmap " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
		if run != nil {
			if err := run(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	// No subcommand → launch TUI
	if err := runTUI(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `pinmap - place catalog map with a draggable bottom sheet

Usage:
  pinmap [-config file]     Launch interactive TUI
  pinmap import [flags]     Load places/posts CSV files into a .db catalog
  pinmap export [flags]     Filter and sort a catalog, write CSV
  pinmap countries [query]  List country presets
  pinmap version            Show version

Run 'pinmap import --help' or 'pinmap export --help' for flags.
`)
}
