package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type outputMode int

const (
	outputAuto outputMode = iota
	outputTable
	outputJSON
)

func parseOutputMode(s string) (outputMode, error) {
	switch s {
	case "", "auto":
		return outputAuto, nil
	case "table":
		return outputTable, nil
	case "json":
		return outputJSON, nil
	default:
		return 0, fmt.Errorf("unknown output format %q (want auto, table or json)", s)
	}
}

// wantsJSON resolves auto mode: tables for terminals, JSON for pipes.
func wantsJSON(mode outputMode, w io.Writer) bool {
	switch mode {
	case outputJSON:
		return true
	case outputTable:
		return false
	default:
		return !isTerminal(w)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
