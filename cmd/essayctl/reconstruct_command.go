package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/essaygest/internal/layout"
)

type reconstructOutput struct {
	Text       string   `json:"text"`
	Paragraphs []string `json:"paragraphs"`
	Shape      string   `json:"shape"`
	Fallback   bool     `json:"fallback"`
	Reason     string   `json:"reason,omitempty"`
}

func newReconstructCommand(ctx *commandContext) *cobra.Command {
	var rawPath string
	var textPath string

	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Rebuild paragraphs from a saved OCR response",
		Long: "Reads an OCR provider response (JSON) and prints the reconstructed paragraphs.\n" +
			"Use --raw - to read the response from stdin. --text supplies the flat transcript\n" +
			"used when the response has no usable geometry.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rawPath == "" && textPath == "" {
				return fmt.Errorf("--raw or --text is required")
			}
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			mode, err := ctx.output()
			if err != nil {
				return err
			}

			var raw []byte
			if rawPath != "" {
				if raw, err = readInput(cmd, rawPath); err != nil {
					return err
				}
			}
			var fallback string
			if textPath != "" {
				b, err := readInput(cmd, textPath)
				if err != nil {
					return err
				}
				fallback = string(b)
			}

			r := layout.New(cfg.Calibration())
			var res layout.Result
			if len(raw) > 0 {
				res = r.ReconstructJSON(raw, fallback)
			} else {
				res = r.Reconstruct(nil, fallback)
			}

			if mode == outputJSON {
				out := reconstructOutput{
					Text:       res.Text(),
					Paragraphs: res.Document.Paragraphs,
					Shape:      res.Shape.String(),
					Fallback:   res.Fallback,
				}
				if out.Paragraphs == nil {
					out.Paragraphs = []string{}
				}
				if res.Err != nil {
					out.Reason = res.Err.Error()
				}
				return writeJSON(cmd, out)
			}
			if res.Fallback && res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: %v, used flat text\n", res.Err)
			}
			if text := res.Text(); text != "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rawPath, "raw", "", "OCR response JSON file, or - for stdin")
	cmd.Flags().StringVar(&textPath, "text", "", "Flat transcript file used as fallback")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}
