package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/leofalp/toonboard/storyboard"
	"github.com/leofalp/toonboard/storyboard/render"
	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var format, output string
	var width int
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a saved storyboard JSON file",
		Long: `Render reads storyboard JSON (from a file, or stdin) and prints it as text,
markdown, terminal, html or json, or writes a DOCX document with --format docx.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(a, args)
			if err != nil {
				return err
			}
			sb, err := storyboard.Parse(data)
			if err != nil {
				return err
			}

			if strings.EqualFold(format, "docx") {
				if output == "" {
					return fmt.Errorf("--format docx needs --output")
				}
				doc, err := render.DOCXBytes(sb)
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, doc, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", output, err)
				}
				fmt.Fprintf(a.stderr, "Storyboard saved to %s\n", output)
				return nil
			}

			out, err := formatStoryboard(format, sb, nil, width)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Fprintln(a.stdout, out)
				return nil
			}
			if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, markdown, terminal, html, json, docx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "wrap width for --format terminal")
	return cmd
}
