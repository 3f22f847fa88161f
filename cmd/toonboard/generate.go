package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/leofalp/toonboard/internal/config"
	"github.com/leofalp/toonboard/storyboard"
	"github.com/leofalp/toonboard/storyboard/render"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	input  storyboard.Input
	pages  string
	format string
	output string
	width  int
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a storyboard",
		Long: `Generate asks the model for a storyboard and prints it.

Values not given as flags are asked for interactively. Use --output to save
the recovered record as JSON, or as DOCX when the file ends in .docx.`,
		Example: `  toonboard generate --plot "Two friends share an umbrella" --pages 4
  toonboard generate --plot-url https://example.com/story --pages 6 --output story.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.input.Characters, "characters", "", "characters, comma separated")
	f.StringVar(&opts.input.Keywords, "keywords", "", "keywords and topic to weave in")
	f.StringVar(&opts.input.Plot, "plot", "", "the plot")
	f.StringVar(&opts.input.PlotURL, "plot-url", "", "fetch the plot from this page when --plot is empty")
	f.StringVar(&opts.pages, "pages", "", fmt.Sprintf("number of pages (%d-%d)", storyboard.MinPages, storyboard.MaxPages))
	f.StringVarP(&opts.format, "format", "f", "text", "output format: text, markdown, terminal, html, json")
	f.StringVarP(&opts.output, "output", "o", "", "save the record to this file (.json or .docx)")
	f.IntVar(&opts.width, "width", render.DefaultWidth, "wrap width for --format terminal")
	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, opts *generateOptions) error {
	in := opts.input
	in.Pages = storyboard.PageCount(opts.pages)
	if err := promptMissing(cmd, a, &in); err != nil {
		return err
	}

	gen, err := a.generator()
	if err != nil {
		return err
	}
	if !gen.Ready() {
		return fmt.Errorf("%w: set %s or run `toonboard config set-key`", storyboard.ErrNoClient, config.EnvAPIKey)
	}

	fmt.Fprintln(a.stderr, "Generating storyboard...")
	res, err := gen.Generate(cmd.Context(), in)
	if err != nil {
		var genErr *storyboard.GenerationError
		if errors.As(err, &genErr) {
			return errors.New(genErr.UserMessage())
		}
		return err
	}

	out, err := formatStoryboard(opts.format, res.Storyboard, res.Record, opts.width)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, out)

	if opts.output != "" {
		if err := saveResult(opts.output, res); err != nil {
			return err
		}
		fmt.Fprintf(a.stderr, "Storyboard saved to %s\n", opts.output)
	}
	return nil
}

// promptMissing asks for the fields the flags left out. Nothing is asked
// when a plot source was given and pages are set.
func promptMissing(cmd *cobra.Command, a *app, in *storyboard.Input) error {
	plotGiven := cmd.Flags().Changed("plot") || cmd.Flags().Changed("plot-url")
	if plotGiven && strings.TrimSpace(string(in.Pages)) != "" {
		return nil
	}

	r := bufio.NewReader(a.stdin)
	ask := func(label string, dst *string) error {
		fmt.Fprintf(a.stderr, "%s: ", label)
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("input ended before %s was given", strings.ToLower(label))
			}
			return err
		}
		*dst = strings.TrimSpace(line)
		return nil
	}

	fmt.Fprintln(a.stderr, "=== Instatoon storyboard ===")
	if !plotGiven {
		if !cmd.Flags().Changed("characters") {
			if err := ask("Characters (optional)", &in.Characters); err != nil {
				return err
			}
		}
		if !cmd.Flags().Changed("keywords") {
			if err := ask("Keywords and topic (optional)", &in.Keywords); err != nil {
				return err
			}
		}
		if err := ask("Plot", &in.Plot); err != nil {
			return err
		}
	}
	if strings.TrimSpace(string(in.Pages)) == "" {
		var pages string
		if err := ask(fmt.Sprintf("Pages (%d-%d)", storyboard.MinPages, storyboard.MaxPages), &pages); err != nil {
			return err
		}
		in.Pages = storyboard.PageCount(pages)
	}
	return nil
}

func formatStoryboard(format string, sb storyboard.Storyboard, record any, width int) (string, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return render.Text(sb), nil
	case "markdown", "md":
		return render.Markdown(sb), nil
	case "terminal":
		return render.Terminal(sb, width)
	case "html":
		return render.HTML(sb)
	case "json":
		if record == nil {
			record = sb
		}
		return render.JSON(record)
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

func saveResult(path string, res *storyboard.Result) error {
	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".docx") {
		data, err = render.DOCXBytes(res.Storyboard)
	} else {
		data, err = storyboard.MarshalIndent(res.Record)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving storyboard: %w", err)
	}
	return nil
}
