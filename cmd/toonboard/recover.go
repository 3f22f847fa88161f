package main

import (
	"fmt"
	"io"
	"os"

	"github.com/leofalp/toonboard/core/recovery"
	"github.com/leofalp/toonboard/storyboard"
	"github.com/spf13/cobra"
)

func newRecoverCmd(a *app) *cobra.Command {
	var lenient bool
	cmd := &cobra.Command{
		Use:   "recover [file]",
		Short: "Recover a storyboard record from a saved model reply",
		Long: `Recover runs a raw model reply (from a file, or stdin) through extraction,
normalization, decoding with one repair pass, and validation, then prints the
outcome as JSON. It exits non-zero when recovery fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(a, args)
			if err != nil {
				return err
			}
			engine := a.engine()
			if lenient {
				engine = recovery.New(recovery.WithRepair(recovery.LenientRepair))
			}

			out := engine.Recover(string(raw))
			data, err := storyboard.MarshalIndent(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, string(data))
			if !out.OK() {
				fmt.Fprintln(a.stderr, "Error:", out.Failure)
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&lenient, "lenient", false, "use the lenient repair pass instead of trailing-comma removal")
	return cmd
}

// readInput reads the named file, or stdin when no file or "-" is given.
func readInput(a *app, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(a.stdin)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return data, nil
}
