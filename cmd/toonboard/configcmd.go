package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/leofalp/toonboard/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage settings",
	}

	var file string
	setKey := &cobra.Command{
		Use:         "set-key [key]",
		Short:       "Save the OpenAI API key to an env file",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				fmt.Fprint(a.stderr, "OpenAI API key: ")
				line, _ := bufio.NewReader(a.stdin).ReadString('\n')
				key = strings.TrimSpace(line)
			}
			if err := config.SaveAPIKey(file, key); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "API key saved to %s\n", file)
			return nil
		},
	}
	setKey.Flags().StringVar(&file, "file", ".env", "env file to write")

	cmd.AddCommand(setKey)
	return cmd
}
