package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/ruinscript/loader"
)

func newCheckCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [scripts-dir]",
		Short: "Compile and cross-check a script library",
		Long: `Compile every script in the library, make sure each defines its
entry point and warn about text ids missing from texts.yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := root.scriptsDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				cfg, err := root.loadConfig()
				if err != nil {
					return fmt.Errorf("config: %w", err)
				}
				dir = cfg.ScriptsDir
			}

			lib, err := loader.Load(dir)
			if err != nil {
				return err
			}
			warnings, err := loader.Check(lib)

			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			var ve *loader.ValidationError
			if errors.As(err, &ve) {
				for _, e := range ve.Errors {
					fmt.Fprintf(out, "error: %s\n", e)
				}
				return fmt.Errorf("%d script error(s) in %s", len(ve.Errors), dir)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d script(s), %d text(s) OK\n", dir, len(lib.Scripts), len(lib.Texts))
			return nil
		},
	}
}
