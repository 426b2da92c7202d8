package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/nathoo/ruinscript/cli"
	"github.com/nathoo/ruinscript/engine"
	"github.com/nathoo/ruinscript/engine/save"
	"github.com/nathoo/ruinscript/tui"
	"github.com/nathoo/ruinscript/types"
)

type playOptions struct {
	plain     bool
	inputFile string
	target    string
	scene     string
	trace     bool
	load      string
}

func newPlayCommand(root *rootOptions) *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play scripts interactively",
		Long: `Play scripts from the library in a terminal window.

Type a script id to start it. The plain line interface is used when
--plain is set, when --input replays a file, or when stdout is not a
terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.plain, "plain", false, "use the plain line interface")
	cmd.Flags().StringVar(&opts.inputFile, "input", "", "read player input from a file (implies --plain)")
	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "character targeted by started scripts")
	cmd.Flags().StringVar(&opts.scene, "scene", "", "scene passed to started scripts")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "print state changes after each step")
	cmd.Flags().StringVar(&opts.load, "load", "", "load a save before playing")
	return cmd
}

func runPlay(cmd *cobra.Command, root *rootOptions, opts *playOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := root.setup()
	if err != nil {
		return err
	}
	defer a.close()

	useTUI := !opts.plain && opts.inputFile == "" && term.IsTerminal(int(os.Stdout.Fd()))

	eopts := a.engineOptions()
	if useTUI {
		// stderr would draw over the alternate screen.
		eopts.Logger = zap.NewNop()
	}
	eng := engine.New(a.lib, a.newState(), eopts)

	if opts.load != "" {
		sd, err := save.ReadFile(save.Path(a.cfg.SaveDir, opts.load))
		if err != nil {
			return fmt.Errorf("loading save: %w", err)
		}
		eng.Restore(ctx, &sd.State)
	}

	if useTUI {
		return tui.Run(eng, a.lib, a.cfg.SaveDir, types.CharaID(opts.target))
	}

	c := cli.New(eng, a.lib, a.cfg.SaveDir)
	c.Out = cmd.OutOrStdout()
	c.Chara = types.CharaID(opts.target)
	c.Scene = opts.scene
	c.Trace = opts.trace
	if opts.inputFile != "" {
		f, err := os.Open(opts.inputFile)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}
	c.Run(ctx)
	return nil
}
