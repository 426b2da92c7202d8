package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nathoo/ruinscript/journal"
)

func newRunsCommand(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent script runs from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if cfg.JournalPath == "" {
				return fmt.Errorf("no journal_path configured")
			}
			db, err := journal.OpenSQLite(cfg.JournalPath)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			runs, err := db.Recent(ctx, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tSCRIPT\tCHARA\tYIELDS\tOUTCOME\tMESSAGE")
			for _, r := range runs {
				outcome := string(r.Outcome)
				if outcome == "" {
					outcome = "running"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					r.StartedAt.Local().Format(time.DateTime), r.Script, r.Chara, r.Yields, outcome, r.Message)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list")
	return cmd
}
