package main

import (
	"github.com/spf13/cobra"

	"github.com/jsonl2md/jsonl2md/internal/config"
	"github.com/jsonl2md/jsonl2md/internal/index"
	"github.com/jsonl2md/jsonl2md/internal/search"
	"github.com/jsonl2md/jsonl2md/internal/tui"
)

func listCmd() *cobra.Command {
	var since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all transcripts sorted by update time",
		Long:  `Opens a TUI panel showing all indexed transcripts, newest first. Type to filter by content.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := index.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			index.IndexAll(db, cfg.Roots)

			return tui.RunList(db, search.Options{Since: since, Limit: limit})
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Filter transcripts updated since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
