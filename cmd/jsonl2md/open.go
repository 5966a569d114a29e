package main

import (
	"github.com/spf13/cobra"

	"github.com/jsonl2md/jsonl2md/internal/config"
	"github.com/jsonl2md/jsonl2md/internal/index"
	"github.com/jsonl2md/jsonl2md/internal/open"
)

func openCmd() *cobra.Command {
	var hitSeq int

	cmd := &cobra.Command{
		Use:   "open <key>",
		Short: "Open the original JSONL file in $EDITOR at the hit line",
		Args:  cobra.ExactArgs(1),
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

			return open.Transcript(db, args[0], hitSeq)
		},
	}

	cmd.Flags().IntVar(&hitSeq, "hit", -1, "Message seq to jump to")

	return cmd
}
