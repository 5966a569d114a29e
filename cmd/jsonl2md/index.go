package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsonl2md/jsonl2md/internal/config"
	"github.com/jsonl2md/jsonl2md/internal/index"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Scan and index transcript files for search",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := index.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Scanning roots...\n")
			for _, root := range cfg.Roots {
				fmt.Fprintf(os.Stderr, "  %s\n", root)
			}

			stats, err := index.IndexAll(db, cfg.Roots)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
