package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jsonl2md/jsonl2md/internal/config"
	"github.com/jsonl2md/jsonl2md/internal/index"
	"github.com/jsonl2md/jsonl2md/internal/search"
	"github.com/jsonl2md/jsonl2md/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd() *cobra.Command {
	var role, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed transcripts",
		Long: `Search indexed transcripts using FTS5. On a terminal this opens the
interactive browser; on a pipe it emits TSV for fzf integration:
  key, seq, updatedAt, cwd, title, snippet`,
		Args: cobra.ExactArgs(1),
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

			// refresh the index before searching
			index.IndexAll(db, cfg.Roots)

			opts := search.Options{
				Role:  role,
				Since: since,
				Limit: limit,
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			hits, err := search.Search(db, opts)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			flatten := strings.NewReplacer("\t", " ", "\n", " ")
			for _, h := range hits {
				cwd := h.Cwd
				if cwd == "" {
					cwd = "-"
				}
				// first two fields (key, seq) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\n",
					h.Key,
					h.Seq,
					sColorDim, h.UpdatedAt, sColorReset,
					cwd,
					flatten.Replace(h.Title),
					colorizeSnippet(flatten.Replace(h.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Filter by role (user/assistant)")
	cmd.Flags().StringVar(&since, "since", "", "Filter transcripts updated since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
