package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsonl2md/jsonl2md/internal/convert"
)

func convertCmd() *cobra.Command {
	var output string
	var recursive bool

	cmd := &cobra.Command{
		Use:   "convert <file.jsonl | dir>",
		Short: "Convert JSONL transcripts to markdown",
		Long: `Convert one transcript file, or every *.jsonl file in a directory.

Output lands alongside each input (foo.jsonl -> foo.md) unless -o is given
for a single file. Each output's modification time is set to its source's,
so chronological directory listings stay meaningful. Binary payloads are
stripped; tool calls and results are preserved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			info, err := os.Stat(target)
			if err != nil {
				return err
			}

			if !info.IsDir() {
				if !strings.HasSuffix(target, ".jsonl") {
					return fmt.Errorf("%s is not a .jsonl file", target)
				}
				res, err := convert.File(target, output)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "%s -> %s (%d messages)\n", res.Input, res.Output, res.Messages)
				return nil
			}

			if output != "" {
				return fmt.Errorf("-o/--output is not supported in directory mode")
			}
			stats, err := convert.Tree(target, recursive)
			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .md path (single-file mode only)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Recurse into subdirectories")

	return cmd
}
