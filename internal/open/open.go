// Package open jumps into the source JSONL file in $EDITOR, positioned at
// the line of a search hit.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jsonl2md/jsonl2md/internal/index"
)

func Transcript(db *index.DB, key string, hitSeq int) error {
	t, err := db.GetTranscript(key)
	if err != nil {
		return errors.Wrap(err, "get transcript")
	}
	if t == nil {
		return errors.Errorf("transcript not found: %s", key)
	}

	if _, err := os.Stat(t.FilePath); err != nil {
		return errors.Errorf("file not found: %s", t.FilePath)
	}

	lineNum := 1
	if hitSeq >= 0 {
		msgs, err := db.GetMessages(key)
		if err == nil {
			for _, m := range msgs {
				if m.Seq == hitSeq {
					lineNum = m.Line
					break
				}
			}
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}
	return openInEditor(editor, t.FilePath, lineNum)
}

func openInEditor(editor, filePath string, lineNum int) error {
	var cmd *exec.Cmd

	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		cmd = exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		cmd = exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		cmd = exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		cmd = exec.Command(editor, filePath)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
