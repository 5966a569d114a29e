// Package markdown renders a normalized conversation as a single markdown
// document with a YAML frontmatter header.
package markdown

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jsonl2md/jsonl2md/internal/parse"
)

// Frontmatter is the metadata header of a rendered document.
type Frontmatter struct {
	Source   string `yaml:"source"`
	Modified string `yaml:"modified"`
	Title    string `yaml:"title,omitempty"`
}

// Render writes the conversation as markdown. Output is deterministic:
// the only timestamps embedded are those carried by the input.
func Render(conv *parse.Conversation, w io.Writer) error {
	fm := Frontmatter{
		Source:   conv.FilePath,
		Modified: conv.Mtime.UTC().Format(time.RFC3339),
		Title:    conv.Title,
	}
	head, err := yaml.Marshal(&fm)
	if err != nil {
		return errors.Wrap(err, "marshal frontmatter")
	}
	if _, err := fmt.Fprintf(w, "---\n%s---\n\n", head); err != nil {
		return err
	}

	for i, msg := range conv.Messages {
		if i > 0 {
			if _, err := io.WriteString(w, "---\n\n"); err != nil {
				return err
			}
		}
		if err := renderMessage(msg, w); err != nil {
			return err
		}
	}
	return nil
}

func renderMessage(msg parse.Message, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "## %s\n\n", roleHeading(msg.Role)); err != nil {
		return err
	}
	if !msg.Timestamp.IsZero() {
		if _, err := fmt.Fprintf(w, "*%s*\n\n", msg.Timestamp.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	for _, seg := range msg.Segments {
		if _, err := io.WriteString(w, renderSegment(seg)+"\n\n"); err != nil {
			return err
		}
	}
	return nil
}

func renderSegment(seg parse.Segment) string {
	switch seg.Kind {
	case parse.SegmentText:
		return seg.Text

	case parse.SegmentThinking:
		return fmt.Sprintf("<details><summary>Thinking</summary>\n\n%s\n\n</details>", seg.Text)

	case parse.SegmentToolUse:
		return fmt.Sprintf("**Tool: `%s`**\n```json\n%s\n```", seg.ToolName, seg.ToolInput)

	case parse.SegmentToolResult:
		label := "Result"
		if seg.IsError {
			label = "Error"
		}
		return fmt.Sprintf("**%s** (`%s`):\n```\n%s\n```", label, seg.ToolUseID, seg.Text)

	case parse.SegmentAttachment:
		if seg.Detail != "" {
			return fmt.Sprintf("*[%s: %s]*", seg.Media, seg.Detail)
		}
		return fmt.Sprintf("*[%s]*", seg.Media)
	}
	return ""
}

func roleHeading(role string) string {
	switch role {
	case "user":
		return "User"
	case "assistant":
		return "Assistant"
	case "":
		return "Unknown"
	}
	return strings.ToUpper(role[:1]) + role[1:]
}

// WriteFile renders the conversation to path, creating or replacing it.
func WriteFile(conv *parse.Conversation, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := Render(conv, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}
	return nil
}

// MirrorModTime sets the output file's modification time to the source
// file's, so listings sorted by mtime preserve conversation chronology.
// Kept separate from the write so it can be verified independently.
func MirrorModTime(path string, mtime time.Time) error {
	return errors.Wrap(os.Chtimes(path, mtime, mtime), "mirror mtime")
}
