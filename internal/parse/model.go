package parse

import (
	"time"

	"github.com/jsonl2md/jsonl2md/internal/sanitize"
)

// SegmentKind discriminates the renderable content variants.
type SegmentKind string

const (
	SegmentText       SegmentKind = "text"
	SegmentThinking   SegmentKind = "thinking"
	SegmentToolUse    SegmentKind = "tool_use"
	SegmentToolResult SegmentKind = "tool_result"
	SegmentAttachment SegmentKind = "attachment"
)

// Segment is one unit of renderable content within a message.
// Which fields carry data depends on Kind.
type Segment struct {
	Kind      SegmentKind
	Text      string // text, thinking, tool_result body
	ToolName  string // tool_use
	ToolInput string // tool_use, serialized JSON
	ToolUseID string // tool_use / tool_result
	IsError   bool   // tool_result
	Media     string // attachment: "image", "document", "binary"
	Detail    string // attachment: media type or size note
	Line      int    // source line number in the JSONL file
}

// Message is one rendered turn: contiguous same-role records coalesced.
type Message struct {
	Role      string // "user" or "assistant"
	Timestamp time.Time
	Line      int // source line of the first record in the turn
	Segments  []Segment
}

// Conversation is the normalized form of one transcript file.
type Conversation struct {
	FilePath     string
	Title        string // from the summary record, if any
	Cwd          string
	Format       string // "claude" or "simple"
	Mtime        time.Time
	Size         int64
	SkippedLines int // lines that failed to decode
	Messages     []Message
}

// FirstUserText returns the opening user text, cut to max bytes, for use
// as a fallback title.
func (c *Conversation) FirstUserText(max int) string {
	for _, m := range c.Messages {
		if m.Role != "user" {
			continue
		}
		for _, s := range m.Segments {
			if s.Kind == SegmentText && s.Text != "" {
				return sanitize.CutBytes(s.Text, max)
			}
		}
	}
	return ""
}
