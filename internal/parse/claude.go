package parse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jsonl2md/jsonl2md/internal/sanitize"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// Rendering bounds. Thinking and tool inputs are excerpted; tool results
// are primary content and kept whole.
const (
	maxThinkingChars  = 3000
	maxToolInputChars = 4000
)

// Record kinds that never carry conversational value.
const (
	kindSummary  = "summary"
	kindSnapshot = "file-history-snapshot"
	kindProgress = "progress"
	kindSystem   = "system"
	kindQueueOp  = "queue-operation"
)

type claudeRecord struct {
	Type      string          `json:"type"`
	IsMeta    bool            `json:"isMeta"`
	Timestamp string          `json:"timestamp"`
	Cwd       string          `json:"cwd"`
	Summary   string          `json:"summary"` // for type="summary" records
	Message   json.RawMessage `json:"message"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type claudeBlock struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
	Content   json.RawMessage `json:"content"` // tool_result sub-content
	Source    *blockSource    `json:"source"`
}

type blockSource struct {
	Type      string `json:"type"` // "base64", "url"
	MediaType string `json:"media_type"`
}

// parseClaude decodes a Claude Code transcript: envelope records with a
// type discriminator wrapping role/content messages.
func parseClaude(f *os.File, conv *Conversation) error {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var rec claudeRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			conv.SkippedLines++
			continue
		}

		if rec.Type == kindSummary && rec.Summary != "" {
			conv.Title = rec.Summary
			continue
		}
		if rec.Cwd != "" && conv.Cwd == "" {
			conv.Cwd = rec.Cwd
		}

		// Snapshot, hook-progress, and system-metadata records carry no
		// conversational content; meta records are injected boilerplate.
		switch rec.Type {
		case kindSnapshot, kindProgress, kindSystem, kindQueueOp:
			continue
		}
		if rec.IsMeta {
			continue
		}
		if rec.Type != "user" && rec.Type != "assistant" {
			continue
		}

		var msg claudeMessage
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			continue
		}

		segs := extractSegments(rec.Type, msg.Content, lineNum)
		if len(segs) == 0 {
			continue
		}
		appendTurn(conv, rec.Type, parseTimestamp(rec.Timestamp), lineNum, segs)
	}

	return scanner.Err()
}

// appendTurn coalesces contiguous same-role records into one message.
// A role change is a turn boundary.
func appendTurn(conv *Conversation, role string, ts time.Time, line int, segs []Segment) {
	n := len(conv.Messages)
	if n > 0 && conv.Messages[n-1].Role == role {
		conv.Messages[n-1].Segments = append(conv.Messages[n-1].Segments, segs...)
		return
	}
	conv.Messages = append(conv.Messages, Message{
		Role:      role,
		Timestamp: ts,
		Line:      line,
		Segments:  segs,
	})
}

// extractSegments normalizes a message content payload, preserving
// sub-block order. Payloads are sanitized here so nothing binary survives
// into a segment.
func extractSegments(role string, raw json.RawMessage, line int) []Segment {
	// plain string payload
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t := sanitize.Clean(s); t != "" {
			return []Segment{{Kind: SegmentText, Text: t, Line: line}}
		}
		return nil
	}

	var blocks []claudeBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}

	var segs []Segment
	for _, b := range blocks {
		switch b.Type {
		case "text":
			if t := sanitize.Clean(b.Text); t != "" {
				segs = append(segs, Segment{Kind: SegmentText, Text: t, Line: line})
			}

		case "thinking":
			if t := strings.TrimSpace(b.Thinking); t != "" {
				t = sanitize.ReplaceBinaryRuns(t)
				t = sanitize.Truncate(t, maxThinkingChars, "thinking")
				segs = append(segs, Segment{Kind: SegmentThinking, Text: t, Line: line})
			}

		case "tool_use":
			name := b.Name
			if name == "" {
				name = "?"
			}
			input := sanitize.ReplaceBinaryRuns(serializeInput(b.Input))
			segs = append(segs, Segment{
				Kind:      SegmentToolUse,
				ToolName:  name,
				ToolInput: sanitize.Truncate(input, maxToolInputChars, "tool input"),
				ToolUseID: b.ID,
				Line:      line,
			})

		case "tool_result":
			segs = append(segs, extractToolResult(b, line)...)

		case "image":
			segs = append(segs, Segment{
				Kind:   SegmentAttachment,
				Media:  "image",
				Detail: mediaType(b.Source, "image"),
				Line:   line,
			})

		case "document":
			seg := Segment{Kind: SegmentAttachment, Media: "document", Line: line}
			if b.Source != nil && b.Source.Type == "base64" {
				seg.Detail = mediaType(b.Source, "?")
			}
			segs = append(segs, seg)
		}
	}
	return segs
}

// extractToolResult handles both string and block-list result payloads.
// Bodies are kept whole; only binary payloads are replaced.
func extractToolResult(b claudeBlock, line int) []Segment {
	id := b.ToolUseID
	if len(id) > 12 {
		id = id[:12]
	}

	makeSeg := func(text string) *Segment {
		text = sanitize.StripSystemReminders(text)
		text = sanitize.StripLineNumbers(text)
		text = strings.TrimSpace(text)
		if sanitize.LooksBinary(text) {
			return &Segment{
				Kind:   SegmentAttachment,
				Media:  "binary",
				Detail: fmt.Sprintf("binary tool result, %d chars", len(text)),
				Line:   line,
			}
		}
		text = strings.TrimSpace(sanitize.ReplaceBinaryRuns(text))
		if text == "" {
			return nil
		}
		return &Segment{
			Kind:      SegmentToolResult,
			Text:      text,
			ToolUseID: id,
			IsError:   b.IsError,
			Line:      line,
		}
	}

	var s string
	if err := json.Unmarshal(b.Content, &s); err == nil {
		if seg := makeSeg(s); seg != nil {
			return []Segment{*seg}
		}
		return nil
	}

	var subBlocks []claudeBlock
	if err := json.Unmarshal(b.Content, &subBlocks); err != nil {
		return nil
	}

	var segs []Segment
	for _, sb := range subBlocks {
		switch sb.Type {
		case "text":
			if seg := makeSeg(sb.Text); seg != nil {
				segs = append(segs, *seg)
			}
		case "image":
			segs = append(segs, Segment{
				Kind:   SegmentAttachment,
				Media:  "image",
				Detail: "tool result image",
				Line:   line,
			})
		case "document":
			segs = append(segs, Segment{
				Kind:   SegmentAttachment,
				Media:  "document",
				Detail: "tool result document",
				Line:   line,
			})
		}
	}
	return segs
}

// serializeInput pretty-prints a tool input payload. Inputs that fail to
// re-marshal are kept raw rather than dropped.
func serializeInput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func mediaType(src *blockSource, fallback string) string {
	if src != nil && src.MediaType != "" {
		return src.MediaType
	}
	return fallback
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
