package parse

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/jsonl2md/jsonl2md/internal/sanitize"
)

// Simple JSONL (ChatGPT/Gemini exports): role and message at top level,
// no envelope type.
type simpleRecord struct {
	Role      string          `json:"role"`
	Timestamp string          `json:"timestamp"`
	Message   json.RawMessage `json:"message"`
}

type simpleMessage struct {
	Content json.RawMessage `json:"content"`
}

type simpleBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func parseSimple(f *os.File, conv *Conversation) error {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var rec simpleRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			conv.SkippedLines++
			continue
		}
		if rec.Role != "user" && rec.Role != "assistant" {
			continue
		}

		var msg simpleMessage
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			continue
		}

		segs := simpleSegments(msg.Content, lineNum)
		if len(segs) == 0 {
			continue
		}
		appendTurn(conv, rec.Role, parseTimestamp(rec.Timestamp), lineNum, segs)
	}

	return scanner.Err()
}

func simpleSegments(raw json.RawMessage, line int) []Segment {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t := sanitize.Clean(s); t != "" {
			return []Segment{{Kind: SegmentText, Text: t, Line: line}}
		}
		return nil
	}

	var blocks []simpleBlock
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
		case "image":
			segs = append(segs, Segment{Kind: SegmentAttachment, Media: "image", Line: line})
		}
	}
	return segs
}
