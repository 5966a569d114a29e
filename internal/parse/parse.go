// Package parse turns line-delimited JSON transcript files into normalized
// conversations. Two input schemas are recognized: the Claude Code envelope
// format and the simple role/message format used by ChatGPT-style exports.
// Malformed lines are skipped, never fatal.
package parse

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Format identifies the input schema of a transcript file.
type Format string

const (
	FormatClaude  Format = "claude"
	FormatSimple  Format = "simple"
	FormatUnknown Format = "unknown"
)

// File parses one transcript file into a Conversation. Unknown formats fall
// back to the Claude parser, which degrades to an empty conversation rather
// than failing.
func File(path string) (*Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open transcript")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat transcript")
	}

	conv := &Conversation{
		FilePath: path,
		Mtime:    info.ModTime(),
		Size:     info.Size(),
	}

	format := DetectFormat(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "rewind transcript")
	}

	switch format {
	case FormatSimple:
		conv.Format = string(FormatSimple)
		err = parseSimple(f, conv)
	default:
		if format == FormatUnknown {
			logrus.WithField("file", path).Warn("unrecognized transcript schema, assuming Claude Code envelopes")
		}
		conv.Format = string(FormatClaude)
		err = parseClaude(f, conv)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return conv, nil
}

// DetectFormat sniffs the schema from the first ten decodable lines.
// The reader is left at an arbitrary position.
func DetectFormat(r io.Reader) Format {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	checked := 0
	for scanner.Scan() && checked < 10 {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		checked++

		var probe struct {
			Type       string          `json:"type"`
			SessionID  string          `json:"sessionId"`
			ParentUUID string          `json:"parentUuid"`
			Role       string          `json:"role"`
			Message    json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			continue
		}

		if probe.SessionID != "" || probe.ParentUUID != "" ||
			probe.Type == kindSnapshot || probe.Type == kindSummary {
			return FormatClaude
		}
		if probe.Role != "" && len(probe.Message) > 0 && probe.SessionID == "" {
			return FormatSimple
		}
	}
	return FormatUnknown
}
