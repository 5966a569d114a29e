// Package index maintains a sqlite FTS index over normalized transcript
// content, so extracted conversations stay searchable without re-parsing
// every file.
package index

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jsonl2md/jsonl2md/internal/parse"
	"github.com/jsonl2md/jsonl2md/internal/sanitize"
	"github.com/jsonl2md/jsonl2md/internal/scan"
)

// maxIndexedChars bounds one FTS row; longer segment bodies are cut for
// indexing only, never in rendered output.
const maxIndexedChars = 8 * 1024

const titleMax = 200

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// IndexAll scans the roots, re-indexes changed transcripts, and prunes
// entries whose files are gone. Per-file failures are counted, not fatal.
func IndexAll(db *DB, roots []string) (Stats, error) {
	var stats Stats

	files, err := scan.Roots(roots)
	if err != nil {
		return stats, errors.Wrap(err, "scan")
	}
	stats.Scanned = len(files)

	seen := make(map[string]struct{})
	for _, fi := range files {
		key := transcriptKey(fi.Path, roots)
		seen[key] = struct{}{}

		needs, err := needsUpdate(db, key, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		conv, err := parse.File(fi.Path)
		if err != nil {
			stats.Errors++
			logrus.WithField("file", fi.Path).WithError(err).Warn("parse failed")
			continue
		}
		if len(conv.Messages) == 0 {
			continue
		}

		if err := indexTranscript(db, key, conv); err != nil {
			stats.Errors++
			logrus.WithField("file", fi.Path).WithError(err).Warn("index failed")
			continue
		}
		stats.Updated++
	}

	pruned, err := prune(db, seen)
	if err != nil {
		return stats, errors.Wrap(err, "prune")
	}
	stats.Pruned = pruned

	return stats, nil
}

// transcriptKey derives a stable key from the path relative to its root.
func transcriptKey(path string, roots []string) string {
	for _, root := range roots {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return strings.TrimSuffix(rel, ".jsonl")
		}
	}
	return strings.TrimSuffix(path, ".jsonl")
}

func needsUpdate(db *DB, key string, mtime, size int64) (bool, error) {
	st, err := db.GetFileState(key)
	if err != nil {
		return false, err
	}
	if st == nil {
		return true, nil // new transcript
	}
	return st.Mtime != mtime || st.Size != size, nil
}

func indexTranscript(db *DB, key string, conv *parse.Conversation) error {
	if err := db.DeleteTranscript(key); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	title := conv.Title
	if title == "" {
		title = strings.ReplaceAll(conv.FirstUserText(titleMax), "\n", " ")
	}

	var createdAt, updatedAt string
	for _, m := range conv.Messages {
		if m.Timestamp.IsZero() {
			continue
		}
		ts := m.Timestamp.UTC().Format(time.RFC3339)
		if createdAt == "" {
			createdAt = ts
		}
		updatedAt = ts
	}

	_, err = tx.Exec(
		`INSERT INTO transcripts (transcript_key, file_path, cwd, title, created_at, updated_at, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key, conv.FilePath, conv.Cwd, title, createdAt, updatedAt,
		conv.Mtime.Unix(), conv.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (transcript_key, seq, ts, role, kind, text, line)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	seq := 0
	for _, m := range conv.Messages {
		ts := ""
		if !m.Timestamp.IsZero() {
			ts = m.Timestamp.UTC().Format(time.RFC3339)
		}
		for _, seg := range m.Segments {
			text := indexableText(seg)
			if text == "" {
				continue
			}
			text = sanitize.CutBytes(text, maxIndexedChars)
			if _, err := stmt.Exec(key, seq, ts, m.Role, string(seg.Kind), text, seg.Line); err != nil {
				return err
			}
			seq++
		}
	}

	return tx.Commit()
}

// indexableText picks what a segment contributes to search. Attachments are
// placeholders with nothing to find; tool inputs are searched alongside
// the tool name.
func indexableText(seg parse.Segment) string {
	switch seg.Kind {
	case parse.SegmentText, parse.SegmentThinking, parse.SegmentToolResult:
		return seg.Text
	case parse.SegmentToolUse:
		return seg.ToolName + "\n" + seg.ToolInput
	}
	return ""
}

func prune(db *DB, seen map[string]struct{}) (int, error) {
	all, err := db.AllKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range all {
		if _, ok := seen[key]; !ok {
			if err := db.DeleteTranscript(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
