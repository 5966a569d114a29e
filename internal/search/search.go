// Package search queries the transcript index: FTS5 with bm25 ranking, a
// LIKE fallback for CJK queries, one best hit per transcript.
package search

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/jsonl2md/jsonl2md/internal/index"
)

type Hit struct {
	Key       string
	Seq       int
	UpdatedAt string
	Cwd       string
	Title     string
	Snippet   string
	Role      string
	Rank      float64
}

type Options struct {
	Query string
	Role  string // "" = all, "user", "assistant"
	Since string // "" = no filter, e.g. "2026-01-01"
	Limit int
}

func Search(db *index.DB, opts Options) ([]Hit, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// over-fetch so dedup still fills the requested limit
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var hits []Hit
	var err error
	if containsCJK(opts.Query) {
		hits, err = searchLike(db, opts)
	} else {
		hits, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deduped []Hit
	for _, h := range hits {
		if seen[h.Key] {
			continue
		}
		seen[h.Key] = true
		deduped = append(deduped, h)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

// ListAll returns transcripts newest first, one pseudo-hit each, for the
// browse view.
func ListAll(db *index.DB, opts Options) ([]Hit, error) {
	var conditions []string
	var args []interface{}

	if opts.Since != "" {
		conditions = append(conditions, "updated_at >= ?")
		args = append(args, opts.Since)
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 1000000
	}

	query := fmt.Sprintf(`
		SELECT transcript_key, updated_at, cwd, title
		FROM transcripts
		%s
		ORDER BY updated_at DESC
		LIMIT ?
	`, where)
	args = append(args, limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list query")
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		h := Hit{Seq: -1}
		if err := rows.Scan(&h.Key, &h.UpdatedAt, &h.Cwd, &h.Title); err != nil {
			return nil, err
		}
		h.Snippet = h.Title
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func searchFTS(db *index.DB, opts Options) ([]Hit, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []interface{}{opts.Query}

	if opts.Role != "" {
		conditions = append(conditions, "m.role = ?")
		args = append(args, opts.Role)
	}
	if opts.Since != "" {
		conditions = append(conditions, "t.updated_at >= ?")
		args = append(args, opts.Since)
	}

	query := fmt.Sprintf(`
		SELECT
			m.transcript_key,
			m.seq,
			t.updated_at,
			t.cwd,
			t.title,
			snippet(messages_fts, 0, '>>>','<<<', '...', 40) as snip,
			m.role,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN transcripts t ON m.transcript_key = t.transcript_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search query")
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Key, &h.Seq, &h.UpdatedAt, &h.Cwd, &h.Title, &h.Snippet, &h.Role, &h.Rank); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// searchLike does substring matching; FTS5 unicode61 tokenizing cannot
// split CJK text into words.
func searchLike(db *index.DB, opts Options) ([]Hit, error) {
	conditions := []string{"m.text LIKE ?"}
	args := []interface{}{"%" + opts.Query + "%"}

	if opts.Role != "" {
		conditions = append(conditions, "m.role = ?")
		args = append(args, opts.Role)
	}
	if opts.Since != "" {
		conditions = append(conditions, "t.updated_at >= ?")
		args = append(args, opts.Since)
	}

	query := fmt.Sprintf(`
		SELECT
			m.transcript_key,
			m.seq,
			t.updated_at,
			t.cwd,
			t.title,
			m.text,
			m.role
		FROM messages m
		JOIN transcripts t ON m.transcript_key = t.transcript_key
		WHERE %s
		ORDER BY t.updated_at DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search query")
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var fullText string
		if err := rows.Scan(&h.Key, &h.Seq, &h.UpdatedAt, &h.Cwd, &h.Title, &fullText, &h.Role); err != nil {
			return nil, err
		}
		h.Snippet = makeSnippet(fullText, opts.Query, 30)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet excerpts text around the first occurrence of query, wrapping
// the match in >>> <<< markers like the FTS snippet function.
func makeSnippet(text, query string, contextChars int) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(query))
	if idx < 0 {
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}

	runes := []rune(text)
	qLen := len([]rune(query))
	runePos := len([]rune(text[:idx]))

	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + qLen + contextChars
	if end > len(runes) {
		end = len(runes)
	}

	prefix, suffix := "", ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}

	return prefix +
		string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+qLen]) + "<<<" +
		string(runes[runePos+qLen:end]) +
		suffix
}
