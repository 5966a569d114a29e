package index

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS transcripts (
    transcript_key TEXT PRIMARY KEY,
    file_path      TEXT NOT NULL,
    cwd            TEXT NOT NULL DEFAULT '',
    title          TEXT NOT NULL DEFAULT '',
    created_at     TEXT NOT NULL DEFAULT '',
    updated_at     TEXT NOT NULL DEFAULT '',
    mtime          INTEGER NOT NULL DEFAULT 0,
    size           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    transcript_key TEXT NOT NULL,
    seq            INTEGER NOT NULL,
    ts             TEXT NOT NULL DEFAULT '',
    role           TEXT NOT NULL,
    kind           TEXT NOT NULL DEFAULT 'text',
    text           TEXT NOT NULL,
    line           INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (transcript_key, seq)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    text,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion should be bumped whenever normalization logic changes,
// to force a full re-index.
const schemaVersion = "1"

type DB struct {
	db *sql.DB
}

func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create db dir")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init schema")
	}

	d := &DB{db: db}
	d.migrateSchemaVersion()
	return d, nil
}

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		// reset change detection so every transcript is re-indexed
		d.db.Exec("UPDATE transcripts SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) Raw() *sql.DB { return d.db }

// FileState is what change detection compares against the filesystem.
type FileState struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetFileState(key string) (*FileState, error) {
	var st FileState
	err := d.db.QueryRow(
		"SELECT mtime, size FROM transcripts WHERE transcript_key = ?", key,
	).Scan(&st.Mtime, &st.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (d *DB) AllKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT transcript_key FROM transcripts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteTranscript(key string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE transcript_key = ?", key); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM transcripts WHERE transcript_key = ?", key); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) TranscriptCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

type TranscriptRow struct {
	Key       string
	FilePath  string
	Cwd       string
	Title     string
	CreatedAt string
	UpdatedAt string
}

func (d *DB) GetTranscript(key string) (*TranscriptRow, error) {
	var t TranscriptRow
	err := d.db.QueryRow(
		"SELECT transcript_key, file_path, cwd, title, created_at, updated_at FROM transcripts WHERE transcript_key = ?",
		key,
	).Scan(&t.Key, &t.FilePath, &t.Cwd, &t.Title, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type MessageRow struct {
	Key  string
	Seq  int
	Ts   string
	Role string
	Kind string
	Text string
	Line int
}

func (d *DB) GetMessages(key string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT transcript_key, seq, ts, role, kind, text, line FROM messages WHERE transcript_key = ? ORDER BY seq",
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.Key, &m.Seq, &m.Ts, &m.Role, &m.Kind, &m.Text, &m.Line); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// GetMessagesWindow loads the rows around a hit message instead of the
// whole transcript. startPos is the number of rows before the window;
// totalCount is the transcript's row count.
func (d *DB) GetMessagesWindow(key string, hitSeq, context int) (msgs []MessageRow, hitIdx, startPos, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE transcript_key = ?", key,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	hitPos := -1
	if hitSeq >= 0 {
		err = d.db.QueryRow(`
			SELECT pos FROM (
				SELECT seq, ROW_NUMBER() OVER (ORDER BY seq) - 1 AS pos
				FROM messages WHERE transcript_key = ?
			) WHERE seq = ?`,
			key, hitSeq,
		).Scan(&hitPos)
		if err == sql.ErrNoRows {
			hitPos = -1
			err = nil
		} else if err != nil {
			return nil, -1, 0, 0, err
		}
	}

	startPos = 0
	limit := totalCount
	if hitPos >= 0 {
		startPos = hitPos - context
		if startPos < 0 {
			startPos = 0
		}
		endPos := hitPos + context + 1
		if endPos > totalCount {
			endPos = totalCount
		}
		limit = endPos - startPos
	}

	rows, err := d.db.Query(
		"SELECT transcript_key, seq, ts, role, kind, text, line FROM messages WHERE transcript_key = ? ORDER BY seq LIMIT ? OFFSET ?",
		key, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	hitIdx = -1
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.Key, &m.Seq, &m.Ts, &m.Role, &m.Kind, &m.Text, &m.Line); err != nil {
			return nil, -1, 0, 0, err
		}
		if m.Seq == hitSeq {
			hitIdx = len(msgs)
		}
		msgs = append(msgs, m)
	}
	return msgs, hitIdx, startPos, totalCount, rows.Err()
}
