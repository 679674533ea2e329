// Package journal persists gate decisions to a local SQLite database.
//
// The journal is an audit trail, not a control surface: writes are best
// effort and a journal failure must never change a verdict. Readers are
// the `phasegate journal` commands.
package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database kept under <workDir>/.claude/.
const FileName = "phasegate-journal.db"

const dirPerm = 0o700

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("journal: closed")

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	at         TEXT NOT NULL,
	session_id TEXT NOT NULL DEFAULT '',
	tool       TEXT NOT NULL DEFAULT '',
	path       TEXT NOT NULL DEFAULT '',
	kind       TEXT NOT NULL DEFAULT '',
	verdict    TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	mode       TEXT NOT NULL DEFAULT '',
	phase      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id);
CREATE INDEX IF NOT EXISTS idx_decisions_at ON decisions(at);
`

// Entry is one recorded gate decision.
type Entry struct {
	ID        int64     `json:"id"`
	At        time.Time `json:"at"`
	SessionID string    `json:"session_id,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	Path      string    `json:"path,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	Verdict   string    `json:"verdict"`
	Reason    string    `json:"reason,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	Phase     string    `json:"phase,omitempty"`
}

// Recorder is the write side of the journal. The hook adapter takes this
// interface so journaling can be disabled without conditionals at every
// decision site.
type Recorder interface {
	Record(e Entry) error
}

// Discard is the inert Recorder.
type Discard struct{}

// Record drops the entry.
func (Discard) Record(Entry) error { return nil }

// FileRecorder appends to the on-disk journal, opening it per record.
// Hook processes are one-shot, so holding a handle open buys nothing.
type FileRecorder struct {
	WorkDir string
}

// Record opens the journal, appends one entry, and closes it.
func (f FileRecorder) Record(e Entry) error {
	j, err := Open(f.WorkDir)
	if err != nil {
		return err
	}
	defer j.Close()
	return j.Record(e)
}

// Journal is a SQLite-backed Recorder.
type Journal struct {
	db     *sql.DB
	closed bool
}

// Path returns the database location for a working directory.
func Path(workDir string) string {
	return filepath.Join(workDir, ".claude", FileName)
}

// Open creates or opens the journal database and ensures the schema.
func Open(workDir string) (*Journal, error) {
	path := Path(workDir)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("journal: create state dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}

// Record appends one decision.
func (j *Journal) Record(e Entry) error {
	if j.closed {
		return ErrClosed
	}
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err := j.db.Exec(
		`INSERT INTO decisions (at, session_id, tool, path, kind, verdict, reason, mode, phase)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339Nano),
		e.SessionID, e.Tool, e.Path, e.Kind, e.Verdict, e.Reason, e.Mode, e.Phase,
	)
	if err != nil {
		return fmt.Errorf("journal: record decision: %w", err)
	}
	return nil
}

// Recent returns up to n decisions, newest first.
func (j *Journal) Recent(n int) ([]Entry, error) {
	if j.closed {
		return nil, ErrClosed
	}
	if n <= 0 {
		n = 50
	}

	rows, err := j.db.Query(
		`SELECT id, at, session_id, tool, path, kind, verdict, reason, mode, phase
		 FROM decisions ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("journal: query decisions: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// BySession returns all decisions for one session, oldest first.
func (j *Journal) BySession(sessionID string) ([]Entry, error) {
	if j.closed {
		return nil, ErrClosed
	}

	rows, err := j.db.Query(
		`SELECT id, at, session_id, tool, path, kind, verdict, reason, mode, phase
		 FROM decisions WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("journal: query session %s: %w", sessionID, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count returns the number of recorded decisions.
func (j *Journal) Count() (int64, error) {
	if j.closed {
		return 0, ErrClosed
	}

	var n int64
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM decisions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal: count decisions: %w", err)
	}
	return n, nil
}

// Export writes every decision as a JSON array, oldest first.
func (j *Journal) Export(w io.Writer) error {
	if j.closed {
		return ErrClosed
	}

	rows, err := j.db.Query(
		`SELECT id, at, session_id, tool, path, kind, verdict, reason, mode, phase
		 FROM decisions ORDER BY id ASC`)
	if err != nil {
		return fmt.Errorf("journal: export: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &at, &e.SessionID, &e.Tool, &e.Path,
			&e.Kind, &e.Verdict, &e.Reason, &e.Mode, &e.Phase); err != nil {
			return nil, fmt.Errorf("journal: scan decision: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, at); err == nil {
			e.At = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate decisions: %w", err)
	}
	return entries, nil
}
