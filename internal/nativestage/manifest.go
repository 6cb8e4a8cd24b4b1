package nativestage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

// manifestBusyTimeoutMs is the SQLite busy_timeout pragma value. A Manifest
// is opened briefly (on stage/unstage and at startup for PruneOrphans), so
// a generous timeout matters more than query latency.
const manifestBusyTimeoutMs = 5000

// manifestLockWait bounds how long OpenManifest waits for the cross-process
// flock before giving up.
const manifestLockWait = 10 * time.Second

// Manifest is a durable, cross-process ledger of staged native-library
// files. The in-memory Registry alone cannot survive a crash that skips the
// shutdown hook (a killed process, a panic before Shutdown is called),
// which would otherwise leak staged files across process restarts. Manifest
// gives a host build tool a way to recover: open it at startup and call
// PruneOrphans before the first Checkout.
type Manifest struct {
	db         *sql.DB
	insertStmt *sql.Stmt
	deleteStmt *sql.Stmt
	lock       *flock.Flock
}

// OpenManifest opens (creating if necessary) the manifest database under
// root, guarded by a flock lock file so concurrent processes sharing the
// same staging root serialize their manifest access.
func OpenManifest(root string) (*Manifest, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create manifest root %s: %w", root, err)
	}

	fl := flock.New(filepath.Join(root, ".manifest.lock"))
	ctx, cancel := context.WithTimeout(context.Background(), manifestLockWait)
	defer cancel()
	locked, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire manifest lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire manifest lock: timed out after %s", manifestLockWait)
	}
	// The lock file itself is deliberately left on disk: flock's semantics
	// don't require removing it, and removing it would race a concurrent
	// opener between unlink and the next TryLockContext.

	dbPath := filepath.Join(root, "manifest.sqlite")
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(OFF)",
		dbPath, manifestBusyTimeoutMs,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("open manifest db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS staged_files (
		path TEXT PRIMARY KEY,
		logical_name TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		staged_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		_ = fl.Unlock()
		return nil, fmt.Errorf("create manifest schema: %w", err)
	}

	insertStmt, err := db.Prepare(`INSERT INTO staged_files(path, logical_name, owner_id, staged_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET logical_name = excluded.logical_name,
			owner_id = excluded.owner_id, staged_at = excluded.staged_at`)
	if err != nil {
		_ = db.Close()
		_ = fl.Unlock()
		return nil, fmt.Errorf("prepare manifest insert: %w", err)
	}

	deleteStmt, err := db.Prepare(`DELETE FROM staged_files WHERE path = ?`)
	if err != nil {
		_ = insertStmt.Close()
		_ = db.Close()
		_ = fl.Unlock()
		return nil, fmt.Errorf("prepare manifest delete: %w", err)
	}

	return &Manifest{db: db, insertStmt: insertStmt, deleteStmt: deleteStmt, lock: fl}, nil
}

// Record upserts a row for a freshly staged file.
func (m *Manifest) Record(path, logicalName, ownerID string, stagedAt time.Time) error {
	_, err := m.insertStmt.Exec(path, logicalName, ownerID, stagedAt.Unix())
	if err != nil {
		return fmt.Errorf("record staged file %s: %w", path, err)
	}
	return nil
}

// Forget removes path's row, typically called alongside Registry.Delete.
func (m *Manifest) Forget(path string) error {
	if _, err := m.deleteStmt.Exec(path); err != nil {
		return fmt.Errorf("forget staged file %s: %w", path, err)
	}
	return nil
}

// Close releases the prepared statements, the database connection, and the
// cross-process lock.
func (m *Manifest) Close() error {
	err := errors.Join(m.insertStmt.Close(), m.deleteStmt.Close(), m.db.Close())
	if unlockErr := m.lock.Unlock(); unlockErr != nil {
		err = errors.Join(err, unlockErr)
	}
	return err
}

// PruneOrphans opens the manifest at root, removes every row whose staged
// file no longer exists, and deletes any staging directory that file's
// removal leaves empty. It returns the number of rows pruned. A host build
// tool calls this once at startup, before the first Checkout, to recover
// manifest state left behind by a process that exited without running the
// shutdown hook (killed process, panic, power loss).
func PruneOrphans(root string) (int, error) {
	m, err := OpenManifest(root)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	rows, err := m.db.Query(`SELECT path FROM staged_files`)
	if err != nil {
		return 0, fmt.Errorf("query manifest rows: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan manifest row: %w", err)
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate manifest rows: %w", err)
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("close manifest rows: %w", err)
	}

	pruned := 0
	for _, path := range stale {
		if err := m.Forget(path); err != nil {
			return pruned, err
		}
		pruned++
		dir := filepath.Dir(path)
		if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
			_ = os.Remove(dir)
		}
	}
	return pruned, nil
}
