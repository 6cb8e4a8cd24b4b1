package nativestage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManifestRecordAndForget(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	m, err := OpenManifest(root)
	if err != nil {
		t.Fatalf("OpenManifest: %v", err)
	}
	defer m.Close()

	path := filepath.Join(root, "staged", "libfoo.so")
	if err := m.Record(path, "foo", "owner-1", time.Unix(1000, 0)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// Re-recording the same path must upsert, not fail with a constraint
	// violation.
	if err := m.Record(path, "foo", "owner-2", time.Unix(2000, 0)); err != nil {
		t.Fatalf("re-Record: %v", err)
	}
	if err := m.Forget(path); err != nil {
		t.Fatalf("Forget: %v", err)
	}
}

func TestOpenManifestCreatesRoot(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "nested", "staging")

	m, err := OpenManifest(root)
	if err != nil {
		t.Fatalf("OpenManifest: %v", err)
	}
	defer m.Close()

	if _, err := os.Stat(filepath.Join(root, "manifest.sqlite")); err != nil {
		t.Errorf("expected manifest.sqlite under %s: %v", root, err)
	}
}

func TestPruneOrphansRemovesStaleRowsOnly(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	m, err := OpenManifest(root)
	if err != nil {
		t.Fatalf("OpenManifest: %v", err)
	}

	survivorDir := filepath.Join(root, "survivor")
	if err := os.MkdirAll(survivorDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	survivor := filepath.Join(survivorDir, "libbar.so")
	if err := os.WriteFile(survivor, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stale := filepath.Join(root, "gone", "libbaz.so")

	if err := m.Record(survivor, "bar", "owner", time.Unix(1, 0)); err != nil {
		t.Fatalf("Record survivor: %v", err)
	}
	if err := m.Record(stale, "baz", "owner", time.Unix(1, 0)); err != nil {
		t.Fatalf("Record stale: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pruned, err := PruneOrphans(root)
	if err != nil {
		t.Fatalf("PruneOrphans: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	m2, err := OpenManifest(root)
	if err != nil {
		t.Fatalf("re-OpenManifest: %v", err)
	}
	defer m2.Close()

	var count int
	row := m2.db.QueryRow(`SELECT COUNT(*) FROM staged_files`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("remaining rows = %d, want 1", count)
	}
}

func TestRegistryWithManifestRecordsAndForgets(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	m, err := OpenManifest(root)
	if err != nil {
		t.Fatalf("OpenManifest: %v", err)
	}
	defer m.Close()

	r := NewRegistry(nil)
	r.SetManifest(m)

	staged := filepath.Join(root, "libfoo.so")
	if err := os.WriteFile(staged, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r.Register(staged, "foo", "owner")

	var count int
	if err := m.db.QueryRow(`SELECT COUNT(*) FROM staged_files WHERE path = ?`, staged).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a manifest row after Register, count = %d", count)
	}

	if err := r.Delete(staged); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := m.db.QueryRow(`SELECT COUNT(*) FROM staged_files WHERE path = ?`, staged).Scan(&count); err != nil {
		t.Fatalf("query after delete: %v", err)
	}
	if count != 0 {
		t.Errorf("expected the manifest row forgotten after Delete, count = %d", count)
	}
}
