package nativestage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func stageFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRegistryDeleteRemovesFileAndEmptyParent(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := stageFile(t, sub, "lib.so", "x")

	r := NewRegistry(nil)
	r.Register(path, "lib", "owner")

	if err := r.Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s removed", path)
	}
	if _, err := os.Stat(sub); !os.IsNotExist(err) {
		t.Errorf("expected now-empty %s removed", sub)
	}
}

func TestRegistryDeleteKeepsNonEmptyParent(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := stageFile(t, root, "lib.so", "x")
	stageFile(t, root, "other.txt", "y")

	r := NewRegistry(nil)
	r.Register(path, "lib", "owner")
	if err := r.Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("expected %s to remain (not empty), stat err = %v", root, err)
	}
}

func TestRegistryDrainRemovesAllStagedFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	r := NewRegistry(nil)

	var paths []string
	for i := range 10 {
		p := stageFile(t, root, filepathBase(i), "x")
		r.Register(p, "lib", "owner")
		paths = append(paths, p)
	}

	if err := r.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s removed by Drain", p)
		}
	}
}

func filepathBase(i int) string {
	return "lib" + string(rune('a'+i)) + ".so"
}

func TestRegistryDeleteIsIdempotentAboutMissingFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := filepath.Join(root, "already-gone.so")

	r := NewRegistry(nil)
	r.Register(path, "lib", "owner")
	if err := r.Delete(path); err != nil {
		t.Fatalf("Delete on a never-created file should not error: %v", err)
	}
}
