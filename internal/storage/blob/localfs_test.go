// internal/storage/blob/localfs_test.go
package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFS_ImplementsBucket(t *testing.T) {
	var _ Bucket = (*LocalFS)(nil)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNewLocalFS_MissingDir(t *testing.T) {
	if _, err := NewLocalFS(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLocalFS_Read(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "investors/berkshire.yaml", "slug: berkshire")

	fs, err := NewLocalFS(dir)
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	got, err := fs.Read(context.Background(), "investors/berkshire.yaml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "slug: berkshire" {
		t.Errorf("got %q", got)
	}
}

func TestLocalFS_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "investors/b.json", "{}")
	writeFile(t, dir, "investors/a.yaml", "")
	writeFile(t, dir, "investors/nested/c.yml", "")
	writeFile(t, dir, "sectors.yaml", "")

	fs, _ := NewLocalFS(dir)

	paths, err := fs.List(context.Background(), "investors")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{"investors/a.yaml", "investors/b.json", "investors/nested/c.yml"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %v", len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestLocalFS_ListMissingPrefix(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())

	paths, err := fs.List(context.Background(), "missing")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no paths, got %v", paths)
	}
}

func TestOpen(t *testing.T) {
	b, err := Open(Config{Type: "localfs", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open localfs: %v", err)
	}
	if _, ok := b.(*LocalFS); !ok {
		t.Errorf("expected *LocalFS, got %T", b)
	}

	if _, err := Open(Config{Type: "ftp"}); err == nil {
		t.Error("expected error for unknown type")
	}
}
