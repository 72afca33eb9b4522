package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystem(t *testing.T) {
	var fsys FileSystem = OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "a", "b")

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path := filepath.Join(dir, "x.geojson")
	if err := fsys.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadFile = %q, want hello", data)
	}
}

func TestMemoryFileSystem(t *testing.T) {
	m := NewMemoryFileSystem()

	if err := m.WriteFile("out/x.geojson", []byte("x"), 0644); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("write without parent dir: got %v, want ErrNotExist", err)
	}

	if err := m.MkdirAll("out/nested", 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for _, name := range []string{"out/b.geojson", "out/nested/a.geojson"} {
		if err := m.WriteFile(name, []byte(name), 0644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}

	data, err := m.ReadFile("out/./b.geojson")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "out/b.geojson" {
		t.Errorf("ReadFile = %q", data)
	}

	// Returned data is a copy.
	data[0] = 'X'
	again, _ := m.ReadFile("out/b.geojson")
	if again[0] != 'o' {
		t.Error("ReadFile must return a copy")
	}

	files := m.Files()
	if len(files) != 2 || files[0] != "out/b.geojson" || files[1] != "out/nested/a.geojson" {
		t.Errorf("Files() = %v", files)
	}

	if _, err := m.ReadFile("missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: got %v, want ErrNotExist", err)
	}
}
