package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "resume.docx")

	if err := WriteFile(path, []byte("one")); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if err := WriteFile(path, []byte("two")); err != nil {
		t.Fatalf("WriteFile() overwrite error: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if got != "two" {
		t.Errorf("content = %q, want %q", got, "two")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("leftover temp files: %v", entries)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	if FileExists(dir) {
		t.Error("directory reported as file")
	}
	if FileExists(filepath.Join(dir, "missing")) {
		t.Error("missing file reported as existing")
	}
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(p) {
		t.Error("existing file not found")
	}
}

func TestFreePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "gen_image.png")

	if got := FreePath(p); got != p {
		t.Errorf("FreePath() = %q, want %q", got, p)
	}

	for _, name := range []string{"gen_image.png", "gen_image-1.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	want := filepath.Join(dir, "gen_image-2.png")
	if got := FreePath(p); got != want {
		t.Errorf("FreePath() = %q, want %q", got, want)
	}
}
