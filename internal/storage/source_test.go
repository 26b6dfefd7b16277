package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalSourceOpen(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "books"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := []byte("%PDF-1.4 fake body")
	if err := os.WriteFile(filepath.Join(base, "books", "go-basics.pdf"), content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src, err := NewLocalSource(base)
	if err != nil {
		t.Fatalf("NewLocalSource: %v", err)
	}

	rc, size, err := src.Open(context.Background(), "books/go-basics.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	if size != int64(len(content)) {
		t.Fatalf("size = %d, want %d", size, len(content))
	}
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("content = %q", got)
	}
}

func TestLocalSourceMissingFile(t *testing.T) {
	src, err := NewLocalSource(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalSource: %v", err)
	}
	if _, _, err := src.Open(context.Background(), "no/such/file.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing file: got %v, want ErrNotFound", err)
	}
	if _, _, err := src.Open(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty ref: got %v, want ErrNotFound", err)
	}
}

func TestLocalSourceRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(filepath.Dir(base), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { os.Remove(outside) })

	src, err := NewLocalSource(base)
	if err != nil {
		t.Fatalf("NewLocalSource: %v", err)
	}
	if _, _, err := src.Open(context.Background(), "../secret.txt"); err == nil {
		t.Fatal("traversal reference was accepted")
	}
	if _, _, err := src.Open(context.Background(), "books/../../secret.txt"); err == nil {
		t.Fatal("nested traversal reference was accepted")
	}
}

func TestSafeRef(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"books/a.pdf", "books/a.pdf", true},
		{"/books/a.pdf", "books/a.pdf", true},
		{"books//a.pdf", "books/a.pdf", true},
		{"books/./a.pdf", "books/a.pdf", true},
		{"..", "", false},
		{"../a.pdf", "", false},
		{"a/../../b.pdf", "", false},
	}
	for _, c := range cases {
		got, err := safeRef(c.in)
		if c.ok != (err == nil) {
			t.Fatalf("safeRef(%q): err=%v, want ok=%v", c.in, err, c.ok)
		}
		if c.ok && got != c.want {
			t.Fatalf("safeRef(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
