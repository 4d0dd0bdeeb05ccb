package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir_UploadWritesAndOverwrites(t *testing.T) {
	root := t.TempDir()
	store, err := NewDir(root)
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}

	ctx := context.Background()
	if err := store.Upload(ctx, "project-one", "gopher.png", strings.NewReader("v1")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := store.Upload(ctx, "project-one", "gopher.png", strings.NewReader("v2")); err != nil {
		t.Fatalf("second upload: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "project-one", "gopher.png"))
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if string(data) != "v2" {
		t.Fatalf("object not overwritten: %q", data)
	}
}

func TestDir_UploadHonorsCancelledContext(t *testing.T) {
	store, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Upload(ctx, "project-one", "gopher.png", strings.NewReader("x")); err == nil {
		t.Fatalf("want error for cancelled context")
	}
}
