package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dir is a local-directory store used for offline runs and tests. Objects
// land under {root}/{bucket}/{key}; an existing object with the same key is
// overwritten.
type Dir struct {
	root string
}

// NewDir constructs a Dir store rooted at the given directory.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		return nil, errors.New("upload: directory root is required")
	}
	return &Dir{root: root}, nil
}

// Upload writes the object body to disk.
func (d *Dir) Upload(ctx context.Context, bucket, key string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bucket == "" {
		return errors.New("upload: bucket is required")
	}
	if key == "" {
		return errors.New("upload: object key is required")
	}

	dir := filepath.Join(d.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("upload: create bucket dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, key))
	if err != nil {
		return fmt.Errorf("upload: create object: %w", err)
	}
	if _, err := io.Copy(dst, body); err != nil {
		dst.Close()
		return fmt.Errorf("upload: write object: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("upload: close object: %w", err)
	}
	return nil
}
