package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local writes files into Dir, which the server exposes under PublicPath.
type Local struct {
	Dir        string
	PublicPath string
}

func (l Local) Save(ctx context.Context, name, contentType string, r io.Reader) error {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(l.Dir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

func (l Local) URL(base, name string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.Trim(l.PublicPath, "/") + "/" + name
}

func (l Local) Remove(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(l.Dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
