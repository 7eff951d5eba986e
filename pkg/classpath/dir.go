package classpath

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Dir reads classes from a directory tree laid out by package.
type Dir struct {
	Root string
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

func (d *Dir) String() string { return d.Root }

func (d *Dir) Close() error { return nil }

func (d *Dir) ReadClass(name string) (*Entry, error) {
	path := filepath.Join(d.Root, filepath.FromSlash(name)+".class")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Name: name, Source: d.Root}
	}
	if err != nil {
		return nil, errors.Wrap(err, "dir")
	}
	return &Entry{Name: name, Origin: path, Data: data}, nil
}

// Walk visits class files in lexical order.
func (d *Dir) Walk(ctx context.Context, fn func(*Entry) error) error {
	return filepath.WalkDir(d.Root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if de.IsDir() || !strings.HasSuffix(path, ".class") {
			return nil
		}
		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(err, "dir")
		}
		return fn(&Entry{Name: ClassName(filepath.ToSlash(rel)), Origin: path, Data: data})
	})
}
