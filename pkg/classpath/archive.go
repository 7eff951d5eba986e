package classpath

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

// jmodMagic prefixes the zip data of a JDK jmod file.
var jmodMagic = []byte("JM\x01\x00")

// maxEntrySize caps the uncompressed size of an entry read into memory.
var maxEntrySize uint64 = 256 << 20

// Archive reads classes from a jar, zip or jmod file. It owns the open
// file until Close.
type Archive struct {
	path   string
	prefix string
	f      *os.File
	zr     *zip.Reader
	files  map[string]*zip.File
}

// OpenArchive opens a jar, zip or jmod file. Class entries of a jmod live
// under "classes/".
func OpenArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "archive")
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "archive: stat %s", path)
	}

	a := &Archive{path: path, f: f}
	var r io.ReaderAt = f
	size := stat.Size()
	head := make([]byte, len(jmodMagic))
	if _, err := f.ReadAt(head, 0); err == nil && bytes.Equal(head, jmodMagic) {
		r = io.NewSectionReader(f, int64(len(jmodMagic)), size-int64(len(jmodMagic)))
		size -= int64(len(jmodMagic))
		a.prefix = "classes/"
	}

	a.zr, err = zip.NewReader(r, size)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "archive: opening zip %s", path)
	}
	a.files = make(map[string]*zip.File, len(a.zr.File))
	for _, file := range a.zr.File {
		a.files[file.Name] = file
	}
	log.Debugf("opened %s (%d entries)", path, len(a.zr.File))
	return a, nil
}

func (a *Archive) String() string { return a.path }

// Close releases the underlying file.
func (a *Archive) Close() error {
	return a.f.Close()
}

func (a *Archive) read(file *zip.File) ([]byte, error) {
	size := file.UncompressedSize64
	if size > maxEntrySize {
		return nil, errors.Errorf("archive: %s is %d bytes, over the %d byte limit", file.Name, size, maxEntrySize)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "archive: opening %s", file.Name)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, int64(size)+1))
	if err != nil {
		return nil, errors.Wrapf(err, "archive: reading %s", file.Name)
	}
	if uint64(len(data)) > size {
		return nil, errors.Errorf("archive: %s is larger than its declared %d bytes", file.Name, size)
	}
	return data, nil
}

func (a *Archive) ReadClass(name string) (*Entry, error) {
	file, ok := a.files[a.prefix+name+".class"]
	if !ok {
		return nil, &NotFoundError{Name: name, Source: a.path}
	}
	data, err := a.read(file)
	if err != nil {
		return nil, err
	}
	return &Entry{Name: name, Origin: a.path, Data: data}, nil
}

// Walk visits class entries in archive order.
func (a *Archive) Walk(ctx context.Context, fn func(*Entry) error) error {
	for _, file := range a.zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if file.FileInfo().IsDir() || !strings.HasSuffix(file.Name, ".class") ||
			!strings.HasPrefix(file.Name, a.prefix) {
			continue
		}
		data, err := a.read(file)
		if err != nil {
			return err
		}
		name := ClassName(strings.TrimPrefix(file.Name, a.prefix))
		if err := fn(&Entry{Name: name, Origin: a.path, Data: data}); err != nil {
			return err
		}
	}
	return nil
}
