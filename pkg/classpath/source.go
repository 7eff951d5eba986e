// Package classpath locates class files in directories and archives and
// parses them, one file per task.
package classpath

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
	"github.com/zeebo/xxh3"

	"github.com/daimatz/jclass/pkg/classfile"
)

var log = commonlog.GetLogger("jclass.classpath")

// Entry is the raw content of one class file. Name is the internal class
// name ("java/lang/Object") and Origin says where it was read from.
type Entry struct {
	Name   string
	Origin string
	Data   []byte
}

// Source is a directory or archive of class files.
type Source interface {
	// ReadClass returns the class with the given internal name, or a
	// *NotFoundError.
	ReadClass(name string) (*Entry, error)
	// Walk calls fn for every class file in the source, stopping at the
	// first error fn returns.
	Walk(ctx context.Context, fn func(*Entry) error) error
	Close() error
	String() string
}

// NotFoundError reports a class that no source contains.
type NotFoundError struct {
	Name   string
	Source string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("class %s not found in %s", e.Name, e.Source)
}

// Class is a parsed class file together with where it came from.
type Class struct {
	Entry
	Hash uint64
	File *classfile.ClassFile
}

// Parse hashes and parses e.
func Parse(e *Entry) (*Class, error) {
	c := &Class{Entry: *e, Hash: xxh3.Hash(e.Data)}
	cf, err := classfile.ParseBytes(e.Data)
	if err != nil {
		return c, errors.Wrapf(err, "parsing %s from %s", e.Name, e.Origin)
	}
	c.File = cf
	return c, nil
}

// Open opens path as a Dir if it is a directory and as an Archive
// otherwise.
func Open(path string) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "classpath")
	}
	if fi.IsDir() {
		return NewDir(path), nil
	}
	return OpenArchive(path)
}

// ClassName converts a binary name ("java.lang.Object") or a class file
// path ("java/lang/Object.class") to an internal name.
func ClassName(s string) string {
	s = strings.TrimSuffix(s, ".class")
	return strings.ReplaceAll(s, ".", "/")
}
