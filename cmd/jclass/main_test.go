package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daimatz/jclass/internal/classtest"
	"github.com/daimatz/jclass/pkg/classpath"
	"github.com/daimatz/jclass/pkg/config"
	"github.com/daimatz/jclass/pkg/cursor"
)

func writeClasses(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "p"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p", "Good.class"),
		classtest.New("p/Good", "java/lang/Object").Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p", "Bad.class"),
		[]byte{0xCA, 0xFE, 0xBA, 0xBE, 0, 0}, 0o644))
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeClasses(t)
	a := &app{cfg: config.Default(), cp: []string{dir}}

	byPath, err := a.load(filepath.Join(dir, "p", "Good.class"))
	require.NoError(t, err)
	name, err := byPath.ClassName()
	require.NoError(t, err)
	assert.Equal(t, "p/Good", name)

	byName, err := a.load("p.Good")
	require.NoError(t, err)
	assert.Equal(t, byPath.ThisClass, byName.ThisClass)

	_, err = a.load("p/Bad")
	var eof *cursor.EOFError
	assert.ErrorAs(t, err, &eof)

	_, err = a.load("p/Missing")
	var nf *classpath.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestScanEach(t *testing.T) {
	dir := writeClasses(t)
	cfg := config.Default()
	cfg.Scan.Workers = 2
	a := &app{cfg: cfg}

	_, err := a.scanEach(context.Background(), dir, nil)
	assert.Error(t, err)

	cfg.Scan.SkipErrors = true
	var parsed []string
	r, err := a.scanEach(context.Background(), dir, func(c *classpath.Class) error {
		parsed = append(parsed, c.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p/Good"}, parsed)
	assert.Equal(t, int64(2), r.classes)
	assert.Equal(t, int64(1), r.failed)
	assert.Contains(t, r.String(), "2 classes")
}

func TestIndexFind(t *testing.T) {
	dir := writeClasses(t)
	cfg := config.Default()
	cfg.Scan.SkipErrors = true
	cfg.Index.Database = filepath.Join(t.TempDir(), "classes.db")
	a := &app{cfg: cfg}

	ctx := context.Background()
	require.NoError(t, a.index(ctx, []string{dir}))
	require.NoError(t, a.index(ctx, []string{dir}))
	require.NoError(t, a.find(ctx, []string{"p.Good"}))
	assert.Error(t, a.find(ctx, []string{"p.Bad"}))
	assert.Error(t, a.find(ctx, nil))
}
