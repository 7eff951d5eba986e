package classpath

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"

	"github.com/daimatz/jclass/internal/classtest"
	"github.com/daimatz/jclass/pkg/classfile"
)

func classBytes(name string) []byte {
	return classtest.New(name, "java/lang/Object").Bytes()
}

func writeZip(t *testing.T, path string, header []byte, files map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(header)
	zw := zip.NewWriter(&buf)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeJar(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "app.jar")
	writeZip(t, path, nil, map[string][]byte{
		"META-INF/MANIFEST.MF":        []byte("Manifest-Version: 1.0\n"),
		"com/example/App.class":       classBytes("com/example/App"),
		"com/example/App$Inner.class": classBytes("com/example/App$Inner"),
		"com/example/Broken.class":    {0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 53},
	})
	return path
}

func writeDir(t *testing.T, classes ...string) string {
	root := t.TempDir()
	for _, name := range classes {
		path := filepath.Join(root, filepath.FromSlash(name)+".class")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, classBytes(name), 0o644))
	}
	return root
}

func TestArchive(t *testing.T) {
	a, err := OpenArchive(writeJar(t))
	require.NoError(t, err)
	defer a.Close()

	e, err := a.ReadClass("com/example/App")
	require.NoError(t, err)
	assert.Equal(t, "com/example/App", e.Name)
	assert.Equal(t, a.String(), e.Origin)

	c, err := Parse(e)
	require.NoError(t, err)
	name, err := c.File.ClassName()
	require.NoError(t, err)
	assert.Equal(t, "com/example/App", name)
	assert.Equal(t, xxh3.Hash(e.Data), c.Hash)

	_, err = a.ReadClass("com/example/Missing")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "com/example/Missing", nf.Name)

	var walked []string
	require.NoError(t, a.Walk(context.Background(), func(e *Entry) error {
		walked = append(walked, e.Name)
		return nil
	}))
	assert.Equal(t, []string{"com/example/App$Inner", "com/example/App", "com/example/Broken"}, walked)
}

func TestJmod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "java.base.jmod")
	writeZip(t, path, jmodMagic, map[string][]byte{
		"classes/java/lang/Object.class": classtest.New("java/lang/Object", "").Bytes(),
		"classes/module-info.class":      classBytes("module-info"),
		"conf/security/java.policy":      []byte("grant {};"),
	})

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	e, err := src.ReadClass("java/lang/Object")
	require.NoError(t, err)
	c, err := Parse(e)
	require.NoError(t, err)
	assert.Nil(t, c.File.SuperClass)

	var walked []string
	require.NoError(t, src.Walk(context.Background(), func(e *Entry) error {
		walked = append(walked, e.Name)
		return nil
	}))
	assert.Equal(t, []string{"java/lang/Object", "module-info"}, walked)
}

func TestArchiveEntrySizeLimit(t *testing.T) {
	a, err := OpenArchive(writeJar(t))
	require.NoError(t, err)
	defer a.Close()

	defer func(old uint64) { maxEntrySize = old }(maxEntrySize)
	maxEntrySize = 16
	_, err = a.ReadClass("com/example/App")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")

	// Broken.class is only 8 bytes, so it is still readable.
	_, err = a.ReadClass("com/example/Broken")
	assert.NoError(t, err)
}

func TestArchiveUnderstatedSize(t *testing.T) {
	data := classBytes("Big")
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "Big.class",
		Method:             zip.Store,
		CompressedSize64:   uint64(len(data)),
		UncompressedSize64: 4,
	})
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "lie.jar")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	a, err := OpenArchive(path)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.ReadClass("Big")
	assert.Error(t, err)
}

func TestDir(t *testing.T) {
	root := writeDir(t, "Hello", "pkg/sub/World")
	src, err := Open(root)
	require.NoError(t, err)
	require.IsType(t, &Dir{}, src)

	e, err := src.ReadClass("pkg/sub/World")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "pkg", "sub", "World.class"), e.Origin)

	_, err = src.ReadClass("Nope")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))

	var walked []string
	require.NoError(t, src.Walk(context.Background(), func(e *Entry) error {
		walked = append(walked, e.Name)
		return nil
	}))
	assert.Equal(t, []string{"Hello", "pkg/sub/World"}, walked)
}

func TestPath(t *testing.T) {
	first := writeDir(t, "Shared")
	second := writeJar(t)
	p, err := OpenPath([]string{first, second})
	require.NoError(t, err)
	defer p.Close()
	require.Len(t, p.Sources(), 2)

	c, err := p.LoadClass("Shared")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "Shared.class"), c.Origin)

	app, err := p.LoadClass("com/example/App")
	require.NoError(t, err)
	again, err := p.LoadClass("com/example/App")
	require.NoError(t, err)
	assert.Same(t, app, again)

	_, err = p.LoadClass("com/example/Broken")
	var ve *classfile.VersionError
	require.True(t, errors.As(err, &ve), "%v", err)

	_, err = p.LoadClass("does/not/Exist")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))

	_, err = OpenPath([]string{first, filepath.Join(first, "missing.jar")})
	assert.Error(t, err)
}

func TestPathConcurrent(t *testing.T) {
	p := NewPath(NewDir(writeDir(t, "A", "B")))
	var wg sync.WaitGroup
	got := make([]*Class, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := p.LoadClass([]string{"A", "B"}[i%2])
			assert.NoError(t, err)
			got[i] = c
		}()
	}
	wg.Wait()
	for i := 2; i < len(got); i++ {
		assert.Same(t, got[i%2], got[i])
	}
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "java/lang/String", ClassName("java.lang.String"))
	assert.Equal(t, "java/lang/String", ClassName("java/lang/String.class"))
	assert.Equal(t, "a/B$C", ClassName("a/B$C"))
}

func TestScan(t *testing.T) {
	a, err := OpenArchive(writeJar(t))
	require.NoError(t, err)
	defer a.Close()

	var ok, failed []string
	err = Scan(context.Background(), a, 2, func(c *Class, err error) error {
		if err != nil {
			var ve *classfile.VersionError
			assert.True(t, errors.As(err, &ve))
			assert.Nil(t, c.File)
			failed = append(failed, c.Name)
			return nil
		}
		ok = append(ok, c.Name)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(ok)
	assert.Equal(t, []string{"com/example/App", "com/example/App$Inner"}, ok)
	assert.Equal(t, []string{"com/example/Broken"}, failed)
}

func TestScanStops(t *testing.T) {
	names := make([]string, 50)
	for i := range names {
		names[i] = "p/C" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	src := NewDir(writeDir(t, names...))

	stop := errors.New("stop")
	calls := 0
	err := Scan(context.Background(), src, 4, func(c *Class, err error) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Less(t, calls, len(names))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Scan(ctx, src, 0, func(*Class, error) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
