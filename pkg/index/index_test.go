package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daimatz/jclass/pkg/dump"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "classes.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func summary(name string, major uint16) *dump.Summary {
	return &dump.Summary{
		Name:         name,
		Super:        "java/lang/Object",
		MajorVersion: major,
		Flags:        []string{"public", "super"},
		ConstantPool: 12,
		Methods: []dump.Member{{
			Name:       "<init>",
			Descriptor: "()V",
			Type:       "void ()",
			Flags:      []string{"public"},
			Attributes: []string{"Code"},
			Code:       &dump.CodeStats{MaxStack: 1, MaxLocals: 1, Length: 5, Instructions: 3},
		}},
	}
}

func TestPutFind(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)

	require.NoError(t, s.Put(ctx, 0xFEED, "b.jar", summary("a/Foo", 52)))
	require.NoError(t, s.Put(ctx, 0xFEED, "a.jar", summary("a/Foo", 52)))
	require.NoError(t, s.Put(ctx, 0xFEED, "a.jar", summary("a/Foo", 52)))
	require.NoError(t, s.Put(ctx, 0x01, "old.jar", summary("a/Foo", 50)))
	require.NoError(t, s.Put(ctx, 0x02, "a.jar", summary("a/Bar", 52)))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	recs, err := s.FindClass(ctx, "a/Foo")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, uint64(0x01), recs[0].Hash)
	assert.Equal(t, []string{"old.jar"}, recs[0].Origins)
	assert.Equal(t, uint16(50), recs[0].Summary.MajorVersion)
	assert.Equal(t, uint64(0xFEED), recs[1].Hash)
	assert.Equal(t, []string{"a.jar", "b.jar"}, recs[1].Origins)
	assert.Equal(t, summary("a/Foo", 52), recs[1].Summary)

	_, err = s.FindClass(ctx, "a/Missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLargeHash(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)
	const h = uint64(0xFFFFFFFFFFFFFFF0)
	require.NoError(t, s.Put(ctx, h, "x.jar", summary("X", 52)))

	recs, err := s.FindClass(ctx, "X")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, h, recs[0].Hash)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t)
	require.NoError(t, s.Put(ctx, 7, "a.jar", summary("p/Q", 52)))
	require.NoError(t, s.Close())

	s2, err := Open(ctx, path)
	require.NoError(t, err)
	defer s2.Close()
	n, err := s2.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCancelled(t *testing.T) {
	s, _ := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Put(ctx, 1, "a.jar", summary("A", 52)))
}
