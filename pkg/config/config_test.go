package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[classpath]
entries = ["build/classes", "/opt/lib/rt.jar"]

[scan]
workers = 8
skip-errors = true

[output]
format = "yaml"

[index]
database = "out/classes.db"

[log]
verbosity = 2
file = "jclass.log"
`)

	c, err := Load(path)
	require.NoError(t, err)
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)

	assert.Equal(t, abs, c.Dir)
	assert.Equal(t, 8, c.Scan.Workers)
	assert.True(t, c.Scan.SkipErrors)
	assert.Equal(t, "yaml", c.Output.Format)
	assert.Equal(t, 2, c.Log.Verbosity)
	assert.Equal(t, []string{filepath.Join(abs, "build/classes"), "/opt/lib/rt.jar"}, c.ClasspathEntries())
	assert.Equal(t, filepath.Join(abs, "out/classes.db"), c.DatabasePath())
	require.NotNil(t, c.LogFile())
	assert.Equal(t, filepath.Join(abs, "jclass.log"), *c.LogFile())
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, t.TempDir(), "[scan]\nworkers = 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Scan.Workers)
	assert.Equal(t, "text", c.Output.Format)
	assert.Equal(t, "jclass.db", c.Index.Database)
	assert.Nil(t, c.LogFile())
	assert.Empty(t, c.ClasspathEntries())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[scan\nworkers = 1"},
		{"wrong type", "[scan]\nworkers = \"many\""},
		{"unknown key", "[scan]\nthreads = 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), FileName))
	assert.Error(t, err)
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[output]\nformat = \"json\"\n")
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	c, err := FindAndLoad(nested)
	require.NoError(t, err)
	assert.Equal(t, "json", c.Output.Format)
	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, abs, c.Dir)
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Empty(t, c.Dir)
	assert.Equal(t, "jclass.db", c.DatabasePath())
	assert.Zero(t, c.Scan.Workers)
}
