// Package config handles jclass.toml configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "jclass.toml"

// Config represents a jclass.toml file.
type Config struct {
	Classpath Classpath `toml:"classpath"`
	Scan      Scan      `toml:"scan"`
	Output    Output    `toml:"output"`
	Index     Index     `toml:"index"`
	Log       Log       `toml:"log"`

	// Dir is the directory containing the file, empty for defaults.
	Dir string `toml:"-"`
}

// Classpath lists directories and archives searched for classes, in order.
type Classpath struct {
	Entries []string `toml:"entries"`
}

// Scan configures parallel parsing.
type Scan struct {
	// Workers < 1 means one per CPU.
	Workers    int  `toml:"workers"`
	SkipErrors bool `toml:"skip-errors"`
}

// Output configures dump output.
type Output struct {
	Format string `toml:"format"`
}

// Index configures the class index database.
type Index struct {
	Database string `toml:"database"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Output: Output{Format: "text"},
		Index:  Index{Database: "jclass.db"},
	}
}

// Load parses the file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, errors.Wrapf(err, "parse error in %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown key %s in %s", undecoded[0], path)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve path %s", path)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a jclass.toml file and loads
// it. Defaults are returned if there is none.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// ClasspathEntries returns the classpath entries with relative paths
// resolved against the directory of the file.
func (c *Config) ClasspathEntries() []string {
	var paths []string
	for _, e := range c.Classpath.Entries {
		if c.Dir != "" && !filepath.IsAbs(e) {
			e = filepath.Join(c.Dir, e)
		}
		paths = append(paths, e)
	}
	return paths
}

// DatabasePath returns the index database path, resolved like
// ClasspathEntries.
func (c *Config) DatabasePath() string {
	if c.Dir != "" && !filepath.IsAbs(c.Index.Database) {
		return filepath.Join(c.Dir, c.Index.Database)
	}
	return c.Index.Database
}

// LogFile returns the log file path, or nil to log to stderr.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}
	f := c.Log.File
	if c.Dir != "" && !filepath.IsAbs(f) {
		f = filepath.Join(c.Dir, f)
	}
	return &f
}
