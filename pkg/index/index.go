// Package index keeps a SQLite database of class summaries keyed by the
// xxh3 hash of the class file bytes, so the same class found in several
// archives is stored once.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/daimatz/jclass/pkg/dump"
)

var log = commonlog.GetLogger("jclass.index")

// ErrNotFound indicates that no indexed class has the requested name.
var ErrNotFound = errors.New("class not found in index")

const schema = `
CREATE TABLE IF NOT EXISTS classes (
	hash    TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	super   TEXT NOT NULL,
	major   INTEGER NOT NULL,
	minor   INTEGER NOT NULL,
	summary BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS classes_name ON classes (name);
CREATE TABLE IF NOT EXISTS origins (
	hash   TEXT NOT NULL REFERENCES classes (hash),
	origin TEXT NOT NULL,
	PRIMARY KEY (hash, origin)
);
`

// Record is an indexed class and every place it was seen.
type Record struct {
	Hash    uint64
	Origins []string
	Summary *dump.Summary
}

// Store is an open index database.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the index database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "setting busy timeout")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating tables")
	}

	log.Debugf("opened index %s", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) String() string { return s.path }

func hashKey(h uint64) string { return fmt.Sprintf("%016x", h) }

// Put records that the class with content hash h was found at origin.
// Putting the same hash and origin again changes nothing.
func (s *Store) Put(ctx context.Context, h uint64, origin string, sum *dump.Summary) error {
	blob, err := dump.MarshalCBOR(sum)
	if err != nil {
		return errors.Wrap(err, "encoding summary")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	key := hashKey(h)
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO classes (hash, name, super, major, minor, summary) VALUES (?, ?, ?, ?, ?, ?)",
		key, sum.Name, sum.Super, sum.MajorVersion, sum.MinorVersion, blob,
	); err != nil {
		return errors.Wrapf(err, "saving class %s", sum.Name)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO origins (hash, origin) VALUES (?, ?)", key, origin,
	); err != nil {
		return errors.Wrapf(err, "saving origin of %s", sum.Name)
	}
	return errors.Wrap(tx.Commit(), "committing")
}

// FindClass returns every indexed version of the class called name,
// ordered by hash. It returns ErrNotFound if there is none.
func (s *Store) FindClass(ctx context.Context, name string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT hash, summary FROM classes WHERE name = ? ORDER BY hash", name)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var key string
		var blob []byte
		if err := rows.Scan(&key, &blob); err != nil {
			return nil, errors.Wrap(err, "reading class")
		}
		h, err := strconv.ParseUint(key, 16, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad hash %q", key)
		}
		r := Record{Hash: h, Summary: &dump.Summary{}}
		if err := dump.UnmarshalCBOR(blob, r.Summary); err != nil {
			return nil, errors.Wrapf(err, "summary of %s", key)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading classes")
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}

	for i := range out {
		if out[i].Origins, err = s.origins(ctx, hashKey(out[i].Hash)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) origins(ctx context.Context, key string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT origin FROM origins WHERE hash = ? ORDER BY origin", key)
	if err != nil {
		return nil, errors.Wrap(err, "querying origins")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, errors.Wrap(err, "reading origin")
		}
		out = append(out, o)
	}
	return out, errors.Wrap(rows.Err(), "reading origins")
}

// Count returns the number of distinct classes in the index.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM classes").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "counting classes")
	}
	return n, nil
}
