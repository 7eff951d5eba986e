package classpath

import (
	"sync"

	"github.com/pkg/errors"
)

// Loader loads parsed classes by internal name.
type Loader interface {
	LoadClass(name string) (*Class, error)
}

// Path searches its sources in order, so earlier entries shadow later
// ones, and caches every class it parses. It is safe for concurrent use.
type Path struct {
	sources []Source

	mu    sync.Mutex
	cache map[string]*Class
}

// NewPath returns a Path over sources.
func NewPath(sources ...Source) *Path {
	return &Path{sources: sources, cache: make(map[string]*Class)}
}

// OpenPath opens every entry with Open. Already opened sources are closed
// if a later entry fails.
func OpenPath(entries []string) (*Path, error) {
	var sources []Source
	for _, e := range entries {
		src, err := Open(e)
		if err != nil {
			for _, s := range sources {
				s.Close()
			}
			return nil, err
		}
		sources = append(sources, src)
	}
	return NewPath(sources...), nil
}

// Sources returns the sources in search order.
func (p *Path) Sources() []Source { return p.sources }

// LoadClass returns the first class called name found on the path.
func (p *Path) LoadClass(name string) (*Class, error) {
	p.mu.Lock()
	c, ok := p.cache[name]
	p.mu.Unlock()
	if ok {
		return c, nil
	}

	for _, src := range p.sources {
		e, err := src.ReadClass(name)
		var nf *NotFoundError
		if errors.As(err, &nf) {
			continue
		}
		if err != nil {
			return nil, err
		}
		c, err := Parse(e)
		if err != nil {
			return nil, err
		}
		log.Debugf("loaded %s from %s", name, src)

		p.mu.Lock()
		defer p.mu.Unlock()
		if prev, ok := p.cache[name]; ok {
			return prev, nil
		}
		p.cache[name] = c
		return c, nil
	}
	return nil, &NotFoundError{Name: name, Source: "classpath"}
}

// Close closes every source and returns the first error.
func (p *Path) Close() error {
	var first error
	for _, s := range p.sources {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
