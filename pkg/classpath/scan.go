package classpath

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Scan parses every class in src using workers goroutines (GOMAXPROCS when
// workers < 1). fn is called once per entry with the parse result; a parse
// failure is passed as err together with the unparsed Class and does not
// stop the scan. Calls to fn are serialized. Scan stops at the first error
// fn returns or when ctx is cancelled.
func Scan(ctx context.Context, src Source, workers int, fn func(c *Class, err error) error) error {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	entries := make(chan *Entry, workers)

	g.Go(func() error {
		defer close(entries)
		return src.Walk(ctx, func(e *Entry) error {
			select {
			case entries <- e:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	var mu sync.Mutex
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for e := range entries {
				if err := ctx.Err(); err != nil {
					return err
				}
				c, err := Parse(e)
				mu.Lock()
				cbErr := fn(c, err)
				mu.Unlock()
				if cbErr != nil {
					return cbErr
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		log.Debugf("scan of %s stopped: %s", src, err)
	}
	return err
}
