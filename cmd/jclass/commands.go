package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/classpath"
	"github.com/daimatz/jclass/pkg/dump"
	"github.com/daimatz/jclass/pkg/index"
)

// load reads target as a class file path if it names one and otherwise
// looks it up by class name on the classpath.
func (a *app) load(target string) (*classfile.ClassFile, error) {
	if strings.HasSuffix(target, ".class") {
		if _, err := os.Stat(target); err == nil {
			return classfile.ParseFile(target)
		}
	}

	p, err := classpath.OpenPath(a.cp)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	c, err := p.LoadClass(classpath.ClassName(target))
	if err != nil {
		return nil, err
	}
	return c.File, nil
}

func oneArg(name string, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.Errorf("%s takes exactly one argument", name)
	}
	return args[0], nil
}

func (a *app) dump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	format := fs.String("format", a.cfg.Output.Format, "output format: text, json, yaml or cbor")
	fs.Parse(args)

	f, err := dump.ParseFormat(*format)
	if err != nil {
		return err
	}
	target, err := oneArg("dump", fs.Args())
	if err != nil {
		return err
	}
	cf, err := a.load(target)
	if err != nil {
		return err
	}
	s, err := dump.Summarize(cf)
	if err != nil {
		return err
	}
	return dump.Write(os.Stdout, f, s)
}

func (a *app) disasm(args []string) error {
	target, err := oneArg("disasm", args)
	if err != nil {
		return err
	}
	cf, err := a.load(target)
	if err != nil {
		return err
	}
	return dump.Disassemble(os.Stdout, cf)
}

// scanReport counts the outcome of a Scan.
type scanReport struct {
	classes int64
	failed  int64
	bytes   uint64
}

func (r *scanReport) String() string {
	return fmt.Sprintf("%s classes (%s), %s failed",
		humanize.Comma(r.classes), humanize.Bytes(r.bytes), humanize.Comma(r.failed))
}

// scanEach scans target and calls fn for every class that parsed.
// Parse failures are reported on stderr; they stop the scan unless
// skip-errors is set.
func (a *app) scanEach(ctx context.Context, target string, fn func(c *classpath.Class) error) (*scanReport, error) {
	src, err := classpath.Open(target)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	r := &scanReport{}
	err = classpath.Scan(ctx, src, a.cfg.Scan.Workers, func(c *classpath.Class, err error) error {
		r.classes++
		r.bytes += uint64(len(c.Data))
		if err != nil {
			r.failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", c.Name, err)
			if a.cfg.Scan.SkipErrors {
				return nil
			}
			return err
		}
		if fn != nil {
			return fn(c)
		}
		return nil
	})
	return r, err
}

func (a *app) scan(ctx context.Context, args []string) error {
	target, err := oneArg("scan", args)
	if err != nil {
		return err
	}
	r, err := a.scanEach(ctx, target, nil)
	if r != nil {
		fmt.Printf("%s: %s\n", target, r)
	}
	return err
}

func (a *app) index(ctx context.Context, args []string) error {
	target, err := oneArg("index", args)
	if err != nil {
		return err
	}
	store, err := index.Open(ctx, a.cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := a.scanEach(ctx, target, func(c *classpath.Class) error {
		s, err := dump.Summarize(c.File)
		if err != nil {
			return errors.Wrap(err, c.Name)
		}
		return store.Put(ctx, c.Hash, c.Origin, s)
	})
	if err != nil {
		return err
	}
	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s; %s has %s classes\n", target, r, store, humanize.Comma(int64(n)))
	return nil
}

func (a *app) find(ctx context.Context, args []string) error {
	target, err := oneArg("find", args)
	if err != nil {
		return err
	}
	store, err := index.Open(ctx, a.cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.FindClass(ctx, classpath.ClassName(target))
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Printf("%016x %s (version %s)\n", r.Hash, r.Summary.Name, r.Summary.Version())
		for _, o := range r.Origins {
			fmt.Printf("  %s\n", o)
		}
	}
	return nil
}
