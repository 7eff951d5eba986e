package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/daimatz/jclass/pkg/config"
)

var log = commonlog.GetLogger("jclass")

const usage = `Usage: jclass [flags] <command> [args]

Commands:
  dump [-format text|json|yaml|cbor] <file.class|class>
  disasm <file.class|class>
  scan <jar|jmod|dir>
  index <jar|jmod|dir>
  find <class>

Flags:
`

// findJmodPath locates java.base.jmod so JDK classes can be loaded by name.
func findJmodPath() string {
	if env := os.Getenv("JAVA_BASE_JMOD"); env != "" {
		return env
	}
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		p := filepath.Join(javaHome, "jmods", "java.base.jmod")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	matches, _ := filepath.Glob("/usr/lib/jvm/java-*-openjdk-*/jmods/java.base.jmod")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

type app struct {
	cfg *config.Config
	cp  []string
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.FindAndLoad(wd)
}

func main() {
	configPath := flag.String("config", "", "path to jclass.toml (default: search upwards from the working directory)")
	cp := flag.String("cp", "", "classpath entries separated by "+string(os.PathListSeparator))
	verbosity := flag.Int("v", 0, "log verbosity (overrides the config file when > 0)")
	jdk := flag.Bool("jdk", true, "append java.base.jmod to the classpath when it can be found")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbosity > 0 {
		cfg.Log.Verbosity = *verbosity
	}
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogFile())

	a := &app{cfg: cfg}
	if *cp != "" {
		a.cp = append(a.cp, strings.Split(*cp, string(os.PathListSeparator))...)
	}
	a.cp = append(a.cp, cfg.ClasspathEntries()...)
	if *jdk {
		if jmod := findJmodPath(); jmod != "" {
			log.Debugf("using %s", jmod)
			a.cp = append(a.cp, jmod)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "dump":
		err = a.dump(args)
	case "disasm":
		err = a.disasm(args)
	case "scan":
		err = a.scan(ctx, args)
	case "index":
		err = a.index(ctx, args)
	case "find":
		err = a.find(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
