// Command fdlc compiles one or more JSON-encoded ANF trees into
// pretty-printed instruction streams (SPEC_FULL.md §4.14).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/alvinyongho/06-fer-de-lance"
	"github.com/alvinyongho/06-fer-de-lance/ascii"
	"github.com/alvinyongho/06-fer-de-lance/cache"
	"github.com/alvinyongho/06-fer-de-lance/diagnostics"
)

type args struct {
	configPath *string
	cachePath  *string
	color      *string
	jobs       *int
}

func readArgs() *args {
	a := &args{
		configPath: flag.String("config", "", "Path to a YAML config file overriding compiler defaults"),
		cachePath:  flag.String("cache", "", "Path to a sqlite compile cache (':memory:' for process-local)"),
		color:      flag.String("color", "auto", "Colorize output: 'always', 'never', or 'auto'"),
		jobs:       flag.Int("jobs", 4, "Maximum concurrent compiles"),
	}
	flag.Parse()
	return a
}

func main() {
	a := readArgs()
	paths := flag.Args()
	if len(paths) == 0 {
		log.Fatal("fdlc: no input files given")
	}

	cfg, err := loadConfig(*a.configPath)
	if err != nil {
		log.Fatal(err)
	}

	var store *cache.Cache
	if *a.cachePath != "" {
		store, err = cache.Open(*a.cachePath)
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()
	}

	useColor := shouldColor(*a.color)

	start := time.Now()
	reports, err := compileAll(paths, cfg, store, *a.jobs)
	if err != nil {
		log.Fatal(err)
	}

	failed := 0
	for _, r := range reports {
		if useColor {
			fmt.Println(r.Highlight(ascii.DefaultTheme))
		} else {
			fmt.Println(r.String())
		}
		if !r.OK() {
			failed++
		}
	}

	fmt.Printf("compiled %s in %s, %d failed\n",
		humanize.Comma(int64(len(reports))), time.Since(start).Round(time.Millisecond), failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func shouldColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}

// loadConfig returns the compiler's defaults, overridden by whatever
// keys path's YAML document sets (SPEC_FULL.md §4.12).
func loadConfig(path string) (*fdlc.Config, error) {
	cfg := fdlc.NewConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fdlc: reading config %s: %w", path, err)
	}

	var overrides struct {
		AssertStrictBounds *bool   `yaml:"assert.strict_bounds"`
		CodegenComments    *bool   `yaml:"codegen.comments"`
		HeapRegister       *string `yaml:"heap.register"`
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("fdlc: parsing config %s: %w", path, err)
	}

	if overrides.AssertStrictBounds != nil {
		cfg.SetBool("assert.strict_bounds", *overrides.AssertStrictBounds)
	}
	if overrides.CodegenComments != nil {
		cfg.SetBool("codegen.comments", *overrides.CodegenComments)
	}
	if overrides.HeapRegister != nil {
		cfg.SetString("heap.register", *overrides.HeapRegister)
	}
	return cfg, nil
}

// compileAll drives one compile per path concurrently, bounded by
// jobs, using golang.org/x/sync/errgroup purely for the worker-pool
// semaphore — a single bad input produces a Report, never an
// errgroup-aborting error, so every file always gets a result.
func compileAll(paths []string, cfg *fdlc.Config, store *cache.Cache, jobs int) ([]diagnostics.Report, error) {
	reports := make([]diagnostics.Report, len(paths))

	if jobs < 1 {
		jobs = 1
	}
	var g errgroup.Group
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			reports[i] = compileOne(path, cfg, store)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func compileOne(path string, cfg *fdlc.Config, store *cache.Cache) diagnostics.Report {
	data, err := os.ReadFile(path)
	if err != nil {
		return diagnostics.NewReport(path, []fdlc.CompileError{{Message: err.Error()}})
	}

	expr, err := fdlc.DecodeExpr(data)
	if err != nil {
		return diagnostics.NewReport(path, []fdlc.CompileError{{Message: err.Error()}})
	}

	if store != nil {
		if key, err := cache.Key(expr, cfg); err == nil {
			if pretty, ok, _ := store.Get(key); ok {
				fmt.Println(pretty)
				return diagnostics.NewReport(path, nil)
			}
		}
	}

	prog, errs := fdlc.CompileProgram(expr, cfg)
	if len(errs) > 0 {
		return diagnostics.NewReport(path, errs)
	}

	fmt.Println(prog.PrettyString())

	if store != nil {
		if key, err := cache.Key(expr, cfg); err == nil {
			_ = store.Put(key, prog)
		}
	}
	return diagnostics.NewReport(path, nil)
}
