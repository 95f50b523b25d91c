// Command xcbuild drives the link-resolver and build-graph-emitter core
// from the command line, against a JSON fixture standing in for a real
// Xcode project/workspace (out of scope for this tool; see fixture.Load).
package main

import (
	"fmt"
	"os"

	"github.com/coreos/go-semver/semver"
	"github.com/dustin/go-humanize"
	flags "github.com/thought-machine/go-flags"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/jdm7dv/xcbuild/src/cli/logging"
	"github.com/jdm7dv/xcbuild/src/config"
	"github.com/jdm7dv/xcbuild/src/doctor"
	"github.com/jdm7dv/xcbuild/src/emit"
	"github.com/jdm7dv/xcbuild/src/fixture"
)

// version is stamped at release time; "0.0.0" is what "go build" produces
// for a plain checkout.
var version = "0.0.0"

var opts struct {
	Verbosity string   `short:"v" long:"verbosity" default:"notice" description:"Verbosity of output (critical, error, warning, notice, info, debug)"`
	LogFile   string   `long:"log_file" description:"File to echo full logging output to"`
	Config    string   `short:"c" long:"config" default:".xcbuildconfig" description:"Path to the xcbuild config file"`
	Override  []string `short:"o" long:"override" description:"Config overrides in section.key=value form"`

	Plan struct {
		Fixture string `long:"fixture" required:"true" description:"Path to the JSON build fixture to plan"`
		DryRun  bool   `long:"dry_run" description:"Skip writing auxiliary files referenced by invocations"`
	} `command:"plan" description:"Resolve a fixture's targets into a Ninja build graph"`

	Doctor struct{} `command:"doctor" description:"Check that every configured linker tool resolves against the SDK search path"`

	Version struct{} `command:"version" description:"Print the xcbuild version"`
}

func main() {
	os.Exit(run())
}

func run() int {
	// automaxprocs only affects GOMAXPROCS, which only matters to the
	// concurrent doctor probe; the link/emit core is single-threaded
	// regardless of GOMAXPROCS.
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "xcbuild: could not set GOMAXPROCS: %s\n", err)
	}

	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	level, err := parseLevel(opts.Verbosity)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.LogFile != "" {
		if err := logging.InitFileLogging(opts.LogFile, logging.DEBUG, level); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	} else {
		logging.InitLogging(level)
	}

	if parser.Active == nil {
		fmt.Fprintln(os.Stderr, "xcbuild: no command given; try --help")
		return 1
	}

	switch parser.Active.Name {
	case "plan":
		return runPlan()
	case "doctor":
		return runDoctor()
	case "version":
		return runVersion()
	default:
		fmt.Fprintf(os.Stderr, "xcbuild: unknown command %q\n", parser.Active.Name)
		return 1
	}
}

func parseLevel(name string) (logging.Level, error) {
	switch name {
	case "critical":
		return logging.CRITICAL, nil
	case "error":
		return logging.ERROR, nil
	case "warning":
		return logging.WARNING, nil
	case "notice":
		return logging.NOTICE, nil
	case "info":
		return logging.INFO, nil
	case "debug":
		return logging.DEBUG, nil
	default:
		return 0, fmt.Errorf("xcbuild: unknown verbosity %q", name)
	}
}

func loadConfig() (*config.Configuration, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(opts.Override); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPlan() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "xcbuild: %s\n", err)
		return 1
	}

	graph, targets, buildCtx, objRoot, err := fixture.Load(opts.Plan.Fixture)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xcbuild: loading fixture: %s\n", err)
		return 1
	}

	emitter := emit.New(objRoot, buildCtx, nil, opts.Plan.DryRun, cfg.SDK.SearchPath)
	result, err := emitter.Emit(graph, targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xcbuild: %s\n", err)
		return 1
	}

	fmt.Printf("wrote build graph to %s\n", result.RootGraphPath)
	if info, statErr := os.Stat(result.RootGraphPath); statErr == nil {
		fmt.Printf("%s\n", humanize.Bytes(uint64(info.Size())))
	}
	if result.Diagnostics != nil {
		fmt.Fprintf(os.Stderr, "xcbuild: completed with diagnostics:\n%s\n", result.Diagnostics)
		return 2
	}
	return 0
}

func runDoctor() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "xcbuild: %s\n", err)
		return 1
	}

	results := doctor.Probe(cfg, doctor.DefaultSpecs(cfg))
	failed := false
	for _, r := range results {
		status := "ok"
		if !r.OK {
			status = "MISSING"
			failed = true
		}
		fmt.Printf("%-10s %-20s %s\n", r.Identifier, status, r.Resolved)
	}
	if failed {
		return 1
	}
	return 0
}

func runVersion() int {
	v, err := semver.NewVersion(version)
	if err != nil {
		fmt.Printf("xcbuild version %s\n", version)
		return 0
	}
	fmt.Printf("xcbuild version %s\n", v)
	return 0
}
