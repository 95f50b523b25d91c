// Package config loads the .xcbuildconfig file consumed by the doctor and
// plan commands: SDK search paths, the doctor probe's concurrency limit, and
// tool-spec overrides for use outside of a full Xcode-style project. The
// OBJROOT/BUILT_PRODUCTS_DIR values are loaded and saved but not read by
// either command.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/please-build/gcfg"
)

// ConfigFileName is the default file name Load looks for.
const ConfigFileName = ".xcbuildconfig"

// Configuration is the parsed form of an .xcbuildconfig file, matching the
// teacher's convention of a single nested struct read directly by gcfg.
type Configuration struct {
	Xcbuild struct {
		ObjRoot          string `help:"Root directory for intermediate build outputs."`
		BuiltProductsDir string `help:"Destination directory for final binary products."`
		NumThreads       int    `help:"Advisory concurrency used only by the doctor tool probe; the emitter itself is always single-threaded." example:"8"`
	} `help:"The [xcbuild] section holds top-level directory and concurrency defaults."`
	SDK struct {
		SearchPath []string `help:"Default executable search paths, used when a target environment supplies none of its own." example:"/usr/bin"`
	} `help:"The [sdk] section describes where to look for toolchain executables."`
	Linkers struct {
		Ld       string `help:"Override for the com.apple.pbx.linkers.ld tool spec."`
		Libtool  string `help:"Override for the com.apple.pbx.linkers.libtool tool spec."`
		Lipo     string `help:"Override for the com.apple.xcode.linkers.lipo tool spec."`
		Dsymutil string `help:"Override for the com.apple.tools.dsymutil tool spec."`
	} `help:"The [linkers] section lets the doctor command and tests run without a full project's tool-spec resolution."`
}

// Default returns a Configuration with the teacher-style sensible defaults
// this tool uses when no config file is present.
func Default() *Configuration {
	cfg := &Configuration{}
	cfg.SDK.SearchPath = []string{"/usr/bin", "/bin", "/usr/local/bin"}
	cfg.Linkers.Ld = "ld"
	cfg.Linkers.Libtool = "libtool"
	cfg.Linkers.Lipo = "lipo"
	cfg.Linkers.Dsymutil = "dsymutil"
	return cfg
}

// Load reads an .xcbuildconfig file, falling back to Default() for any
// field the file leaves unset. A missing file is not an error, mirroring
// the teacher's readConfigFile: Load simply returns the defaults.
func Load(filename string) (*Configuration, error) {
	cfg := &Configuration{}
	if err := gcfg.ReadFileInto(cfg, filename); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		if gcfg.FatalOnly(err) != nil {
			return nil, fmt.Errorf("reading config %s: %w", filename, err)
		}
		// Non-fatal parse warnings (e.g. an unknown key in a newer config
		// written by a future version of this tool) are tolerated.
	}
	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills in any field the config file left at its zero value.
func applyDefaults(cfg *Configuration) {
	def := Default()
	if len(cfg.SDK.SearchPath) == 0 {
		cfg.SDK.SearchPath = def.SDK.SearchPath
	}
	if cfg.Linkers.Ld == "" {
		cfg.Linkers.Ld = def.Linkers.Ld
	}
	if cfg.Linkers.Libtool == "" {
		cfg.Linkers.Libtool = def.Linkers.Libtool
	}
	if cfg.Linkers.Lipo == "" {
		cfg.Linkers.Lipo = def.Linkers.Lipo
	}
	if cfg.Linkers.Dsymutil == "" {
		cfg.Linkers.Dsymutil = def.Linkers.Dsymutil
	}
}

// Apply applies "-o section.key=value" style command-line overrides on top
// of an already-loaded Configuration, matching the teacher's -o/--override
// flag. Every field this package defines except xcbuild.numthreads is
// settable; sdk.searchpath appends to the existing search paths.
func (c *Configuration) Apply(overrides []string) error {
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		if !ok {
			return fmt.Errorf("invalid override %q: expected section.key=value", o)
		}
		if err := c.set(strings.ToLower(key), value); err != nil {
			return fmt.Errorf("invalid override %q: %w", o, err)
		}
	}
	return nil
}

func (c *Configuration) set(key, value string) error {
	switch key {
	case "xcbuild.objroot":
		c.Xcbuild.ObjRoot = value
	case "xcbuild.builtproductsdir":
		c.Xcbuild.BuiltProductsDir = value
	case "sdk.searchpath":
		c.SDK.SearchPath = append(c.SDK.SearchPath, value)
	case "linkers.ld":
		c.Linkers.Ld = value
	case "linkers.libtool":
		c.Linkers.Libtool = value
	case "linkers.lipo":
		c.Linkers.Lipo = value
	case "linkers.dsymutil":
		c.Linkers.Dsymutil = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Save serializes cfg as an INI file gcfg can read back; gcfg itself is
// read-only, so this writer is hand-rolled against the subset of sections
// this package defines.
func Save(filename string, cfg *Configuration) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[xcbuild]\n")
	fmt.Fprintf(&b, "\tobjroot = %s\n", cfg.Xcbuild.ObjRoot)
	fmt.Fprintf(&b, "\tbuiltproductsdir = %s\n", cfg.Xcbuild.BuiltProductsDir)
	fmt.Fprintf(&b, "\tnumthreads = %d\n", cfg.Xcbuild.NumThreads)
	fmt.Fprintf(&b, "[sdk]\n")
	for _, p := range cfg.SDK.SearchPath {
		fmt.Fprintf(&b, "\tsearchpath = %s\n", p)
	}
	fmt.Fprintf(&b, "[linkers]\n")
	fmt.Fprintf(&b, "\tld = %s\n", cfg.Linkers.Ld)
	fmt.Fprintf(&b, "\tlibtool = %s\n", cfg.Linkers.Libtool)
	fmt.Fprintf(&b, "\tlipo = %s\n", cfg.Linkers.Lipo)
	fmt.Fprintf(&b, "\tdsymutil = %s\n", cfg.Linkers.Dsymutil)
	return os.WriteFile(filename, []byte(b.String()), 0644)
}
