package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/structview"
	"github.com/wippyai/structview/decl"
	"github.com/wippyai/structview/gogen"
	"github.com/wippyai/structview/layout"
	"github.com/wippyai/structview/memory"
	"github.com/wippyai/structview/registry"
	"github.com/wippyai/structview/render"
	"github.com/wippyai/structview/witimport"
)

type config struct {
	decls       []string
	witFile     string
	typeName    string
	rootName    string
	memFile     string
	wasmFile    string
	export      string
	genFile     string
	pkg         string
	base        uint64
	depth       int
	ptrSize     int
	showLayout  bool
	showPadding bool
	interactive bool
	verbose     bool
}

func main() {
	var (
		declFiles   = flag.String("decl", "", "TOML declaration files (comma-separated)")
		witFile     = flag.String("wit", "", "WIT JSON file whose named types are imported")
		typeName    = flag.String("type", "", "Type to view")
		rootName    = flag.String("name", "", "Name shown for the root (defaults to the type)")
		memFile     = flag.String("mem", "", "Raw memory dump")
		wasmFile    = flag.String("wasm", "", "Core WASM module whose exported memory is viewed")
		export      = flag.String("export", memory.DefaultMemoryExport, "Memory export of -wasm")
		base        = flag.String("base", "0", "Address of the first byte of -mem, and of the viewed value (hex)")
		addr        = flag.String("addr", "", "Address of the viewed value (hex, defaults to -base)")
		depth       = flag.Int("depth", render.DefaultMaxDepth, "Pointers to follow (-1 disables)")
		ptrSize     = flag.Int("ptr", 0, "Pointer size when no declaration file sets one (4 or 8)")
		showLayout  = flag.Bool("layout", false, "Print the member layout of -type")
		showPadding = flag.Bool("padding", false, "Show padding members")
		genFile     = flag.String("gen", "", "Write Go declarations for -type (or every type) to this file")
		pkg         = flag.String("pkg", "types", "Package name for -gen")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *declFiles == "" && *witFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: structview -decl <types.toml[,more.toml]> [-type T] [-mem dump.bin -base 0x1000]")
		fmt.Fprintln(os.Stderr, "       structview -decl <types.toml> -type T -layout")
		fmt.Fprintln(os.Stderr, "       structview -decl <types.toml> -gen types.go [-pkg name]")
		fmt.Fprintln(os.Stderr, "       structview -wit <types.json> -wasm <module.wasm> -type T -addr 0x400")
		fmt.Fprintln(os.Stderr, "       structview -decl <types.toml> -mem dump.bin -i  (interactive mode)")
		os.Exit(1)
	}

	cfg := config{
		witFile:     *witFile,
		typeName:    *typeName,
		rootName:    *rootName,
		memFile:     *memFile,
		wasmFile:    *wasmFile,
		export:      *export,
		genFile:     *genFile,
		pkg:         *pkg,
		depth:       *depth,
		ptrSize:     *ptrSize,
		showLayout:  *showLayout,
		showPadding: *showPadding,
		interactive: *interactive,
		verbose:     *verbose,
	}
	if *declFiles != "" {
		cfg.decls = strings.Split(*declFiles, ",")
	}

	var err error
	if cfg.base, err = parseAddr(*base); err != nil {
		fmt.Fprintf(os.Stderr, "Error: -base: %v\n", err)
		os.Exit(1)
	}
	viewAddr := cfg.base
	if *addr != "" {
		if viewAddr, err = parseAddr(*addr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: -addr: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(cfg, viewAddr, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config, addr uint64, out io.Writer) error {
	ctx := context.Background()

	log := zap.NewNop()
	if cfg.verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer func() { _ = log.Sync() }()
	}
	decl.SetLogger(log.Named("decl"))
	witimport.SetLogger(log.Named("witimport"))

	reg, err := buildRegistry(cfg, log)
	if err != nil {
		return err
	}

	mem, closeMem, err := openMemory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeMem()

	if cfg.interactive {
		return runInteractive(reg, mem, cfg, addr)
	}

	if cfg.genFile != "" {
		names := generateNames(reg, cfg.typeName)
		if err := gogen.New(reg).Save(cfg.genFile, cfg.pkg, names...); err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		fmt.Fprintf(out, "Wrote %d declarations to %s\n", len(names), cfg.genFile)
	}

	if cfg.typeName == "" {
		if cfg.genFile == "" {
			listRegistry(out, reg)
		}
		return nil
	}

	if _, ok := reg.Lookup(cfg.typeName); !ok {
		return fmt.Errorf("unknown type %q", cfg.typeName)
	}

	if cfg.showLayout {
		if err := printLayout(out, reg, cfg.typeName); err != nil {
			return err
		}
	}

	if mem == nil {
		if !cfg.showLayout && cfg.genFile == "" {
			return printLayout(out, reg, cfg.typeName)
		}
		return nil
	}

	return render.Dump(reg, mem, out, rootLabel(cfg), cfg.typeName, addr, dumpOptions(cfg, out))
}

func dumpOptions(cfg config, out io.Writer) render.Options {
	opts := render.Options{
		MaxDepth:    cfg.depth,
		ShowPadding: cfg.showPadding,
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = -1
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		opts.Styler = render.ColorStyler
	}
	return opts
}

// buildRegistry creates the registry and loads every declaration source.
func buildRegistry(cfg config, log *zap.Logger) (*registry.Registry, error) {
	var files []*decl.File
	for _, path := range cfg.decls {
		f, err := decl.Load(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	opts := []registry.Option{registry.WithLogger(log.Named("registry"))}
	switch {
	case cfg.ptrSize != 0:
		opts = append(opts, registry.WithPointerSize(cfg.ptrSize))
	case len(files) > 0:
		opts = append(opts, files[0].RegistryOptions()...)
	case cfg.witFile != "":
		// Component Model memories are 32-bit.
		opts = append(opts, registry.WithPointerSize(4))
	}
	reg := registry.New(opts...)

	for _, f := range files {
		if err := f.Apply(reg, f.Path); err != nil {
			return nil, err
		}
	}

	if cfg.witFile != "" {
		res, err := wit.LoadJSON(cfg.witFile)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", cfg.witFile, err)
		}
		im := witimport.New(reg, witimport.WithOwner(cfg.witFile))
		for _, t := range res.TypeDefs {
			if t.Name == nil {
				continue
			}
			if _, ok := t.Kind.(*wit.Resource); ok {
				continue
			}
			if err := im.Import(t); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}

// openMemory returns the memory selected by -mem or -wasm, or nil.
func openMemory(ctx context.Context, cfg config) (structview.Memory, func(), error) {
	switch {
	case cfg.memFile != "" && cfg.wasmFile != "":
		return nil, nil, fmt.Errorf("-mem and -wasm are mutually exclusive")
	case cfg.memFile != "":
		mem, err := memory.ReadFile(cfg.memFile, cfg.base)
		if err != nil {
			return nil, nil, err
		}
		return mem, func() {}, nil
	case cfg.wasmFile != "":
		mod, err := memory.LoadModule(ctx, cfg.wasmFile, cfg.export)
		if err != nil {
			return nil, nil, err
		}
		return mod.Memory(), func() { mod.Close(ctx) }, nil
	}
	return nil, func() {}, nil
}

func printLayout(w io.Writer, reg *registry.Registry, typeName string) error {
	if _, ok := reg.Aggregate(typeName); !ok {
		fmt.Fprintf(w, "%s: %d bytes\n", typeName, reg.Sizeof(typeName))
		return nil
	}
	info, err := layout.NewCalculator(reg).Calculate(typeName)
	if err != nil {
		return err
	}
	kind := "struct"
	if info.Union {
		kind = "union"
	}
	fmt.Fprintf(w, "%s %s (%d bytes)\n", kind, info.Name, info.Size)
	for _, f := range info.Fields {
		typ := f.TypeName
		if f.ArraySize > 0 {
			typ += "[" + strconv.Itoa(f.ArraySize) + "]"
		}
		fmt.Fprintf(w, "  %#06x  %5d  %-24s %s\n", f.Offset, f.Size, typ, f.Name)
	}

	leaves, err := layout.Flatten(reg, info.Name, typeName, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d leaves\n", len(leaves))
	for _, l := range leaves {
		if l.Padding {
			continue
		}
		fmt.Fprintf(w, "  %#06x  %5d  %s\n", l.Offset, l.Size, l.Path)
	}
	return nil
}

func listRegistry(w io.Writer, reg *registry.Registry) {
	fmt.Fprintf(w, "Pointer size: %d\n", reg.PointerSize())
	section := func(title string, names []string, size func(string) string) {
		fmt.Fprintf(w, "\n%s (%d):\n", title, len(names))
		for _, n := range names {
			fmt.Fprintf(w, "  %s%s\n", n, size(n))
		}
	}
	sizeOf := func(n string) string {
		return " (" + strconv.Itoa(reg.Sizeof(n)) + " bytes)"
	}
	section("Aliases", reg.Aliases(), sizeOf)
	section("Aggregates", reg.Aggregates(), sizeOf)
	section("Functions", reg.Functions(), func(n string) string {
		fn, _ := reg.Function(n)
		return " [" + fn.CallConv.String() + "]"
	})
}

func generateNames(reg *registry.Registry, typeName string) []string {
	if typeName != "" {
		return []string{typeName}
	}
	return append(reg.Aggregates(), reg.Functions()...)
}

func rootLabel(cfg config) string {
	if cfg.rootName != "" {
		return cfg.rootName
	}
	return cfg.typeName
}

func parseAddr(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, 64)
}
