// Command cheshire is the interpreter's command-line entry point: no
// arguments starts the REPL, one argument loads and runs a file, and
// extra arguments or bad flags are a usage error (§6).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sadderchris/cheshire/internal/builtins"
	"github.com/sadderchris/cheshire/internal/config"
	"github.com/sadderchris/cheshire/internal/diag"
	"github.com/sadderchris/cheshire/internal/history"
	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/reader"
	"github.com/sadderchris/cheshire/internal/repl"
	"github.com/sadderchris/cheshire/internal/symbol"
	"github.com/sadderchris/cheshire/internal/vm"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-config path] [-history path] [-trace] [file]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s -disassemble file\n", os.Args[0])
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		disassemble = flag.String("disassemble", "", "dump bytecode for `file` instead of running it")
		configPath  = flag.String("config", "", "override the default config file location")
		historyPath = flag.String("history", "", "override the default history store location")
		trace       = flag.Bool("trace", false, "enable trace diagnostics")
	)
	flag.Usage = usage
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 64
	}

	diag.Verbose = *trace

	if flag.NArg() > 1 {
		usage()
		return 64
	}

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = config.DefaultPath()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		diag.Errorf("%s", err)
		return 64
	}

	if *disassemble != "" {
		return runDisassemble(cfg, *disassemble)
	}

	symtab := symbol.NewTable()
	m := vm.New(symtab, vm.Box(vm.NewReadPort("<stdin>", os.Stdin)), vm.Box(vm.NewWritePort("<stdout>", os.Stdout)))
	builtins.Install(m)

	if flag.NArg() == 1 {
		return runFile(m, flag.Arg(0))
	}
	return runREPL(m, cfg, *historyPath)
}

func runFile(m *vm.VM, path string) int {
	if _, err := repl.Load(m, path); err != nil {
		diag.Errorf("%s", err)
		return 1
	}
	return 0
}

func runREPL(m *vm.VM, cfg *config.Config, historyOverride string) int {
	histPath := historyOverride
	if histPath == "" {
		histPath = cfg.ExpandHistoryPath()
	}

	var hist *history.Store
	if histPath != "" {
		h, err := history.Open(histPath)
		if err != nil {
			diag.Warnf("history: %v, continuing without it", err)
		} else {
			hist = h
			defer hist.Close()
		}
	}

	return repl.New(m, cfg, hist).Run()
}

func runDisassemble(cfg *config.Config, path string) int {
	_ = cfg
	symtab := symbol.NewTable()
	src, err := os.ReadFile(path)
	if err != nil {
		diag.Errorf("%s", interperr.IO(err))
		return 1
	}
	rd := reader.New(path, string(src), symtab)
	forms, rerr := rd.ReadAll()
	if rerr != nil {
		diag.Errorf("%s", rerr)
		return 1
	}
	fn, cerr := vm.Compile(path, forms, symtab)
	if cerr != nil {
		diag.Errorf("%s", cerr)
		return 1
	}
	fmt.Print(vm.Disassemble(fn.Chunk, fn.Name))
	return 0
}
