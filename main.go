package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmarsal/aasim/checker"
	"github.com/dmarsal/aasim/config"
	"github.com/dmarsal/aasim/parser"
	"github.com/dmarsal/aasim/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "aasim",
		Short:   "An interpreting simulator for a subset of AArch64 assembly",
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
	}
	root.AddCommand(newRunCmd(), newReplCmd(), newDumpSymbolsCmd())
	return root
}

// ruleFlags are the checker.Rules knobs shared by run and repl, layered
// on top of whatever a --config file sets.
type ruleFlags struct {
	configPath       string
	forbid           []string
	forbidLoops      bool
	checkDeadCode    bool
	forbidRecursion  bool
	requireRecursion bool
	recursiveLabels  []string
	trace            bool
}

func (f *ruleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a TOML config file (default: platform config dir)")
	cmd.Flags().StringSliceVar(&f.forbid, "forbid", nil, "forbid these mnemonics (comma-separated)")
	cmd.Flags().BoolVar(&f.forbidLoops, "forbid-loops", false, "reject programs containing a backward branch")
	cmd.Flags().BoolVar(&f.checkDeadCode, "check-dead-code", false, "reject programs with unreferenced labels")
	cmd.Flags().BoolVar(&f.forbidRecursion, "forbid-recursion", false, "fail the run if any label calls itself recursively")
	cmd.Flags().BoolVar(&f.requireRecursion, "require-recursion", false, "fail the run if no label ever recurses")
	cmd.Flags().StringSliceVar(&f.recursiveLabels, "recursive-label", nil, "labels require-recursion accepts as satisfying the requirement")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "print one line per executed instruction to stderr")
}

// resolve loads the config file (if any) and overlays explicitly-set
// flags on top of it, returning the merged checker.Rules and the
// execution limits.
func (f *ruleFlags) resolve(cmd *cobra.Command) (checker.Rules, *config.Config, error) {
	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.LoadFrom(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return checker.Rules{}, nil, err
	}

	r := checker.Rules{
		ForbidMnemonics:  cfg.Rules.ForbidMnemonics,
		ForbidLoops:      cfg.Rules.ForbidLoops,
		CheckDeadCode:    cfg.Rules.CheckDeadCode,
		ForbidRecursion:  cfg.Rules.ForbidRecursion,
		RequireRecursion: cfg.Rules.RequireRecursion,
		RecursiveLabels:  cfg.Rules.RecursiveLabels,
	}

	flags := cmd.Flags()
	if flags.Changed("forbid") {
		r.ForbidMnemonics = f.forbid
	}
	if flags.Changed("forbid-loops") {
		r.ForbidLoops = f.forbidLoops
	}
	if flags.Changed("check-dead-code") {
		r.CheckDeadCode = f.checkDeadCode
	}
	if flags.Changed("forbid-recursion") {
		r.ForbidRecursion = f.forbidRecursion
	}
	if flags.Changed("require-recursion") {
		r.RequireRecursion = f.requireRecursion
	}
	if flags.Changed("recursive-label") {
		r.RecursiveLabels = f.recursiveLabels
	}

	return r, cfg, nil
}

func newRunCmd() *cobra.Command {
	flags := &ruleFlags{}
	cmd := &cobra.Command{
		Use:   "run <file.s>",
		Short: "Assemble and run a program to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			m, err := loadMachine(args[0], cfg)
			if err != nil {
				return err
			}
			if flags.trace {
				m.SetTracer(vm.NewLineTracer(os.Stderr))
			}
			if err := checker.CheckStatic(m, rules); err != nil {
				return fmt.Errorf("rule violation: %w", err)
			}
			m.SetIO(vm.NewBufferedLineReader(os.Stdin), func(s string) { fmt.Print(s) })
			if err := m.Run(); err != nil {
				return fmt.Errorf("runtime error: %w", err)
			}
			if err := checker.CheckRecursion(m, rules); err != nil {
				return fmt.Errorf("rule violation: %w", err)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newReplCmd() *cobra.Command {
	flags := &ruleFlags{}
	cmd := &cobra.Command{
		Use:   "repl <file.s>",
		Short: "Load a program and step through it interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			m, err := loadMachine(args[0], cfg)
			if err != nil {
				return err
			}
			if flags.trace {
				m.SetTracer(vm.NewLineTracer(os.Stderr))
			}
			if err := checker.CheckStatic(m, rules); err != nil {
				return fmt.Errorf("rule violation: %w", err)
			}
			m.SetIO(vm.NewBufferedLineReader(os.Stdin), func(s string) { fmt.Print(s) })
			return runRepl(m)
		},
	}
	flags.register(cmd)
	return cmd
}

func newDumpSymbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-symbols <file.s>",
		Short: "Assemble a program and print its resolved symbol table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(args[0], config.DefaultConfig())
			if err != nil {
				return err
			}
			names := make([]string, 0)
			for _, line := range m.Instructions {
				if line.IsLabel != "" {
					names = append(names, line.IsLabel)
				}
			}
			sort.Strings(names)
			for _, name := range names {
				if v, ok := m.Symbol(name); ok {
					fmt.Printf("%-24s %d\n", name, v)
				}
			}
			return nil
		},
	}
}

func loadMachine(path string, cfg *config.Config) (*vm.Machine, error) {
	src, err := os.ReadFile(path) // #nosec G304 -- user-supplied program path
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m := vm.NewMachine()
	m.MaxCycles = int64(cfg.Execution.MaxCycles)
	m.StackSize = int64(cfg.Execution.StackSize)
	m.HeapCap = int64(cfg.Execution.HeapCap)
	if err := parser.Parse(string(src), m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// runRepl drives a simple step/continue/print console loop around a
// parsed Machine.
func runRepl(m *vm.Machine) error {
	sc := bufio.NewScanner(os.Stdin)
	fmt.Println("aasim repl - commands: step, continue, regs, quit")
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return nil
		}
		switch cmd := strings.TrimSpace(sc.Text()); cmd {
		case "step", "s":
			more, err := m.Step()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			if !more {
				fmt.Println("program finished")
			}
		case "continue", "c":
			if err := m.Run(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case "regs", "r":
			printRegs(m)
		case "quit", "q":
			return nil
		default:
			fmt.Printf("unknown command: %s\n", cmd)
		}
	}
}

func printRegs(m *vm.Machine) {
	for _, name := range []string{"x0", "x1", "x2", "x3", "x4", "x5", "x6", "x7", "sp", "fp", "lr"} {
		fmt.Printf("%-4s %d\n", name, m.Registers[name])
	}
	fmt.Printf("N=%v Z=%v\n", m.Flags.N, m.Flags.Z)
}
