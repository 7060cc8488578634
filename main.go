package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/rickroll-lang/rickroll/compiler"
	"github.com/rickroll-lang/rickroll/langerr"
	"github.com/rickroll-lang/rickroll/lexer"
	"github.com/rickroll-lang/rickroll/logging"
	"github.com/rickroll-lang/rickroll/vm"
)

const (
	exitSuccess = 0
	exitError   = 1
)

type options struct {
	LogLevel string `long:"loglevel" description:"Log level: none, info, debug" default:"none" choice:"none" choice:"info" choice:"debug"`
}

var opts options
var flagsParser = flags.NewParser(&opts, flags.Default)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	flagsParser.CommandHandler = func(command flags.Commander, args []string) error {
		logging.Setup(logging.LogLevel(opts.LogLevel))
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}

	if _, err := flagsParser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return exitSuccess
		}
		var le *langerr.Error
		if langerr.As(err, &le) {
			logging.LogErr(le, "command failed")
			fmt.Fprintln(os.Stderr, le.Report())
		} else {
			logging.LogErr(err, "command failed")
			fmt.Fprintln(os.Stderr, err)
		}
		return exitError
	}
	return exitSuccess
}

// loadProgram lexes and compiles a source file into a function table.
func loadProgram(path string) (*compiler.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	logging.Phase("lex", path)
	items, err := lexer.Lex(string(source))
	if err != nil {
		return nil, err
	}
	logging.Phase("compile", path)
	return compiler.Compile(items)
}

type RunCommand struct {
	Args struct {
		File string `positional-arg-name:"FILE" required:"yes"`
	} `positional-args:"yes"`
}

func (cmd *RunCommand) Execute(args []string) error {
	program, err := loadProgram(cmd.Args.File)
	if err != nil {
		return err
	}
	logging.Phase("run", cmd.Args.File)
	interp := vm.New(program, os.Stdout, os.Stdin)
	return interp.Run()
}

type CompileCommand struct {
	Dump bool `short:"d" long:"dump" description:"Print the compiled function table and instruction listing"`
	Args struct {
		File string `positional-arg-name:"FILE" required:"yes"`
	} `positional-args:"yes"`
}

func (cmd *CompileCommand) Execute(args []string) error {
	program, err := loadProgram(cmd.Args.File)
	if err != nil {
		return err
	}
	if cmd.Dump {
		dumpProgram(os.Stdout, program)
	}
	return nil
}

type DebugCommand struct {
	Args struct {
		File string `positional-arg-name:"FILE" required:"yes"`
	} `positional-args:"yes"`
}

func (cmd *DebugCommand) Execute(args []string) error {
	program, err := loadProgram(cmd.Args.File)
	if err != nil {
		return err
	}
	return runDebugREPL(program)
}

func init() {
	mustAddCommand("run", "Run a rickroll program", "Lex, compile, and execute a .rr source file.", &RunCommand{})
	mustAddCommand("compile", "Compile a rickroll program", "Lex and compile a .rr source file without running it.", &CompileCommand{})
	mustAddCommand("debug", "Step a rickroll program", "Interactively single-step a compiled program's bytecode.", &DebugCommand{})
}

func mustAddCommand(name, short, long string, cmd flags.Commander) {
	if _, err := flagsParser.AddCommand(name, short, long, cmd); err != nil {
		panic(err)
	}
}
