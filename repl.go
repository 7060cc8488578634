package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/chzyer/readline"

	"github.com/rickroll-lang/rickroll/compiler"
	"github.com/rickroll-lang/rickroll/vm"
)

// debugger drives an Interpreter one instruction at a time, using two
// unbuffered handshake channels: the interpreter's step hook blocks on
// resume after publishing its current Frame on paused.
type debugger struct {
	breakpoints map[int]bool
	stepping    bool

	paused chan vm.Frame
	resume chan struct{}
	done   chan error
}

func newDebugger() *debugger {
	return &debugger{
		breakpoints: make(map[int]bool),
		stepping:    true, // pause before the very first instruction
		paused:      make(chan vm.Frame),
		resume:      make(chan struct{}),
		done:        make(chan error, 1),
	}
}

func (d *debugger) onInstr(f vm.Frame) {
	if d.stepping || d.breakpoints[f.Line] {
		d.paused <- f
		<-d.resume
	}
}

// runDebugREPL steps program interactively via readline, printing
// instruction/scope/queue state with repr on each pause. It is a pure
// consumer of vm.Interpreter's public API.
func runDebugREPL(program *compiler.Program) error {
	interp := vm.New(program, os.Stdout, os.Stdin)
	d := newDebugger()
	interp.SetStepHook(d.onInstr)

	go func() { d.done <- interp.Run() }()

	rl, err := readline.New("(rickroll-debug) ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("rickroll debug stepper -- step/s, continue/c, break <line>, scopes, queue, quit/q")

	frame, finished, runErr := d.waitNext()
	for {
		if finished {
			if runErr != nil {
				return runErr
			}
			fmt.Println("program finished")
			return nil
		}
		printFrame(frame)

		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "step", "s":
			d.stepping = true
			d.resume <- struct{}{}
			frame, finished, runErr = d.waitNext()

		case "continue", "c":
			d.stepping = false
			d.resume <- struct{}{}
			frame, finished, runErr = d.waitNext()

		case "break", "b":
			if len(fields) < 2 {
				fmt.Println("usage: break <line>")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Printf("invalid line number %q\n", fields[1])
				continue
			}
			d.breakpoints[n] = true
			fmt.Printf("breakpoint set at line %d\n", n)

		case "scopes":
			repr.Println(frame.Scopes)

		case "queue":
			repr.Println(frame.Queue)

		case "quit", "q":
			return nil

		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

// waitNext blocks until the interpreter either pauses at a new frame or
// finishes running entirely.
func (d *debugger) waitNext() (vm.Frame, bool, error) {
	select {
	case f := <-d.paused:
		return f, false, nil
	case err := <-d.done:
		return vm.Frame{}, true, err
	}
}

func printFrame(f vm.Frame) {
	fmt.Printf("%s @%d (line %d): %s\n", f.Func, f.IP, f.Line, f.Instr.String())
}
