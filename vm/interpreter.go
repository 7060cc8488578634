// Package vm implements the bytecode interpreter: a scope stack per
// activation, a process-wide FIFO argument queue, a recursion depth
// limit, and a global-scope fallback so [Intro] declarations stay
// visible from [Chorus] and every Verse.
package vm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rickroll-lang/rickroll/compiler"
	"github.com/rickroll-lang/rickroll/eval"
	"github.com/rickroll-lang/rickroll/langerr"
	"github.com/rickroll-lang/rickroll/logging"
	"github.com/rickroll-lang/rickroll/value"
)

// MaxRecursionDepth bounds how many activations can be active at once,
// so a runaway recursive Verse fails cleanly instead of exhausting the
// host stack.
const MaxRecursionDepth = 10000

type scope map[string]value.Value

// activation is one function call's runtime frame.
type activation struct {
	fn       *compiler.Function
	ip       int
	scopes   []scope
	isGlobal bool
}

func (a *activation) top() scope { return a.scopes[len(a.scopes)-1] }

// Interpreter holds all state shared across activations: the function
// table, the retained [Intro] scope, the argument queue, and the I/O
// streams say/PutChar write to and ReadLine reads from.
type Interpreter struct {
	program     *compiler.Program
	globalScope scope
	argQueue    []value.Value
	depth       int

	Stdout io.Writer
	Stdin  *bufio.Reader

	onInstr func(Frame)
}

// New builds an Interpreter over a compiled program. Call logging.Setup
// beforehand to control whether function entry/exit tracing is emitted.
func New(program *compiler.Program, stdout io.Writer, stdin io.Reader) *Interpreter {
	return &Interpreter{
		program: program,
		Stdout:  stdout,
		Stdin:   bufio.NewReader(stdin),
	}
}

// Run executes [Intro] (if present) followed by [Chorus]. [Chorus]'s
// return value is discarded.
func (interp *Interpreter) Run() error {
	if fn, ok := interp.program.Functions[compiler.GlobalFunc]; ok {
		if _, err := interp.runFunction(fn, true); err != nil {
			return err
		}
	}
	main, ok := interp.program.Functions[compiler.MainFunc]
	if !ok {
		return langerr.New(langerr.Syntax, "program has no [Chorus]/[Main] function")
	}
	_, err := interp.runFunction(main, false)
	return err
}

// CallNamed is exported for the debug stepper and for tests driving a
// single function in isolation; it does not go through [Global]/[Main]
// startup.
func (interp *Interpreter) CallNamed(name string, args []value.Value) (value.Value, error) {
	fn, ok := interp.program.Functions[name]
	if !ok {
		return value.Undefined, langerr.New(langerr.Name, "unknown function %q", name)
	}
	interp.argQueue = append(interp.argQueue, args...)
	return interp.runFunction(fn, false)
}

func (interp *Interpreter) runFunction(fn *compiler.Function, isGlobal bool) (value.Value, error) {
	if interp.depth >= MaxRecursionDepth {
		return value.Undefined, langerr.New(langerr.Overflow, "recursion depth exceeded %d", MaxRecursionDepth)
	}
	interp.depth++
	defer func() { interp.depth-- }()

	logging.EnterVerse(fn.Name, interp.depth)

	act := &activation{fn: fn, isGlobal: isGlobal}
	result := value.Undefined
	var resultErr error

loop:
	for act.ip < len(fn.Code) {
		instr := fn.Code[act.ip]
		next := act.ip + 1

		if interp.onInstr != nil {
			interp.onInstr(Frame{
				Func:   fn.Name,
				IP:     act.ip,
				Line:   instr.Line,
				Instr:  instr,
				Scopes: snapshotScopes(act),
				Queue:  append([]value.Value{}, interp.argQueue...),
			})
		}

		switch instr.Op {
		case compiler.Pctx:
			act.scopes = append(act.scopes, scope{})

		case compiler.Dctx:
			if len(act.scopes) == 0 {
				resultErr = langerr.New(langerr.Syntax, "scope underflow").WithLine(instr.Line)
				break loop
			}
			if act.isGlobal && len(act.scopes) == 1 {
				// Retain [Intro]'s outermost scope instead of discarding
				// it, so read/assign can fall back to it afterward.
				interp.globalScope = act.top()
			}
			act.scopes = act.scopes[:len(act.scopes)-1]

		case compiler.OpLet:
			if _, exists := act.top()[instr.Name]; exists {
				resultErr = langerr.New(langerr.Name, "%q already declared in this scope", instr.Name).WithLine(instr.Line)
				break loop
			}
			act.top()[instr.Name] = value.Undefined

		case compiler.Set:
			v, err := eval.Eval(instr.Expr, interp.resolver(act, instr.Line), instr.Line)
			if err != nil {
				resultErr = err
				break loop
			}
			if !interp.assign(act, instr.Name, v) {
				resultErr = langerr.New(langerr.Name, "assignment to undeclared variable %q", instr.Name).WithLine(instr.Line)
				break loop
			}

		case compiler.Put:
			v, err := eval.Eval(instr.Expr, interp.resolver(act, instr.Line), instr.Line)
			if err != nil {
				resultErr = err
				break loop
			}
			fmt.Fprintln(interp.Stdout, v.String())

		case compiler.Jmp:
			next = instr.Addr

		case compiler.JmpIf:
			v, err := eval.Eval(instr.Expr, interp.resolver(act, instr.Line), instr.Line)
			if err != nil {
				resultErr = err
				break loop
			}
			if v.Kind() != value.Bool {
				resultErr = langerr.New(langerr.IllegalArgument, "condition must be boolean").WithLine(instr.Line)
				break loop
			}
			if v.Bool() {
				next = instr.Addr
			}

		case compiler.Ret:
			var v value.Value = value.Undefined
			if instr.Expr != nil {
				var err error
				v, err = eval.Eval(instr.Expr, interp.resolver(act, instr.Line), instr.Line)
				if err != nil {
					resultErr = err
					break loop
				}
			}
			result = v
			break loop

		case compiler.Exp:
			if len(interp.argQueue) == 0 {
				resultErr = langerr.New(langerr.IllegalArgument, "missing argument for parameter %q", instr.Name).WithLine(instr.Line)
				break loop
			}
			v := interp.argQueue[0]
			interp.argQueue = interp.argQueue[1:]
			act.top()[instr.Name] = v

		case compiler.Pushq:
			v, err := interp.read(act, instr.Name, instr.Line)
			if err != nil {
				resultErr = err
				break loop
			}
			interp.argQueue = append(interp.argQueue, v.CloneArray())

		case compiler.Call:
			if _, err := interp.dispatch(instr.Func); err != nil {
				resultErr = langerr.Wrap(err, instr.Func, instr.Line)
				break loop
			}

		case compiler.Scall:
			v, err := interp.dispatch(instr.Func)
			if err != nil {
				resultErr = langerr.Wrap(err, instr.Func, instr.Line)
				break loop
			}
			if !interp.assign(act, instr.Var, v) {
				resultErr = langerr.New(langerr.Name, "assignment to undeclared variable %q", instr.Var).WithLine(instr.Line)
				break loop
			}

		default:
			resultErr = langerr.New(langerr.Syntax, "unknown instruction").WithLine(instr.Line)
			break loop
		}

		act.ip = next
	}

	logging.ExitVerse(fn.Name, interp.depth, resultErr != nil)
	return result, resultErr
}

// dispatch calls name (user function, shadowed-aware, else a builtin),
// draining exactly the arguments it needs from the queue.
func (interp *Interpreter) dispatch(name string) (value.Value, error) {
	if fn, ok := interp.program.Functions[name]; ok {
		if interp.depth >= MaxRecursionDepth {
			return value.Undefined, langerr.New(langerr.Overflow, "recursion depth exceeded %d", MaxRecursionDepth)
		}
		if len(interp.argQueue) != len(fn.Params) {
			return value.Undefined, langerr.New(langerr.IllegalArgument, "%s expects %d argument(s), got %d", name, len(fn.Params), len(interp.argQueue))
		}
		return interp.runFunction(fn, false)
	}
	if b, ok := builtins[name]; ok {
		args := interp.argQueue
		interp.argQueue = nil
		return b(interp, args)
	}
	return value.Undefined, langerr.New(langerr.Name, "call to unknown function %q", name)
}

// resolver adapts an activation into an eval.Resolver. Expressions never
// carry their own line number at the token level, so the resolver reports
// the enclosing statement's line on a failed lookup.
func (interp *Interpreter) resolver(act *activation, line int) eval.Resolver {
	return resolverFunc(func(name string) (value.Value, error) {
		return interp.read(act, name, line)
	})
}

type resolverFunc func(name string) (value.Value, error)

func (f resolverFunc) Get(name string) (value.Value, error) { return f(name) }

// read looks up a variable: the innermost scope of the current
// activation wins, searched outward, falling back to [Intro]'s retained
// scope if still unbound.
func (interp *Interpreter) read(act *activation, name string, line int) (value.Value, error) {
	for i := len(act.scopes) - 1; i >= 0; i-- {
		if v, ok := act.scopes[i][name]; ok {
			return v, nil
		}
	}
	if interp.globalScope != nil {
		if v, ok := interp.globalScope[name]; ok {
			return v, nil
		}
	}
	return value.Undefined, langerr.New(langerr.Name, "unbound variable %q", name).WithLine(line)
}

// assign mutates the first scope (innermost outward, then [Intro]'s
// retained scope) in which name is already bound; it never creates a
// new binding. Reports whether a binding was found.
func (interp *Interpreter) assign(act *activation, name string, v value.Value) bool {
	for i := len(act.scopes) - 1; i >= 0; i-- {
		if _, ok := act.scopes[i][name]; ok {
			act.scopes[i][name] = v
			return true
		}
	}
	if interp.globalScope != nil {
		if _, ok := interp.globalScope[name]; ok {
			interp.globalScope[name] = v
			return true
		}
	}
	return false
}
