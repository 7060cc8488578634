package vm

import (
	"github.com/rickroll-lang/rickroll/compiler"
	"github.com/rickroll-lang/rickroll/value"
)

// Frame is a snapshot of interpreter state just before one instruction
// executes, handed to the hook installed with SetStepHook (used by the
// debug stepper in repl.go).
type Frame struct {
	Func   string
	IP     int
	Line   int
	Instr  compiler.Instr
	Scopes []map[string]value.Value
	Queue  []value.Value
}

// SetStepHook installs hook, which is then called synchronously
// immediately before every instruction executes. It may block — the debug stepper uses this to
// implement step/continue/breakpoint pausing without the core execution
// loop knowing anything about stepping.
func (interp *Interpreter) SetStepHook(hook func(Frame)) {
	interp.onInstr = hook
}

func snapshotScopes(act *activation) []map[string]value.Value {
	out := make([]map[string]value.Value, len(act.scopes))
	for i, s := range act.scopes {
		m := make(map[string]value.Value, len(s))
		for k, v := range s {
			m[k] = v
		}
		out[i] = m
	}
	return out
}
