// Package compiler lowers IR into a flat bytecode instruction set,
// indexed by function name.
package compiler

import (
	"fmt"
	"strings"

	"github.com/rickroll-lang/rickroll/exprtoken"
)

// Op names one bytecode operation.
type Op int

const (
	Pctx Op = iota
	Dctx
	OpLet
	Set
	Put
	Jmp
	JmpIf
	Ret
	Exp
	Pushq
	Scall
	Call
)

func (op Op) String() string {
	names := [...]string{"pctx", "dctx", "let", "set", "put", "jmp", "jmpif", "ret", "exp", "pushq", "scall", "call"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// Instr is one flat bytecode operation with whichever operands its Op
// uses; unused fields are zero.
type Instr struct {
	Op   Op
	Name string // let/set/exp/pushq: variable name
	Expr []exprtoken.Token
	Addr int    // jmp/jmpif: target instruction index within the same function
	Func string // call/scall: callee name
	Var  string // scall: variable receiving the return value
	Line int    // originating source line, for Traceback reconstruction
}

// Function is one entry in the function table: its formal parameter
// names, in declaration order, and its instruction sequence.
type Function struct {
	Name   string
	Params []string
	Code   []Instr
}

// Program is the compiled function table. MainFunc and GlobalFunc name
// the two magic functions every program is built from: [Chorus] and the
// optional [Intro].
const (
	MainFunc   = "[Main]"
	GlobalFunc = "[Global]"
)

type Program struct {
	Functions map[string]*Function
}

// String renders one instruction in a disassembly-listing style, used by
// the `compile -d` dump and the debug stepper.
func (ins Instr) String() string {
	var b strings.Builder
	b.WriteString(ins.Op.String())
	switch ins.Op {
	case OpLet, Exp, Pushq:
		fmt.Fprintf(&b, " %s", ins.Name)
	case Set:
		fmt.Fprintf(&b, " %s %s", ins.Name, formatExpr(ins.Expr))
	case Put, JmpIf, Ret:
		if ins.Expr != nil {
			fmt.Fprintf(&b, " %s", formatExpr(ins.Expr))
		}
		if ins.Op == JmpIf {
			fmt.Fprintf(&b, " -> %d", ins.Addr)
		}
	case Jmp:
		fmt.Fprintf(&b, " -> %d", ins.Addr)
	case Call:
		fmt.Fprintf(&b, " %s", ins.Func)
	case Scall:
		fmt.Fprintf(&b, " %s <- %s", ins.Var, ins.Func)
	}
	return b.String()
}

func formatExpr(toks []exprtoken.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// BuiltinNames lists the native functions every program can call
// without declaring them. They are always considered bound for the
// forward-reference check, and are shadowed by any user function
// declared with the same name.
var BuiltinNames = map[string]bool{
	"ArrayOf":      true,
	"ArrayLength":  true,
	"ArrayPush":    true,
	"ArrayPop":     true,
	"ArrayReplace": true,
	"PutChar":      true,
	"ReadLine":     true,
}
