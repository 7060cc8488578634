package compiler

import (
	"github.com/rickroll-lang/rickroll/ir"
	"github.com/rickroll-lang/rickroll/langerr"
)

// pendingBlock tracks an open Check (if or while -- the compiler can't
// tell which until it sees the terminator) awaiting its close.
type pendingBlock struct {
	checkAddr    int // instruction index of the Check's pctx
	jmpPatchAddr int // instruction index of the placeholder jmp to the block's end
}

// Compiler lowers an IR item sequence into a Program.
type Compiler struct {
	functions map[string]*Function
	current   *Function
	blocks    []pendingBlock
}

// New returns a Compiler ready to consume an IR item sequence.
func New() *Compiler {
	return &Compiler{functions: make(map[string]*Function)}
}

// Compile lowers an IR item sequence into a Program.
func Compile(items []ir.Item) (*Program, error) {
	c := New()
	for _, item := range items {
		if err := c.compileItem(item); err != nil {
			return nil, err
		}
	}
	c.closeCurrent()
	return &Program{Functions: c.functions}, nil
}

func (c *Compiler) compileItem(item ir.Item) error {
	switch item.Kind {
	case ir.Intro:
		c.closeCurrent()
		c.openFunction(GlobalFunc, nil)
		c.emit(Instr{Op: Pctx, Line: item.Line})
		return nil

	case ir.Chorus:
		c.closeCurrent()
		c.openFunction(MainFunc, nil)
		c.emit(Instr{Op: Pctx, Line: item.Line})
		return nil

	case ir.Verse:
		c.closeCurrent()
		c.openFunction(item.FuncName, item.Params)
		c.emit(Instr{Op: Pctx, Line: item.Line})
		for _, p := range item.Params {
			c.emit(Instr{Op: Exp, Name: p, Line: item.Line})
		}
		return nil

	case ir.Let:
		if err := c.requireFunc(item.Line); err != nil {
			return err
		}
		c.emit(Instr{Op: OpLet, Name: item.Var, Line: item.Line})
		return nil

	case ir.Assign:
		if err := c.requireFunc(item.Line); err != nil {
			return err
		}
		c.emit(Instr{Op: Set, Name: item.Var, Expr: item.Expr, Line: item.Line})
		return nil

	case ir.Say:
		if err := c.requireFunc(item.Line); err != nil {
			return err
		}
		c.emit(Instr{Op: Put, Expr: item.Expr, Line: item.Line})
		return nil

	case ir.Check:
		if err := c.requireFunc(item.Line); err != nil {
			return err
		}
		checkAddr := len(c.current.Code)
		c.emit(Instr{Op: Pctx, Line: item.Line})
		jmpIfAddr := len(c.current.Code)
		c.emit(Instr{Op: JmpIf, Expr: item.Expr, Addr: jmpIfAddr + 2, Line: item.Line})
		jmpPatchAddr := len(c.current.Code)
		c.emit(Instr{Op: Jmp, Line: item.Line}) // Addr patched at block close
		c.blocks = append(c.blocks, pendingBlock{checkAddr: checkAddr, jmpPatchAddr: jmpPatchAddr})
		return nil

	case ir.IfEnd:
		blk, err := c.popBlock(item.Line)
		if err != nil {
			return err
		}
		c.emit(Instr{Op: Dctx, Line: item.Line})
		c.current.Code[blk.jmpPatchAddr].Addr = len(c.current.Code)
		return nil

	case ir.WhileEnd:
		blk, err := c.popBlock(item.Line)
		if err != nil {
			return err
		}
		c.emit(Instr{Op: Dctx, Line: item.Line})
		c.emit(Instr{Op: Jmp, Addr: blk.checkAddr, Line: item.Line})
		c.current.Code[blk.jmpPatchAddr].Addr = len(c.current.Code)
		return nil

	case ir.Run:
		if err := c.requireFunc(item.Line); err != nil {
			return err
		}
		if err := c.checkCallable(item.FuncName, item.Line); err != nil {
			return err
		}
		for _, a := range item.Args {
			c.emit(Instr{Op: Pushq, Name: a, Line: item.Line})
		}
		c.emit(Instr{Op: Call, Func: item.FuncName, Line: item.Line})
		return nil

	case ir.RunAssign:
		if err := c.requireFunc(item.Line); err != nil {
			return err
		}
		if err := c.checkCallable(item.FuncName, item.Line); err != nil {
			return err
		}
		for _, a := range item.Args {
			c.emit(Instr{Op: Pushq, Name: a, Line: item.Line})
		}
		c.emit(Instr{Op: Scall, Func: item.FuncName, Var: item.Var, Line: item.Line})
		return nil

	case ir.Return:
		if c.current == nil {
			return langerr.New(langerr.Syntax, "return outside any function").WithLine(item.Line)
		}
		c.emit(Instr{Op: Ret, Expr: item.Expr, Line: item.Line})
		return nil

	default:
		return langerr.New(langerr.Syntax, "unhandled IR item kind %d", item.Kind).WithLine(item.Line)
	}
}

func (c *Compiler) openFunction(name string, params []string) {
	fn := &Function{Name: name, Params: params}
	c.functions[name] = fn // pre-registered so self-calls resolve mid-body
	c.current = fn
}

// closeCurrent finalizes the function under construction, emitting a
// trailing `dctx; ret` so a function whose body never reaches an
// explicit return still unwinds its scope and yields UNDEFINED.
func (c *Compiler) closeCurrent() {
	if c.current == nil {
		return
	}
	c.emit(Instr{Op: Dctx})
	c.emit(Instr{Op: Ret, Expr: nil})
	c.current = nil
}

func (c *Compiler) emit(instr Instr) {
	c.current.Code = append(c.current.Code, instr)
}

func (c *Compiler) requireFunc(line int) error {
	if c.current == nil {
		return langerr.New(langerr.Syntax, "statement outside any function").WithLine(line)
	}
	return nil
}

func (c *Compiler) popBlock(line int) (pendingBlock, error) {
	if len(c.blocks) == 0 {
		return pendingBlock{}, langerr.New(langerr.Syntax, "unmatched block terminator").WithLine(line)
	}
	blk := c.blocks[len(c.blocks)-1]
	c.blocks = c.blocks[:len(c.blocks)-1]
	return blk, nil
}

// checkCallable enforces that a called function is already registered
// (built-ins are always considered bound) -- direct self-recursion
// works because openFunction registers a Verse's name before compiling
// its body, but a call to any other not-yet-declared function fails.
func (c *Compiler) checkCallable(name string, line int) error {
	if BuiltinNames[name] {
		return nil
	}
	if _, ok := c.functions[name]; ok {
		return nil
	}
	return langerr.New(langerr.Name, "call to undeclared function %q", name).WithLine(line)
}
