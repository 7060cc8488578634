package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/rickroll-lang/rickroll/compiler"
)

// dumpProgram writes a human-readable disassembly of every function in
// program, one instruction per line, to w. This is diagnostic output for
// `rickroll compile -d`; bytecode is never written back out as a file.
func dumpProgram(w io.Writer, program *compiler.Program) {
	names := orderedFunctionNames(program)
	for _, name := range names {
		fn := program.Functions[name]
		fmt.Fprintf(w, "%s(%s):\n", fn.Name, joinParams(fn.Params))
		for i, ins := range fn.Code {
			fmt.Fprintf(w, "  %4d  %s\n", i, ins.String())
		}
	}
}

func orderedFunctionNames(program *compiler.Program) []string {
	var rest []string
	for name := range program.Functions {
		if name == compiler.GlobalFunc || name == compiler.MainFunc {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)

	var names []string
	if _, ok := program.Functions[compiler.GlobalFunc]; ok {
		names = append(names, compiler.GlobalFunc)
	}
	if _, ok := program.Functions[compiler.MainFunc]; ok {
		names = append(names, compiler.MainFunc)
	}
	return append(names, rest...)
}

func joinParams(params []string) string {
	out := ""
	for i, p := range params {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
