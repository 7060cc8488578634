// Package ir defines the line-tagged intermediate representation the
// lexer produces and the compiler consumes.
package ir

import "github.com/rickroll-lang/rickroll/exprtoken"

// Kind tags which statement variant an Item holds.
type Kind int

const (
	Intro Kind = iota
	Chorus
	Verse
	Let
	Assign
	Say
	Check
	WhileEnd
	IfEnd
	Run
	RunAssign
	Return
)

// Item is one line-tagged IR record. Only the fields relevant to Kind are
// populated.
type Item struct {
	Kind Kind
	Line int

	// Verse
	FuncName string
	Params   []string

	// Let / Assign
	Var string

	// Assign / Say / Check / Return
	Expr []exprtoken.Token

	// Run / RunAssign
	Args []string
}
