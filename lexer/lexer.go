// Package lexer turns rickroll source text into the ir package's
// statement records, via a line-oriented phrase-table state machine:
// each source line is matched whole against an ordered table of
// anchored regular expressions, one per statement shape.
package lexer

import (
	"regexp"
	"strings"

	"github.com/rickroll-lang/rickroll/exprtoken"
	"github.com/rickroll-lang/rickroll/ir"
	"github.com/rickroll-lang/rickroll/langerr"
)

type blockKind int

const (
	blockNone blockKind = iota
	blockIntro
	blockVerse
	blockChorus
)

var (
	reIntro      = regexp.MustCompile(`^\[Intro\]$`)
	reChorus     = regexp.MustCompile(`^\[Chorus\]$`)
	reVerse      = regexp.MustCompile(`^\[Verse ([A-Za-z_]+)\]$`)
	reParamsUp   = regexp.MustCompile(`^\(Ooh give you up\)$`)
	reParams     = regexp.MustCompile(`^\(Ooh give you (.+)\)$`)
	reLet        = regexp.MustCompile(`^Never gonna let ([A-Za-z_]+) down$`)
	reRunAssign  = regexp.MustCompile(`^\(Ooh give you ([A-Za-z_]+)\) Never gonna run ([A-Za-z_]+) and desert (.+)$`)
	reReturn     = regexp.MustCompile(`^\(Ooh\) Never gonna give, never gonna give \(give you (.+)\)$`)
	reRun        = regexp.MustCompile(`^Never gonna run ([A-Za-z_]+) and desert (.+)$`)
	reAssign     = regexp.MustCompile(`^Never gonna give ([A-Za-z_]+) (.+)$`)
	reSay        = regexp.MustCompile(`^Never gonna say (.+)$`)
	reCheck      = regexp.MustCompile(`^Inside we both know (.+)$`)
	reIfEnd      = regexp.MustCompile(`^Your heart's been aching but you're too shy to say it$`)
	reWhileEnd   = regexp.MustCompile(`^We know the game and we're gonna play it$`)
)

// Lex scans source line by line and returns the IR item sequence.
func Lex(source string) ([]ir.Item, error) {
	l := &lexState{}
	lines := strings.Split(source, "\n")
	for idx, raw := range lines {
		lineNo := idx + 1
		line := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := l.consume(line, lineNo); err != nil {
			return nil, err
		}
	}
	if l.expectingParams {
		return nil, langerr.New(langerr.Syntax, "[Verse %s] has no parameter line", l.pendingVerse).WithLine(l.pendingVerseLine)
	}
	return l.items, nil
}

type lexState struct {
	items            []ir.Item
	block            blockKind
	sawIntro         bool
	sawChorus        bool
	sawAnyBlock      bool
	expectingParams  bool
	pendingVerse     string
	pendingVerseLine int
}

func (l *lexState) consume(line string, lineNo int) error {
	if l.expectingParams {
		return l.consumeParams(line, lineNo)
	}

	switch {
	case reIntro.MatchString(line):
		if l.sawAnyBlock {
			return langerr.New(langerr.Syntax, "[Intro] must be the first block").WithLine(lineNo)
		}
		if l.sawIntro {
			return langerr.New(langerr.Syntax, "more than one [Intro] block").WithLine(lineNo)
		}
		l.sawIntro = true
		l.sawAnyBlock = true
		l.block = blockIntro
		l.items = append(l.items, ir.Item{Kind: ir.Intro, Line: lineNo})
		return nil

	case reChorus.MatchString(line):
		if l.sawChorus {
			return langerr.New(langerr.Syntax, "more than one [Chorus] block").WithLine(lineNo)
		}
		l.sawChorus = true
		l.sawAnyBlock = true
		l.block = blockChorus
		l.items = append(l.items, ir.Item{Kind: ir.Chorus, Line: lineNo})
		return nil

	case reVerse.MatchString(line):
		m := reVerse.FindStringSubmatch(line)
		l.sawAnyBlock = true
		l.block = blockVerse
		l.expectingParams = true
		l.pendingVerse = m[1]
		l.pendingVerseLine = lineNo
		l.items = append(l.items, ir.Item{Kind: ir.Verse, Line: lineNo, FuncName: m[1]})
		return nil

	case reRunAssign.MatchString(line):
		m := reRunAssign.FindStringSubmatch(line)
		if err := l.requireBlock(lineNo); err != nil {
			return err
		}
		l.items = append(l.items, ir.Item{
			Kind: ir.RunAssign, Line: lineNo,
			Var: m[1], FuncName: m[2], Args: splitArgs(m[3]),
		})
		return nil

	case reReturn.MatchString(line):
		m := reReturn.FindStringSubmatch(line)
		if err := l.requireBlock(lineNo); err != nil {
			return err
		}
		toks, err := exprtoken.Tokenize(m[1], lineNo)
		if err != nil {
			return err
		}
		l.items = append(l.items, ir.Item{Kind: ir.Return, Line: lineNo, Expr: toks})
		return nil

	case reLet.MatchString(line):
		m := reLet.FindStringSubmatch(line)
		if err := l.requireBlock(lineNo); err != nil {
			return err
		}
		l.items = append(l.items, ir.Item{Kind: ir.Let, Line: lineNo, Var: m[1]})
		return nil

	case reRun.MatchString(line):
		m := reRun.FindStringSubmatch(line)
		if err := l.requireBlock(lineNo); err != nil {
			return err
		}
		l.items = append(l.items, ir.Item{Kind: ir.Run, Line: lineNo, FuncName: m[1], Args: splitArgs(m[2])})
		return nil

	case reAssign.MatchString(line):
		m := reAssign.FindStringSubmatch(line)
		if err := l.requireBlock(lineNo); err != nil {
			return err
		}
		toks, err := exprtoken.Tokenize(m[2], lineNo)
		if err != nil {
			return err
		}
		l.items = append(l.items, ir.Item{Kind: ir.Assign, Line: lineNo, Var: m[1], Expr: toks})
		return nil

	case reSay.MatchString(line):
		m := reSay.FindStringSubmatch(line)
		if err := l.requireBlock(lineNo); err != nil {
			return err
		}
		toks, err := exprtoken.Tokenize(m[1], lineNo)
		if err != nil {
			return err
		}
		l.items = append(l.items, ir.Item{Kind: ir.Say, Line: lineNo, Expr: toks})
		return nil

	case reCheck.MatchString(line):
		m := reCheck.FindStringSubmatch(line)
		if err := l.requireBlock(lineNo); err != nil {
			return err
		}
		toks, err := exprtoken.Tokenize(m[1], lineNo)
		if err != nil {
			return err
		}
		l.items = append(l.items, ir.Item{Kind: ir.Check, Line: lineNo, Expr: toks})
		return nil

	case reIfEnd.MatchString(line):
		if err := l.requireBlock(lineNo); err != nil {
			return err
		}
		l.items = append(l.items, ir.Item{Kind: ir.IfEnd, Line: lineNo})
		return nil

	case reWhileEnd.MatchString(line):
		if err := l.requireBlock(lineNo); err != nil {
			return err
		}
		l.items = append(l.items, ir.Item{Kind: ir.WhileEnd, Line: lineNo})
		return nil

	default:
		return langerr.New(langerr.IllegalArgument, "unrecognised statement %q", line).WithLine(lineNo)
	}
}

func (l *lexState) consumeParams(line string, lineNo int) error {
	var params []string
	switch {
	case reParamsUp.MatchString(line):
		params = nil
	case reParams.MatchString(line):
		m := reParams.FindStringSubmatch(line)
		params = splitArgs(m[1])
	default:
		return langerr.New(langerr.Syntax, "expected parameter spec after [Verse %s]", l.pendingVerse).WithLine(lineNo)
	}
	l.expectingParams = false
	// the Verse item was already appended; attach params to it.
	l.items[len(l.items)-1].Params = params
	return nil
}

func (l *lexState) requireBlock(lineNo int) error {
	if l.block == blockNone {
		return langerr.New(langerr.Syntax, "statement outside any block").WithLine(lineNo)
	}
	return nil
}

func splitArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "you" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
