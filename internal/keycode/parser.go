package keycode

import (
	"fmt"
	"strings"
	"unicode"
)

// expr is a parsed keymap token: a name, optionally applied to arguments.
// "LT(1, KC_SPC)" parses to {Name: "LT", Args: [{Name: "1"}, {Name: "KC_SPC"}]}.
type expr struct {
	Name string
	Args []expr
	Call bool
}

// String renders the expression back in canonical form.
func (e expr) String() string {
	if !e.Call {
		return e.Name
	}
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Name + "(" + strings.Join(args, ", ") + ")"
}

// syntaxError reports a malformed token with the offset of the problem.
type syntaxError struct {
	Offset int
	Msg    string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

// parseExpr parses a whole token.
func parseExpr(token string) (expr, error) {
	p := &exprParser{src: token}
	p.skipSpace()
	e, err := p.expr()
	if err != nil {
		return expr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return expr{}, &syntaxError{Offset: p.pos, Msg: fmt.Sprintf("unexpected %q", p.src[p.pos])}
	}
	return e, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func isNameByte(b byte) bool {
	r := rune(b)
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// expr = name [ "(" [ expr { "," expr } ] ")" ]
func (p *exprParser) expr() (expr, error) {
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		if p.pos >= len(p.src) {
			return expr{}, &syntaxError{Offset: p.pos, Msg: "unexpected end of token"}
		}
		return expr{}, &syntaxError{Offset: p.pos, Msg: fmt.Sprintf("unexpected %q", p.src[p.pos])}
	}
	e := expr{Name: p.src[start:p.pos]}

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '(' {
		return e, nil
	}
	e.Call = true
	p.pos++
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ')' {
		p.pos++
		return e, nil
	}
	for {
		p.skipSpace()
		arg, err := p.expr()
		if err != nil {
			return expr{}, err
		}
		e.Args = append(e.Args, arg)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return expr{}, &syntaxError{Offset: p.pos, Msg: "missing ')'"}
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return e, nil
		default:
			return expr{}, &syntaxError{Offset: p.pos, Msg: fmt.Sprintf("unexpected %q", p.src[p.pos])}
		}
	}
}
