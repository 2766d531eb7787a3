// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrSyntax reports malformed .map source text.
var ErrSyntax = errors.New("map syntax error")

type parseFlag int

const (
	parseNormal   parseFlag = 0
	parseSameLine parseFlag = 1 << iota
	parseComment
	parseOptional
	parsePeek
)

// tokenizer walks .map source text one token at a time. Tokens are
// whitespace separated words or quoted strings; braces and parentheses
// are tokens of their own only when whitespace surrounds them. Line
// numbers are tracked for error reports.
type tokenizer struct {
	data  string
	pos   int
	line  int
	token string
}

func newTokenizer(data string) *tokenizer {
	return &tokenizer{data: data, line: 1}
}

func (t *tokenizer) atEnd() bool {
	return t.pos >= len(t.data)
}

// skipSpace advances past whitespace. With crossLines false it stops at
// a newline without consuming it.
func (t *tokenizer) skipSpace(crossLines bool) bool {
	for !t.atEnd() {
		c := t.data[t.pos]
		if c == '\n' {
			if !crossLines {
				return false
			}
			t.line++
			t.pos++
			continue
		}
		if c > ' ' {
			return true
		}
		t.pos++
	}
	return false
}

// next reads the next token per the flags. It reports whether a token
// was read and returns an error for conditions the flags make fatal.
func (t *tokenizer) next(flags parseFlag) (bool, error) {
	save := *t

	crossLines := flags&parseSameLine == 0
	for {
		if !t.skipSpace(crossLines) {
			if flags&parsePeek != 0 {
				*t = save
			}
			if flags&(parseOptional|parsePeek) != 0 {
				return false, nil
			}
			if crossLines {
				return false, errors.Wrapf(ErrSyntax, "line %d: unexpected end of file", t.line)
			}
			return false, errors.Wrapf(ErrSyntax, "line %d: unexpected end of line", t.line)
		}

		if t.data[t.pos] == '/' && t.pos+1 < len(t.data) && t.data[t.pos+1] == '/' {
			start := t.pos
			for !t.atEnd() && t.data[t.pos] != '\n' {
				t.pos++
			}
			if flags&parseComment != 0 {
				t.token = strings.TrimRight(t.data[start:t.pos], "\r")
				if flags&parsePeek != 0 {
					*t = save
				}
				return true, nil
			}
			continue
		}
		break
	}

	if t.data[t.pos] == '"' {
		t.pos++
		start := t.pos
		for {
			if t.atEnd() {
				return false, errors.Wrapf(ErrSyntax, "line %d: unterminated string", t.line)
			}
			c := t.data[t.pos]
			if c == '"' {
				break
			}
			if c == '\n' {
				t.line++
			}
			t.pos++
		}
		t.token = t.data[start:t.pos]
		t.pos++
	} else {
		start := t.pos
		for !t.atEnd() {
			c := t.data[t.pos]
			if c <= ' ' || c == '"' {
				break
			}
			t.pos++
		}
		t.token = t.data[start:t.pos]
	}

	if flags&parsePeek != 0 {
		tok := t.token
		*t = save
		t.token = tok
	}
	return true, nil
}

// expect reads the next token and checks it against want.
func (t *tokenizer) expect(want string, flags parseFlag) error {
	if _, err := t.next(flags); err != nil {
		return err
	}
	if t.token != want {
		return errors.Wrapf(ErrSyntax, "line %d: expected %q, got %q", t.line, want, t.token)
	}
	return nil
}
