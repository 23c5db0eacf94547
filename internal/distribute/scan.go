// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package distribute

import (
	"fmt"
	"strings"
)

// tokenKind classifies a scanned SQL token.
type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenQuotedIdent
	tokenString
	tokenNumber
	tokenSymbol
)

// token is one lexical unit of a SQL statement, with its byte span in the
// original text so the rewriter can splice replacements in place.
type token struct {
	kind tokenKind
	text string // raw text as written, including quotes for quoted forms
	pos  int
	end  int
}

// isSymbol reports whether t is the symbol s.
func (t token) isSymbol(s string) bool {
	return t.kind == tokenSymbol && t.text == s
}

// keyword returns the lowercased text for bare identifiers, "" otherwise.
func (t token) keyword() string {
	if t.kind != tokenIdent {
		return ""
	}
	return strings.ToLower(t.text)
}

// bareName returns the identifier without quoting, suitable for mapping
// lookups. tokenIdent returns its text as-is; quoted forms are unwrapped
// with doubled quote characters collapsed.
func (t token) bareName() string {
	switch t.kind {
	case tokenIdent:
		return t.text
	case tokenQuotedIdent:
		if len(t.text) < 2 {
			return t.text
		}
		q := t.text[0]
		inner := t.text[1 : len(t.text)-1]
		return strings.ReplaceAll(inner, string([]byte{q, q}), string(q))
	}
	return t.text
}

// scanner is a single-pass SQL lexer. It recognizes only the shapes the
// rewriter cares about (identifiers, quoted identifiers, string literals,
// numbers, comments, punctuation) and reports byte positions for everything,
// so any clause it does not understand passes through untouched.
type scanner struct {
	input string
	pos   int
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '$' || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// scanAll tokenizes the whole input. Comments are skipped but still checked
// for termination; unterminated strings, comments and quoted identifiers are
// lexical errors.
func scanAll(input string) ([]token, error) {
	s := scanner{input: input}
	var toks []token
	for {
		t, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return toks, nil
		}
		toks = append(toks, t)
	}
}

// next returns the next token. ok is false at end of input.
func (s *scanner) next() (token, bool, error) {
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '-' && s.peek(1) == '-':
			// line comment
			for s.pos < len(s.input) && s.input[s.pos] != '\n' {
				s.pos++
			}
		case c == '/' && s.peek(1) == '*':
			start := s.pos
			s.pos += 2
			for {
				if s.pos >= len(s.input) {
					return token{}, false, &ParseError{Pos: start, Msg: "unterminated block comment"}
				}
				if s.input[s.pos] == '*' && s.peek(1) == '/' {
					s.pos += 2
					break
				}
				s.pos++
			}
		case c == '\'':
			return s.scanQuoted(c, tokenString, "unterminated string literal")
		case c == '"' || c == '`':
			return s.scanQuoted(c, tokenQuotedIdent, "unterminated quoted identifier")
		case isIdentStart(c):
			start := s.pos
			for s.pos < len(s.input) && isIdentPart(s.input[s.pos]) {
				s.pos++
			}
			return token{kind: tokenIdent, text: s.input[start:s.pos], pos: start, end: s.pos}, true, nil
		case isDigit(c):
			start := s.pos
			for s.pos < len(s.input) && (isDigit(s.input[s.pos]) || s.input[s.pos] == '.') {
				s.pos++
			}
			// exponent suffix
			if s.pos < len(s.input) && (s.input[s.pos] == 'e' || s.input[s.pos] == 'E') {
				j := s.pos + 1
				if j < len(s.input) && (s.input[j] == '+' || s.input[j] == '-') {
					j++
				}
				if j < len(s.input) && isDigit(s.input[j]) {
					s.pos = j
					for s.pos < len(s.input) && isDigit(s.input[s.pos]) {
						s.pos++
					}
				}
			}
			return token{kind: tokenNumber, text: s.input[start:s.pos], pos: start, end: s.pos}, true, nil
		default:
			start := s.pos
			s.pos++
			return token{kind: tokenSymbol, text: s.input[start:s.pos], pos: start, end: s.pos}, true, nil
		}
	}
	return token{}, false, nil
}

// scanQuoted consumes a quoted region delimited by q, honoring doubled
// delimiters as escapes.
func (s *scanner) scanQuoted(q byte, kind tokenKind, unterminated string) (token, bool, error) {
	start := s.pos
	s.pos++
	for s.pos < len(s.input) {
		if s.input[s.pos] == q {
			if s.peek(1) == q {
				s.pos += 2
				continue
			}
			s.pos++
			return token{kind: kind, text: s.input[start:s.pos], pos: start, end: s.pos}, true, nil
		}
		s.pos++
	}
	return token{}, false, &ParseError{Pos: start, Msg: unterminated}
}

func (s *scanner) peek(n int) byte {
	if s.pos+n >= len(s.input) {
		return 0
	}
	return s.input[s.pos+n]
}

// ParseError reports SQL that the rewriter cannot safely process. Pos is a
// byte offset into the query text. File is attached by the batch layer.
type ParseError struct {
	File string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: parse error at byte %d: %s", e.File, e.Pos, e.Msg)
	}
	return fmt.Sprintf("parse error at byte %d: %s", e.Pos, e.Msg)
}

// UnresolvedTableError reports a table reference with no mapping entry.
// File is attached by the batch layer.
type UnresolvedTableError struct {
	File  string
	Table string
}

func (e *UnresolvedTableError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: no mapping entry for table %q", e.File, e.Table)
	}
	return fmt.Sprintf("no mapping entry for table %q", e.Table)
}

// ConfigurationError reports an invalid mapping document. It is fatal for a
// whole run: no rewrite can be trusted against a broken mapping.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "invalid mapping configuration: " + e.Msg
}
