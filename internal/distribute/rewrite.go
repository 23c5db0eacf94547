// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package distribute

import (
	"strings"
)

// reserved holds the SQL keywords the collector must never mistake for a
// table name or alias. Function-like words (substr, extract, trim, ...) are
// deliberately absent: a "(" after a non-reserved identifier marks a function
// call, whose interior FROM keywords (extract(year from ...)) are ignored.
var reserved = map[string]bool{
	"select": true, "from": true, "where": true, "join": true,
	"inner": true, "outer": true, "left": true, "right": true,
	"full": true, "cross": true, "natural": true, "lateral": true,
	"on": true, "using": true, "as": true, "and": true, "or": true,
	"not": true, "in": true, "exists": true, "between": true,
	"like": true, "is": true, "null": true, "group": true, "by": true,
	"having": true, "order": true, "union": true, "all": true,
	"intersect": true, "except": true, "limit": true, "offset": true,
	"fetch": true, "first": true, "next": true, "rows": true,
	"row": true, "only": true, "with": true, "recursive": true,
	"case": true, "when": true, "then": true, "else": true, "end": true,
	"distinct": true, "over": true, "partition": true, "window": true,
	"asc": true, "desc": true, "nulls": true, "last": true,
	"interval": true, "cast": true, "values": true, "top": true,
	"grouping": true, "rollup": true, "cube": true, "sets": true,
	"any": true, "some": true,
}

// fromEnders close the innermost FROM list when seen at its nesting depth.
var fromEnders = map[string]bool{
	"where": true, "group": true, "having": true, "order": true,
	"union": true, "intersect": true, "except": true,
	"limit": true, "offset": true, "fetch": true, "window": true,
}

// tableRef is one table occurrence found in FROM/JOIN position.
type tableRef struct {
	name      token
	alias     string
	depth     int // paren nesting depth
	scope     int // the SELECT scope the reference binds in
	qualified bool // already carries a dotted qualifier
}

// Rewrite records one substitution performed on a query.
type Rewrite struct {
	// Table is the bare table name as written.
	Table string
	// Qualified is the text the reference was replaced with.
	Qualified string
	// Pos is the byte offset of the original reference.
	Pos int
	// AddedAlias is the alias appended to keep column references valid,
	// empty when none was needed.
	AddedAlias string
}

// Result is the outcome of distributing one query.
type Result struct {
	Text     string
	Rewrites []Rewrite
}

// Distribute rewrites every bare table reference in query according to the
// mapping. It is a pure function of its inputs: formatting, literals and
// clauses without table identifiers come back byte-identical, and running
// the output through Distribute again changes nothing (qualified references
// are recognized and skipped).
func Distribute(query string, m *Mapping) (Result, error) {
	toks, err := scanAll(query)
	if err != nil {
		return Result{}, err
	}
	if len(toks) == 0 {
		return Result{}, &ParseError{Pos: 0, Msg: "empty statement"}
	}
	refs, err := collectRefs(toks)
	if err != nil {
		return Result{}, err
	}
	ctes := cteNames(toks)

	type planned struct {
		ref   tableRef
		entry Entry
		alias string
	}
	var plan []planned
	// Count bare names per (scope, name) so a rewritten unaliased reference
	// that collides with a same-named table in its scope gets a
	// deterministic alias (the original table name).
	type scopeKey struct {
		scope int
		name  string
	}
	scopeCount := map[scopeKey]int{}
	for _, r := range refs {
		scopeCount[scopeKey{r.scope, strings.ToLower(r.name.bareName())}]++
	}
	for _, r := range refs {
		if r.qualified {
			continue
		}
		bare := r.name.bareName()
		if _, isCTE := ctes[strings.ToLower(bare)]; isCTE {
			continue
		}
		entry, ok := m.Lookup(bare)
		if !ok {
			if m.Policy() == PolicyKeep {
				continue
			}
			return Result{}, &UnresolvedTableError{Table: bare}
		}
		p := planned{ref: r, entry: entry}
		if r.alias == "" && scopeCount[scopeKey{r.scope, strings.ToLower(bare)}] > 1 {
			p.alias = bare
		}
		plan = append(plan, p)
	}

	if len(plan) == 0 {
		return Result{Text: query}, nil
	}

	var b strings.Builder
	b.Grow(len(query) + len(plan)*16)
	res := Result{}
	last := 0
	for _, p := range plan {
		t := p.ref.name
		b.WriteString(query[last:t.pos])
		qualified := p.entry.Qualifier() + "." + t.text
		b.WriteString(qualified)
		if p.alias != "" {
			b.WriteString(" " + p.alias)
		}
		last = t.end
		res.Rewrites = append(res.Rewrites, Rewrite{
			Table:      t.bareName(),
			Qualified:  qualified,
			Pos:        t.pos,
			AddedAlias: p.alias,
		})
	}
	b.WriteString(query[last:])
	res.Text = b.String()
	return res, nil
}

// collectRefs walks the token stream once and returns every table reference
// in FROM/JOIN position, at any nesting depth, tagged with its depth and
// trailing alias. Parenthesis balance is validated as a side effect.
func collectRefs(toks []token) ([]tableRef, error) {
	var refs []tableRef
	depth := 0
	var funcParen []bool // per open paren: was it a function call?
	var fromDepths []int // nesting depths with an open FROM list
	expectTable := false
	var prev token
	havePrev := false

	// Every SELECT opens its own scope; parens save and restore the
	// enclosing one. Set-operation arms count as separate scopes.
	scopeCounter := 0
	scopeStack := []int{0}

	inFuncParen := func() bool {
		return len(funcParen) > 0 && funcParen[len(funcParen)-1]
	}
	topFromIs := func(d int) bool {
		return len(fromDepths) > 0 && fromDepths[len(fromDepths)-1] == d
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.kind {
		case tokenSymbol:
			switch t.text {
			case "(":
				isFunc := havePrev && prev.kind == tokenIdent && !reserved[prev.keyword()]
				funcParen = append(funcParen, isFunc)
				scopeStack = append(scopeStack, scopeStack[len(scopeStack)-1])
				depth++
			case ")":
				if depth == 0 {
					return nil, &ParseError{Pos: t.pos, Msg: "unbalanced closing parenthesis"}
				}
				depth--
				funcParen = funcParen[:len(funcParen)-1]
				scopeStack = scopeStack[:len(scopeStack)-1]
				for len(fromDepths) > 0 && fromDepths[len(fromDepths)-1] > depth {
					fromDepths = fromDepths[:len(fromDepths)-1]
				}
				expectTable = false
			case ",":
				if topFromIs(depth) {
					expectTable = true
				}
			case ";":
				fromDepths = nil
				expectTable = false
			}
		case tokenIdent, tokenQuotedIdent:
			if kw := t.keyword(); kw != "" && reserved[kw] {
				switch kw {
				case "from":
					if !inFuncParen() {
						if !topFromIs(depth) {
							fromDepths = append(fromDepths, depth)
						}
						expectTable = true
					}
				case "join":
					expectTable = true
				case "select":
					scopeCounter++
					scopeStack[len(scopeStack)-1] = scopeCounter
					expectTable = false
				case "values":
					expectTable = false
				default:
					if fromEnders[kw] && topFromIs(depth) {
						fromDepths = fromDepths[:len(fromDepths)-1]
						expectTable = false
					}
				}
				prev, havePrev = t, true
				continue
			}
			if expectTable {
				r := tableRef{name: t, depth: depth, scope: scopeStack[len(scopeStack)-1]}
				// Already-qualified reference: consume the dotted chain and
				// leave it alone so distribution is idempotent.
				for i+2 < len(toks) && toks[i+1].isSymbol(".") &&
					(toks[i+2].kind == tokenIdent || toks[i+2].kind == tokenQuotedIdent) {
					r.qualified = true
					i += 2
				}
				// Optional alias, with or without AS.
				j := i + 1
				if j < len(toks) && toks[j].keyword() == "as" {
					j++
				}
				if j < len(toks) {
					a := toks[j]
					if a.kind == tokenQuotedIdent || (a.kind == tokenIdent && !reserved[a.keyword()]) {
						r.alias = a.bareName()
						i = j
					}
				}
				refs = append(refs, r)
				expectTable = false
				prev, havePrev = toks[i], true
				continue
			}
		}
		prev, havePrev = t, true
	}
	if depth != 0 {
		return nil, &ParseError{Pos: toks[len(toks)-1].end, Msg: "unbalanced opening parenthesis"}
	}
	return refs, nil
}

// cteNames collects the names declared in WITH clauses anywhere in the
// statement so their uses in FROM position are never qualified.
func cteNames(toks []token) map[string]struct{} {
	names := map[string]struct{}{}
	depth := 0
	var withDepths []int

	top := func() (int, bool) {
		if len(withDepths) == 0 {
			return 0, false
		}
		return withDepths[len(withDepths)-1], true
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.isSymbol("("):
			depth++
		case t.isSymbol(")"):
			depth--
			for len(withDepths) > 0 && withDepths[len(withDepths)-1] > depth {
				withDepths = withDepths[:len(withDepths)-1]
			}
		case t.kind == tokenIdent || t.kind == tokenQuotedIdent:
			kw := t.keyword()
			if kw == "with" {
				withDepths = append(withDepths, depth)
				continue
			}
			d, open := top()
			if !open || d != depth {
				continue
			}
			if kw == "select" {
				withDepths = withDepths[:len(withDepths)-1]
				continue
			}
			if kw != "" && reserved[kw] {
				continue
			}
			// candidate CTE name: ident [ "(" columns ")" ] "as"
			j := i + 1
			if j < len(toks) && toks[j].isSymbol("(") {
				nest := 0
				for ; j < len(toks); j++ {
					if toks[j].isSymbol("(") {
						nest++
					} else if toks[j].isSymbol(")") {
						nest--
						if nest == 0 {
							j++
							break
						}
					}
				}
			}
			if j < len(toks) && toks[j].keyword() == "as" {
				names[strings.ToLower(t.bareName())] = struct{}{}
			}
		}
	}
	return names
}
