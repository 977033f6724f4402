// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package filter parses the MPD filter-expression grammar and compiles it
// to a parameterized query fragment bound against the catalog store.
package filter

import (
	"fmt"
	"strings"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// Op is a filter comparison operator.
type Op string

const (
	OpEquals      Op = "=="
	OpNotEquals   Op = "!="
	OpMatches     Op = "=~"
	OpNotMatches  Op = "!~"
	OpLess        Op = "<"
	OpGreater     Op = ">"
	OpLessEq      Op = "<="
	OpGreaterEq   Op = ">="
	OpContains    Op = "contains"
	OpStartsWith  Op = "starts_with"
)

// tagColumns resolves MPD tag names to catalog column names. Unknown names
// fall back to a direct (sanitized) column match, per spec.md §4.2/§4.3.
var tagColumns = map[string]string{
	"artist":       "artist",
	"album_artist": "album_artist",
	"albumartist":  "album_artist",
	"album":        "album",
	"title":        "title",
	"track":        "track",
	"date":         "date",
	"year":         "date",
	"genre":        "genre",
	"composer":     "composer",
	"performer":    "performer",
	"disc":         "disc",
	"comment":      "comment",
	"file":         "path",
}

// Column resolves a tag name to its catalog column.
func Column(tag string) string {
	lower := strings.ToLower(tag)
	if col, ok := tagColumns[lower]; ok {
		return col
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, lower)
}

// Expr is a node in a parsed filter expression tree.
type Expr interface {
	isExpr()
}

// Comparison is a leaf `(tag op value)` node.
type Comparison struct {
	Tag   string
	Op    Op
	Value string
}

func (Comparison) isExpr() {}

// And is a conjunction of two expressions.
type And struct{ Left, Right Expr }

func (And) isExpr() {}

// Or is a disjunction of two expressions.
type Or struct{ Left, Right Expr }

func (Or) isExpr() {}

// Not negates an expression.
type Not struct{ Inner Expr }

func (Not) isExpr() {}

// Compiled is a parameterized query fragment ready to bind against the
// catalog store's prepared statements. Never string-interpolated.
type Compiled struct {
	SQL    string
	Params []interface{}
}

// Parse parses an MPD filter-expression string into an Expr tree.
//
// Grammar (spec.md §4.3):
//
//	EXPR := (EXPR) | (EXPR AND EXPR) | (EXPR OR EXPR) | (!EXPR) | (TAG OP VALUE)
//	VALUE:= '...'  (single-quoted; backslash escapes the next char)
func Parse(input string) (Expr, error) {
	p := &parser{input: []rune(strings.TrimSpace(input))}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, rmpderr.Newf(rmpderr.Parse, "unexpected trailing input at position %d", p.pos)
	}
	return expr, nil
}

// Compile lowers an Expr tree to a parameterized SQL fragment.
func Compile(expr Expr) Compiled {
	var sql strings.Builder
	var params []interface{}
	compileInto(expr, &sql, &params)
	return Compiled{SQL: sql.String(), Params: params}
}

func compileInto(expr Expr, sql *strings.Builder, params *[]interface{}) {
	switch e := expr.(type) {
	case Comparison:
		col := Column(e.Tag)
		switch e.Op {
		case OpEquals:
			fmt.Fprintf(sql, "%s = ?", col)
			*params = append(*params, e.Value)
		case OpNotEquals:
			fmt.Fprintf(sql, "%s != ?", col)
			*params = append(*params, e.Value)
		case OpMatches:
			fmt.Fprintf(sql, "%s LIKE ?", col)
			*params = append(*params, likePattern(e.Value))
		case OpNotMatches:
			fmt.Fprintf(sql, "%s NOT LIKE ?", col)
			*params = append(*params, likePattern(e.Value))
		case OpLess:
			fmt.Fprintf(sql, "%s < ?", col)
			*params = append(*params, e.Value)
		case OpGreater:
			fmt.Fprintf(sql, "%s > ?", col)
			*params = append(*params, e.Value)
		case OpLessEq:
			fmt.Fprintf(sql, "%s <= ?", col)
			*params = append(*params, e.Value)
		case OpGreaterEq:
			fmt.Fprintf(sql, "%s >= ?", col)
			*params = append(*params, e.Value)
		case OpContains:
			fmt.Fprintf(sql, "%s LIKE ?", col)
			*params = append(*params, "%"+e.Value+"%")
		case OpStartsWith:
			fmt.Fprintf(sql, "%s LIKE ?", col)
			*params = append(*params, e.Value+"%")
		}
	case And:
		sql.WriteByte('(')
		compileInto(e.Left, sql, params)
		sql.WriteString(" AND ")
		compileInto(e.Right, sql, params)
		sql.WriteByte(')')
	case Or:
		sql.WriteByte('(')
		compileInto(e.Left, sql, params)
		sql.WriteString(" OR ")
		compileInto(e.Right, sql, params)
		sql.WriteByte(')')
	case Not:
		sql.WriteString("NOT (")
		compileInto(e.Inner, sql, params)
		sql.WriteByte(')')
	}
}

// likePattern approximates MPD's `=~` regex with SQL LIKE, per spec.md's
// documented (lossy) lowering: `.*` -> `%`, bare `.` -> `_`, everything
// else passes through unchanged.
func likePattern(regex string) string {
	var out strings.Builder
	runes := []rune(regex)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '.' && i+1 < len(runes) && runes[i+1] == '*' {
			out.WriteByte('%')
			i++
			continue
		}
		if runes[i] == '.' {
			out.WriteByte('_')
			continue
		}
		out.WriteRune(runes[i])
	}
	return out.String()
}
