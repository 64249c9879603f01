// Package filter evaluates row-filter expressions against records.
//
// Expressions are Starlark: each record's fields are bound as a dict
// named row, every column is also bound directly by name when it is a
// valid identifier, and n is the record's 1-based logical line number.
// The expression's truth value decides whether the record passes.
//
//	leapcsv select data.csv --where 'row["price"] != "" and n > 10'
//	leapcsv select data.csv --where 'category == "tools"'
package filter

import (
	"fmt"

	"github.com/leapstack-labs/leapcsv/pkg/reader"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Filter is a validated row-filter expression, reusable across records.
type Filter struct {
	expr    string
	headers []string
}

// Compile parses expr against the given header names. Syntax errors
// surface here, before any record is read.
func Compile(expr string, headers []string) (*Filter, error) {
	if _, err := (&syntax.FileOptions{}).ParseExpr("where", expr, 0); err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return &Filter{expr: expr, headers: headers}, nil
}

// Match evaluates the filter against one record.
func (f *Filter) Match(rec *reader.Record) (bool, error) {
	values, err := rec.Values()
	if err != nil {
		return false, err
	}

	row := starlark.NewDict(len(f.headers))
	globals := make(starlark.StringDict, len(f.headers)+2)
	for i, h := range f.headers {
		var v starlark.Value = starlark.String("")
		if i < len(values) {
			v = starlark.String(values[i])
		}
		if err := row.SetKey(starlark.String(h), v); err != nil {
			return false, fmt.Errorf("bind column %q: %w", h, err)
		}
		if identifier(h) {
			globals[h] = v
		}
	}
	globals["row"] = row
	globals["n"] = starlark.MakeInt(rec.Line())

	thread := &starlark.Thread{
		Name:  fmt.Sprintf("where:%d", rec.Line()),
		Print: func(_ *starlark.Thread, _ string) {},
	}

	result, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, "where", f.expr, globals)
	if err != nil {
		return false, fmt.Errorf("filter failed on line %d: %w", rec.Line(), err)
	}
	return bool(result.Truth()), nil
}

// identifier reports whether a header name can be bound as a bare
// Starlark variable. row and n are taken, and Starlark keywords would
// not parse as references.
func identifier(s string) bool {
	if s == "" || s == "row" || s == "n" || keyword(s) {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func keyword(s string) bool {
	switch s {
	case "and", "or", "not", "if", "else", "elif", "for", "in", "def",
		"return", "lambda", "load", "pass", "break", "continue", "while",
		"True", "False", "None":
		return true
	}
	return false
}
