// Package expr provides the expression trees scans filter with. An
// expression evaluates against one record and its schema and yields a
// typed value; predicates are expressions that yield BOOL.
package expr

import (
	"errors"
	"fmt"

	"minirel/internal/record"
)

var ErrNotBoolean = errors.New("expr: operand is not a boolean")

// Expr is one node of an expression tree.
type Expr interface {
	Eval(r *record.Record, s *record.Schema) (record.Value, error)
}

// Const yields a fixed value.
type Const struct {
	V record.Value
}

func (c *Const) Eval(*record.Record, *record.Schema) (record.Value, error) {
	return c.V, nil
}

// AttrRef yields the value of one attribute of the record under evaluation.
type AttrRef struct {
	Attr int
}

func (a *AttrRef) Eval(r *record.Record, s *record.Schema) (record.Value, error) {
	return r.GetAttr(s, a.Attr)
}

// Equals compares its operands for equality; operands must share a type.
type Equals struct {
	Left, Right Expr
}

func (e *Equals) Eval(r *record.Record, s *record.Schema) (record.Value, error) {
	l, rv, err := evalPair(e.Left, e.Right, r, s)
	if err != nil {
		return record.Value{}, err
	}
	if l.Type != rv.Type {
		return record.Value{}, fmt.Errorf("equals: compare %s with %s: %w",
			l.Type, rv.Type, record.ErrTypeMismatch)
	}
	return record.BoolValue(l.Equal(rv)), nil
}

// Smaller yields left < right for INT, FLOAT and STRING operands.
type Smaller struct {
	Left, Right Expr
}

func (e *Smaller) Eval(r *record.Record, s *record.Schema) (record.Value, error) {
	l, rv, err := evalPair(e.Left, e.Right, r, s)
	if err != nil {
		return record.Value{}, err
	}
	less, err := l.Less(rv)
	if err != nil {
		return record.Value{}, err
	}
	return record.BoolValue(less), nil
}

// Not negates a boolean operand.
type Not struct {
	E Expr
}

func (e *Not) Eval(r *record.Record, s *record.Schema) (record.Value, error) {
	v, err := evalBool(e.E, r, s)
	if err != nil {
		return record.Value{}, err
	}
	return record.BoolValue(!v), nil
}

// And yields the conjunction of two boolean operands.
type And struct {
	Left, Right Expr
}

func (e *And) Eval(r *record.Record, s *record.Schema) (record.Value, error) {
	l, err := evalBool(e.Left, r, s)
	if err != nil {
		return record.Value{}, err
	}
	rv, err := evalBool(e.Right, r, s)
	if err != nil {
		return record.Value{}, err
	}
	return record.BoolValue(l && rv), nil
}

// Or yields the disjunction of two boolean operands.
type Or struct {
	Left, Right Expr
}

func (e *Or) Eval(r *record.Record, s *record.Schema) (record.Value, error) {
	l, err := evalBool(e.Left, r, s)
	if err != nil {
		return record.Value{}, err
	}
	rv, err := evalBool(e.Right, r, s)
	if err != nil {
		return record.Value{}, err
	}
	return record.BoolValue(l || rv), nil
}

func evalPair(l, r Expr, rec *record.Record, s *record.Schema) (record.Value, record.Value, error) {
	lv, err := l.Eval(rec, s)
	if err != nil {
		return record.Value{}, record.Value{}, err
	}
	rv, err := r.Eval(rec, s)
	if err != nil {
		return record.Value{}, record.Value{}, err
	}
	return lv, rv, nil
}

func evalBool(e Expr, rec *record.Record, s *record.Schema) (bool, error) {
	v, err := e.Eval(rec, s)
	if err != nil {
		return false, err
	}
	if v.Type != record.TypeBool {
		return false, fmt.Errorf("expected BOOL, got %s: %w", v.Type, ErrNotBoolean)
	}
	return v.Bool, nil
}
