// Package filter describes structured listing filters over indexed user fields.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 16

// MaxValuesPerCondition caps the any-of values of a single tag condition.
const MaxValuesPerCondition = 8

// Expression is a structured filter with must/should/must_not boolean semantics.
// A document matches when every must condition holds, at least one should
// condition holds (if any are given) and no must_not condition holds.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// All is a convenience for an expression made only of must conditions.
func All(conds ...Condition) (Expression, error) {
	return NewExpression(conds, nil, nil)
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Eval evaluates the expression against a single document.
// holds reports whether one condition is satisfied by the document.
func (e Expression) Eval(holds func(Condition) bool) bool {
	for _, c := range e.must {
		if !holds(c) {
			return false
		}
	}
	for _, c := range e.mustNot {
		if holds(c) {
			return false
		}
	}
	if len(e.should) == 0 {
		return true
	}
	for _, c := range e.should {
		if holds(c) {
			return true
		}
	}
	return false
}

// String renders the expression for logs.
func (e Expression) String() string {
	var parts []string
	add := func(group string, conds []Condition) {
		for _, c := range conds {
			parts = append(parts, group+":"+c.String())
		}
	}
	add("must", e.must)
	add("should", e.should)
	add("not", e.mustNot)
	return strings.Join(parts, " ")
}

// Condition is a single filter clause: either a tag match or a numeric range.
type Condition struct {
	key       string
	values    []string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	return NewMatchAny(key, match)
}

// NewMatchAny creates a tag condition satisfied by any of the given values.
func NewMatchAny(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, errors.New("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	if len(values) > MaxValuesPerCondition {
		return Condition{}, fmt.Errorf("too many values for key %q (max %d)", key, MaxValuesPerCondition)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("match value is required for key %q", key)
		}
	}
	return Condition{key: key, values: values}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, errors.New("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the first match value.
func (c Condition) Match() string {
	if len(c.values) == 0 {
		return ""
	}
	return c.values[0]
}

// Values returns every accepted tag value.
func (c Condition) Values() []string { return c.values }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return len(c.values) > 0 }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

func (c Condition) String() string {
	if c.IsRange() {
		return c.key + c.rangeExpr.String()
	}
	return c.key + "={" + strings.Join(c.values, "|") + "}"
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, errors.New("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, errors.New("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, errors.New("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// Between is an inclusive range shortcut.
func Between(lo, hi float64) (Range, error) {
	if lo > hi {
		return Range{}, fmt.Errorf("range lower bound %g exceeds upper bound %g", lo, hi)
	}
	return NewRangeFilter(nil, &lo, nil, &hi)
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	switch {
	case r.gt != nil && v <= *r.gt:
		return false
	case r.gte != nil && v < *r.gte:
		return false
	case r.lt != nil && v >= *r.lt:
		return false
	case r.lte != nil && v > *r.lte:
		return false
	}
	return true
}

func (r Range) String() string {
	lo, hi := "-inf", "+inf"
	open, closeB := "[", "]"
	if r.gt != nil {
		lo, open = fmt.Sprint(*r.gt), "("
	} else if r.gte != nil {
		lo = fmt.Sprint(*r.gte)
	}
	if r.lt != nil {
		hi, closeB = fmt.Sprint(*r.lt), ")"
	} else if r.lte != nil {
		hi = fmt.Sprint(*r.lte)
	}
	return open + lo + "," + hi + closeB
}
