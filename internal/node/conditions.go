// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package node

import (
	"fmt"

	"github.com/jeranaias/flux-engine/internal/session"
)

// =============================================================================
// CONDITION TYPE
// =============================================================================

// Op is a condition operator.
type Op int

const (
	// OpEquals is strict equality against the field value.
	OpEquals Op = iota
	// OpContains requires a list-valued field containing the value.
	OpContains
	// OpGreaterThan is a numeric comparison.
	OpGreaterThan
	// OpLessThan is a numeric comparison.
	OpLessThan
)

// String returns the operator name.
func (o Op) String() string {
	switch o {
	case OpEquals:
		return "equals"
	case OpContains:
		return "contains"
	case OpGreaterThan:
		return "greaterThan"
	case OpLessThan:
		return "lessThan"
	default:
		return fmt.Sprintf("Op(%d)", o)
	}
}

// Condition is one eligibility test over a session context field.
type Condition struct {
	// Key names the session context field (wire name, e.g. "interactionCount").
	Key string
	// Op is the comparison operator.
	Op Op
	// Value is the operand: string for equals/contains, number for the
	// ordered comparisons.
	Value any
}

// =============================================================================
// EVALUATION
// =============================================================================

// EvaluateConditions reports whether all conditions hold for the context.
// An empty condition list is vacuously true. An unknown field key or an
// unknown operator evaluates false.
func EvaluateConditions(conds []Condition, ctx *session.Context) bool {
	for _, c := range conds {
		if !evaluate(c, ctx) {
			return false
		}
	}
	return true
}

func evaluate(c Condition, ctx *session.Context) bool {
	field, ok := ctx.Field(c.Key)
	if !ok {
		return false
	}

	switch c.Op {
	case OpEquals:
		return equals(field, c.Value)
	case OpContains:
		list, isList := field.([]string)
		want, isString := c.Value.(string)
		if !isList || !isString {
			return false
		}
		for _, item := range list {
			if item == want {
				return true
			}
		}
		return false
	case OpGreaterThan:
		f, fok := toFloat(field)
		v, vok := toFloat(c.Value)
		return fok && vok && f > v
	case OpLessThan:
		f, fok := toFloat(field)
		v, vok := toFloat(c.Value)
		return fok && vok && f < v
	default:
		return false
	}
}

// equals compares a field value against a condition operand. Numeric
// operands compare numerically so Condition{Value: 3} matches an int field.
func equals(field, value any) bool {
	if f, fok := toFloat(field); fok {
		if v, vok := toFloat(value); vok {
			return f == v
		}
		return false
	}
	return field == value
}

// toFloat widens the numeric types a condition can carry.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
