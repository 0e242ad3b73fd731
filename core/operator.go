// Package core provides the fundamental building blocks of the golem ORM.
// This file defines the set of supported operators used in query conditions.
package core

import "strings"

// Operator represents a comparison or logical operator used in a query condition.
//
// Operators can be logical (AND, OR, NOT) or value-based (EQ, GT, IN, etc.).
type Operator string

const (
	// Logical operators
	opAnd Operator = "AND"
	opOr  Operator = "OR"
	opNot Operator = "NOT"

	// Value-based operators
	opNil   Operator = "NIL"   // field IS NULL
	opEq    Operator = "EQ"    // field = value
	opNe    Operator = "NE"    // field <> value
	opGt    Operator = "GT"    // field > value
	opGte   Operator = "GTE"   // field >= value
	opLt    Operator = "LT"    // field < value
	opLte   Operator = "LTE"   // field <= value
	opLike  Operator = "LIKE"  // field LIKE pattern (SQL) or regex (NoSQL)
	opILike Operator = "ILIKE" // case-insensitive LIKE
	opIn    Operator = "IN"    // field IN (value list)
)

// Public operator aliases exposed to users of the ORM.
//
// Example:
//
//	cond := &core.Condition{FieldName: "age", Operator: &core.OpGt, Value: 18}
var (
	OpAnd   = opAnd
	OpOr    = opOr
	OpNot   = opNot
	OpNil   = opNil
	OpEq    = opEq
	OpNe    = opNe
	OpGt    = opGt
	OpGte   = opGte
	OpLt    = opLt
	OpLte   = opLte
	OpLike  = opLike
	OpILike = opILike
	OpIn    = opIn
)

// IsLogical reports whether the operator combines child conditions.
func (o Operator) IsLogical() bool {
	return o == opAnd || o == opOr || o == opNot
}

// operatorByName maps the operator names accepted in filter documents.
var operatorByName = map[string]Operator{
	"is_null": opNil,
	"==":      opEq,
	"eq":      opEq,
	"!=":      opNe,
	"ne":      opNe,
	">":       opGt,
	"gt":      opGt,
	">=":      opGte,
	"ge":      opGte,
	"gte":     opGte,
	"<":       opLt,
	"lt":      opLt,
	"<=":      opLte,
	"le":      opLte,
	"lte":     opLte,
	"like":    opLike,
	"ilike":   opILike,
	"in":      opIn,
}

// ParseOperator returns the value-based operator for a filter document name
// such as "==", "gte" or "in".
func ParseOperator(name string) (Operator, bool) {
	operator, ok := operatorByName[strings.ToLower(name)]
	return operator, ok
}
