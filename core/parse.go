// Package core provides the fundamental building blocks of the golem ORM.
// This file parses filter documents into conditions.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// fieldFilter is the JSON shape of a field condition.
type fieldFilter struct {
	Model string          `json:"model"`
	Field string          `json:"field"`
	Op    string          `json:"op"`
	Value json.RawMessage `json:"value"`
}

// ParseFilters parses a filter document into conditions.
//
// The document is a single filter or a list of filters. A field filter has
// the keys "field", "op", and optionally "model" and "value". A boolean
// filter has exactly one key, "and", "or" or "not", holding a list of filters.
//
// Example:
//
//	conditions, err := core.ParseFilters([]byte(`[
//		{"field": "name", "op": "like", "value": "A%"},
//		{"or": [
//			{"field": "orders.total", "op": ">=", "value": 100},
//			{"model": "Address", "field": "city", "op": "==", "value": "Lisbon"}
//		]}
//	]`))
func ParseFilters(data []byte) ([]*Condition, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var rawList []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &rawList); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	} else {
		rawList = []json.RawMessage{trimmed}
	}
	return parseFilterList(rawList)
}

func parseFilterList(rawList []json.RawMessage) ([]*Condition, error) {
	conditionList := make([]*Condition, 0, len(rawList))
	for _, raw := range rawList {
		condition, err := parseFilter(raw)
		if err != nil {
			return nil, err
		}
		conditionList = append(conditionList, condition)
	}
	return conditionList, nil
}

func parseFilter(raw json.RawMessage) (*Condition, error) {
	var keyMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keyMap); err != nil {
		return nil, fmt.Errorf("%w: filter must be an object: %v", ErrInvalidFilter, err)
	}

	if len(keyMap) == 1 {
		for key, value := range keyMap {
			if operator, ok := booleanOperator(key); ok {
				return parseGroup(operator, value)
			}
		}
	}

	var spec fieldFilter
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if spec.Field == "" {
		return nil, fmt.Errorf("%w: `field` is a mandatory filter attribute", ErrInvalidFilter)
	}
	if spec.Op == "" {
		return nil, fmt.Errorf("%w: `op` is a mandatory filter attribute", ErrInvalidFilter)
	}
	operator, ok := ParseOperator(spec.Op)
	if !ok {
		return nil, fmt.Errorf("%w: operator `%s` not valid", ErrInvalidFilter, spec.Op)
	}

	condition := &Condition{ModelName: spec.Model, FieldName: spec.Field, Operator: &operator}
	if operator == OpNil {
		return condition, nil
	}
	if len(spec.Value) == 0 {
		return nil, fmt.Errorf("%w: `value` must be provided for operator `%s`", ErrInvalidFilter, spec.Op)
	}

	var value any
	decoder := json.NewDecoder(bytes.NewReader(spec.Value))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	value = normalizeNumber(value)

	if operator == OpIn {
		valueList, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: operator `%s` expects a list value", ErrInvalidFilter, spec.Op)
		}
		value = valueList
	}
	condition.Value = value
	return condition, nil
}

func parseGroup(operator Operator, raw json.RawMessage) (*Condition, error) {
	var rawList []json.RawMessage
	if err := json.Unmarshal(raw, &rawList); err != nil {
		return nil, fmt.Errorf("%w: `%s` must hold a list of filters", ErrInvalidFilter, strings.ToLower(string(operator)))
	}
	if len(rawList) == 0 {
		return nil, fmt.Errorf("%w: `%s` must hold at least one filter", ErrInvalidFilter, strings.ToLower(string(operator)))
	}
	if operator == OpNot && len(rawList) != 1 {
		return nil, fmt.Errorf("%w: `not` must hold exactly one filter", ErrInvalidFilter)
	}
	childList, err := parseFilterList(rawList)
	if err != nil {
		return nil, err
	}
	return &Condition{Operator: &operator, Children: childList}, nil
}

func booleanOperator(key string) (Operator, bool) {
	switch strings.ToLower(key) {
	case "and":
		return OpAnd, true
	case "or":
		return OpOr, true
	case "not":
		return OpNot, true
	}
	return "", false
}

// normalizeNumber turns json.Number values into int64 when integral and
// float64 otherwise, recursing into lists.
func normalizeNumber(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		for i := range v {
			v[i] = normalizeNumber(v[i])
		}
		return v
	}
	return value
}
