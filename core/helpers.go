// Package core provides the fundamental building blocks of the golem ORM.
// This file contains helper functions for reflection, field mapping and
// condition folding.
package core

import (
	"reflect"
	"strings"
	"unsafe"
)

// offsetOf returns the memory offset of a struct field selected by the given selector function.
//
// Example:
//
//	type User struct {
//	    ID   int
//	    Name string
//	}
//
//	offset := offsetOf(func(u *User) *string { return &u.Name })
func offsetOf[T any, F any](selector func(*T) *F) uintptr {
	var zero T
	base := uintptr(unsafe.Pointer(&zero))
	ptr := selector(&zero)
	return uintptr(unsafe.Pointer(ptr)) - base
}

// structFieldFromSelectorFor resolves the struct field returned by a selector
// function of the form func(*T) *F.
//
// Panics if the argument is not a function, or if the function does not return a field pointer.
func structFieldFromSelectorFor[T any](selector any) (reflect.StructField, bool) {
	if selector == nil {
		return reflect.StructField{}, false
	}
	selectorValue := reflect.ValueOf(selector)
	if selectorValue.Kind() != reflect.Func {
		panic("selector must be a function")
	}

	var zero T
	typ := reflect.TypeOf(zero)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	arg := reflect.New(typ) // *T

	out := selectorValue.Call([]reflect.Value{arg})
	if len(out) == 0 {
		panic("selector must return a pointer to a field")
	}
	ret := out[0]
	if ret.Kind() != reflect.Pointer {
		panic("selector must return a pointer to a field")
	}

	// offset of the returned pointer relative to *T
	offset := ret.Pointer() - arg.Pointer()

	for _, sf := range reflect.VisibleFields(typ) {
		if len(sf.Index) == 1 && sf.Offset == offset {
			return sf, true
		}
	}
	return reflect.StructField{}, false
}

// fieldNameFromSelectorFor resolves the Go struct field name from a selector function.
func fieldNameFromSelectorFor[T any](selector any) string {
	sf, ok := structFieldFromSelectorFor[T](selector)
	if !ok {
		return ""
	}
	return sf.Name
}

// columnNameFromSelectorFor resolves the column name ("db" tag, or the field
// name) of the struct field returned by a selector function. It is used for
// join tables, which have no schema of their own.
func columnNameFromSelectorFor[T any](selector any) string {
	sf, ok := structFieldFromSelectorFor[T](selector)
	if !ok {
		return ""
	}
	if tag := sf.Tag.Get("db"); tag != "" && tag != "-" {
		return tag
	}
	return sf.Name
}

// mapToStruct maps a row (map[string]any) into a struct instance of type T.
//
// It uses reflection to assign values to fields, with support for:
//  1. Exact type matching
//  2. Value → pointer conversions (e.g. time.Time → *time.Time)
//  3. Pointer → value conversions (e.g. *time.Time → time.Time)
//  4. Convertible types (e.g. int32 → int64)
//
// Row keys are matched against the schema's column names first, then
// case-insensitively against struct field names.
func mapToStruct[T any](schema *SchemaCore, row map[string]any, out *T) {
	value := reflect.ValueOf(out).Elem()
	for rowKey, rowValue := range row {
		var field reflect.Value
		if schemaField := schema.Column(rowKey); schemaField != nil {
			field = value.FieldByName(schemaField.StructFieldName)
		} else {
			field = value.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, rowKey) })
		}
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		assignValue(field, rowValue)
	}
}

// assignValue stores rowValue into field, converting where possible.
// Values that cannot be converted are skipped.
func assignValue(field reflect.Value, rowValue any) {
	if rowValue == nil {
		if field.Kind() == reflect.Pointer {
			field.Set(reflect.Zero(field.Type()))
		}
		return
	}

	rv := reflect.ValueOf(rowValue)
	switch {
	case rv.Type().AssignableTo(field.Type()):
		field.Set(rv)
	case field.Kind() == reflect.Pointer && rv.Type().AssignableTo(field.Type().Elem()):
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(rv)
		field.Set(ptr)
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Type().Elem().AssignableTo(field.Type()):
		field.Set(rv.Elem())
	case convertible(rv.Type(), field.Type()):
		field.Set(rv.Convert(field.Type()))
	case field.Kind() == reflect.Pointer && convertible(rv.Type(), field.Type().Elem()):
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(rv.Convert(field.Type().Elem()))
		field.Set(ptr)
	}
}

// convertible excludes number → string conversions, which reflect allows
// but which produce runes rather than digits.
func convertible(from reflect.Type, to reflect.Type) bool {
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		return false
	}
	return from.ConvertibleTo(to)
}

// foldConditionsAnd combines multiple conditions into a single condition
// using logical AND. Nil conditions are ignored. If nothing is left, it
// returns nil. If one condition is left, it returns that condition.
func foldConditionsAnd(conds ...*Condition) *Condition {
	condList := make([]*Condition, 0, len(conds))
	for _, cond := range conds {
		if cond != nil {
			condList = append(condList, cond)
		}
	}
	switch len(condList) {
	case 0:
		return nil
	case 1:
		return condList[0]
	default:
		return &Condition{Operator: &OpAnd, Children: condList}
	}
}
