// Copyright 2023 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package schema validates generic JSON-like values against declaratively
// tagged Go structs, the way query parameters and data records are declared
// throughout the platform.
//
// A schema is an ordinary struct whose fields carry tags:
//
//	type Query struct {
//	  Symbol string     `json:"symbol" required:"true" desc:"Ticker symbol."`
//	  Start  dates.Date `json:"start_date" desc:"Start of the interval."`
//	  Limit  *int       `json:"limit" default:"100" providers:"polygon"`
//	  Sort   string     `json:"sort" choices:"asc,desc" alias:"order"`
//	}
//
// Validate populates such a struct from a map[string]interface{} (typically
// the result of encoding/json unmarshaling into interface{}): it checks
// required fields, applies defaults, enforces choice lists, resolves aliases,
// and reports unknown keys according to the schema's Options.
//
// A key that is absent from the input is "not supplied": the field keeps its
// default. A key present with a null value is "supplied empty": the field is
// set to its zero value and the default does NOT apply. Pointer fields remain
// nil in both cases unless a value or default is given, which is how callers
// distinguish the two after the fact.
package schema

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stockparfait/errors"
)

// Unmarshaler is implemented by field types that parse themselves from a
// generic JSON value, e.g. dates.Date.
type Unmarshaler interface {
	UnmarshalRaw(v interface{}) error
}

// Normalizer is the pre-validation hook: it runs on a copy of the raw input
// map before any field is assigned, and may rewrite values in place
// (uppercase a symbol, strip an exchange suffix, coerce a date string).
type Normalizer interface {
	NormalizeRaw(raw map[string]interface{}) error
}

// CrossChecker is the post-validation hook for cross-field constraints and
// late defaults. It runs after all fields are assigned.
type CrossChecker interface {
	CheckFields() error
}

// UnknownKeeper receives input keys not declared by the schema when the
// schema's extra-field policy is ExtraAccept. Vendor payload fields are
// preserved this way under their original names.
type UnknownKeeper interface {
	KeepUnknown(name string, v interface{})
}

// rUnmarshaler is the reflected Unmarshaler type. Since it's an interface, we
// cannot obtain it directly, thus have to create a pointer to it and take the
// pointee type.
var rUnmarshaler = reflect.TypeOf((*Unmarshaler)(nil)).Elem()

func convertWithUnmarshaler(jv interface{}, t reflect.Type) (reflect.Value, error) {
	var Nil reflect.Value
	if t.Kind() != reflect.Ptr {
		return Nil, errors.Reason(
			"type %s implements Unmarshaler but is not a pointer", t.Name())
	}
	ptr := reflect.New(t.Elem())
	err := ptr.Interface().(Unmarshaler).UnmarshalRaw(jv)
	if err != nil {
		return Nil, errors.Annotate(err, "%s.UnmarshalRaw() failed", t.Name())
	}
	return ptr, nil
}

// convertToType recursively converts a raw JSON value to basic types, slices,
// map[string]* and Unmarshaler implementations. If jv == nil, the result is
// the zero value.
func convertToType(jv interface{}, t reflect.Type) (reflect.Value, error) {
	var Nil reflect.Value
	if t.Implements(rUnmarshaler) {
		if jv == nil {
			return reflect.Zero(t), nil
		}
		ptr, err := convertWithUnmarshaler(jv, t)
		if err != nil {
			return Nil, err
		}
		return ptr, nil
	}
	if ptrTp := reflect.PtrTo(t); ptrTp.Implements(rUnmarshaler) {
		if jv == nil {
			return reflect.Zero(t), nil
		}
		ptr, err := convertWithUnmarshaler(jv, ptrTp)
		if err != nil {
			return Nil, err
		}
		return reflect.Indirect(ptr), nil
	}
	if jv == nil {
		return reflect.Zero(t), nil
	}
	switch t.Kind() {
	case reflect.Ptr:
		v, err := convertToType(jv, t.Elem())
		if err != nil {
			return Nil, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(v)
		return ptr, nil

	case reflect.Bool:
		v2, ok := jv.(bool)
		if !ok {
			return Nil, errors.Reason("not a bool type: %v", jv)
		}
		return reflect.ValueOf(v2), nil

	case reflect.Int:
		switch v2 := jv.(type) {
		case float64:
			return reflect.ValueOf(int(v2)), nil
		case int:
			return reflect.ValueOf(v2), nil
		}
		return Nil, errors.Reason("not a numeric type: %v", jv)

	case reflect.Int64:
		switch v2 := jv.(type) {
		case float64:
			return reflect.ValueOf(int64(v2)), nil
		case int64:
			return reflect.ValueOf(v2), nil
		case int:
			return reflect.ValueOf(int64(v2)), nil
		}
		return Nil, errors.Reason("not a numeric type: %v", jv)

	case reflect.Float64:
		switch v2 := jv.(type) {
		case float64:
			return reflect.ValueOf(v2), nil
		case int:
			return reflect.ValueOf(float64(v2)), nil
		}
		return Nil, errors.Reason("not a numeric type: %v", jv)

	case reflect.String:
		v2, ok := jv.(string)
		if !ok {
			return Nil, errors.Reason("not a string type: %v", jv)
		}
		return reflect.ValueOf(v2), nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return Nil, errors.Reason(
				"map[%s] is not supported", t.Key().Kind().String())
		}
		v2, ok := jv.(map[string]interface{})
		if !ok {
			return Nil, errors.Reason("not a map[string] type: %v", jv)
		}
		res := reflect.MakeMap(t)
		for k, v := range v2 {
			el, err := convertToType(v, t.Elem())
			if err != nil {
				return Nil, err
			}
			res.SetMapIndex(reflect.ValueOf(k), el)
		}
		return res, nil

	case reflect.Slice:
		v2, ok := jv.([]interface{})
		if !ok {
			return Nil, errors.Reason("not a slice type: %v", jv)
		}
		res := reflect.MakeSlice(t, len(v2), len(v2))
		for i, v := range v2 {
			el, err := convertToType(v, t.Elem())
			if err != nil {
				return Nil, err
			}
			res.Index(i).Set(el)
		}
		return res, nil

	default:
		return Nil, errors.Reason("unsupported type: %s", t.Name())
	}
}

// fromString converts a string s to the type t. This is used to extract
// default values from struct tags.
func fromString(s string, t reflect.Type) (reflect.Value, error) {
	var Nil reflect.Value
	if ptrTp := reflect.PtrTo(t); t.Implements(rUnmarshaler) || ptrTp.Implements(rUnmarshaler) {
		return convertToType(s, t)
	}
	switch t.Kind() {
	case reflect.Ptr:
		v, err := fromString(s, t.Elem())
		if err != nil {
			return Nil, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(v)
		return ptr, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return Nil, errors.Annotate(err, "invalid bool value: %s", s)
		}
		return reflect.ValueOf(v), nil
	case reflect.Int:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Nil, errors.Annotate(err, "invalid int value: %s", s)
		}
		return reflect.ValueOf(int(v)), nil
	case reflect.Int64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Nil, errors.Annotate(err, "invalid int64 value: %s", s)
		}
		return reflect.ValueOf(v), nil
	case reflect.Float64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Nil, errors.Annotate(err, "invalid float64 value: %s", s)
		}
		return reflect.ValueOf(v), nil
	case reflect.String:
		return reflect.ValueOf(s), nil
	}
	return Nil, errors.Reason("type %s is not supported", t.Name())
}

// checkChoices verifies the choice list, if any, and assigns the value.
func checkChoices(f reflect.StructField, v reflect.Value) *FieldError {
	choices, ok := f.Tag.Lookup("choices")
	if !ok {
		return nil
	}
	val := v
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.String {
		return &FieldError{
			Path:   jsonName(f),
			Reason: "choices tag applied to a non-string field",
		}
	}
	s := val.String()
	if s == "" && f.Tag.Get("required") != "true" {
		return nil
	}
	for _, c := range strings.Split(choices, ",") {
		if s == c {
			return nil
		}
	}
	return &FieldError{
		Path:   jsonName(f),
		Value:  s,
		Reason: "value is not in the choice list: " + choices,
	}
}

// jsonName resolves the input key for a field from its json tag, falling back
// to the field name. A "-" tag excludes the field.
func jsonName(f reflect.StructField) string {
	name := f.Name
	if tag := f.Tag.Get("json"); tag != "" {
		parts := strings.Split(tag, ",")
		if parts[0] == "-" {
			return "-"
		}
		if parts[0] != "" {
			name = parts[0]
		}
	}
	return name
}

// aliasName resolves the vendor-side alias of a field: the alias tag when
// present, otherwise the Options.AliasGenerator applied to the json name,
// otherwise "".
func aliasName(f reflect.StructField, opts Options) string {
	if a, ok := f.Tag.Lookup("alias"); ok {
		return a
	}
	if opts.AliasGenerator != nil {
		if a := opts.AliasGenerator(jsonName(f)); a != jsonName(f) {
			return a
		}
	}
	return ""
}

func exported(f reflect.StructField) bool {
	firstChar, _ := utf8.DecodeRuneInString(f.Name)
	return unicode.IsUpper(firstChar)
}

// walkFields visits all exported fields of a struct, flattening anonymous
// embedded structs, so that a vendor query embedding its standard query is
// validated against one flat key space.
func walkFields(rt reflect.Type, rv reflect.Value, visit func(reflect.StructField, reflect.Value) error) error {
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		fv := rv.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			if err := walkFields(f.Type, fv, visit); err != nil {
				return err
			}
			continue
		}
		if !exported(f) {
			continue
		}
		if jsonName(f) == "-" {
			continue
		}
		if err := visit(f, fv); err != nil {
			return err
		}
	}
	return nil
}

// isZeroStruct reports whether all exported fields have their zero values.
func isZeroStruct(rv reflect.Value) bool {
	zero := true
	walkFields(rv.Type(), rv, func(f reflect.StructField, fv reflect.Value) error {
		if !fv.IsZero() {
			zero = false
		}
		return nil
	})
	return zero
}

// Validate populates the target struct pointer from a generic JSON value
// according to the target's tags and Options. On failure it returns Issues, a
// list of structured field errors.
func Validate(target interface{}, raw interface{}) error {
	rt := reflect.TypeOf(target)
	if !(rt.Kind() == reflect.Ptr && rt.Elem().Kind() == reflect.Struct) {
		return errors.Reason(
			"expected the schema instance to be a struct pointer, but got %s", rt)
	}
	if raw == nil {
		raw = make(map[string]interface{})
	}
	rawMap, ok := raw.(map[string]interface{})
	if !ok {
		return errors.Reason("input is not a map: %v", raw)
	}
	opts := OptionsOf(target)
	rv := reflect.ValueOf(target).Elem()

	if opts.Frozen && !isZeroStruct(rv) {
		return errors.Reason("frozen schema %s: target is already populated",
			rt.Elem().Name())
	}

	// The pre-validation hook operates on a private copy; the caller's map is
	// never mutated.
	input := make(map[string]interface{}, len(rawMap))
	for k, v := range rawMap {
		input[k] = v
	}
	if n, ok := target.(Normalizer); ok {
		if err := n.NormalizeRaw(input); err != nil {
			return Issues{{Reason: err.Error()}}
		}
	}

	var issues Issues
	found := make(map[string]struct{})
	err := walkFields(rt.Elem(), rv, func(f reflect.StructField, fv reflect.Value) error {
		name := jsonName(f)
		alias := aliasName(f, opts)

		// An aliased field parses by its alias; the canonical name is also
		// accepted when PopulateByName is set (the default).
		var jv interface{}
		var present bool
		if alias != "" {
			if jv, present = input[alias]; present {
				found[alias] = struct{}{}
			}
		}
		if !present && (alias == "" || opts.PopulateByName) {
			if jv, present = input[name]; present {
				found[name] = struct{}{}
			}
		}
		if present {
			v, err := convertToType(jv, f.Type)
			if err != nil {
				issues = append(issues, FieldError{
					Path:   name,
					Value:  jv,
					Reason: err.Error(),
				})
				return nil
			}
			fv.Set(v)
			if fe := checkChoices(f, v); fe != nil {
				issues = append(issues, *fe)
			}
			return nil
		}

		// Not supplied: required check, then default, then zero value.
		if f.Tag.Get("required") == "true" {
			issues = append(issues, FieldError{
				Path:   name,
				Reason: "missing required field",
			})
			return nil
		}
		if defaultVal, ok := f.Tag.Lookup("default"); ok {
			v, err := fromString(defaultVal, f.Type)
			if err != nil {
				return errors.Annotate(err, "bad default value for %s", name)
			}
			fv.Set(v)
			return nil
		}
		fv.Set(reflect.Zero(f.Type))
		return nil
	})
	if err != nil {
		return err
	}

	// Unknown input keys, per the extra-field policy.
	for k, v := range input {
		if _, ok := found[k]; ok {
			continue
		}
		switch opts.Extra {
		case ExtraReject:
			issues = append(issues, FieldError{
				Path:   k,
				Value:  v,
				Reason: "unrecognized field for " + rt.Elem().Name(),
			})
		case ExtraAccept:
			if keeper, ok := target.(UnknownKeeper); ok {
				keeper.KeepUnknown(k, v)
			}
		case ExtraIgnore:
		}
	}

	if len(issues) > 0 {
		issues.Sort()
		return issues
	}
	if c, ok := target.(CrossChecker); ok {
		if err := c.CheckFields(); err != nil {
			return Issues{{Reason: err.Error()}}
		}
	}
	return nil
}
