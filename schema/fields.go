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

package schema

import (
	"reflect"
	"strings"

	"github.com/stockparfait/errors"
)

// Kind is the semantic type of a field, coarser than the Go type. It is what
// the composite-schema merger and the static builder reason about.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindDate
	KindSlice
	KindMap
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindSlice:
		return "slice"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	}
	return "invalid"
}

// Widen returns the widest common kind for two field declarations, used when
// two vendors declare the same extra field with different types. Numeric
// kinds widen to float; anything else incompatible falls back to string.
func Widen(a, b Kind) Kind {
	if a == b {
		return a
	}
	if (a == KindInt && b == KindFloat) || (a == KindFloat && b == KindInt) {
		return KindFloat
	}
	return KindString
}

// Field is the immutable descriptor of one schema field.
type Field struct {
	Name        string   // canonical (json) name
	Alias       string   // vendor-side name, "" if none
	Kind        Kind     // semantic type
	Type        reflect.Type
	Required    bool
	Default     string // string form of the default, per the tag
	HasDefault  bool
	Description string
	Choices     []string // allowed values, nil if unconstrained
	Providers   []string // vendors accepting this field, nil = all
}

func kindOf(t reflect.Type) Kind {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Implements(rUnmarshaler) || reflect.PtrTo(t).Implements(rUnmarshaler) {
		// The only Unmarshaler value types in the platform are calendar
		// dates and times.
		return KindDate
	}
	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int64:
		return KindInt
	case reflect.Float64, reflect.Float32:
		return KindFloat
	case reflect.String:
		return KindString
	case reflect.Slice:
		return KindSlice
	case reflect.Map:
		return KindMap
	case reflect.Struct:
		return KindStruct
	}
	return KindInvalid
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Describe returns the ordered field descriptors of a schema type, embedded
// structs flattened. The argument may be an instance or a reflect.Type.
func Describe(target interface{}) ([]Field, error) {
	var rt reflect.Type
	if t, ok := target.(reflect.Type); ok {
		rt = t
	} else {
		rt = reflect.TypeOf(target)
	}
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, errors.Reason("expected a struct type, got %s", rt)
	}
	opts := OptionsOf(reflect.New(rt).Interface())
	var fields []Field
	err := walkFields(rt, reflect.New(rt).Elem(),
		func(f reflect.StructField, _ reflect.Value) error {
			def, hasDef := f.Tag.Lookup("default")
			fields = append(fields, Field{
				Name:        jsonName(f),
				Alias:       aliasName(f, opts),
				Kind:        kindOf(f.Type),
				Type:        f.Type,
				Required:    f.Tag.Get("required") == "true",
				Default:     def,
				HasDefault:  hasDef,
				Description: f.Tag.Get("desc"),
				Choices:     splitList(f.Tag.Get("choices")),
				Providers:   splitList(f.Tag.Get("providers")),
			})
			return nil
		})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// FieldNames returns the set of canonical field names of a schema type.
func FieldNames(target interface{}) (map[string]struct{}, error) {
	fields, err := Describe(target)
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		names[f.Name] = struct{}{}
	}
	return names, nil
}
