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

	"github.com/stockparfait/errors"
)

// UnknownLister exposes preserved vendor fields for serialization; it is the
// read side of UnknownKeeper.
type UnknownLister interface {
	Unknowns() map[string]interface{}
}

// ByAlias serializes a schema instance into a map keyed by the vendor-side
// alias of each field (falling back to the canonical name), so that a record
// serialized by alias and re-validated by alias equals the original. Nil
// pointer fields are omitted as "not supplied". Preserved unknown vendor
// fields are included under their original names.
func ByAlias(target interface{}) (map[string]interface{}, error) {
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, errors.Reason("cannot serialize a nil schema instance")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, errors.Reason("expected a struct, got %s", rv.Type())
	}
	opts := OptionsOf(target)
	res := make(map[string]interface{})
	err := walkFields(rv.Type(), rv,
		func(f reflect.StructField, fv reflect.Value) error {
			if fv.Kind() == reflect.Ptr && fv.IsNil() {
				return nil
			}
			key := aliasName(f, opts)
			if key == "" {
				key = jsonName(f)
			}
			res[key] = reflect.Indirect(fv).Interface()
			return nil
		})
	if err != nil {
		return nil, err
	}
	if u, ok := target.(UnknownLister); ok {
		for k, v := range u.Unknowns() {
			if _, exists := res[k]; !exists {
				res[k] = v
			}
		}
	}
	return res, nil
}

// ByName serializes a schema instance into a map keyed by the canonical
// field name, ignoring vendor aliases. This is the consumer-facing shape
// used by record and table conversions. Nil pointer fields are omitted;
// preserved unknown vendor fields are included under their original names.
func ByName(target interface{}) (map[string]interface{}, error) {
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, errors.Reason("cannot serialize a nil schema instance")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, errors.Reason("expected a struct, got %s", rv.Type())
	}
	res := make(map[string]interface{})
	err := walkFields(rv.Type(), rv,
		func(f reflect.StructField, fv reflect.Value) error {
			if fv.Kind() == reflect.Ptr && fv.IsNil() {
				return nil
			}
			res[jsonName(f)] = reflect.Indirect(fv).Interface()
			return nil
		})
	if err != nil {
		return nil, err
	}
	if u, ok := target.(UnknownLister); ok {
		for k, v := range u.Unknowns() {
			if _, exists := res[k]; !exists {
				res[k] = v
			}
		}
	}
	return res, nil
}
