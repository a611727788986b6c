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

// ExtraPolicy determines what Validate does with input keys the schema does
// not declare.
type ExtraPolicy int

const (
	// ExtraReject makes unknown keys a validation error. The default.
	ExtraReject ExtraPolicy = iota
	// ExtraIgnore drops unknown keys silently.
	ExtraIgnore
	// ExtraAccept hands unknown keys to the target's KeepUnknown method,
	// preserving vendor fields under their original names.
	ExtraAccept
)

// Options configure validation and serialization for one schema type.
type Options struct {
	// Frozen schemas must be validated into a zero-valued target; instances
	// are treated as immutable afterwards.
	Frozen bool
	// Extra is the unknown-key policy.
	Extra ExtraPolicy
	// AliasGenerator derives a vendor-side alias from the json name for
	// fields without an explicit alias tag. Returning the input name means
	// "no alias".
	AliasGenerator func(name string) string
	// PopulateByName additionally accepts the canonical json name for
	// aliased fields.
	PopulateByName bool
}

// Configured is implemented by schema types that override DefaultOptions.
type Configured interface {
	SchemaOptions() Options
}

// DefaultOptions reject unknown keys and accept canonical names next to
// aliases.
func DefaultOptions() Options {
	return Options{Extra: ExtraReject, PopulateByName: true}
}

// OptionsOf resolves the effective options for a schema instance.
func OptionsOf(target interface{}) Options {
	if c, ok := target.(Configured); ok {
		return c.SchemaOptions()
	}
	return DefaultOptions()
}
