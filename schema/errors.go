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
	"fmt"
	"sort"
	"strings"
)

// FieldError describes one validation failure: the field path, the offending
// value and the reason. The command runner converts these into user-facing
// messages without stack traces.
type FieldError struct {
	Path   string      `json:"path"`
	Value  interface{} `json:"value,omitempty"`
	Reason string      `json:"reason"`
}

func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Reason, e.Value)
}

// Issues is the aggregate validation error: one FieldError per failed field.
type Issues []FieldError

var _ error = Issues{}

func (is Issues) Error() string {
	msgs := make([]string, len(is))
	for i, e := range is {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Sort orders issues by field path for deterministic messages.
func (is Issues) Sort() {
	sort.Slice(is, func(i, j int) bool { return is[i].Path < is[j].Path })
}
