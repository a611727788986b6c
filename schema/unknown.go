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

// Unknown is an embeddable sink for vendor fields the schema does not
// declare. Embed it with a `json:"-"` tag and set the extra-field policy to
// ExtraAccept:
//
//	type VendorData struct {
//	  model.EquityHistoricalData
//	  schema.Unknown `json:"-"`
//	}
type Unknown map[string]interface{}

var _ UnknownKeeper = &Unknown{}
var _ UnknownLister = Unknown{}

// KeepUnknown implements UnknownKeeper.
func (u *Unknown) KeepUnknown(name string, v interface{}) {
	if *u == nil {
		*u = make(map[string]interface{})
	}
	(*u)[name] = v
}

// Unknowns implements UnknownLister.
func (u Unknown) Unknowns() map[string]interface{} { return u }
