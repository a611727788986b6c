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

// Package model is the catalog of standard models: named, vendor-neutral
// query/data schema pairs such as EquityHistorical. The catalog is pure
// data; vendors subtype these schemas by embedding them.
package model

import (
	"sort"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/platform/dates"
)

// StandardModel is the vendor-agnostic contract for one capability,
// identified by a stable name.
type StandardModel struct {
	Name string
	// Query and Data create fresh zero instances of the schema structs
	// (struct pointers), ready for schema.Validate.
	Query func() interface{}
	Data  func() interface{}
	// AscendingDates mandates that transformed records are sorted by
	// ascending date; otherwise vendors keep the raw payload order.
	AscendingDates bool
}

var catalog = make(map[string]StandardModel)

func register(m StandardModel) {
	if _, ok := catalog[m.Name]; ok {
		panic(errors.Reason("duplicate standard model: %s", m.Name))
	}
	catalog[m.Name] = m
}

// Get looks up a standard model by name.
func Get(name string) (StandardModel, bool) {
	m, ok := catalog[name]
	return m, ok
}

// Names returns the sorted list of all standard model names.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultDateRange implements the shared default-date semantics: a zero end
// date becomes today, and a zero start date becomes one year before the end
// date. Supplied values are returned unchanged.
func DefaultDateRange(start, end dates.Date) (dates.Date, dates.Date) {
	if end.IsZero() {
		end = dates.Today()
	}
	if start.IsZero() {
		start = end.AddDate(-1, 0, 0)
	}
	return start, end
}
