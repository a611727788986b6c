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

package table

import (
	"fmt"
	"strconv"
)

// FormatCell renders a single record value as a table cell. Nil renders as
// the empty string; floats keep their shortest exact representation.
func FormatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FromRecords builds a table from ordered columns and a list of record maps.
// A record missing a column yields an empty cell.
func FromRecords(columns []string, records []map[string]interface{}) *Table {
	t := NewTable(columns...)
	for _, rec := range records {
		row := make(StringRow, len(columns))
		for i, c := range columns {
			row[i] = FormatCell(rec[c])
		}
		t.AddRow(row)
	}
	return t
}
