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

package envelope

import (
	"math"
	"reflect"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/platform/schema"
	"github.com/stockparfait/platform/table"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// Records converts the results payload into ordered columns and row maps.
// Single-record and multi-record payloads are both accepted. Columns follow
// the schema's declaration order, except that a "date" column always leads;
// preserved unknown vendor fields are appended in sorted order.
func (e *Envelope) Records() ([]string, []map[string]interface{}, error) {
	if e.Err != nil {
		return nil, nil, errors.Reason("cannot convert a failed result: %s",
			e.Err.Error())
	}
	if e.Results == nil {
		return nil, nil, errors.Reason("the result carries no data")
	}
	rv := reflect.ValueOf(e.Results)
	var elems []interface{}
	switch rv.Kind() {
	case reflect.Slice:
		elems = make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems[i] = rv.Index(i).Interface()
		}
	case reflect.Ptr, reflect.Struct:
		elems = []interface{}{e.Results}
	default:
		return nil, nil, errors.Reason(
			"results of type %s are not tabular", rv.Type())
	}
	if len(elems) == 0 {
		return nil, nil, nil
	}

	fields, err := schema.Describe(elems[0])
	if err != nil {
		return nil, nil, errors.Annotate(err, "failed to describe the record schema")
	}
	columns := make([]string, 0, len(fields))
	declared := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		columns = append(columns, f.Name)
		declared[f.Name] = struct{}{}
	}

	rows := make([]map[string]interface{}, len(elems))
	var extras []string
	for i, el := range elems {
		row, err := schema.ByName(el)
		if err != nil {
			return nil, nil, errors.Annotate(err, "failed to serialize record %d", i)
		}
		for k := range row {
			if _, ok := declared[k]; !ok {
				declared[k] = struct{}{}
				extras = append(extras, k)
			}
		}
		rows[i] = row
	}
	slices.Sort(extras)
	columns = append(columns, extras...)

	if i := slices.Index(columns, "date"); i > 0 {
		copy(columns[1:i+1], columns[:i])
		columns[0] = "date"
	}
	return columns, rows, nil
}

// Table converts the results into a renderable table, with the date column
// leading when present.
func (e *Envelope) Table() (*table.Table, error) {
	columns, rows, err := e.Records()
	if err != nil {
		return nil, err
	}
	return table.FromRecords(columns, rows), nil
}

// Dict reshapes the results per the requested orientation:
//
//   - "records": a list of row maps,
//   - "list": a map from column name to the column's values,
//   - "index": a map from row position to the row map.
func (e *Envelope) Dict(orient string) (interface{}, error) {
	columns, rows, err := e.Records()
	if err != nil {
		return nil, err
	}
	switch orient {
	case "records":
		return rows, nil
	case "list":
		res := make(map[string][]interface{}, len(columns))
		for _, c := range columns {
			vals := make([]interface{}, len(rows))
			for i, row := range rows {
				vals[i] = row[c]
			}
			res[c] = vals
		}
		return res, nil
	case "index":
		res := make(map[int]map[string]interface{}, len(rows))
		for i, row := range rows {
			res[i] = row
		}
		return res, nil
	}
	return nil, errors.Reason("unsupported orientation '%s'", orient)
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint16:
		return float64(x), true
	}
	return 0, false
}

// Matrix converts the numeric columns of the results into a dense matrix of
// one row per record. A column qualifies when every one of its present values
// is numeric; missing values become NaN. The qualifying column names are
// returned alongside the matrix.
func (e *Envelope) Matrix() (*mat.Dense, []string, error) {
	columns, rows, err := e.Records()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errors.Reason("the result carries no rows")
	}
	var numeric []string
	for _, c := range columns {
		ok := true
		present := false
		for _, row := range rows {
			v, has := row[c]
			if !has || v == nil {
				continue
			}
			present = true
			if _, isNum := asFloat(v); !isNum {
				ok = false
				break
			}
		}
		if ok && present {
			numeric = append(numeric, c)
		}
	}
	if len(numeric) == 0 {
		return nil, nil, errors.Reason("the result has no numeric columns")
	}
	data := make([]float64, 0, len(rows)*len(numeric))
	for _, row := range rows {
		for _, c := range numeric {
			if f, ok := asFloat(row[c]); ok {
				data = append(data, f)
			} else {
				data = append(data, math.NaN())
			}
		}
	}
	return mat.NewDense(len(rows), len(numeric), data), numeric, nil
}
