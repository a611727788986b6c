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

package chart

import (
	"context"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/platform/dates"
	"github.com/stockparfait/platform/envelope"
	"github.com/stockparfait/platform/registry"
)

// Version of the charting extension, reported in the extension map.
const Version = "1.0.0"

func init() {
	registry.RegisterCore(registry.CoreExtension{
		Name:    "chart",
		Version: Version,
		Install: Install,
	})
}

// Install registers the "chart" accessor on envelopes. It is invoked by the
// registry when the extension loads.
func Install(ctx context.Context) error {
	envelope.RegisterAccessor(ctx, "chart",
		func(e *envelope.Envelope) (interface{}, error) {
			return &accessor{env: e}, nil
		})
	return nil
}

// accessor charts the dated numeric columns of one envelope.
type accessor struct {
	env *envelope.Envelope
}

var _ envelope.Charter = &accessor{}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func stringList(v interface{}) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []interface{}:
		var res []string
		for _, el := range x {
			if s, ok := el.(string); ok {
				res = append(res, s)
			}
		}
		return res
	case string:
		return []string{x}
	}
	return nil
}

// ToChart implements envelope.Charter: it builds a series chart with one
// plot per numeric column. Options: "title" (string), "columns" (list of
// column names to keep), "log_scale" (bool).
func (a *accessor) ToChart(opts map[string]interface{}) (interface{}, error) {
	columns, rows, err := a.env.Records()
	if err != nil {
		return nil, errors.Annotate(err, "cannot chart the result")
	}
	if len(rows) == 0 {
		return nil, errors.Reason("the result has no rows to chart")
	}
	ds := make([]dates.Date, len(rows))
	dated := true
	for i, row := range rows {
		d, ok := row["date"].(dates.Date)
		if !ok {
			dated = false
			break
		}
		ds[i] = d
	}
	if !dated {
		return nil, errors.Reason("the result has no date column to chart over")
	}

	var keep map[string]struct{}
	if sel := stringList(opts["columns"]); sel != nil {
		keep = make(map[string]struct{}, len(sel))
		for _, c := range sel {
			keep[c] = struct{}{}
		}
	}
	title := a.env.Provider
	if t, ok := opts["title"].(string); ok {
		title = t
	}

	c := NewChart(KindSeries, title).SetXLabel("date")
	if b, ok := opts["log_scale"].(bool); ok {
		c.SetYLogScale(b)
	}
	for _, col := range columns {
		if col == "date" {
			continue
		}
		if keep != nil {
			if _, ok := keep[col]; !ok {
				continue
			}
		}
		values := make([]float64, len(rows))
		numeric := true
		for i, row := range rows {
			f, ok := toFloat(row[col])
			if !ok {
				numeric = false
				break
			}
			values[i] = f
		}
		if !numeric {
			continue
		}
		if err := c.AddPlot(NewSeriesPlot(ds, values).SetLegend(col)); err != nil {
			return nil, errors.Annotate(err, "failed to add plot for '%s'", col)
		}
	}
	if len(c.Plots) == 0 {
		return nil, errors.Reason("the result has no numeric columns to chart")
	}
	return c, nil
}
