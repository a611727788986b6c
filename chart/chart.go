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

// Package chart is the charting extension: it turns result envelopes into
// serializable chart artifacts and registers itself as the "chart"
// capability. Importing the package for side effects installs it:
//
//	import _ "github.com/stockparfait/platform/chart"
package chart

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/platform/dates"
)

// Kind is an enum of chart axes: time series over dates, or arbitrary (x, y)
// points.
type Kind int

// Values of Kind.
const (
	KindSeries Kind = iota
	KindXY
	KindLast // to check for invalid kinds
)

var _ json.Marshaler = KindSeries

func (k Kind) String() string {
	switch k {
	case KindSeries:
		return "KindSeries"
	case KindXY:
		return "KindXY"
	default:
		return fmt.Sprintf("<Undefined Kind: %d>", k)
	}
}

// MarshalJSON implements json.Marshaler.
func (k Kind) MarshalJSON() ([]byte, error) {
	if k >= KindLast {
		return nil, errors.Reason("invalid kind: %s", k)
	}
	return []byte(`"` + k.String() + `"`), nil
}

// PlotType is an enum of rendering styles for one plot.
type PlotType int

// Values of PlotType.
const (
	PlotLine    PlotType = iota
	PlotDashed           // dashed connected line
	PlotScatter          // individual dots
	PlotBars             // histogram bars for each X
	PlotLast             // to check for invalid plot types
)

var _ json.Marshaler = PlotLine

func (p PlotType) String() string {
	switch p {
	case PlotLine:
		return "PlotLine"
	case PlotDashed:
		return "PlotDashed"
	case PlotScatter:
		return "PlotScatter"
	case PlotBars:
		return "PlotBars"
	default:
		return fmt.Sprintf("<Undefined PlotType: %d>", p)
	}
}

// MarshalJSON implements json.Marshaler.
func (p PlotType) MarshalJSON() ([]byte, error) {
	if p >= PlotLast {
		return nil, errors.Reason("invalid plot type: %s", p)
	}
	return []byte(`"` + p.String() + `"`), nil
}

// Plot holds the data and configuration of a single plot line.
type Plot struct {
	Kind     Kind
	X        []float64    `json:"X,omitempty"` // when Kind = KindXY
	Y        []float64
	Dates    []dates.Date `json:"Dates,omitempty"` // when Kind = KindSeries
	YLabel   string       // value label on the Y axis
	Legend   string       // name in the legend
	PlotType PlotType
}

// NewSeriesPlot creates a time series plot. Panics if the slices have
// different lengths.
func NewSeriesPlot(ds []dates.Date, values []float64) *Plot {
	if len(ds) != len(values) {
		panic(errors.Reason("len(dates)=%d != len(values)=%d", len(ds), len(values)))
	}
	return &Plot{
		Kind:   KindSeries,
		Y:      values,
		Dates:  ds,
		YLabel: "values",
		Legend: "Unnamed",
	}
}

// NewXYPlot creates an untimed plot. Panics if the slices x and y don't have
// the same length.
func NewXYPlot(x, y []float64) *Plot {
	if len(x) != len(y) {
		panic(errors.Reason("len(x)=%d != len(y)=%d", len(x), len(y)))
	}
	return &Plot{
		Kind:   KindXY,
		X:      x,
		Y:      y,
		YLabel: "values",
		Legend: "Unnamed",
	}
}

// Size returns the number of points in the plot.
func (p *Plot) Size() int { return len(p.Y) }

// SetYLabel of the plot - used as the value label on the Y axis.
func (p *Plot) SetYLabel(label string) *Plot {
	p.YLabel = label
	return p
}

// SetLegend of the plot - used as the plot's name in the legend.
func (p *Plot) SetLegend(legend string) *Plot {
	p.Legend = legend
	return p
}

// SetPlotType - how to render the data.
func (p *Plot) SetPlotType(t PlotType) *Plot {
	p.PlotType = t
	return p
}

// MinX computes the smallest value of X. X may be unsorted, so all values
// are scanned. If undefined, returns +Inf.
func (p *Plot) MinX() float64 {
	min := math.Inf(1)
	for _, x := range p.X {
		if x < min {
			min = x
		}
	}
	return min
}

// MaxX computes the largest value of X. If undefined, returns -Inf.
func (p *Plot) MaxX() float64 {
	max := math.Inf(-1)
	for _, x := range p.X {
		if x > max {
			max = x
		}
	}
	return max
}

// Chart is the renderable artifact: a titled collection of plots sharing
// one pair of axes. All plots must have the Chart's Kind.
type Chart struct {
	Kind      Kind
	Title     string
	XLabel    string
	YLogScale bool
	Plots     []*Plot
}

// NewChart creates an empty chart of the given kind.
func NewChart(kind Kind, title string) *Chart {
	return &Chart{Kind: kind, Title: title, XLabel: "Value"}
}

// SetXLabel of the chart.
func (c *Chart) SetXLabel(l string) *Chart {
	c.XLabel = l
	return c
}

// SetYLogScale of the chart.
func (c *Chart) SetYLogScale(b bool) *Chart {
	c.YLogScale = b
	return c
}

// AddPlot adds a plot. It's an error if the plot and the Chart have
// different Kinds.
func (c *Chart) AddPlot(p *Plot) error {
	if p.Kind != c.Kind {
		return errors.Reason("plot's kind [%s] != chart's kind [%s]",
			p.Kind, c.Kind)
	}
	c.Plots = append(c.Plots, p)
	return nil
}

// WriteJSON serializes the chart to w.
func (c *Chart) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(c); err != nil {
		return errors.Annotate(err, "failed to encode JSON")
	}
	return nil
}

// WriteJS writes "var DATA = <JSON>;" string to w, suitable for importing as
// a javascript module.
func (c *Chart) WriteJS(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "var DATA = "); err != nil {
		return errors.Annotate(err, "failed to write JS prefix")
	}
	if err := c.WriteJSON(w); err != nil {
		return errors.Annotate(err, "failed to write JSON part of JS")
	}
	if _, err := fmt.Fprintf(w, ";"); err != nil {
		return errors.Annotate(err, "failed to write JS suffix")
	}
	return nil
}
