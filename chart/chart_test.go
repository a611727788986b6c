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
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stockparfait/platform/dates"
	"github.com/stockparfait/platform/envelope"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEnums(t *testing.T) {
	t.Parallel()

	Convey("Kind", t, func() {
		So(KindSeries.String(), ShouldEqual, "KindSeries")
		So(KindXY.String(), ShouldEqual, "KindXY")

		data, err := json.Marshal(KindSeries)
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, `"KindSeries"`)

		_, err = json.Marshal(KindLast)
		So(err, ShouldNotBeNil)
	})

	Convey("PlotType", t, func() {
		So(PlotBars.String(), ShouldEqual, "PlotBars")

		data, err := json.Marshal(PlotScatter)
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, `"PlotScatter"`)

		_, err = json.Marshal(PlotLast)
		So(err, ShouldNotBeNil)
	})
}

func TestPlot(t *testing.T) {
	t.Parallel()

	Convey("Plot constructors and setters", t, func() {
		ds := []dates.Date{dates.New(2023, 1, 3), dates.New(2023, 1, 4)}

		Convey("series plot", func() {
			p := NewSeriesPlot(ds, []float64{1.0, 2.0}).
				SetYLabel("price").
				SetLegend("close").
				SetPlotType(PlotDashed)
			So(p.Kind, ShouldEqual, KindSeries)
			So(p.Size(), ShouldEqual, 2)
			So(p.YLabel, ShouldEqual, "price")
			So(p.Legend, ShouldEqual, "close")
			So(p.PlotType, ShouldEqual, PlotDashed)
		})

		Convey("XY plot min and max", func() {
			p := NewXYPlot([]float64{3.0, 1.0, 2.0}, []float64{1.0, 2.0, 3.0})
			So(p.Kind, ShouldEqual, KindXY)
			So(p.MinX(), ShouldEqual, 1.0)
			So(p.MaxX(), ShouldEqual, 3.0)
		})

		Convey("length mismatch panics", func() {
			So(func() { NewSeriesPlot(ds, []float64{1.0}) }, ShouldPanic)
			So(func() { NewXYPlot([]float64{1.0}, nil) }, ShouldPanic)
		})
	})

	Convey("Chart assembly and serialization", t, func() {
		c := NewChart(KindSeries, "Prices").SetXLabel("date").SetYLogScale(true)
		ds := []dates.Date{dates.New(2023, 1, 3)}
		So(c.AddPlot(NewSeriesPlot(ds, []float64{1.0})), ShouldBeNil)

		Convey("kind mismatch is an error", func() {
			So(c.AddPlot(NewXYPlot([]float64{1.0}, []float64{1.0})),
				ShouldNotBeNil)
		})

		Convey("WriteJS wraps the JSON payload", func() {
			var buf bytes.Buffer
			So(c.WriteJS(&buf), ShouldBeNil)
			s := buf.String()
			So(s, ShouldStartWith, "var DATA = ")
			So(s, ShouldEndWith, ";")

			var decoded map[string]interface{}
			So(json.Unmarshal([]byte(s[len("var DATA = "):len(s)-1]), &decoded),
				ShouldBeNil)
			So(decoded["Title"], ShouldEqual, "Prices")
			So(decoded["YLogScale"], ShouldEqual, true)
		})
	})
}

type quoteRow struct {
	Date  dates.Date `json:"date"`
	Close float64    `json:"close"`
	Open  float64    `json:"open"`
	Note  string     `json:"note"`
}

type datelessRow struct {
	Close float64 `json:"close"`
}

func testEnvelope(results interface{}) *envelope.Envelope {
	return envelope.New("fmp", results, nil)
}

func TestAccessor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	Convey("Install succeeds", t, func() {
		So(Install(ctx), ShouldBeNil)
	})

	rows := []interface{}{
		&quoteRow{Date: dates.New(2023, 1, 3), Close: 11, Open: 10, Note: "a"},
		&quoteRow{Date: dates.New(2023, 1, 4), Close: 12, Open: 11, Note: "b"},
	}

	Convey("ToChart plots the numeric columns over dates", t, func() {
		res, err := testEnvelope(rows).Chart(nil)
		So(err, ShouldBeNil)
		c, ok := res.(*Chart)
		So(ok, ShouldBeTrue)
		So(c.Kind, ShouldEqual, KindSeries)
		So(c.Title, ShouldEqual, "fmp") // provider is the default title
		So(len(c.Plots), ShouldEqual, 2)
		So(c.Plots[0].Legend, ShouldEqual, "close")
		So(c.Plots[0].Y, ShouldResemble, []float64{11, 12})
		So(c.Plots[0].Dates, ShouldResemble,
			[]dates.Date{dates.New(2023, 1, 3), dates.New(2023, 1, 4)})
		So(c.Plots[1].Legend, ShouldEqual, "open")
	})

	Convey("ToChart options", t, func() {
		res, err := testEnvelope(rows).Chart(map[string]interface{}{
			"title":     "AAPL close",
			"columns":   []string{"close"},
			"log_scale": true,
		})
		So(err, ShouldBeNil)
		c := res.(*Chart)
		So(c.Title, ShouldEqual, "AAPL close")
		So(c.YLogScale, ShouldBeTrue)
		So(len(c.Plots), ShouldEqual, 1)
	})

	Convey("ToChart failure modes", t, func() {
		Convey("no date column", func() {
			_, err := testEnvelope([]interface{}{&datelessRow{Close: 1}}).Chart(nil)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "no date column")
		})

		Convey("no numeric columns", func() {
			_, err := testEnvelope(rows).Chart(map[string]interface{}{
				"columns": []string{"note"},
			})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "no numeric columns")
		})

		Convey("a failed envelope", func() {
			env := envelope.NewError("fmp",
				context.DeadlineExceeded, nil)
			_, err := env.Chart(nil)
			So(err, ShouldNotBeNil)
		})
	})
}
