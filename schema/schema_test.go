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
	"strings"
	"testing"

	"github.com/stockparfait/errors"

	. "github.com/smartystreets/goconvey/convey"
)

// upperString parses itself from a raw string, uppercasing it.
type upperString string

var _ Unmarshaler = (*upperString)(nil)

func (u *upperString) UnmarshalRaw(v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return errors.Reason("not a string: %v", v)
	}
	*u = upperString(strings.ToUpper(s))
	return nil
}

type simpleQuery struct {
	Symbol string   `json:"symbol" required:"true"`
	Limit  int      `json:"limit" default:"100"`
	Sort   string   `json:"sort" choices:"asc,desc" default:"asc"`
	Factor *float64 `json:"factor"`
	Tags   []string `json:"tags"`
}

type hookedQuery struct {
	Symbol string `json:"symbol" required:"true"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

func (q *hookedQuery) NormalizeRaw(raw map[string]interface{}) error {
	if s, ok := raw["symbol"].(string); ok {
		raw["symbol"] = strings.ToUpper(s)
	}
	return nil
}

func (q *hookedQuery) CheckFields() error {
	if q.End < q.Start {
		return errors.Reason("start %d is after end %d", q.Start, q.End)
	}
	return nil
}

type aliasedData struct {
	LastPrice float64     `json:"last_price" alias:"price"`
	Parsed    upperString `json:"parsed"`
}

type vendorData struct {
	aliasedData
	AdjClose *float64 `json:"adj_close"`
	Unknown  `json:"-"`
}

func (d *vendorData) SchemaOptions() Options {
	opts := DefaultOptions()
	opts.AliasGenerator = func(name string) string {
		parts := strings.Split(name, "_")
		for i := 1; i < len(parts); i++ {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
		return strings.Join(parts, "")
	}
	opts.Extra = ExtraAccept
	return opts
}

type frozenConfig struct {
	Name string `json:"name"`
}

func (c *frozenConfig) SchemaOptions() Options {
	opts := DefaultOptions()
	opts.Frozen = true
	return opts
}

func TestValidate(t *testing.T) {
	t.Parallel()

	Convey("Basic field population", t, func() {
		Convey("values, defaults and zero values", func() {
			var q simpleQuery
			So(Validate(&q, map[string]interface{}{
				"symbol": "AAPL",
				"factor": 1.5,
				"tags":   []interface{}{"a", "b"},
			}), ShouldBeNil)
			So(q.Symbol, ShouldEqual, "AAPL")
			So(q.Limit, ShouldEqual, 100)
			So(q.Sort, ShouldEqual, "asc")
			So(*q.Factor, ShouldEqual, 1.5)
			So(q.Tags, ShouldResemble, []string{"a", "b"})
		})

		Convey("numbers arrive as float64 from JSON", func() {
			var q simpleQuery
			So(Validate(&q, map[string]interface{}{
				"symbol": "AAPL",
				"limit":  float64(5),
			}), ShouldBeNil)
			So(q.Limit, ShouldEqual, 5)
		})

		Convey("null value means supplied empty: no default", func() {
			var q simpleQuery
			So(Validate(&q, map[string]interface{}{
				"symbol": "AAPL",
				"limit":  nil,
				"factor": nil,
			}), ShouldBeNil)
			So(q.Limit, ShouldEqual, 0)
			So(q.Factor, ShouldBeNil)
		})

		Convey("nil input applies all defaults", func() {
			var q simpleQuery
			err := Validate(&q, nil)
			So(err, ShouldNotBeNil) // symbol is required
			var issues Issues
			So(errors.As(err, &issues), ShouldBeTrue)
			So(issues[0].Path, ShouldEqual, "symbol")
			So(issues[0].Reason, ShouldEqual, "missing required field")
		})

		Convey("choice list is enforced", func() {
			var q simpleQuery
			err := Validate(&q, map[string]interface{}{
				"symbol": "AAPL",
				"sort":   "sideways",
			})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "choice list")
		})

		Convey("type mismatch reports the path and value", func() {
			var q simpleQuery
			err := Validate(&q, map[string]interface{}{
				"symbol": "AAPL",
				"limit":  "many",
			})
			var issues Issues
			So(errors.As(err, &issues), ShouldBeTrue)
			So(issues[0].Path, ShouldEqual, "limit")
			So(issues[0].Value, ShouldEqual, "many")
		})

		Convey("issues are sorted by path", func() {
			var q simpleQuery
			err := Validate(&q, map[string]interface{}{
				"limit": "many",
				"sort":  "sideways",
			})
			var issues Issues
			So(errors.As(err, &issues), ShouldBeTrue)
			So(len(issues), ShouldEqual, 3)
			So(issues[0].Path, ShouldEqual, "limit")
			So(issues[1].Path, ShouldEqual, "sort")
			So(issues[2].Path, ShouldEqual, "symbol")
		})

		Convey("target must be a struct pointer", func() {
			var q simpleQuery
			So(Validate(q, nil), ShouldNotBeNil)
		})
	})

	Convey("Hooks", t, func() {
		Convey("NormalizeRaw rewrites the input copy only", func() {
			raw := map[string]interface{}{"symbol": "aapl"}
			var q hookedQuery
			So(Validate(&q, raw), ShouldBeNil)
			So(q.Symbol, ShouldEqual, "AAPL")
			So(raw["symbol"], ShouldEqual, "aapl")
		})

		Convey("CheckFields runs after assignment", func() {
			var q hookedQuery
			err := Validate(&q, map[string]interface{}{
				"symbol": "AAPL",
				"start":  float64(5),
				"end":    float64(1),
			})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "start 5 is after end 1")
		})

		Convey("CheckFields is skipped when fields failed", func() {
			var q hookedQuery
			err := Validate(&q, map[string]interface{}{
				"symbol": "AAPL",
				"start":  "soon",
				"end":    float64(1),
			})
			var issues Issues
			So(errors.As(err, &issues), ShouldBeTrue)
			So(issues[0].Path, ShouldEqual, "start")
		})
	})

	Convey("Aliases and unknown keys", t, func() {
		Convey("alias tag and generated aliases", func() {
			adj := 12.5
			var d vendorData
			So(Validate(&d, map[string]interface{}{
				"price":    101.25,
				"adjClose": adj,
				"parsed":   "abc",
			}), ShouldBeNil)
			So(d.LastPrice, ShouldEqual, 101.25)
			So(*d.AdjClose, ShouldEqual, 12.5)
			So(d.Parsed, ShouldEqual, upperString("ABC"))
		})

		Convey("canonical name is accepted with PopulateByName", func() {
			var d vendorData
			So(Validate(&d, map[string]interface{}{
				"last_price": 99.0,
			}), ShouldBeNil)
			So(d.LastPrice, ShouldEqual, 99.0)
		})

		Convey("unknown keys are preserved under ExtraAccept", func() {
			var d vendorData
			So(Validate(&d, map[string]interface{}{
				"price": 1.0,
				"label": "January 03, 23",
			}), ShouldBeNil)
			So(d.Unknowns(), ShouldResemble,
				map[string]interface{}{"label": "January 03, 23"})
		})

		Convey("unknown keys are rejected by default", func() {
			var q simpleQuery
			err := Validate(&q, map[string]interface{}{
				"symbol": "AAPL",
				"bogus":  true,
			})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unrecognized field")
		})
	})

	Convey("Frozen schemas validate only once", t, func() {
		var c frozenConfig
		So(Validate(&c, map[string]interface{}{"name": "one"}), ShouldBeNil)
		err := Validate(&c, map[string]interface{}{"name": "two"})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "already populated")
	})
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	Convey("Describe flattens and orders fields", t, func() {
		fields, err := Describe(&vendorData{})
		So(err, ShouldBeNil)
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
		}
		So(names, ShouldResemble, []string{"last_price", "parsed", "adj_close"})
		So(fields[0].Alias, ShouldEqual, "price")
		So(fields[0].Kind, ShouldEqual, KindFloat)
	})

	Convey("Describe reads the constraint tags", t, func() {
		fields, err := Describe(&simpleQuery{})
		So(err, ShouldBeNil)
		byName := make(map[string]Field)
		for _, f := range fields {
			byName[f.Name] = f
		}
		So(byName["symbol"].Required, ShouldBeTrue)
		So(byName["limit"].Default, ShouldEqual, "100")
		So(byName["limit"].HasDefault, ShouldBeTrue)
		So(byName["sort"].Choices, ShouldResemble, []string{"asc", "desc"})
		So(byName["tags"].Kind, ShouldEqual, KindSlice)
	})

	Convey("Widen", t, func() {
		So(Widen(KindInt, KindInt), ShouldEqual, KindInt)
		So(Widen(KindInt, KindFloat), ShouldEqual, KindFloat)
		So(Widen(KindFloat, KindInt), ShouldEqual, KindFloat)
		So(Widen(KindBool, KindInt), ShouldEqual, KindString)
	})
}

func TestSerialize(t *testing.T) {
	t.Parallel()

	Convey("ByAlias round trips with Validate", t, func() {
		adj := 3.5
		d := vendorData{
			aliasedData: aliasedData{LastPrice: 10.0, Parsed: "ABC"},
			AdjClose:    &adj,
		}
		m, err := ByAlias(&d)
		So(err, ShouldBeNil)
		So(m, ShouldResemble, map[string]interface{}{
			"price":    10.0,
			"parsed":   upperString("ABC"),
			"adjClose": 3.5,
		})
	})

	Convey("ByName uses canonical names and keeps unknowns", t, func() {
		var d vendorData
		So(Validate(&d, map[string]interface{}{
			"price": 1.0,
			"vol":   2.0,
		}), ShouldBeNil)
		m, err := ByName(&d)
		So(err, ShouldBeNil)
		So(m["last_price"], ShouldEqual, 1.0)
		So(m["vol"], ShouldEqual, 2.0)
		_, hasAdj := m["adj_close"]
		So(hasAdj, ShouldBeFalse) // nil pointers are omitted
	})
}
