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

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stockparfait/logging"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	Convey("parseFlags", t, func() {
		Convey("parses all the flags", func() {
			flags, err := parseFlags([]string{
				"-models", "-credentials", "-csv", "-log-level", "error"})
			So(err, ShouldBeNil)
			So(flags.Models, ShouldBeTrue)
			So(flags.Credentials, ShouldBeTrue)
			So(flags.CSV, ShouldBeTrue)
			So(flags.LogLevel, ShouldEqual, logging.Error)
		})

		Convey("defaults", func() {
			flags, err := parseFlags([]string{})
			So(err, ShouldBeNil)
			So(flags.Models, ShouldBeFalse)
			So(flags.CSV, ShouldBeFalse)
			So(flags.LogLevel, ShouldEqual, logging.Info)
		})
	})
}

func TestPrintData(t *testing.T) {
	t.Parallel()

	ctx := logging.Use(context.Background(),
		logging.DefaultGoLogger(logging.Info))

	Convey("providers table", t, func() {
		var buf bytes.Buffer
		So(printData(ctx, &Flags{CSV: true}, &buf), ShouldBeNil)
		So("\n"+buf.String(), ShouldEqual, `
provider,version,models,credentials
fmp,1.0.0,CompanyNews EquityHistorical EquityQuote TreasuryRates,fmp_api_key
polygon,1.0.0,CompanyNews EquityHistorical,polygon_api_key
`)
	})

	Convey("models table", t, func() {
		var buf bytes.Buffer
		So(printData(ctx, &Flags{Models: true, CSV: true}, &buf), ShouldBeNil)
		So("\n"+buf.String(), ShouldEqual, `
model,providers,extra_params
CompanyNews,fmp polygon,order page
EquityHistorical,fmp polygon,interval limit multiplier sort timespan
EquityQuote,fmp,
TreasuryRates,fmp,
`)
	})

	Convey("credentials table", t, func() {
		var buf bytes.Buffer
		So(printData(ctx, &Flags{Credentials: true, CSV: true}, &buf),
			ShouldBeNil)
		So("\n"+buf.String(), ShouldEqual, `
credential
fmp_api_key
polygon_api_key
`)
	})

	Convey("text format aligns the columns", t, func() {
		var buf bytes.Buffer
		So(printData(ctx, &Flags{}, &buf), ShouldBeNil)
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		So(len(lines), ShouldEqual, 4) // header, dashes, two providers
		So(lines[0], ShouldContainSubstring, "provider | version")
		So(lines[2], ShouldContainSubstring, "fmp")
		So(lines[3], ShouldContainSubstring, "polygon")
	})
}
