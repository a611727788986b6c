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

package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/registry"
	"github.com/stockparfait/platform/settings"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

type stubQuery struct {
	model.EquityHistoricalQuery
	Interval string `json:"interval" default:"1d" desc:"Time interval of the data."`
}

type stubFetcher struct{}

func (stubFetcher) TransformQuery(params provider.Params) (*stubQuery, error) {
	return &stubQuery{}, nil
}

func (stubFetcher) ExtractData(ctx context.Context, q *stubQuery, creds provider.Credentials) (interface{}, error) {
	return nil, nil
}

func (stubFetcher) TransformData(q *stubQuery, raw interface{}) ([]model.EquityHistoricalData, error) {
	return nil, nil
}

func testRegistry(ctx context.Context, version string) *registry.Registry {
	return registry.New(ctx, []*provider.Provider{{
		Name:                "alpha",
		Version:             version,
		RequiredCredentials: []string{"alpha_api_key"},
		Fetchers: map[string]provider.Fetcher{
			model.EquityHistoricalName: provider.Bind[*stubQuery, interface{}, model.EquityHistoricalData](stubFetcher{}),
		},
	}}, []registry.CoreExtension{{Name: "chart", Version: "1.0.0"}})
}

func TestMethodName(t *testing.T) {
	t.Parallel()

	Convey("MethodName", t, func() {
		So(MethodName("/equity/price/historical"),
			ShouldEqual, "EquityPriceHistorical")
		So(MethodName("/fixedincome/government/treasury_rates"),
			ShouldEqual, "FixedincomeGovernmentTreasuryRates")
		So(MethodName("/news/company"), ShouldEqual, "NewsCompany")
	})

	Convey("RouteFileName", t, func() {
		So(RouteFileName("/equity/price/historical"),
			ShouldEqual, "equity_price_historical.go")
		So(RouteFileName("/news/company"), ShouldEqual, "news_company.go")
	})
}

func TestBuild(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tmpdir, tmpdirErr := os.MkdirTemp("", "test_build")
	defer os.RemoveAll(tmpdir)

	Convey("Test setup succeeded", t, func() {
		So(tmpdirErr, ShouldBeNil)
	})

	Convey("Build writes the client package", t, func() {
		reg := testRegistry(ctx, "1.0.0")
		dir := filepath.Join(tmpdir, "client")
		histFile := filepath.Join(dir, "equity_price_historical.go")
		So(Dirty(reg, dir), ShouldBeTrue) // no manifest yet

		So(Build(ctx, reg, dir), ShouldBeNil)

		Convey("the client base holds the Client type", func() {
			src, err := os.ReadFile(filepath.Join(dir, "client.go"))
			So(err, ShouldBeNil)
			code := string(src)
			So(code, ShouldStartWith,
				"// Code generated by platform-build. DO NOT EDIT.")
			So(code, ShouldContainSubstring, "package client")
			So(code, ShouldContainSubstring, "type Client struct")
		})

		Convey("each served route gets a typed method in its own file", func() {
			src, err := os.ReadFile(histFile)
			So(err, ShouldBeNil)
			code := string(src)
			So(code, ShouldStartWith,
				"// Code generated by platform-build. DO NOT EDIT.")
			So(code, ShouldContainSubstring,
				"type EquityPriceHistoricalParams struct")
			So(code, ShouldContainSubstring,
				"// Symbol to get data for. Multiple comma separated items allowed. Required.")
			So(code, ShouldContainSubstring, "Symbol string")
			So(code, ShouldContainSubstring, "StartDate string")
			So(code, ShouldContainSubstring, "Provider string")
			// Vendor extras are optional pointer fields.
			So(code, ShouldContainSubstring,
				"// Available for providers: alpha. Time interval of the data. Default: 1d.")
			So(code, ShouldContainSubstring, "Interval *string")
			So(code, ShouldContainSubstring,
				"func (c *Client) EquityPriceHistorical(ctx context.Context, params EquityPriceHistoricalParams) (*envelope.Envelope, error)")
			So(code, ShouldContainSubstring, "// Providers: alpha.")
			// The map conversion passes required fields through and omits
			// unset optional ones.
			So(code, ShouldContainSubstring, `m["symbol"] = p.Symbol`)
			So(code, ShouldContainSubstring, `if p.StartDate != ""`)
			So(code, ShouldContainSubstring, `m["interval"] = *p.Interval`)
		})

		Convey("routes without an installed provider are not emitted", func() {
			_, err := os.Stat(filepath.Join(dir, "news_company.go"))
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("the manifest records the extensions", func() {
			manifest, err := os.ReadFile(filepath.Join(dir, "extension_map.json"))
			So(err, ShouldBeNil)
			So(string(manifest), ShouldContainSubstring, `"alpha": "1.0.0"`)
			So(string(manifest), ShouldContainSubstring, `"chart": "1.0.0"`)
		})

		Convey("rebuilding is clean and deterministic", func() {
			So(Dirty(reg, dir), ShouldBeFalse)

			first, err := os.ReadFile(histFile)
			So(err, ShouldBeNil)
			So(Build(ctx, reg, dir), ShouldBeNil)
			second, err := os.ReadFile(histFile)
			So(err, ShouldBeNil)
			So(string(second), ShouldEqual, string(first))
		})

		Convey("a rebuild sweeps stale generated files", func() {
			stale := filepath.Join(dir, "retired_route.go")
			So(testutil.WriteFile(stale,
				"// Code generated by platform-build. DO NOT EDIT.\n\npackage client\n"),
				ShouldBeNil)
			manual := filepath.Join(dir, "helpers.go")
			So(testutil.WriteFile(manual, "package client\n"), ShouldBeNil)

			So(Build(ctx, reg, dir), ShouldBeNil)
			_, err := os.Stat(stale)
			So(os.IsNotExist(err), ShouldBeTrue)
			_, err = os.Stat(manual) // hand-written files survive
			So(err, ShouldBeNil)
		})

		Convey("a version bump makes the build dirty", func() {
			So(Dirty(testRegistry(ctx, "2.0.0"), dir), ShouldBeTrue)
		})
	})

	Convey("AutoBuild", t, func() {
		reg := testRegistry(ctx, "1.0.0")

		Convey("honors the auto-build flag", func() {
			dir := filepath.Join(tmpdir, "disabled")
			sys := &settings.SystemSettings{AutoBuild: false}
			So(AutoBuild(ctx, reg, dir, sys), ShouldBeNil)
			_, err := os.Stat(filepath.Join(dir, "client.go"))
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("builds when dirty, then settles", func() {
			dir := filepath.Join(tmpdir, "auto")
			sys := &settings.SystemSettings{AutoBuild: true}
			So(AutoBuild(ctx, reg, dir, sys), ShouldBeNil)
			_, err := os.Stat(filepath.Join(dir, "client.go"))
			So(err, ShouldBeNil)
			So(Dirty(reg, dir), ShouldBeFalse)
		})
	})
}
