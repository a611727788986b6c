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

package runner

import (
	"context"
	"testing"

	"github.com/stockparfait/platform/dates"
	"github.com/stockparfait/platform/envelope"
	"github.com/stockparfait/platform/fault"
	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/registry"
	"github.com/stockparfait/platform/schema"
	"github.com/stockparfait/platform/settings"

	. "github.com/smartystreets/goconvey/convey"
)

type alphaQuery struct {
	model.EquityHistoricalQuery
	Interval string `json:"interval" default:"1d"`
}

type betaQuery struct {
	model.EquityHistoricalQuery
}

// fakeFetcher records the params and credentials it was called with and
// serves canned historical bars.
type fakeFetcher[Q any] struct {
	bars  []model.EquityHistoricalData
	err   error
	async bool

	gotParams provider.Params
	gotCreds  provider.Credentials
}

func (f *fakeFetcher[Q]) Async() bool { return f.async }

func (f *fakeFetcher[Q]) TransformQuery(params provider.Params) (*Q, error) {
	f.gotParams = params
	q := new(Q)
	if err := schema.Validate(q, map[string]interface{}(params)); err != nil {
		return nil, fault.Wrap(fault.KindValidation, err, "invalid query")
	}
	return q, nil
}

func (f *fakeFetcher[Q]) ExtractData(ctx context.Context, q *Q, creds provider.Credentials) ([]model.EquityHistoricalData, error) {
	f.gotCreds = creds
	if f.err != nil {
		return nil, f.err
	}
	if f.async {
		// Simulate a slow vendor that honors cancellation.
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.bars, nil
}

func (f *fakeFetcher[Q]) TransformData(q *Q, raw []model.EquityHistoricalData) ([]model.EquityHistoricalData, error) {
	return raw, nil
}

var testBars = []model.EquityHistoricalData{
	{Date: dates.New(2023, 1, 3), Open: 100, High: 104, Low: 99, Close: 103},
	{Date: dates.New(2023, 1, 4), Open: 103, High: 106, Low: 102, Close: 105},
}

type testProviders struct {
	alpha *fakeFetcher[alphaQuery]
	beta  *fakeFetcher[betaQuery]
	gamma *fakeFetcher[betaQuery] // quotes only, never historical bars
	reg   *registry.Registry
}

func newTestProviders(ctx context.Context) *testProviders {
	tp := &testProviders{
		alpha: &fakeFetcher[alphaQuery]{bars: testBars},
		beta:  &fakeFetcher[betaQuery]{bars: testBars},
		gamma: &fakeFetcher[betaQuery]{bars: testBars},
	}
	tp.reg = registry.New(ctx, []*provider.Provider{
		{
			Name:                "alpha",
			Version:             "1.0.0",
			RequiredCredentials: []string{"alpha_api_key"},
			Fetchers: map[string]provider.Fetcher{
				model.EquityHistoricalName: provider.Bind[*alphaQuery, []model.EquityHistoricalData, model.EquityHistoricalData](tp.alpha),
			},
		},
		{
			Name:                "beta",
			Version:             "1.0.0",
			RequiredCredentials: []string{"beta_api_key"},
			Fetchers: map[string]provider.Fetcher{
				model.EquityHistoricalName: provider.Bind[*betaQuery, []model.EquityHistoricalData, model.EquityHistoricalData](tp.beta),
			},
		},
		{
			Name:                "gamma",
			Version:             "1.0.0",
			RequiredCredentials: []string{"gamma_api_key"},
			Fetchers: map[string]provider.Fetcher{
				model.EquityQuoteName: provider.Bind[*betaQuery, []model.EquityHistoricalData, model.EquityHistoricalData](tp.gamma),
			},
		},
	}, nil)
	return tp
}

func newTestRunner(ctx context.Context, tp *testProviders, creds map[string]string) *Runner {
	user := settings.NewUserSettings(ctx)
	user.Credentials = creds
	return New(ctx, tp.reg, user, nil)
}

const histRoute = "/equity/price/historical"

func TestRunner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	Convey("Run dispatches a command", t, func() {
		tp := newTestProviders(ctx)

		Convey("explicit provider with credentials", func() {
			r := newTestRunner(ctx, tp, map[string]string{"alpha_api_key": "k"})
			env, err := r.Run(ctx, histRoute, provider.Params{
				"symbol":   "aapl",
				"provider": "alpha",
			})
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeFalse)
			So(env.Provider, ShouldEqual, "alpha")
			So(env.ID, ShouldNotBeEmpty)
			records, ok := env.Results.([]interface{})
			So(ok, ShouldBeTrue)
			So(len(records), ShouldEqual, 2)
			So(records[0], ShouldResemble, testBars[0])
			// The fetcher saw scoped credentials only.
			So(tp.alpha.gotCreds, ShouldResemble,
				provider.Credentials{"alpha_api_key": "k"})
		})

		Convey("default provider is the first with credentials", func() {
			r := newTestRunner(ctx, tp, map[string]string{"beta_api_key": "k"})
			env, err := r.Run(ctx, histRoute, provider.Params{"symbol": "AAPL"})
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeFalse)
			So(env.Provider, ShouldEqual, "beta")
		})

		Convey("no viable provider", func() {
			r := newTestRunner(ctx, tp, nil)
			env, err := r.Run(ctx, histRoute, provider.Params{"symbol": "AAPL"})
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeTrue)
			So(env.Err.Kind, ShouldEqual, fault.KindNoViableProvider)
			So(env.Err.Error(), ShouldContainSubstring, "alpha, beta")
		})

		Convey("explicit provider missing its credential", func() {
			r := newTestRunner(ctx, tp, nil)
			env, err := r.Run(ctx, histRoute, provider.Params{
				"symbol":   "AAPL",
				"provider": "alpha",
			})
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeTrue)
			So(env.Err.Kind, ShouldEqual, fault.KindMissingCredential)
			So(env.Provider, ShouldEqual, "alpha")
		})

		Convey("explicit provider not in the registry", func() {
			r := newTestRunner(ctx, tp, map[string]string{"alpha_api_key": "k"})
			env, err := r.Run(ctx, histRoute, provider.Params{
				"symbol":   "AAPL",
				"provider": "delta",
			})
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeTrue)
			So(env.Err.Kind, ShouldEqual, fault.KindProviderNotFound)
		})

		Convey("explicit provider not implementing the model", func() {
			r := newTestRunner(ctx, tp, map[string]string{"gamma_api_key": "k"})
			env, err := r.Run(ctx, histRoute, provider.Params{
				"symbol":   "AAPL",
				"provider": "gamma",
			})
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeTrue)
			So(env.Err.Kind, ShouldEqual, fault.KindModelNotSupported)
		})

		Convey("unknown route", func() {
			r := newTestRunner(ctx, tp, nil)
			env, err := r.Run(ctx, "/equity/price/psychic", nil)
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeTrue)
			So(env.Err.Kind, ShouldEqual, fault.KindValidation)
		})

		Convey("empty vendor response", func() {
			tp.alpha.bars = nil
			r := newTestRunner(ctx, tp, map[string]string{"alpha_api_key": "k"})
			env, err := r.Run(ctx, histRoute, provider.Params{
				"symbol":   "AAPL",
				"provider": "alpha",
			})
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeTrue)
			So(env.Err.Kind, ShouldEqual, fault.KindFetchEmpty)
		})

		Convey("debug mode raises the error instead", func() {
			r := newTestRunner(ctx, tp, nil)
			r.System.DebugMode = true
			env, err := r.Run(ctx, histRoute, provider.Params{"symbol": "AAPL"})
			So(env, ShouldBeNil)
			So(fault.KindOf(err), ShouldEqual, fault.KindNoViableProvider)
		})
	})

	Convey("Parameter routing", t, func() {
		tp := newTestProviders(ctx)

		Convey("a vendor-specific param reaches its vendor", func() {
			r := newTestRunner(ctx, tp, map[string]string{"alpha_api_key": "k"})
			env, err := r.Run(ctx, histRoute, provider.Params{
				"symbol":   "AAPL",
				"provider": "alpha",
				"interval": "1h",
			})
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeFalse)
			So(env.Warnings, ShouldBeEmpty)
			So(tp.alpha.gotParams["interval"], ShouldEqual, "1h")
		})

		Convey("an unsupported vendor param is dropped with a warning", func() {
			r := newTestRunner(ctx, tp, map[string]string{"beta_api_key": "k"})
			env, err := r.Run(ctx, histRoute, provider.Params{
				"symbol":   "AAPL",
				"provider": "beta",
				"interval": "1h",
			})
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeFalse)
			So(env.Warnings, ShouldResemble, []fault.Warning{{
				Category: fault.WarningCategory,
				Message: "Parameter interval is not supported by provider beta;" +
					" available for: alpha",
			}})
			_, ok := tp.beta.gotParams["interval"]
			So(ok, ShouldBeFalse)
		})

		Convey("an unrecognized param is dropped with a warning", func() {
			r := newTestRunner(ctx, tp, map[string]string{"alpha_api_key": "k"})
			env, err := r.Run(ctx, histRoute, provider.Params{
				"symbol":   "AAPL",
				"provider": "alpha",
				"slippage": 0.5,
			})
			So(err, ShouldBeNil)
			So(env.Failed(), ShouldBeFalse)
			So(env.Warnings, ShouldResemble, []fault.Warning{{
				Category: fault.WarningCategory,
				Message:  "Parameter slippage is not recognized by model EquityHistorical; ignored",
			}})
		})

		Convey("route defaults apply and the caller wins", func() {
			r := newTestRunner(ctx, tp, map[string]string{
				"alpha_api_key": "k", "beta_api_key": "k"})
			r.Settings.Defaults[histRoute] = map[string]interface{}{
				"provider": "beta",
				"interval": "1d",
			}

			env, err := r.Run(ctx, histRoute, provider.Params{
				"symbol":   "AAPL",
				"provider": "alpha",
			})
			So(err, ShouldBeNil)
			So(env.Provider, ShouldEqual, "alpha")
			So(tp.alpha.gotParams["interval"], ShouldEqual, "1d")
		})

		Convey("warnings are isolated between concurrent calls", func() {
			r := newTestRunner(ctx, tp, map[string]string{
				"alpha_api_key": "k", "beta_api_key": "k"})

			warned := make(chan *envelope.Envelope)
			clean := make(chan *envelope.Envelope)
			go func() {
				env, _ := r.Run(ctx, histRoute, provider.Params{
					"symbol":   "AAPL",
					"provider": "beta",
					"interval": "1h", // dropped with a warning
				})
				warned <- env
			}()
			go func() {
				env, _ := r.Run(ctx, histRoute, provider.Params{
					"symbol":   "MSFT",
					"provider": "alpha",
				})
				clean <- env
			}()
			warnedEnv := <-warned
			cleanEnv := <-clean

			So(warnedEnv.Failed(), ShouldBeFalse)
			So(len(warnedEnv.Warnings), ShouldEqual, 1)
			So(cleanEnv.Failed(), ShouldBeFalse)
			So(cleanEnv.Warnings, ShouldBeEmpty)
		})
	})
}

func TestExecute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	Convey("Execute", t, func() {
		tp := newTestProviders(ctx)
		creds := provider.Credentials{"alpha_api_key": "k"}

		Convey("unknown provider", func() {
			_, err := Execute(ctx, tp.reg, "delta", model.EquityHistoricalName,
				provider.Params{"symbol": "AAPL"}, creds)
			So(fault.KindOf(err), ShouldEqual, fault.KindProviderNotFound)
		})

		Convey("unsupported model", func() {
			_, err := Execute(ctx, tp.reg, "alpha", model.EquityQuoteName,
				provider.Params{"symbol": "AAPL"}, creds)
			So(fault.KindOf(err), ShouldEqual, fault.KindModelNotSupported)
		})

		Convey("a canceled context abandons an async fetch", func() {
			tp.alpha.async = true
			cancelCtx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := Execute(cancelCtx, tp.reg, "alpha",
				model.EquityHistoricalName,
				provider.Params{"symbol": "AAPL"}, creds)
			So(fault.KindOf(err), ShouldEqual, fault.KindFetchNetwork)
			So(err.Error(), ShouldContainSubstring, "canceled")
		})
	})
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	Convey("Route table", t, func() {
		cmd, ok := Lookup(histRoute)
		So(ok, ShouldBeTrue)
		So(cmd.Model, ShouldEqual, model.EquityHistoricalName)

		_, ok = Lookup("/nope")
		So(ok, ShouldBeFalse)

		var paths []string
		for _, c := range Routes() {
			paths = append(paths, c.Path)
		}
		So(paths, ShouldResemble, []string{
			"/equity/price/historical",
			"/equity/price/quote",
			"/fixedincome/government/treasury_rates",
			"/news/company",
		})
	})
}

func TestEnvelopeIntegration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	Convey("Failed envelopes keep pre-failure warnings", t, func() {
		tp := newTestProviders(ctx)
		tp.beta.err = fault.New(fault.KindFetchAuth, "invalid API key")
		r := newTestRunner(ctx, tp, map[string]string{"beta_api_key": "bad"})

		env, err := r.Run(ctx, histRoute, provider.Params{
			"symbol":   "AAPL",
			"provider": "beta",
			"interval": "1h", // dropped with a warning before the fetch fails
		})
		So(err, ShouldBeNil)
		So(env.Failed(), ShouldBeTrue)
		So(env.Err.Kind, ShouldEqual, fault.KindFetchAuth)
		So(len(env.Warnings), ShouldEqual, 1)
		So(env.Provider, ShouldEqual, "beta")
	})
}
