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

package polygon

import (
	"context"
	"net/url"
	"testing"

	"github.com/stockparfait/fetch"
	"github.com/stockparfait/platform/dates"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEquityHistorical(t *testing.T) {
	// No t.Parallel(): the test overrides the package-level URL.

	Convey("TransformQuery applies the vendor defaults", t, func() {
		q, err := equityHistoricalFetcher{}.TransformQuery(provider.Params{
			"symbol":     "aapl",
			"start_date": "2023-01-01",
			"end_date":   "2023-06-30",
		})
		So(err, ShouldBeNil)
		So(q.Symbol, ShouldEqual, "AAPL")
		So(q.Sort, ShouldEqual, "asc")
		So(q.Limit, ShouldEqual, 49999)
		So(q.Multiplier, ShouldEqual, 1)
		So(q.Timespan, ShouldEqual, "day")

		_, err = equityHistoricalFetcher{}.TransformQuery(provider.Params{
			"symbol":   "AAPL",
			"timespan": "fortnight",
		})
		So(err, ShouldNotBeNil)
	})

	Convey("The fetcher declares itself concurrent", t, func() {
		f := provider.Bind[*EquityHistoricalQuery, []map[string]interface{}, *EquityHistoricalData](equityHistoricalFetcher{})
		So(f.Async(), ShouldBeTrue)
	})

	Convey("Fetching aggregates", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		ctx := fetch.UseClient(context.Background(), server.Client())
		URL = server.URL()

		creds := provider.Credentials{apiKeyCredential: "testkey"}
		f := provider.Bind[*EquityHistoricalQuery, []map[string]interface{}, *EquityHistoricalData](equityHistoricalFetcher{})

		Convey("single-letter keys map onto the standard bar", func() {
			server.ResponseBody = []string{`{
  "ticker": "AAPL",
  "status": "OK",
  "results": [
    {"t": 1672790400000, "o": 103.0, "h": 106.0, "l": 102.0, "c": 105.0,
     "v": 1200.0, "vw": 104.1, "n": 321.0},
    {"t": 1672704000000, "o": 100.0, "h": 104.0, "l": 99.0, "c": 103.0,
     "v": 1000.0, "vw": 101.8, "n": 280.0}
  ]
}`}
			records, err := provider.FetchData(ctx, f, provider.Params{
				"symbol":     "AAPL",
				"start_date": "2023-01-01",
				"end_date":   "2023-06-30",
			}, creds)
			So(err, ShouldBeNil)
			So(server.RequestPath, ShouldEqual,
				"/v2/aggs/ticker/AAPL/range/1/day/2023-01-01/2023-06-30")
			So(server.RequestQuery, ShouldResemble, url.Values{
				"sort":   []string{"asc"},
				"limit":  []string{"49999"},
				"apiKey": []string{"testkey"},
			})

			So(len(records), ShouldEqual, 2)
			first := records[0].(*EquityHistoricalData)
			So(first.Date, ShouldResemble, dates.New(2023, 1, 3)) // sorted ascending
			So(first.Open, ShouldEqual, 100.0)
			So(first.Close, ShouldEqual, 103.0)
			So(*first.VWAP, ShouldEqual, 101.8)
			So(*first.Transactions, ShouldEqual, 280.0)
			second := records[1].(*EquityHistoricalData)
			So(second.Date, ShouldResemble, dates.New(2023, 1, 4))
		})

		Convey("multiple symbols merge their bars", func() {
			server.ResponseBody = []string{
				`{"ticker": "AAPL", "status": "OK", "results": [
  {"t": 1672704000000, "o": 100.0, "h": 104.0, "l": 99.0, "c": 103.0}
]}`,
				`{"ticker": "MSFT", "status": "OK", "results": [
  {"t": 1672704000000, "o": 240.0, "h": 245.0, "l": 239.0, "c": 244.0}
]}`,
			}
			records, err := provider.FetchData(ctx, f, provider.Params{
				"symbol": "aapl,msft",
			}, creds)
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 2)
		})
	})
}

func TestCompanyNews(t *testing.T) {
	Convey("Fetching news", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		ctx := fetch.UseClient(context.Background(), server.Client())
		URL = server.URL()

		creds := provider.Credentials{apiKeyCredential: "testkey"}
		f := provider.Bind[*CompanyNewsQuery, []map[string]interface{}, *CompanyNewsData](companyNewsFetcher{})

		server.ResponseBody = []string{`{
  "status": "OK",
  "results": [
    {"title": "Apple hits a high", "published_utc": "2023-06-29T14:00:00Z",
     "article_url": "https://news.example.com/apple",
     "description": "Shares rallied.",
     "author": "A. Reporter",
     "image_url": "https://news.example.com/apple.jpg",
     "publisher": {"name": "newswire", "homepage_url": "https://newswire.example.com"},
     "tickers": ["AAPL", "MSFT"]}
  ]
}`}
		records, err := provider.FetchData(ctx, f, provider.Params{
			"symbol":     "AAPL",
			"start_date": "2023-06-01",
			"end_date":   "2023-06-30",
			"limit":      10,
			"order":      "asc",
		}, creds)
		So(err, ShouldBeNil)
		So(server.RequestPath, ShouldEqual, "/v2/reference/news")
		So(server.RequestQuery, ShouldResemble, url.Values{
			"ticker":            []string{"AAPL"},
			"published_utc.gte": []string{"2023-06-01"},
			"published_utc.lte": []string{"2023-06-30"},
			"order":             []string{"asc"},
			"limit":             []string{"10"},
			"apiKey":            []string{"testkey"},
		})

		So(len(records), ShouldEqual, 1)
		a := records[0].(*CompanyNewsData)
		So(a.Date, ShouldResemble, dates.New(2023, 6, 29))
		So(a.Title, ShouldEqual, "Apple hits a high")
		So(a.Text, ShouldEqual, "Shares rallied.")
		So(a.URL, ShouldEqual, "https://news.example.com/apple")
		So(a.Source, ShouldEqual, "newswire")
		So(a.Symbol, ShouldEqual, "AAPL,MSFT")
		So(*a.Author, ShouldEqual, "A. Reporter")
		So(*a.ImageURL, ShouldEqual, "https://news.example.com/apple.jpg")
	})
}
