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

package fmp

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/schema"
)

// EquityHistoricalQuery extends the standard historical query with the bar
// interval.
type EquityHistoricalQuery struct {
	model.EquityHistoricalQuery
	Interval string `json:"interval" default:"1d" choices:"1m,5m,15m,30m,1h,4h,1d" desc:"Time interval of the data to return."`
}

// intervalPaths maps the interval choice to the intraday endpoint segment.
var intervalPaths = map[string]string{
	"1m":  "1min",
	"5m":  "5min",
	"15m": "15min",
	"30m": "30min",
	"1h":  "1hour",
	"4h":  "4hour",
}

// EquityHistoricalData extends the standard bar with this vendor's adjusted
// fields.
type EquityHistoricalData struct {
	model.EquityHistoricalData
	AdjClose      *float64 `json:"adj_close" desc:"The adjusted close price."`
	Change        *float64 `json:"change" desc:"Change in the price from the previous close."`
	ChangePercent *float64 `json:"change_percent" desc:"Change in the price from the previous close, as a normalized percent."`
}

var _ schema.Configured = &EquityHistoricalData{}

// SchemaOptions implements schema.Configured.
func (d *EquityHistoricalData) SchemaOptions() schema.Options { return vendorOptions() }

type historicalWrapper struct {
	Symbol     string                   `json:"symbol"`
	Historical []map[string]interface{} `json:"historical"`
}

type historicalResponse []map[string]interface{}

type equityHistoricalFetcher struct{}

var _ provider.Typed[*EquityHistoricalQuery, historicalResponse, *EquityHistoricalData] = equityHistoricalFetcher{}

func (equityHistoricalFetcher) TransformQuery(params provider.Params) (*EquityHistoricalQuery, error) {
	var q EquityHistoricalQuery
	if err := schema.Validate(&q, params); err != nil {
		return nil, err
	}
	return &q, nil
}

func (equityHistoricalFetcher) ExtractData(ctx context.Context, q *EquityHistoricalQuery, creds provider.Credentials) (historicalResponse, error) {
	query := make(url.Values)
	query.Set("from", q.StartDate.String())
	query.Set("to", q.EndDate.String())
	query.Set("apikey", creds[apiKeyCredential])

	var bars historicalResponse
	for _, symbol := range strings.Split(q.Symbol, ",") {
		if q.Interval == "1d" {
			uri := URL + "/v3/historical-price-full/" + url.PathEscape(symbol)
			var w historicalWrapper
			if err := fetch.FetchJSON(ctx, uri, &w, query, nil); err != nil {
				return nil, errors.Annotate(err,
					"failed to fetch daily bars for %s", symbol)
			}
			bars = append(bars, w.Historical...)
			continue
		}
		uri := URL + "/v3/historical-chart/" + intervalPaths[q.Interval] +
			"/" + url.PathEscape(symbol)
		var intraday []map[string]interface{}
		if err := fetch.FetchJSON(ctx, uri, &intraday, query, nil); err != nil {
			return nil, errors.Annotate(err,
				"failed to fetch %s bars for %s", q.Interval, symbol)
		}
		bars = append(bars, intraday...)
	}
	return bars, nil
}

func (equityHistoricalFetcher) TransformData(q *EquityHistoricalQuery, raw historicalResponse) ([]*EquityHistoricalData, error) {
	res := make([]*EquityHistoricalData, len(raw))
	for i, bar := range raw {
		var d EquityHistoricalData
		if err := schema.Validate(&d, bar); err != nil {
			return nil, errors.Annotate(err, "invalid bar %d", i)
		}
		res[i] = &d
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Date.Before(res[j].Date)
	})
	return res, nil
}
