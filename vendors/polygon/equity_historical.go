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
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/platform/dates"
	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/schema"
)

// EquityHistoricalQuery extends the standard historical query with this
// vendor's aggregate-window controls.
type EquityHistoricalQuery struct {
	model.EquityHistoricalQuery
	Sort       string `json:"sort" default:"asc" choices:"asc,desc" desc:"Sort order of the data."`
	Limit      int    `json:"limit" default:"49999" desc:"The number of data entries to return."`
	Multiplier int    `json:"multiplier" default:"1" desc:"Multiplier of the timespan."`
	Timespan   string `json:"timespan" default:"day" choices:"second,minute,hour,day,week,month,quarter,year" desc:"Timespan of the data."`
}

// EquityHistoricalData extends the standard bar with the trade count.
type EquityHistoricalData struct {
	model.EquityHistoricalData
	Transactions *float64 `json:"transactions" desc:"Number of transactions for the symbol in the time period."`
}

var _ schema.Configured = &EquityHistoricalData{}
var _ schema.Normalizer = &EquityHistoricalData{}

// SchemaOptions implements schema.Configured.
func (d *EquityHistoricalData) SchemaOptions() schema.Options {
	opts := schema.DefaultOptions()
	opts.Extra = schema.ExtraIgnore
	return opts
}

// NormalizeRaw maps the vendor's single-letter aggregate keys onto the
// canonical names. The epoch-millisecond timestamp becomes a date.
func (d *EquityHistoricalData) NormalizeRaw(raw map[string]interface{}) error {
	if ms, ok := raw["t"].(float64); ok {
		raw["date"] = dates.FromTime(time.UnixMilli(int64(ms)).UTC()).String()
		delete(raw, "t")
	}
	renameKeys(raw, map[string]string{
		"o":  "open",
		"h":  "high",
		"l":  "low",
		"c":  "close",
		"v":  "volume",
		"vw": "vwap",
		"n":  "transactions",
	})
	return nil
}

type aggsResponse struct {
	Ticker  string                   `json:"ticker"`
	Status  string                   `json:"status"`
	Results []map[string]interface{} `json:"results"`
}

type equityHistoricalFetcher struct{}

var _ provider.Typed[*EquityHistoricalQuery, []map[string]interface{}, *EquityHistoricalData] = equityHistoricalFetcher{}
var _ provider.Concurrent = equityHistoricalFetcher{}

// Async dispatches this fetcher on a worker goroutine: multi-symbol queries
// fan out one request per symbol.
func (equityHistoricalFetcher) Async() bool { return true }

func (equityHistoricalFetcher) TransformQuery(params provider.Params) (*EquityHistoricalQuery, error) {
	var q EquityHistoricalQuery
	if err := schema.Validate(&q, params); err != nil {
		return nil, err
	}
	return &q, nil
}

type symbolBars struct {
	bars []map[string]interface{}
	err  error
}

func (equityHistoricalFetcher) ExtractData(ctx context.Context, q *EquityHistoricalQuery, creds provider.Credentials) ([]map[string]interface{}, error) {
	symbols := strings.Split(q.Symbol, ",")
	fetchOne := func(symbol string) symbolBars {
		uri := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%d/%s/%s/%s",
			URL, url.PathEscape(symbol), q.Multiplier, q.Timespan,
			q.StartDate, q.EndDate)
		query := make(url.Values)
		query.Set("sort", q.Sort)
		query.Set("limit", strconv.Itoa(q.Limit))
		query.Set("apiKey", creds[apiKeyCredential])
		var resp aggsResponse
		if err := fetch.FetchJSON(ctx, uri, &resp, query, nil); err != nil {
			return symbolBars{err: errors.Annotate(err,
				"failed to fetch aggregates for %s", symbol)}
		}
		return symbolBars{bars: resp.Results}
	}

	// Reduce drains the iterator, which is all the cleanup ParallelMap needs.
	pm := iterator.ParallelMap(ctx, len(symbols), iterator.FromSlice(symbols), fetchOne)
	res := iterator.Reduce[symbolBars, symbolBars](pm, symbolBars{},
		func(sb, acc symbolBars) symbolBars {
			if acc.err != nil {
				return acc
			}
			if sb.err != nil {
				return symbolBars{err: sb.err}
			}
			return symbolBars{bars: append(acc.bars, sb.bars...)}
		})
	if res.err != nil {
		return nil, res.err
	}
	return res.bars, nil
}

func (equityHistoricalFetcher) TransformData(q *EquityHistoricalQuery, raw []map[string]interface{}) ([]*EquityHistoricalData, error) {
	res := make([]*EquityHistoricalData, len(raw))
	for i, bar := range raw {
		var d EquityHistoricalData
		if err := schema.Validate(&d, bar); err != nil {
			return nil, errors.Annotate(err, "invalid aggregate %d", i)
		}
		res[i] = &d
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Date.Before(res[j].Date)
	})
	return res, nil
}
