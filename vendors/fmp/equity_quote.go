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

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/schema"
)

// EquityQuoteQuery is the standard quote query; this vendor adds nothing.
type EquityQuoteQuery struct {
	model.EquityQuoteQuery
}

// EquityQuoteData extends the standard quote with the day's moving averages.
type EquityQuoteData struct {
	model.EquityQuoteData
	PriceAvg50  *float64 `json:"price_avg50" desc:"50 day moving average price."`
	PriceAvg200 *float64 `json:"price_avg200" desc:"200 day moving average price."`
	MarketCap   *float64 `json:"market_cap" desc:"Market capitalization of the company."`
}

var _ schema.Configured = &EquityQuoteData{}
var _ schema.Normalizer = &EquityQuoteData{}

// SchemaOptions implements schema.Configured.
func (d *EquityQuoteData) SchemaOptions() schema.Options { return vendorOptions() }

// NormalizeRaw maps the vendor's quote keys onto the canonical names that
// camelCase aliasing cannot derive.
func (d *EquityQuoteData) NormalizeRaw(raw map[string]interface{}) error {
	renameKeys(raw, map[string]string{
		"price":             "last_price",
		"dayHigh":           "high",
		"dayLow":            "low",
		"previousClose":     "prev_close",
		"changesPercentage": "change_percent",
	})
	return nil
}

type equityQuoteFetcher struct{}

var _ provider.Typed[*EquityQuoteQuery, []map[string]interface{}, *EquityQuoteData] = equityQuoteFetcher{}

func (equityQuoteFetcher) TransformQuery(params provider.Params) (*EquityQuoteQuery, error) {
	var q EquityQuoteQuery
	if err := schema.Validate(&q, params); err != nil {
		return nil, err
	}
	return &q, nil
}

func (equityQuoteFetcher) ExtractData(ctx context.Context, q *EquityQuoteQuery, creds provider.Credentials) ([]map[string]interface{}, error) {
	uri := URL + "/v3/quote/" + url.PathEscape(q.Symbol)
	query := make(url.Values)
	query.Set("apikey", creds[apiKeyCredential])
	var quotes []map[string]interface{}
	if err := fetch.FetchJSON(ctx, uri, &quotes, query, nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch quotes for %s", q.Symbol)
	}
	return quotes, nil
}

func (equityQuoteFetcher) TransformData(q *EquityQuoteQuery, raw []map[string]interface{}) ([]*EquityQuoteData, error) {
	res := make([]*EquityQuoteData, len(raw))
	for i, quote := range raw {
		var d EquityQuoteData
		if err := schema.Validate(&d, quote); err != nil {
			return nil, errors.Annotate(err, "invalid quote %d", i)
		}
		res[i] = &d
	}
	return res, nil
}
