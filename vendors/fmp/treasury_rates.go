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

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/schema"
)

// TreasuryRatesQuery is the standard treasury query; this vendor adds
// nothing.
type TreasuryRatesQuery struct {
	model.TreasuryRatesQuery
}

// TreasuryRatesData extends the standard curve with the maturities this
// vendor publishes beyond the standard set.
type TreasuryRatesData struct {
	model.TreasuryRatesData
	Year3  *float64 `json:"year_3" desc:"3 year treasury rate."`
	Year7  *float64 `json:"year_7" desc:"7 year treasury rate."`
	Year20 *float64 `json:"year_20" desc:"20 year treasury rate."`
}

var _ schema.Configured = &TreasuryRatesData{}

// SchemaOptions implements schema.Configured: the vendor's "month1" style
// keys are the camelCase aliases of "month_1".
func (d *TreasuryRatesData) SchemaOptions() schema.Options { return vendorOptions() }

type treasuryRatesFetcher struct{}

var _ provider.Typed[*TreasuryRatesQuery, []map[string]interface{}, *TreasuryRatesData] = treasuryRatesFetcher{}

func (treasuryRatesFetcher) TransformQuery(params provider.Params) (*TreasuryRatesQuery, error) {
	var q TreasuryRatesQuery
	if err := schema.Validate(&q, params); err != nil {
		return nil, err
	}
	return &q, nil
}

func (treasuryRatesFetcher) ExtractData(ctx context.Context, q *TreasuryRatesQuery, creds provider.Credentials) ([]map[string]interface{}, error) {
	uri := URL + "/v4/treasury"
	query := make(url.Values)
	query.Set("from", q.StartDate.String())
	query.Set("to", q.EndDate.String())
	query.Set("apikey", creds[apiKeyCredential])
	var days []map[string]interface{}
	if err := fetch.FetchJSON(ctx, uri, &days, query, nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch treasury rates")
	}
	return days, nil
}

func (treasuryRatesFetcher) TransformData(q *TreasuryRatesQuery, raw []map[string]interface{}) ([]*TreasuryRatesData, error) {
	res := make([]*TreasuryRatesData, len(raw))
	for i, day := range raw {
		var d TreasuryRatesData
		if err := schema.Validate(&d, day); err != nil {
			return nil, errors.Annotate(err, "invalid treasury record %d", i)
		}
		res[i] = &d
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Date.Before(res[j].Date)
	})
	return res, nil
}
