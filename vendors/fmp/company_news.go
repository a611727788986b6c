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
	"strconv"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/schema"
)

// CompanyNewsQuery extends the standard news query with result paging.
type CompanyNewsQuery struct {
	model.CompanyNewsQuery
	Page int `json:"page" default:"0" desc:"Page number of the results to return."`
}

// CompanyNewsData extends the standard article with the cover image.
type CompanyNewsData struct {
	model.CompanyNewsData
	Image *string `json:"image" desc:"URL to the image of the news source."`
}

var _ schema.Configured = &CompanyNewsData{}
var _ schema.Normalizer = &CompanyNewsData{}

// SchemaOptions implements schema.Configured.
func (d *CompanyNewsData) SchemaOptions() schema.Options { return vendorOptions() }

// NormalizeRaw maps the vendor's article keys onto the canonical names.
func (d *CompanyNewsData) NormalizeRaw(raw map[string]interface{}) error {
	renameKeys(raw, map[string]string{
		"publishedDate": "date",
		"site":          "source",
	})
	return nil
}

type companyNewsFetcher struct{}

var _ provider.Typed[*CompanyNewsQuery, []map[string]interface{}, *CompanyNewsData] = companyNewsFetcher{}

func (companyNewsFetcher) TransformQuery(params provider.Params) (*CompanyNewsQuery, error) {
	var q CompanyNewsQuery
	if err := schema.Validate(&q, params); err != nil {
		return nil, err
	}
	return &q, nil
}

func (companyNewsFetcher) ExtractData(ctx context.Context, q *CompanyNewsQuery, creds provider.Credentials) ([]map[string]interface{}, error) {
	uri := URL + "/v3/stock_news"
	query := make(url.Values)
	query.Set("tickers", q.Symbol)
	query.Set("from", q.StartDate.String())
	query.Set("to", q.EndDate.String())
	query.Set("limit", strconv.Itoa(q.Limit))
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("apikey", creds[apiKeyCredential])
	var articles []map[string]interface{}
	if err := fetch.FetchJSON(ctx, uri, &articles, query, nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch news for %s", q.Symbol)
	}
	return articles, nil
}

func (companyNewsFetcher) TransformData(q *CompanyNewsQuery, raw []map[string]interface{}) ([]*CompanyNewsData, error) {
	res := make([]*CompanyNewsData, len(raw))
	for i, article := range raw {
		var d CompanyNewsData
		if err := schema.Validate(&d, article); err != nil {
			return nil, errors.Annotate(err, "invalid article %d", i)
		}
		res[i] = &d
	}
	return res, nil
}
