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
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/schema"
)

// CompanyNewsQuery extends the standard news query with the sort order.
type CompanyNewsQuery struct {
	model.CompanyNewsQuery
	Order string `json:"order" default:"desc" choices:"asc,desc" desc:"Sort order of the articles."`
}

// CompanyNewsData extends the standard article with the author and image.
type CompanyNewsData struct {
	model.CompanyNewsData
	Author   *string `json:"author" desc:"Author of the article."`
	ImageURL *string `json:"image_url" desc:"URL to the image of the article."`
}

var _ schema.Configured = &CompanyNewsData{}
var _ schema.Normalizer = &CompanyNewsData{}

// SchemaOptions implements schema.Configured.
func (d *CompanyNewsData) SchemaOptions() schema.Options {
	opts := schema.DefaultOptions()
	opts.Extra = schema.ExtraIgnore
	return opts
}

// NormalizeRaw maps the vendor's article shape onto the canonical names,
// flattening the publisher object and the ticker list.
func (d *CompanyNewsData) NormalizeRaw(raw map[string]interface{}) error {
	renameKeys(raw, map[string]string{
		"published_utc": "date",
		"article_url":   "url",
		"description":   "text",
	})
	if pub, ok := raw["publisher"].(map[string]interface{}); ok {
		if name, ok := pub["name"].(string); ok {
			raw["source"] = name
		}
		delete(raw, "publisher")
	}
	if tickers, ok := raw["tickers"].([]interface{}); ok {
		var symbols []string
		for _, t := range tickers {
			if s, ok := t.(string); ok {
				symbols = append(symbols, s)
			}
		}
		raw["symbol"] = strings.Join(symbols, ",")
		delete(raw, "tickers")
	}
	return nil
}

type newsResponse struct {
	Status  string                   `json:"status"`
	Results []map[string]interface{} `json:"results"`
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
	uri := URL + "/v2/reference/news"
	var articles []map[string]interface{}
	for _, symbol := range strings.Split(q.Symbol, ",") {
		query := make(url.Values)
		query.Set("ticker", symbol)
		query.Set("published_utc.gte", q.StartDate.String())
		query.Set("published_utc.lte", q.EndDate.String())
		query.Set("order", q.Order)
		query.Set("limit", strconv.Itoa(q.Limit))
		query.Set("apiKey", creds[apiKeyCredential])
		var resp newsResponse
		if err := fetch.FetchJSON(ctx, uri, &resp, query, nil); err != nil {
			return nil, errors.Annotate(err, "failed to fetch news for %s", symbol)
		}
		articles = append(articles, resp.Results...)
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
