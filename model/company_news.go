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

package model

import (
	"github.com/stockparfait/errors"
	"github.com/stockparfait/platform/dates"
	"github.com/stockparfait/platform/schema"
)

// CompanyNewsName identifies the company news model.
const CompanyNewsName = "CompanyNews"

// CompanyNewsQuery is the standard query for company news articles.
type CompanyNewsQuery struct {
	Symbol    string     `json:"symbol" required:"true"`
	StartDate dates.Date `json:"start_date"`
	EndDate   dates.Date `json:"end_date"`
	Limit     int        `json:"limit" default:"20"`
}

var _ schema.Normalizer = &CompanyNewsQuery{}
var _ schema.CrossChecker = &CompanyNewsQuery{}

// NormalizeRaw uppercases and deduplicates the symbol list.
func (q *CompanyNewsQuery) NormalizeRaw(raw map[string]interface{}) error {
	normalizeSymbolKey(raw)
	return nil
}

// CheckFields applies the default date range and bounds the limit.
func (q *CompanyNewsQuery) CheckFields() error {
	q.StartDate, q.EndDate = DefaultDateRange(q.StartDate, q.EndDate)
	if q.Limit <= 0 {
		return errors.Reason("limit must be positive, got %d", q.Limit)
	}
	return nil
}

// CompanyNewsData is one standard news article record.
type CompanyNewsData struct {
	Date   dates.Date `json:"date" required:"true"`
	Title  string     `json:"title" required:"true"`
	Text   string     `json:"text"`
	URL    string     `json:"url"`
	Source string     `json:"source" desc:"Source of the article."`
	Symbol string     `json:"symbol"`
}

func init() {
	register(StandardModel{
		Name:  CompanyNewsName,
		Query: func() interface{} { return &CompanyNewsQuery{} },
		Data:  func() interface{} { return &CompanyNewsData{} },
	})
}
