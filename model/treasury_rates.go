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

// TreasuryRatesName identifies the US treasury rates model.
const TreasuryRatesName = "TreasuryRates"

// TreasuryRatesQuery is the standard query for government treasury rates.
type TreasuryRatesQuery struct {
	StartDate dates.Date `json:"start_date"`
	EndDate   dates.Date `json:"end_date"`
}

var _ schema.CrossChecker = &TreasuryRatesQuery{}

// CheckFields applies the default date range and verifies its ordering.
func (q *TreasuryRatesQuery) CheckFields() error {
	q.StartDate, q.EndDate = DefaultDateRange(q.StartDate, q.EndDate)
	if q.EndDate.Before(q.StartDate) {
		return errors.Reason("start_date %s is after end_date %s",
			q.StartDate, q.EndDate)
	}
	return nil
}

// TreasuryRatesData is one day of treasury yields, in percent. Maturities
// missing from the vendor curve stay nil.
type TreasuryRatesData struct {
	Date    dates.Date `json:"date" required:"true"`
	Month1  *float64   `json:"month_1" desc:"1 month treasury rate."`
	Month3  *float64   `json:"month_3" desc:"3 month treasury rate."`
	Month6  *float64   `json:"month_6" desc:"6 month treasury rate."`
	Year1   *float64   `json:"year_1" desc:"1 year treasury rate."`
	Year2   *float64   `json:"year_2" desc:"2 year treasury rate."`
	Year5   *float64   `json:"year_5" desc:"5 year treasury rate."`
	Year10  *float64   `json:"year_10" desc:"10 year treasury rate."`
	Year30  *float64   `json:"year_30" desc:"30 year treasury rate."`
}

func init() {
	register(StandardModel{
		Name:           TreasuryRatesName,
		Query:          func() interface{} { return &TreasuryRatesQuery{} },
		Data:           func() interface{} { return &TreasuryRatesData{} },
		AscendingDates: true,
	})
}
