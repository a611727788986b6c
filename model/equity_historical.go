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

// EquityHistoricalName identifies the historical equity price model.
const EquityHistoricalName = "EquityHistorical"

// EquityHistoricalQuery is the standard query for historical equity prices.
type EquityHistoricalQuery struct {
	Symbol    string     `json:"symbol" required:"true"`
	StartDate dates.Date `json:"start_date"`
	EndDate   dates.Date `json:"end_date"`
}

var _ schema.Normalizer = &EquityHistoricalQuery{}
var _ schema.CrossChecker = &EquityHistoricalQuery{}

// NormalizeRaw uppercases and deduplicates the symbol list before type
// coercion.
func (q *EquityHistoricalQuery) NormalizeRaw(raw map[string]interface{}) error {
	normalizeSymbolKey(raw)
	return nil
}

// CheckFields applies the default date range and verifies its ordering.
func (q *EquityHistoricalQuery) CheckFields() error {
	q.StartDate, q.EndDate = DefaultDateRange(q.StartDate, q.EndDate)
	if q.EndDate.Before(q.StartDate) {
		return errors.Reason("start_date %s is after end_date %s",
			q.StartDate, q.EndDate)
	}
	return nil
}

// EquityHistoricalData is one standard price bar.
type EquityHistoricalData struct {
	Date   dates.Date `json:"date" required:"true"`
	Open   float64    `json:"open" required:"true"`
	High   float64    `json:"high" required:"true"`
	Low    float64    `json:"low" required:"true"`
	Close  float64    `json:"close" required:"true"`
	Volume float64    `json:"volume"`
	VWAP   *float64   `json:"vwap"`
}

func init() {
	register(StandardModel{
		Name:           EquityHistoricalName,
		Query:          func() interface{} { return &EquityHistoricalQuery{} },
		Data:           func() interface{} { return &EquityHistoricalData{} },
		AscendingDates: true,
	})
}
