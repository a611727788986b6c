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
	"github.com/stockparfait/platform/schema"
)

// EquityQuoteName identifies the latest equity quote model.
const EquityQuoteName = "EquityQuote"

// EquityQuoteQuery is the standard query for the latest market quote.
type EquityQuoteQuery struct {
	Symbol string `json:"symbol" required:"true"`
}

var _ schema.Normalizer = &EquityQuoteQuery{}

// NormalizeRaw uppercases and deduplicates the symbol list.
func (q *EquityQuoteQuery) NormalizeRaw(raw map[string]interface{}) error {
	normalizeSymbolKey(raw)
	return nil
}

// EquityQuoteData is one standard quote record.
type EquityQuoteData struct {
	Symbol        string   `json:"symbol" required:"true"`
	LastPrice     float64  `json:"last_price" required:"true" desc:"The last trade price."`
	Open          *float64 `json:"open"`
	High          *float64 `json:"high" desc:"The high price of the current trading day."`
	Low           *float64 `json:"low" desc:"The low price of the current trading day."`
	PrevClose     *float64 `json:"prev_close" desc:"The previous close price."`
	Volume        *float64 `json:"volume"`
	ChangePercent *float64 `json:"change_percent" desc:"Change in price as a normalized percent."`
}

func init() {
	register(StandardModel{
		Name:  EquityQuoteName,
		Query: func() interface{} { return &EquityQuoteQuery{} },
		Data:  func() interface{} { return &EquityQuoteData{} },
	})
}
