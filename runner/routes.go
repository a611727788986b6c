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

// Package runner dispatches command calls: it resolves the route to its
// standard model, overlays user defaults, splits parameters against the
// composite schema, picks the provider, and executes the fetch pipeline into
// a result envelope.
package runner

import (
	"sort"

	"github.com/stockparfait/platform/model"
)

// Command binds a route path to its standard model, with the documentation
// surfaced by the generated client.
type Command struct {
	Path     string
	Model    string
	Summary  string
	Examples []string
}

var routes = map[string]Command{
	"/equity/price/historical": {
		Path:    "/equity/price/historical",
		Model:   model.EquityHistoricalName,
		Summary: "Historical price bars for one or more equity symbols.",
		Examples: []string{
			`client.EquityPriceHistorical(ctx, EquityPriceHistoricalParams{Symbol: "AAPL"})`,
			`client.EquityPriceHistorical(ctx, EquityPriceHistoricalParams{Symbol: "AAPL,MSFT", StartDate: "2023-01-01"})`,
		},
	},
	"/equity/price/quote": {
		Path:    "/equity/price/quote",
		Model:   model.EquityQuoteName,
		Summary: "Latest quote for one or more equity symbols.",
		Examples: []string{
			`client.EquityPriceQuote(ctx, EquityPriceQuoteParams{Symbol: "AAPL"})`,
		},
	},
	"/news/company": {
		Path:    "/news/company",
		Model:   model.CompanyNewsName,
		Summary: "News articles about one or more companies.",
		Examples: []string{
			`client.NewsCompany(ctx, NewsCompanyParams{Symbol: "AAPL", Limit: 5})`,
		},
	},
	"/fixedincome/government/treasury_rates": {
		Path:    "/fixedincome/government/treasury_rates",
		Model:   model.TreasuryRatesName,
		Summary: "US Treasury constant-maturity rates by date.",
		Examples: []string{
			`client.FixedincomeGovernmentTreasuryRates(ctx, FixedincomeGovernmentTreasuryRatesParams{StartDate: "2023-01-01"})`,
		},
	},
}

// Lookup resolves a route path to its command.
func Lookup(path string) (Command, bool) {
	c, ok := routes[path]
	return c, ok
}

// Routes returns all command routes sorted by path.
func Routes() []Command {
	paths := make([]string, 0, len(routes))
	for p := range routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	res := make([]Command, len(paths))
	for i, p := range paths {
		res[i] = routes[p]
	}
	return res
}
