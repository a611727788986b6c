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

// Package fmp is the Financial Modeling Prep provider. Importing the package
// registers it:
//
//	import _ "github.com/stockparfait/platform/vendors/fmp"
package fmp

import (
	"strings"

	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/registry"
	"github.com/stockparfait/platform/schema"
)

// URL is the default base URL of the server. It may be overwritten in tests
// before running a fetcher.
var URL = "https://financialmodelingprep.com/api"

// Name of the provider in the registry.
const Name = "fmp"

// Version of this provider extension.
const Version = "1.0.0"

// apiKeyCredential is the single credential key this provider requires.
const apiKeyCredential = "fmp_api_key"

func init() {
	registry.Register(&provider.Provider{
		Name:                Name,
		Website:             "https://financialmodelingprep.com",
		Description:         "Financial Modeling Prep market data",
		Version:             Version,
		RequiredCredentials: []string{apiKeyCredential},
		Fetchers: map[string]provider.Fetcher{
			model.EquityHistoricalName: provider.Bind[*EquityHistoricalQuery, historicalResponse, *EquityHistoricalData](equityHistoricalFetcher{}),
			model.EquityQuoteName:      provider.Bind[*EquityQuoteQuery, []map[string]interface{}, *EquityQuoteData](equityQuoteFetcher{}),
			model.CompanyNewsName:      provider.Bind[*CompanyNewsQuery, []map[string]interface{}, *CompanyNewsData](companyNewsFetcher{}),
			model.TreasuryRatesName:    provider.Bind[*TreasuryRatesQuery, []map[string]interface{}, *TreasuryRatesData](treasuryRatesFetcher{}),
		},
	})
}

// camelCase derives the vendor's camelCase key from a canonical snake_case
// field name: "adj_close" becomes "adjClose". Single-word names map to
// themselves, which means "no alias".
func camelCase(name string) string {
	parts := strings.Split(name, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

// vendorOptions are the schema options shared by this vendor's data types:
// camelCase payload keys, unknown keys ignored.
func vendorOptions() schema.Options {
	opts := schema.DefaultOptions()
	opts.AliasGenerator = camelCase
	opts.Extra = schema.ExtraIgnore
	return opts
}

// renameKeys maps vendor payload keys to canonical names where camelCase
// aliasing is not enough.
func renameKeys(raw map[string]interface{}, renames map[string]string) {
	for from, to := range renames {
		if v, ok := raw[from]; ok {
			if _, exists := raw[to]; !exists {
				raw[to] = v
			}
			delete(raw, from)
		}
	}
}
