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

// Package polygon is the Polygon.io provider. Importing the package
// registers it:
//
//	import _ "github.com/stockparfait/platform/vendors/polygon"
package polygon

import (
	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/registry"
)

// URL is the default base URL of the server. It may be overwritten in tests
// before running a fetcher.
var URL = "https://api.polygon.io"

// Name of the provider in the registry.
const Name = "polygon"

// Version of this provider extension.
const Version = "1.0.0"

// apiKeyCredential is the single credential key this provider requires.
const apiKeyCredential = "polygon_api_key"

func init() {
	registry.Register(&provider.Provider{
		Name:                Name,
		Website:             "https://polygon.io",
		Description:         "Polygon.io market data",
		Version:             Version,
		RequiredCredentials: []string{apiKeyCredential},
		Fetchers: map[string]provider.Fetcher{
			model.EquityHistoricalName: provider.Bind[*EquityHistoricalQuery, []map[string]interface{}, *EquityHistoricalData](equityHistoricalFetcher{}),
			model.CompanyNewsName:      provider.Bind[*CompanyNewsQuery, []map[string]interface{}, *CompanyNewsData](companyNewsFetcher{}),
		},
	})
}

// renameKeys maps vendor payload keys to canonical names.
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
