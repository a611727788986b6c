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

import "strings"

// NormalizeSymbols canonicalizes a comma separated symbol list: trims,
// uppercases, and deduplicates while keeping the first-seen order.
// "aapl, msft,aapl" becomes "AAPL,MSFT".
func NormalizeSymbols(s string) string {
	parts := strings.Split(s, ",")
	seen := make(map[string]struct{}, len(parts))
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		sym := strings.ToUpper(strings.TrimSpace(p))
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		res = append(res, sym)
	}
	return strings.Join(res, ",")
}

// normalizeSymbolKey rewrites the "symbol" key of a raw query input, the
// shared pre-validation hook of all symbol-keyed queries.
func normalizeSymbolKey(raw map[string]interface{}) {
	if s, ok := raw["symbol"].(string); ok {
		raw["symbol"] = NormalizeSymbols(s)
	}
}
