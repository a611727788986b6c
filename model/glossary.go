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

// glossary holds the canonical descriptions of field names shared across
// models and vendors, so that identically named fields document identically
// everywhere. Schema tags leave such descriptions empty; the composite
// builder fills them in from here.
var glossary = map[string]string{
	"symbol":     "Symbol to get data for. Multiple comma separated items allowed.",
	"start_date": "Start date of the data, in YYYY-MM-DD format.",
	"end_date":   "End date of the data, in YYYY-MM-DD format.",
	"date":       "The date of the data.",
	"open":       "The open price.",
	"high":       "The high price.",
	"low":        "The low price.",
	"close":      "The close price.",
	"volume":     "The trading volume.",
	"vwap":       "Volume Weighted Average Price over the period.",
	"provider":   "The data provider for the query.",
	"limit":      "The number of data entries to return.",
	"title":      "Title of the article.",
	"url":        "URL to the article.",
	"text":       "Text or summary of the article.",
}

// GlossaryDescription returns the canonical description for a shared field
// name, or "" when the name is not in the glossary.
func GlossaryDescription(name string) string {
	return glossary[name]
}
