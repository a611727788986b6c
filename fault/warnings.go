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

package fault

import (
	"fmt"
	"sync"
)

// WarningCategory for non-fatal anomalies collected during a single call.
const WarningCategory = "OpenBBWarning"

// Warning is a non-fatal anomaly. Warnings never halt execution; they are
// captured into the envelope returned by the call that produced them.
type Warning struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	return w.Category + ": " + w.Message
}

// Collector accumulates warnings for exactly one call. Each call owns its
// collector, so warnings from concurrent calls never mix.
type Collector struct {
	mu       sync.Mutex
	warnings []Warning
}

// NewCollector creates an empty per-call collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Warnf appends a warning under the default category.
func (c *Collector) Warnf(format string, args ...interface{}) {
	c.Add(WarningCategory, format, args...)
}

// Add appends a warning under an explicit category.
func (c *Collector) Add(category, format string, args ...interface{}) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, Warning{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnings returns a copy of the collected warnings in insertion order.
func (c *Collector) Warnings() []Warning {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]Warning, len(c.warnings))
	copy(res, c.warnings)
	return res
}
