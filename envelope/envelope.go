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

// Package envelope implements the result container returned by every
// command: the results payload with its provenance, warnings and error, plus
// conversion helpers and the capability-accessor table that extensions hook
// into.
package envelope

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stockparfait/platform/fault"
)

// Envelope is the uniform result of one command call. The ID is a
// correlation-only identifier minted per call; it is never a retrieval key.
// Results may be a single record, a list of records, or a mapping from key
// to records. The envelope is immutable after return, except for lazy
// accessor attachments.
type Envelope struct {
	ID       string          `json:"id"`
	Results  interface{}     `json:"results"`
	Provider string          `json:"provider"`
	Warnings []fault.Warning `json:"warnings"`
	Err      *fault.Error    `json:"error,omitempty"`

	accessors accessorCache
}

// New creates a successful envelope.
func New(providerName string, results interface{}, warnings []fault.Warning) *Envelope {
	return &Envelope{
		ID:       uuid.NewString(),
		Results:  results,
		Provider: providerName,
		Warnings: warnings,
	}
}

// NewError creates a failed envelope: results are nil and Err carries the
// classified failure. Warnings collected before the failure are kept.
func NewError(providerName string, err error, warnings []fault.Warning) *Envelope {
	e := fault.AsError(err)
	if e == nil {
		e = fault.Wrap(fault.KindProvider, err, "command failed")
	}
	return &Envelope{
		ID:       uuid.NewString(),
		Provider: providerName,
		Warnings: warnings,
		Err:      e,
	}
}

// Failed reports whether the call producing this envelope failed. Callers
// check this before consuming Results.
func (e *Envelope) Failed() bool { return e.Err != nil }

// MarshalJSON serializes the envelope, mapping the error to its wire shape.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID       string          `json:"id"`
		Results  interface{}     `json:"results"`
		Provider string          `json:"provider"`
		Warnings []fault.Warning `json:"warnings"`
		Error    *fault.Detail   `json:"error,omitempty"`
	}
	w := wire{
		ID:       e.ID,
		Results:  e.Results,
		Provider: e.Provider,
		Warnings: e.Warnings,
	}
	if e.Err != nil {
		d := fault.ToDetail(e.Err)
		w.Error = &d
	}
	return json.Marshal(&w)
}
