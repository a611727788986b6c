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

// Package provider defines the contract a market-data vendor implements: a
// descriptor binding the vendor name to its fetchers and required
// credentials, and the three-stage Fetcher pipeline
// transform query -> extract data -> transform data.
package provider

import (
	"context"
	"reflect"

	"github.com/stockparfait/platform/fault"
)

// Params is a generic parameter mapping conforming to a standard query
// shape.
type Params map[string]interface{}

// Credentials maps credential keys (e.g. "fmp_api_key") to secret values.
// Fetchers receive a scoped copy, never the caller's original store.
type Credentials map[string]string

// Copy creates a shallow copy of the credential mapping.
func (c Credentials) Copy() Credentials {
	res := make(Credentials, len(c))
	for k, v := range c {
		res[k] = v
	}
	return res
}

// Typed is the three-stage adapter a vendor implements for one standard
// model. Q is the vendor query type, R the raw vendor payload, D one vendor
// record. TransformQuery and TransformData are pure; only ExtractData
// performs I/O and it must honor ctx cancellation.
type Typed[Q, R, D any] interface {
	// TransformQuery validates the standard-shaped params into a vendor
	// query, setting vendor defaults as needed.
	TransformQuery(params Params) (Q, error)
	// ExtractData performs the vendor request with scoped credentials.
	ExtractData(ctx context.Context, query Q, creds Credentials) (R, error)
	// TransformData normalizes the raw payload into typed records. It never
	// performs I/O.
	TransformData(query Q, raw R) ([]D, error)
}

// Concurrent is implemented by fetchers whose ExtractData fans out internal
// requests and wants the executor to dispatch it on a worker goroutine.
type Concurrent interface {
	Async() bool
}

// Fetcher is the dynamically-typed view of a bound Typed fetcher, the shape
// stored in provider descriptors and dispatched by the executor.
type Fetcher interface {
	// QueryType is the vendor query struct type.
	QueryType() reflect.Type
	// DataType is the struct type of one vendor record.
	DataType() reflect.Type
	// Async reports whether the executor should dispatch ExtractData on a
	// worker goroutine.
	Async() bool

	TransformQuery(params Params) (interface{}, error)
	ExtractData(ctx context.Context, query interface{}, creds Credentials) (interface{}, error)
	TransformData(query, raw interface{}) ([]interface{}, error)
}

type bound[Q, R, D any] struct {
	impl Typed[Q, R, D]
}

// Bind adapts a typed fetcher implementation into the dynamic Fetcher shape.
func Bind[Q, R, D any](impl Typed[Q, R, D]) Fetcher {
	return &bound[Q, R, D]{impl: impl}
}

func structType[T any]() reflect.Type {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func (b *bound[Q, R, D]) QueryType() reflect.Type { return structType[Q]() }
func (b *bound[Q, R, D]) DataType() reflect.Type  { return structType[D]() }

func (b *bound[Q, R, D]) Async() bool {
	if c, ok := b.impl.(Concurrent); ok {
		return c.Async()
	}
	return false
}

func (b *bound[Q, R, D]) TransformQuery(params Params) (interface{}, error) {
	return b.impl.TransformQuery(params)
}

func (b *bound[Q, R, D]) ExtractData(ctx context.Context, query interface{}, creds Credentials) (interface{}, error) {
	q, ok := query.(Q)
	if !ok {
		return nil, fault.New(fault.KindTransform,
			"query has type %T, expected %s", query, structType[Q]())
	}
	return b.impl.ExtractData(ctx, q, creds)
}

func (b *bound[Q, R, D]) TransformData(query, raw interface{}) ([]interface{}, error) {
	q, ok := query.(Q)
	if !ok {
		return nil, fault.New(fault.KindTransform,
			"query has type %T, expected %s", query, structType[Q]())
	}
	r, ok := raw.(R)
	if !ok {
		return nil, fault.New(fault.KindTransform,
			"payload has type %T, expected %T", raw, *new(R))
	}
	records, err := b.impl.TransformData(q, r)
	if err != nil {
		return nil, err
	}
	res := make([]interface{}, len(records))
	for i, rec := range records {
		res[i] = rec
	}
	return res, nil
}

// FetchData composes the three stages in order, halting on the first
// failure. This is the pipeline the executor runs, and the hook the adapter
// test harness calls directly.
func FetchData(ctx context.Context, f Fetcher, params Params, creds Credentials) ([]interface{}, error) {
	query, err := f.TransformQuery(params)
	if err != nil {
		return nil, fault.Wrap(fault.KindValidation, err,
			"failed to transform query")
	}
	raw, err := f.ExtractData(ctx, query, creds)
	if err != nil {
		return nil, fault.Wrap(fault.KindFetchNetwork, err,
			"failed to extract data")
	}
	records, err := f.TransformData(query, raw)
	if err != nil {
		return nil, fault.Wrap(fault.KindTransform, err,
			"failed to transform data")
	}
	if len(records) == 0 {
		return nil, fault.New(fault.KindFetchEmpty, "the request returned no data")
	}
	return records, nil
}
