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

package runner

import (
	"context"

	"github.com/stockparfait/platform/fault"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/registry"
)

// Execute runs the fetch pipeline of one (provider, model) pair: it resolves
// the fetcher, scopes the credentials, and dispatches the three stages.
// Fetchers declaring themselves concurrent run on a worker goroutine, and
// a canceled ctx abandons the wait.
func Execute(ctx context.Context, reg *registry.Registry, providerName, modelName string, params provider.Params, creds provider.Credentials) ([]interface{}, error) {
	p, err := reg.Get(providerName)
	if err != nil {
		return nil, err
	}
	f, ok := p.Fetchers[modelName]
	if !ok {
		return nil, fault.New(fault.KindModelNotSupported,
			"provider '%s' does not support model '%s'", p.Name, modelName)
	}
	scoped, err := p.ScopeCredentials(creds)
	if err != nil {
		return nil, err
	}
	if !f.Async() {
		return provider.FetchData(ctx, f, params, scoped)
	}

	type result struct {
		records []interface{}
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		records, err := provider.FetchData(ctx, f, params, scoped)
		ch <- result{records: records, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, fault.Wrap(fault.KindFetchNetwork, ctx.Err(),
			"fetch from provider '%s' canceled", p.Name)
	case res := <-ch:
		return res.records, res.err
	}
}
