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

package envelope

import (
	"context"
	"sync"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// AccessorFactory creates the accessor instance attached to one envelope.
type AccessorFactory func(e *Envelope) (interface{}, error)

var (
	accessorsMu       sync.Mutex
	accessorFactories = make(map[string]AccessorFactory)
)

// RegisterAccessor installs a post-processing capability under a short name.
// Registering a duplicate name logs a warning and overwrites the previous
// registration.
func RegisterAccessor(ctx context.Context, name string, factory AccessorFactory) {
	accessorsMu.Lock()
	defer accessorsMu.Unlock()
	if _, ok := accessorFactories[name]; ok {
		logging.Warningf(ctx, "accessor '%s' is already registered; overwriting",
			name)
	}
	accessorFactories[name] = factory
}

// UnregisterAccessor removes a capability. For tests.
func UnregisterAccessor(name string) {
	accessorsMu.Lock()
	defer accessorsMu.Unlock()
	delete(accessorFactories, name)
}

// accessorCache lazily instantiates accessors per envelope, at most once per
// name.
type accessorCache struct {
	mu        sync.Mutex
	instances map[string]interface{}
}

// Accessor returns the capability instance registered under name, creating
// and caching it on first access.
func (e *Envelope) Accessor(name string) (interface{}, error) {
	accessorsMu.Lock()
	factory, ok := accessorFactories[name]
	accessorsMu.Unlock()
	if !ok {
		return nil, errors.Reason("no '%s' extension is installed", name)
	}
	e.accessors.mu.Lock()
	defer e.accessors.mu.Unlock()
	if inst, ok := e.accessors.instances[name]; ok {
		return inst, nil
	}
	inst, err := factory(e)
	if err != nil {
		return nil, errors.Annotate(err, "failed to attach accessor '%s'", name)
	}
	if e.accessors.instances == nil {
		e.accessors.instances = make(map[string]interface{})
	}
	e.accessors.instances[name] = inst
	return inst, nil
}

// Charter is the contract of the charting accessor.
type Charter interface {
	ToChart(opts map[string]interface{}) (interface{}, error)
}

// Chart builds a chart artifact from the envelope via the charting
// extension. It fails with a clear message when the extension is not
// installed.
func (e *Envelope) Chart(opts map[string]interface{}) (interface{}, error) {
	inst, err := e.Accessor("chart")
	if err != nil {
		return nil, errors.Annotate(err,
			"cannot chart: install the charting extension")
	}
	c, ok := inst.(Charter)
	if !ok {
		return nil, errors.Reason(
			"the 'chart' accessor does not implement charting")
	}
	return c.ToChart(opts)
}
