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

// Package registry discovers provider and core-capability extensions and
// builds the composite provider interface over them.
//
// Discovery is explicit: an extension package registers its descriptor from
// init(), and an application imports the extensions it ships:
//
//	import (
//	  _ "github.com/stockparfait/platform/vendors/fmp"
//	  _ "github.com/stockparfait/platform/vendors/polygon"
//	)
//
// The first call to Default freezes the process-wide registry; registrations
// after the freeze are logged and ignored.
package registry

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/stockparfait/logging"
	"github.com/stockparfait/platform/fault"
	"github.com/stockparfait/platform/provider"
)

// CoreExtension is a non-provider capability plugin, e.g. charting. Install
// is invoked once when the registry loads.
type CoreExtension struct {
	Name    string
	Version string
	Install func(ctx context.Context) error
}

var (
	pendingMu        sync.Mutex
	pendingProviders []*provider.Provider
	pendingCore      []CoreExtension
	frozen           bool
)

// Register queues a provider descriptor for the process-wide registry. It is
// meant to be called from a vendor package's init().
func Register(p *provider.Provider) {
	pendingMu.Lock()
	defer pendingMu.Unlock()
	if frozen {
		logging.Warningf(context.Background(),
			"provider '%s' registered after the registry was frozen; ignored",
			p.Name)
		return
	}
	pendingProviders = append(pendingProviders, p)
}

// RegisterCore queues a core capability extension.
func RegisterCore(ext CoreExtension) {
	pendingMu.Lock()
	defer pendingMu.Unlock()
	if frozen {
		logging.Warningf(context.Background(),
			"core extension '%s' registered after the registry was frozen; ignored",
			ext.Name)
		return
	}
	pendingCore = append(pendingCore, ext)
}

// Registry is an immutable mapping of provider name to descriptor, plus the
// loaded core extensions. Readers are lock-free.
type Registry struct {
	providers map[string]*provider.Provider
	core      map[string]CoreExtension

	ifaceOnce sync.Once
	iface     *Interface
}

// New builds a registry from explicit descriptors, validating each and
// skipping the broken ones. Duplicate names: the last registration wins with
// a warning. Loading never fails the process.
func New(ctx context.Context, providers []*provider.Provider, core []CoreExtension) *Registry {
	r := &Registry{
		providers: make(map[string]*provider.Provider),
		core:      make(map[string]CoreExtension),
	}
	for _, p := range providers {
		if err := p.Validate(); err != nil {
			logging.Warningf(ctx, "skipping broken provider descriptor: %s",
				err.Error())
			continue
		}
		name := strings.ToLower(p.Name)
		if prev, ok := r.providers[name]; ok {
			logging.Warningf(ctx,
				"provider '%s' v%s overwrites an earlier registration v%s",
				name, p.Version, prev.Version)
		}
		r.providers[name] = p
		logging.Debugf(ctx, "registered provider '%s' with models: %s",
			name, strings.Join(p.Models(), ", "))
	}
	for _, ext := range core {
		if ext.Name == "" {
			logging.Warningf(ctx, "skipping core extension with empty name")
			continue
		}
		if _, ok := r.core[ext.Name]; ok {
			logging.Warningf(ctx,
				"core extension '%s' overwrites an earlier registration", ext.Name)
		}
		r.core[ext.Name] = ext
	}
	for _, name := range r.CoreNames() {
		ext := r.core[name]
		if ext.Install == nil {
			continue
		}
		if err := ext.Install(ctx); err != nil {
			logging.Warningf(ctx, "failed to install core extension '%s': %s",
				name, err.Error())
		}
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, populating and freezing it on
// first access.
func Default(ctx context.Context) *Registry {
	defaultOnce.Do(func() {
		pendingMu.Lock()
		providers := pendingProviders
		core := pendingCore
		frozen = true
		pendingMu.Unlock()
		logging.Infof(ctx, "loading registry: %d provider and %d core registrations",
			len(providers), len(core))
		defaultReg = New(ctx, providers, core)
	})
	return defaultReg
}

// Get looks up a provider by name, case-insensitively.
func (r *Registry) Get(name string) (*provider.Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fault.New(fault.KindProviderNotFound,
			"provider '%s' is not installed", name)
	}
	return p, nil
}

// ProviderNames returns the sorted provider names.
func (r *Registry) ProviderNames() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CoreNames returns the sorted core extension names.
func (r *Registry) CoreNames() []string {
	names := make([]string, 0, len(r.core))
	for n := range r.core {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CoreExtensions returns the loaded core extensions keyed by name.
func (r *Registry) CoreExtensions() map[string]CoreExtension {
	res := make(map[string]CoreExtension, len(r.core))
	for k, v := range r.core {
		res[k] = v
	}
	return res
}
