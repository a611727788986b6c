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

package provider

import (
	"sort"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/platform/fault"
)

// Provider is the descriptor a vendor extension constructs at import time:
// its identity, credential requirements, and the fetcher per standard model.
type Provider struct {
	Name        string
	Website     string
	Description string
	Version     string
	// RequiredCredentials are the credential keys the executor must locate
	// in the caller's store before invoking any fetcher of this provider.
	RequiredCredentials []string
	// Fetchers maps a standard model name to its adapter.
	Fetchers map[string]Fetcher
}

// Validate checks the descriptor for internal consistency.
func (p *Provider) Validate() error {
	if p.Name == "" {
		return errors.Reason("provider name must not be empty")
	}
	if strings.ToLower(p.Name) != p.Name {
		return errors.Reason("provider name '%s' must be lowercase", p.Name)
	}
	if len(p.Fetchers) == 0 {
		return errors.Reason("provider '%s' declares no fetchers", p.Name)
	}
	for m, f := range p.Fetchers {
		if f == nil {
			return errors.Reason("provider '%s': nil fetcher for model '%s'",
				p.Name, m)
		}
	}
	return nil
}

// Models returns the sorted standard model names this provider implements.
func (p *Provider) Models() []string {
	names := make([]string, 0, len(p.Fetchers))
	for m := range p.Fetchers {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

// ScopeCredentials filters the caller's credentials down to exactly the keys
// this provider declares. A missing required key is a MissingCredentialError.
func (p *Provider) ScopeCredentials(creds Credentials) (Credentials, error) {
	scoped := make(Credentials, len(p.RequiredCredentials))
	for _, key := range p.RequiredCredentials {
		v, ok := creds[key]
		if !ok || v == "" {
			return nil, fault.New(fault.KindMissingCredential,
				"provider '%s' requires the '%s' credential", p.Name, key)
		}
		scoped[key] = v
	}
	return scoped, nil
}

// HasCredentials reports whether all required credentials are present,
// without revealing which are missing.
func (p *Provider) HasCredentials(creds Credentials) bool {
	_, err := p.ScopeCredentials(creds)
	return err == nil
}
