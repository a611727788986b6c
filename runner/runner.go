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
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/platform/envelope"
	"github.com/stockparfait/platform/fault"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/registry"
	"github.com/stockparfait/platform/settings"
	"golang.org/x/exp/slices"
)

// Runner dispatches command calls against a registry, using the caller's
// settings for credentials and per-route defaults.
type Runner struct {
	Registry *registry.Registry
	Settings *settings.UserSettings
	System   *settings.SystemSettings
}

// New creates a runner. Nil settings mean empty credentials and defaults.
func New(ctx context.Context, reg *registry.Registry, user *settings.UserSettings, system *settings.SystemSettings) *Runner {
	if user == nil {
		user = settings.NewUserSettings(ctx)
	}
	if system == nil {
		system = &settings.SystemSettings{}
	}
	return &Runner{Registry: reg, Settings: user, System: system}
}

// mergeParams overlays the caller's params over the route defaults. The
// caller always wins.
func mergeParams(defaults map[string]interface{}, params provider.Params) provider.Params {
	merged := make(provider.Params, len(defaults)+len(params))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return merged
}

// chooseProvider resolves the provider for a call: the explicit choice when
// present, otherwise the first of the model's providers (in sorted order)
// whose required credentials are all configured.
func (r *Runner) chooseProvider(explicit string, mi *registry.ModelInterface, creds provider.Credentials) (string, error) {
	if explicit != "" {
		name := strings.ToLower(explicit)
		// An unregistered name surfaces as ProviderNotFoundError; a
		// registered one that skips this model is ModelNotSupportedError.
		if _, err := r.Registry.Get(name); err != nil {
			return "", err
		}
		if !slices.Contains(mi.Providers, name) {
			return "", fault.New(fault.KindModelNotSupported,
				"provider '%s' does not support model '%s'", name, mi.Model)
		}
		return name, nil
	}
	for _, name := range mi.Providers {
		p, err := r.Registry.Get(name)
		if err != nil {
			continue
		}
		if p.HasCredentials(creds) {
			return name, nil
		}
	}
	return "", fault.New(fault.KindNoViableProvider,
		"no provider with configured credentials implements model '%s'; candidates: %s",
		mi.Model, strings.Join(mi.Providers, ", "))
}

// splitParams maps the merged params onto the chosen vendor's query surface.
// Standard fields pass through; extra fields pass only when the vendor
// declares them, otherwise they are dropped with a warning; unrecognized
// keys are dropped with a warning.
func splitParams(merged provider.Params, mi *registry.ModelInterface, providerName string, warnings *fault.Collector) provider.Params {
	std := mi.StandardQueryNames()
	vendorParams := make(provider.Params, len(merged))
	for name, v := range merged {
		if _, ok := std[name]; ok {
			vendorParams[name] = v
			continue
		}
		if ef, ok := mi.ExtraQueryField(name); ok {
			if slices.Contains(ef.Providers, providerName) {
				vendorParams[name] = v
			} else {
				warnings.Warnf(
					"Parameter %s is not supported by provider %s; available for: %s",
					name, providerName, ef.AvailableFor())
			}
			continue
		}
		warnings.Warnf("Parameter %s is not recognized by model %s; ignored",
			name, mi.Model)
	}
	return vendorParams
}

// Run executes one command call and returns its envelope. Failures are
// folded into the envelope; in debug mode they are returned as errors
// instead, with the envelope nil.
func (r *Runner) Run(ctx context.Context, route string, params provider.Params) (*envelope.Envelope, error) {
	warnings := fault.NewCollector()
	env, err := r.run(ctx, route, params, warnings)
	if err != nil {
		if r.System.DebugMode {
			return nil, err
		}
		providerName := ""
		if s, ok := params["provider"].(string); ok {
			providerName = strings.ToLower(s)
		}
		return envelope.NewError(providerName, err, warnings.Warnings()), nil
	}
	return env, nil
}

func (r *Runner) run(ctx context.Context, route string, params provider.Params, warnings *fault.Collector) (*envelope.Envelope, error) {
	cmd, ok := Lookup(route)
	if !ok {
		return nil, fault.New(fault.KindValidation,
			"unknown command route '%s'", route)
	}
	mi, ok := r.Registry.Interface(ctx).Get(cmd.Model)
	if !ok {
		return nil, fault.New(fault.KindModelNotSupported,
			"no installed provider implements model '%s'", cmd.Model)
	}

	merged := mergeParams(r.Settings.RouteDefaults(route), params)
	var explicit string
	if v, ok := merged["provider"]; ok {
		s, isStr := v.(string)
		if !isStr {
			return nil, fault.New(fault.KindValidation,
				"the 'provider' parameter must be a string, got %v", v)
		}
		explicit = s
		delete(merged, "provider")
	}

	creds := provider.Credentials(r.Settings.Credentials)
	providerName, err := r.chooseProvider(explicit, mi, creds)
	if err != nil {
		return nil, err
	}
	logging.Debugf(ctx, "running %s via provider '%s'", route, providerName)

	vendorParams := splitParams(merged, mi, providerName, warnings)
	records, err := Execute(ctx, r.Registry, providerName, cmd.Model, vendorParams, creds)
	if err != nil {
		return nil, errors.Annotate(err, "%s failed", route)
	}
	return envelope.New(providerName, records, warnings.Warnings()), nil
}
