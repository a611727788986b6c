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

package registry

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/platform/model"
	"github.com/stockparfait/platform/schema"

	"reflect"
)

// ExtraField is a vendor-specific extension field of a composite schema,
// tagged with the vendors that accept it.
type ExtraField struct {
	schema.Field
	// Providers is the sorted list of vendors declaring this field.
	Providers []string
}

// AvailableFor formats the sorted vendor availability list of the field.
func (f ExtraField) AvailableFor() string {
	return strings.Join(f.Providers, ", ")
}

// QueryData holds one vendor's concrete query and data struct types for a
// model.
type QueryData struct {
	Query reflect.Type
	Data  reflect.Type
}

// ModelInterface is the composite schema of one standard model across all
// vendors implementing it.
type ModelInterface struct {
	Model string
	// Providers is the sorted enumeration of vendors implementing the model.
	Providers []string
	// StandardQuery and StandardData describe the vendor-neutral schemas,
	// with glossary descriptions filled in.
	StandardQuery []schema.Field
	StandardData  []schema.Field
	// ExtraQuery and ExtraData are the unions of vendor extensions beyond
	// the standard fields, sorted by field name.
	ExtraQuery []ExtraField
	ExtraData  []ExtraField
	// ProviderTypes maps each vendor to its concrete schema types.
	ProviderTypes map[string]QueryData
	// AscendingDates is carried over from the standard model.
	AscendingDates bool
}

// ExtraQueryField looks up an extra query field by name.
func (m *ModelInterface) ExtraQueryField(name string) (ExtraField, bool) {
	for _, f := range m.ExtraQuery {
		if f.Name == name {
			return f, true
		}
	}
	return ExtraField{}, false
}

// StandardQueryNames returns the set of standard query field names.
func (m *ModelInterface) StandardQueryNames() map[string]struct{} {
	names := make(map[string]struct{}, len(m.StandardQuery))
	for _, f := range m.StandardQuery {
		names[f.Name] = struct{}{}
	}
	return names
}

// Interface holds the composite schemas of all models served by a registry.
// It is built once per registry and cached.
type Interface struct {
	Models map[string]*ModelInterface
}

// Get returns the composite schema for a model name.
func (i *Interface) Get(name string) (*ModelInterface, bool) {
	m, ok := i.Models[name]
	return m, ok
}

// ModelNames returns the sorted names of models with at least one provider.
func (i *Interface) ModelNames() []string {
	names := make([]string, 0, len(i.Models))
	for n := range i.Models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// describeOrEmpty resolves field descriptors, logging instead of failing:
// a vendor with an indescribable schema simply contributes nothing.
func describeOrEmpty(ctx context.Context, t reflect.Type) []schema.Field {
	fields, err := schema.Describe(t)
	if err != nil {
		logging.Warningf(ctx, "failed to describe schema %s: %s", t, err.Error())
		return nil
	}
	return fields
}

// fillGlossary substitutes canonical descriptions for shared field names
// with no explicit description.
func fillGlossary(fields []schema.Field) []schema.Field {
	for i, f := range fields {
		if f.Description == "" {
			fields[i].Description = model.GlossaryDescription(f.Name)
		}
	}
	return fields
}

// mergeExtras folds one vendor's fields into the union of extras, excluding
// the standard field names. When two vendors declare the same field with
// different types, the merged field takes the widest common kind and both
// vendors stay on the availability list.
func mergeExtras(union map[string]*ExtraField, vendor string, fields []schema.Field, standard map[string]struct{}) {
	for _, f := range fields {
		if _, ok := standard[f.Name]; ok {
			continue
		}
		ef, ok := union[f.Name]
		if !ok {
			cp := f
			if cp.Description == "" {
				cp.Description = model.GlossaryDescription(cp.Name)
			}
			union[f.Name] = &ExtraField{Field: cp, Providers: []string{vendor}}
			continue
		}
		ef.Kind = schema.Widen(ef.Kind, f.Kind)
		if ef.Description == "" {
			ef.Description = f.Description
		}
		ef.Providers = append(ef.Providers, vendor)
	}
}

func sortedExtras(union map[string]*ExtraField) []ExtraField {
	names := make([]string, 0, len(union))
	for n := range union {
		names = append(names, n)
	}
	sort.Strings(names)
	res := make([]ExtraField, len(names))
	for i, n := range names {
		ef := *union[n]
		sort.Strings(ef.Providers)
		ef.Description = "Available for providers: " + ef.AvailableFor() +
			". " + ef.Description
		res[i] = ef
	}
	return res
}

// buildModel assembles the composite schema for one standard model, or nil
// when no registered provider implements it.
func (r *Registry) buildModel(ctx context.Context, name string) *ModelInterface {
	std, ok := model.Get(name)
	if !ok {
		return nil
	}
	var vendors []string
	for _, pn := range r.ProviderNames() {
		if _, ok := r.providers[pn].Fetchers[name]; ok {
			vendors = append(vendors, pn)
		}
	}
	if len(vendors) == 0 {
		return nil
	}

	m := &ModelInterface{
		Model:          name,
		Providers:      vendors,
		StandardQuery:  fillGlossary(describeOrEmpty(ctx, reflect.TypeOf(std.Query()))),
		StandardData:   fillGlossary(describeOrEmpty(ctx, reflect.TypeOf(std.Data()))),
		ProviderTypes:  make(map[string]QueryData, len(vendors)),
		AscendingDates: std.AscendingDates,
	}
	stdQueryNames := m.StandardQueryNames()
	stdDataNames := make(map[string]struct{}, len(m.StandardData))
	for _, f := range m.StandardData {
		stdDataNames[f.Name] = struct{}{}
	}

	extraQuery := make(map[string]*ExtraField)
	extraData := make(map[string]*ExtraField)
	for _, vendor := range vendors {
		f := r.providers[vendor].Fetchers[name]
		qt, dt := f.QueryType(), f.DataType()
		m.ProviderTypes[vendor] = QueryData{Query: qt, Data: dt}
		mergeExtras(extraQuery, vendor, describeOrEmpty(ctx, qt), stdQueryNames)
		mergeExtras(extraData, vendor, describeOrEmpty(ctx, dt), stdDataNames)
	}
	m.ExtraQuery = sortedExtras(extraQuery)
	m.ExtraData = sortedExtras(extraData)
	return m
}

// Interface builds the composite schemas for every standard model served by
// this registry. The result is cached; building twice in the same process
// yields structurally equal schemas.
func (r *Registry) Interface(ctx context.Context) *Interface {
	r.ifaceOnce.Do(func() {
		names := model.Names()
		pm := iterator.ParallelMap(ctx, 2*runtime.NumCPU(),
			iterator.FromSlice(names), func(name string) *ModelInterface {
				return r.buildModel(ctx, name)
			})
		// Reduce drains the iterator, so no explicit cleanup is needed.
		models := iterator.Reduce[*ModelInterface, map[string]*ModelInterface](
			pm, make(map[string]*ModelInterface),
			func(m *ModelInterface, acc map[string]*ModelInterface) map[string]*ModelInterface {
				if m != nil {
					acc[m.Model] = m
				}
				return acc
			})
		r.iface = &Interface{Models: models}
	})
	return r.iface
}

// Credentials returns the sorted union of required credentials across all
// registered providers, for the UI and configuration layers.
func (r *Registry) Credentials() []string {
	seen := make(map[string]struct{})
	for _, p := range r.providers {
		for _, c := range p.RequiredCredentials {
			seen[c] = struct{}{}
		}
	}
	res := make([]string, 0, len(seen))
	for c := range seen {
		res = append(res, c)
	}
	sort.Strings(res)
	return res
}
