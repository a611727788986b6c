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

package builder

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/platform/registry"
	"github.com/stockparfait/platform/runner"
	"github.com/stockparfait/platform/schema"
)

// generatedHeader marks every emitted source file.
const generatedHeader = "// Code generated by platform-build. DO NOT EDIT."

// SourceFile is one generated file of the client package.
type SourceFile struct {
	Name   string
	Source []byte
}

// MethodName derives the client method name from a route path:
// "/equity/price/historical" becomes "EquityPriceHistorical".
func MethodName(path string) string {
	var b strings.Builder
	for _, seg := range strings.Split(path, "/") {
		for _, part := range strings.Split(seg, "_") {
			if part == "" {
				continue
			}
			b.WriteString(strings.ToUpper(part[:1]))
			b.WriteString(part[1:])
		}
	}
	return b.String()
}

// RouteFileName derives the generated file name from a route path:
// "/equity/price/historical" becomes "equity_price_historical.go".
func RouteFileName(path string) string {
	return strings.ReplaceAll(strings.Trim(path, "/"), "/", "_") + ".go"
}

// fieldGoName derives the exported struct field name from a canonical
// field name: "start_date" becomes "StartDate".
func fieldGoName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// goType maps a schema kind onto the parameter field type. Dates travel as
// ISO strings, since the schema layer coerces them on validation.
func goType(k schema.Kind) string {
	switch k {
	case schema.KindBool:
		return "bool"
	case schema.KindInt:
		return "int"
	case schema.KindFloat:
		return "float64"
	case schema.KindString, schema.KindDate:
		return "string"
	case schema.KindSlice:
		return "[]string"
	case schema.KindMap:
		return "map[string]interface{}"
	}
	return "interface{}"
}

// extraGoType is the optional-field rendering of a kind: scalars become
// pointers so that an explicit zero is distinguishable from unset.
func extraGoType(k schema.Kind) string {
	t := goType(k)
	switch k {
	case schema.KindBool, schema.KindInt, schema.KindFloat,
		schema.KindString, schema.KindDate:
		return "*" + t
	}
	return t
}

func fieldDoc(f schema.Field) string {
	parts := []string{f.Description}
	if f.Description == "" {
		parts = []string{"No description."}
	}
	if f.Required {
		parts = append(parts, "Required.")
	}
	if f.HasDefault {
		parts = append(parts, fmt.Sprintf("Default: %s.", f.Default))
	}
	if len(f.Choices) > 0 {
		parts = append(parts, "One of: "+strings.Join(f.Choices, ", ")+".")
	}
	return strings.Join(parts, " ")
}

// writeSetter emits the toParams statement for one standard field. Required
// fields always pass through; optional fields left at their zero value are
// omitted so the schema defaults apply.
func writeSetter(b *bytes.Buffer, f schema.Field) {
	goName := fieldGoName(f.Name)
	if f.Required {
		fmt.Fprintf(b, "\tm[%q] = p.%s\n", f.Name, goName)
		return
	}
	switch f.Kind {
	case schema.KindBool:
		fmt.Fprintf(b, "\tif p.%s {\n", goName)
	case schema.KindInt, schema.KindFloat:
		fmt.Fprintf(b, "\tif p.%s != 0 {\n", goName)
	case schema.KindString, schema.KindDate:
		fmt.Fprintf(b, "\tif p.%s != \"\" {\n", goName)
	default:
		fmt.Fprintf(b, "\tif p.%s != nil {\n", goName)
	}
	fmt.Fprintf(b, "\t\tm[%q] = p.%s\n\t}\n", f.Name, goName)
}

func writeExtraSetter(b *bytes.Buffer, f schema.Field) {
	goName := fieldGoName(f.Name)
	fmt.Fprintf(b, "\tif p.%s != nil {\n", goName)
	switch f.Kind {
	case schema.KindBool, schema.KindInt, schema.KindFloat,
		schema.KindString, schema.KindDate:
		fmt.Fprintf(b, "\t\tm[%q] = *p.%s\n\t}\n", f.Name, goName)
	default:
		fmt.Fprintf(b, "\t\tm[%q] = p.%s\n\t}\n", f.Name, goName)
	}
}

// generateCommand emits the source file of one route: the typed params
// struct, its map conversion, and the client method.
func generateCommand(cmd runner.Command, mi *registry.ModelInterface, pkg string) ([]byte, error) {
	name := MethodName(cmd.Path)
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s\n\n", generatedHeader)
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	b.WriteString(`import (
	"context"

	"github.com/stockparfait/platform/envelope"
	"github.com/stockparfait/platform/provider"
)
`)

	fmt.Fprintf(&b, "\n// %sParams are the arguments of Client.%s. Optional\n", name, name)
	fmt.Fprintf(&b, "// fields left at their zero value are omitted from the call, so their\n")
	fmt.Fprintf(&b, "// defaults apply.\n")
	fmt.Fprintf(&b, "type %sParams struct {\n", name)
	for _, f := range mi.StandardQuery {
		fmt.Fprintf(&b, "\t// %s\n", fieldDoc(f))
		fmt.Fprintf(&b, "\t%s %s\n", fieldGoName(f.Name), goType(f.Kind))
	}
	fmt.Fprintf(&b, "\t// Provider forces the vendor; one of: %s. Empty selects the\n",
		strings.Join(mi.Providers, ", "))
	fmt.Fprintf(&b, "\t// first vendor with configured credentials.\n")
	fmt.Fprintf(&b, "\tProvider string\n")
	for _, ef := range mi.ExtraQuery {
		fmt.Fprintf(&b, "\t// %s\n", fieldDoc(ef.Field))
		fmt.Fprintf(&b, "\t%s %s\n", fieldGoName(ef.Name), extraGoType(ef.Kind))
	}
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "func (p %sParams) toParams() provider.Params {\n", name)
	fmt.Fprintf(&b, "\tm := make(provider.Params)\n")
	for _, f := range mi.StandardQuery {
		writeSetter(&b, f)
	}
	fmt.Fprintf(&b, "\tif p.Provider != \"\" {\n\t\tm[\"provider\"] = p.Provider\n\t}\n")
	for _, ef := range mi.ExtraQuery {
		writeExtraSetter(&b, ef.Field)
	}
	fmt.Fprintf(&b, "\treturn m\n}\n\n")

	fmt.Fprintf(&b, "// %s calls %s.\n", name, cmd.Path)
	fmt.Fprintf(&b, "//\n// %s\n", cmd.Summary)
	fmt.Fprintf(&b, "//\n// Providers: %s.\n", strings.Join(mi.Providers, ", "))
	for _, ex := range cmd.Examples {
		fmt.Fprintf(&b, "//\n// Example:\n//\n//\t%s\n", ex)
	}
	fmt.Fprintf(&b, "func (c *Client) %s(ctx context.Context, params %sParams) (*envelope.Envelope, error) {\n",
		name, name)
	fmt.Fprintf(&b, "\treturn c.runner.Run(ctx, %q, params.toParams())\n}\n", cmd.Path)

	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, errors.Annotate(err, "generated source for %s does not compile", cmd.Path)
	}
	return src, nil
}

// generateBase emits the client.go file holding the Client itself.
func generateBase(pkg string) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s\n\n", generatedHeader)
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	b.WriteString(`import (
	"github.com/stockparfait/platform/runner"
)

// Client exposes one typed method per command route.
type Client struct {
	runner *runner.Runner
}

// New creates a client over a configured runner.
func New(r *runner.Runner) *Client {
	return &Client{runner: r}
}
`)
	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, errors.Annotate(err, "generated client base does not compile")
	}
	return src, nil
}

// generateClient emits the gofmt-formatted sources of the client package,
// one file per served route plus the client base. Routes and fields are
// emitted in sorted order, so the output is deterministic for a fixed set
// of extensions.
func generateClient(ctx context.Context, reg *registry.Registry, pkg string) ([]SourceFile, error) {
	iface := reg.Interface(ctx)
	base, err := generateBase(pkg)
	if err != nil {
		return nil, err
	}
	files := []SourceFile{{Name: clientFile, Source: base}}
	for _, cmd := range runner.Routes() {
		mi, ok := iface.Get(cmd.Model)
		if !ok {
			continue
		}
		src, err := generateCommand(cmd, mi, pkg)
		if err != nil {
			return nil, err
		}
		files = append(files, SourceFile{Name: RouteFileName(cmd.Path), Source: src})
	}
	return files, nil
}
