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

package main

import (
	"context"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/platform/registry"
	"github.com/stockparfait/platform/table"

	_ "github.com/stockparfait/platform/chart"
	_ "github.com/stockparfait/platform/vendors/fmp"
	_ "github.com/stockparfait/platform/vendors/polygon"
)

type Flags struct {
	Models      bool // list composite models instead of providers
	Credentials bool // list the required credential keys
	CSV         bool // dump CSV format; default: text
	LogLevel    logging.Level
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("platform-providers", flag.ExitOnError)
	fs.BoolVar(&flags.Models, "models", false, "print models and their providers")
	fs.BoolVar(&flags.Credentials, "credentials", false,
		"print required credential keys")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	err := fs.Parse(args)
	return &flags, err
}

func providersTable(reg *registry.Registry) (*table.Table, error) {
	tbl := table.NewTable("provider", "version", "models", "credentials")
	for _, name := range reg.ProviderNames() {
		p, err := reg.Get(name)
		if err != nil {
			return nil, errors.Annotate(err, "failed to look up provider %s", name)
		}
		tbl.AddRow(table.StringRow{
			p.Name,
			p.Version,
			strings.Join(p.Models(), " "),
			strings.Join(p.RequiredCredentials, " "),
		})
	}
	return tbl, nil
}

func modelsTable(ctx context.Context, reg *registry.Registry) *table.Table {
	iface := reg.Interface(ctx)
	tbl := table.NewTable("model", "providers", "extra_params")
	for _, name := range iface.ModelNames() {
		mi, ok := iface.Get(name)
		if !ok {
			continue
		}
		extras := make([]string, len(mi.ExtraQuery))
		for i, ef := range mi.ExtraQuery {
			extras[i] = ef.Name
		}
		tbl.AddRow(table.StringRow{
			mi.Model,
			strings.Join(mi.Providers, " "),
			strings.Join(extras, " "),
		})
	}
	return tbl
}

func credentialsTable(reg *registry.Registry) *table.Table {
	tbl := table.NewTable("credential")
	for _, c := range reg.Credentials() {
		tbl.AddRow(table.StringRow{c})
	}
	return tbl
}

func printData(ctx context.Context, flags *Flags, w io.Writer) error {
	reg := registry.Default(ctx)
	var tbl *table.Table
	var err error
	switch {
	case flags.Models:
		tbl = modelsTable(ctx, reg)
	case flags.Credentials:
		tbl = credentialsTable(reg)
	default:
		if tbl, err = providersTable(reg); err != nil {
			return errors.Annotate(err, "failed to list providers")
		}
	}
	if flags.CSV {
		if err := tbl.WriteCSV(w, table.Params{}); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := tbl.WriteText(w, table.Params{}); err != nil {
		return errors.Annotate(err, "failed to print text")
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := printData(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
