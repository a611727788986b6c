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
	"encoding/json"
	"flag"
	"io"
	"os"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/platform/provider"
	"github.com/stockparfait/platform/registry"
	"github.com/stockparfait/platform/runner"
	"github.com/stockparfait/platform/settings"
	"github.com/stockparfait/platform/table"

	_ "github.com/stockparfait/platform/chart"
	_ "github.com/stockparfait/platform/vendors/fmp"
	_ "github.com/stockparfait/platform/vendors/polygon"
)

type Flags struct {
	Route    string // required, e.g. /equity/price/historical
	Params   string // JSON object with the query params
	Provider string // overrides the provider selection
	Settings string // path to user_settings.json; default: standard location
	JSON     bool   // dump the raw result envelope as JSON
	CSV      bool   // dump CSV format; default: text
	Rows     int    // max rows to print; 0 = unlimited
	Debug    bool   // re-raise errors instead of enveloping them
	LogLevel logging.Level
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("platform-query", flag.ExitOnError)
	fs.StringVar(&flags.Route, "route", "", "command route (required)")
	fs.StringVar(&flags.Params, "params", "{}", "query params as a JSON object")
	fs.StringVar(&flags.Provider, "provider", "", "provider to use")
	fs.StringVar(&flags.Settings, "settings", "", "path to user_settings.json")
	fs.BoolVar(&flags.JSON, "json", false, "print the result envelope as JSON")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	fs.IntVar(&flags.Rows, "rows", 0, "max. number of rows to print; 0 = unlimited")
	fs.BoolVar(&flags.Debug, "debug", false, "fail loudly on command errors")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if flags.Route == "" {
		return nil, errors.Reason("missing required -route argument")
	}
	return &flags, nil
}

func runQuery(ctx context.Context, flags *Flags, w io.Writer) error {
	var params provider.Params
	if err := json.Unmarshal([]byte(flags.Params), &params); err != nil {
		return errors.Annotate(err, "-params must be a JSON object")
	}
	if flags.Provider != "" {
		params["provider"] = flags.Provider
	}

	user := settings.LoadUser(ctx, flags.Settings)
	system := settings.LoadSystem(ctx)
	if flags.Debug {
		system.DebugMode = true
	}
	r := runner.New(ctx, registry.Default(ctx), user, system)
	env, err := r.Run(ctx, flags.Route, params)
	if err != nil {
		return errors.Annotate(err, "command failed")
	}

	if user.Preferences.ShowWarnings {
		for _, warning := range env.Warnings {
			logging.Warningf(ctx, "%s", warning)
		}
	}
	if env.Failed() {
		return errors.Reason("%s", env.Err.Error())
	}
	if flags.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(env); err != nil {
			return errors.Annotate(err, "failed to print the envelope")
		}
		return nil
	}
	tbl, err := env.Table()
	if err != nil {
		return errors.Annotate(err, "failed to convert the result")
	}
	p := table.Params{Rows: flags.Rows}
	if flags.CSV {
		if err := tbl.WriteCSV(w, p); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := tbl.WriteText(w, p); err != nil {
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

	if err := runQuery(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
