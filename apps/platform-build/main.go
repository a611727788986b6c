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
	"os"
	"path/filepath"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/platform/builder"
	"github.com/stockparfait/platform/registry"
	"github.com/stockparfait/platform/settings"

	toml "github.com/pelletier/go-toml/v2"

	_ "github.com/stockparfait/platform/chart"
	_ "github.com/stockparfait/platform/vendors/fmp"
	_ "github.com/stockparfait/platform/vendors/polygon"
)

type Flags struct {
	Config   string // default: <platform home>/build.toml
	OutDir   string // overrides the config's out_dir
	Force    bool   // rebuild even when the extension map is unchanged
	LogLevel logging.Level
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("platform-build", flag.ExitOnError)
	fs.StringVar(&flags.Config, "conf",
		filepath.Join(settings.Dir(), "build.toml"), "path to the build config")
	fs.StringVar(&flags.OutDir, "out", "", "output directory for the client package")
	fs.BoolVar(&flags.Force, "force", false,
		"rebuild even when no extensions changed")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	err := fs.Parse(args)
	return &flags, err
}

type Config struct {
	OutDir string `toml:"out_dir"` // where to place the generated package
}

func parseConfig(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, errors.Annotate(err,
			"cannot check config file for existence: '%s'", filePath)
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	var c Config
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	return &c, nil
}

func build(ctx context.Context, flags *Flags) error {
	config, err := parseConfig(flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	outDir := config.OutDir
	if flags.OutDir != "" {
		outDir = flags.OutDir
	}
	if outDir == "" {
		outDir = filepath.Join(settings.Dir(), "client")
	}

	reg := registry.Default(ctx)
	if flags.Force {
		return builder.Build(ctx, reg, outDir)
	}
	system := settings.LoadSystem(ctx)
	return builder.AutoBuild(ctx, reg, outDir, system)
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

	if err := build(ctx, flags); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
