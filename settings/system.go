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

package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// Environment variables read at process start.
const (
	EnvAPIAuth          = "OPENBB_API_AUTH"
	EnvAPIUsername      = "OPENBB_API_USERNAME"
	EnvAPIPassword      = "OPENBB_API_PASSWORD"
	EnvAPIAuthExtension = "OPENBB_API_AUTH_EXTENSION"
	EnvAutoBuild        = "OPENBB_AUTO_BUILD"
	EnvDebugMode        = "OPENBB_DEBUG_MODE"
	EnvDevMode          = "OPENBB_DEV_MODE"
	EnvHubBackend       = "OPENBB_HUB_BACKEND"
)

// SystemSettings are the per-process flags, assembled from the environment
// after the dotfile layers are loaded.
type SystemSettings struct {
	LogCollect bool
	TestMode   bool
	DebugMode  bool
	DevMode    bool
	AutoBuild  bool
	Headless   bool
	HubBackend string
	DBMSUri    string
}

// ParseBool parses a boolean leniently: true/false, yes/no, t/f, y/n, 1/0,
// case-insensitively. Anything else is an error.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "t", "y":
		return true, nil
	case "false", "no", "0", "f", "n":
		return false, nil
	}
	return false, errors.Reason("'%s' is not a boolean", s)
}

func envBool(ctx context.Context, key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := ParseBool(v)
	if err != nil {
		logging.Warningf(ctx, "ignoring %s: %s", key, err.Error())
		return def
	}
	return b
}

// LoadDotfiles layers .env files under the process environment, earlier
// paths taking precedence over later ones. A variable already set in the
// process environment is never overridden. Missing files are skipped.
func LoadDotfiles(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logging.Warningf(ctx, "failed to load env file %s: %s", p, err.Error())
		}
	}
}

// DefaultDotfiles returns the standard dotfile locations in precedence
// order: the user's platform home, then the current directory.
func DefaultDotfiles() []string {
	return []string{
		filepath.Join(Dir(), ".env"),
		".env",
	}
}

// LoadSystem assembles the system settings: dotfile layers first, then the
// process environment on top.
func LoadSystem(ctx context.Context) *SystemSettings {
	LoadDotfiles(ctx, DefaultDotfiles()...)
	return &SystemSettings{
		LogCollect: envBool(ctx, "OPENBB_LOG_COLLECT", true),
		TestMode:   envBool(ctx, "OPENBB_TEST_MODE", false),
		DebugMode:  envBool(ctx, EnvDebugMode, false),
		DevMode:    envBool(ctx, EnvDevMode, false),
		AutoBuild:  envBool(ctx, EnvAutoBuild, true),
		Headless:   envBool(ctx, "OPENBB_HEADLESS", false),
		HubBackend: os.Getenv(EnvHubBackend),
		DBMSUri:    os.Getenv("OPENBB_DBMS_URI"),
	}
}
