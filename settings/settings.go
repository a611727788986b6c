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

// Package settings manages the per-user and per-process configuration: the
// credential store, preferences, per-command defaults, and the system flags.
// User settings persist as JSON under the platform home directory; system
// settings come from the environment.
package settings

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/platform/schema"
)

// DefaultDirName is the platform home directory under $HOME.
const DefaultDirName = ".platform"

// userSettingsFile is the user settings file name within the home directory.
const userSettingsFile = "user_settings.json"

// Preferences are display and output preferences. Unknown keys written by
// newer versions are preserved across a load / save round trip.
type Preferences struct {
	OutputType    string `json:"output_type" default:"envelope" choices:"envelope,dataframe" desc:"Default result shape"`
	TablePageSize int    `json:"table_page_size" default:"20" desc:"Rows per page in table output"`
	TimeFormat    string `json:"time_format" default:"iso8601" desc:"Datetime display format"`
	ShowWarnings  bool   `json:"show_warnings" default:"true" desc:"Print command warnings"`

	schema.Unknown `json:"-"`
}

var _ schema.Configured = &Preferences{}

// SchemaOptions implements schema.Configured: unknown preference keys are
// preserved, not rejected.
func (p *Preferences) SchemaOptions() schema.Options {
	opts := schema.DefaultOptions()
	opts.Extra = schema.ExtraAccept
	return opts
}

// Profile identifies the user for logging and hub-style integrations.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

var _ schema.Configured = &Profile{}

// SchemaOptions implements schema.Configured.
func (p *Profile) SchemaOptions() schema.Options {
	opts := schema.DefaultOptions()
	opts.Extra = schema.ExtraIgnore
	return opts
}

// UserSettings is the persistent per-user configuration.
type UserSettings struct {
	// Credentials maps credential keys to secrets, e.g. "fmp_api_key".
	Credentials map[string]string `json:"credentials"`
	Preferences Preferences       `json:"preferences"`
	// Defaults maps a command route to the default params applied before the
	// caller's own, e.g. {"/equity/price/historical": {"provider": "fmp"}}.
	Defaults map[string]map[string]interface{} `json:"defaults"`
	Profile  Profile                           `json:"profile"`
}

// NewUserSettings creates settings with every preference at its default.
func NewUserSettings(ctx context.Context) *UserSettings {
	s := &UserSettings{
		Credentials: make(map[string]string),
		Defaults:    make(map[string]map[string]interface{}),
	}
	if err := schema.Validate(&s.Preferences, nil); err != nil {
		logging.Warningf(ctx, "failed to default preferences: %s", err.Error())
	}
	return s
}

// Dir returns the platform home directory, honoring the PLATFORM_HOME
// override.
func Dir() string {
	if d := os.Getenv("PLATFORM_HOME"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// UserSettingsPath returns the location of the user settings file.
func UserSettingsPath() string { return filepath.Join(Dir(), userSettingsFile) }

func decodeUserSettings(data []byte) (*UserSettings, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Annotate(err, "failed to parse user settings")
	}
	s := &UserSettings{
		Credentials: make(map[string]string),
		Defaults:    make(map[string]map[string]interface{}),
	}
	if creds, ok := raw["credentials"].(map[string]interface{}); ok {
		for k, v := range creds {
			if str, ok := v.(string); ok {
				s.Credentials[k] = str
			}
		}
	}
	prefs, _ := raw["preferences"].(map[string]interface{})
	if err := schema.Validate(&s.Preferences, prefs); err != nil {
		return nil, errors.Annotate(err, "invalid preferences")
	}
	profile, _ := raw["profile"].(map[string]interface{})
	if err := schema.Validate(&s.Profile, profile); err != nil {
		return nil, errors.Annotate(err, "invalid profile")
	}
	if defaults, ok := raw["defaults"].(map[string]interface{}); ok {
		for route, v := range defaults {
			if params, ok := v.(map[string]interface{}); ok {
				s.Defaults[route] = params
			}
		}
	}
	return s, nil
}

// LoadUser reads the user settings from path (or the default location when
// path is empty). A missing or corrupt file yields defaults with a warning;
// loading never fails the process.
func LoadUser(ctx context.Context, path string) *UserSettings {
	if path == "" {
		path = UserSettingsPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warningf(ctx, "failed to read user settings from %s: %s",
				path, err.Error())
		}
		return NewUserSettings(ctx)
	}
	s, err := decodeUserSettings(data)
	if err != nil {
		logging.Warningf(ctx,
			"corrupt user settings at %s, falling back to defaults: %s",
			path, err.Error())
		return NewUserSettings(ctx)
	}
	return s
}

// SaveUser atomically persists the settings to path (or the default
// location): a temp file in the same directory is written and renamed over
// the target, so a concurrent reader sees either the old or the new file.
func (s *UserSettings) SaveUser(path string) error {
	if path == "" {
		path = UserSettingsPath()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Annotate(err, "failed to create settings directory %s", dir)
	}
	prefs, err := schema.ByName(&s.Preferences)
	if err != nil {
		return errors.Annotate(err, "failed to serialize preferences")
	}
	out := map[string]interface{}{
		"credentials": s.Credentials,
		"preferences": prefs,
		"defaults":    s.Defaults,
		"profile":     s.Profile,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.Annotate(err, "failed to serialize user settings")
	}
	tmp, err := os.CreateTemp(dir, userSettingsFile+".*")
	if err != nil {
		return errors.Annotate(err, "failed to create temp settings file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Annotate(err, "failed to write settings")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Annotate(err, "failed to close settings file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Annotate(err, "failed to replace %s", path)
	}
	return nil
}

// RouteDefaults returns the configured default params for a route, or nil.
func (s *UserSettings) RouteDefaults(route string) map[string]interface{} {
	return s.Defaults[route]
}
