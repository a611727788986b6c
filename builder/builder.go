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

// Package builder generates the static command client from the installed
// extensions: one typed method per command route, plus the extension map
// recording which extensions the client was built against. Rebuilding with
// the same extensions is deterministic down to the byte.
package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/platform/registry"
	"github.com/stockparfait/platform/settings"
)

// extensionMapFile records the extensions a build used.
const extensionMapFile = "extension_map.json"

// clientFile is the generated source file name.
const clientFile = "client.go"

// ExtensionMap is the build manifest: extension name to version, split by
// extension type.
type ExtensionMap struct {
	Core     map[string]string `json:"core"`
	Provider map[string]string `json:"provider"`
}

// CurrentMap captures the installed extensions of a registry.
func CurrentMap(reg *registry.Registry) *ExtensionMap {
	m := &ExtensionMap{
		Core:     make(map[string]string),
		Provider: make(map[string]string),
	}
	for name, ext := range reg.CoreExtensions() {
		m.Core[name] = ext.Version
	}
	for _, name := range reg.ProviderNames() {
		p, err := reg.Get(name)
		if err != nil {
			continue
		}
		m.Provider[name] = p.Version
	}
	return m
}

func (m *ExtensionMap) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Annotate(err, "failed to serialize the extension map")
	}
	return append(data, '\n'), nil
}

// Dirty reports whether the extensions installed in reg differ from the
// manifest of the last build in dir. A missing manifest means dirty.
func Dirty(reg *registry.Registry, dir string) bool {
	onDisk, err := os.ReadFile(filepath.Join(dir, extensionMapFile))
	if err != nil {
		return true
	}
	current, err := CurrentMap(reg).marshal()
	if err != nil {
		return true
	}
	return string(onDisk) != string(current)
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Annotate(err, "failed to create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return errors.Annotate(err, "failed to create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Annotate(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Annotate(err, "failed to close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Annotate(err, "failed to replace %s", path)
	}
	return nil
}

// removeStale deletes previously generated sources the current build no
// longer emits, identified by the generated-code header. Hand-written files
// in the directory are left alone.
func removeStale(dir string, keep map[string]bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || keep[name] {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if bytes.HasPrefix(data, []byte(generatedHeader)) {
			os.Remove(path)
		}
	}
}

// Build generates the client package and the extension map into dir. The
// generated package is named after the directory.
func Build(ctx context.Context, reg *registry.Registry, dir string) error {
	pkg := filepath.Base(dir)
	files, err := generateClient(ctx, reg, pkg)
	if err != nil {
		return errors.Annotate(err, "failed to generate the client")
	}
	keep := make(map[string]bool, len(files))
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.Name), f.Source); err != nil {
			return errors.Annotate(err, "failed to write the client source")
		}
		keep[f.Name] = true
	}
	removeStale(dir, keep)
	manifest, err := CurrentMap(reg).marshal()
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, extensionMapFile), manifest); err != nil {
		return errors.Annotate(err, "failed to write the extension map")
	}
	logging.Infof(ctx, "built the client package '%s' in %s", pkg, dir)
	return nil
}

// AutoBuild rebuilds the client when the installed extensions changed since
// the last build, honoring the system auto-build flag. It is a no-op when
// the build is current.
func AutoBuild(ctx context.Context, reg *registry.Registry, dir string, sys *settings.SystemSettings) error {
	if sys != nil && !sys.AutoBuild {
		return nil
	}
	if !Dirty(reg, dir) {
		logging.Debugf(ctx, "the client build in %s is current", dir)
		return nil
	}
	return Build(ctx, reg, dir)
}
