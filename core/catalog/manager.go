/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The HAPI Table Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// ErrTableNotFound is returned for table names that have no source.
var ErrTableNotFound = errors.New("table not found")

// Source types understood by the default loaders.
const (
	SourceCSV               = "csv"
	SourceCatalogDatasets   = "catalog-datasets"
	SourceCatalogParameters = "catalog-parameters"
)

// Source describes where a table comes from and how it is presented.
type Source struct {
	Name        string
	Title       string
	Description string
	Type        string
	Path        string
	// Columns lists the columns shown by default. Empty shows all.
	Columns []string
}

// Loader loads the table of a source.
type Loader interface {
	SourceType() string
	Load(src Source) (*Table, error)
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc struct {
	Type string
	Func func(src Source) (*Table, error)
}

func (l LoaderFunc) SourceType() string { return l.Type }
func (l LoaderFunc) Load(src Source) (*Table, error) { return l.Func(src) }

// Manager handles loading and caching of tables.
// Sources are registered eagerly; data is loaded lazily on first use.
type Manager struct {
	mu sync.RWMutex

	sources map[string]Source
	order   []string
	tables  map[string]*Table
	loaders map[string]Loader

	// Base directory for resolving relative paths
	baseDir string
}

// NewManager creates a manager with the CSV and catalog JSON loaders
// registered.
func NewManager(baseDir string) *Manager {
	m := &Manager{
		sources: make(map[string]Source),
		tables:  make(map[string]*Table),
		loaders: make(map[string]Loader),
		baseDir: baseDir,
	}
	m.RegisterLoader(LoaderFunc{Type: SourceCSV, Func: func(src Source) (*Table, error) {
		return ImportCSVFile(src.Name, src.Path, DefaultCSVOptions())
	}})
	m.RegisterLoader(LoaderFunc{Type: SourceCatalogDatasets, Func: func(src Source) (*Table, error) {
		datasets, _, err := ImportCatalogFile(src.Path)
		if err != nil {
			return nil, err
		}
		datasets.name = src.Name
		return datasets, nil
	}})
	m.RegisterLoader(LoaderFunc{Type: SourceCatalogParameters, Func: func(src Source) (*Table, error) {
		_, parameters, err := ImportCatalogFile(src.Path)
		if err != nil {
			return nil, err
		}
		parameters.name = src.Name
		return parameters, nil
	}})
	return m
}

// RegisterLoader registers a loader for its source type, replacing any
// previous loader of that type.
func (m *Manager) RegisterLoader(loader Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[loader.SourceType()] = loader
}

// AddSource registers a source. Its table is loaded on first access.
func (m *Manager) AddSource(src Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if src.Name == "" {
		return errors.New("source has no name")
	}
	if _, ok := m.loaders[src.Type]; !ok {
		return fmt.Errorf("source %q: no loader for type %q", src.Name, src.Type)
	}
	if src.Path != "" && !filepath.IsAbs(src.Path) && m.baseDir != "" {
		src.Path = filepath.Join(m.baseDir, src.Path)
	}
	if _, ok := m.sources[src.Name]; !ok {
		m.order = append(m.order, src.Name)
	}
	m.sources[src.Name] = src
	delete(m.tables, src.Name)
	return nil
}

// AddTable registers an already loaded table.
func (m *Manager) AddTable(src Source, table *Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[src.Name]; !ok {
		m.order = append(m.order, src.Name)
	}
	m.sources[src.Name] = src
	m.tables[src.Name] = table
}

// Sources returns all sources in registration order.
func (m *Manager) Sources() []Source {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Source, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.sources[name])
	}
	return out
}

// Source returns the source registered under name.
func (m *Manager) Source(name string) (Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.sources[name]
	return src, ok
}

// Table returns the table of a source, loading it if needed.
func (m *Manager) Table(name string) (*Table, error) {
	m.mu.RLock()
	if t, ok := m.tables[name]; ok {
		m.mu.RUnlock()
		return t, nil
	}
	src, ok := m.sources[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have loaded it meanwhile
	if t, ok := m.tables[name]; ok {
		return t, nil
	}
	loader, ok := m.loaders[src.Type]
	if !ok {
		return nil, fmt.Errorf("source %q: no loader for type %q", name, src.Type)
	}
	t, err := loader.Load(src)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %q: %w", name, err)
	}
	m.tables[name] = t
	return t, nil
}
