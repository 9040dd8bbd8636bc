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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-server/hapitable/core/catalog"
	"github.com/hapi-server/hapitable/core/links"
	"github.com/hapi-server/hapitable/core/rendering"
)

const sampleYAML = `
listen: ":9000"
log:
  level: debug
title: HAPI servers
escape: html
title_length: 20
tables:
  - name: datasets
    title: Datasets
    source: catalog-datasets
    path: data/catalogs-all.json
    columns: [server, id, title, startDate, stopDate]
  - name: parameters
    source: catalog-parameters
    path: /abs/catalogs-all.json
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hapitable.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	c, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.Listen)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, DefaultLogFormat, c.Log.Format)
	assert.Equal(t, "HAPI servers", c.Title)
	assert.Equal(t, "html", c.Escape)
	assert.Equal(t, 20, c.TitleLength)
	assert.Equal(t, rendering.DefaultDescriptionLength, c.DescriptionLength)
	assert.True(t, c.SearchIdentifiers)
	assert.Equal(t, DefaultLimit, c.DefaultLimit)
	assert.Equal(t, filepath.Dir(path), c.BaseDir)

	require.Len(t, c.Tables, 2)
	assert.Equal(t, []string{"server", "id", "title", "startDate", "stopDate"}, c.Tables[0].Columns)

	sources := c.Sources()
	require.Len(t, sources, 2)
	assert.Equal(t, catalog.Source{
		Name:    "datasets",
		Title:   "Datasets",
		Type:    catalog.SourceCatalogDatasets,
		Path:    "data/catalogs-all.json",
		Columns: []string{"server", "id", "title", "startDate", "stopDate"},
	}, sources[0])
}

func TestDefaultsWithoutFile(t *testing.T) {
	c, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, DefaultListen, c.Listen)
	assert.Equal(t, links.DefaultExplorerURL, c.ExplorerURL)
	assert.Equal(t, links.DefaultSpaseURL, c.SpaseURL)
	assert.Equal(t, rendering.DefaultTitleLength, c.TitleLength)
	assert.Equal(t, "", c.BaseDir)
	assert.Empty(t, c.Tables)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HAPITABLE_TITLE_LENGTH", "12")
	t.Setenv("HAPITABLE_LOG_LEVEL", "warn")
	t.Setenv("HAPITABLE_SEARCH_IDENTIFIERS", "false")

	c, err := LoadFile(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 12, c.TitleLength)
	assert.Equal(t, "warn", c.Log.Level)
	assert.False(t, c.SearchIdentifiers)
}

func TestMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c, err := LoadFile(writeConfig(t, `
escape: xml
title_length: 0
tables:
  - name: a
    source: csv
    path: a.csv
  - name: a
    source: parquet
  - source: csv
    path: b.csv
`))
	require.Error(t, err)
	assert.Nil(t, c)

	msg := err.Error()
	assert.Contains(t, msg, `unknown escape policy "xml"`)
	assert.Contains(t, msg, "title_length must be positive")
	assert.Contains(t, msg, `tables[1]: duplicate name "a"`)
	assert.Contains(t, msg, `tables[1]: unknown source "parquet"`)
	assert.Contains(t, msg, "tables[1]: path is required")
	assert.Contains(t, msg, "tables[2]: name is required")
}

func TestBindFlags(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("listen", DefaultListen, "")
	flags.String("log-level", DefaultLogLevel, "")
	flags.Bool("dry-run", false, "")
	require.NoError(t, BindFlags(v, flags))
	require.NoError(t, flags.Parse([]string{"--listen=:1234", "--log-level=error"}))

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":1234", c.Listen)
	assert.Equal(t, "error", c.Log.Level)
	assert.False(t, v.IsSet("dry_run"))
}

func TestRendering(t *testing.T) {
	c, err := LoadFile(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	rc, err := c.Rendering([]string{"server", "id", "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"server", "id", "title"}, rc.Columns)
	assert.Equal(t, rendering.EscapeHTML, rc.Escape)
	assert.Equal(t, 20, rc.TitleLength)
	assert.Equal(t, links.DefaultExplorerURL, rc.ExplorerURL)
	assert.True(t, rc.SearchIdentifiers)
}
