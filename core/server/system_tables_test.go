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

package server

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-server/hapitable/core/catalog"
)

func TestBuildColumnsTable(t *testing.T) {
	bins := catalog.NewTable("parameters", []string{"server", "id", "name", "bins"})
	require.NoError(t, bins.AppendRow([]string{"CDAWeb", "AC_H0_MFI", "BGSEc", "[0, 1]"}))
	srv := newTestServer(t, false, datasetsTable(t), bins)

	columns := srv.BuildColumnsTable()
	require.Equal(t, 8, columns.Length())

	var got [][]string
	for i := 0; i < columns.Length(); i++ {
		row, err := columns.Row(i)
		require.NoError(t, err)
		got = append(got, row)
	}
	want := [][]string{
		{"hapi_datasets", "server", "view-and-search", "0", "2"},
		{"hapi_datasets", "id", "view-and-search", "1", "2"},
		{"hapi_datasets", "title", "truncate-and-search", "2", "2"},
		{"hapi_datasets", "startDate", "date-range-search", "3", "2"},
		{"parameters", "server", "view-and-search", "0", "1"},
		{"parameters", "id", "view-and-search", "1", "1"},
		{"parameters", "name", "view-and-search", "2", "1"},
		{"parameters", "bins", "bins", "3", "1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildColumnsTable() mismatch (-want +got):\n%s", diff)
	}
}

func TestAddSystemTables(t *testing.T) {
	srv := newTestServer(t, false, datasetsTable(t))
	srv.AddSystemTables()

	rec := get(t, srv.Handler(), "/table?table=_columns&filter:kind=bins")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Columns</title>")
	assert.Contains(t, body, `onclick="triggerSearch('kind', 'date-range-search')"`)

	// the system table does not describe itself
	assert.Equal(t, 4, srv.BuildColumnsTable().Length())
}
