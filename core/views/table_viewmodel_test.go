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

package views

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-server/hapitable/core/catalog"
	"github.com/hapi-server/hapitable/core/query"
	"github.com/hapi-server/hapitable/core/rendering"
)

func datasetsTable(t *testing.T) *catalog.Table {
	t.Helper()
	table := catalog.NewTable("datasets", []string{"server", "id", "title", "startDate"})
	require.NoError(t, table.AppendRow([]string{"CDAWeb", "AC_H0_MFI", "ACE magnetic field", "1997-09-02"}))
	require.NoError(t, table.AppendRow([]string{"CDAWeb", "AC_H1_MFI", "ACE magnetic field 1 hour", "1997-09-02"}))
	require.NoError(t, table.AppendRow([]string{"SSCWeb", "ace", "ACE", ""}))
	return table
}

func newQuery(t *testing.T, raw string) *query.Query {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return query.NewQuery(u, 25)
}

func TestBuildViewModel(t *testing.T) {
	table := datasetsTable(t)
	grid := NewGrid(rendering.NewConfig(table.GetColumnNames()))
	src := catalog.Source{Name: "datasets", Title: "HAPI datasets", Columns: []string{"id", "server"}}

	vm := BuildViewModel(grid, src, table, newQuery(t, "/table?table=datasets&limit=2&filter:server=CDAWeb"))

	assert.Equal(t, "HAPI datasets", vm.Title)
	assert.Equal(t, 3, vm.TotalRows)
	assert.Equal(t, 2, vm.DisplayedRows)
	assert.True(t, vm.HasMoreRows)
	require.Len(t, vm.Columns, 2)
	assert.Equal(t, "id", vm.Columns[0].Name)
	assert.Equal(t, "view-and-search", vm.Columns[0].Kind)
	assert.Equal(t, "CDAWeb", vm.Columns[1].SearchValue)
	require.Len(t, vm.AllColumns, 4)
	assert.False(t, vm.AllColumns[2].IsVisible)
	assert.Equal(t, "date-range-search", vm.AllColumns[3].Kind)

	require.Len(t, vm.Rows, 2)
	// dataset links are scoped by the row's server
	assert.Contains(t, vm.Rows[1][0].String(), "#server=CDAWeb&dataset=AC_H1_MFI")
	assert.True(t, strings.HasPrefix(vm.Rows[0][1].String(), "CDAWeb<span"))
	assert.Contains(t, vm.ShowAllURL.String(), "limit=0")
}

func TestVisibleColumns(t *testing.T) {
	table := datasetsTable(t)

	cols := VisibleColumns(table, catalog.Source{}, newQuery(t, "/table"))
	assert.Equal(t, table.GetColumnNames(), cols)

	cols = VisibleColumns(table, catalog.Source{Columns: []string{"title"}}, newQuery(t, "/table?columns=startDate,bogus"))
	assert.Equal(t, []string{"startDate"}, cols)
}

func TestGridCellUnknownColumn(t *testing.T) {
	grid := NewGrid(rendering.NewConfig([]string{"server"}))
	assert.Equal(t, "", grid.Cell(rendering.Row{"S1"}, 0, "nope").String())
	assert.Contains(t, grid.Cell(rendering.Row{"S1"}, 0, "server").String(), "#server=S1")
}
