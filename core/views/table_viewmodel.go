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
	"fmt"

	"github.com/google/safehtml"
	"github.com/google/safehtml/uncheckedconversions"

	"github.com/hapi-server/hapitable/core/catalog"
	"github.com/hapi-server/hapitable/core/query"
	"github.com/hapi-server/hapitable/core/rendering"
)

// TableViewModel contains the data from the table formatted for template consumption
type TableViewModel struct {
	Title       string
	Description string
	Table       string
	Columns     []ColumnInfo      // Visible columns in display order
	AllColumns  []ColumnInfo      // All available columns with metadata
	Rows        [][]safehtml.HTML // Rendered cells, one slice per row
	CurrentURL  safehtml.URL      // Current URL for building links

	// Pagination info
	TotalRows     int          // Total number of rows in the table
	DisplayedRows int          // Number of rows actually displayed
	HasMoreRows   bool         // True if there are more rows than displayed
	CurrentLimit  int          // Current row limit
	ShowAllURL    safehtml.URL // URL that lifts the row limit
}

// ColumnInfo contains information about a column for UI display
type ColumnInfo struct {
	Name        string        // Column name
	Kind        string        // Rendering recipe of the column
	IsVisible   bool          // Whether column is currently visible
	SearchValue string        // Current value of the column's search input
	SearchInput safehtml.HTML // The column's search input element
	ClearURL    safehtml.URL  // URL that clears the column's search
}

// LandingViewModel lists the available tables
type LandingViewModel struct {
	Title    string
	Subtitle string
	Tables   []TableInfo
}

// TableInfo describes one table on the landing page
type TableInfo struct {
	Name        string
	Title       string
	Description string
	URL         safehtml.URL
	RecordCount int
	ColumnCount int
}

// Grid holds the cell renderers of one table. Renderers are built once per
// column and reused for every row.
type Grid struct {
	Config    *rendering.Config
	renderers []rendering.CellRenderer
}

// NewGrid builds the renderers for every column of cfg.
func NewGrid(cfg *rendering.Config) *Grid {
	return &Grid{Config: cfg, renderers: rendering.ForColumns(cfg)}
}

// Cell renders one cell. Unknown columns render as empty.
func (g *Grid) Cell(row rendering.Row, rowIndex int, column string) safehtml.HTML {
	i := g.Config.Index(column)
	if i < 0 {
		return safehtml.HTML{}
	}
	value := ""
	if i < len(row) {
		value = row[i]
	}
	out := g.renderers[i](value, rendering.PhaseDisplay, row, rendering.Meta{Column: column, Index: i, Row: rowIndex})
	// Renderers emit markup built from trusted templates; the escaping of
	// cell values is decided by Config.Escape.
	return uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(out)
}

// searchInput builds the search box the in-page triggerSearch bridge looks
// up by column name.
func searchInput(column, value string) safehtml.HTML {
	return uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(fmt.Sprintf(
		`<input class="columnSearch" name="%s" value="%s" placeholder="Search">`,
		safehtml.HTMLEscaped(column), safehtml.HTMLEscaped(value)))
}

// VisibleColumns resolves the columns to show: the query's columns, else the
// source defaults, else every column. Unknown names are dropped.
func VisibleColumns(table *catalog.Table, src catalog.Source, q *query.Query) []string {
	requested := q.Columns
	if len(requested) == 0 {
		requested = src.Columns
	}
	if len(requested) == 0 {
		return table.GetColumnNames()
	}
	var cols []string
	for _, c := range requested {
		if table.ColumnIndex(c) >= 0 {
			cols = append(cols, c)
		}
	}
	return cols
}

// BuildViewModel creates a view model for a table rendered through grid
func BuildViewModel(grid *Grid, src catalog.Source, table *catalog.Table, q *query.Query) TableViewModel {
	title := src.Title
	if title == "" {
		title = src.Name
	}

	vm := TableViewModel{
		Title:        title,
		Description:  src.Description,
		Table:        src.Name,
		CurrentURL:   q.ToSafeURL(),
		TotalRows:    table.Length(),
		CurrentLimit: q.Limit,
		ShowAllURL:   q.WithLimit(0),
	}

	visible := VisibleColumns(table, src, q)
	visibleSet := make(map[string]bool, len(visible))
	for _, c := range visible {
		visibleSet[c] = true
	}

	for _, name := range table.GetColumnNames() {
		info := ColumnInfo{
			Name:        name,
			Kind:        grid.Config.RuleFor(name).Kind.String(),
			IsVisible:   visibleSet[name],
			SearchValue: q.Search(name),
			SearchInput: searchInput(name, q.Search(name)),
			ClearURL:    q.WithSearch(name, ""),
		}
		vm.AllColumns = append(vm.AllColumns, info)
	}
	for _, name := range visible {
		vm.Columns = append(vm.Columns, vm.AllColumns[table.ColumnIndex(name)])
	}

	// Apply limit
	rowsToDisplay := vm.TotalRows
	if q.Limit > 0 && q.Limit < vm.TotalRows {
		rowsToDisplay = q.Limit
		vm.HasMoreRows = true
	}
	vm.DisplayedRows = rowsToDisplay

	vm.Rows = make([][]safehtml.HTML, 0, rowsToDisplay)
	for i := 0; i < rowsToDisplay; i++ {
		row, err := table.Row(i)
		if err != nil {
			break
		}
		cells := make([]safehtml.HTML, len(visible))
		for j, name := range visible {
			cells[j] = grid.Cell(row, i, name)
		}
		vm.Rows = append(vm.Rows, cells)
	}
	return vm
}
