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
	"sort"
	"strconv"
	"strings"

	"github.com/hapi-server/hapitable/core/catalog"
)

// System table name constants
const (
	ColumnsTableName = "_columns"
)

func isSystemTable(name string) bool {
	return strings.HasPrefix(name, "_")
}

// BuildColumnsTable creates a system table describing every column of the
// loaded tables. Each row represents one column from any table.
//
// Schema:
//   - table_name: the table this column belongs to
//   - column_name: the column's name
//   - kind: the rendering strategy selected for the column
//   - position: column index within the table
//   - row_count: number of rows in the table
//
// Tables that fail to load are skipped.
func (s *Server) BuildColumnsTable() *catalog.Table {
	columnsTable := catalog.NewTable(ColumnsTableName, []string{"table_name", "column_name", "kind", "position", "row_count"})

	var names []string
	for _, src := range s.manager.Sources() {
		if !isSystemTable(src.Name) {
			names = append(names, src.Name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		_, table, grid, err := s.table(name)
		if err != nil {
			continue
		}
		rows := strconv.Itoa(table.Length())
		for position, column := range table.GetColumnNames() {
			kind := grid.Config.RuleFor(column).Kind.String()
			// widths always match the schema above
			_ = columnsTable.AppendRow([]string{name, column, kind, strconv.Itoa(position), rows})
		}
	}
	return columnsTable
}

// AddSystemTables registers the system tables with the manager. It must be
// called after all user tables are added.
func (s *Server) AddSystemTables() {
	s.manager.AddTable(catalog.Source{
		Name:        ColumnsTableName,
		Title:       "Columns",
		Description: "Columns of every table and the rendering strategy applied to them.",
	}, s.BuildColumnsTable())
}
