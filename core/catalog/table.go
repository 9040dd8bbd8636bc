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

// Package catalog holds the server, dataset and parameter tables shown by
// the grid, and loads them from CSV files or HAPI catalog JSON.
package catalog

import (
	"fmt"
)

// Table is an ordered set of string columns. Every row has one raw value
// per column.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable creates an empty table with the given columns.
func NewTable(name string, columns []string) *Table {
	t := &Table{
		name:    name,
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

func (t *Table) addColumn(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], "")
	}
	return len(t.columns) - 1
}

func (t *Table) Name() string {
	return t.name
}

// GetColumnNames returns the columns in table order.
func (t *Table) GetColumnNames() []string {
	return t.columns
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Length returns the number of rows.
func (t *Table) Length() int {
	return len(t.rows)
}

// AppendRow adds a row. Rows must have one value per column.
func (t *Table) AppendRow(values []string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table %q has %d columns", len(values), t.name, len(t.columns))
	}
	row := make([]string, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// appendRecord adds a row given as column -> value. order lists the
// record's columns in first-seen order; columns the table lacks are added.
func (t *Table) appendRecord(record map[string]string, order []string) {
	for _, name := range order {
		t.addColumn(name)
	}
	row := make([]string, len(t.columns))
	for name, value := range record {
		if i, ok := t.index[name]; ok {
			row[i] = value
		}
	}
	t.rows = append(t.rows, row)
}

// Row returns the raw values of row i.
func (t *Table) Row(i int) ([]string, error) {
	if i < 0 || i >= len(t.rows) {
		return nil, fmt.Errorf("index %d out of range [0:%d)", i, len(t.rows))
	}
	return t.rows[i], nil
}

// GetString returns the raw value of a cell.
func (t *Table) GetString(column string, i int) (string, error) {
	c := t.ColumnIndex(column)
	if c < 0 {
		return "", fmt.Errorf("column %q not found in table %q", column, t.name)
	}
	row, err := t.Row(i)
	if err != nil {
		return "", err
	}
	return row[c], nil
}
