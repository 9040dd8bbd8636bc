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

package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/safehtml"
)

const filterPrefix = "filter:"

// Query represents the parsed state of a catalog table URL
type Query struct {
	// Base path (e.g., "/table")
	Path string

	Table   string            // The table being viewed
	Columns []string          // Ordered list of visible columns (empty = table default)
	Filters map[string]string // Column search values (columnName -> value, constraint glyph included)
	Limit   int               // Number of rows to display (0 = show all)
}

// NewQuery creates a Query from a URL
func NewQuery(u *url.URL, defaultLimit int) *Query {
	state := &Query{
		Path:    u.Path,
		Filters: make(map[string]string),
		Limit:   defaultLimit,
	}

	q := u.Query()
	state.Table = q.Get("table")

	if columnsStr := q.Get("columns"); columnsStr != "" {
		state.Columns = strings.Split(columnsStr, ",")
	} else {
		state.Columns = []string{}
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 {
			state.Limit = limit
		}
	}

	// Extract filter parameters (format: filter:columnName=value)
	for key, values := range q {
		if strings.HasPrefix(key, filterPrefix) && len(values) > 0 {
			state.Filters[strings.TrimPrefix(key, filterPrefix)] = values[0]
		}
	}

	return state
}

// Clone creates a deep copy of the Query
func (s *Query) Clone() *Query {
	clone := &Query{
		Path:    s.Path,
		Table:   s.Table,
		Columns: make([]string, len(s.Columns)),
		Filters: make(map[string]string, len(s.Filters)),
		Limit:   s.Limit,
	}
	copy(clone.Columns, s.Columns)
	for colName, value := range s.Filters {
		clone.Filters[colName] = value
	}
	return clone
}

// ApplySearch records value as the search of column. An empty value clears
// the search.
func (s *Query) ApplySearch(column, value string) {
	if value == "" {
		delete(s.Filters, column)
		return
	}
	s.Filters[column] = value
}

// Search returns the search value of column.
func (s *Query) Search(column string) string {
	return s.Filters[column]
}

// WithSearch returns a URL with the search of column set to value
func (s *Query) WithSearch(column, value string) safehtml.URL {
	newState := s.Clone()
	newState.ApplySearch(column, value)
	return newState.ToSafeURL()
}

// WithLimit returns a URL with a different row limit
func (s *Query) WithLimit(limit int) safehtml.URL {
	newState := s.Clone()
	newState.Limit = limit
	return newState.ToSafeURL()
}

// IsColumnVisible checks if a column is in the visible columns list
func (s *Query) IsColumnVisible(column string) bool {
	for _, col := range s.Columns {
		if col == column {
			return true
		}
	}
	return false
}

// SearchedColumns returns the columns with a search value, sorted by name
func (s *Query) SearchedColumns() []string {
	cols := make([]string, 0, len(s.Filters))
	for col := range s.Filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{Path: s.Path}
	q := u.Query()

	if s.Table != "" {
		q.Set("table", s.Table)
	}
	if len(s.Columns) > 0 {
		q.Set("columns", strings.Join(s.Columns, ","))
	}
	for colName, value := range s.Filters {
		if value != "" {
			q.Set(filterPrefix+colName, value)
		}
	}
	q.Set("limit", strconv.Itoa(s.Limit))

	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(s.ToURL())
}
