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

package rendering

import (
	"strings"

	"github.com/hapi-server/hapitable/core/links"
)

// Phase is the purpose a cell value is requested for. Only PhaseDisplay
// produces HTML; every other phase sees the raw value.
type Phase string

const (
	PhaseDisplay Phase = "display"
	PhaseSort    Phase = "sort"
	PhaseFilter  Phase = "filter"
	PhaseType    Phase = "type"
)

// Row holds the raw values of one grid row, ordered like Config.Columns.
type Row []string

// Meta locates the cell being rendered.
type Meta struct {
	Column string
	Index  int // column position
	Row    int
}

// CellRenderer renders one cell of a column.
type CellRenderer func(value string, phase Phase, row Row, meta Meta) string

// Kind is the rendering recipe selected for a column.
type Kind int

const (
	KindDefault Kind = iota
	KindViewAndSearch
	KindTruncateAndSearch
	KindDateRangeSearch
	KindBins
)

func (k Kind) String() string {
	switch k {
	case KindViewAndSearch:
		return "view-and-search"
	case KindTruncateAndSearch:
		return "truncate-and-search"
	case KindDateRangeSearch:
		return "date-range-search"
	case KindBins:
		return "bins"
	default:
		return "default"
	}
}

// Scope is how much of the query descriptor a view link carries.
type Scope int

const (
	ScopeServer Scope = iota
	ScopeDataset
	ScopeParameter
)

// Alternative column names that hold each query descriptor field.
var (
	serverColumns    = []string{"server"}
	datasetColumns   = []string{"dataset", "id"}
	parameterColumns = []string{"parameter", "name"}
)

func (s Scope) requires() [][]string {
	switch s {
	case ScopeParameter:
		return [][]string{serverColumns, datasetColumns, parameterColumns}
	case ScopeDataset:
		return [][]string{serverColumns, datasetColumns}
	default:
		return nil
	}
}

// Rule maps columns matching Match to a rendering Kind.
type Rule struct {
	Name  string
	Match func(column string) bool
	Kind  Kind
	Scope Scope
	// MaxLength is the truncation length of KindTruncateAndSearch columns.
	MaxLength func(cfg *Config) int
}

// Named matches any of the given column names.
func Named(names ...string) func(string) bool {
	return func(column string) bool {
		for _, name := range names {
			if column == name {
				return true
			}
		}
		return false
	}
}

// Suffix matches column names ending in suffix.
func Suffix(suffix string) func(string) bool {
	return func(column string) bool {
		return strings.HasSuffix(column, suffix)
	}
}

// AnyOf matches columns matched by any of the predicates.
func AnyOf(preds ...func(string) bool) func(string) bool {
	return func(column string) bool {
		for _, p := range preds {
			if p(column) {
				return true
			}
		}
		return false
	}
}

// Always matches every column.
func Always(string) bool { return true }

// DefaultRules returns the catalog grid rules in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "server", Match: Named(serverColumns...), Kind: KindViewAndSearch, Scope: ScopeServer},
		{Name: "dataset", Match: Named(datasetColumns...), Kind: KindViewAndSearch, Scope: ScopeDataset},
		{Name: "parameter", Match: Named(parameterColumns...), Kind: KindViewAndSearch, Scope: ScopeParameter},
		{Name: "title", Match: Named("title"), Kind: KindTruncateAndSearch,
			MaxLength: func(cfg *Config) int { return cfg.TitleLength }},
		{Name: "description", Match: Named("description"), Kind: KindTruncateAndSearch,
			MaxLength: func(cfg *Config) int { return cfg.DescriptionLength }},
		{Name: "range", Match: AnyOf(Suffix("Date"), Named("x_nParams", "length")), Kind: KindDateRangeSearch},
		{Name: "bins", Match: Named("bins"), Kind: KindBins},
		{Name: "default", Match: Always, Kind: KindDefault},
	}
}

// RuleFor returns the first rule matching column. Rule lists without a
// catch-all fall back to KindDefault.
func (c *Config) RuleFor(column string) Rule {
	for _, r := range c.rules() {
		if r.Match != nil && r.Match(column) {
			return r
		}
	}
	return Rule{Name: "default", Match: Always, Kind: KindDefault}
}

// query builds the view link descriptor of a cell. The field of the cell's
// own scope comes from value; the others are looked up in the row.
func (c *Config) query(scope Scope, row Row, value string) links.Query {
	field := func(s Scope, names []string) string {
		if s == scope {
			return c.arg(value)
		}
		return c.arg(c.lookup(row, names...))
	}
	q := links.Query{Server: field(ScopeServer, serverColumns)}
	if scope >= ScopeDataset {
		q.Dataset = field(ScopeDataset, datasetColumns)
	}
	if scope >= ScopeParameter {
		q.Parameters = field(ScopeParameter, parameterColumns)
	}
	return q
}

func (c *Config) searchLink(column, value string, constraint links.Constraint) string {
	return links.SearchLink(column, c.arg(value), constraint)
}

const (
	rangeSeparator = "<br>"
	rangeClass     = "timeSearchConstraints"
	rangeSpacer    = "&hairsp;"
)

// Strategy returns the renderer for column. It is called once per column
// when the grid is set up; the renderer is then called for every cell.
func Strategy(column string, cfg *Config) CellRenderer {
	rule := cfg.RuleFor(column)
	if rule.Kind == KindBins {
		return Bins(column, cfg)
	}

	var truncate CellRenderer
	if rule.Kind == KindTruncateAndSearch {
		maxLength := 0
		if rule.MaxLength != nil {
			maxLength = rule.MaxLength(cfg)
		}
		truncate = cfg.ellipsis()(column, cfg, maxLength)
	}

	return func(value string, phase Phase, row Row, meta Meta) string {
		if phase != PhaseDisplay {
			return value
		}

		var ls []string
		sep, class := "", ""
		switch rule.Kind {
		case KindViewAndSearch:
			ls = append(ls, links.ViewLink(cfg.ExplorerURL, cfg.query(rule.Scope, row, value)))
			if cfg.SearchIdentifiers && value != "" {
				ls = append(ls, cfg.searchLink(column, value, links.Exact))
			}
		case KindTruncateAndSearch:
			// the search link always carries the untruncated value
			ls = append(ls, cfg.searchLink(column, value, links.Exact))
		case KindDateRangeSearch:
			sep, class = rangeSeparator, rangeClass
			if value != "" {
				for i, c := range links.DateConstraints {
					l := cfg.searchLink(column, value, c)
					if i > 0 {
						l = rangeSpacer + l
					}
					ls = append(ls, l)
				}
			}
		default:
			if value != "" {
				ls = append(ls, cfg.searchLink(column, value, links.Exact))
			}
		}

		display := cfg.text(value)
		if link, ok := links.SpaseLink(cfg.SpaseURL, display); ok {
			display = link
		} else if truncate != nil {
			display = truncate(value, phase, row, meta)
		}

		if len(ls) == 0 {
			return display
		}
		return links.Combine(display, ls, sep, class)
	}
}

// ForColumns builds one renderer per grid column, in grid order.
func ForColumns(cfg *Config) []CellRenderer {
	renderers := make([]CellRenderer, len(cfg.Columns))
	for i, column := range cfg.Columns {
		renderers[i] = Strategy(column, cfg)
	}
	return renderers
}

// RenderRow renders every cell of row with renderers built by ForColumns.
func RenderRow(renderers []CellRenderer, cfg *Config, row Row, rowIndex int) []string {
	cells := make([]string, len(renderers))
	for i, render := range renderers {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		cells[i] = render(value, PhaseDisplay, row, Meta{Column: cfg.Columns[i], Index: i, Row: rowIndex})
	}
	return cells
}
