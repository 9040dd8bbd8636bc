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
	"errors"
	"fmt"
	"strings"

	"github.com/google/safehtml"

	"github.com/hapi-server/hapitable/core/links"
)

const (
	DefaultTitleLength       = 30
	DefaultDescriptionLength = 60
)

// EscapePolicy decides whether raw cell values are escaped before they are
// placed into generated markup.
type EscapePolicy int

const (
	// EscapeNone trusts cell values to be escaped upstream. Values are
	// copied into the markup verbatim.
	EscapeNone EscapePolicy = iota
	// EscapeHTML escapes cell values. Values inside onclick handlers are
	// additionally quoted for a single-quoted JavaScript string.
	EscapeHTML
)

// ParseEscapePolicy parses "none" or "html".
func ParseEscapePolicy(s string) (EscapePolicy, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return EscapeNone, nil
	case "html":
		return EscapeHTML, nil
	}
	return EscapeNone, fmt.Errorf("unknown escape policy %q", s)
}

// EllipsisFunc builds a renderer that truncates values of column to
// maxLength display cells.
type EllipsisFunc func(column string, cfg *Config, maxLength int) CellRenderer

// Config is shared by every renderer of one grid.
type Config struct {
	// Columns is the grid's column order; rows are indexed the same way.
	Columns []string

	ExplorerURL string
	SpaseURL    string

	TitleLength       int
	DescriptionLength int

	// SearchIdentifiers adds an exact search link next to the view link of
	// server, dataset and parameter columns.
	SearchIdentifiers bool

	Escape EscapePolicy

	// Ellipsis truncates title and description cells. Defaults to Ellipsis.
	Ellipsis EllipsisFunc

	// Rules overrides DefaultRules.
	Rules []Rule
}

// NewConfig returns a Config for a grid with the given columns and default
// settings.
func NewConfig(columns []string) *Config {
	return &Config{
		Columns:           columns,
		ExplorerURL:       links.DefaultExplorerURL,
		SpaseURL:          links.DefaultSpaseURL,
		TitleLength:       DefaultTitleLength,
		DescriptionLength: DefaultDescriptionLength,
		SearchIdentifiers: true,
	}
}

// Index returns the position of column in the grid, or -1.
func (c *Config) Index(column string) int {
	for i, name := range c.Columns {
		if name == column {
			return i
		}
	}
	return -1
}

// lookup returns the row value of the first of names present in the grid.
// Missing columns and short rows yield "".
func (c *Config) lookup(row Row, names ...string) string {
	for _, name := range names {
		if i := c.Index(name); i >= 0 {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
	}
	return ""
}

func (c *Config) has(names ...string) bool {
	for _, name := range names {
		if c.Index(name) >= 0 {
			return true
		}
	}
	return false
}

func (c *Config) rules() []Rule {
	if len(c.Rules) > 0 {
		return c.Rules
	}
	return DefaultRules()
}

func (c *Config) ellipsis() EllipsisFunc {
	if c.Ellipsis != nil {
		return c.Ellipsis
	}
	return Ellipsis
}

var jsQuoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// text prepares a value for an HTML text or attribute position.
func (c *Config) text(value string) string {
	if c.Escape == EscapeHTML {
		return safehtml.HTMLEscaped(value).String()
	}
	return value
}

// arg prepares a value for a link builder, whose output places it in
// attributes and inside a single-quoted onclick argument.
func (c *Config) arg(value string) string {
	if c.Escape == EscapeHTML {
		return safehtml.HTMLEscaped(jsQuoter.Replace(value)).String()
	}
	return value
}

// Validate reports identifier columns that some column's rule needs for its
// view links but that are missing from the grid. Renderers still work on
// such grids; the affected link fields are left empty.
func (c *Config) Validate() error {
	var errs []error
	for _, column := range c.Columns {
		rule := c.RuleFor(column)
		if rule.Kind != KindViewAndSearch {
			continue
		}
		for _, need := range rule.Scope.requires() {
			if !c.has(need...) {
				errs = append(errs, fmt.Errorf("column %q links to the explorer but the grid has no %s column",
					column, strings.Join(need, " or ")))
			}
		}
	}
	return errors.Join(errs...)
}
