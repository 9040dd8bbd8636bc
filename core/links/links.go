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

// Package links builds the HTML anchors attached to catalog table cells:
// explorer view links, column search links and SPASE registry links.
//
// Every builder works on plain strings and performs no escaping. Callers
// decide the escaping policy before handing values in.
package links

import (
	"fmt"
	"strings"
)

const (
	// DefaultExplorerURL is the HAPI data explorer that view links point to.
	DefaultExplorerURL = "https://hapi-server.org/servers/"
	// DefaultSpaseURL replaces the spase:// scheme of SPASE resource IDs.
	DefaultSpaseURL = "http://spase-metadata.org/"

	spaseScheme = "spase://"
)

// Query identifies the narrowest entity the explorer can open.
// Empty fields are absent.
type Query struct {
	Server     string
	Dataset    string
	Parameters string
}

// Fragment returns the explorer URL fragment for q, without the leading '#'.
// Fields are always emitted in server, dataset, parameters order and a later
// field is never emitted without the earlier ones.
func (q Query) Fragment() string {
	var sb strings.Builder
	sb.WriteString("server=")
	sb.WriteString(q.Server)
	if q.Dataset == "" {
		return sb.String()
	}
	sb.WriteString("&dataset=")
	sb.WriteString(q.Dataset)
	if q.Parameters != "" {
		sb.WriteString("&parameters=")
		sb.WriteString(q.Parameters)
	}
	return sb.String()
}

// ViewURL returns the explorer URL for q.
func ViewURL(base string, q Query) string {
	if base == "" {
		base = DefaultExplorerURL
	}
	return base + "#" + q.Fragment()
}

// ViewLink returns an anchor opening q in the explorer in a new tab.
func ViewLink(base string, q Query) string {
	span := `<span class="open-in-new-tab"></span>`
	attrs := fmt.Sprintf(`href="%s" title="View in HAPI Data Explorer"`, ViewURL(base, q))
	return fmt.Sprintf(`<a %s target="_blank">%s</a>`, attrs, span)
}

// Constraint is a comparison operator used by search links.
type Constraint string

const (
	Exact        Constraint = "="
	Greater      Constraint = ">"
	GreaterEqual Constraint = "≥"
	Less         Constraint = "<"
	LessEqual    Constraint = "≤"
)

// DateConstraints lists the constraints offered for range searchable columns,
// in the order their links are rendered.
var DateConstraints = []Constraint{Exact, Greater, GreaterEqual, Less, LessEqual}

// IsExact reports whether c selects an exact match.
func (c Constraint) IsExact() bool {
	return c == "" || c == Exact
}

// Prefix returns the text placed between '=' and the value in a search
// fragment. Exact matches have no prefix.
func (c Constraint) Prefix() string {
	if c.IsExact() {
		return ""
	}
	return string(c)
}

// ParseConstraint splits a leading constraint glyph off s. Values without a
// recognised prefix are exact matches.
func ParseConstraint(s string) (Constraint, string) {
	for _, c := range []Constraint{GreaterEqual, LessEqual, Greater, Less} {
		if strings.HasPrefix(s, string(c)) {
			return c, strings.TrimPrefix(s, string(c))
		}
	}
	return Exact, s
}

// SearchFragment returns the same-page fragment, without '#', that encodes a
// search of column for value under c.
func SearchFragment(column, value string, c Constraint) string {
	return column + "=" + c.Prefix() + value
}

// SearchLink returns an anchor that searches column for value when clicked.
// The href doubles as a bookmarkable fragment for the same search.
func SearchLink(column, value string, c Constraint) string {
	label := "🔍"
	attrs := `title="Search column for this exact value"`
	if !c.IsExact() {
		label = string(c)
		attrs = fmt.Sprintf(`title="Search columns for datetimes %s %s"`, c, value)
	}
	attrs += ` style="text-decoration:none;"`
	attrs += fmt.Sprintf(` onclick="triggerSearch('%s', '%s')"`, column, value)
	return fmt.Sprintf(`<a href="#%s" %s>%s</a>`, SearchFragment(column, value, c), attrs, label)
}

// Combine appends links to value. sep goes between the value and the link
// group; links are joined without a separator and kept on one line.
func Combine(value string, links []string, sep, wrapperClass string) string {
	return fmt.Sprintf(`%s%s<span class="%s"><nobr>%s</nobr></span>`,
		value, sep, wrapperClass, strings.Join(links, ""))
}

// IsSpase reports whether value looks like a SPASE resource ID.
func IsSpase(value string) bool {
	return strings.HasPrefix(value, "spase")
}

// SpaseURL resolves a SPASE resource ID against base.
func SpaseURL(base, value string) string {
	if base == "" {
		base = DefaultSpaseURL
	}
	return strings.Replace(value, spaseScheme, base, 1)
}

// SpaseLink rewrites a SPASE resource ID into a link labelled with its last
// path segment. ok is false when value is not a SPASE ID.
func SpaseLink(base, value string) (link string, ok bool) {
	if !IsSpase(value) {
		return "", false
	}
	url := SpaseURL(base, value)
	label := value[strings.LastIndex(value, "/")+1:]
	return fmt.Sprintf(`<a href="%s" title="%s" target="_blank">%s</a>`, url, url, label), true
}
