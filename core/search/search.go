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

// Package search connects generated search links to whatever owns the
// grid's column search state.
package search

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hapi-server/hapitable/core/links"
)

// Controller owns the per-column search inputs of a grid.
type Controller interface {
	// ApplySearch sets the search input of column to value and runs the
	// grid's search for it.
	ApplySearch(column, value string)
}

// ControllerFunc adapts a function to a Controller.
type ControllerFunc func(column, value string)

// ApplySearch calls f(column, value).
func (f ControllerFunc) ApplySearch(column, value string) {
	f(column, value)
}

// Trigger forwards a search link activation to ctrl. A nil controller
// ignores the activation.
func Trigger(ctrl Controller, column, value string) {
	if ctrl == nil {
		return
	}
	logrus.WithFields(logrus.Fields{"column": column, "value": value}).Debug("search triggered")
	ctrl.ApplySearch(column, value)
}

// Fragment is a search encoded in a page URL fragment, e.g. "#startDate=>2020".
type Fragment struct {
	Column     string
	Constraint links.Constraint
	Value      string
}

// ParseFragment decodes a search fragment. The leading '#' is optional.
func ParseFragment(s string) (Fragment, bool) {
	s = strings.TrimPrefix(s, "#")
	column, rest, ok := strings.Cut(s, "=")
	if !ok || column == "" {
		return Fragment{}, false
	}
	c, value := links.ParseConstraint(rest)
	return Fragment{Column: column, Constraint: c, Value: value}, true
}

// String encodes f the same way search links do, without the leading '#'.
func (f Fragment) String() string {
	return links.SearchFragment(f.Column, f.Value, f.Constraint)
}

// Apply forwards f to ctrl. Like the onclick handler of a search link it
// passes the bare value; the constraint only selects the link.
func (f Fragment) Apply(ctrl Controller) {
	Trigger(ctrl, f.Column, f.Value)
}
