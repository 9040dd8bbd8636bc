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
	"fmt"
	"html"
	"strings"

	"github.com/google/safehtml"
	"github.com/mattn/go-runewidth"
)

const binsStyle = "margin: auto; width:80%;text-align:left"

// FormatBins lays out a stringified list of bin ranges one range per line,
// e.g. "[0, 1], [1, 2], '...', [9, 10]". The elided-ranges placeholder
// becomes its own ellipsis line.
func FormatBins(value string) string {
	split := strings.ReplaceAll(value, "], [", "],<br>&nbsp;[")
	split = strings.Replace(split, ", '...', ", ",<br>&nbsp;&hellip;<br>&nbsp;", 1)
	return fmt.Sprintf(`<div style="%s">%s</div>`, binsStyle, split)
}

// Bins returns the renderer for bin range columns.
func Bins(column string, cfg *Config) CellRenderer {
	return func(value string, phase Phase, _ Row, _ Meta) string {
		if phase != PhaseDisplay {
			return value
		}
		return FormatBins(cfg.text(value))
	}
}

// Ellipsis truncates display values wider than maxLength cells. The full
// value is kept as the tooltip. A maxLength of zero or less disables
// truncation. Under EscapeNone values arrive escaped; they are measured and
// cut as plain text and escaped once on output.
func Ellipsis(column string, cfg *Config, maxLength int) CellRenderer {
	return func(value string, phase Phase, _ Row, _ Meta) string {
		if phase != PhaseDisplay {
			return value
		}
		plain := value
		if cfg.Escape == EscapeNone {
			plain = html.UnescapeString(value)
		}
		if maxLength <= 0 || runewidth.StringWidth(plain) <= maxLength {
			return cfg.text(value)
		}
		short := strings.TrimRight(runewidth.Truncate(plain, maxLength, ""), " ")
		return fmt.Sprintf(`<span class="ellipsis" title="%s">%s&#8230;</span>`,
			safehtml.HTMLEscaped(plain).String(), safehtml.HTMLEscaped(short).String())
	}
}
