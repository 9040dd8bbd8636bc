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
	"embed"
	"io"

	"github.com/google/safehtml/template"
)

//go:embed templates/*
var templateFS embed.FS

// PageRenderer renders whole pages: the catalog grid and the landing page.
// The page data types are owned by the caller.
type PageRenderer struct {
	tableTemplate   *template.Template
	landingTemplate *template.Template
}

// NewPageRenderer parses the embedded page templates
func NewPageRenderer() (*PageRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	tableTemplate, err := template.New("table.html").ParseFS(trustedFS, "templates/table.html")
	if err != nil {
		return nil, err
	}

	landingTemplate, err := template.New("landing.html").ParseFS(trustedFS, "templates/landing.html")
	if err != nil {
		return nil, err
	}

	return &PageRenderer{
		tableTemplate:   tableTemplate,
		landingTemplate: landingTemplate,
	}, nil
}

// Render renders a table view model to the provided writer
func (r *PageRenderer) Render(w io.Writer, vm any) error {
	return r.tableTemplate.Execute(w, vm)
}

// RenderLanding renders a landing view model to the provided writer
func (r *PageRenderer) RenderLanding(w io.Writer, vm any) error {
	return r.landingTemplate.Execute(w, vm)
}
