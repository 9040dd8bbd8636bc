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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/safehtml"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hapi-server/hapitable/core/catalog"
	"github.com/hapi-server/hapitable/core/config"
	"github.com/hapi-server/hapitable/core/query"
	"github.com/hapi-server/hapitable/core/rendering"
	"github.com/hapi-server/hapitable/core/views"
)

// Server represents the application server with all its dependencies
type Server struct {
	manager  *catalog.Manager
	renderer *rendering.PageRenderer
	settings *config.Config
	metrics  *Metrics
	log      logrus.FieldLogger

	// Grids are built once per table and reused across requests
	mu    sync.Mutex
	grids map[string]*views.Grid
}

// NewServer creates a server for the tables of manager.
func NewServer(manager *catalog.Manager, settings *config.Config, log logrus.FieldLogger) (*Server, error) {
	renderer, err := rendering.NewPageRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		manager:  manager,
		renderer: renderer,
		settings: settings,
		metrics:  NewMetrics(),
		log:      log,
		grids:    make(map[string]*views.Grid),
	}, nil
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// TableHandlerResult represents the result of handling a table request
type TableHandlerResult struct {
	Error      error
	StatusCode int
	Message    string
}

// grid returns the cached grid of a table, building it on first use.
func (s *Server) grid(name string, table *catalog.Table) (*views.Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.grids[name]; ok {
		return g, nil
	}
	cfg, err := s.settings.Rendering(table.GetColumnNames())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		if s.settings.Strict {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		s.log.WithField("table", name).Warnf("Rendering with missing identifier columns: %v", err)
	}
	g := views.NewGrid(cfg)
	s.grids[name] = g
	return g, nil
}

// table loads a table and its grid.
func (s *Server) table(name string) (catalog.Source, *catalog.Table, *views.Grid, error) {
	src, ok := s.manager.Source(name)
	if !ok {
		return catalog.Source{}, nil, nil, fmt.Errorf("%w: %q", catalog.ErrTableNotFound, name)
	}
	table, err := s.manager.Table(name)
	if err != nil {
		s.metrics.loadError(name)
		return src, nil, nil, err
	}
	g, err := s.grid(name, table)
	if err != nil {
		return src, nil, nil, err
	}
	return src, table, g, nil
}

// CheckTables loads every table and builds its grid. In strict mode a table
// whose explorer links lack identifier columns is an error.
func (s *Server) CheckTables() error {
	var errs []error
	for _, src := range s.manager.Sources() {
		start := time.Now()
		_, table, _, err := s.table(src.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.log.WithFields(logrus.Fields{
			"table":    src.Name,
			"rows":     table.Length(),
			"columns":  len(table.GetColumnNames()),
			"duration": time.Since(start),
		}).Info("Loaded table")
	}
	return errors.Join(errs...)
}

func (s *Server) resultFor(name string, err error) *TableHandlerResult {
	if errors.Is(err, catalog.ErrTableNotFound) {
		return &TableHandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Table '%s' not found", name)}
	}
	s.log.WithField("table", name).WithError(err).Error("Table unavailable")
	return &TableHandlerResult{Error: err}
}

func pageTitle(src catalog.Source) string {
	if src.Title != "" {
		return src.Title
	}
	return cases.Title(language.English).String(strings.ReplaceAll(src.Name, "_", " "))
}

// HandleTableRequest processes a table request and writes the response
// Returns an error result if the request is invalid, nil on success
func (s *Server) HandleTableRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *TableHandlerResult {
	start := time.Now()
	q := query.NewQuery(requestURL, s.settings.DefaultLimit)

	if q.Table == "" {
		return &TableHandlerResult{StatusCode: http.StatusBadRequest, Message: "Table parameter is required"}
	}

	src, table, grid, err := s.table(q.Table)
	if err != nil {
		return s.resultFor(q.Table, err)
	}

	src.Title = pageTitle(src)
	viewModel := views.BuildViewModel(grid, src, table, q)
	for _, col := range viewModel.Columns {
		s.metrics.cells(q.Table, col.Kind, len(viewModel.Rows))
	}

	setHeader("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, viewModel); err != nil {
		s.log.WithField("table", q.Table).WithError(err).Error("Template rendering error")
		return &TableHandlerResult{Error: err}
	}

	s.log.WithFields(logrus.Fields{
		"table":    q.Table,
		"rows":     viewModel.DisplayedRows,
		"duration": time.Since(start),
	}).Debug("Rendered table")
	return nil
}

// HandleCellRequest writes the rendered HTML of a single cell, addressed by
// table, column and row index.
func (s *Server) HandleCellRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *TableHandlerResult {
	params := requestURL.Query()
	name := params.Get("table")
	column := params.Get("column")
	if name == "" || column == "" {
		return &TableHandlerResult{StatusCode: http.StatusBadRequest, Message: "Table and column parameters are required"}
	}
	rowIndex, err := strconv.Atoi(params.Get("row"))
	if err != nil || rowIndex < 0 {
		return &TableHandlerResult{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf("Invalid row '%s'", params.Get("row"))}
	}

	_, table, grid, err := s.table(name)
	if err != nil {
		return s.resultFor(name, err)
	}
	if table.ColumnIndex(column) < 0 {
		return &TableHandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Column '%s' not found", column)}
	}
	row, err := table.Row(rowIndex)
	if err != nil {
		return &TableHandlerResult{StatusCode: http.StatusNotFound, Message: err.Error()}
	}

	cell := grid.Cell(row, rowIndex, column)
	s.metrics.cells(name, grid.Config.RuleFor(column).Kind.String(), 1)

	setHeader("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, cell.String()); err != nil {
		return &TableHandlerResult{Error: err}
	}
	return nil
}

// HandleLandingRequest processes the landing page request
func (s *Server) HandleLandingRequest(w io.Writer, setHeader func(key, value string)) error {
	setHeader("Content-Type", "text/html; charset=utf-8")

	vm := views.LandingViewModel{
		Title:    s.settings.Title,
		Subtitle: s.settings.Subtitle,
	}
	for _, src := range s.manager.Sources() {
		info := views.TableInfo{
			Name:        src.Name,
			Title:       pageTitle(src),
			Description: src.Description,
			URL:         safehtml.URLSanitized("table?table=" + url.QueryEscape(src.Name)),
		}
		if table, err := s.manager.Table(src.Name); err != nil {
			s.metrics.loadError(src.Name)
			s.log.WithField("table", src.Name).WithError(err).Warn("Listing table without counts")
		} else {
			info.RecordCount = table.Length()
			info.ColumnCount = len(table.GetColumnNames())
		}
		vm.Tables = append(vm.Tables, info)
	}

	if err := s.renderer.RenderLanding(w, vm); err != nil {
		s.log.WithError(err).Error("Landing page rendering error")
		return err
	}
	return nil
}

func (s *Server) writeResult(w http.ResponseWriter, result *TableHandlerResult) {
	if result.Error != nil {
		http.Error(w, result.Error.Error(), http.StatusInternalServerError)
		return
	}
	http.Error(w, result.Message, result.StatusCode)
}

// Handler returns the HTTP routes of the server, instrumented with request
// metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s.metrics.InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if err := s.HandleLandingRequest(w, w.Header().Set); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}), "landing"))
	mux.Handle("/table", s.metrics.InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if result := s.HandleTableRequest(w, r.URL, w.Header().Set); result != nil {
			s.writeResult(w, result)
		}
	}), "table"))
	mux.Handle("/cell", s.metrics.InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if result := s.HandleCellRequest(w, r.URL, w.Header().Set); result != nil {
			s.writeResult(w, result)
		}
	}), "cell"))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}
