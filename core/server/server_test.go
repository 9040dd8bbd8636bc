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
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-server/hapitable/core/catalog"
	"github.com/hapi-server/hapitable/core/config"
)

func newTestServer(t *testing.T, strict bool, tables ...*catalog.Table) *Server {
	t.Helper()
	settings, err := config.LoadFile("")
	require.NoError(t, err)
	settings.Strict = strict

	manager := catalog.NewManager("")
	for _, table := range tables {
		manager.AddTable(catalog.Source{Name: table.Name()}, table)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	srv, err := NewServer(manager, settings, log)
	require.NoError(t, err)
	return srv
}

func datasetsTable(t *testing.T) *catalog.Table {
	t.Helper()
	table := catalog.NewTable("hapi_datasets", []string{"server", "id", "title", "startDate"})
	require.NoError(t, table.AppendRow([]string{"CDAWeb", "AC_H0_MFI", "ACE Magnetic Field 16-Second Level 2 Data", "1997-09-02T00:00:12Z"}))
	require.NoError(t, table.AppendRow([]string{"CDAWeb", "AC_H1_EPM", "ACE EPAM 5-Minute Level 2 Data", "1997-08-30T17:01:00Z"}))
	return table
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestTablePage(t *testing.T) {
	h := newTestServer(t, false, datasetsTable(t)).Handler()

	rec := get(t, h, "/table?table=hapi_datasets&filter:server=CDAWeb")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Hapi Datasets</title>")
	assert.Contains(t, body, `<input class="columnSearch" name="server" value="CDAWeb" placeholder="Search">`)
	assert.Contains(t, body, `href="https://hapi-server.org/servers/#server=CDAWeb&dataset=AC_H0_MFI"`)
	assert.Contains(t, body, `onclick="triggerSearch('id', 'AC_H1_EPM')"`)
	assert.Contains(t, body, `class="timeSearchConstraints"`)
	assert.Contains(t, body, "function triggerSearch")
	// deep links restore the bare value, as the search links' onclick does
	assert.Contains(t, body, `/^#([^=]+)=[>≥<≤]?(.*)$/`)
	assert.Contains(t, body, "Showing 2 of 2 rows.")
}

func TestTablePageLimit(t *testing.T) {
	h := newTestServer(t, false, datasetsTable(t)).Handler()

	rec := get(t, h, "/table?table=hapi_datasets&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Showing 1 of 2 rows.")
	assert.Contains(t, body, "Show all")
	assert.NotContains(t, body, "AC_H1_EPM")
}

func TestTableErrors(t *testing.T) {
	h := newTestServer(t, false, datasetsTable(t)).Handler()

	tests := []struct {
		target string
		code   int
	}{
		{"/table", http.StatusBadRequest},
		{"/table?table=missing", http.StatusNotFound},
		{"/cell?table=hapi_datasets&column=server", http.StatusBadRequest},
		{"/cell?table=hapi_datasets&column=server&row=-1", http.StatusBadRequest},
		{"/cell?table=hapi_datasets&column=nope&row=0", http.StatusNotFound},
		{"/cell?table=hapi_datasets&column=server&row=7", http.StatusNotFound},
		{"/cell?table=missing&column=server&row=0", http.StatusNotFound},
		{"/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.code, get(t, h, tt.target).Code)
		})
	}
}

func TestCell(t *testing.T) {
	h := newTestServer(t, false, datasetsTable(t)).Handler()

	rec := get(t, h, "/cell?table=hapi_datasets&column=server&row=0")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "CDAWeb"), body)
	assert.Contains(t, body, `href="https://hapi-server.org/servers/#server=CDAWeb"`)
	assert.Contains(t, body, `onclick="triggerSearch('server', 'CDAWeb')"`)
	assert.NotContains(t, body, "<html")
}

func TestLanding(t *testing.T) {
	h := newTestServer(t, false, datasetsTable(t)).Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>"+config.DefaultTitle+"</h1>")
	assert.Contains(t, body, `href="table?table=hapi_datasets"`)
	assert.Contains(t, body, "2 rows, 4 columns")
}

func TestHealthzAndMetrics(t *testing.T) {
	h := newTestServer(t, false, datasetsTable(t)).Handler()

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	require.Equal(t, http.StatusOK, get(t, h, "/table?table=hapi_datasets").Code)
	metrics := get(t, h, "/metrics").Body.String()
	assert.Contains(t, metrics, `hapitable_cells_rendered_total{kind="view-and-search",table="hapi_datasets"} 4`)
	assert.Contains(t, metrics, `hapitable_cells_rendered_total{kind="date-range-search",table="hapi_datasets"} 2`)
	assert.Contains(t, metrics, `http_request_duration_seconds_count{code="200",handler="table",method="get"} 1`)
}

func TestCheckTablesStrict(t *testing.T) {
	table := catalog.NewTable("orphans", []string{"id", "title"})
	require.NoError(t, table.AppendRow([]string{"AC_H0_MFI", "ACE"}))

	assert.NoError(t, newTestServer(t, false, table).CheckTables())

	srv := newTestServer(t, true, table)
	err := srv.CheckTables()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `table "orphans"`)
	assert.Equal(t, http.StatusInternalServerError, get(t, srv.Handler(), "/table?table=orphans").Code)
}

func TestCheckTablesLoadError(t *testing.T) {
	settings, err := config.LoadFile("")
	require.NoError(t, err)
	manager := catalog.NewManager("")
	require.NoError(t, manager.AddSource(catalog.Source{Name: "broken", Type: catalog.SourceCSV, Path: "/does/not/exist.csv"}))

	log := logrus.New()
	log.SetOutput(io.Discard)
	srv, err := NewServer(manager, settings, log)
	require.NoError(t, err)

	assert.Error(t, srv.CheckTables())
	assert.Equal(t, http.StatusOK, get(t, srv.Handler(), "/").Code)
}
