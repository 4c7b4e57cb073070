/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

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
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/google/taxinomia-cube/core/tables"
	"github.com/google/taxinomia-cube/core/views"
)

// TableSummary describes a table in the JSON API
type TableSummary struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// InsertRequest inserts rows before row At, or appends them when At is nil.
// Columns missing from a row are left empty.
type InsertRequest struct {
	At   *int                `json:"at,omitempty"`
	Rows []map[string]string `json:"rows"`
}

// RowsResponse reports the table length after a change
type RowsResponse struct {
	Rows int `json:"rows"`
}

// SelectionRequest changes the selection. Mode is one of "select",
// "deselect", "toggle", "replace" or "clear".
type SelectionRequest struct {
	Mode    string `json:"mode"`
	Records []int  `json:"records"`
}

// SelectionResponse lists the selected records. Counted is the number of
// selected records that pass the filters of the cube.
type SelectionResponse struct {
	Records []int `json:"records"`
	Counted int   `json:"counted"`
}

// RecordsResponse lists the member records of a cell, section or header.
// Total counts all members, Records holds at most the query limit of them.
type RecordsResponse struct {
	Total   int                 `json:"total"`
	Indexes []int               `json:"indexes"`
	Columns []string            `json:"columns"`
	Records []map[string]string `json:"records"`
}

// CheckResponse reports the result of a consistency check
type CheckResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// bindBody decodes the request body only. Path parameters must not end up in
// the map of column values.
func bindBody(c echo.Context, i interface{}) error {
	return (&echo.DefaultBinder{}).BindBody(c, i)
}

func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
}

func (s *Server) apiTables(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []TableSummary{}
	for _, name := range s.dataModel.TableNames() {
		table := s.dataModel.GetTable(name)
		result = append(result, TableSummary{Name: name, Rows: table.Length(), Columns: table.GetColumnNames()})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) apiCube(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.workspace(c.Param("table"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.buildView(ws, s.viewQuery(c)))
}

func (s *Server) apiAscii(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.workspace(c.Param("table"))
	if err != nil {
		return err
	}
	ws.apply(s.viewQuery(c))
	return c.String(http.StatusOK, views.ToAscii(ws.cube))
}

// parseSort reads a comma separated list of columns, "-" marking descending order
func parseSort(s string) []tables.SortColumn {
	var result []tables.SortColumn
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		desc := strings.HasPrefix(name, "-")
		if name = strings.TrimPrefix(name, "-"); name != "" {
			result = append(result, tables.SortColumn{Name: name, Descending: desc})
		}
	}
	return result
}

// apiRecords returns the rows behind a cell, a section or a header of the
// pivot described by the query. Without a target it returns every counted
// record.
func (s *Server) apiRecords(c echo.Context) error {
	t, err := parseTarget(c)
	if err != nil {
		return err
	}
	if t.row < 0 && t.col < 0 && !t.isHeader {
		t.all = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.workspace(c.Param("table"))
	if err != nil {
		return err
	}
	q := s.viewQuery(c)
	ws.apply(q)
	members := ws.members(t)
	indexes := ws.table.SortedTopK(members, parseSort(c.QueryParam("sort")), q.Limit)
	names := ws.table.GetColumnNames()
	return c.JSON(http.StatusOK, RecordsResponse{
		Total:   len(members),
		Indexes: indexes,
		Columns: names,
		Records: ws.table.RowsAsMaps(indexes, names),
	})
}

// apiCheck verifies the cube of a table against a full recomputation
func (s *Server) apiCheck(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.workspace(c.Param("table"))
	if err != nil {
		return err
	}
	if err := ws.cube.Check(); err != nil {
		return c.JSON(http.StatusInternalServerError, CheckResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, CheckResponse{OK: true})
}

func (s *Server) apiSelection(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.workspace(c.Param("table"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SelectionResponse{Records: ws.tracker.Selected(), Counted: ws.tracker.Counted()})
}

func (s *Server) apiSetSelection(c echo.Context) error {
	var req SelectionRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.workspace(c.Param("table"))
	if err != nil {
		return err
	}
	for _, r := range req.Records {
		if r < 0 || r >= ws.table.Length() {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("record %d out of range", r))
		}
	}
	switch req.Mode {
	case "select", "":
		ws.tracker.Select(req.Records...)
	case "deselect":
		ws.tracker.Deselect(req.Records...)
	case "toggle":
		ws.tracker.Toggle(req.Records...)
	case "replace":
		ws.tracker.Clear()
		ws.tracker.Select(req.Records...)
	case "clear":
		ws.tracker.Clear()
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown mode %q", req.Mode))
	}
	return c.JSON(http.StatusOK, SelectionResponse{Records: ws.tracker.Selected(), Counted: ws.tracker.Counted()})
}

func (s *Server) apiInsertRows(c echo.Context) error {
	var req InsertRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.dataModel.GetTable(c.Param("table"))
	if table == nil {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Table '%s' not found", c.Param("table")))
	}
	names := table.GetColumnNames()
	rows := make([][]string, len(req.Rows))
	for i, values := range req.Rows {
		rows[i] = make([]string, len(names))
		for column, v := range values {
			at := slices.Index(names, column)
			if at < 0 {
				return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown column %q", column))
			}
			rows[i][at] = v
		}
	}
	at := table.Length()
	if req.At != nil {
		at = *req.At
	}
	if err := table.InsertRows(at, rows); err != nil {
		return badRequest(err)
	}
	return c.JSON(http.StatusOK, RowsResponse{Rows: table.Length()})
}

func (s *Server) apiRemoveRows(c echo.Context) error {
	at, err := strconv.Atoi(c.QueryParam("at"))
	if err != nil {
		return badRequest(fmt.Errorf("invalid at: %w", err))
	}
	count := 1
	if v := c.QueryParam("count"); v != "" {
		if count, err = strconv.Atoi(v); err != nil {
			return badRequest(fmt.Errorf("invalid count: %w", err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.dataModel.GetTable(c.Param("table"))
	if table == nil {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Table '%s' not found", c.Param("table")))
	}
	if err := table.RemoveRows(at, count); err != nil {
		return badRequest(err)
	}
	return c.JSON(http.StatusOK, RowsResponse{Rows: table.Length()})
}

func (s *Server) apiUpdateRow(c echo.Context) error {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		return badRequest(fmt.Errorf("invalid row: %w", err))
	}
	var values map[string]string
	if err := bindBody(c, &values); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.dataModel.GetTable(c.Param("table"))
	if table == nil {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Table '%s' not found", c.Param("table")))
	}
	if err := table.SetStrings(row, values); err != nil {
		return badRequest(err)
	}
	return c.JSON(http.StatusOK, RowsResponse{Rows: table.Length()})
}
