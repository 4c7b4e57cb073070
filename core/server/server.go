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
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/google/taxinomia-cube/core/cube"
	"github.com/google/taxinomia-cube/core/models"
	"github.com/google/taxinomia-cube/core/query"
	"github.com/google/taxinomia-cube/core/rendering"
	"github.com/google/taxinomia-cube/core/views"
)

// Server serves pivot views of the tables of a data model, as HTML pages and as
// a JSON API. Each table has one workspace shared by all requests; requests are
// serialized as cubes are not safe for concurrent use.
type Server struct {
	config    Config
	dataModel *models.DataModel
	renderer  *rendering.PivotRenderer
	echo      *echo.Echo

	mu         sync.Mutex
	workspaces map[string]*workspace
}

// NewServer creates a new server with the given data model
func NewServer(dataModel *models.DataModel, config Config) (*Server, error) {
	renderer, err := rendering.NewPivotRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	if config.MaxBuckets <= 0 {
		config.MaxBuckets = cube.DefaultMaxBuckets
	}

	s := &Server{
		config:     config,
		dataModel:  dataModel,
		renderer:   renderer,
		workspaces: make(map[string]*workspace),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	if config.RequestLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	s.registerRoutes(e)
	s.echo = e
	return s, nil
}

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/", s.handleLanding)
	e.GET("/cube/:table", s.handleCube)
	e.GET("/cube/:table/select", s.handleSelect)
	e.GET("/cube/:table/clear", s.handleClear)
	e.POST("/cube/:table/filter", s.handleFilter)

	api := e.Group("/api")
	api.GET("/tables", s.apiTables)
	api.POST("/tables/:table/rows", s.apiInsertRows)
	api.DELETE("/tables/:table/rows", s.apiRemoveRows)
	api.PATCH("/tables/:table/rows/:row", s.apiUpdateRow)
	api.GET("/cube/:table", s.apiCube)
	api.GET("/cube/:table/ascii", s.apiAscii)
	api.GET("/cube/:table/check", s.apiCheck)
	api.GET("/cube/:table/records", s.apiRecords)
	api.GET("/cube/:table/selection", s.apiSelection)
	api.POST("/cube/:table/selection", s.apiSetSelection)
}

// ServeHTTP makes the server usable as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on the configured address and blocks until the server stops
func (s *Server) Start() error {
	log.Printf("Server starting on http://%s", s.config.Addr)
	return s.echo.Start(s.config.Addr)
}

// Shutdown stops the server and releases all workspaces
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.Close()
	return err
}

// Close releases all workspaces without stopping the listener
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, ws := range s.workspaces {
		ws.close()
		delete(s.workspaces, name)
	}
}

// workspace returns the workspace of a table, creating it on first use. The
// caller must hold s.mu.
func (s *Server) workspace(name string) (*workspace, error) {
	if ws, ok := s.workspaces[name]; ok {
		return ws, nil
	}
	table := s.dataModel.GetTable(name)
	if table == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Table '%s' not found", name))
	}
	ws, err := newWorkspace(name, table, s.config.MaxBuckets)
	if err != nil {
		return nil, err
	}
	s.workspaces[name] = ws
	return ws, nil
}

// viewQuery parses the view state of a page request. A table opened without any
// parameters gets its configured default splits.
func (s *Server) viewQuery(c echo.Context) *query.Query {
	q := query.NewQuery(c.Request().URL)
	q.Table = c.Param("table")
	if c.Request().URL.RawQuery == "" {
		if d, ok := s.config.Defaults[q.Table]; ok {
			q.Rows = append([]string{}, d.Rows...)
			q.Columns = append([]string{}, d.Columns...)
		}
	}
	return q
}

// actionQuery parses the view state an action URL was built from
func actionQuery(c echo.Context) *query.Query {
	q := query.ViewQuery(c.Request().URL)
	q.Table = c.Param("table")
	return q
}

func (s *Server) buildView(ws *workspace, q *query.Query) views.PivotViewModel {
	problems := ws.apply(q)
	title := cases.Title(language.English).String(ws.name)
	vm := views.BuildPivotViewModel(ws.cube, ws.tracker, ws.table, q, title)
	vm.Errors = problems
	return vm
}

func (s *Server) handleLanding(c echo.Context) error {
	s.mu.Lock()
	vm := views.BuildLandingViewModel(s.dataModel, s.config.Title, s.config.Subtitle)
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := s.renderer.RenderLanding(&buf, vm); err != nil {
		log.Printf("Landing page rendering error: %v", err)
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) handleCube(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.workspace(c.Param("table"))
	if err != nil {
		return err
	}

	vm := s.buildView(ws, s.viewQuery(c))
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, vm); err != nil {
		log.Printf("Template rendering error: %v", err)
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// handleSelect toggles the selection of a cell, section, header or the whole
// cube, then returns to the view
func (s *Server) handleSelect(c echo.Context) error {
	t, err := parseTarget(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.workspace(c.Param("table"))
	if err != nil {
		return err
	}
	q := actionQuery(c)
	// the indexes of the link refer to the layout of its view
	ws.apply(q)
	ws.toggle(t)
	return c.Redirect(http.StatusSeeOther, q.ToURL())
}

func (s *Server) handleClear(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := s.workspace(c.Param("table"))
	if err != nil {
		return err
	}
	ws.tracker.Clear()
	return c.Redirect(http.StatusSeeOther, actionQuery(c).ToURL())
}

// handleFilter adds the posted filter expression to the view. Invalid
// expressions are reported when the view is rendered.
func (s *Server) handleFilter(c echo.Context) error {
	q := actionQuery(c)
	return c.Redirect(http.StatusSeeOther, q.WithFilter(c.FormValue("expression")).String())
}

func parseTarget(c echo.Context) (target, error) {
	t := target{row: -1, col: -1, all: c.QueryParam("all") == "1"}
	var err error
	intParam := func(name string, into *int) {
		if v := c.QueryParam(name); v != "" && err == nil {
			if *into, err = strconv.Atoi(v); err != nil || *into < 0 {
				err = echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, v))
			}
		}
	}
	intParam("row", &t.row)
	intParam("col", &t.col)
	if axis := c.QueryParam("axis"); axis != "" && err == nil {
		a, ok := views.ParseAxis(axis)
		if !ok {
			return t, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid axis %q", axis))
		}
		t.axis, t.isHeader = a, true
		intParam("level", &t.level)
		intParam("hs", &t.hs)
	}
	return t, err
}
