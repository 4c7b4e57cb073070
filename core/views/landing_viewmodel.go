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

package views

import (
	"net/url"

	"github.com/google/safehtml"
	"github.com/google/taxinomia-cube/core/models"
)

// LandingViewModel contains data for the landing page
type LandingViewModel struct {
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle,omitempty"`
	Tables   []TableInfo `json:"tables"`
}

// TableInfo describes a table on the landing page
type TableInfo struct {
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Columns []string     `json:"columns"`
	URL     safehtml.URL `json:"-"`
}

// BuildLandingViewModel lists the tables of the data model, sorted by name
func BuildLandingViewModel(dm *models.DataModel, title, subtitle string) LandingViewModel {
	vm := LandingViewModel{Title: title, Subtitle: subtitle}
	for _, name := range dm.TableNames() {
		table := dm.GetTable(name)
		u := url.URL{Path: "/cube/" + name}
		vm.Tables = append(vm.Tables, TableInfo{
			Name:    name,
			Rows:    table.Length(),
			Columns: table.GetColumnNames(),
			URL:     safehtml.URLSanitized(u.String()),
		})
	}
	return vm
}
