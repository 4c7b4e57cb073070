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

// Package demo provides the datasets the server starts with.
package demo

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/taxinomia-cube/core/csvimport"
	"github.com/google/taxinomia-cube/core/tables"
)

//go:embed data/people.csv
var peopleCSV string

//go:embed data/annotations.textproto
var annotations string

var tableOptions map[string]csvimport.ImportOptions

func init() {
	var err error
	tableOptions, err = csvimport.OptionsMapFromTextproto(annotations)
	if err != nil {
		panic(fmt.Sprintf("failed to parse annotations: %v", err))
	}
}

// importTable imports an embedded CSV table using its annotations
func importTable(name, csv string) *tables.DataTable {
	options, ok := tableOptions[name]
	if !ok {
		panic(fmt.Sprintf("no annotations found for table %s", name))
	}

	table, err := csvimport.ImportFromReader(strings.NewReader(csv), options)
	if err != nil {
		panic(fmt.Sprintf("failed to import %s CSV: %v", name, err))
	}

	fmt.Printf("%s Data: %d rows imported from CSV\n", name, table.Length())
	return table
}

// CreatePeopleTable returns the 100 people sample: first_name, last_name (14
// distinct values), sex, age and city. Exactly one person is 40 years old.
// Every call returns a new table.
func CreatePeopleTable() *tables.DataTable {
	return importTable("people", peopleCSV)
}
