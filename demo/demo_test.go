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

package demo

import (
	"testing"

	"github.com/google/taxinomia-cube/core/columns"
)

func TestCreatePeopleTable(t *testing.T) {
	table := CreatePeopleTable()
	if table.Length() != 100 {
		t.Fatalf("expected 100 rows, got %d", table.Length())
	}

	lastNames := make(map[string]bool)
	forty := 0
	for r := 0; r < table.Length(); r++ {
		last, _ := table.GetString(r, "last_name")
		lastNames[last] = true
		if age, _ := table.GetString(r, "age"); age == "40" {
			forty++
		}
	}
	if len(lastNames) != 14 {
		t.Errorf("expected 14 distinct last names, got %d", len(lastNames))
	}
	if forty != 1 {
		t.Errorf("expected exactly one person aged 40, got %d", forty)
	}
	if kind := table.GetColumn("age").Kind(); kind != columns.KindInt64 {
		t.Errorf("expected int64 age, got %v", kind)
	}
	if name := table.GetColumn("last_name").ColumnDef().DisplayName(); name != "Last Name" {
		t.Errorf("expected display name from annotations, got %q", name)
	}
}

func TestCreatePerfTransactionsTable(t *testing.T) {
	table := CreatePerfTransactionsTable(1000)
	if table.Length() != 1000 {
		t.Fatalf("expected 1000 rows, got %d", table.Length())
	}
	if v, _ := table.GetString(7, "category"); v != "category_00" {
		t.Errorf("expected every 7th row in category_00, got %q", v)
	}
	if v, _ := table.GetString(1, "paid"); v != "True" {
		t.Errorf("expected completed rows to be paid, got %q", v)
	}
}
