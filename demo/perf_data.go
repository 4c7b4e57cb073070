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
	"fmt"

	"github.com/google/taxinomia-cube/core/columns"
	"github.com/google/taxinomia-cube/core/tables"
)

// Cardinalities of the synthetic transactions table
const (
	PerfNumUsers      = 5_000
	PerfNumProducts   = 500
	PerfNumCategories = 20
)

var perfStatuses = []string{"pending", "completed", "cancelled", "processing"}

var perfCountries = []string{"AR", "BR", "CA", "DE", "FR", "IN", "JP", "US"}

// CreatePerfTransactionsTable creates a deterministic transactions table with n
// rows for exercising large cubes.
func CreatePerfTransactionsTable(n int) *tables.DataTable {
	fmt.Printf("Creating performance transactions table with %d rows...\n", n)

	t := tables.NewDataTable()

	txnIDCol := columns.NewInt64Column(columns.NewColumnDef("txn_id", "Transaction ID", "txn_id"))
	userCol := columns.NewStringColumn(columns.NewColumnDef("user", "User", "user"))
	productCol := columns.NewStringColumn(columns.NewColumnDef("product", "Product", "product"))
	categoryCol := columns.NewStringColumn(columns.NewColumnDef("category", "Category", "category"))
	countryCol := columns.NewStringColumn(columns.NewColumnDef("country", "Country", "country"))
	amountCol := columns.NewInt64Column(columns.NewColumnDef("amount", "Amount", ""))
	statusCol := columns.NewStringColumn(columns.NewColumnDef("status", "Status", ""))
	paidCol := columns.NewBoolColumn(columns.NewColumnDef("paid", "Paid", ""))

	for i := 0; i < n; i++ {
		txnIDCol.Append(int64(i))
		user := i % PerfNumUsers
		userCol.Append(fmt.Sprintf("user_%04d", user))
		productCol.Append(fmt.Sprintf("product_%03d", i%PerfNumProducts))

		// category 0 is the most common one
		category := i % PerfNumCategories
		if i%7 == 0 {
			category = 0
		}
		categoryCol.Append(fmt.Sprintf("category_%02d", category))
		countryCol.Append(perfCountries[user%len(perfCountries)])

		amountCol.Append(int64(10 + i%1000))
		status := perfStatuses[i%len(perfStatuses)]
		statusCol.Append(status)
		paidCol.Append(status == "completed")
	}

	for _, col := range []columns.IDataColumn{txnIDCol, userCol, productCol, categoryCol, countryCol, amountCol, statusCol, paidCol} {
		if err := t.AddColumn(col); err != nil {
			panic(err)
		}
	}

	fmt.Printf("transactions_perf Data: %d rows generated\n", t.Length())
	return t
}
