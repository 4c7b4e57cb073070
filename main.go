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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/google/taxinomia-cube/core/categories"
	"github.com/google/taxinomia-cube/core/csvimport"
	"github.com/google/taxinomia-cube/core/cube"
	"github.com/google/taxinomia-cube/core/models"
	"github.com/google/taxinomia-cube/core/protoloader"
	"github.com/google/taxinomia-cube/core/server"
	"github.com/google/taxinomia-cube/core/tables"
	"github.com/google/taxinomia-cube/core/views"
	"github.com/google/taxinomia-cube/demo"
)

var (
	addr        = flag.String("addr", server.DefaultConfig().Addr, "listen address")
	csvPath     = flag.String("csv", "", "CSV file to serve as a table named after the file")
	annotations = flag.String("textproto", "", "textproto TableSources with column types and display names for -csv")
	descriptors = flag.String("descriptors", "", "binary FileDescriptorSet describing -proto")
	protoPath   = flag.String("proto", "", "textproto or binary (.pb) message to serve as a table, needs -descriptors and -message")
	message     = flag.String("message", "", "full name of the root message of -proto")
	rows        = flag.String("rows", "last_name", "comma separated columns split on the rows of every table having them")
	cols        = flag.String("columns", "sex", "comma separated columns split on the columns of every table having them")
	maxBuckets  = flag.Int("max-buckets", cube.DefaultMaxBuckets, "maximum number of buckets per cube axis")
	perfRows    = flag.Int("perf", 0, "number of rows of the generated transactions_perf table (0 = none)")
	quiet       = flag.Bool("quiet", false, "disable the request log")
)

func main() {
	flag.Parse()
	fmt.Println("Starting Taxinomia Cube...")

	dataModel := models.NewDataModel()
	mustAdd(dataModel, "people", demo.CreatePeopleTable())

	if *perfRows > 0 {
		fmt.Println("\n=== Creating Performance Test Table ===")
		start := time.Now()
		mustAdd(dataModel, "transactions_perf", demo.CreatePerfTransactionsTable(*perfRows))
		fmt.Printf("Created %d transactions in %v\n", *perfRows, time.Since(start))
	}
	if *csvPath != "" {
		name, table, err := loadCSV(*csvPath, *annotations)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", *csvPath, err)
		}
		mustAdd(dataModel, name, table)
	}
	if *protoPath != "" {
		name, table, err := loadProto(*protoPath, *descriptors, *message)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", *protoPath, err)
		}
		mustAdd(dataModel, name, table)
	}
	if err := models.AddSystemTables(dataModel); err != nil {
		log.Fatalf("Failed to add system tables: %v", err)
	}

	printEntityTypeUsageReport(dataModel)

	config := server.DefaultConfig()
	config.Addr = *addr
	config.MaxBuckets = *maxBuckets
	config.RequestLog = !*quiet
	split := server.Split{Rows: splitFlag(*rows), Columns: splitFlag(*cols)}
	for _, name := range dataModel.TableNames() {
		if table := dataModel.GetTable(name); hasColumns(table, split.Rows) && hasColumns(table, split.Columns) {
			config.Defaults[name] = split
		}
	}
	if people := dataModel.GetTable("people"); people != nil {
		printPivot(people, split)
	}

	s, err := server.NewServer(dataModel, config)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func mustAdd(dm *models.DataModel, name string, table *tables.DataTable) {
	if err := dm.AddTable(name, table); err != nil {
		log.Fatalf("Failed to add table: %v", err)
	}
}

func splitFlag(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func hasColumns(table *tables.DataTable, names []string) bool {
	return !slices.ContainsFunc(names, func(name string) bool { return table.GetColumn(name) == nil })
}

// loadCSV imports a CSV file. The table is named after the file; annotations for
// that name, if any, provide column types and display names.
func loadCSV(path, annotationsPath string) (string, *tables.DataTable, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	options := csvimport.DefaultOptions()
	if annotationsPath != "" {
		data, err := os.ReadFile(annotationsPath)
		if err != nil {
			return "", nil, err
		}
		byTable, err := csvimport.OptionsMapFromTextproto(string(data))
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", annotationsPath, err)
		}
		if o, ok := byTable[name]; ok {
			options = o
		}
	}
	table, err := csvimport.ImportFromFile(path, options)
	if err != nil {
		return "", nil, err
	}
	fmt.Printf("%s: %d rows imported from %s\n", name, table.Length(), path)
	return name, table, nil
}

// loadProto denormalizes a proto message into a table named after the message
func loadProto(path, descriptorsPath, messageName string) (string, *tables.DataTable, error) {
	if descriptorsPath == "" || messageName == "" {
		return "", nil, errors.New("-proto needs -descriptors and -message")
	}
	registry, err := protoloader.LoadDescriptorSet(descriptorsPath)
	if err != nil {
		return "", nil, err
	}
	loader := protoloader.NewLoader(registry)
	var table *tables.DataTable
	if filepath.Ext(path) == ".pb" {
		table, err = loader.LoadBinaryAsTable(path, messageName)
	} else {
		table, err = loader.LoadTextprotoAsTable(path, messageName)
	}
	if err != nil {
		return "", nil, err
	}
	name := strings.ToLower(messageName[strings.LastIndex(messageName, ".")+1:])
	fmt.Printf("%s: %d rows loaded from %s\n", name, table.Length(), path)
	return name, table, nil
}

// printPivot prints the default pivot of a table at startup
func printPivot(table *tables.DataTable, split server.Split) {
	provider := func(names []string) categories.Provider {
		if len(names) == 0 {
			return nil
		}
		p, err := categories.NewColumnCategorizer(table, names[0])
		if err != nil {
			return nil
		}
		return p
	}
	c, err := cube.New(table, provider(split.Rows), provider(split.Columns))
	if err != nil {
		log.Printf("Cannot build startup pivot: %v", err)
		return
	}
	defer c.Close()
	fmt.Println()
	fmt.Print(views.ToAscii(c))
	fmt.Println()
}

// printEntityTypeUsageReport prints which tables and columns use each entity type
func printEntityTypeUsageReport(dm *models.DataModel) {
	fmt.Println("\n=== Entity Type Usage Report ===")
	usages := dm.GetAllEntityTypes()
	for _, usage := range usages {
		fmt.Printf("Entity Type: '%s'\n", usage.EntityType)
		fmt.Printf("  Used in %d location(s):\n", len(usage.Usage))
		for _, ref := range usage.Usage {
			fmt.Printf("    - %s.%s\n", ref.TableName, ref.ColumnName)
		}
	}
	fmt.Printf("Total unique entity types: %d\n", len(usages))
	fmt.Println("================================")
}
