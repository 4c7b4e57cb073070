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
	"github.com/google/taxinomia-cube/core/cube"
)

// Split names the columns split on each axis of a pivot view
type Split struct {
	Rows    []string
	Columns []string
}

// Config holds the server settings
type Config struct {
	Addr     string // Listen address
	Title    string // Landing page title
	Subtitle string

	// MaxBuckets bounds the buckets of each cube axis
	MaxBuckets int

	// Defaults are the splits shown when a table is opened without any
	Defaults map[string]Split

	// RequestLog enables the per-request access log
	RequestLog bool
}

// DefaultConfig returns a config listening on localhost:8097
func DefaultConfig() Config {
	return Config{
		Addr:       "localhost:8097",
		Title:      "Taxinomia Cube",
		Subtitle:   "Pick a table to pivot",
		MaxBuckets: cube.DefaultMaxBuckets,
		Defaults:   map[string]Split{},
		RequestLog: true,
	}
}
