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

package cube

// Listener receives the change notifications of a cube. Section numbers in
// "about to" notifications refer to the layout before the change, the others to
// the layout after it. During AboutToReset all section numbers become invalid.
type Listener interface {
	AboutToReset()
	Reset()
	SectionsAboutToBeInserted(axis Axis, first, count int)
	SectionsInserted(axis Axis, first, count int)
	SectionsAboutToBeRemoved(axis Axis, first, count int)
	SectionsRemoved(axis Axis, first, count int)
	HeadersChanged(axis Axis, first, last int)
	DataChanged(row, col int)
	GlobalFilterChanged()
}

// NopListener implements Listener with no-ops, for embedding
type NopListener struct{}

func (NopListener) AboutToReset()                            {}
func (NopListener) Reset()                                   {}
func (NopListener) SectionsAboutToBeInserted(Axis, int, int) {}
func (NopListener) SectionsInserted(Axis, int, int)          {}
func (NopListener) SectionsAboutToBeRemoved(Axis, int, int)  {}
func (NopListener) SectionsRemoved(Axis, int, int)           {}
func (NopListener) HeadersChanged(Axis, int, int)            {}
func (NopListener) DataChanged(int, int)                     {}
func (NopListener) GlobalFilterChanged()                     {}

// ElementTracker follows individual records through the cube, for instance to
// keep selection counts per bucket. Buckets are passed rather than sections, as
// bucket numbers stay valid while sections are inserted and removed.
//
// ElementAdded and ElementRemoved are called after the cube has been updated and
// before any "inserted" or "removed" notification is sent to listeners.
// RecordsInserted and RecordsRemoved report renumbering of the source: records at
// or after first moved by count. Rebuilt is called after a structural reset,
// before listeners see Reset.
type ElementTracker interface {
	ElementAdded(record, row, col int)
	ElementRemoved(record, row, col int)
	RecordsInserted(first, count int)
	RecordsRemoved(first, count int)
	Rebuilt()
}
