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

// Package categories defines how records are mapped to categories. A Provider
// assigns each record of a table a small integer category; cubes stack providers
// on their axes to build buckets.
package categories

import (
	"fmt"
	"slices"
)

// Role selects which flavour of a category label is wanted
type Role int

const (
	DisplayRole Role = iota
	ToolTipRole
)

// Provider maps a record index to a category in [0, CategoryCount()), or to -1
// when the record belongs to no category. Categories are ordered; when the set
// changes the provider reports the index of the added or removed category and all
// higher categories shift by one.
//
// Providers may be shared between cubes. Holders call Acquire when they start
// using a provider and Release when they are done.
type Provider interface {
	Name() string
	CategoryCount() int
	CategoryLabel(i int, role Role) string
	CategoryOf(record int) int

	Subscribe(l Listener)
	Unsubscribe(l Listener)

	Acquire()
	Release()
}

// Listener is notified after a provider's category set changes
type Listener interface {
	CategoryAdded(p Provider, at int)
	CategoryRemoved(p Provider, at int)
}

// Notifier keeps the listeners of a provider
type Notifier struct {
	listeners []Listener
}

func (n *Notifier) Subscribe(l Listener) {
	if slices.Contains(n.listeners, l) {
		return
	}
	n.listeners = append(n.listeners, l)
}

func (n *Notifier) Unsubscribe(l Listener) {
	n.listeners = slices.DeleteFunc(n.listeners, func(x Listener) bool { return x == l })
}

// Listeners returns the number of subscribed listeners
func (n *Notifier) Listeners() int {
	return len(n.listeners)
}

func (n *Notifier) NotifyAdded(p Provider, at int) {
	for _, l := range slices.Clone(n.listeners) {
		l.CategoryAdded(p, at)
	}
}

func (n *Notifier) NotifyRemoved(p Provider, at int) {
	for _, l := range slices.Clone(n.listeners) {
		l.CategoryRemoved(p, at)
	}
}

// Shared counts the holders of a provider. attach is called when the first holder
// acquires it, detach when the last one releases it.
type Shared struct {
	refs     int
	attached bool
	attach   func()
	detach   func()
}

// NewShared returns a Shared that starts attached without holders
func NewShared(attach, detach func()) Shared {
	return Shared{attached: true, attach: attach, detach: detach}
}

func (s *Shared) Acquire() {
	if !s.attached {
		if s.attach != nil {
			s.attach()
		}
		s.attached = true
	}
	s.refs++
}

func (s *Shared) Release() {
	if s.refs <= 0 {
		panic("categories: Release without Acquire")
	}
	s.refs--
	if s.refs == 0 {
		if s.detach != nil {
			s.detach()
		}
		s.attached = false
	}
}

// Holders returns the current number of holders
func (s *Shared) Holders() int {
	return s.refs
}

// Attached reports whether the provider is tracking its data source
func (s *Shared) Attached() bool {
	return s.attached
}

// Labels returns the display labels of all categories of p
func Labels(p Provider) []string {
	labels := make([]string, p.CategoryCount())
	for i := range labels {
		labels[i] = p.CategoryLabel(i, DisplayRole)
	}
	return labels
}

// Describe returns a short description of a provider for logs
func Describe(p Provider) string {
	if p == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s(%d)", p.Name(), p.CategoryCount())
}
