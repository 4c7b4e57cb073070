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

import (
	"fmt"
	"slices"

	"github.com/google/taxinomia-cube/core/filters"
)

// AddGlobalFilter activates a filter. Records it rejects are removed from the
// cube, each with the usual notifications. Filters are compared by identity.
func (c *Cube) AddGlobalFilter(f filters.Filter) error {
	if f == nil {
		return fmt.Errorf("cube: nil global filter")
	}
	if c.resetting {
		return ErrReentrant
	}
	if slices.Contains(c.filters, f) {
		return fmt.Errorf("%w: %v", ErrDuplicateFilter, f)
	}
	acquire(f)
	c.filters = append(c.filters, f)
	for _, r := range c.index.records() {
		if !f.Accepts(r) {
			c.remove(r)
		}
	}
	c.notify(func(l Listener) { l.GlobalFilterChanged() })
	return nil
}

// RemoveGlobalFilter deactivates a filter and adds the records that pass the
// remaining filters again
func (c *Cube) RemoveGlobalFilter(f filters.Filter) error {
	if c.resetting {
		return ErrReentrant
	}
	i := slices.Index(c.filters, f)
	if i < 0 {
		return fmt.Errorf("%w: %v", ErrUnknownFilter, f)
	}
	c.filters = slices.Delete(c.filters, i, i+1)
	release(f)
	c.admit()
	c.notify(func(l Listener) { l.GlobalFilterChanged() })
	return nil
}

// ResetGlobalFilter deactivates all filters
func (c *Cube) ResetGlobalFilter() error {
	if c.resetting {
		return ErrReentrant
	}
	if len(c.filters) == 0 {
		return nil
	}
	for _, f := range c.filters {
		release(f)
	}
	c.filters = nil
	c.admit()
	c.notify(func(l Listener) { l.GlobalFilterChanged() })
	return nil
}

// GlobalFilters returns the active filters in activation order
func (c *Cube) GlobalFilters() []filters.Filter {
	return slices.Clone(c.filters)
}

// admit adds every untracked record that now has a cell
func (c *Cube) admit() {
	for r := 0; r < c.source.Length(); r++ {
		if _, tracked := c.index[r]; !tracked {
			c.add(r)
		}
	}
}
