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

// accepts reports whether a record passes all global filters
func (c *Cube) accepts(record int) bool {
	for _, f := range c.filters {
		if !f.Accepts(record) {
			return false
		}
	}
	return true
}

// placeOf computes the cell a record belongs to from the providers and filters
func (c *Cube) placeOf(record int) (cellKey, bool) {
	if !c.accepts(record) {
		return cellKey{}, false
	}
	k := cellKey{row: c.rows.bucketOf(record), col: c.cols.bucketOf(record)}
	return k, k.row >= 0 && k.col >= 0
}

// insertQuiet adds a record without notifying anyone
func (c *Cube) insertQuiet(record int) {
	if _, tracked := c.index[record]; tracked {
		return
	}
	k, ok := c.placeOf(record)
	if !ok {
		return
	}
	c.rows.add(k.row)
	c.cols.add(k.col)
	c.cells.insert(k, record)
	c.index[record] = k
}

// add adds a record that is not tracked yet. Records that fail a global filter or
// that a provider places in no category are skipped.
func (c *Cube) add(record int) {
	if _, tracked := c.index[record]; tracked {
		panic("cube: adding a tracked record")
	}
	k, ok := c.placeOf(record)
	if !ok {
		return
	}
	newRow := c.rows.elements[k.row] == 0
	newCol := c.cols.elements[k.col] == 0
	rowSection := c.rows.sectionOf(k.row)
	colSection := c.cols.sectionOf(k.col)

	if newRow {
		c.notify(func(l Listener) { l.SectionsAboutToBeInserted(Vertical, rowSection, 1) })
	}
	if newCol {
		c.notify(func(l Listener) { l.SectionsAboutToBeInserted(Horizontal, colSection, 1) })
	}

	c.rows.add(k.row)
	c.cols.add(k.col)
	c.cells.insert(k, record)
	c.index[record] = k
	c.track(func(t ElementTracker) { t.ElementAdded(record, k.row, k.col) })

	if newCol {
		c.notify(func(l Listener) { l.SectionsInserted(Horizontal, colSection, 1) })
		c.headersChanged(Horizontal)
	}
	if newRow {
		c.notify(func(l Listener) { l.SectionsInserted(Vertical, rowSection, 1) })
		c.headersChanged(Vertical)
	}
	if !newRow && !newCol {
		c.notify(func(l Listener) { l.DataChanged(rowSection, colSection) })
	}
}

// remove drops a tracked record. Untracked records are ignored.
func (c *Cube) remove(record int) {
	k, tracked := c.index[record]
	if !tracked {
		return
	}
	lostRow := c.rows.elements[k.row] == 1
	lostCol := c.cols.elements[k.col] == 1
	rowSection := c.rows.sectionOf(k.row)
	colSection := c.cols.sectionOf(k.col)

	if lostRow {
		c.notify(func(l Listener) { l.SectionsAboutToBeRemoved(Vertical, rowSection, 1) })
	}
	if lostCol {
		c.notify(func(l Listener) { l.SectionsAboutToBeRemoved(Horizontal, colSection, 1) })
	}

	c.rows.remove(k.row)
	c.cols.remove(k.col)
	c.cells.delete(k, record)
	delete(c.index, record)
	c.track(func(t ElementTracker) { t.ElementRemoved(record, k.row, k.col) })

	if lostCol {
		c.notify(func(l Listener) { l.SectionsRemoved(Horizontal, colSection, 1) })
		c.headersChanged(Horizontal)
	}
	if lostRow {
		c.notify(func(l Listener) { l.SectionsRemoved(Vertical, rowSection, 1) })
		c.headersChanged(Vertical)
	}
	if !lostRow && !lostCol {
		c.notify(func(l Listener) { l.DataChanged(rowSection, colSection) })
	}
}

// update re-places a record whose values changed. A record that stays in its cell
// only produces DataChanged; otherwise it is removed and added again if it still
// has a cell.
func (c *Cube) update(record int) {
	old, tracked := c.index[record]
	k, ok := c.placeOf(record)
	if tracked && ok && k == old {
		rowSection := c.rows.sectionOf(k.row)
		colSection := c.cols.sectionOf(k.col)
		c.notify(func(l Listener) { l.DataChanged(rowSection, colSection) })
		return
	}
	if tracked {
		c.remove(record)
	}
	if ok {
		c.add(record)
	}
}

// headersChanged tells listeners that the header spans of an axis changed. With a
// single level every header is a leaf, so inserted and removed notifications
// already say everything.
func (c *Cube) headersChanged(a Axis) {
	ax := c.axis(a)
	if ax.depth() < 2 || ax.sectionCount() == 0 {
		return
	}
	last := ax.sectionCount() - 1
	c.notify(func(l Listener) { l.HeadersChanged(a, 0, last) })
}

// renumber shifts all tracked records at or after from by delta
func (c *Cube) renumber(from, delta int) {
	c.cells.renumber(from, delta)
	c.index = c.index.renumbered(from, delta)
}

// sourceObserver forwards the notifications of the source table
type sourceObserver struct {
	cube *Cube
}

func (o *sourceObserver) RowsInserted(first, count int) {
	c := o.cube
	c.renumber(first, count)
	c.track(func(t ElementTracker) { t.RecordsInserted(first, count) })
	for r := first; r < first+count; r++ {
		c.add(r)
	}
}

func (o *sourceObserver) RowsAboutToBeRemoved(first, count int) {
	for r := first; r < first+count; r++ {
		o.cube.remove(r)
	}
}

func (o *sourceObserver) RowsRemoved(first, count int) {
	c := o.cube
	c.renumber(first+count, -count)
	c.track(func(t ElementTracker) { t.RecordsRemoved(first, count) })
}

func (o *sourceObserver) DataChanged(first, last int) {
	for r := first; r <= last; r++ {
		o.cube.update(r)
	}
}
