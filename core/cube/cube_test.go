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
	"slices"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/google/taxinomia-cube/core/categories"
	"github.com/google/taxinomia-cube/core/columns"
	"github.com/google/taxinomia-cube/core/filters"
	"github.com/google/taxinomia-cube/core/tables"
	"github.com/google/taxinomia-cube/demo"
)

func categorizer(t *testing.T, dt *tables.DataTable, column string, opts ...categories.Option) *categories.ColumnCategorizer {
	t.Helper()
	c, err := categories.NewColumnCategorizer(dt, column, opts...)
	require.NoError(t, err)
	return c
}

type peopleCube struct {
	*Cube
	table *tables.DataTable
	last  *categories.ColumnCategorizer
	first *categories.ColumnCategorizer
}

// newPeopleCube builds the 100 people cube with last names on the rows and first
// names on the columns
func newPeopleCube(t *testing.T, opts ...Option) peopleCube {
	t.Helper()
	dt := demo.CreatePeopleTable()
	last := categorizer(t, dt, "last_name")
	first := categorizer(t, dt, "first_name")
	c, err := New(dt, last, first, opts...)
	require.NoError(t, err)
	requireConsistent(t, c)
	return peopleCube{Cube: c, table: dt, last: last, first: first}
}

func requireConsistent(t *testing.T, c *Cube) {
	t.Helper()
	require.NoError(t, c.Check())
}

func value(t *testing.T, dt *tables.DataTable, row int, column string) string {
	t.Helper()
	v, err := dt.GetString(row, column)
	require.NoError(t, err)
	return v
}

// snapshot maps the labels of every non-empty cell to its sorted members
func snapshot(c *Cube) map[string][]int {
	cells := make(map[string][]int)
	for r := 0; r < c.RowCount(); r++ {
		for col := 0; col < c.ColumnCount(); col++ {
			members := c.Elements(r, col)
			if len(members) == 0 {
				continue
			}
			slices.Sort(members)
			key := strings.Join(c.SectionLabels(Vertical, r), "/") + "|" + strings.Join(c.SectionLabels(Horizontal, col), "/")
			cells[key] = members
		}
	}
	return cells
}

func headerLabels(c *Cube, a Axis, level int) []string {
	var labels []string
	for _, h := range c.Headers(a, level) {
		labels = append(labels, h.Label)
	}
	return labels
}

// requireLabelsMatch checks that every tracked record sits in the sections whose
// labels are its own column values, or their prefixes for prefix categorizers
func requireLabelsMatch(t *testing.T, c *Cube, dt *tables.DataTable) {
	t.Helper()
	for _, r := range c.Records() {
		for _, a := range []Axis{Vertical, Horizontal} {
			section := c.SectionForElementInternal(r, a)
			require.GreaterOrEqual(t, section, 0, "record %d on %s axis", r, a)
			labels := c.SectionLabels(a, section)
			for level, p := range c.Providers(a) {
				cc, ok := p.(*categories.ColumnCategorizer)
				if !ok {
					continue
				}
				want := value(t, dt, r, cc.Column())
				if n := cc.PrefixLength(); n > 0 && utf8.RuneCountInString(want) > n {
					want = string([]rune(want)[:n])
				}
				require.Equal(t, want, labels[level], "record %d level %d on %s axis", r, level, a)
			}
		}
	}
}

func TestPeopleCube(t *testing.T) {
	pc := newPeopleCube(t)

	require.Equal(t, 14, pc.RowCount())
	require.Equal(t, len(pc.first.Values()), pc.ColumnCount())
	require.Equal(t, 1, pc.HeaderCount(Vertical))
	require.Equal(t, 100, pc.TotalElements())

	total := 0
	for r := 0; r < pc.RowCount(); r++ {
		for col := 0; col < pc.ColumnCount(); col++ {
			total += pc.ElementCount(r, col)
			for _, record := range pc.Elements(r, col) {
				require.Equal(t, pc.SectionLabels(Vertical, r)[0], value(t, pc.table, record, "last_name"))
				require.Equal(t, pc.SectionLabels(Horizontal, col)[0], value(t, pc.table, record, "first_name"))
			}
		}
	}
	require.Equal(t, 100, total)

	for r := 0; r < pc.RowCount(); r++ {
		require.Equal(t, len(pc.SectionElements(Vertical, r)), pc.SectionElementCount(Vertical, r))
	}
}

func TestSplitColumnsBySex(t *testing.T) {
	pc := newPeopleCube(t)
	before := snapshot(pc.Cube)
	beforeHeaders := headerLabels(pc.Cube, Horizontal, 0)
	columnCount := pc.ColumnCount()
	sex := categorizer(t, pc.table, "sex")

	require.NoError(t, pc.Split(Horizontal, 1, sex))
	requireConsistent(t, pc.Cube)
	require.Equal(t, 2, pc.HeaderCount(Horizontal))
	require.Equal(t, len(pc.first.Values())*2, pc.NumberOfBuckets(Horizontal))
	require.Equal(t, 100, pc.TotalElements())
	requireLabelsMatch(t, pc.Cube, pc.table)
	split := snapshot(pc.Cube)

	require.NoError(t, pc.Collapse(Horizontal, 1))
	requireConsistent(t, pc.Cube)
	require.Equal(t, columnCount, pc.ColumnCount())
	require.Equal(t, beforeHeaders, headerLabels(pc.Cube, Horizontal, 0))
	require.Equal(t, before, snapshot(pc.Cube))

	require.NoError(t, pc.Split(Horizontal, 1, sex))
	requireConsistent(t, pc.Cube)
	require.Equal(t, split, snapshot(pc.Cube))
}

func TestSplitRowsAtTop(t *testing.T) {
	pc := newPeopleCube(t)
	before := snapshot(pc.Cube)
	sex := categorizer(t, pc.table, "sex")

	require.NoError(t, pc.Split(Vertical, 0, sex))
	requireConsistent(t, pc.Cube)

	combos := make(map[string]bool)
	for r := 0; r < pc.table.Length(); r++ {
		combos[value(t, pc.table, r, "sex")+"/"+value(t, pc.table, r, "last_name")] = true
	}
	require.Equal(t, len(combos), pc.RowCount())
	require.Equal(t, []string{"f", "m"}, headerLabels(pc.Cube, Vertical, 0))
	requireLabelsMatch(t, pc.Cube, pc.table)

	require.NoError(t, pc.Collapse(Vertical, 0))
	requireConsistent(t, pc.Cube)
	require.Equal(t, before, snapshot(pc.Cube))
	require.Equal(t, []categories.Provider{pc.last}, pc.Providers(Vertical))
}

func TestAgeFilter(t *testing.T) {
	pc := newPeopleCube(t)
	before := snapshot(pc.Cube)

	f, err := filters.NewExpressionFilter(pc.table, "age == 40")
	require.NoError(t, err)
	require.NoError(t, pc.AddGlobalFilter(f))
	requireConsistent(t, pc.Cube)

	require.Equal(t, 1, pc.RowCount())
	require.Equal(t, 1, pc.ColumnCount())
	require.Equal(t, 1, pc.TotalElements())
	members := pc.Elements(0, 0)
	require.Len(t, members, 1)
	require.Equal(t, "Susan", value(t, pc.table, members[0], "first_name"))
	require.Equal(t, "Martinez", value(t, pc.table, members[0], "last_name"))
	require.Equal(t, []string{"Martinez"}, pc.SectionLabels(Vertical, 0))

	require.NoError(t, pc.RemoveGlobalFilter(f))
	requireConsistent(t, pc.Cube)
	require.Equal(t, before, snapshot(pc.Cube))
	require.Empty(t, pc.GlobalFilters())
}

func TestRemoveRows(t *testing.T) {
	pc := newPeopleCube(t)

	names := make([][2]string, pc.table.Length())
	for r := range names {
		names[r] = [2]string{value(t, pc.table, r, "last_name"), value(t, pc.table, r, "first_name")}
	}

	require.NoError(t, pc.table.RemoveRows(20, 10))
	requireConsistent(t, pc.Cube)
	require.Equal(t, 90, pc.TotalElements())

	records := make([]int, 90)
	for i := range records {
		records[i] = i
	}
	require.Equal(t, records, pc.Records())

	for r := 0; r < 90; r++ {
		old := r
		if r >= 20 {
			old = r + 10
		}
		rowLabels := pc.SectionLabels(Vertical, pc.SectionForElementInternal(r, Vertical))
		colLabels := pc.SectionLabels(Horizontal, pc.SectionForElementInternal(r, Horizontal))
		require.Equal(t, names[old][0], rowLabels[0], "record %d", r)
		require.Equal(t, names[old][1], colLabels[0], "record %d", r)
		require.Equal(t, pc.SectionForElement(r, Vertical), pc.SectionForElementInternal(r, Vertical))
	}
}

// The city provider sits at level 1 of the rows with sex below it. Moving every
// Denver record to Austin makes the table drop the Denver category.
func TestCategoryRemovalBetweenLevels(t *testing.T) {
	pc := newPeopleCube(t)
	city := categorizer(t, pc.table, "city")
	sex := categorizer(t, pc.table, "sex")
	require.NoError(t, pc.Split(Vertical, 1, city))
	require.NoError(t, pc.Split(Vertical, 2, sex))
	requireConsistent(t, pc.Cube)
	require.Contains(t, city.Values(), "Denver")

	var denver []int
	for r := 0; r < pc.table.Length(); r++ {
		if value(t, pc.table, r, "city") == "Denver" {
			denver = append(denver, r)
		}
	}
	require.NotEmpty(t, denver)
	for _, r := range denver {
		require.NoError(t, pc.table.SetString(r, "city", "Austin"))
		requireConsistent(t, pc.Cube)
	}

	require.NotContains(t, city.Values(), "Denver")
	require.Equal(t, 14*4*2, pc.NumberOfBuckets(Vertical))
	require.Equal(t, 100, pc.TotalElements())
	requireLabelsMatch(t, pc.Cube, pc.table)
	for _, h := range pc.Headers(Vertical, 1) {
		require.NotEqual(t, "Denver", h.Label)
	}
}

func TestCategoryAddedByInsert(t *testing.T) {
	pc := newPeopleCube(t)
	city := categorizer(t, pc.table, "city")
	require.NoError(t, pc.Split(Vertical, 1, city))

	require.NoError(t, pc.table.InsertRows(0, [][]string{
		{"Ada", "Lovelace", "f", "36", "Aachen"},
		{"Alan", "Turing", "m", "41", "Zurich"},
	}))
	requireConsistent(t, pc.Cube)
	require.Equal(t, 102, pc.TotalElements())
	require.Equal(t, 16*7, pc.NumberOfBuckets(Vertical))
	require.Equal(t, "Aachen", city.Values()[0])
	require.Equal(t, []string{"Lovelace", "Aachen"}, pc.SectionLabels(Vertical, pc.SectionForElementInternal(0, Vertical)))
	requireLabelsMatch(t, pc.Cube, pc.table)
}

func TestHeaders(t *testing.T) {
	pc := newPeopleCube(t)
	sex := categorizer(t, pc.table, "sex")
	require.NoError(t, pc.Split(Vertical, 1, sex))

	headers := pc.Headers(Vertical, 0)
	require.Len(t, headers, 14)
	section := 0
	for hs, h := range headers {
		require.Equal(t, section, h.Section)
		first, count := pc.ToSection(Vertical, 0, hs)
		require.Equal(t, h.Section, first)
		require.Equal(t, h.Span, count)
		for s := first; s < first+count; s++ {
			require.Equal(t, hs, pc.ToHeaderSection(Vertical, 0, s))
			require.Equal(t, h.Label, pc.SectionLabels(Vertical, s)[0])
		}
		require.Equal(t, h.Elements, pc.HeaderElementCount(Vertical, 0, hs))
		require.Len(t, pc.HeaderElements(Vertical, 0, hs), h.Elements)
		require.Contains(t, h.ToolTip, h.Label)

		b0, end, ok := pc.BucketRange(Vertical, 0, hs)
		require.True(t, ok)
		require.Equal(t, 2, end-b0)
		section += h.Span
	}
	require.Equal(t, pc.RowCount(), section)

	leaves := pc.Headers(Vertical, 1)
	require.Len(t, leaves, pc.RowCount())
	for s, h := range leaves {
		require.Equal(t, 1, h.Span)
		require.Equal(t, s, h.Section)
		require.Equal(t, s, pc.SectionForBucket(Vertical, pc.BucketForSection(Vertical, s)))
	}

	require.Nil(t, pc.Headers(Vertical, 2))
	first, count := pc.ToSection(Vertical, 0, 99)
	require.Equal(t, -1, first)
	require.Zero(t, count)
	require.Equal(t, -1, pc.ToHeaderSection(Vertical, 0, pc.RowCount()))
	require.Equal(t, -1, pc.BucketForSection(Vertical, -1))
}

func TestNoProviders(t *testing.T) {
	dt := demo.CreatePeopleTable()
	c, err := New(dt, nil, nil)
	require.NoError(t, err)
	requireConsistent(t, c)

	require.Equal(t, 1, c.NumberOfBuckets(Vertical))
	require.Equal(t, 1, c.NumberOfBuckets(Horizontal))
	require.Equal(t, 1, c.RowCount())
	require.Equal(t, 1, c.ColumnCount())
	require.Equal(t, 100, c.ElementCount(0, 0))
	require.Zero(t, c.HeaderCount(Vertical))
	require.Empty(t, c.SectionLabels(Vertical, 0))

	require.NoError(t, dt.RemoveRows(0, dt.Length()))
	requireConsistent(t, c)
	require.Zero(t, c.RowCount())
	require.Zero(t, c.ColumnCount())
}

func TestFilterExcludingEverything(t *testing.T) {
	pc := newPeopleCube(t)
	none := filters.NewPredicate("none", func(int) bool { return false })

	require.NoError(t, pc.AddGlobalFilter(none))
	requireConsistent(t, pc.Cube)
	require.Zero(t, pc.RowCount())
	require.Zero(t, pc.ColumnCount())
	require.Zero(t, pc.TotalElements())
	require.Nil(t, pc.Elements(0, 0))

	require.NoError(t, pc.table.AppendRow("Zed", "Zulu", "m", "33", "Austin"))
	requireConsistent(t, pc.Cube)
	require.Zero(t, pc.TotalElements())

	require.NoError(t, pc.ResetGlobalFilter())
	requireConsistent(t, pc.Cube)
	require.Equal(t, 101, pc.TotalElements())
}

func TestFilterErrors(t *testing.T) {
	pc := newPeopleCube(t)
	f := filters.NewPredicate("adults", func(r int) bool {
		age, _ := pc.table.GetString(r, "age")
		n, _ := strconv.Atoi(age)
		return n >= 21
	})

	require.NoError(t, pc.AddGlobalFilter(f))
	require.ErrorIs(t, pc.AddGlobalFilter(f), ErrDuplicateFilter)
	require.ErrorIs(t, pc.RemoveGlobalFilter(filters.NewPredicate("other", func(int) bool { return true })), ErrUnknownFilter)
	require.Error(t, pc.AddGlobalFilter(nil))
	require.NoError(t, pc.RemoveGlobalFilter(f))
	require.ErrorIs(t, pc.RemoveGlobalFilter(f), ErrUnknownFilter)
	requireConsistent(t, pc.Cube)
}

func TestCategoryFilterAsGlobalFilter(t *testing.T) {
	dt := demo.CreatePeopleTable()
	sex := categorizer(t, dt, "sex")
	women, err := filters.NewCategoryFilterFor(sex, "f")
	require.NoError(t, err)

	c, err := New(dt, categorizer(t, dt, "last_name"), nil, WithGlobalFilters(women))
	require.NoError(t, err)
	requireConsistent(t, c)
	require.Equal(t, 50, c.TotalElements())
	require.Equal(t, 1, sex.Holders())

	c.Close()
	require.Zero(t, sex.Holders())
}

func TestCapacity(t *testing.T) {
	pc := newPeopleCube(t, WithMaxBuckets(20))
	before := snapshot(pc.Cube)
	sex := categorizer(t, pc.table, "sex")

	err := pc.Split(Horizontal, 1, sex)
	require.ErrorIs(t, err, ErrCapacity)
	require.Equal(t, 1, pc.HeaderCount(Horizontal))
	require.Equal(t, before, snapshot(pc.Cube))
	require.Zero(t, sex.Holders())
	requireConsistent(t, pc.Cube)

	// the refused provider still follows the table
	require.True(t, sex.Attached())
	require.Equal(t, 2, sex.CategoryCount())
	require.GreaterOrEqual(t, sex.CategoryOf(0), 0)

	city := categorizer(t, pc.table, "city")
	_, err = New(pc.table, city, nil, WithMaxBuckets(2))
	require.ErrorIs(t, err, ErrCapacity)
	require.True(t, city.Attached())
	require.NotEmpty(t, city.Values())

	_, err = New(pc.table, pc.first, nil, WithMaxBuckets(2))
	require.ErrorIs(t, err, ErrCapacity)
	require.Equal(t, 1, pc.first.Holders())
}

func TestStructuralErrors(t *testing.T) {
	pc := newPeopleCube(t)
	sex := categorizer(t, pc.table, "sex")

	require.ErrorIs(t, pc.Split(Horizontal, 0, pc.last), ErrDuplicateProvider)
	require.ErrorIs(t, pc.Split(Vertical, 2, sex), ErrLevel)
	require.ErrorIs(t, pc.Split(Vertical, -1, sex), ErrLevel)
	require.ErrorIs(t, pc.Split(Vertical, 0, nil), ErrNilProvider)
	require.ErrorIs(t, pc.Collapse(Vertical, 1), ErrLevel)
	requireConsistent(t, pc.Cube)

	_, err := New(nil, nil, nil)
	require.ErrorIs(t, err, ErrNilSource)
	var dt *tables.DataTable
	_, err = New(dt, nil, nil)
	require.ErrorIs(t, err, ErrNilSource)
	_, err = New(pc.table, sex, sex)
	require.ErrorIs(t, err, ErrDuplicateProvider)
	_, err = New(pc.table, nil, nil, WithMaxBuckets(0))
	require.Error(t, err)
}

func TestCloseReleasesProviders(t *testing.T) {
	pc := newPeopleCube(t)
	other, err := New(pc.table, pc.last, nil)
	require.NoError(t, err)
	require.Equal(t, 2, pc.last.Holders())
	require.Equal(t, 1, pc.first.Holders())

	pc.Close()
	require.Equal(t, 1, pc.last.Holders())
	require.True(t, pc.last.Attached())
	require.Zero(t, pc.first.Holders())
	require.False(t, pc.first.Attached())
	pc.Close()

	require.NoError(t, pc.table.AppendRow("Zed", "Zulu", "m", "33", "Austin"))
	requireConsistent(t, other)
	require.Equal(t, 101, other.TotalElements())
	require.Error(t, pc.Split(Vertical, 0, categorizer(t, pc.table, "sex")))

	other.Close()
	require.Zero(t, pc.last.Holders())
}

func TestZeroCategoryProvider(t *testing.T) {
	dt := numbersTable(t, 6)
	empty := newListProvider("empty")
	c, err := New(dt, empty, nil)
	require.NoError(t, err)
	requireConsistent(t, c)
	require.Zero(t, c.NumberOfBuckets(Vertical))
	require.Zero(t, c.RowCount())
	require.Zero(t, c.TotalElements())

	empty.insert(0, "all")
	requireConsistent(t, c)
	require.Equal(t, 1, c.NumberOfBuckets(Vertical))

	empty.of[0] = 0
	require.NoError(t, dt.SetString(0, "n", "0"))
	requireConsistent(t, c)
	require.Equal(t, 1, c.TotalElements())
	require.Equal(t, []string{"all"}, c.SectionLabels(Vertical, 0))
}

func TestFailedEditKeepsCubeInSync(t *testing.T) {
	pc := newPeopleCube(t)
	before := snapshot(pc.Cube)
	last := value(t, pc.table, 0, "last_name")

	for i := 0; i < 3; i++ {
		err := pc.table.SetStrings(0, map[string]string{"last_name": "Zzyzx", "age": "not a number"})
		require.Error(t, err)
	}
	require.Equal(t, last, value(t, pc.table, 0, "last_name"))
	requireConsistent(t, pc.Cube)
	requireLabelsMatch(t, pc.Cube, pc.table)
	require.Equal(t, before, snapshot(pc.Cube))
	require.NotContains(t, pc.last.Values(), "Zzyzx")
}

func TestUpdateMovesRecords(t *testing.T) {
	pc := newPeopleCube(t)
	row := pc.SectionForElementInternal(0, Vertical)

	require.NoError(t, pc.table.SetString(0, "last_name", "Anderson"))
	requireConsistent(t, pc.Cube)
	require.Equal(t, []string{"Anderson"}, pc.SectionLabels(Vertical, pc.SectionForElementInternal(0, Vertical)))

	require.NoError(t, pc.table.SetString(0, "last_name", value(t, pc.table, 1, "last_name")))
	requireConsistent(t, pc.Cube)
	require.NoError(t, pc.table.SetString(0, "last_name", "Smith"))
	require.Equal(t, row, pc.SectionForElementInternal(0, Vertical))
	requireConsistent(t, pc.Cube)
}

func TestBucketLookup(t *testing.T) {
	pc := newPeopleCube(t)
	row, col, ok := pc.Bucket(37)
	require.True(t, ok)
	require.Equal(t, pc.SectionForElementInternal(37, Vertical), pc.SectionForBucket(Vertical, row))
	require.Equal(t, pc.SectionForElementInternal(37, Horizontal), pc.SectionForBucket(Horizontal, col))

	_, _, ok = pc.Bucket(1000)
	require.False(t, ok)
	require.Equal(t, -1, pc.SectionForElementInternal(1000, Vertical))
	require.Equal(t, -1, pc.SectionForBucket(Vertical, 1000))
}

// listProvider is a provider whose categories are set directly by tests
type listProvider struct {
	categories.Notifier
	categories.Shared
	name   string
	labels []string
	of     map[int]int
}

func newListProvider(name string, labels ...string) *listProvider {
	return &listProvider{name: name, labels: labels, of: make(map[int]int)}
}

func (p *listProvider) Name() string       { return p.name }
func (p *listProvider) CategoryCount() int { return len(p.labels) }

func (p *listProvider) CategoryLabel(i int, role categories.Role) string {
	if i < 0 || i >= len(p.labels) {
		return ""
	}
	return p.labels[i]
}

func (p *listProvider) CategoryOf(record int) int {
	if c, ok := p.of[record]; ok {
		return c
	}
	return -1
}

func (p *listProvider) insert(at int, label string) {
	p.labels = slices.Insert(p.labels, at, label)
	for r, c := range p.of {
		if c >= at {
			p.of[r] = c + 1
		}
	}
	p.NotifyAdded(p, at)
}

// removeCategory drops category at. Its records move to reassign, given in the
// new numbering, or leave every category when reassign is negative.
func (p *listProvider) removeCategory(at, reassign int) {
	p.labels = slices.Delete(p.labels, at, at+1)
	for r, c := range p.of {
		switch {
		case c == at && reassign < 0:
			delete(p.of, r)
		case c == at:
			p.of[r] = reassign
		case c > at:
			p.of[r] = c - 1
		}
	}
	p.NotifyRemoved(p, at)
}

func numbersTable(t *testing.T, n int) *tables.DataTable {
	t.Helper()
	dt := tables.NewDataTable()
	col := columns.NewInt64Column(columns.NewColumnDef("n", "N", ""))
	for i := 0; i < n; i++ {
		col.Append(int64(i))
	}
	require.NoError(t, dt.AddColumn(col))
	return dt
}

func modProvider(dt *tables.DataTable, name string, labels ...string) *listProvider {
	p := newListProvider(name, labels...)
	for r := 0; r < dt.Length(); r++ {
		p.of[r] = r % len(labels)
	}
	return p
}

func requireCategories(t *testing.T, c *Cube, p *listProvider) {
	t.Helper()
	for _, r := range c.Records() {
		labels := c.SectionLabels(Vertical, c.SectionForElementInternal(r, Vertical))
		require.Equal(t, p.labels[p.of[r]], labels[0], "record %d", r)
	}
}

func TestRemovedCategoryWithMembers(t *testing.T) {
	dt := numbersTable(t, 9)
	p := modProvider(dt, "mod3", "a", "b", "c")
	inner := modProvider(dt, "mod2", "even", "odd")
	c, err := New(dt, p, nil)
	require.NoError(t, err)
	require.NoError(t, c.Split(Vertical, 1, inner))
	require.Equal(t, 6, c.RowCount())

	p.removeCategory(1, 1)
	requireConsistent(t, c)
	require.Equal(t, 9, c.TotalElements())
	require.Equal(t, 4, c.NumberOfBuckets(Vertical))
	require.Equal(t, []string{"a", "c"}, headerLabels(c, Vertical, 0))
	requireCategories(t, c, p)

	p.removeCategory(0, -1)
	requireConsistent(t, c)
	require.Equal(t, 6, c.TotalElements())
	require.Equal(t, []string{"c"}, headerLabels(c, Vertical, 0))
	requireCategories(t, c, p)
}

func TestInsertedCategoryShiftsBuckets(t *testing.T) {
	dt := numbersTable(t, 9)
	p := modProvider(dt, "mod3", "a", "b", "c")
	c, err := New(dt, modProvider(dt, "mod2", "even", "odd"), nil)
	require.NoError(t, err)
	require.NoError(t, c.Split(Vertical, 1, p))
	before := snapshot(c)

	p.insert(0, "first")
	p.insert(2, "middle")
	p.insert(5, "last")
	requireConsistent(t, c)
	require.Equal(t, 2*6, c.NumberOfBuckets(Vertical))
	require.Equal(t, before, snapshot(c))

	p.of[6] = 0
	require.NoError(t, dt.SetString(6, "n", "6"))
	requireConsistent(t, c)
	require.Equal(t, 7, c.RowCount())
	require.Equal(t, []string{"even", "first"}, c.SectionLabels(Vertical, 0))
	require.Equal(t, []int{6}, c.Elements(0, 0))
}

func TestSplitDropsUncategorizedRecords(t *testing.T) {
	dt := numbersTable(t, 10)
	partial := newListProvider("partial", "low")
	for r := 0; r < 4; r++ {
		partial.of[r] = 0
	}
	c, err := New(dt, nil, nil)
	require.NoError(t, err)

	require.NoError(t, c.Split(Horizontal, 0, partial))
	requireConsistent(t, c)
	require.Equal(t, 4, c.TotalElements())

	require.NoError(t, c.Collapse(Horizontal, 0))
	requireConsistent(t, c)
	require.Equal(t, 10, c.TotalElements())
	require.Zero(t, partial.Holders())
}
