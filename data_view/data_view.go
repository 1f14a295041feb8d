/*
	Copyright 2025 Google Inc.
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

// Package dataview describes the tabular query result a bar chart is built
// from.  A Table is a set of role-tagged columns over rows of primitive cells;
// cells are string, float64, or nil.
package dataview

import (
	"fmt"
	"strings"
)

// Role is the data role a column is bound to.
type Role string

// Supported roles.
const (
	CategoryRole  Role = "category"
	ValueRole     Role = "value"
	LegendRole    Role = "legend"
	ColumnByRole  Role = "column"
	RowByRole     Role = "row"
	HighlightRole Role = "highlight"
)

var knownRoles = map[Role]struct{}{
	CategoryRole:  {},
	ValueRole:     {},
	LegendRole:    {},
	ColumnByRole:  {},
	RowByRole:     {},
	HighlightRole: {},
}

// ParseRole returns the Role named by s.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownRoles[r]; !ok {
		return "", fmt.Errorf("unknown data role '%s'", s)
	}
	return r, nil
}

// Column is a single bound column.  For HighlightRole columns, Name is the
// name of the value column being highlighted.
type Column struct {
	Name string
	Role Role
}

// Table is a tabular query result.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// ColumnIndices returns the indices of the columns bound to role, in order.
func (t *Table) ColumnIndices(role Role) []int {
	var ret []int
	for idx, col := range t.Columns {
		if col.Role == role {
			ret = append(ret, idx)
		}
	}
	return ret
}

// ColumnIndex returns the index of the first column bound to role, or -1.
func (t *Table) ColumnIndex(role Role) int {
	if idxs := t.ColumnIndices(role); len(idxs) > 0 {
		return idxs[0]
	}
	return -1
}

// HasRole returns true if any column is bound to role.
func (t *Table) HasRole(role Role) bool {
	return t.ColumnIndex(role) >= 0
}

// HighlightColumn returns the index of the highlight column for the named
// value column, or -1.
func (t *Table) HighlightColumn(valueName string) int {
	for idx, col := range t.Columns {
		if col.Role == HighlightRole && col.Name == valueName {
			return idx
		}
	}
	return -1
}

// Validate checks that the receiver is well-formed: at least one value
// column, at most one column for each of the category, legend, column and row
// roles, and rows as wide as the header.
func (t *Table) Validate() error {
	if !t.HasRole(ValueRole) {
		return fmt.Errorf("table '%s' has no value column", t.Name)
	}
	for _, role := range []Role{CategoryRole, LegendRole, ColumnByRole, RowByRole} {
		if n := len(t.ColumnIndices(role)); n > 1 {
			return fmt.Errorf("table '%s' binds %d columns to role '%s'", t.Name, n, role)
		}
	}
	for idx, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table '%s' row %d has %d cells, want %d", t.Name, idx, len(row), len(t.Columns))
		}
	}
	return nil
}
