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

// Package table provides structural helpers for defining tables, such as the
// details table listing a visual's selected points.  Given a dedicated
// tableRoot util.DataBuilder, which must not be used for any other purpose, a
// new table is created with
//
//	tbl := New(tableRoot, renderSettings, columns...)
//
// and rows are added with
//
//	row := tbl.Row(cells...)
//
// where each cell is a Cell() or FormattedCell().  More cells may be appended
// to a row with `row.AddCell(cell)`.
//
// The structure of a table in a response, with each level representing a
// DataSeries or nested Datum, is:
//
//	table
//	  properties
//	    * render settings
//	    * <decorators>
//	  children:
//	    * header row
//	    * repeated rows
//
//	header row
//	  children
//	    * repeated column definition
//
//	column definition
//	  properties
//	    * category definition
//	    * <decorators, e.g. SortBy>
//
//	row
//	  properties
//	    * <decorators, e.g. RowKey>
//	  children
//	    * repeated cells and formatted cells
//
//	cell
//	  properties
//	    * column tag
//	    * cellKey: Value (cell contents)
//	    * <decorators>
//
//	formatted cell
//	  properties
//	    * column tag
//	    * formattedCellKey: StringValue (cell format string)
//	    * <decorators>
package table

import (
	"github.com/ilhamster/barviz/category"
	"github.com/ilhamster/barviz/util"
)

const (
	cellKey          = "table_cell"
	formattedCellKey = "table_formatted_cell"
	rowKeyKey        = "table_row_key"
	sortByKey        = "table_sort_by"
	sortDirectionKey = "table_sort_direction"
	emptyTextKey     = "table_empty_text"

	rowHeightPxKey = "table_row_height_px"
	fontSizePxKey  = "table_font_size_px"
)

// RenderSettings is a collection of rendering settings for tables.
type RenderSettings struct {
	// The height of a row in pixels.
	RowHeightPx int64
	// The table text font size in pixels.
	FontSizePx int64
}

func (rs *RenderSettings) define() util.PropertyUpdate {
	if rs == nil {
		return util.EmptyUpdate
	}
	return util.Chain(
		util.IntegerProperty(rowHeightPxKey, rs.RowHeightPx),
		util.IntegerProperty(fontSizePxKey, rs.FontSizePx),
	)
}

// ColumnUpdate represents a table column.  It couples a category (specifying
// the column's unique ID, display name, and description) with arbitrary column
// properties.
type ColumnUpdate struct {
	cat        *category.Category
	properties []util.PropertyUpdate
}

// Column returns a new Column with the specified category and properties.
func Column(cat *category.Category, properties ...util.PropertyUpdate) *ColumnUpdate {
	properties = append(properties, cat.Define())
	return &ColumnUpdate{
		cat:        cat,
		properties: properties,
	}
}

// With annotates the receiving column with the provided properties.
func (cu *ColumnUpdate) With(properties ...util.PropertyUpdate) *ColumnUpdate {
	cu.properties = append(cu.properties, properties...)
	return cu
}

func (cu *ColumnUpdate) define() util.PropertyUpdate {
	return util.Chain(cu.properties...)
}

// SortBy marks a column as the one the table is initially sorted by.
func SortBy(descending bool) util.PropertyUpdate {
	direction := "ascending"
	if descending {
		direction = "descending"
	}
	return util.Chain(
		util.BoolProperty(sortByKey, true),
		util.StringProperty(sortDirectionKey, direction),
	)
}

// RowKey annotates a row with the key of the item it describes.
func RowKey(key string) util.PropertyUpdate {
	return util.StringProperty(rowKeyKey, key)
}

// EmptyText annotates a table with the text shown when it has no rows.
func EmptyText(text string) util.PropertyUpdate {
	return util.StringProperty(emptyTextKey, text)
}

// CellUpdate is a PropertyUpdate specifically annotating a cell.
type CellUpdate util.PropertyUpdate

// Cell returns a CellUpdate -- a PropertyUpdate that annotates a datum as a
// cell belonging to the provided column and holding the specified value.  Any
// specified PropertyUpdates are also applied.
func Cell(column *ColumnUpdate, value util.Value, cellUpdates ...util.PropertyUpdate) CellUpdate {
	cellUpdates = append(cellUpdates,
		column.cat.Tag(),
		value(cellKey),
	)
	return CellUpdate(util.Chain(cellUpdates...))
}

// FormattedCell returns a PropertyUpdate that annotates a cell as belonging to
// the provided column and holding the specified string value, which should be
// interpreted as a format string.  Any specified PropertyUpdates, such as
// those referenced in the format string, are also applied.
func FormattedCell(column *ColumnUpdate, value string, cellUpdates ...util.PropertyUpdate) CellUpdate {
	cellUpdates = append(cellUpdates,
		column.cat.Tag(),
		util.StringProperty(formattedCellKey, value),
	)
	return CellUpdate(util.Chain(cellUpdates...))
}

// Node represents a table embedded in a response.
type Node struct {
	db util.DataBuilder
}

// With annotates the receiving table with the provided properties.
func (n *Node) With(properties ...util.PropertyUpdate) *Node {
	n.db.With(properties...)
	return n
}

// New defines a new table in the provided DataBuilder, with the specified
// columns.
func New(db util.DataBuilder, renderSettings *RenderSettings, columns ...*ColumnUpdate) *Node {
	colGroup := db.Child()
	for _, column := range columns {
		colGroup.Child().With(column.define())
	}
	db.With(renderSettings.define())
	return &Node{
		db: db,
	}
}

// RowNode represents a row embedded in a response.
type RowNode struct {
	db util.DataBuilder
}

// Row adds a new child to the receiving table representing a new row, then
// adds the specified cells as children to that new row.
func (n *Node) Row(cells ...CellUpdate) *RowNode {
	db := n.db.Child()
	for _, cell := range cells {
		db.Child().With(util.PropertyUpdate(cell))
	}
	return &RowNode{
		db,
	}
}

// With annotates the receiving row with the provided properties.
func (rn *RowNode) With(properties ...util.PropertyUpdate) *RowNode {
	rn.db.With(properties...)
	return rn
}

// AddCell appends the specified cell to the receiving row.
func (rn *RowNode) AddCell(cellUpdate CellUpdate) *RowNode {
	rn.db.Child().With(util.PropertyUpdate(cellUpdate))
	return rn
}
