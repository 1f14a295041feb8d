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

package table

import (
	"testing"

	"github.com/ilhamster/barviz/category"
	testutil "github.com/ilhamster/barviz/test_util"
	"github.com/ilhamster/barviz/util"
)

var (
	regionCol = Column(category.New("region", "Region", "Sales region"))
	salesCol  = Column(category.New("sales", "Sales", "Total sales"))
	keyCol    = Column(category.New("key", "Key", "Point identity"))

	sortedSalesCol = Column(category.New("sales", "Sales", "Total sales")).With(
		SortBy(true),
	)

	renderSettings = &RenderSettings{
		RowHeightPx: 20,
		FontSizePx:  14,
	}
)

func TestTable(t *testing.T) {
	for _, test := range []struct {
		description   string
		buildTabular  func(db util.DataBuilder)
		buildExplicit func(db testutil.TestDataBuilder)
	}{{
		description: "simple columns",
		buildTabular: func(db util.DataBuilder) {
			New(db, renderSettings, regionCol, salesCol).Row(
				Cell(regionCol, util.String("north")),
				Cell(salesCol, util.Double(12.5)),
			)
		},
		buildExplicit: func(db testutil.TestDataBuilder) {
			db.With(
				util.IntegerProperty(rowHeightPxKey, 20),
				util.IntegerProperty(fontSizePxKey, 14),
			).Child(). // column definitions
					Child().With(regionCol.cat.Define()).
					AndChild().With(salesCol.cat.Define()).
					Parent().Parent(). // back to table root
					Child().           // row 0
					Child().With(      // row 0 cell 0
				regionCol.cat.Tag(),
				util.StringProperty(cellKey, "north"),
			).AndChild().With( // row 0 cell 1
				salesCol.cat.Tag(),
				util.DoubleProperty(cellKey, 12.5),
			)
		},
	}, {
		description: "format cell, decorate table, column, row, and cell",
		buildTabular: func(db util.DataBuilder) {
			New(db, nil, sortedSalesCol).With(
				EmptyText("Nothing selected"),
			).Row(
				FormattedCell(sortedSalesCol,
					"$(amount) units",
					util.DoubleProperty("amount", 3),
				),
			).With(
				RowKey("Sales|north||||"),
			)
		},
		buildExplicit: func(db testutil.TestDataBuilder) {
			db.With(
				util.StringProperty(emptyTextKey, "Nothing selected"),
			).Child(). // column definitions
					Child().With(
				salesCol.cat.Define(),
				util.BoolProperty(sortByKey, true),
				util.StringProperty(sortDirectionKey, "descending"),
			).
				Parent().Parent(). // back to table root
				Child().With(      // row 0
				util.StringProperty(rowKeyKey, "Sales|north||||"),
			).
				Child().With( // row 0 cell 0
				salesCol.cat.Tag(),
				util.StringProperty(formattedCellKey, "$(amount) units"),
				util.DoubleProperty("amount", 3),
			)
		},
	}, {
		description: "cells added to a row",
		buildTabular: func(db util.DataBuilder) {
			New(db, nil, keyCol, regionCol).Row(
				Cell(keyCol, util.String("k")),
			).AddCell(Cell(regionCol, util.String("south")))
		},
		buildExplicit: func(db testutil.TestDataBuilder) {
			db.Child(). // column definitions
					Child().With(keyCol.cat.Define()).
					AndChild().With(regionCol.cat.Define())
			db.Child(). // row 0
					Child().With(
				keyCol.cat.Tag(),
				util.StringProperty(cellKey, "k"),
			).AndChild().With(
				regionCol.cat.Tag(),
				util.StringProperty(cellKey, "south"),
			)
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			if err := testutil.CompareResponses(t, test.buildTabular, test.buildExplicit); err != nil {
				t.Fatalf("encountered unexpected error building the table: %s", err)
			}
		})
	}
}
