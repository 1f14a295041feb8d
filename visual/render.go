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

package visual

import (
	"fmt"

	barchart "github.com/ilhamster/barviz/bar_chart"
	"github.com/ilhamster/barviz/category"
	categoryaxis "github.com/ilhamster/barviz/category_axis"
	"github.com/ilhamster/barviz/color"
	continuousaxis "github.com/ilhamster/barviz/continuous_axis"
	datapoint "github.com/ilhamster/barviz/data_point"
	"github.com/ilhamster/barviz/label"
	"github.com/ilhamster/barviz/layout"
	"github.com/ilhamster/barviz/settings"
	"github.com/ilhamster/barviz/style"
	"github.com/ilhamster/barviz/table"
	"github.com/ilhamster/barviz/util"
)

var valueCategory = category.New("value", "Value", "Stacked bar value")

func renderSettings(s *settings.Settings, vp layout.Viewport) *barchart.RenderSettings {
	rs := &barchart.RenderSettings{
		WidthPx:  int64(vp.Width),
		HeightPx: int64(vp.Height),
	}
	if s.CategoryAxis.Show {
		rs.CategoryAxisRenderSettings = &categoryaxis.RenderSettings{
			CategoryLabelCatPx:    s.CategoryAxis.LabelHeightPx,
			CategoryPaddingRatio:  s.CategoryAxis.PaddingRatio,
			CategoryMinWidthCatPx: s.CategoryAxis.MinCategoryWidthPx,
		}
	}
	if s.ValueAxis.Show {
		rs.YAxisRenderSettings = &continuousaxis.YAxisRenderSettings{
			LabelWidthPx:   s.ValueAxis.LabelWidthPx,
			MarkersWidthPx: s.ValueAxis.MarkersWidthPx,
		}
	}
	return rs
}

func lassoStyle(s settings.Selection) *style.Style {
	return style.New().
		With(style.Fill, s.LassoFill).
		With(style.FillOpacity, style.Opacity(s.LassoFillOpacity)).
		With(style.Stroke, s.LassoStroke).
		With(style.StrokeWidth, style.Px(1))
}

// Render builds the receiver's chart into db.
func (v *Visual) Render(db util.DataBuilder) error {
	if v.data == nil || v.frame == nil {
		return ErrNotUpdated
	}
	s, f := v.settings, v.frame
	chartAxis := continuousaxis.New(valueCategory)
	if len(f.Facets) > 0 {
		chartAxis = f.Facets[0].Axis
	}
	bc := barchart.New(db, chartAxis, renderSettings(s, f.Viewport),
		util.If(!v.data.IsSmallMultiple, barchart.Scroll(f.Scroll, f.MaxScroll)),
	)
	if s.Legend.Show {
		for _, item := range v.data.Legend {
			bc.LegendItem(item.Key, color.Primary(item.Color))
		}
	}
	independent := v.data.IsSmallMultiple && !s.SmallMultiple.SharedYScale
	for _, ff := range f.Facets {
		var facetAxis *continuousaxis.Axis
		if independent {
			facetAxis = ff.Axis
		}
		facet := bc.Facet(facetAxis,
			barchart.Bounds(ff.Plot),
			util.If(v.data.IsSmallMultiple && s.SmallMultiple.ShowTitles, barchart.Title(ff.Title)),
		)
		v.renderFacet(facet, &ff)
	}
	if l, ok := v.active.Lasso(); ok {
		bc.Lasso(l.Rect(), lassoStyle(s.Selection))
	}
	return nil
}

func (v *Visual) renderFacet(facet *barchart.Facet, ff *layout.FacetFrame) {
	s := v.settings
	var (
		cat     *barchart.Category
		stacked *barchart.StackedBars
		lastKey string
	)
	for _, elIdx := range ff.Elements {
		el := v.frame.Elements[elIdx]
		p := v.data.Points[el.Index]
		if cat == nil || p.CategoryKey != lastKey {
			cat = facet.Category(category.New(p.CategoryKey, p.CategoryKey, ""))
			stacked = nil
			if v.data.HasMultipleValues {
				stacked = cat.StackedBars()
			}
			lastKey = p.CategoryKey
		}
		lower, upper := p.ShiftValue, p.Sum
		if lower > upper {
			lower, upper = upper, lower
		}
		var bar *barchart.Bar
		if stacked != nil {
			bar = stacked.Bar(lower, upper)
		} else {
			bar = cat.Bar(lower, upper)
		}
		bar.With(
			barchart.Identity(p.Identity.Key()),
			barchart.Bounds(el.Bounds),
			color.Primary(p.Color),
			style.WithFillOpacity(el.Opacity).Define(),
			barchart.Selected(v.active.Mark(el.Index).InSelection()),
			barchart.Highlight(p.Highlight),
		)
		if s.DataLabels.Show && !el.Bounds.Empty() {
			bar.With(
				label.Format(label.Text(p.Value, label.Options{
					Units:     s.DataLabels.DisplayUnits,
					Precision: s.DataLabels.Precision,
				})),
				barchart.LabelAt(ff.Plot.Left+p.LabelCoordinates.X, ff.Plot.Top+p.LabelCoordinates.Y),
			)
		}
	}
}

var (
	categoryCol = table.Column(category.New("category", "Category", "The point's category"))
	legendCol   = table.Column(category.New("legend", "Legend", "The point's legend series"))
	measureCol  = table.Column(category.New("measure", "Measure", "The measure the point shows"))
	facetCol    = table.Column(category.New("facet", "Facet", "The small multiple the point is drawn in"))
	valueCol    = table.Column(category.New("value", "Value", "The point's value")).With(table.SortBy(true))
)

var selectionTableSettings = &table.RenderSettings{
	RowHeightPx: 20,
	FontSizePx:  12,
}

// RenderSelection builds a table of the receiver's committed selection into
// db, one row per selected point.
func (v *Visual) RenderSelection(db util.DataBuilder) error {
	if v.data == nil {
		return ErrNotUpdated
	}
	columns := []*table.ColumnUpdate{categoryCol}
	if v.data.HasLegend {
		columns = append(columns, legendCol)
	}
	columns = append(columns, measureCol)
	if v.data.IsSmallMultiple {
		columns = append(columns, facetCol)
	}
	columns = append(columns, valueCol)
	tbl := table.New(db, selectionTableSettings, columns...).With(
		table.EmptyText("No selection"),
	)
	for _, p := range v.data.Points {
		if !p.Selected {
			continue
		}
		row := tbl.Row(table.Cell(categoryCol, util.String(p.CategoryKey))).With(
			table.RowKey(p.Identity.Key()),
		)
		if v.data.HasLegend {
			row.AddCell(table.Cell(legendCol, util.String(p.Identity.Legend)))
		}
		row.AddCell(table.Cell(measureCol, util.String(p.Measure)))
		if v.data.IsSmallMultiple {
			row.AddCell(table.Cell(facetCol, util.String(facetTitle(v.data, p))))
		}
		row.AddCell(table.Cell(valueCol, util.Double(p.Value)))
	}
	return nil
}

func facetTitle(d *datapoint.Data, p *datapoint.VisualDataPoint) string {
	if p.Facet < 0 || p.Facet >= len(d.Facets) {
		return fmt.Sprint(p.Facet)
	}
	return d.Facets[p.Facet].Title()
}

// RenderSettingsFields builds the property-pane fields relevant for the
// receiver's settings and data into db.
func (v *Visual) RenderSettingsFields(db util.DataBuilder) {
	db.With(util.StringsProperty("settings_fields", v.SettingsFields()...))
}
