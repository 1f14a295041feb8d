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

// Package layout places converted bar chart data into pointer-event space.
// It binds each visible point to exactly one element whose bounds the
// selection engines hit-test, either as a single, horizontally scrolled chart
// or as a grid of small multiple facets.
package layout

import (
	"math"

	"github.com/ilhamster/barviz/category"
	categoryaxis "github.com/ilhamster/barviz/category_axis"
	continuousaxis "github.com/ilhamster/barviz/continuous_axis"
	datapoint "github.com/ilhamster/barviz/data_point"
	hittest "github.com/ilhamster/barviz/hit_test"
	"github.com/ilhamster/barviz/settings"
)

// Viewport is the size of the visual in pixels.
type Viewport struct {
	Width, Height float64
}

// Element is a rendered bar.
type Element struct {
	// Index is the position of the element's point in the full point
	// sequence.
	Index int
	// Facet is the position of the element's facet in Frame.Facets.
	Facet  int
	Bounds hittest.Rect
	// Opacity is the bar's fill opacity.
	Opacity float64
}

// FacetFrame is the placement of one facet.
type FacetFrame struct {
	// Facet is the position of the facet in the converted data.
	Facet int
	Title string
	// Cell bounds the whole facet; Plot bounds its bars.
	Cell, Plot hittest.Rect
	Axis       *continuousaxis.Axis
	Band       *categoryaxis.Band
	// Elements are positions in Frame.Elements.
	Elements []int
}

// Frame is one layout pass.
type Frame struct {
	Viewport Viewport
	Elements []Element
	Facets   []FacetFrame
	Legend   hittest.Rect
	// FirstVisible is the full index of the first bound point.
	FirstVisible int
	// Scroll is the position of the first visible category, and MaxScroll the
	// highest position Scroll may take.
	Scroll, MaxScroll int
}

// Bounds returns the bounds of each of the receiver's elements, in order.
func (f *Frame) Bounds() []hittest.Rect {
	ret := make([]hittest.Rect, len(f.Elements))
	for idx, el := range f.Elements {
		ret[idx] = el.Bounds
	}
	return ret
}

// ElementAt returns the position of the element under p, if any.
func (f *Frame) ElementAt(p hittest.Point) (int, bool) {
	idx := hittest.Find(p, f.Bounds())
	return idx, idx >= 0
}

// SetOpacity sets every element's opacity: full if it is selected or if
// nothing is, and dimmed otherwise.
func (f *Frame) SetOpacity(selected func(index int) bool, anySelected bool, s settings.Selection) {
	for idx := range f.Elements {
		el := &f.Elements[idx]
		if !anySelected || selected(el.Index) {
			el.Opacity = s.SelectedOpacity
		} else {
			el.Opacity = s.DimmedOpacity
		}
	}
}

var valueCategory = category.New("value", "Value", "Stacked bar value")

// margins returns the plot area of a chart occupying area, leaving room for
// its axes.
func margins(area hittest.Rect, s *settings.Settings) hittest.Rect {
	plot := area
	if s.ValueAxis.Show {
		plot.Left += float64(s.ValueAxis.LabelWidthPx + s.ValueAxis.MarkersWidthPx)
	}
	if s.CategoryAxis.Show {
		plot.Bottom -= float64(s.CategoryAxis.LabelHeightPx)
	}
	if plot.Right < plot.Left {
		plot.Right = plot.Left
	}
	if plot.Bottom < plot.Top {
		plot.Bottom = plot.Top
	}
	return plot
}

// legendArea splits the legend off of the viewport, returning the legend's
// bounds and the remaining chart area.
func legendArea(data *datapoint.Data, vp Viewport, s *settings.Settings) (legend, chart hittest.Rect) {
	chart = hittest.Rect{Right: vp.Width, Bottom: vp.Height}
	if len(data.Legend) == 0 || !s.Legend.Show {
		return hittest.Rect{}, chart
	}
	legend = chart
	switch s.Legend.Position {
	case settings.LegendBottom:
		legend.Top = math.Max(chart.Bottom-s.Legend.HeightPx, chart.Top)
		chart.Bottom = legend.Top
	case settings.LegendLeft:
		legend.Right = math.Min(chart.Left+s.Legend.WidthPx, chart.Right)
		chart.Left = legend.Right
	case settings.LegendRight:
		legend.Left = math.Max(chart.Right-s.Legend.WidthPx, chart.Left)
		chart.Right = legend.Left
	default:
		legend.Bottom = math.Min(chart.Top+s.Legend.HeightPx, chart.Bottom)
		chart.Top = legend.Bottom
	}
	return legend, chart
}

// place binds the point at full index idx to an element within ff.
func place(f *Frame, ff *FacetFrame, data *datapoint.Data, idx int) {
	p := data.Points[idx]
	catIdx, ok := ff.Band.Index(p.CategoryKey)
	if !ok {
		return
	}
	width, height := ff.Plot.Width(), ff.Plot.Height()
	x, w := ff.Band.Position(catIdx, width)
	lo, hi := math.Min(p.ShiftValue, p.Sum), math.Max(p.ShiftValue, p.Sum)
	top := height - ff.Axis.Scale(hi, height)
	bottom := height - ff.Axis.Scale(lo, height)
	p.BarCoordinates = datapoint.BarCoordinates{
		X:      x,
		Y:      top,
		Width:  w,
		Height: bottom - top,
	}
	p.LabelCoordinates = datapoint.LabelCoordinates{
		X: x + w/2,
		Y: (top + bottom) / 2,
	}
	ff.Elements = append(ff.Elements, len(f.Elements))
	f.Elements = append(f.Elements, Element{
		Index: idx,
		Facet: len(f.Facets),
		Bounds: hittest.Rect{
			Left:   ff.Plot.Left + x,
			Top:    ff.Plot.Top + top,
			Right:  ff.Plot.Left + x + w,
			Bottom: ff.Plot.Top + bottom,
		},
		Opacity: 1,
	})
}

// Single lays data out as one chart.  If its categories do not fit at the
// minimum category width, only a window of them starting at the scroll
// position is bound; scroll is clamped into range.
func Single(data *datapoint.Data, vp Viewport, s *settings.Settings, scroll int) *Frame {
	f := &Frame{Viewport: vp}
	var chart hittest.Rect
	f.Legend, chart = legendArea(data, vp, s)
	plot := margins(chart, s)
	keys := data.Categories
	visible := len(keys)
	if minWidth := float64(s.CategoryAxis.MinCategoryWidthPx); minWidth > 0 {
		if fit := int(plot.Width() / minWidth); fit < visible {
			visible = max(fit, 1)
		}
	}
	f.MaxScroll = max(len(keys)-visible, 0)
	f.Scroll = min(max(scroll, 0), f.MaxScroll)
	window := keys
	if len(keys) > 0 {
		window = keys[f.Scroll : f.Scroll+visible]
	}
	ff := FacetFrame{
		Cell: chart,
		Plot: plot,
		Axis: continuousaxis.New(valueCategory, extents(data, -1)...),
		Band: categoryaxis.NewBand(category.New("category", "Category", ""), window, s.CategoryAxis.PaddingRatio),
	}
	f.FirstVisible = -1
	for idx := range data.Points {
		before := len(f.Elements)
		place(f, &ff, data, idx)
		if f.FirstVisible < 0 && len(f.Elements) > before {
			f.FirstVisible = idx
		}
	}
	if f.FirstVisible < 0 {
		f.FirstVisible = 0
	}
	f.Facets = append(f.Facets, ff)
	return f
}

func extents(data *datapoint.Data, facet int) []float64 {
	min, max := data.Extents(facet)
	return []float64{min, max}
}

// grid returns the row and column of each facet, and the grid's dimensions.
func grid(data *datapoint.Data, s *settings.Settings) (pos [][2]int, rows, cols int) {
	pos = make([][2]int, len(data.Facets))
	hasRow, hasCol := false, false
	for _, f := range data.Facets {
		hasRow = hasRow || f.Row != ""
		hasCol = hasCol || f.Column != ""
	}
	if hasRow && hasCol && s.SmallMultiple.Layout == settings.GridLayout {
		rowIdx, colIdx := map[string]int{}, map[string]int{}
		for idx, f := range data.Facets {
			if _, ok := rowIdx[f.Row]; !ok {
				rowIdx[f.Row] = len(rowIdx)
			}
			if _, ok := colIdx[f.Column]; !ok {
				colIdx[f.Column] = len(colIdx)
			}
			pos[idx] = [2]int{rowIdx[f.Row], colIdx[f.Column]}
		}
		return pos, len(rowIdx), len(colIdx)
	}
	cols = min(max(s.SmallMultiple.Columns, 1), max(len(data.Facets), 1))
	for idx := range data.Facets {
		pos[idx] = [2]int{idx / cols, idx % cols}
	}
	rows = (len(data.Facets) + cols - 1) / cols
	return pos, rows, cols
}

// SmallMultiple lays data out as a grid of facets.  Every point is bound.
// Facets share one value axis if SharedYScale is set.
func SmallMultiple(data *datapoint.Data, vp Viewport, s *settings.Settings) *Frame {
	f := &Frame{Viewport: vp}
	var chart hittest.Rect
	f.Legend, chart = legendArea(data, vp, s)
	pos, rows, cols := grid(data, s)
	if rows == 0 || cols == 0 {
		return f
	}
	cellW, cellH := chart.Width()/float64(cols), chart.Height()/float64(rows)
	pad := s.SmallMultiple.CellPaddingPx / 2
	var shared *continuousaxis.Axis
	if s.SmallMultiple.SharedYScale {
		shared = continuousaxis.New(valueCategory, extents(data, -1)...)
	}
	for facetIdx, facet := range data.Facets {
		cell := hittest.Rect{
			Left: chart.Left + float64(pos[facetIdx][1])*cellW,
			Top:  chart.Top + float64(pos[facetIdx][0])*cellH,
		}
		cell.Right, cell.Bottom = cell.Left+cellW, cell.Top+cellH
		inner := hittest.Rect{
			Left:   cell.Left + pad,
			Top:    cell.Top + pad,
			Right:  math.Max(cell.Right-pad, cell.Left+pad),
			Bottom: math.Max(cell.Bottom-pad, cell.Top+pad),
		}
		if s.SmallMultiple.ShowTitles {
			inner.Top = math.Min(inner.Top+s.SmallMultiple.TitleHeightPx, inner.Bottom)
		}
		axis := shared
		if axis == nil {
			axis = continuousaxis.New(valueCategory, extents(data, facetIdx)...)
		}
		ff := FacetFrame{
			Facet: facetIdx,
			Title: facet.Title(),
			Cell:  cell,
			Plot:  margins(inner, s),
			Axis:  axis,
			Band:  categoryaxis.NewBand(category.New("category", "Category", ""), facet.Categories, s.CategoryAxis.PaddingRatio),
		}
		for _, idx := range facet.Points {
			place(f, &ff, data, idx)
		}
		f.Facets = append(f.Facets, ff)
	}
	return f
}
