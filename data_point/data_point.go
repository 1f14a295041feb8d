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

// Package datapoint converts a data view table into the ordered, stacked
// sequence of bar segments a bar chart renders and selects.
package datapoint

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ilhamster/barviz/category"
	"github.com/ilhamster/barviz/color"
	dataview "github.com/ilhamster/barviz/data_view"
	"gonum.org/v1/gonum/floats"
)

// Identity is the stable selection key of a logical data point: the measure
// it reports and the normalized keys of its category, legend, and facet.
type Identity struct {
	Measure, Category, Legend, Column, Row string
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)

// Key returns the receiver as an opaque string, used by the host selection
// protocol and persistence.
func (id Identity) Key() string {
	parts := []string{id.Measure, id.Category, id.Legend, id.Column, id.Row}
	for idx, part := range parts {
		parts[idx] = keyEscaper.Replace(part)
	}
	return strings.Join(parts, "|")
}

// BarCoordinates is the rendered rectangle of a bar, relative to its facet's
// plot area.
type BarCoordinates struct {
	X, Y, Width, Height float64
}

// LabelCoordinates is the anchor of a bar's data label, relative to its
// facet's plot area.
type LabelCoordinates struct {
	X, Y float64
}

// VisualDataPoint is one renderable bar segment.
type VisualDataPoint struct {
	// Value is the aggregated value; ValueForHeight is its magnitude.
	Value          float64
	ValueForHeight float64
	// Category is the first-seen primitive category value; CategoryKey is its
	// normalized key.
	Category    any
	CategoryKey string
	// ShiftValue is where the segment starts along the value axis, and Sum the
	// running stack total where it ends.
	ShiftValue float64
	Sum        float64
	Color      string
	Identity   Identity
	// Selected is the committed selection state.
	Selected  bool
	Highlight bool
	Legend    any
	Measure   string
	ColumnBy  any
	RowBy     any
	// Facet is the position of the point's facet in Data.Facets.
	Facet int

	BarCoordinates   BarCoordinates
	LabelCoordinates LabelCoordinates
}

// Facet is one cell of a small multiple, or the whole chart when no facet
// roles are bound.
type Facet struct {
	Row, Column           string
	RowValue, ColumnValue any
	// Points are positions in Data.Points, in order.
	Points []int
	// Categories are the normalized category keys present in the facet.
	Categories []string
}

// Title returns a display title for the receiver.
func (f Facet) Title() string {
	switch {
	case f.Row != "" && f.Column != "":
		return f.Row + " / " + f.Column
	case f.Row != "":
		return f.Row
	default:
		return f.Column
	}
}

// LegendItem is one legend series, or one measure when several measures are
// bound without a legend.
type LegendItem struct {
	Key   string
	Color string
}

// Data is the converted chart data.
type Data struct {
	Points     []*VisualDataPoint
	Categories []string
	Measures   []string
	Legend     []LegendItem
	Facets     []Facet

	// HasLegend is true if a legend column is bound.
	HasLegend bool
	// HasMultipleValues is true if some category of some facet holds more
	// than one point.
	HasMultipleValues bool
	// IsSmallMultiple is true if a row or column facet role is bound.
	IsSmallMultiple bool
}

// StackedWithoutLegend returns true if a category, rather than a bar, is the
// natural unit of selection.
func (d *Data) StackedWithoutLegend() bool {
	return d.HasMultipleValues && !d.HasLegend
}

// CategoryKeys returns the normalized category key of each point, in order.
func (d *Data) CategoryKeys() []string {
	ret := make([]string, len(d.Points))
	for idx, p := range d.Points {
		ret[idx] = p.CategoryKey
	}
	return ret
}

// Groups returns the contiguous category runs of the receiver's points.
func (d *Data) Groups() []category.Group {
	return category.Groups(d.CategoryKeys())
}

// Extents returns the lowest and highest stack ends of the points in the
// facet at position facet, or of all points if facet is negative.  Both
// extents include zero.
func (d *Data) Extents(facet int) (min, max float64) {
	ends := []float64{0}
	for _, p := range d.Points {
		if facet >= 0 && p.Facet != facet {
			continue
		}
		ends = append(ends, p.ShiftValue, p.Sum)
	}
	return floats.Min(ends), floats.Max(ends)
}

// Options controls conversion.
type Options struct {
	// IsSelected reports whether the point with the provided identity key is
	// committed-selected.  If nil, no point is.
	IsSelected func(key string) bool
	// Palette colors legend series.  If nil, the default palette is used.
	Palette *color.Palette
}

type ordering struct {
	index map[string]int
	keys  []string
	raw   []any
}

func newOrdering() *ordering {
	return &ordering{index: map[string]int{}}
}

func (o *ordering) add(key string, raw any) int {
	if idx, ok := o.index[key]; ok {
		return idx
	}
	idx := len(o.keys)
	o.index[key] = idx
	o.keys = append(o.keys, key)
	o.raw = append(o.raw, raw)
	return idx
}

type aggregate struct {
	point                            *VisualDataPoint
	facet, category, legend, measure int
}

func cell(row []any, idx int) any {
	if idx < 0 {
		return nil
	}
	return row[idx]
}

func number(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Convert produces chart data from the provided table.  Rows sharing a
// measure, category, legend, and facet are summed into one point.
func Convert(t *dataview.Table, opts Options) (*Data, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if opts.Palette == nil {
		opts.Palette = color.DefaultPalette()
	}
	catCol := t.ColumnIndex(dataview.CategoryRole)
	legendCol := t.ColumnIndex(dataview.LegendRole)
	columnCol := t.ColumnIndex(dataview.ColumnByRole)
	rowCol := t.ColumnIndex(dataview.RowByRole)
	valueCols := t.ColumnIndices(dataview.ValueRole)
	highlightCols := make([]int, len(valueCols))
	measures := newOrdering()
	for idx, vc := range valueCols {
		name := t.Columns[vc].Name
		if _, dup := measures.index[name]; dup {
			return nil, fmt.Errorf("table '%s' binds value column '%s' twice", t.Name, name)
		}
		measures.add(name, name)
		highlightCols[idx] = t.HighlightColumn(name)
	}
	facets, categories, legends := newOrdering(), newOrdering(), newOrdering()
	aggs := map[Identity]*aggregate{}
	var order []*aggregate
	for _, row := range t.Rows {
		rowV, colV := cell(row, rowCol), cell(row, columnCol)
		rowKey, colKey := "", ""
		if rowCol >= 0 {
			rowKey = category.Key(rowV)
		}
		if columnCol >= 0 {
			colKey = category.Key(colV)
		}
		facetIdx := facets.add(rowKey+"|"+colKey, [2]any{rowV, colV})
		catV := cell(row, catCol)
		catKey := category.Key(catV)
		catIdx := categories.add(catKey, catV)
		legendV, legendKey, legendIdx := any(nil), "", 0
		if legendCol >= 0 {
			legendV = cell(row, legendCol)
			legendKey = category.Key(legendV)
			legendIdx = legends.add(legendKey, legendV)
		}
		for idx, vc := range valueCols {
			measure := t.Columns[vc].Name
			id := Identity{
				Measure:  measure,
				Category: catKey,
				Legend:   legendKey,
				Column:   colKey,
				Row:      rowKey,
			}
			agg, ok := aggs[id]
			if !ok {
				agg = &aggregate{
					point: &VisualDataPoint{
						Category:    catV,
						CategoryKey: catKey,
						Identity:    id,
						Legend:      legendV,
						Measure:     measure,
						ColumnBy:    colV,
						RowBy:       rowV,
						Facet:       facetIdx,
					},
					facet:    facetIdx,
					category: catIdx,
					legend:   legendIdx,
					measure:  idx,
				}
				aggs[id] = agg
				order = append(order, agg)
			}
			if v, ok := number(row[vc]); ok {
				agg.point.Value += v
			}
			if hc := highlightCols[idx]; hc >= 0 {
				if h, ok := number(row[hc]); ok && h != 0 {
					agg.point.Highlight = true
				}
			}
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.facet != b.facet {
			return a.facet < b.facet
		}
		if a.category != b.category {
			return a.category < b.category
		}
		if a.legend != b.legend {
			return a.legend < b.legend
		}
		return a.measure < b.measure
	})
	d := &Data{
		Categories:      categories.keys,
		Measures:        measures.keys,
		HasLegend:       legendCol >= 0,
		IsSmallMultiple: rowCol >= 0 || columnCol >= 0,
	}
	switch {
	case d.HasLegend:
		for idx, key := range legends.keys {
			d.Legend = append(d.Legend, LegendItem{Key: key, Color: opts.Palette.Color(idx)})
		}
	case len(measures.keys) > 1:
		for idx, key := range measures.keys {
			d.Legend = append(d.Legend, LegendItem{Key: key, Color: opts.Palette.Color(idx)})
		}
	}
	d.Facets = make([]Facet, len(facets.keys))
	for idx, key := range facets.keys {
		rowKey, colKey, _ := strings.Cut(key, "|")
		raw := facets.raw[idx].([2]any)
		d.Facets[idx] = Facet{
			Row:         rowKey,
			Column:      colKey,
			RowValue:    raw[0],
			ColumnValue: raw[1],
		}
	}
	type stackKey struct{ facet, category int }
	type stack struct {
		pos, neg float64
		n        int
	}
	stacks := map[stackKey]*stack{}
	for pos, agg := range order {
		p := agg.point
		s, ok := stacks[stackKey{agg.facet, agg.category}]
		if !ok {
			s = &stack{}
			stacks[stackKey{agg.facet, agg.category}] = s
			f := &d.Facets[agg.facet]
			f.Categories = append(f.Categories, p.CategoryKey)
		}
		s.n++
		if s.n > 1 {
			d.HasMultipleValues = true
		}
		if p.Value >= 0 {
			p.ShiftValue = s.pos
			s.pos += p.Value
			p.Sum = s.pos
		} else {
			p.ShiftValue = s.neg
			s.neg += p.Value
			p.Sum = s.neg
		}
		p.ValueForHeight = math.Abs(p.Value)
		switch {
		case d.HasLegend:
			p.Color = opts.Palette.Color(agg.legend)
		default:
			p.Color = opts.Palette.Color(agg.measure)
		}
		if opts.IsSelected != nil {
			p.Selected = opts.IsSelected(p.Identity.Key())
		}
		d.Facets[agg.facet].Points = append(d.Facets[agg.facet].Points, pos)
		d.Points = append(d.Points, p)
	}
	return d, nil
}
