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

// Package barchart defines a stacked-column bar chart with a discrete category
// axis, a continuous value axis, an optional legend, and one or more facets.
//
// BarChart is constructed into a provided DataBuilder db with:
//
//	bc := New(db, valueAxis, renderSettings, properties...)
//
// where valueAxis is the chart's continuousaxis.Axis and renderSettings is a
// RenderSettings.  Legend entries and the selection lasso are added with:
//
//	bc.LegendItem(key, color.Primary(c))
//	bc.Lasso(bounds, lassoStyle)
//
// Bars are always drawn within a facet; a chart that is not faceted has one.
//
//	facet := bc.Facet(facetAxis, properties...)
//
// where facetAxis may be nil, in which case the facet uses the chart's value
// axis.  Categories are added to a facet, and bars to a category:
//
//	cat := facet.Category(category, properties...)
//	stacked := cat.StackedBars()
//	bar := stacked.Bar(lowerExtent, upperExtent)
//	single := cat.Bar(lowerExtent, upperExtent)
//
// Bars may be decorated with, e.g., `bar.With(Identity(key), Selected(true),
// Bounds(rect), color.Primary(c))`.  Within a StackedBars, child Bars should
// be rendered in definition order.
package barchart

import (
	"github.com/ilhamster/barviz/category"
	categoryaxis "github.com/ilhamster/barviz/category_axis"
	continuousaxis "github.com/ilhamster/barviz/continuous_axis"
	hittest "github.com/ilhamster/barviz/hit_test"
	"github.com/ilhamster/barviz/style"
	"github.com/ilhamster/barviz/util"
)

const (
	// Data types
	dataTypeKey    = "bar_chart_data_type"
	facetKey       = "bar_chart_facet"
	stackedBarsKey = "bar_chart_stacked_bars"
	barKey         = "bar_chart_bar"
	tickKey        = "bar_chart_tick"
	legendItemKey  = "bar_chart_legend_item"
	lassoKey       = "bar_chart_lasso"

	// Bar datum keys
	barLowerExtentKey = "bar_chart_bar_lower_extent"
	barUpperExtentKey = "bar_chart_bar_upper_extent"
	barIdentityKey    = "bar_chart_bar_identity"
	barSelectedKey    = "bar_chart_bar_selected"
	barHighlightKey   = "bar_chart_bar_highlight"
	labelXPxKey       = "bar_chart_label_x_px"
	labelYPxKey       = "bar_chart_label_y_px"

	// Other datum keys
	facetTitleKey = "bar_chart_facet_title"
	tickLabelKey  = "bar_chart_tick_label"
	legendKey     = "bar_chart_legend_key"
	xPxKey        = "bar_chart_x_px"
	yPxKey        = "bar_chart_y_px"
	widthPxKey    = "bar_chart_width_px"
	heightPxKey   = "bar_chart_height_px"
	scrollKey     = "bar_chart_scroll"
	maxScrollKey  = "bar_chart_max_scroll"

	// Rendering property keys
	viewportWidthPxKey  = "bar_chart_viewport_width_px"
	viewportHeightPxKey = "bar_chart_viewport_height_px"
)

// RenderSettings is a collection of rendering settings for bar chart.  A bar
// chart is rendered on a two-dimensional plane, with the category axis along
// x and the value axis along y.
type RenderSettings struct {
	// The size of the whole visual, in pixels.
	WidthPx, HeightPx          int64
	CategoryAxisRenderSettings *categoryaxis.RenderSettings
	XAxisRenderSettings        *continuousaxis.XAxisRenderSettings
	YAxisRenderSettings        *continuousaxis.YAxisRenderSettings
}

// Defines the receiver as a set of property updates.
func (rs *RenderSettings) define() util.PropertyUpdate {
	ret := []util.PropertyUpdate{
		util.IntegerProperty(viewportWidthPxKey, rs.WidthPx),
		util.IntegerProperty(viewportHeightPxKey, rs.HeightPx),
	}
	if rs.CategoryAxisRenderSettings != nil {
		ret = append(ret, rs.CategoryAxisRenderSettings.Define())
	}
	if rs.XAxisRenderSettings != nil {
		ret = append(ret, rs.XAxisRenderSettings.Apply())
	}
	if rs.YAxisRenderSettings != nil {
		ret = append(ret, rs.YAxisRenderSettings.Apply())
	}
	return util.Chain(ret...)
}

// Bounds annotates with a pixel rectangle.
func Bounds(r hittest.Rect) util.PropertyUpdate {
	return util.Chain(
		util.DoubleProperty(xPxKey, r.Left),
		util.DoubleProperty(yPxKey, r.Top),
		util.DoubleProperty(widthPxKey, r.Width()),
		util.DoubleProperty(heightPxKey, r.Height()),
	)
}

// Identity annotates a bar with its data point's identity key.
func Identity(key string) util.PropertyUpdate {
	return util.StringProperty(barIdentityKey, key)
}

// Selected annotates a bar with whether it is in the selection.
func Selected(selected bool) util.PropertyUpdate {
	return util.BoolProperty(barSelectedKey, selected)
}

// Highlight annotates a bar as highlighted by the host.  Unhighlighted bars
// are left unannotated.
func Highlight(highlight bool) util.PropertyUpdate {
	return util.If(highlight, util.BoolProperty(barHighlightKey, true))
}

// LabelAt annotates a bar with the position of its data label.
func LabelAt(x, y float64) util.PropertyUpdate {
	return util.Chain(
		util.DoubleProperty(labelXPxKey, x),
		util.DoubleProperty(labelYPxKey, y),
	)
}

// Scroll annotates with a category window's scroll position and its maximum.
func Scroll(scroll, maxScroll int) util.PropertyUpdate {
	return util.Chain(
		util.IntegerProperty(scrollKey, int64(scroll)),
		util.IntegerProperty(maxScrollKey, int64(maxScroll)),
	)
}

func defineTicks(db util.DataBuilder, valueAxis *continuousaxis.Axis) {
	for _, tick := range valueAxis.Ticks() {
		db.Child().With(
			util.StringProperty(dataTypeKey, tickKey),
			valueAxis.Value(tick.Value),
			util.StringProperty(tickLabelKey, tick.Label),
		)
	}
}

// BarChart represents a bar chart with one continuous value axis and one
// discrete category axis.
type BarChart struct {
	db util.DataBuilder
}

// New returns a new BarChart populating the provided DataBuilder, and using
// the provided value axis and render settings.
func New(db util.DataBuilder, valueAxis *continuousaxis.Axis, renderSettings *RenderSettings, properties ...util.PropertyUpdate) *BarChart {
	db.With(
		valueAxis.Define(),
		renderSettings.define(),
	).With(
		properties...,
	)
	defineTicks(db, valueAxis)
	return &BarChart{
		db: db,
	}
}

// With annotates the receiver with the provided properties.
func (bc *BarChart) With(properties ...util.PropertyUpdate) *BarChart {
	bc.db.With(properties...)
	return bc
}

// LegendItem adds a legend entry for the series key.
func (bc *BarChart) LegendItem(key string, properties ...util.PropertyUpdate) {
	bc.db.Child().With(
		util.StringProperty(dataTypeKey, legendItemKey),
		util.StringProperty(legendKey, key),
	).With(properties...)
}

// Lasso adds the selection lasso rectangle, drawn with lassoStyle.
func (bc *BarChart) Lasso(r hittest.Rect, lassoStyle *style.Style) {
	bc.db.Child().With(
		util.StringProperty(dataTypeKey, lassoKey),
		Bounds(r),
		lassoStyle.Define(),
	)
}

// Facet adds a new facet to the receiver.  If valueAxis is non-nil, the facet
// is drawn against it instead of the chart's axis.
func (bc *BarChart) Facet(valueAxis *continuousaxis.Axis, properties ...util.PropertyUpdate) *Facet {
	db := bc.db.Child().With(
		util.StringProperty(dataTypeKey, facetKey),
	)
	if valueAxis != nil {
		db.With(valueAxis.Define())
		defineTicks(db, valueAxis)
	}
	return (&Facet{
		db: db,
	}).With(properties...)
}

// Title annotates a facet with its title.
func Title(title string) util.PropertyUpdate {
	return util.If(title != "", util.StringProperty(facetTitleKey, title))
}

// Facet represents one chart within a small multiple.
type Facet struct {
	db util.DataBuilder
}

// With annotates the receiver with the provided properties.
func (f *Facet) With(properties ...util.PropertyUpdate) *Facet {
	f.db.With(properties...)
	return f
}

// Category adds a new category band, with the provided Category, to the
// receiver.
func (f *Facet) Category(category *category.Category, properties ...util.PropertyUpdate) *Category {
	db := f.db.Child().
		With(category.Define())
	return (&Category{
		db: db,
	}).With(properties...)
}

// Category represents a category band within a facet.
type Category struct {
	db util.DataBuilder
}

// With annotates the receiver with the provided properties.
func (c *Category) With(properties ...util.PropertyUpdate) *Category {
	c.db.With(properties...)
	return c
}

// StackedBars returns a new stacked bar added into the receiving Category.
func (c *Category) StackedBars() *StackedBars {
	db := c.db.Child().With(
		util.StringProperty(dataTypeKey, stackedBarsKey),
	)
	return &StackedBars{
		db: db,
	}
}

// Bar returns a new bar added into the receiving Category.
func (c *Category) Bar(lower, upper float64) *Bar {
	return newBar(c.db, lower, upper)
}

// StackedBars represents a collection of Bars within a Category.
type StackedBars struct {
	db util.DataBuilder
}

// Bar returns a new bar added into the receiving StackedBars.
func (sb *StackedBars) Bar(lower, upper float64) *Bar {
	return newBar(sb.db, lower, upper)
}

// Bar represents a single bar within a Category or a StackedBars.
type Bar struct {
	db util.DataBuilder
}

// With annotates the receiver with the provided properties.
func (b *Bar) With(properties ...util.PropertyUpdate) *Bar {
	b.db.With(properties...)
	return b
}

func newBar(parentDb util.DataBuilder, lower, upper float64) *Bar {
	return &Bar{
		db: parentDb.Child().With(
			util.StringProperty(dataTypeKey, barKey),
			util.DoubleProperty(barLowerExtentKey, lower),
			util.DoubleProperty(barUpperExtentKey, upper),
		),
	}
}
