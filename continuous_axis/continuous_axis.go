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

// Package continuousaxis provides helpers for defining the continuous value
// axis of a bar chart.  An axis has a category describing it, a domain which
// always includes zero, and a set of labeled major ticks along that domain.
package continuousaxis

import (
	"math"
	"sort"

	"github.com/ilhamster/barviz/category"
	"github.com/ilhamster/barviz/label"
	"github.com/ilhamster/barviz/util"
	"gonum.org/v1/plot"
)

const (
	axisTypeKey = "axis_type"
	axisMinKey  = "axis_min"
	axisMaxKey  = "axis_max"

	doubleAxisType = "double"

	xAxisRenderLabelHeightPxKey   = "x_axis_render_label_height_px"
	xAxisRenderMarkersHeightPxKey = "x_axis_render_markers_height_px"
	yAxisRenderLabelHeightPxKey   = "y_axis_render_label_width_px"
	yAxisRenderMarkersHeightPxKey = "y_axis_render_markers_width_px"
)

// XAxisRenderSettings contains configuring an X axis.
type XAxisRenderSettings struct {
	LabelHeightPx   int64
	MarkersHeightPx int64
}

// Apply annotates with the receiving XAxisRenderSettings.
func (x XAxisRenderSettings) Apply() util.PropertyUpdate {
	return util.Chain(
		util.IntegerProperty(xAxisRenderLabelHeightPxKey, x.LabelHeightPx),
		util.IntegerProperty(xAxisRenderMarkersHeightPxKey, x.MarkersHeightPx),
	)
}

// HeightPx returns the vertical space the X axis occupies.
func (x XAxisRenderSettings) HeightPx() float64 {
	return float64(x.LabelHeightPx + x.MarkersHeightPx)
}

// YAxisRenderSettings contains configuring a Y axis.
type YAxisRenderSettings struct {
	LabelWidthPx   int64
	MarkersWidthPx int64
}

// Apply annotates with the receiving YAxisRenderSettings.
func (y YAxisRenderSettings) Apply() util.PropertyUpdate {
	return util.Chain(
		util.IntegerProperty(yAxisRenderLabelHeightPxKey, y.LabelWidthPx),
		util.IntegerProperty(yAxisRenderMarkersHeightPxKey, y.MarkersWidthPx),
	)
}

// WidthPx returns the horizontal space the Y axis occupies.
func (y YAxisRenderSettings) WidthPx() float64 {
	return float64(y.LabelWidthPx + y.MarkersWidthPx)
}

// Tick is a labeled major tick along an Axis.
type Tick struct {
	Value float64
	Label string
}

// Axis is a continuous value axis.
type Axis struct {
	cat      *category.Category
	min, max float64
	ticks    []Tick
}

// New returns a new Axis with the specified category, whose domain spans zero
// and all provided extents, widened outward to the nearest major ticks.
func New(cat *category.Category, extents ...float64) *Axis {
	min, max := 0.0, 0.0
	for _, extent := range extents {
		if math.IsNaN(extent) || math.IsInf(extent, 0) {
			continue
		}
		min = math.Min(min, extent)
		max = math.Max(max, extent)
	}
	if min == max {
		max = min + 1
	}
	a := &Axis{
		cat: cat,
		min: min,
		max: max,
	}
	a.ticks = a.majorTicks()
	return a
}

func (a *Axis) majorTicks() []Tick {
	var values []float64
	for _, t := range (plot.DefaultTicks{}).Ticks(a.min, a.max) {
		if t.IsMinor() {
			continue
		}
		v := t.Value
		// Snap accumulated error around zero.
		if math.Abs(v) < 1e-9*(a.max-a.min) {
			v = 0
		}
		values = append(values, v)
	}
	sort.Float64s(values)
	if len(values) >= 2 {
		delta := values[1] - values[0]
		for values[0] > a.min {
			values = append([]float64{values[0] - delta}, values...)
		}
		for values[len(values)-1] < a.max {
			values = append(values, values[len(values)-1]+delta)
		}
		a.min, a.max = values[0], values[len(values)-1]
	}
	ret := make([]Tick, len(values))
	for idx, v := range values {
		ret[idx] = Tick{
			Value: v,
			Label: label.Text(v, label.Options{Units: label.Auto, Precision: 2}),
		}
	}
	return ret
}

// Define annotates with a definition of the receiver.
func (a *Axis) Define() util.PropertyUpdate {
	return util.Chain(
		a.cat.Define(),
		util.StringProperty(axisTypeKey, doubleAxisType),
		util.DoubleProperty(axisMinKey, a.min),
		util.DoubleProperty(axisMaxKey, a.max),
	)
}

// Value annotates with the provided value along the receiver.
func (a *Axis) Value(v float64) util.PropertyUpdate {
	return util.DoubleProperty(a.cat.ID(), v)
}

// CategoryID returns the category ID of the receiving Axis.
func (a *Axis) CategoryID() string {
	return a.cat.ID()
}

// Domain returns the receiver's minimum and maximum.
func (a *Axis) Domain() (min, max float64) {
	return a.min, a.max
}

// Ticks returns the receiver's major ticks in ascending order.
func (a *Axis) Ticks() []Tick {
	return a.ticks
}

// Scale maps v onto a range of lengthPx pixels, with the domain minimum at 0.
func (a *Axis) Scale(v, lengthPx float64) float64 {
	return (v - a.min) / (a.max - a.min) * lengthPx
}
