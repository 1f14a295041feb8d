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

// Package style supports specifying SVG or CSS styling of bar chart items.
//
// A Style instance comprises a mapping from style attribute name to value,
// both represented as strings.  A Style may be attached to a response Datum
// via the `Define()` method.  Attributes should have the names and expected
// values of SVG attributes, e.g.
// https://developer.mozilla.org/en-US/docs/Web/SVG/Attribute.
package style

import (
	"fmt"
	"strconv"

	"github.com/ilhamster/barviz/util"
)

const (
	keyPrefix = "style_"
)

// Attribute names used by the bar chart.
const (
	Fill          = "fill"
	FillOpacity   = "fill-opacity"
	Stroke        = "stroke"
	StrokeWidth   = "stroke-width"
	StrokeOpacity = "stroke-opacity"
	Visibility    = "visibility"
)

// Style defines a set of styles that can be attached to a Datum.
type Style struct {
	attrs map[string]string
}

// New returns a new, empty Style.
func New() *Style {
	return &Style{
		attrs: map[string]string{},
	}
}

// Define returns a PropertyUpdate defining the receiver into a Datum.
func (s *Style) Define() util.PropertyUpdate {
	ret := make([]util.PropertyUpdate, 0, len(s.attrs))
	for attr, val := range s.attrs {
		ret = append(ret, util.StringProperty(keyPrefix+attr, val))
	}
	return util.Chain(ret...)
}

// With sets the specified attribute type and value in the receiver.
func (s *Style) With(attrType string, attrVal string) *Style {
	s.attrs[attrType] = attrVal
	return s
}

// Get returns the value of the specified attribute, and whether it was set.
func (s *Style) Get(attrType string) (string, bool) {
	val, ok := s.attrs[attrType]
	return val, ok
}

// Px formats the provided value as a pixel specifier.
func Px(valPx float64) string {
	return fmt.Sprintf("%.2fpx", valPx)
}

// Opacity formats the provided opacity, clamped to [0, 1].
func Opacity(val float64) string {
	switch {
	case val < 0:
		val = 0
	case val > 1:
		val = 1
	}
	return strconv.FormatFloat(val, 'f', -1, 64)
}

// WithFillOpacity returns a Style carrying only a fill opacity.
func WithFillOpacity(val float64) *Style {
	return New().With(FillOpacity, Opacity(val))
}
