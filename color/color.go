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

// Package color supports coloring bar chart items.
//
// A single Datum may be annotated with colors for up to three different types:
// a primary, secondary, and stroke color.  These correspond to Material
// Design's primary, secondary, and text/iconography/stroke colors, as
// described in https://material.io/design/color/the-color-system.html.
//
// Within barviz, these different color types have specific meanings:
//
//   - The primary color is a bar's fill.  Within a legended chart it
//     identifies the bar's legend series.
//   - The secondary color is used for accents: the outline of selected bars
//     and the fill of the lasso rectangle.
//   - The stroke color is used for text, iconography, or strokes, including
//     the lasso rectangle's border.
//
// Each color is a string containing an HTML color representation: a color
// name or a RGB, RGBA, HSL, HSLA, or hex color specifier.
//
// Series colors are drawn from a Palette, which starts with a fixed sequence
// of base colors and extends it deterministically when more series are needed.
package color

import (
	"fmt"
	"math"

	"github.com/ilhamster/barviz/util"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	primaryColorKey   = "primary_color"
	secondaryColorKey = "secondary_color"
	strokeColorKey    = "stroke_color"
)

// Primary annotates a Datum with the specified primary color.
func Primary(colorValue string) util.PropertyUpdate {
	return util.StringProperty(primaryColorKey, colorValue)
}

// Secondary annotates a Datum with the specified secondary color.
func Secondary(colorValue string) util.PropertyUpdate {
	return util.StringProperty(secondaryColorKey, colorValue)
}

// Stroke annotates a Datum with the specified stroke color.
func Stroke(colorValue string) util.PropertyUpdate {
	return util.StringProperty(strokeColorKey, colorValue)
}

// DefaultColors is the base sequence of the default Palette.
var DefaultColors = []string{
	"#01b8aa", "#374649", "#fd625e", "#f2c80f", "#5f6b6d",
	"#8ad4eb", "#fe9666", "#a66999", "#3599b8", "#dfbfbf",
}

// goldenAngle spreads generated hues so that consecutive colors stay apart.
const goldenAngle = 137.50776405003785

// Palette assigns colors to series by position.
type Palette struct {
	base []string
}

// NewPalette returns a Palette starting with the provided base colors, each of
// which must be a hex color specifier.
func NewPalette(base ...string) (*Palette, error) {
	for _, c := range base {
		if _, err := colorful.Hex(c); err != nil {
			return nil, fmt.Errorf("invalid palette color '%s': %w", c, err)
		}
	}
	return &Palette{base: base}, nil
}

// DefaultPalette returns a Palette starting with DefaultColors.
func DefaultPalette() *Palette {
	return &Palette{base: DefaultColors}
}

// Color returns the color of the series at position idx.  Positions beyond the
// base colors get generated colors of even lightness and chroma.
func (p *Palette) Color(idx int) string {
	if idx < 0 {
		idx = 0
	}
	if idx < len(p.base) {
		return p.base[idx]
	}
	hue := math.Mod(float64(idx-len(p.base))*goldenAngle, 360)
	return colorful.Hcl(hue, 0.55, 0.6).Clamped().Hex()
}

// Colors returns the first n colors of the receiver.
func (p *Palette) Colors(n int) []string {
	ret := make([]string, n)
	for idx := range ret {
		ret[idx] = p.Color(idx)
	}
	return ret
}

// Valid returns true if the provided string is a hex color specifier.
func Valid(colorValue string) bool {
	_, err := colorful.Hex(colorValue)
	return err == nil
}

// Blend returns the color at position t along the line from a to b in CIE
// L*a*b* space; both must be hex color specifiers.
func Blend(a, b string, t float64) (string, error) {
	ca, err := colorful.Hex(a)
	if err != nil {
		return "", fmt.Errorf("invalid color '%s': %w", a, err)
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return "", fmt.Errorf("invalid color '%s': %w", b, err)
	}
	return ca.BlendLab(cb, t).Clamped().Hex(), nil
}
