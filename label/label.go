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

// Package label supports labeling renderable items.
package label

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ilhamster/barviz/util"
)

const (
	// labelFormatKey specifies the label format string used to label bars.
	labelFormatKey = "label_format"
)

// Format returns a PropertyUpdate that labels with the provided label format.
// labelFormat may reference properties of the labeled datum as $(key); text
// produced by Text contains no references and is shown verbatim.
func Format(labelFormat string) util.PropertyUpdate {
	return util.StringProperty(labelFormatKey, labelFormat)
}

// Units selects how data label values are scaled for display.
type Units string

// Supported display units.
const (
	Auto      Units = "auto"
	None      Units = "none"
	Thousands Units = "thousands"
	Millions  Units = "millions"
	Billions  Units = "billions"
)

// ParseUnits returns the Units named by s.  The empty string is Auto.
func ParseUnits(s string) (Units, error) {
	switch u := Units(strings.ToLower(s)); u {
	case "":
		return Auto, nil
	case Auto, None, Thousands, Millions, Billions:
		return u, nil
	default:
		return "", fmt.Errorf("unsupported display units '%s'", s)
	}
}

// Options controls data label text.
type Options struct {
	Units Units
	// Precision is the maximum number of decimal digits shown; trailing zeros
	// are dropped.
	Precision int
}

// Text returns the display text of a data label for value.
func Text(value float64, opts Options) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ""
	}
	precision := opts.Precision
	if precision < 0 {
		precision = 0
	}
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	switch opts.Units {
	case None:
		return sign + humanize.CommafWithDigits(round(value, precision), precision)
	case Thousands:
		return sign + humanize.FtoaWithDigits(round(value/1e3, precision), precision) + "K"
	case Millions:
		return sign + humanize.FtoaWithDigits(round(value/1e6, precision), precision) + "M"
	case Billions:
		return sign + humanize.FtoaWithDigits(round(value/1e9, precision), precision) + "bn"
	default:
		scaled, prefix := humanize.ComputeSI(value)
		return sign + humanize.FtoaWithDigits(round(scaled, precision), precision) + prefix
	}
}

// humanize truncates to the requested digits.
func round(value float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(value*scale) / scale
}
