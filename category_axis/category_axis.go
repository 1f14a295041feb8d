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

// Package categoryaxis provides helpers for defining category axis data.
package categoryaxis

import (
	"github.com/ilhamster/barviz/category"
	"github.com/ilhamster/barviz/util"
)

const (
	categoryLabelCatPxKey     = "category_label_cat_px"
	categoryPaddingRatioKey   = "category_padding_ratio"
	categoryMinWidthCatPxKey  = "category_min_width_cat_px"
	categoryBandWidthCatPxKey = "category_band_width_cat_px"
	categoryKeysKey           = "category_keys"
	categoryLabelsKey         = "category_labels"
)

// RenderSettings is a collection of rendering settings for category axes.  A
// category axis divides its extent into equal bands, one per category, and
// bars are drawn inside their category's band.  The other, non-category,
// axis is termed the value ('Val') axis.
//
// Extents along the category axis are suffixed 'CatPx'.
type RenderSettings struct {
	// The height of the category label row beneath the bands.
	CategoryLabelCatPx int64
	// The fraction of each band left empty between adjacent bars.
	CategoryPaddingRatio float64
	// The minimum width of a band.  Categories that would be narrower are
	// scrolled rather than squeezed.
	CategoryMinWidthCatPx int64
}

// Define applies the receiver as a set of properties.
func (rs *RenderSettings) Define() util.PropertyUpdate {
	return util.Chain(
		util.IntegerProperty(categoryLabelCatPxKey, rs.CategoryLabelCatPx),
		util.DoubleProperty(categoryPaddingRatioKey, rs.CategoryPaddingRatio),
		util.IntegerProperty(categoryMinWidthCatPxKey, rs.CategoryMinWidthCatPx),
	)
}

// Band maps an ordered set of category keys onto equal bands.
type Band struct {
	cat          *category.Category
	keys         []string
	index        map[string]int
	paddingRatio float64
}

// NewBand returns a new Band over the provided normalized category keys.
// Repeated keys keep their first position.
func NewBand(cat *category.Category, keys []string, paddingRatio float64) *Band {
	b := &Band{
		cat:          cat,
		index:        make(map[string]int, len(keys)),
		paddingRatio: paddingRatio,
	}
	for _, key := range keys {
		if _, ok := b.index[key]; ok {
			continue
		}
		b.index[key] = len(b.keys)
		b.keys = append(b.keys, key)
	}
	if b.paddingRatio < 0 {
		b.paddingRatio = 0
	}
	if b.paddingRatio >= 1 {
		b.paddingRatio = 0.9
	}
	return b
}

// Keys returns the receiver's category keys in order.
func (b *Band) Keys() []string {
	return b.keys
}

func (b *Band) labels() []string {
	ret := make([]string, len(b.keys))
	for idx, key := range b.keys {
		ret[idx] = category.Label(key)
	}
	return ret
}

// Len returns the number of categories in the receiver.
func (b *Band) Len() int {
	return len(b.keys)
}

// Index returns the position of the provided key, and whether it is present.
func (b *Band) Index(key string) (int, bool) {
	idx, ok := b.index[key]
	return idx, ok
}

// Step returns the width of one band when the receiver spans lengthPx.
func (b *Band) Step(lengthPx float64) float64 {
	if len(b.keys) == 0 {
		return 0
	}
	return lengthPx / float64(len(b.keys))
}

// Position returns the start and width of the bar area within the band at
// position idx, when the receiver spans lengthPx.
func (b *Band) Position(idx int, lengthPx float64) (start, width float64) {
	step := b.Step(lengthPx)
	inner := step * b.paddingRatio
	return float64(idx)*step + inner/2, step - inner
}

// Define annotates with a definition of the receiver spanning lengthPx.
func (b *Band) Define(lengthPx float64) util.PropertyUpdate {
	return util.Chain(
		b.cat.Define(),
		util.StringsProperty(categoryKeysKey, b.keys...),
		util.StringsProperty(categoryLabelsKey, b.labels()...),
		util.DoubleProperty(categoryBandWidthCatPxKey, b.Step(lengthPx)),
	)
}
