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

// Package category supports declaring data categories, such as bar chart
// category lanes, legend series, or table columns, and grouping bar chart data
// points by category.
//
// A single DataBuilder may define one Category, and may store data pertaining
// to that category in child DataBuilders; alternatively, DataBuilders may be
// tagged as pertaining to one or more categories defined elsewhere.
//
// Category values arriving from a data view are primitives.  Key normalizes
// them to strings, folding nil and empty values into BlankKey, and Groups
// partitions an ordered key sequence into contiguous runs of equal keys.
package category

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ilhamster/barviz/util"
)

const (
	categoryDefinedIDKey   = "category_defined_id"
	categoryDescriptionKey = "category_description"
	categoryDisplayNameKey = "category_display_name"
	categoryIDsKey         = "category_ids"
)

// Category defines a data category.
type Category struct {
	id, description, displayName string
}

// New returns a new Category with the provided ID, display name, and
// description.
func New(id, displayName, description string) *Category {
	return &Category{
		id:          id,
		description: description,
		displayName: displayName,
	}
}

// Define defines a category.  If multiple categories are Defined on the same
// DataBuilder, only the last takes effect.
func (c *Category) Define() util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(categoryDefinedIDKey, c.id),
		util.StringProperty(categoryDisplayNameKey, c.displayName),
		util.StringProperty(categoryDescriptionKey, c.description),
	)
}

// ID returns the category's ID.
func (c *Category) ID() string {
	return c.id
}

// Tag annotates an item as belonging to a category.  Multiple Categories may
// Tag the same item in succession.
func (c *Category) Tag() util.PropertyUpdate {
	return util.StringsPropertyExtended(categoryIDsKey, c.id)
}

// Tag annotates with the provided set of Categories.
func Tag(cats ...*Category) util.PropertyUpdate {
	categoryIDs := make([]string, len(cats))
	for idx, cat := range cats {
		categoryIDs[idx] = cat.id
	}
	return util.StringsPropertyExtended(categoryIDsKey, categoryIDs...)
}

// BlankKey is the normalized key of a nil or empty category value.
const BlankKey = "(Blank)"

const escape = "\\"

// Key returns the normalized key of a category value.  Nil and empty values
// map to BlankKey.  A value whose text is BlankKey, or begins with a
// backslash, is prefixed with a backslash so that no value collides with
// BlankKey.
func Key(value any) string {
	var text string
	switch v := value.(type) {
	case nil:
		return BlankKey
	case string:
		if v == "" {
			return BlankKey
		}
		text = v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		text = fmt.Sprint(v)
	}
	if text == BlankKey || strings.HasPrefix(text, escape) {
		return escape + text
	}
	return text
}

// Label returns the display text of a key returned by Key.
func Label(key string) string {
	return strings.TrimPrefix(key, escape)
}

// Group is a contiguous run of data points sharing a category key.  Start and
// End delimit the run as a half-open range of positions.
type Group struct {
	Key        string
	Start, End int
}

// Len returns the number of points in the receiver.
func (g Group) Len() int {
	return g.End - g.Start
}

// Indices returns the positions covered by the receiver.
func (g Group) Indices() []int {
	ret := make([]int, 0, g.Len())
	for i := g.Start; i < g.End; i++ {
		ret = append(ret, i)
	}
	return ret
}

// Groups partitions keys, which should already be normalized with Key, into
// contiguous runs of equal keys, in order.
func Groups(keys []string) []Group {
	var ret []Group
	for idx, key := range keys {
		if len(ret) > 0 && ret[len(ret)-1].Key == key {
			ret[len(ret)-1].End = idx + 1
			continue
		}
		ret = append(ret, Group{Key: key, Start: idx, End: idx + 1})
	}
	return ret
}
