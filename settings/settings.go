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

// Package settings defines the user-facing formatting settings of a bar chart
// visual, their defaults, and which of them are relevant for a given chart.
package settings

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ilhamster/barviz/color"
	"github.com/ilhamster/barviz/label"
	"gopkg.in/yaml.v3"
)

// Legend positions.
const (
	LegendTop    = "top"
	LegendBottom = "bottom"
	LegendLeft   = "left"
	LegendRight  = "right"
)

// Small multiple layouts.
const (
	// GridLayout places facets in rows by the row field and columns by the
	// column field.
	GridLayout = "grid"
	// FlowLayout wraps facets into a fixed number of columns.
	FlowLayout = "flow"
)

// Legend configures the legend.
type Legend struct {
	Show      bool   `yaml:"show"`
	Position  string `yaml:"position"`
	ShowTitle bool   `yaml:"show_title"`
	Title     string `yaml:"title"`
	// HeightPx is the space reserved for a top or bottom legend, and WidthPx
	// for a left or right one.
	HeightPx float64 `yaml:"height_px"`
	WidthPx  float64 `yaml:"width_px"`
}

// DataLabels configures the labels drawn on bars.
type DataLabels struct {
	Show         bool        `yaml:"show"`
	DisplayUnits label.Units `yaml:"display_units"`
	Precision    int         `yaml:"precision"`
}

// SmallMultiple configures the faceted layout.
type SmallMultiple struct {
	Layout        string  `yaml:"layout"`
	Columns       int     `yaml:"columns"`
	SharedYScale  bool    `yaml:"shared_y_scale"`
	CellPaddingPx float64 `yaml:"cell_padding_px"`
	ShowTitles    bool    `yaml:"show_titles"`
	TitleHeightPx float64 `yaml:"title_height_px"`
}

// Selection configures selection rendering.
type Selection struct {
	DimmedOpacity    float64 `yaml:"dimmed_opacity"`
	SelectedOpacity  float64 `yaml:"selected_opacity"`
	LassoFill        string  `yaml:"lasso_fill"`
	LassoFillOpacity float64 `yaml:"lasso_fill_opacity"`
	LassoStroke      string  `yaml:"lasso_stroke"`
}

// Interaction configures pointer handling.
type Interaction struct {
	// DragThresholdPx is how far the pointer must move from a mousedown before
	// a small multiple gesture becomes a drag.
	DragThresholdPx float64 `yaml:"drag_threshold_px"`
	// WheelStep is how many categories one wheel notch scrolls.
	WheelStep int `yaml:"wheel_step"`
}

// CategoryAxis configures the category axis.
type CategoryAxis struct {
	Show               bool    `yaml:"show"`
	MinCategoryWidthPx int64   `yaml:"min_category_width_px"`
	PaddingRatio       float64 `yaml:"padding_ratio"`
	LabelHeightPx      int64   `yaml:"label_height_px"`
}

// ValueAxis configures the value axis.
type ValueAxis struct {
	Show           bool  `yaml:"show"`
	LabelWidthPx   int64 `yaml:"label_width_px"`
	MarkersWidthPx int64 `yaml:"markers_width_px"`
}

// Settings holds every formatting setting of a visual.
type Settings struct {
	Legend        Legend        `yaml:"legend"`
	DataLabels    DataLabels    `yaml:"data_labels"`
	SmallMultiple SmallMultiple `yaml:"small_multiple"`
	Selection     Selection     `yaml:"selection"`
	Interaction   Interaction   `yaml:"interaction"`
	CategoryAxis  CategoryAxis  `yaml:"category_axis"`
	ValueAxis     ValueAxis     `yaml:"value_axis"`
}

// Default returns the default Settings.
func Default() *Settings {
	return &Settings{
		Legend: Legend{
			Show:      true,
			Position:  LegendTop,
			ShowTitle: true,
			HeightPx:  24,
			WidthPx:   120,
		},
		DataLabels: DataLabels{
			Show:         false,
			DisplayUnits: label.Auto,
			Precision:    2,
		},
		SmallMultiple: SmallMultiple{
			Layout:        GridLayout,
			Columns:       3,
			SharedYScale:  true,
			CellPaddingPx: 16,
			ShowTitles:    true,
			TitleHeightPx: 20,
		},
		Selection: Selection{
			DimmedOpacity:    0.4,
			SelectedOpacity:  1.0,
			LassoFill:        "#01b8aa",
			LassoFillOpacity: 0.1,
			LassoStroke:      "#374649",
		},
		Interaction: Interaction{
			DragThresholdPx: 4,
			WheelStep:       1,
		},
		CategoryAxis: CategoryAxis{
			Show:               true,
			MinCategoryWidthPx: 24,
			PaddingRatio:       0.2,
			LabelHeightPx:      20,
		},
		ValueAxis: ValueAxis{
			Show:           true,
			LabelWidthPx:   40,
			MarkersWidthPx: 6,
		},
	}
}

// Load reads YAML settings from r over the defaults.  Omitted settings keep
// their default values.
func Load(r io.Reader) (*Settings, error) {
	s := Default()
	if err := yaml.NewDecoder(r).Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the receiver's settings are in range.
func (s *Settings) Validate() error {
	switch s.Legend.Position {
	case LegendTop, LegendBottom, LegendLeft, LegendRight:
	default:
		return fmt.Errorf("unsupported legend position '%s'", s.Legend.Position)
	}
	if _, err := label.ParseUnits(string(s.DataLabels.DisplayUnits)); err != nil {
		return err
	}
	if s.DataLabels.Precision < 0 {
		return fmt.Errorf("data label precision must be non-negative, got %d", s.DataLabels.Precision)
	}
	switch s.SmallMultiple.Layout {
	case GridLayout, FlowLayout:
	default:
		return fmt.Errorf("unsupported small multiple layout '%s'", s.SmallMultiple.Layout)
	}
	if s.SmallMultiple.Columns < 1 {
		return fmt.Errorf("small multiple columns must be positive, got %d", s.SmallMultiple.Columns)
	}
	for name, o := range map[string]float64{
		"dimmed":     s.Selection.DimmedOpacity,
		"selected":   s.Selection.SelectedOpacity,
		"lasso fill": s.Selection.LassoFillOpacity,
	} {
		if o < 0 || o > 1 {
			return fmt.Errorf("%s opacity must be within [0, 1], got %v", name, o)
		}
	}
	for _, c := range []string{s.Selection.LassoFill, s.Selection.LassoStroke} {
		if !color.Valid(c) {
			return fmt.Errorf("lasso color '%s' is not a hex color", c)
		}
	}
	if s.Interaction.DragThresholdPx < 0 {
		return fmt.Errorf("drag threshold must be non-negative, got %v", s.Interaction.DragThresholdPx)
	}
	if s.Interaction.WheelStep < 1 {
		return fmt.Errorf("wheel step must be positive, got %d", s.Interaction.WheelStep)
	}
	if s.CategoryAxis.PaddingRatio < 0 || s.CategoryAxis.PaddingRatio >= 1 {
		return fmt.Errorf("category padding ratio must be within [0, 1), got %v", s.CategoryAxis.PaddingRatio)
	}
	return nil
}

// Marshal returns the receiver as YAML.
func (s *Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Features describes the bound data, as far as it affects which settings
// apply.
type Features struct {
	HasLegend       bool
	IsSmallMultiple bool
}

// VisibleFields returns the sorted names, as 'object.property', of the
// settings relevant for s and the bound data.
func VisibleFields(s *Settings, f Features) []string {
	var ret []string
	add := func(object string, props ...string) {
		for _, prop := range props {
			ret = append(ret, object+"."+prop)
		}
	}
	if f.HasLegend {
		add("legend", "show")
		if s.Legend.Show {
			add("legend", "position", "show_title")
			if s.Legend.ShowTitle {
				add("legend", "title")
			}
		}
	}
	add("data_labels", "show")
	if s.DataLabels.Show {
		add("data_labels", "display_units", "precision")
	}
	if f.IsSmallMultiple {
		add("small_multiple", "layout", "shared_y_scale", "show_titles")
		if s.SmallMultiple.Layout == FlowLayout {
			add("small_multiple", "columns")
		}
	}
	add("selection", "dimmed_opacity", "selected_opacity")
	add("category_axis", "show")
	if s.CategoryAxis.Show {
		add("category_axis", "min_category_width_px", "padding_ratio")
	}
	add("value_axis", "show")
	sort.Strings(ret)
	return ret
}
