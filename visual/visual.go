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

// Package visual ties a bar chart visual together: it converts each update's
// table into data points, lays them out, restores the persisted selection on
// the first update, and routes pointer events to the selection engine that
// matches the current layout.
//
// A Visual is not safe for concurrent use; its owner must serialize calls.
package visual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ilhamster/barviz/color"
	datapoint "github.com/ilhamster/barviz/data_point"
	dataview "github.com/ilhamster/barviz/data_view"
	"github.com/ilhamster/barviz/host"
	"github.com/ilhamster/barviz/layout"
	"github.com/ilhamster/barviz/persistence"
	"github.com/ilhamster/barviz/selection"
	"github.com/ilhamster/barviz/settings"
	settingsstore "github.com/ilhamster/barviz/settings_store"
)

// ErrNotUpdated is returned when a visual is rendered before its first update.
var ErrNotUpdated = errors.New("visual has no data")

// Options configures a new Visual.
type Options struct {
	ID string
	// Settings defaults to settings.Default().
	Settings *settings.Settings
	// Store defaults to a new in-memory store.
	Store settingsstore.Store
	// Palette defaults to color.DefaultPalette().
	Palette *color.Palette
	Logger  *slog.Logger
}

// Visual is one bar chart visual instance.
type Visual struct {
	id          string
	settings    *settings.Settings
	palette     *color.Palette
	logger      *slog.Logger
	manager     *host.SelectionManager
	persistence *persistence.Persistence
	single      *selection.SingleChartEngine
	multiple    *selection.SmallMultipleEngine
	active      selection.Engine

	viewport layout.Viewport
	data     *datapoint.Data
	frame    *layout.Frame
	scroll   int
}

// New returns a new Visual.
func New(opts Options) *Visual {
	if opts.Settings == nil {
		opts.Settings = settings.Default()
	}
	if opts.Store == nil {
		opts.Store = settingsstore.NewMemoryStore()
	}
	if opts.Palette == nil {
		opts.Palette = color.DefaultPalette()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger.With("visual", opts.ID)
	v := &Visual{
		id:          opts.ID,
		settings:    opts.Settings,
		palette:     opts.Palette,
		logger:      logger,
		manager:     host.NewSelectionManager(nil),
		persistence: persistence.New(opts.Store, opts.ID, opts.Logger),
	}
	v.single = selection.NewSingleChartEngine(v.manager, v.persistence, v.settings, logger)
	v.multiple = selection.NewSmallMultipleEngine(v.manager, v.persistence, v.settings, logger)
	return v
}

// ID returns the receiver's ID.
func (v *Visual) ID() string {
	return v.id
}

// Settings returns the receiver's settings.
func (v *Visual) Settings() *settings.Settings {
	return v.settings
}

// Selection returns the host's record of the selected identity keys.
func (v *Visual) Selection() *host.SelectionManager {
	return v.manager
}

// Data returns the receiver's current data points, or nil before the first
// update.
func (v *Visual) Data() *datapoint.Data {
	return v.data
}

// Frame returns the receiver's current layout, or nil before the first update.
func (v *Visual) Frame() *layout.Frame {
	return v.frame
}

// Engine returns the selection engine handling pointer events.
func (v *Visual) Engine() selection.Engine {
	return v.active
}

// Update replaces the receiver's data with table, laid out in vp.  Points
// selected in the host stay selected.  On the first update, the persisted
// selection is restored.
func (v *Visual) Update(ctx context.Context, table *dataview.Table, vp layout.Viewport) error {
	data, err := datapoint.Convert(table, datapoint.Options{
		IsSelected: v.manager.IsSelected,
		Palette:    v.palette,
	})
	if err != nil {
		return fmt.Errorf("failed to convert '%s': %w", table.Name, err)
	}
	v.viewport, v.data = vp, data
	v.relayout()
	if !v.persistence.Restored() {
		v.persistence.Restore(data, v.persistence.Persisted(ctx), v.manager)
	}
	v.bind()
	v.logger.Debug("updated visual",
		"points", len(data.Points), "facets", len(data.Facets),
		"small_multiple", data.IsSmallMultiple, "selected", v.manager.Len())
	return nil
}

// Resize lays the current data out in vp.
func (v *Visual) Resize(vp layout.Viewport) {
	v.viewport = vp
	if v.data == nil {
		return
	}
	v.relayout()
	v.bind()
}

// UpdateSettings replaces the receiver's settings and lays the current data
// out again.
func (v *Visual) UpdateSettings(s *settings.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	// The engines share the settings value.
	*v.settings = *s
	if v.data != nil {
		v.relayout()
		v.bind()
	}
	return nil
}

func (v *Visual) relayout() {
	if v.data.IsSmallMultiple {
		v.frame = layout.SmallMultiple(v.data, v.viewport, v.settings)
		return
	}
	v.frame = layout.Single(v.data, v.viewport, v.settings, v.scroll)
	v.scroll = v.frame.Scroll
}

// bind hands the current data and frame to the engine matching the layout,
// disabling the other one first.
func (v *Visual) bind() {
	var next selection.Engine = v.single
	if v.data.IsSmallMultiple {
		next = v.multiple
	}
	if next != v.active {
		if v.active != nil {
			v.active.Disable()
		}
		next.Enable()
		v.active = next
	}
	next.Bind(v.data, v.frame)
}

// HandleEvent dispatches a pointer event.  Wheel events scroll the category
// window of a single chart; others go to the active selection engine.
func (v *Visual) HandleEvent(ctx context.Context, ev selection.Event) error {
	if v.active == nil {
		return nil
	}
	if ev.Type == selection.Wheel {
		v.wheel(ev.WheelDelta)
		return nil
	}
	return v.active.HandleEvent(ctx, ev)
}

func (v *Visual) wheel(delta float64) {
	if v.data == nil || v.data.IsSmallMultiple || v.frame.MaxScroll == 0 {
		return
	}
	step := v.settings.Interaction.WheelStep
	switch {
	case delta > 0:
		v.scroll += step
	case delta < 0:
		v.scroll -= step
	default:
		return
	}
	v.scroll = min(max(v.scroll, 0), v.frame.MaxScroll)
	v.relayout()
	v.bind()
}

// Features returns the properties of the bound data that affect which
// settings apply.
func (v *Visual) Features() settings.Features {
	if v.data == nil {
		return settings.Features{}
	}
	return settings.Features{
		HasLegend:       v.data.HasLegend,
		IsSmallMultiple: v.data.IsSmallMultiple,
	}
}

// SettingsFields returns the settings fields shown in the property pane.
func (v *Visual) SettingsFields() []string {
	return settings.VisibleFields(v.settings, v.Features())
}
