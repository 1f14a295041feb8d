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

package selection

import (
	"context"
	"fmt"
	"log/slog"

	datapoint "github.com/ilhamster/barviz/data_point"
	hittest "github.com/ilhamster/barviz/hit_test"
	"github.com/ilhamster/barviz/layout"
	"github.com/ilhamster/barviz/settings"
)

// SingleChartEngine selects points of a single, possibly scrolled, chart.
//
// A plain mousedown drops the committed selection at once; the host learns of
// it on the first movement, or at mouseup for a click.  A click marks its
// target selected, or with ctrl toggles it, and never deselects otherwise.
// In stacked-without-legend data, marks spread over whole category runs.
//
// The mousedown drop is provisional until the host is told.  A gesture
// abandoned before its first movement, by Disable, by another mousedown or by
// a rejected commit, restores the dropped selection instead of leaving it
// cleared.  The clear is therefore not unconditional.
type SingleChartEngine struct {
	base
	store *Store
	// dropped holds the indices a plain mousedown unselected, restored if the
	// gesture is abandoned before the host is told.
	dropped []int
}

var _ Engine = &SingleChartEngine{}

// NewSingleChartEngine returns a new, unbound SingleChartEngine.
func NewSingleChartEngine(handler Handler, persister Persister, s *settings.Settings, logger *slog.Logger) *SingleChartEngine {
	return &SingleChartEngine{
		base: newBase(handler, persister, s, logger, "single_chart"),
	}
}

// Bind implements Engine.
func (e *SingleChartEngine) Bind(data *datapoint.Data, frame *layout.Frame) {
	if data != e.data {
		e.g, e.dropped = nil, nil
		e.data = data
		e.scopes = nil
		e.store = nil
		if data != nil {
			e.store = NewStore(len(data.Points))
			for idx, p := range data.Points {
				if p.Selected {
					e.store.Set(idx, Selected)
				}
			}
			if data.StackedWithoutLegend() {
				for _, g := range data.Groups() {
					e.scopes = append(e.scopes, g.Indices())
				}
			}
		}
	}
	e.frame = frame
	if e.data != nil && e.frame != nil {
		e.refreshOpacity(e.store)
	}
}

// Mark implements Engine.
func (e *SingleChartEngine) Mark(index int) Mark {
	if e.store == nil {
		return None
	}
	return e.store.Get(index)
}

// Disable implements Engine.
func (e *SingleChartEngine) Disable() {
	e.abandon()
	e.disabled = true
}

// HandleEvent implements Engine.
func (e *SingleChartEngine) HandleEvent(ctx context.Context, ev Event) error {
	if !e.bound() {
		return nil
	}
	switch ev.Type {
	case MouseDown:
		e.mouseDown(ev)
	case MouseMove:
		e.mouseMove(ctx, ev)
	case MouseUp:
		return e.mouseUp(ctx, ev)
	}
	return nil
}

// syncCommitted copies committed marks onto the points.
func (e *SingleChartEngine) syncCommitted() {
	for idx, p := range e.data.Points {
		m := e.store.Get(idx)
		p.Selected = m == Selected || m == JustRemoved
	}
}

// abandon discards the gesture in progress.
func (e *SingleChartEngine) abandon() {
	if e.g == nil || e.store == nil {
		e.g = nil
		return
	}
	e.store.ClearProvisional()
	if !e.g.cleared {
		for _, idx := range e.dropped {
			e.store.Set(idx, Selected)
		}
	}
	e.syncCommitted()
	e.g, e.dropped = nil, nil
	if e.frame != nil {
		e.refreshOpacity(e.store)
	}
}

func (e *SingleChartEngine) mouseDown(ev Event) {
	e.abandon()
	var selected []int
	for idx := 0; idx < e.store.Len(); idx++ {
		if e.store.Get(idx) == Selected {
			selected = append(selected, idx)
		}
	}
	e.g = newGesture(ev, len(selected) > 0)
	if !ev.Ctrl {
		e.dropped = selected
		e.store.Clear()
		e.syncCommitted()
		e.refreshOpacity(e.store)
	}
}

func (e *SingleChartEngine) mouseMove(ctx context.Context, ev Event) {
	g := e.g
	if g == nil {
		return
	}
	p := hittest.Point{X: ev.X, Y: ev.Y}
	if !g.lasso.Started {
		if p == g.lasso.Start {
			return
		}
		g.lasso.Started = true
		if !g.ctrl {
			e.handler.HandleClearSelection()
			g.cleared = true
			e.persist(ctx)
		}
	}
	g.lasso.Current = p
	g.sweep(g.lasso.Rect(), e.frame.Elements, e.store)
	if e.scopes != nil && g.mode != undetermined {
		propagate(e.scopes, e.store, g.mode, true)
	}
	e.refreshOpacity(e.store)
}

// click marks the element under the pointer.
func (e *SingleChartEngine) click(g *gesture) {
	el, ok := e.frame.ElementAt(g.lasso.Current)
	if !ok {
		return
	}
	idx := e.frame.Elements[el].Index
	if g.ctrl && e.store.Get(idx) == Selected {
		e.store.Set(idx, JustRemoved)
	} else {
		e.store.Set(idx, JustSelected)
	}
	g.mode = clickMode(e.store, []int{idx})
	if e.scopes != nil {
		propagate(e.scopes, e.store, g.mode, true)
	}
}

func (e *SingleChartEngine) mouseUp(ctx context.Context, ev Event) error {
	g := e.g
	if g == nil {
		return nil
	}
	g.lasso.Current = hittest.Point{X: ev.X, Y: ev.Y}
	if !g.lasso.Started {
		e.click(g)
	}
	all := allIndices(e.store.Len())
	if err := validate(e.store, all); err != nil {
		e.abandon()
		return fmt.Errorf("gesture from (%v, %v) to (%v, %v): %w",
			g.lasso.Start.X, g.lasso.Start.Y, ev.X, ev.Y, err)
	}
	touched := commit(e.store, all, func(idx int, selected bool) {
		if selected {
			e.store.Set(idx, Selected)
		} else {
			e.store.Set(idx, None)
		}
	})
	e.g, e.dropped = nil, nil
	e.syncCommitted()
	switch {
	case len(touched) > 0:
		e.handler.HandleSelection(e.points(touched), g.ctrl)
	case g.hadSelection && !g.cleared && e.store.Count()[Selected] == 0:
		e.handler.HandleClearSelection()
	}
	e.persist(ctx)
	e.refreshOpacity(e.store)
	e.logger.Debug("committed selection",
		"click", !g.lasso.Started, "ctrl", g.ctrl, "mode", g.mode.String(),
		"touched", len(touched))
	return nil
}
