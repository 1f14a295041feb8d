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
	"math"

	datapoint "github.com/ilhamster/barviz/data_point"
	hittest "github.com/ilhamster/barviz/hit_test"
	"github.com/ilhamster/barviz/layout"
	"github.com/ilhamster/barviz/settings"
)

// SmallMultipleEngine selects points across the facets of a small multiple.
//
// A mousedown only records its origin.  The gesture becomes a drag once the
// pointer moves further than the drag threshold, at which point a plain drag
// drops the committed selection.  Provisional marks live in a side table
// keyed by identity; points' Selected fields change only at commit.  Without
// a legend, marks spread over each category within its facet.
type SmallMultipleEngine struct {
	base
	side *sideTable
	// baselineCleared is true once the current gesture has dropped the
	// committed selection.
	baselineCleared bool
	// scopeOf maps a full index to its position in scopes.
	scopeOf []int
}

var _ Engine = &SmallMultipleEngine{}

// NewSmallMultipleEngine returns a new, unbound SmallMultipleEngine.
func NewSmallMultipleEngine(handler Handler, persister Persister, s *settings.Settings, logger *slog.Logger) *SmallMultipleEngine {
	return &SmallMultipleEngine{
		base: newBase(handler, persister, s, logger, "small_multiple"),
		side: newSideTable(),
	}
}

// smallMultipleMarks presents committed and provisional state as marks.
type smallMultipleMarks struct {
	e *SmallMultipleEngine
}

func (m smallMultipleMarks) get(index int) Mark {
	if index < 0 || index >= len(m.e.data.Points) {
		return None
	}
	p := m.e.data.Points[index]
	if mk, ok := m.e.side.get(p.Identity); ok {
		return mk
	}
	if p.Selected && !m.e.baselineCleared {
		return Selected
	}
	return None
}

func (m smallMultipleMarks) set(index int, mk Mark) {
	if index < 0 || index >= len(m.e.data.Points) {
		return
	}
	m.e.side.set(m.e.data.Points[index].Identity, mk)
}

func (e *SmallMultipleEngine) marks() smallMultipleMarks {
	return smallMultipleMarks{e: e}
}

// propagating returns true if marks spread over categories.
func (e *SmallMultipleEngine) propagating() bool {
	return !e.data.HasLegend
}

// Bind implements Engine.
func (e *SmallMultipleEngine) Bind(data *datapoint.Data, frame *layout.Frame) {
	if data != e.data {
		e.abandon()
		e.data = data
		e.scopes, e.scopeOf = nil, nil
		if data != nil {
			e.scopeOf = make([]int, len(data.Points))
			for _, facet := range data.Facets {
				byCategory := map[string]int{}
				for _, idx := range facet.Points {
					key := data.Points[idx].CategoryKey
					scope, ok := byCategory[key]
					if !ok {
						scope = len(e.scopes)
						byCategory[key] = scope
						e.scopes = append(e.scopes, nil)
					}
					e.scopes[scope] = append(e.scopes[scope], idx)
					e.scopeOf[idx] = scope
				}
			}
		}
	}
	e.frame = frame
	if e.data != nil && e.frame != nil {
		e.refreshOpacity(e.marks())
	}
}

// Mark implements Engine.
func (e *SmallMultipleEngine) Mark(index int) Mark {
	if e.data == nil {
		return None
	}
	return e.marks().get(index)
}

// Disable implements Engine.
func (e *SmallMultipleEngine) Disable() {
	e.abandon()
	e.disabled = true
}

// HandleEvent implements Engine.
func (e *SmallMultipleEngine) HandleEvent(ctx context.Context, ev Event) error {
	if !e.bound() {
		return nil
	}
	switch ev.Type {
	case MouseDown:
		e.mouseDown(ev)
	case MouseMove:
		e.mouseMove(ev)
	case MouseUp:
		return e.mouseUp(ctx, ev)
	}
	return nil
}

// abandon discards the gesture in progress.
func (e *SmallMultipleEngine) abandon() {
	e.side.clear()
	e.baselineCleared = false
	e.g = nil
	if e.data != nil && e.frame != nil {
		e.refreshOpacity(e.marks())
	}
}

// clearAll drops the committed selection and every provisional mark for the
// rest of the gesture.
func (e *SmallMultipleEngine) clearAll() {
	e.side.clear()
	e.baselineCleared = true
}

func (e *SmallMultipleEngine) anySelected() bool {
	for _, p := range e.data.Points {
		if p.Selected {
			return true
		}
	}
	return false
}

func (e *SmallMultipleEngine) highlightActive() bool {
	for _, p := range e.data.Points {
		if p.Highlight {
			return true
		}
	}
	return false
}

func (e *SmallMultipleEngine) mouseDown(ev Event) {
	e.abandon()
	e.g = newGesture(ev, e.anySelected())
}

func (e *SmallMultipleEngine) mouseMove(ev Event) {
	g := e.g
	if g == nil {
		return
	}
	g.lasso.Current = hittest.Point{X: ev.X, Y: ev.Y}
	if !g.lasso.Started {
		dx, dy := g.lasso.Current.X-g.lasso.Start.X, g.lasso.Current.Y-g.lasso.Start.Y
		if math.Hypot(dx, dy) <= e.settings.Interaction.DragThresholdPx {
			return
		}
		g.lasso.Started = true
		if !g.ctrl {
			e.clearAll()
			g.cleared = true
		}
	}
	marks := e.marks()
	g.sweep(g.lasso.Rect(), e.frame.Elements, marks)
	if e.propagating() && g.mode != undetermined {
		propagate(e.scopes, marks, g.mode, false)
	}
	e.refreshOpacity(marks)
}

// onlySelectedUnit returns true if every committed-selected point belongs to
// the selection unit of the point at index: its category within its facet
// when marks propagate, and the point alone otherwise.
func (e *SmallMultipleEngine) onlySelectedUnit(index int) bool {
	for idx, p := range e.data.Points {
		if !p.Selected || idx == index {
			continue
		}
		if !e.propagating() || e.scopeOf[idx] != e.scopeOf[index] {
			return false
		}
	}
	return true
}

// click resolves a gesture that never became a drag.
func (e *SmallMultipleEngine) click(g *gesture) {
	marks := e.marks()
	el, ok := e.frame.ElementAt(g.lasso.Current)
	if !ok {
		if !g.ctrl {
			e.clearAll()
		}
		return
	}
	idx := e.frame.Elements[el].Index
	switch {
	case g.ctrl:
		if marks.get(idx) == Selected {
			marks.set(idx, JustRemoved)
		} else {
			marks.set(idx, JustSelected)
		}
	case marks.get(idx) != Selected:
		e.clearAll()
		marks.set(idx, JustSelected)
	case e.onlySelectedUnit(idx):
		e.clearAll()
		return
	default:
		e.clearAll()
		marks.set(idx, JustSelected)
	}
	g.mode = clickMode(marks, []int{idx})
	if e.propagating() {
		propagate(e.scopes, marks, g.mode, false)
	}
}

func (e *SmallMultipleEngine) mouseUp(ctx context.Context, ev Event) error {
	g := e.g
	if g == nil {
		return nil
	}
	g.lasso.Current = hittest.Point{X: ev.X, Y: ev.Y}
	if !g.lasso.Started {
		e.click(g)
	}
	marks := e.marks()
	all := allIndices(len(e.data.Points))
	if err := validate(marks, all); err != nil {
		e.abandon()
		return fmt.Errorf("gesture from (%v, %v) to (%v, %v): %w",
			g.lasso.Start.X, g.lasso.Start.Y, ev.X, ev.Y, err)
	}
	if e.baselineCleared {
		// Points marked in the side table are committed below.
		for _, p := range e.data.Points {
			if _, ok := e.side.get(p.Identity); !ok {
				p.Selected = false
			}
		}
	}
	touched := commit(marks, all, func(idx int, selected bool) {
		e.data.Points[idx].Selected = selected
	})
	e.side.clear()
	e.baselineCleared = false
	e.g = nil
	switch {
	case len(touched) > 0:
		e.handler.HandleSelection(e.points(touched), g.ctrl)
	case g.hadSelection && !e.anySelected() && !e.highlightActive():
		e.handler.HandleClearSelection()
	}
	e.persist(ctx)
	e.refreshOpacity(marks)
	e.logger.Debug("committed selection",
		"click", !g.lasso.Started, "ctrl", g.ctrl, "mode", g.mode.String(),
		"touched", len(touched))
	return nil
}
