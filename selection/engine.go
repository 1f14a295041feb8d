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

// Package selection implements the interactive selection of bar chart
// points: clicks, ctrl-modified clicks, and rectangular lasso drags.
//
// Two engines implement Engine.  SingleChartEngine serves the single,
// scrollable chart and keeps its marks in a Store indexed by full point
// position.  SmallMultipleEngine serves the faceted grid and keeps its
// provisional marks in a per-gesture side table keyed by point identity,
// merging them into each point's Selected field only at commit.  Both share
// the lasso hit-testing, mode arbitration, category propagation, and commit
// logic in this package; they differ in the universe of elements they test,
// the scopes they propagate over, and their click rules.
//
// Engines are not safe for concurrent use.  Every event of a visual must be
// handled on one goroutine, in arrival order.
package selection

import (
	"context"
	"log/slog"

	datapoint "github.com/ilhamster/barviz/data_point"
	"github.com/ilhamster/barviz/layout"
	"github.com/ilhamster/barviz/settings"
)

// EventType is the kind of a pointer event.
type EventType string

// Pointer event types.
const (
	MouseDown EventType = "mousedown"
	MouseMove EventType = "mousemove"
	MouseUp   EventType = "mouseup"
	Wheel     EventType = "wheel"
)

// Event is a pointer event in the visual's coordinate space.
type Event struct {
	Type       EventType `json:"type"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Ctrl       bool      `json:"ctrl,omitempty"`
	WheelDelta float64   `json:"wheelDelta,omitempty"`
}

// Handler commits selection changes to the host.
type Handler interface {
	// HandleSelection commits a selection delta.  If multi is false, points
	// replace the host's selection; otherwise each is toggled.
	HandleSelection(points []*datapoint.VisualDataPoint, multi bool)
	// HandleClearSelection clears the host's selection.
	HandleClearSelection()
}

// Persister durably records the committed selection.
type Persister interface {
	Save(ctx context.Context, committed []*datapoint.VisualDataPoint) error
}

// Engine is a selection state machine driven by pointer events.
type Engine interface {
	// Bind attaches the engine to the points and elements of a render pass.
	// Binding new data abandons any gesture in progress; binding a new frame
	// over the same data keeps it.
	Bind(data *datapoint.Data, frame *layout.Frame)
	// HandleEvent processes one pointer event.  Wheel events are ignored.
	HandleEvent(ctx context.Context, ev Event) error
	// Mark returns the current mark of the point at full index.
	Mark(index int) Mark
	// Lasso returns the lasso rectangle to draw, if one is shown.
	Lasso() (Lasso, bool)
	// Enable attaches the engine to events.
	Enable()
	// Disable discards any gesture in progress, leaving no provisional marks,
	// and detaches the engine from events until re-enabled.
	Disable()
}

// base holds what both engines share.
type base struct {
	handler   Handler
	persister Persister
	settings  *settings.Settings
	logger    *slog.Logger

	data     *datapoint.Data
	frame    *layout.Frame
	scopes   [][]int
	disabled bool
	g        *gesture
}

func newBase(handler Handler, persister Persister, s *settings.Settings, logger *slog.Logger, name string) base {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("engine", name)
	if s == nil {
		s = settings.Default()
	}
	return base{
		handler:   handler,
		persister: persister,
		settings:  s,
		logger:    logger,
	}
}

// bound returns true if the engine can handle events.
func (b *base) bound() bool {
	return !b.disabled && b.data != nil && b.frame != nil
}

func (b *base) Lasso() (Lasso, bool) {
	if b.g == nil || !b.g.lasso.Started {
		return Lasso{}, false
	}
	return b.g.lasso, true
}

func (b *base) Enable() {
	b.disabled = false
}

// points returns the points at the provided full indices.
func (b *base) points(indices []int) []*datapoint.VisualDataPoint {
	ret := make([]*datapoint.VisualDataPoint, 0, len(indices))
	for _, idx := range indices {
		ret = append(ret, b.data.Points[idx])
	}
	return ret
}

// committed returns every committed-selected point.
func (b *base) committed() []*datapoint.VisualDataPoint {
	var ret []*datapoint.VisualDataPoint
	for _, p := range b.data.Points {
		if p.Selected {
			ret = append(ret, p)
		}
	}
	return ret
}

// persist saves the committed selection.  Failures are logged, not returned.
func (b *base) persist(ctx context.Context) {
	if b.persister == nil {
		return
	}
	if err := b.persister.Save(ctx, b.committed()); err != nil {
		b.logger.Warn("failed to persist selection", "err", err)
	}
}

// refreshOpacity recomputes every element's opacity from marks.
func (b *base) refreshOpacity(marks markSet) {
	all := allIndices(len(b.data.Points))
	b.frame.SetOpacity(func(idx int) bool {
		return marks.get(idx).InSelection()
	}, inSelection(marks, all), b.settings.Selection)
}
