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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	datapoint "github.com/ilhamster/barviz/data_point"
	"github.com/ilhamster/barviz/layout"
)

const (
	aSales = "a/Sales"
	bSales = "b/Sales"
	cSales = "c/Sales"
	dSales = "d/Sales"
)

func salesByRegion(t *testing.T) *datapoint.Data {
	return convert(t, "category:Region,value:Sales",
		[]any{"a", 10.0},
		[]any{"b", 20.0},
		[]any{"c", 30.0},
		[]any{"d", 40.0},
	)
}

func newSingleChart(t *testing.T, data *datapoint.Data, selected ...int) (*SingleChartEngine, *layout.Frame, *fakeHandler, *fakePersister) {
	t.Helper()
	selectPoints(data, selected...)
	s := testSettings()
	f := layout.Single(data, layout.Viewport{Width: 400, Height: 100}, s, 0)
	h, p := &fakeHandler{}, &fakePersister{}
	e := NewSingleChartEngine(h, p, s, nil)
	e.Bind(data, f)
	return e, f, h, p
}

func TestSingleChartGestures(t *testing.T) {
	for _, test := range []struct {
		description  string
		selected     []int
		events       func(t *testing.T, f *layout.Frame) []Event
		wantCalls    []call
		wantSelected []string
	}{{
		description: "plain drag selects the touched bars",
		events: func(t *testing.T, f *layout.Frame) []Event {
			return drag(foot(t, f, 0), foot(t, f, 1), false)
		},
		wantCalls:    []call{{Clear: true}, {Keys: []string{aSales, bSales}}},
		wantSelected: []string{aSales, bSales},
	}, {
		description: "plain drag replaces the prior selection",
		selected:    []int{2, 3},
		events: func(t *testing.T, f *layout.Frame) []Event {
			return drag(foot(t, f, 0), at(60, 99), false)
		},
		wantCalls:    []call{{Clear: true}, {Keys: []string{aSales}}},
		wantSelected: []string{aSales},
	}, {
		description: "ctrl drag keeps the prior selection",
		selected:    []int{0},
		events: func(t *testing.T, f *layout.Frame) []Event {
			return drag(foot(t, f, 2), foot(t, f, 3), true)
		},
		wantCalls:    []call{{Keys: []string{cSales, dSales}, Multi: true}},
		wantSelected: []string{aSales, cSales, dSales},
	}, {
		description: "ctrl drag first touching a selected bar only removes",
		selected:    []int{0},
		events: func(t *testing.T, f *layout.Frame) []Event {
			return []Event{
				down(foot(t, f, 1), true),
				move(foot(t, f, 0), true),
				move(at(foot(t, f, 1).X+10, 99), true),
				up(at(foot(t, f, 1).X+10, 99), true),
			}
		},
		wantCalls: []call{{Keys: []string{aSales}, Multi: true}},
	}, {
		description: "plain click selects a bar",
		events: func(t *testing.T, f *layout.Frame) []Event {
			return click(center(t, f, 0), false)
		},
		wantCalls:    []call{{Keys: []string{aSales}}},
		wantSelected: []string{aSales},
	}, {
		description: "plain click on a selected bar keeps only it",
		selected:    []int{0, 1},
		events: func(t *testing.T, f *layout.Frame) []Event {
			return click(center(t, f, 0), false)
		},
		wantCalls:    []call{{Keys: []string{aSales}}},
		wantSelected: []string{aSales},
	}, {
		description: "ctrl click removes a selected bar",
		selected:    []int{0, 1},
		events: func(t *testing.T, f *layout.Frame) []Event {
			return click(center(t, f, 0), true)
		},
		wantCalls:    []call{{Keys: []string{aSales}, Multi: true}},
		wantSelected: []string{bSales},
	}, {
		description: "ctrl click adds a bar",
		selected:    []int{0},
		events: func(t *testing.T, f *layout.Frame) []Event {
			return click(center(t, f, 1), true)
		},
		wantCalls:    []call{{Keys: []string{bSales}, Multi: true}},
		wantSelected: []string{aSales, bSales},
	}, {
		description: "click on empty space without a selection is silent",
		events: func(t *testing.T, f *layout.Frame) []Event {
			return click(above(t, f, 0), false)
		},
	}, {
		description: "click on empty space clears the selection",
		selected:    []int{0},
		events: func(t *testing.T, f *layout.Frame) []Event {
			return click(above(t, f, 0), false)
		},
		wantCalls: []call{{Clear: true}},
	}, {
		description: "ctrl click on empty space keeps the selection",
		selected:    []int{0},
		events: func(t *testing.T, f *layout.Frame) []Event {
			return click(above(t, f, 0), true)
		},
		wantSelected: []string{aSales},
	}, {
		description: "drag over nothing clears the selection once",
		selected:    []int{0},
		events: func(t *testing.T, f *layout.Frame) []Event {
			from := above(t, f, 0)
			return drag(from, at(from.X+5, from.Y-5), false)
		},
		wantCalls: []call{{Clear: true}},
	}, {
		description: "mouseup without a mousedown is ignored",
		selected:    []int{0},
		events: func(t *testing.T, f *layout.Frame) []Event {
			return []Event{up(center(t, f, 1), false)}
		},
		wantSelected: []string{aSales},
	}, {
		description: "wheel events are ignored",
		events: func(t *testing.T, f *layout.Frame) []Event {
			return []Event{{Type: Wheel, WheelDelta: 1}}
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			data := salesByRegion(t)
			e, f, h, _ := newSingleChart(t, data, test.selected...)
			run(t, e, test.events(t, f)...)
			checkCalls(t, h, test.wantCalls)
			checkSelected(t, data, test.wantSelected)
			checkNoProvisional(t, e, data)
			if _, ok := e.Lasso(); ok {
				t.Errorf("Lasso() is still shown after the gesture")
			}
		})
	}
}

func TestSingleChartModeIsFixed(t *testing.T) {
	data := salesByRegion(t)
	e, f, _, _ := newSingleChart(t, data, 0)
	ctx := context.Background()
	run(t, e, down(foot(t, f, 1), true), move(foot(t, f, 0), true))
	if got := e.Mark(0); got != JustRemoved {
		t.Fatalf("Mark(a) = %s, want justRemoved", got)
	}
	if got := e.Mark(1); got != None {
		t.Errorf("Mark(b) = %s, want none while removing", got)
	}
	// Shrinking the lasso off the bar that set the mode keeps it removed.
	if err := e.HandleEvent(ctx, move(foot(t, f, 1), true)); err != nil {
		t.Fatalf("HandleEvent() failed: %s", err)
	}
	if got := e.Mark(0); got != JustRemoved {
		t.Errorf("after shrinking, Mark(a) = %s, want justRemoved", got)
	}
	if l, ok := e.Lasso(); !ok || l.Width() != 0 {
		t.Errorf("Lasso() = %v, %t, want a zero-width lasso", l, ok)
	}
}

func TestSingleChartNeverStraddles(t *testing.T) {
	for _, ctrl := range []bool{false, true} {
		data := salesByRegion(t)
		e, _, _, _ := newSingleChart(t, data, 1, 3)
		ctx := context.Background()
		if err := e.HandleEvent(ctx, down(at(170, 99), ctrl)); err != nil {
			t.Fatalf("HandleEvent() failed: %s", err)
		}
		for _, x := range []float64{230, 390, 10, 120, 260, 5, 399, 170} {
			for _, y := range []float64{99, 50, 1} {
				if err := e.HandleEvent(ctx, move(at(x, y), ctrl)); err != nil {
					t.Fatalf("HandleEvent() failed: %s", err)
				}
				if err := e.store.Validate(); err != nil {
					t.Fatalf("ctrl=%t: after moving to (%v, %v): %s", ctrl, x, y, err)
				}
			}
		}
		if err := e.HandleEvent(ctx, up(at(170, 99), ctrl)); err != nil {
			t.Fatalf("HandleEvent() failed: %s", err)
		}
		checkNoProvisional(t, e, data)
	}
}

func TestSingleChartPropagatesCategories(t *testing.T) {
	data := convert(t, "category:Region,value:Q1,value:Q2,value:Q3",
		[]any{"A", 1.0, 1.0, 1.0},
		[]any{"B", 1.0, nil, nil},
	)
	e, f, h, _ := newSingleChart(t, data)
	from := center(t, f, 2)
	run(t, e, down(from, false), move(at(from.X+1, from.Y+1), false))
	var got []Mark
	for idx := range data.Points {
		got = append(got, e.Mark(idx))
	}
	want := []Mark{JustSelected, JustSelected, JustSelected, None, None, None}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("marks during the drag = diff (-want +got):\n%s", diff)
	}
	run(t, e, up(at(from.X+1, from.Y+1), false))
	checkCalls(t, h, []call{{Clear: true}, {Keys: []string{"A/Q1", "A/Q2", "A/Q3"}}})
}

func TestSingleChartStraddlingCommitFails(t *testing.T) {
	data := salesByRegion(t)
	e, f, h, _ := newSingleChart(t, data, 2)
	ctx := context.Background()
	run(t, e, down(center(t, f, 0), true))
	e.store.Set(1, JustSelected)
	e.store.Set(2, JustRemoved)
	err := e.HandleEvent(ctx, up(center(t, f, 0), true))
	if !errors.Is(err, ErrStraddlingState) {
		t.Fatalf("HandleEvent(mouseup) = %v, want %v", err, ErrStraddlingState)
	}
	checkCalls(t, h, nil)
	checkSelected(t, data, []string{cSales})
	checkNoProvisional(t, e, data)
}

func TestSingleChartDisable(t *testing.T) {
	data := salesByRegion(t)
	e, f, h, _ := newSingleChart(t, data, 0)
	run(t, e, down(center(t, f, 1), false))
	if data.Points[0].Selected {
		t.Fatalf("plain mousedown should drop the committed selection")
	}
	e.Disable()
	checkSelected(t, data, []string{aSales})
	run(t, e, click(center(t, f, 2), false)...)
	checkCalls(t, h, nil)
	e.Enable()
	run(t, e, click(center(t, f, 2), false)...)
	checkCalls(t, h, []call{{Keys: []string{cSales}}})
	checkSelected(t, data, []string{cSales})
}

func TestSingleChartAbandonedMousedown(t *testing.T) {
	for _, test := range []struct {
		description  string
		abandon      func(t *testing.T, e *SingleChartEngine, f *layout.Frame)
		wantCalls    []call
		wantSelected []string
	}{{
		description: "disable before moving restores the selection",
		abandon: func(t *testing.T, e *SingleChartEngine, f *layout.Frame) {
			run(t, e, down(center(t, f, 1), false))
			e.Disable()
		},
		wantSelected: []string{aSales},
	}, {
		description: "ctrl mousedown before moving restores the selection",
		abandon: func(t *testing.T, e *SingleChartEngine, f *layout.Frame) {
			run(t, e, down(center(t, f, 1), false), down(center(t, f, 2), true))
		},
		wantSelected: []string{aSales},
	}, {
		description: "disable after the host was cleared keeps it cleared",
		abandon: func(t *testing.T, e *SingleChartEngine, f *layout.Frame) {
			run(t, e, down(above(t, f, 1), false), move(above(t, f, 2), false))
			e.Disable()
		},
		wantCalls: []call{{Clear: true}},
	}} {
		t.Run(test.description, func(t *testing.T) {
			data := salesByRegion(t)
			e, f, h, _ := newSingleChart(t, data, 0)
			test.abandon(t, e, f)
			checkCalls(t, h, test.wantCalls)
			checkSelected(t, data, test.wantSelected)
			checkNoProvisional(t, e, data)
		})
	}
}

func TestSingleChartPersistsAndDims(t *testing.T) {
	data := salesByRegion(t)
	e, f, _, p := newSingleChart(t, data)
	run(t, e, click(center(t, f, 1), false)...)
	run(t, e, click(center(t, f, 3), true)...)
	if len(p.saves) == 0 {
		t.Fatalf("selection was never persisted")
	}
	if diff := cmp.Diff([]string{bSales, dSales}, p.saves[len(p.saves)-1]); diff != "" {
		t.Errorf("last persisted selection = diff (-want +got):\n%s", diff)
	}
	s := testSettings().Selection
	var got []float64
	for _, el := range f.Elements {
		got = append(got, el.Opacity)
	}
	want := []float64{s.DimmedOpacity, s.SelectedOpacity, s.DimmedOpacity, s.SelectedOpacity}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("element opacities = diff (-want +got):\n%s", diff)
	}
}

func TestSingleChartPersistFailureIsNotFatal(t *testing.T) {
	data := salesByRegion(t)
	e, f, h, p := newSingleChart(t, data)
	p.err = errors.New("store unavailable")
	run(t, e, click(center(t, f, 0), false)...)
	checkCalls(t, h, []call{{Keys: []string{aSales}}})
}
