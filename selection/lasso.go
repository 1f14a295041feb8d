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
	"fmt"

	hittest "github.com/ilhamster/barviz/hit_test"
	"github.com/ilhamster/barviz/layout"
)

// Lasso is the geometry of one pointer gesture.
type Lasso struct {
	// Active is true between a mousedown and its mouseup.
	Active bool
	// Started is true once the gesture has become a drag.
	Started        bool
	Start, Current hittest.Point
}

// Rect returns the rectangle spanned by the receiver.
func (l Lasso) Rect() hittest.Rect {
	return hittest.RectFromPoints(l.Start, l.Current)
}

// X returns the left edge of the receiver's rectangle.
func (l Lasso) X() float64 { return l.Rect().Left }

// Y returns the top edge of the receiver's rectangle.
func (l Lasso) Y() float64 { return l.Rect().Top }

// Width returns the width of the receiver's rectangle.
func (l Lasso) Width() float64 { return l.Rect().Width() }

// Height returns the height of the receiver's rectangle.
func (l Lasso) Height() float64 { return l.Rect().Height() }

// EndX returns the right edge of the receiver's rectangle.
func (l Lasso) EndX() float64 { return l.Rect().Right }

// EndY returns the bottom edge of the receiver's rectangle.
func (l Lasso) EndY() float64 { return l.Rect().Bottom }

type mode int

const (
	undetermined mode = iota
	addMode
	removeMode
)

func (m mode) String() string {
	switch m {
	case addMode:
		return "add"
	case removeMode:
		return "remove"
	default:
		return "undetermined"
	}
}

// markSet is the per-point mark storage an engine exposes to the shared
// gesture logic.  Indices are full point indices.
type markSet interface {
	get(index int) Mark
	set(index int, m Mark)
}

// gesture is the state of one mousedown-to-mouseup interaction.
type gesture struct {
	lasso Lasso
	ctrl  bool
	mode  mode
	// hadSelection is true if any point was committed-selected at mousedown.
	hadSelection bool
	// cleared is true once the committed selection has been dropped for a
	// plain gesture.
	cleared bool
}

func newGesture(ev Event, hadSelection bool) *gesture {
	p := hittest.Point{X: ev.X, Y: ev.Y}
	return &gesture{
		lasso: Lasso{
			Active:  true,
			Start:   p,
			Current: p,
		},
		ctrl:         ev.Ctrl,
		hadSelection: hadSelection,
	}
}

// sweep hit-tests every element against rect and updates marks.  The first
// element hit fixes the gesture's mode: remove if it was committed-selected,
// and add otherwise.
func (g *gesture) sweep(rect hittest.Rect, elements []layout.Element, marks markSet) {
	for _, el := range elements {
		hit := hittest.Intersects(rect, el.Bounds)
		m := marks.get(el.Index)
		if g.mode == undetermined {
			if !hit {
				continue
			}
			if m == Selected {
				g.mode = removeMode
			} else {
				g.mode = addMode
			}
		}
		switch g.mode {
		case addMode:
			if hit && m == None {
				marks.set(el.Index, JustSelected)
			} else if !hit && m == JustSelected {
				marks.set(el.Index, None)
			}
		case removeMode:
			if hit && m == Selected {
				marks.set(el.Index, JustRemoved)
			}
		}
	}
}

// propagate extends provisional marks to whole scopes.  In remove mode, a
// scope holding a JustRemoved point has all its Selected points removed.  In
// add mode, a scope holding a JustSelected point, or a Selected one if
// seedCommitted is set, has all its None points added.
func propagate(scopes [][]int, marks markSet, m mode, seedCommitted bool) {
	for _, scope := range scopes {
		seeded := false
		for _, idx := range scope {
			switch mk := marks.get(idx); {
			case m == removeMode && mk == JustRemoved,
				m == addMode && mk == JustSelected,
				m == addMode && seedCommitted && mk == Selected:
				seeded = true
			}
			if seeded {
				break
			}
		}
		if !seeded {
			continue
		}
		for _, idx := range scope {
			switch mk := marks.get(idx); {
			case m == removeMode && mk == Selected:
				marks.set(idx, JustRemoved)
			case m == addMode && mk == None:
				marks.set(idx, JustSelected)
			}
		}
	}
}

// clickMode returns the mode a click's marks imply.
func clickMode(marks markSet, indices []int) mode {
	for _, idx := range indices {
		if marks.get(idx) == JustRemoved {
			return removeMode
		}
	}
	return addMode
}

// validate returns ErrStraddlingState if marks holds both kinds of
// provisional mark among indices.
func validate(marks markSet, indices []int) error {
	added, removed := 0, 0
	for _, idx := range indices {
		switch marks.get(idx) {
		case JustSelected:
			added++
		case JustRemoved:
			removed++
		}
	}
	if added > 0 && removed > 0 {
		return fmt.Errorf("%w (%d selected, %d removed)", ErrStraddlingState, added, removed)
	}
	return nil
}

// commit collects the points holding provisional marks and hands each to
// apply with its committed state.  It returns the touched indices, in order.
func commit(marks markSet, indices []int, apply func(index int, selected bool)) []int {
	var touched []int
	for _, idx := range indices {
		switch marks.get(idx) {
		case JustSelected:
			apply(idx, true)
			touched = append(touched, idx)
		case JustRemoved:
			apply(idx, false)
			touched = append(touched, idx)
		}
	}
	return touched
}

// inSelection reports whether any of indices is shown as selected.
func inSelection(marks markSet, indices []int) bool {
	for _, idx := range indices {
		if marks.get(idx).InSelection() {
			return true
		}
	}
	return false
}

// allIndices returns [0, n).
func allIndices(n int) []int {
	ret := make([]int, n)
	for idx := range ret {
		ret[idx] = idx
	}
	return ret
}
