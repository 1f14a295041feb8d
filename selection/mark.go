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
	"errors"
	"fmt"
)

// ErrStraddlingState is returned when a gesture ends with points both
// provisionally selected and provisionally removed.
var ErrStraddlingState = errors.New("selection holds both provisionally selected and provisionally removed points")

// Mark is the selection state of one data point.
type Mark int

const (
	// None is an unselected point.
	None Mark = iota
	// Selected is a committed-selected point.
	Selected
	// JustSelected is a point provisionally added by the current gesture.
	JustSelected
	// JustRemoved is a committed-selected point provisionally removed by the
	// current gesture.
	JustRemoved
)

func (m Mark) String() string {
	switch m {
	case None:
		return "none"
	case Selected:
		return "selected"
	case JustSelected:
		return "justSelected"
	case JustRemoved:
		return "justRemoved"
	default:
		return fmt.Sprintf("Mark(%d)", int(m))
	}
}

// Provisional returns true for marks that only live for one gesture.
func (m Mark) Provisional() bool {
	return m == JustSelected || m == JustRemoved
}

// InSelection returns true if a point with the receiver mark is shown as
// selected.
func (m Mark) InSelection() bool {
	return m == Selected || m == JustSelected
}

// Store holds one Mark per data point, indexed by the point's position in the
// full point sequence.
type Store struct {
	marks []Mark
}

// NewStore returns a Store of n unselected points.
func NewStore(n int) *Store {
	return &Store{marks: make([]Mark, n)}
}

// Len returns the number of points in the receiver.
func (s *Store) Len() int {
	return len(s.marks)
}

// Get returns the mark at index; out-of-range indices are None.
func (s *Store) Get(index int) Mark {
	if index < 0 || index >= len(s.marks) {
		return None
	}
	return s.marks[index]
}

// Set sets the mark at index; out-of-range indices are ignored.
func (s *Store) Set(index int, m Mark) {
	if index < 0 || index >= len(s.marks) {
		return
	}
	s.marks[index] = m
}

// Clear sets every mark to None.
func (s *Store) Clear() {
	for idx := range s.marks {
		s.marks[idx] = None
	}
}

// ClearProvisional discards the current gesture's marks: JustSelected
// points revert to None and JustRemoved points to Selected.
func (s *Store) ClearProvisional() {
	for idx, m := range s.marks {
		switch m {
		case JustSelected:
			s.marks[idx] = None
		case JustRemoved:
			s.marks[idx] = Selected
		}
	}
}

func (s *Store) get(index int) Mark { return s.Get(index) }

func (s *Store) set(index int, m Mark) { s.Set(index, m) }

// Validate returns ErrStraddlingState if the receiver holds both JustSelected
// and JustRemoved marks.
func (s *Store) Validate() error {
	return validate(s, allIndices(len(s.marks)))
}

// Count returns the number of points holding each mark.
func (s *Store) Count() map[Mark]int {
	ret := map[Mark]int{}
	for _, m := range s.marks {
		ret[m]++
	}
	return ret
}
