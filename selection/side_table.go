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
	datapoint "github.com/ilhamster/barviz/data_point"
)

// sideTable holds the provisional marks of one small multiple gesture, keyed
// by point identity so that they survive the facet bar sets being rebuilt.
type sideTable struct {
	marks map[datapoint.Identity]Mark
}

func newSideTable() *sideTable {
	return &sideTable{marks: map[datapoint.Identity]Mark{}}
}

func (t *sideTable) get(id datapoint.Identity) (Mark, bool) {
	m, ok := t.marks[id]
	return m, ok
}

// set records a provisional mark; any other mark drops the entry.
func (t *sideTable) set(id datapoint.Identity, m Mark) {
	if m.Provisional() {
		t.marks[id] = m
		return
	}
	delete(t.marks, id)
}

func (t *sideTable) clear() {
	clear(t.marks)
}

func (t *sideTable) len() int {
	return len(t.marks)
}
