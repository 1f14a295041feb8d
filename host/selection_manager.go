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

// Package host provides the host-side services a visual talks to.
package host

import (
	"sort"
	"sync"

	datapoint "github.com/ilhamster/barviz/data_point"
	"github.com/ilhamster/barviz/selection"
)

// SelectionManager is the host's record of the selected identities.  A
// non-multi selection replaces the record; a multi selection toggles each
// point in it.  It is safe for concurrent use.
type SelectionManager struct {
	mu  sync.Mutex
	ids map[string]struct{}
	// onChange, if set, is called with the new selection after every change.
	onChange func(keys []string)
}

var _ selection.Handler = &SelectionManager{}

// NewSelectionManager returns an empty SelectionManager.  onChange may be nil.
func NewSelectionManager(onChange func(keys []string)) *SelectionManager {
	return &SelectionManager{
		ids:      map[string]struct{}{},
		onChange: onChange,
	}
}

func (sm *SelectionManager) HandleSelection(points []*datapoint.VisualDataPoint, multi bool) {
	sm.mu.Lock()
	if !multi {
		sm.ids = map[string]struct{}{}
	}
	for _, p := range points {
		key := p.Identity.Key()
		if _, ok := sm.ids[key]; ok && multi {
			delete(sm.ids, key)
		} else {
			sm.ids[key] = struct{}{}
		}
	}
	keys := sm.keys()
	sm.mu.Unlock()
	sm.changed(keys)
}

func (sm *SelectionManager) HandleClearSelection() {
	sm.mu.Lock()
	sm.ids = map[string]struct{}{}
	sm.mu.Unlock()
	sm.changed(nil)
}

func (sm *SelectionManager) changed(keys []string) {
	if sm.onChange != nil {
		sm.onChange(keys)
	}
}

// IsSelected returns true if the identity key is selected.
func (sm *SelectionManager) IsSelected(key string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	_, ok := sm.ids[key]
	return ok
}

// Len returns the number of selected identities.
func (sm *SelectionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.ids)
}

// Keys returns the selected identity keys, sorted.
func (sm *SelectionManager) Keys() []string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.keys()
}

func (sm *SelectionManager) keys() []string {
	if len(sm.ids) == 0 {
		return nil
	}
	ret := make([]string, 0, len(sm.ids))
	for key := range sm.ids {
		ret = append(ret, key)
	}
	sort.Strings(ret)
	return ret
}
