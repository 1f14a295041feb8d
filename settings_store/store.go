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

// Package settingsstore holds the host-managed settings of each visual: named
// objects carrying string-valued properties.  Writes replace the stored value
// of each property they name and leave other properties untouched.
package settingsstore

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNoVisual is returned by Objects for a visual with no stored settings.
var ErrNoVisual = errors.New("no settings stored for visual")

// Change is a single property write.
type Change struct {
	Object   string
	Property string
	Value    string
}

// Objects maps object name to property name to value.
type Objects map[string]map[string]string

// Get returns the value of the named property and whether it is set.
func (o Objects) Get(object, property string) (string, bool) {
	props, ok := o[object]
	if !ok {
		return "", false
	}
	v, ok := props[property]
	return v, ok
}

func (o Objects) apply(changes []Change) {
	for _, c := range changes {
		props, ok := o[c.Object]
		if !ok {
			props = map[string]string{}
			o[c.Object] = props
		}
		props[c.Property] = c.Value
	}
}

// Store persists visual settings.
type Store interface {
	// PersistProperties applies changes to the settings of visualID.
	PersistProperties(ctx context.Context, visualID string, changes []Change) error
	// Objects returns all settings of visualID, or ErrNoVisual.
	Objects(ctx context.Context, visualID string) (Objects, error)
}

// MemoryStore is a Store that keeps settings in memory.  It is safe for
// concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	visuals map[string]Objects
}

var _ Store = &MemoryStore{}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visuals: map[string]Objects{},
	}
}

func (ms *MemoryStore) PersistProperties(ctx context.Context, visualID string, changes []Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	objs, ok := ms.visuals[visualID]
	if !ok {
		objs = Objects{}
		ms.visuals[visualID] = objs
	}
	objs.apply(changes)
	return nil
}

func (ms *MemoryStore) Objects(ctx context.Context, visualID string) (Objects, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	objs, ok := ms.visuals[visualID]
	if !ok {
		return nil, ErrNoVisual
	}
	ret := make(Objects, len(objs))
	for obj, props := range objs {
		ret[obj] = make(map[string]string, len(props))
		for k, v := range props {
			ret[obj][k] = v
		}
	}
	return ret, nil
}

// VisualIDs returns the IDs of all visuals with stored settings, sorted.
func (ms *MemoryStore) VisualIDs() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ret := make([]string, 0, len(ms.visuals))
	for id := range ms.visuals {
		ret = append(ret, id)
	}
	sort.Strings(ret)
	return ret
}
