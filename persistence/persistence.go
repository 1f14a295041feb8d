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

// Package persistence mirrors a visual's committed selection into its
// host-managed settings, and restores it once when the visual is reloaded.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	datapoint "github.com/ilhamster/barviz/data_point"
	"github.com/ilhamster/barviz/selection"
	settingsstore "github.com/ilhamster/barviz/settings_store"
)

// The settings object and property holding the persisted selection, as a JSON
// array of identity keys.
const (
	Object   = "selectionSaveSettings"
	Property = "selection"
)

// Persistence saves and restores the selection of one visual.
type Persistence struct {
	store    settingsstore.Store
	visualID string
	logger   *slog.Logger
	restored bool
}

var _ selection.Persister = &Persistence{}

// New returns a new Persistence for visualID.
func New(store settingsstore.Store, visualID string, logger *slog.Logger) *Persistence {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persistence{
		store:    store,
		visualID: visualID,
		logger:   logger.With("visual", visualID),
	}
}

// Save replaces the persisted selection with the identities of committed.
func (p *Persistence) Save(ctx context.Context, committed []*datapoint.VisualDataPoint) error {
	keys := make([]string, 0, len(committed))
	for _, pt := range committed {
		keys = append(keys, pt.Identity.Key())
	}
	encoded, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	if err := p.store.PersistProperties(ctx, p.visualID, []settingsstore.Change{{
		Object:   Object,
		Property: Property,
		Value:    string(encoded),
	}}); err != nil {
		return fmt.Errorf("failed to save selection of visual '%s': %w", p.visualID, err)
	}
	return nil
}

// Persisted returns the persisted identity keys.  Missing or malformed data
// yields an empty set.
func (p *Persistence) Persisted(ctx context.Context) map[string]struct{} {
	ret := map[string]struct{}{}
	objs, err := p.store.Objects(ctx, p.visualID)
	if errors.Is(err, settingsstore.ErrNoVisual) {
		return ret
	}
	if err != nil {
		p.logger.Warn("failed to read persisted selection", "err", err)
		return ret
	}
	raw, ok := objs.Get(Object, Property)
	if !ok || raw == "" {
		return ret
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		p.logger.Warn("ignoring malformed persisted selection", "err", err)
		return ret
	}
	for _, key := range keys {
		ret[key] = struct{}{}
	}
	return ret
}

// Restored returns true once Restore has run.
func (p *Persistence) Restored() bool {
	return p.restored
}

// Restore marks the points of current whose identities are in persisted as
// selected, and reports them to handler in a single non-multi selection.  It
// takes effect only on its first call; later calls return nil.
func (p *Persistence) Restore(current *datapoint.Data, persisted map[string]struct{}, handler selection.Handler) []*datapoint.VisualDataPoint {
	if p.restored {
		return nil
	}
	p.restored = true
	var ret []*datapoint.VisualDataPoint
	for _, pt := range current.Points {
		if _, ok := persisted[pt.Identity.Key()]; ok {
			pt.Selected = true
			ret = append(ret, pt)
		}
	}
	if len(ret) > 0 && handler != nil {
		handler.HandleSelection(ret, false)
	}
	p.logger.Info("restored selection", "persisted", len(persisted), "matched", len(ret))
	return ret
}

// Keys returns the sorted members of a persisted set.
func Keys(persisted map[string]struct{}) []string {
	ret := make([]string, 0, len(persisted))
	for key := range persisted {
		ret = append(ret, key)
	}
	sort.Strings(ret)
	return ret
}
