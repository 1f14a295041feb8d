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

package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ilhamster/barviz/color"
	dataview "github.com/ilhamster/barviz/data_view"
	"github.com/ilhamster/barviz/layout"
	"github.com/ilhamster/barviz/settings"
	settingsstore "github.com/ilhamster/barviz/settings_store"
	"github.com/ilhamster/barviz/visual"
	"github.com/patrickmn/go-cache"
)

// DefaultTTL is how long an untouched session lives when no TTL is
// configured.
const DefaultTTL = 30 * time.Minute

// TableFetcher fetches datasets by name.
type TableFetcher interface {
	Fetch(ctx context.Context, dataset string) (*dataview.Table, error)
}

// Options configures a Registry.
type Options struct {
	Fetcher TableFetcher
	// Store holds persisted visual properties.  Defaults to a new in-memory
	// store.
	Store settingsstore.Store
	// Settings are copied into each new visual.  Default to settings.Default().
	Settings *settings.Settings
	Palette  *color.Palette
	// TTL is how long a session may go untouched before it is closed.
	TTL    time.Duration
	Logger *slog.Logger
}

// Request describes a new session.
type Request struct {
	// VisualID keys the visual's persisted properties.  Defaults to Dataset.
	VisualID string  `json:"visual_id"`
	Dataset  string  `json:"dataset"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// Registry tracks live sessions.  It is safe for concurrent use.
type Registry struct {
	opts     Options
	sessions *cache.Cache
	logger   *slog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts Options) *Registry {
	if opts.Store == nil {
		opts.Store = settingsstore.NewMemoryStore()
	}
	if opts.Settings == nil {
		opts.Settings = settings.Default()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := &Registry{
		opts:     opts,
		sessions: cache.New(opts.TTL, opts.TTL/2),
		logger:   opts.Logger,
	}
	r.sessions.OnEvicted(func(id string, item any) {
		if s, ok := item.(*Session); ok {
			s.Close()
		}
	})
	return r
}

// Create fetches req's dataset and returns a new session whose visual shows
// it.
func (r *Registry) Create(ctx context.Context, req Request) (*Session, error) {
	if req.Dataset == "" {
		return nil, fmt.Errorf("a dataset is required")
	}
	if r.opts.Fetcher == nil {
		return nil, fmt.Errorf("no dataset fetcher is configured")
	}
	table, err := r.opts.Fetcher.Fetch(ctx, req.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset '%s': %w", req.Dataset, err)
	}
	visualID := req.VisualID
	if visualID == "" {
		visualID = req.Dataset
	}
	vp := layout.Viewport{Width: req.Width, Height: req.Height}
	id := uuid.NewString()
	logger := r.logger.With("session", id)
	s := *r.opts.Settings
	v := visual.New(visual.Options{
		ID:       visualID,
		Settings: &s,
		Store:    r.opts.Store,
		Palette:  r.opts.Palette,
		Logger:   logger,
	})
	sess := newSession(id, req.Dataset, v, logger)
	if err := sess.Update(ctx, table, vp); err != nil {
		sess.Close()
		return nil, err
	}
	r.sessions.SetDefault(id, sess)
	logger.InfoContext(ctx, "created session", "dataset", req.Dataset, "visual", visualID)
	return sess, nil
}

// Get returns the session with the provided ID, renewing its lease.
func (r *Registry) Get(id string) (*Session, bool) {
	item, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s, ok := item.(*Session)
	if !ok || s.Closed() {
		return nil, false
	}
	r.sessions.SetDefault(id, s)
	return s, true
}

// Delete closes and forgets the session with the provided ID.
func (r *Registry) Delete(id string) {
	r.sessions.Delete(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}

// Close closes every session.
func (r *Registry) Close() {
	for id := range r.sessions.Items() {
		r.sessions.Delete(id)
	}
}
