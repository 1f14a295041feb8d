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

// Package session hosts live visuals for remote clients.  Each Session owns
// one visual and runs every operation on it from a single goroutine, in
// arrival order.  A Registry tracks sessions by ID and expires idle ones.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	dataview "github.com/ilhamster/barviz/data_view"
	"github.com/ilhamster/barviz/layout"
	"github.com/ilhamster/barviz/selection"
	"github.com/ilhamster/barviz/visual"
)

// ErrClosed is returned for work submitted to a closed session.
var ErrClosed = errors.New("session is closed")

// Session serializes access to one visual.
type Session struct {
	id      string
	dataset string
	visual  *visual.Visual
	logger  *slog.Logger

	work      chan func()
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id, dataset string, v *visual.Visual, logger *slog.Logger) *Session {
	s := &Session{
		id:      id,
		dataset: dataset,
		visual:  v,
		logger:  logger,
		work:    make(chan func()),
		done:    make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Session) loop() {
	for {
		select {
		case fn := <-s.work:
			fn()
		case <-s.done:
			return
		}
	}
}

// ID returns the receiver's ID.
func (s *Session) ID() string {
	return s.id
}

// Dataset returns the name of the dataset the receiver's visual was created
// with.
func (s *Session) Dataset() string {
	return s.dataset
}

// Do runs fn on the receiver's goroutine and returns its error.  If ctx ends
// before fn is scheduled, fn never runs.
func (s *Session) Do(ctx context.Context, fn func(v *visual.Visual) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result := make(chan error, 1)
	select {
	case s.work <- func() { result <- fn(s.visual) }:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Update replaces the visual's data.
func (s *Session) Update(ctx context.Context, table *dataview.Table, vp layout.Viewport) error {
	return s.Do(ctx, func(v *visual.Visual) error {
		return v.Update(ctx, table, vp)
	})
}

// Resize lays the visual out in vp.
func (s *Session) Resize(ctx context.Context, vp layout.Viewport) error {
	return s.Do(ctx, func(v *visual.Visual) error {
		v.Resize(vp)
		return nil
	})
}

// HandleEvent dispatches a pointer event to the visual.
func (s *Session) HandleEvent(ctx context.Context, ev selection.Event) error {
	return s.Do(ctx, func(v *visual.Visual) error {
		if err := v.HandleEvent(ctx, ev); err != nil {
			s.logger.ErrorContext(ctx, "pointer event failed",
				"type", ev.Type, "x", ev.X, "y", ev.Y, "err", err)
			return fmt.Errorf("session %s: %w", s.id, err)
		}
		return nil
	})
}

// Close stops the receiver's goroutine.  Work submitted afterwards fails with
// ErrClosed.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.logger.Info("closed session")
	})
}

// Closed reports whether the receiver has been closed.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
