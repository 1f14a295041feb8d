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

// Package service assembles a barviz server: dataset fetching, sessions,
// persisted visual properties, and the HTTP handlers serving them.
package service

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/ilhamster/barviz/config"
	datasource "github.com/ilhamster/barviz/data_source"
	"github.com/ilhamster/barviz/handlers"
	querydispatcher "github.com/ilhamster/barviz/query_dispatcher"
	"github.com/ilhamster/barviz/session"
	"github.com/ilhamster/barviz/settings"
	settingsstore "github.com/ilhamster/barviz/settings_store"
)

// Service owns the state of a barviz server.
type Service struct {
	registry *session.Registry
	handlers []handlers.Handler
	sqlite   *settingsstore.SQLiteStore
}

// New returns a Service configured by cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := settings.Default()
	if cfg.SettingsFile != "" {
		f, err := os.Open(cfg.SettingsFile)
		if err != nil {
			return nil, err
		}
		defaults, err = settings.Load(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	fetcher, err := newDatasetFetcher(cfg.DatasetRoot, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	s := &Service{}
	var store settingsstore.Store = settingsstore.NewMemoryStore()
	if cfg.SQLitePath != "" {
		s.sqlite, err = settingsstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = s.sqlite
	}
	s.registry = session.NewRegistry(session.Options{
		Fetcher:  fetcher,
		Store:    store,
		Settings: defaults,
		TTL:      cfg.SessionTTL,
		Logger:   logger,
	})
	qd, err := querydispatcher.New(datasource.New(s.registry))
	if err != nil {
		s.Close()
		return nil, err
	}
	qd.WithLogger(logger)
	s.handlers = []handlers.Handler{
		handlers.NewQueryHandler(qd),
		handlers.NewSessionHandler(s.registry),
		handlers.NewEventHandler(s.registry, logger),
	}
	return s, nil
}

// HandlersByPath returns every HTTP handler of the receiver by path.
func (s *Service) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	ret := map[string]func(http.ResponseWriter, *http.Request){}
	for _, h := range s.handlers {
		for path, handler := range h.HandlersByPath() {
			ret[path] = handler
		}
	}
	return ret
}

// RegisterHandlers registers the receiver's handlers on mux.
func (s *Service) RegisterHandlers(mux *http.ServeMux) {
	for path, handler := range s.HandlersByPath() {
		mux.HandleFunc(path, handler)
	}
}

// Close closes every session and the settings database.
func (s *Service) Close() error {
	if s.registry != nil {
		s.registry.Close()
	}
	if s.sqlite != nil {
		return s.sqlite.Close()
	}
	return nil
}
