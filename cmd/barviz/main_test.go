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

package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ilhamster/barviz/config"
	"github.com/ilhamster/barviz/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer(t *testing.T) {
	cfg := config.Default()
	cfg.DatasetRoot = t.TempDir()
	cfg.ResourceRoot = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ResourceRoot, "index.html"), []byte("<html></html>"), 0o644))
	svc, err := service.New(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	e := newServer(svc, cfg, slog.Default())

	for _, test := range []struct {
		description string
		method      string
		target      string
		body        string
		wantStatus  int
	}{{
		description: "static resource",
		method:      http.MethodGet,
		target:      "/index.html",
		wantStatus:  http.StatusOK,
	}, {
		description: "malformed data request",
		method:      http.MethodGet,
		target:      "/GetData?req=%7B",
		wantStatus:  http.StatusBadRequest,
	}, {
		description: "missing dataset",
		method:      http.MethodPost,
		target:      "/CreateSession",
		body:        `{"dataset": "missing.csv", "width": 400, "height": 300}`,
		wantStatus:  http.StatusNotFound,
	}, {
		description: "unknown route",
		method:      http.MethodGet,
		target:      "/nope/nothing",
		wantStatus:  http.StatusNotFound,
	}} {
		t.Run(test.description, func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.target, strings.NewReader(test.body))
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, test.wantStatus, rec.Code)
		})
	}
}
