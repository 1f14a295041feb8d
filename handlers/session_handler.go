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

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ilhamster/barviz/session"
)

// Registry describes the session registry handlers serve.
type Registry interface {
	Create(ctx context.Context, req session.Request) (*session.Session, error)
	Get(id string) (*session.Session, bool)
	Delete(id string)
}

const (
	createSessionMethod = "/CreateSession"
	closeSessionMethod  = "/CloseSession"

	sessionIDParam = "session_id"
)

// sessionHandler creates and closes sessions.
type sessionHandler struct {
	registry Registry
}

// NewSessionHandler returns a Handler managing the sessions of registry.
func NewSessionHandler(registry Registry) Handler {
	return &sessionHandler{
		registry: registry,
	}
}

// HandlersByPath returns a mapping of HTTP request path to HTTP handler for
// this Handler.
func (sh *sessionHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	return map[string]func(http.ResponseWriter, *http.Request){
		createSessionMethod: sh.createSessionHandler,
		closeSessionMethod:  sh.closeSessionHandler,
	}
}

// createSessionResponse answers a successful session creation.
type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

func (sh *sessionHandler) createSessionHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "CreateSession requires POST", http.StatusMethodNotAllowed)
		return
	}
	sessReq := session.Request{}
	if err := json.NewDecoder(req.Body).Decode(&sessReq); err != nil {
		http.Error(w, "Failed to parse session request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if sessReq.Dataset == "" {
		http.Error(w, "A dataset is required", http.StatusBadRequest)
		return
	}
	if sessReq.Width <= 0 || sessReq.Height <= 0 {
		http.Error(w, "Width and height must be positive", http.StatusBadRequest)
		return
	}
	sess, err := sh.registry.Create(req.Context(), sessReq)
	if err != nil {
		writeError(w, "CreateSession failed", err)
		return
	}
	sendHTTPResponse(&createSessionResponse{SessionID: sess.ID()}, w)
}

func (sh *sessionHandler) closeSessionHandler(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	id := req.Form.Get(sessionIDParam)
	if _, ok := sh.registry.Get(id); !ok {
		http.Error(w, "No session '"+id+"'", http.StatusNotFound)
		return
	}
	sh.registry.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}
