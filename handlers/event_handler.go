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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/ilhamster/barviz/layout"
	"github.com/ilhamster/barviz/selection"
	"github.com/ilhamster/barviz/session"
	"github.com/ilhamster/barviz/util"
	"github.com/ilhamster/barviz/visual"
)

const (
	eventsMethod = "/Events"

	// resizeEvent carries a new viewport instead of a pointer event.
	resizeEvent selection.EventType = "resize"
	// chartSeries names the series of every chart sent on an event stream.
	chartSeries = "chart"
	// maxEventBytes bounds a single client message.
	maxEventBytes = 4096
)

// eventMessage is one message a client sends on an event stream.
type eventMessage struct {
	selection.Event
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// eventReply answers one eventMessage.  Chart is the chart as rendered after
// the event was handled; Error is set if handling failed.
type eventReply struct {
	Chart *util.Data `json:"chart,omitempty"`
	Error string     `json:"error,omitempty"`
}

// eventHandler streams pointer events into sessions over websockets.
type eventHandler struct {
	registry Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewEventHandler returns a Handler accepting websocket event streams for the
// sessions of registry.
func NewEventHandler(registry Registry, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventHandler{
		registry: registry,
		logger:   logger,
	}
}

// HandlersByPath returns a mapping of HTTP request path to HTTP handler for
// this Handler.
func (eh *eventHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	return map[string]func(http.ResponseWriter, *http.Request){
		eventsMethod: eh.eventsHandler,
	}
}

func (eh *eventHandler) eventsHandler(w http.ResponseWriter, req *http.Request) {
	id := req.URL.Query().Get(sessionIDParam)
	sess, ok := eh.registry.Get(id)
	if !ok {
		http.Error(w, "No session '"+id+"'", http.StatusNotFound)
		return
	}
	conn, err := eh.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade has already replied.
		eh.logger.Warn("websocket upgrade failed", "session", id, "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxEventBytes)
	logger := eh.logger.With("session", id)
	ctx := req.Context()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				logger.Warn("event exceeded size limit", "limit", maxEventBytes)
			case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				logger.Warn("event stream ended", "err", err)
			}
			return
		}
		// Each message renews the session's lease.
		if sess, ok = eh.registry.Get(id); !ok {
			eh.goingAway(conn, &eventReply{Error: session.ErrClosed.Error()})
			return
		}
		reply := eh.handle(ctx, sess, msg)
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("failed to send event reply", "err", err)
			return
		}
		if sess.Closed() {
			eh.goingAway(conn, nil)
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// goingAway sends reply, if any, then closes the stream because its session
// is gone.
func (eh *eventHandler) goingAway(conn *websocket.Conn, reply *eventReply) {
	if reply != nil {
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, session.ErrClosed.Error()))
}

// handle applies one message to sess and renders the result.
func (eh *eventHandler) handle(ctx context.Context, sess *session.Session, msg []byte) *eventReply {
	ev := eventMessage{}
	if err := json.Unmarshal(msg, &ev); err != nil {
		return &eventReply{Error: "malformed event: " + err.Error()}
	}
	reply := &eventReply{}
	var err error
	if ev.Type == resizeEvent {
		err = sess.Resize(ctx, layout.Viewport{Width: ev.Width, Height: ev.Height})
	} else {
		err = sess.HandleEvent(ctx, ev.Event)
	}
	if err != nil {
		reply.Error = err.Error()
		if errors.Is(err, session.ErrClosed) {
			return reply
		}
	}
	drb := util.NewDataResponseBuilder()
	series := drb.DataSeries(&util.DataSeriesRequest{SeriesName: chartSeries})
	if err := sess.Do(ctx, func(v *visual.Visual) error {
		return v.Render(series)
	}); err != nil {
		reply.Error = err.Error()
		return reply
	}
	chart, err := drb.Data()
	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	reply.Chart = chart
	return reply
}
