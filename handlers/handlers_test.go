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
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	datasource "github.com/ilhamster/barviz/data_source"
	dataview "github.com/ilhamster/barviz/data_view"
	querydispatcher "github.com/ilhamster/barviz/query_dispatcher"
	"github.com/ilhamster/barviz/selection"
	"github.com/ilhamster/barviz/session"
	"github.com/ilhamster/barviz/util"
	"github.com/ilhamster/barviz/visual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct{}

func (fakeFetcher) Fetch(ctx context.Context, dataset string) (*dataview.Table, error) {
	if dataset != "sales.csv" {
		return nil, NewStatusError(http.StatusNotFound, "no dataset '%s'", dataset)
	}
	return &dataview.Table{
		Name: "sales",
		Columns: []dataview.Column{
			{Role: dataview.CategoryRole, Name: "Region"},
			{Role: dataview.ValueRole, Name: "Sales"},
		},
		Rows: [][]any{
			{"north", 10.0},
			{"south", 20.0},
			{"east", 30.0},
		},
	}, nil
}

type testServer struct {
	*httptest.Server
	registry *session.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithTTL(t, 0)
}

func newTestServerWithTTL(t *testing.T, ttl time.Duration) *testServer {
	t.Helper()
	registry := session.NewRegistry(session.Options{Fetcher: fakeFetcher{}, TTL: ttl})
	t.Cleanup(registry.Close)
	qd, err := querydispatcher.New(datasource.New(registry))
	require.NoError(t, err)
	mux := http.NewServeMux()
	for _, h := range []Handler{
		NewQueryHandler(qd),
		NewSessionHandler(registry),
		NewEventHandler(registry, nil),
	} {
		for path, handler := range h.HandlersByPath() {
			mux.HandleFunc(path, handler)
		}
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, registry: registry}
}

func (ts *testServer) createSession(t *testing.T) string {
	t.Helper()
	resp, err := http.Post(ts.URL+createSessionMethod, "application/json",
		strings.NewReader(`{"dataset": "sales.csv", "width": 400, "height": 300}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := createSessionResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotEmpty(t, got.SessionID)
	return got.SessionID
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)
	for _, test := range []struct {
		description string
		method      string
		body        string
		wantStatus  int
	}{{
		description: "created",
		method:      http.MethodPost,
		body:        `{"dataset": "sales.csv", "width": 400, "height": 300}`,
		wantStatus:  http.StatusOK,
	}, {
		description: "malformed request",
		method:      http.MethodPost,
		body:        `{"dataset":`,
		wantStatus:  http.StatusBadRequest,
	}, {
		description: "no dataset",
		method:      http.MethodPost,
		body:        `{"width": 400, "height": 300}`,
		wantStatus:  http.StatusBadRequest,
	}, {
		description: "empty viewport",
		method:      http.MethodPost,
		body:        `{"dataset": "sales.csv"}`,
		wantStatus:  http.StatusBadRequest,
	}, {
		description: "unknown dataset",
		method:      http.MethodPost,
		body:        `{"dataset": "missing.csv", "width": 400, "height": 300}`,
		wantStatus:  http.StatusNotFound,
	}, {
		description: "wrong method",
		method:      http.MethodGet,
		wantStatus:  http.StatusMethodNotAllowed,
	}} {
		t.Run(test.description, func(t *testing.T) {
			req, err := http.NewRequest(test.method, ts.URL+createSessionMethod, strings.NewReader(test.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, test.wantStatus, resp.StatusCode)
		})
	}
}

func TestCloseSession(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)
	closeURL := ts.URL + closeSessionMethod + "?" + url.Values{sessionIDParam: {id}}.Encode()

	resp, err := http.Post(closeURL, "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, ok := ts.registry.Get(id)
	assert.False(t, ok)

	resp, err = http.Post(closeURL, "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetData(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)
	for _, test := range []struct {
		description string
		req         string
		wantStatus  int
		wantSeries  []string
	}{{
		description: "chart and selection",
		req: fmt.Sprintf(`{
			"GlobalFilters": {"session_id": [1, %q]},
			"SeriesRequests": [
				{"QueryName": "barviz.chart", "SeriesName": "chart"},
				{"QueryName": "barviz.selection_table", "SeriesName": "selection"}
			]
		}`, id),
		wantStatus: http.StatusOK,
		wantSeries: []string{"chart", "selection"},
	}, {
		description: "malformed request",
		req:         `{"SeriesRequests": [`,
		wantStatus:  http.StatusBadRequest,
	}, {
		description: "unknown session",
		req: `{
			"GlobalFilters": {"session_id": [1, "nope"]},
			"SeriesRequests": [{"QueryName": "barviz.chart", "SeriesName": "chart"}]
		}`,
		wantStatus: http.StatusInternalServerError,
	}} {
		t.Run(test.description, func(t *testing.T) {
			resp, err := http.Get(ts.URL + dataMethod + "?" + url.Values{"req": {test.req}}.Encode())
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, test.wantStatus, resp.StatusCode)
			if test.wantStatus != http.StatusOK {
				return
			}
			data := &util.Data{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(data))
			var gotSeries []string
			for _, series := range data.DataSeries {
				gotSeries = append(gotSeries, series.SeriesName)
			}
			assert.ElementsMatch(t, test.wantSeries, gotSeries)
		})
	}
}

// barCenter returns the center of the first bar of the session with the
// provided ID.
func (ts *testServer) barCenter(t *testing.T, id string) (x, y float64) {
	t.Helper()
	sess, ok := ts.registry.Get(id)
	require.True(t, ok)
	require.NoError(t, sess.Do(context.Background(), func(v *visual.Visual) error {
		b := v.Frame().Elements[0].Bounds
		x, y = (b.Left+b.Right)/2, (b.Top+b.Bottom)/2
		return nil
	}))
	return x, y
}

func dialEvents(t *testing.T, ts *testServer, id string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + eventsMethod + "?" + url.Values{sessionIDParam: {id}}.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg any) *eventReply {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	reply := &eventReply{}
	require.NoError(t, conn.ReadJSON(reply))
	return reply
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)
	x, y := ts.barCenter(t, id)
	conn := dialEvents(t, ts, id)

	for _, ev := range []selection.Event{
		{Type: selection.MouseDown, X: x, Y: y},
		{Type: selection.MouseUp, X: x, Y: y},
	} {
		reply := send(t, conn, ev)
		assert.Empty(t, reply.Error)
		require.NotNil(t, reply.Chart)
		require.Len(t, reply.Chart.DataSeries, 1)
		assert.Equal(t, chartSeries, reply.Chart.DataSeries[0].SeriesName)
	}
	sess, ok := ts.registry.Get(id)
	require.True(t, ok)
	require.NoError(t, sess.Do(context.Background(), func(v *visual.Visual) error {
		assert.Equal(t, 1, v.Selection().Len())
		return nil
	}))

	reply := send(t, conn, eventMessage{
		Event: selection.Event{Type: resizeEvent},
		Width: 200, Height: 100,
	})
	assert.Empty(t, reply.Error)
	assert.NotNil(t, reply.Chart)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":`)))
	reply = &eventReply{}
	require.NoError(t, conn.ReadJSON(reply))
	assert.Contains(t, reply.Error, "malformed event")
	assert.Nil(t, reply.Chart)
}

func TestEventStreamRenewsLease(t *testing.T) {
	const ttl = 300 * time.Millisecond
	ts := newTestServerWithTTL(t, ttl)
	id := ts.createSession(t)
	conn := dialEvents(t, ts, id)

	deadline := time.Now().Add(2 * ttl)
	for time.Now().Before(deadline) {
		reply := send(t, conn, selection.Event{Type: selection.MouseMove, X: 1, Y: 1})
		require.Empty(t, reply.Error)
		require.NotNil(t, reply.Chart)
		time.Sleep(ttl / 6)
	}
	sess, ok := ts.registry.Get(id)
	require.True(t, ok)
	assert.False(t, sess.Closed())
}

func TestEventStreamIdleSessionExpires(t *testing.T) {
	const ttl = 100 * time.Millisecond
	ts := newTestServerWithTTL(t, ttl)
	id := ts.createSession(t)
	conn := dialEvents(t, ts, id)
	reply := send(t, conn, selection.Event{Type: selection.MouseMove, X: 1, Y: 1})
	require.Empty(t, reply.Error)

	time.Sleep(3 * ttl)
	reply = send(t, conn, selection.Event{Type: selection.MouseMove, X: 1, Y: 1})
	assert.Equal(t, session.ErrClosed.Error(), reply.Error)
	assert.Nil(t, reply.Chart)
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestEventStreamRejectsOversizedEvents(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)
	conn := dialEvents(t, ts, id)
	msg := `{"type":"mousemove","x":1,"y":1,"pad":"` + strings.Repeat("x", maxEventBytes) + `"}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseMessageTooBig), "got %v", err)
	_, ok := ts.registry.Get(id)
	assert.True(t, ok)
}

func TestEventStreamUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + eventsMethod + "?" + url.Values{sessionIDParam: {"nope"}}.Encode())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusOf(t *testing.T) {
	for _, test := range []struct {
		description string
		err         error
		want        int
	}{{
		description: "status error",
		err:         NewStatusError(http.StatusNotFound, "gone"),
		want:        http.StatusNotFound,
	}, {
		description: "wrapped status error",
		err:         fmt.Errorf("fetching: %w", NewStatusError(http.StatusBadRequest, "bad")),
		want:        http.StatusBadRequest,
	}, {
		description: "other error",
		err:         errors.New("oops"),
		want:        http.StatusInternalServerError,
	}} {
		t.Run(test.description, func(t *testing.T) {
			assert.Equal(t, test.want, StatusOf(test.err))
		})
	}
}
