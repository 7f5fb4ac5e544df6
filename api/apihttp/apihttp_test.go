/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package apihttp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	assert "github.com/stretchr/testify/require"

	"github.com/bbva/hashlife/hashlife"
	"github.com/bbva/hashlife/log"
	"github.com/bbva/hashlife/protocol"
	"github.com/bbva/hashlife/testutils/patterns"
	"github.com/bbva/hashlife/worker"
)

func newTestWorker(t *testing.T, opts ...func(*hashlife.Config)) *worker.Worker {
	logger := log.New(&log.LoggerOptions{Name: "test", Level: log.Off})
	conf := hashlife.DefaultConfig()
	for _, o := range opts {
		o(conf)
	}
	engine, err := hashlife.NewEngine(conf, logger)
	assert.NoError(t, err)
	wk := worker.New(nil, engine, logger)
	wk.Start()
	return wk
}

func fromCells(c protocol.Cells) patterns.Cells {
	out := make(patterns.Cells, 0, len(c))
	for _, p := range c {
		out = append(out, [2]int64{p.X, p.Y})
	}
	return out.Sorted()
}

func TestHealthCheckHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/health-check", nil)
	assert.NoError(t, err)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(HealthCheckHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"version":0,"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestAdvance(t *testing.T) {
	wk := newTestWorker(t)
	defer wk.Stop()

	testCases := []struct {
		name   string
		method string
		body   string
		status int
		cells  patterns.Cells
	}{
		{"glider", "POST", `{"cells":[[1,0],[2,1],[0,2],[1,2],[2,2]],"generations":4}`, http.StatusOK, patterns.Glider.Translate(1, 1)},
		{"objects", "POST", `{"cells":[{"x":0,"y":1},{"x":1,"y":1},{"x":2,"y":1}],"generations":1}`, http.StatusOK, patterns.Cells{{1, 0}, {1, 1}, {1, 2}}},
		{"empty", "POST", `{"cells":[],"generations":10}`, http.StatusOK, patterns.Cells{}},
		{"negative", "POST", `{"cells":[[0,0]],"generations":-1}`, http.StatusBadRequest, nil},
		{"fractional", "POST", `{"cells":[[0.5,0]],"generations":1}`, http.StatusBadRequest, nil},
		{"broken", "POST", `{"cells":`, http.StatusBadRequest, nil},
		{"get", "GET", ``, http.StatusMethodNotAllowed, nil},
	}

	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			req, err := http.NewRequest(c.method, "/advance", strings.NewReader(c.body))
			assert.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")

			rr := httptest.NewRecorder()
			Advance(wk).ServeHTTP(rr, req)
			assert.Equal(t, c.status, rr.Code, rr.Body.String())
			if c.cells == nil {
				return
			}

			var res protocol.Response
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
			assert.Equal(t, protocol.Result, res.Type)
			assert.Equal(t, c.cells.Sorted(), fromCells(res.Cells))
		})
	}
}

func TestAdvanceMsgpack(t *testing.T) {
	wk := newTestWorker(t)
	defer wk.Stop()

	body, err := protocol.Encode(protocol.Msgpack, &protocol.Request{
		Cells:       protocol.Cells{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
		Generations: 2,
	})
	assert.NoError(t, err)

	req, err := http.NewRequest("POST", "/advance", bytes.NewReader(body))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/msgpack")

	rr := httptest.NewRecorder()
	Advance(wk).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/msgpack", rr.Header().Get("Content-Type"))

	var res protocol.Response
	assert.NoError(t, protocol.Decode(protocol.Msgpack, rr.Body.Bytes(), &res))
	assert.Equal(t, patterns.Blinker.Sorted(), fromCells(res.Cells))
	assert.Equal(t, int64(3), res.Population)
}

func TestAdvanceResourceExhausted(t *testing.T) {
	wk := newTestWorker(t, func(c *hashlife.Config) { c.MaxLevel = 4 })
	defer wk.Stop()

	req, err := http.NewRequest("POST", "/advance", strings.NewReader(`{"cells":[[0,0],[1000,0]],"generations":1}`))
	assert.NoError(t, err)

	rr := httptest.NewRecorder()
	Advance(wk).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var res protocol.Response
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, protocol.KindResource, res.Kind)
}

func TestStatsAndClear(t *testing.T) {
	wk := newTestWorker(t)
	defer wk.Stop()
	api := NewApiHttp(wk, nil)

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/advance", strings.NewReader(`{"cells":[[1,0],[2,1],[0,2],[1,2],[2,2]],"generations":64}`))
	api.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/stats", nil)
	api.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	var res protocol.Response
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.Stats.Nodes > 0)

	rr = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/cache/clear", nil)
	api.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/stats", nil)
	api.ServeHTTP(rr, req)
	res = protocol.Response{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 0, res.Stats.Nodes)

	rr = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/cache/clear", nil)
	api.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/cancel", nil)
	api.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/cancel?id=unknown", nil)
	api.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestStatusFor(t *testing.T) {

	testCases := []struct {
		res    protocol.Response
		status int
	}{
		{protocol.Response{Type: protocol.Result}, http.StatusOK},
		{protocol.Response{Type: protocol.Clear}, http.StatusOK},
		{protocol.Response{Type: protocol.Error, Kind: protocol.KindValidation}, http.StatusBadRequest},
		{protocol.Response{Type: protocol.Error, Kind: protocol.KindResource}, http.StatusUnprocessableEntity},
		{protocol.Response{Type: protocol.Error, Kind: protocol.KindCanceled}, http.StatusRequestTimeout},
		{protocol.Response{Type: protocol.Error, Kind: protocol.KindInternal}, http.StatusInternalServerError},
	}

	for i, c := range testCases {
		assert.Equal(t, c.status, StatusFor(&c.res), "case %d", i)
	}
}

func TestWebSocket(t *testing.T) {
	wk := newTestWorker(t)
	defer wk.Stop()

	server := httptest.NewServer(NewApiHttp(wk, nil))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	// json over text frames
	err = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"run","id":"g","cells":[[1,0],[2,1],[0,2],[1,2],[2,2]],"generations":8}`))
	assert.NoError(t, err)
	kind, msg, err := conn.ReadMessage()
	assert.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	var res protocol.Response
	assert.NoError(t, json.Unmarshal(msg, &res))
	assert.Equal(t, protocol.Result, res.Type)
	assert.Equal(t, "g", res.ID)
	assert.Equal(t, patterns.Glider.Translate(2, 2).Sorted(), fromCells(res.Cells))

	// msgpack over binary frames
	body, err := protocol.Encode(protocol.Msgpack, &protocol.Request{Type: protocol.Stats, ID: "s"})
	assert.NoError(t, err)
	assert.NoError(t, conn.WriteMessage(websocket.BinaryMessage, body))
	kind, msg, err = conn.ReadMessage()
	assert.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	res = protocol.Response{}
	assert.NoError(t, protocol.Decode(protocol.Msgpack, msg, &res))
	assert.Equal(t, protocol.Stats, res.Type)
	assert.Equal(t, "s", res.ID)
	assert.True(t, res.Stats.Nodes > 0)

	// malformed messages get an error back and keep the connection open
	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"run","cells":[[0.5,1]]}`)))
	_, msg, err = conn.ReadMessage()
	assert.NoError(t, err)
	res = protocol.Response{}
	assert.NoError(t, json.Unmarshal(msg, &res))
	assert.Equal(t, protocol.Error, res.Type)
	assert.Equal(t, protocol.KindValidation, res.Kind)

	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"cancel","id":"nothing"}`)))
	_, msg, err = conn.ReadMessage()
	assert.NoError(t, err)
	res = protocol.Response{}
	assert.NoError(t, json.Unmarshal(msg, &res))
	assert.Equal(t, protocol.Cancel, res.Type)
}
