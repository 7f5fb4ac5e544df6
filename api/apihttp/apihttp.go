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

// Package apihttp implements the HTTP API public interface of the
// simulation server.
package apihttp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/bbva/hashlife/log"
	"github.com/bbva/hashlife/metrics"
	"github.com/bbva/hashlife/protocol"
	"github.com/bbva/hashlife/worker"
)

// maxBodySize bounds request bodies, patterns included.
const maxBodySize = 32 << 20

// HealthCheckResponse contains the response from HealthCheckHandler.
type HealthCheckResponse struct {
	Version int    `json:"version"`
	Status  string `json:"status"`
}

// This handler checks the system status and returns it accordinly.
// The http call it answer is:
//	GET /health-check
//
// If everything is allright, the HTTP status is 200 and the body contains:
//	 {"version": "0", "status":"ok"}
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	metrics.HashlifeAPIHealthcheckRequestsTotal.Inc()

	result := HealthCheckResponse{
		Version: 0,
		Status:  "ok",
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		panic(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	out := new(bytes.Buffer)
	_ = json.Compact(out, resultJson)
	_, _ = w.Write(out.Bytes())
}

// Advance moves a pattern forward.
// The http post url is:
//	POST /advance
//
// The body is a run request, JSON or msgpack depending on Content-Type:
//	{"id": "optional", "cells": [[0,1],[1,2],[2,0],[2,1],[2,2]], "generations": 1024}
//
// The answer uses the format named by Accept, or the request one, with
// status 200 and the final cells, 400 for malformed input, 422 when the
// pattern outgrew the engine limits and 408 if the run was canceled.
func Advance(wk *worker.Worker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		// Make sure we can only be called with an HTTP POST request.
		if r.Method != "POST" {
			w.Header().Set("Allow", "POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if r.Body == nil {
			http.Error(w, "Please send a request body", http.StatusBadRequest)
			return
		}

		format := protocol.FormatFromContentType(r.Header.Get("Content-Type"))
		body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req protocol.Request
		if err := protocol.Decode(format, body, &req); err != nil {
			writeResponse(w, responseFormat(r, format), protocol.NewError("", err))
			return
		}
		req.Type = protocol.Run

		writeResponse(w, responseFormat(r, format), wk.Do(r.Context(), &req))
	}
}

// Cancel abandons a run.
//	POST /cancel?id=<run id>
func Cancel(wk *worker.Worker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			w.Header().Set("Allow", "POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		req := &protocol.Request{Type: protocol.Cancel, ID: r.URL.Query().Get("id")}
		writeResponse(w, protocol.JSON, wk.Do(r.Context(), req))
	}
}

// ClearCache empties the engine caches once the runs queued before it
// are done.
//	POST /cache/clear
func ClearCache(wk *worker.Worker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			w.Header().Set("Allow", "POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeResponse(w, protocol.JSON, wk.Do(r.Context(), &protocol.Request{Type: protocol.Clear}))
	}
}

// Stats reports the engine cache sizes and hit counts.
//	GET /stats
func Stats(wk *worker.Worker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			w.Header().Set("Allow", "GET")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeResponse(w, protocol.JSON, wk.Do(r.Context(), &protocol.Request{Type: protocol.Stats}))
	}
}

func responseFormat(r *http.Request, requested protocol.Format) protocol.Format {
	if accept := r.Header.Get("Accept"); accept != "" && accept != "*/*" {
		return protocol.FormatFromContentType(accept)
	}
	return requested
}

// StatusFor maps a worker response to an HTTP status code.
func StatusFor(res *protocol.Response) int {
	if res.Type != protocol.Error {
		return http.StatusOK
	}
	switch res.Kind {
	case protocol.KindValidation:
		return http.StatusBadRequest
	case protocol.KindResource:
		return http.StatusUnprocessableEntity
	case protocol.KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(w http.ResponseWriter, format protocol.Format, res *protocol.Response) {
	out, err := protocol.Encode(format, res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", string(format))
	w.WriteHeader(StatusFor(res))
	_, _ = w.Write(out)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets websocket upgrades through.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// LogHandler logs the method, path, status and latency of every request.
func LogHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler.ServeHTTP(rec, r)
		logger.Debugf("%s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// InstrumentHandler counts the requests served by handler, by status code.
func InstrumentHandler(name string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(rec, r)
		metrics.HashlifeAPIRequestsTotal.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
	}
}

// NewApiHttp returns a new *http.ServeMux containing all the API handlers
// already configured.
func NewApiHttp(wk *worker.Worker, logger log.Logger) *http.ServeMux {
	if logger == nil {
		logger = log.L()
	}
	api := http.NewServeMux()
	api.HandleFunc("/health-check", HealthCheckHandler)
	api.HandleFunc("/advance", InstrumentHandler("advance", Advance(wk)))
	api.HandleFunc("/cancel", InstrumentHandler("cancel", Cancel(wk)))
	api.HandleFunc("/cache/clear", InstrumentHandler("cache_clear", ClearCache(wk)))
	api.HandleFunc("/stats", InstrumentHandler("stats", Stats(wk)))
	api.HandleFunc("/ws", WebSocket(wk, logger.Named("ws")))
	return api
}
