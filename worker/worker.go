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

// Package worker runs simulation requests against a single engine in
// arrival order. The engine is not safe for concurrent use, so every
// request touching it, runs, cache clears and stats, goes through the
// same queue and is executed by one goroutine.
//
// Cancellation is advisory: a queued run that was canceled is skipped and
// a running one is abandoned at the next leap of the driver. Either way
// its result is discarded and the caller gets an ErrCanceled response.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/bbva/hashlife/hashlife"
	"github.com/bbva/hashlife/log"
	"github.com/bbva/hashlife/metrics"
	"github.com/bbva/hashlife/protocol"
)

var (
	ErrQueueTimedOut = errors.New("timed out enqueuing request")
	ErrStopped       = errors.New("worker stopped")
	ErrDuplicatedID  = errors.New("a request with the same id is pending")
)

type Config struct {
	// Pending requests accepted before callers block.
	QueueSize int `desc:"Pending requests accepted before new ones wait" mapstructure:"queue-size"`

	// Longest wait for a free slot in the queue.
	EnqueueTimeout time.Duration `desc:"Longest wait for a free slot in the request queue" mapstructure:"enqueue-timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		QueueSize:      64,
		EnqueueTimeout: 5 * time.Second,
	}
}

type job struct {
	req    *protocol.Request
	ctx    context.Context
	cancel context.CancelFunc
	reply  chan *protocol.Response
}

type Worker struct {
	engine  *hashlife.Engine
	log     log.Logger
	timeout time.Duration

	jobCh  chan *job
	quitCh chan bool
	doneCh chan bool

	sync.Mutex
	pending map[string]*job
	started bool
	stopped bool
}

func New(conf *Config, engine *hashlife.Engine, logger log.Logger) *Worker {
	if conf == nil {
		conf = DefaultConfig()
	}
	if logger == nil {
		logger = log.L()
	}
	return &Worker{
		engine:  engine,
		log:     logger.Named("worker"),
		timeout: conf.EnqueueTimeout,
		jobCh:   make(chan *job, conf.QueueSize),
		quitCh:  make(chan bool),
		doneCh:  make(chan bool),
		pending: make(map[string]*job),
	}
}

// Start launches the processing loop.
func (w *Worker) Start() {
	w.Lock()
	defer w.Unlock()
	if w.started {
		return
	}
	w.started = true
	w.log.Info("Starting worker")
	go w.loop()
}

// Stop ends the processing loop after the current request. Queued
// requests are answered with ErrStopped.
func (w *Worker) Stop() {
	w.Lock()
	if w.stopped {
		w.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	w.Unlock()

	w.log.Info("Stopping worker")
	close(w.quitCh)
	if started {
		<-w.doneCh
	}
}

// Len returns the number of queued requests.
func (w *Worker) Len() int {
	return len(w.jobCh)
}

// Do enqueues req and waits for its response. Errors are reported as
// error responses. When ctx ends first the request is canceled.
func (w *Worker) Do(ctx context.Context, req *protocol.Request) *protocol.Response {
	if err := req.Validate(); err != nil {
		return protocol.NewError(req.ID, err)
	}
	if req.Type == protocol.Cancel {
		w.Cancel(req.ID)
		return &protocol.Response{Type: protocol.Cancel, ID: req.ID}
	}
	if req.ID == "" {
		req.ID = uuid.New()
	}

	jctx, cancel := context.WithCancel(ctx)
	j := &job{req: req, ctx: jctx, cancel: cancel, reply: make(chan *protocol.Response, 1)}
	if err := w.enqueue(j); err != nil {
		cancel()
		return protocol.NewError(req.ID, err)
	}

	select {
	case res := <-j.reply:
		return res
	case <-ctx.Done():
		w.Cancel(req.ID)
		return protocol.NewError(req.ID, errors.Wrap(ctx.Err(), "request abandoned"))
	case <-w.quitCh:
		return protocol.NewError(req.ID, ErrStopped)
	}
}

func (w *Worker) enqueue(j *job) error {
	w.Lock()
	if w.stopped {
		w.Unlock()
		return ErrStopped
	}
	if _, ok := w.pending[j.req.ID]; ok {
		w.Unlock()
		return ErrDuplicatedID
	}
	w.pending[j.req.ID] = j
	w.Unlock()

	timer := time.NewTimer(w.timeout)
	defer timer.Stop()
	select {
	case w.jobCh <- j:
		metrics.HashlifeWorkerQueueLength.Inc()
		return nil
	case <-timer.C:
		w.forget(j.req.ID)
		return ErrQueueTimedOut
	case <-w.quitCh:
		w.forget(j.req.ID)
		return ErrStopped
	}
}

func (w *Worker) forget(id string) {
	w.Lock()
	defer w.Unlock()
	if j, ok := w.pending[id]; ok {
		j.cancel()
		delete(w.pending, id)
	}
}

// Cancel marks a queued or running request as canceled. Unknown ids are
// ignored: the request may have finished already.
func (w *Worker) Cancel(id string) {
	w.Lock()
	j, ok := w.pending[id]
	w.Unlock()
	if !ok {
		w.log.Debugf("cancel of unknown request %s ignored", id)
		return
	}
	w.log.Debugf("canceling request %s", id)
	j.cancel()
}

func (w *Worker) loop() {
	defer close(w.doneCh)
	for {
		select {
		case j := <-w.jobCh:
			metrics.HashlifeWorkerQueueLength.Dec()
			res := w.process(j)
			w.forget(j.req.ID)
			j.reply <- res
		case <-w.quitCh:
			return
		}
	}
}

func (w *Worker) process(j *job) *protocol.Response {
	req := j.req
	switch req.Type {
	case protocol.Clear:
		w.engine.ClearCache()
		return &protocol.Response{Type: protocol.Clear, ID: req.ID}
	case protocol.Stats:
		stats := w.engine.Stats()
		return &protocol.Response{Type: protocol.Stats, ID: req.ID, Stats: &stats}
	}

	if j.ctx.Err() != nil {
		w.log.Debugf("skipping canceled request %s", req.ID)
		metrics.HashlifeWorkerCanceledTotal.Inc()
		return protocol.NewError(req.ID, protocol.ErrCanceled)
	}

	metrics.HashlifeWorkerRunsTotal.Inc()
	start := time.Now()
	res, err := w.engine.Advance(j.ctx, []hashlife.Cell(req.Cells), req.Generations)
	if j.ctx.Err() != nil {
		w.log.Debugf("discarding result of canceled request %s", req.ID)
		metrics.HashlifeWorkerCanceledTotal.Inc()
		return protocol.NewError(req.ID, protocol.ErrCanceled)
	}
	if err != nil {
		w.log.Infof("request %s failed: %v", req.ID, err)
		return protocol.NewError(req.ID, err)
	}
	w.log.Debugf("request %s advanced %d generations in %v, population %d",
		req.ID, req.Generations, time.Since(start), res.Tree.Population())
	return protocol.NewResult(req.ID, res)
}
