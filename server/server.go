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

// Package server wires the simulation engine, its worker and the HTTP
// APIs into a runnable process.
package server

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bbva/hashlife/api/apihttp"
	"github.com/bbva/hashlife/api/metricshttp"
	"github.com/bbva/hashlife/hashlife"
	"github.com/bbva/hashlife/log"
	"github.com/bbva/hashlife/metrics"
	"github.com/bbva/hashlife/worker"
)

// Server encapsulates the data and logic to start/stop a simulation server.
type Server struct {
	conf *Config
	log  log.Logger

	engine             *hashlife.Engine
	worker             *worker.Worker
	httpServer         *http.Server
	metricsServer      *http.Server
	profilingServer    *http.Server
	prometheusRegistry *prometheus.Registry

	sync.Mutex
	listeners map[*http.Server]net.Listener
	running   bool
	wg        sync.WaitGroup
}

// NewServer creates a new Server based on the parameters it receives.
func NewServer(conf *Config, logger log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.L()
	}
	logger = logger.Named("server")

	if conf.EnableTLS && (conf.TLSCertPath == "" || conf.TLSKeyPath == "") {
		return nil, errors.New("TLS requires both a certificate and a key")
	}

	engine, err := hashlife.NewEngine(conf.Engine, logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create engine")
	}

	server := &Server{
		conf:               conf,
		log:                logger,
		engine:             engine,
		worker:             worker.New(conf.Worker, engine, logger),
		prometheusRegistry: prometheus.NewRegistry(),
		listeners:          make(map[*http.Server]net.Listener),
	}

	// register default metrics
	if err := metrics.Register(server.prometheusRegistry); err != nil {
		return nil, err
	}

	// Create http endpoints
	httpMux := apihttp.NewApiHttp(server.worker, logger)
	if conf.EnableTLS {
		server.httpServer = newTLSServer(conf.HTTPAddr, apihttp.LogHandler(httpMux, logger))
	} else {
		server.httpServer = newHTTPServer(conf.HTTPAddr, apihttp.LogHandler(httpMux, logger))
	}

	if conf.MetricsAddr != "" {
		server.metricsServer = newHTTPServer(conf.MetricsAddr, metricshttp.NewMetricsHTTP(server.prometheusRegistry))
	}

	if conf.EnableProfiling {
		// net/http/pprof handlers live in the default mux
		server.profilingServer = newHTTPServer(conf.ProfilingAddr, http.DefaultServeMux)
	}

	return server, nil
}

// Start binds every configured address and serves in the background.
func (s *Server) Start() error {
	s.log.Infof("Starting hashlife server on %s", s.conf.HTTPAddr)
	s.worker.Start()

	servers := []*http.Server{s.httpServer, s.metricsServer, s.profilingServer}
	for _, srv := range servers {
		if srv == nil {
			continue
		}
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			_ = s.Stop()
			return errors.Wrapf(err, "unable to listen on %s", srv.Addr)
		}
		s.Lock()
		s.listeners[srv] = ln
		s.Unlock()

		s.wg.Add(1)
		go func(srv *http.Server, ln net.Listener) {
			defer s.wg.Done()
			s.log.Debugf("	* Starting HTTP server in addr: %s", ln.Addr())
			var err error
			if srv == s.httpServer && s.conf.EnableTLS {
				err = srv.ServeTLS(ln, s.conf.TLSCertPath, s.conf.TLSKeyPath)
			} else {
				err = srv.Serve(ln)
			}
			if err != http.ErrServerClosed {
				s.log.Errorf("Can't serve on %s: %v", ln.Addr(), err)
			}
		}(srv, ln)
	}

	s.Lock()
	s.running = true
	s.Unlock()
	metrics.HashlifeServerInstances.Inc()
	s.log.Debugf("ready on %s", s.conf.HTTPAddr)
	return nil
}

// Addr returns the bound API address, useful when listening on port 0.
func (s *Server) Addr() string {
	s.Lock()
	defer s.Unlock()
	if ln, ok := s.listeners[s.httpServer]; ok {
		return ln.Addr().String()
	}
	return s.conf.HTTPAddr
}

// Stop shuts the HTTP servers down and then the worker.
func (s *Server) Stop() error {
	s.log.Infof("Shutting down hashlife server")

	ctx, cancel := context.WithTimeout(context.Background(), s.conf.ShutdownTimeout)
	defer cancel()

	var firstErr error
	for _, srv := range []*http.Server{s.httpServer, s.metricsServer, s.profilingServer} {
		if srv == nil {
			continue
		}
		s.log.Debugf("Stopping HTTP server in addr: %s", srv.Addr)
		if err := srv.Shutdown(ctx); err != nil && firstErr == nil {
			s.log.Error(err.Error())
			firstErr = err
		}
	}
	s.wg.Wait()

	s.log.Debugf("Stopping worker...")
	s.worker.Stop()

	s.Lock()
	if s.running {
		s.running = false
		metrics.HashlifeServerInstances.Dec()
	}
	s.Unlock()

	s.log.Debugf("Done. Exiting...")
	return firstErr
}

func newTLSServer(addr string, handler http.Handler) *http.Server {

	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		CurvePreferences: []tls.CurveID{
			tls.CurveP521,
			tls.CurveP384,
			tls.CurveP256,
		},
		PreferServerCipherSuites: true,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
			tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_RSA_WITH_AES_256_CBC_SHA,
		},
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		TLSConfig:    cfg,
		TLSNextProto: make(map[string]func(*http.Server, *tls.Conn, http.Handler), 0),
	}

}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,
	}
}
