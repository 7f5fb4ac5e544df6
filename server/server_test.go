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

package server

import (
	"crypto/tls"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/bbva/hashlife/log"
	"github.com/bbva/hashlife/metrics"
	testtls "github.com/bbva/hashlife/testutils/tls"
)

func newTestConfig() *Config {
	conf := DefaultConfig()
	conf.HTTPAddr = "127.0.0.1:0"
	conf.MetricsAddr = "127.0.0.1:0"
	conf.ShutdownTimeout = time.Second
	return conf
}

func TestServerStartStop(t *testing.T) {
	srv, err := NewServer(newTestConfig(), log.New(&log.LoggerOptions{Name: "test", Level: log.Off}))
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	defer func() {
		require.NoError(t, srv.Stop())
	}()

	base := "http://" + srv.Addr()
	resp, err := http.Get(base + "/health-check")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(base+"/advance", "application/json",
		strings.NewReader(`{"cells":[[0,1],[1,1],[2,1]],"generations":3}`))
	require.NoError(t, err)
	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Contains(t, string(body), `"population":3`)
}

func instances(t *testing.T) float64 {
	var m dto.Metric
	require.NoError(t, metrics.HashlifeServerInstances.Write(&m))
	return m.GetGauge().GetValue()
}

func TestServerInstancesGauge(t *testing.T) {
	before := instances(t)

	srv, err := NewServer(newTestConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	require.Equal(t, before+1, instances(t))

	require.NoError(t, srv.Stop())
	require.Equal(t, before, instances(t))
	require.NoError(t, srv.Stop())
	require.Equal(t, before, instances(t), "stopping twice counts once")
}

func TestServerTLS(t *testing.T) {
	dir, err := ioutil.TempDir("", "hashlife-tls")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	conf := newTestConfig()
	conf.MetricsAddr = ""
	conf.EnableTLS = true
	conf.TLSCertPath, conf.TLSKeyPath, err = testtls.CreateSelfSignedFiles(dir, "127.0.0.1")
	require.NoError(t, err)

	srv, err := NewServer(conf, log.New(&log.LoggerOptions{Name: "test", Level: log.Off}))
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	resp, err := client.Get("https://" + srv.Addr() + "/health-check")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewServerErrors(t *testing.T) {
	conf := newTestConfig()
	conf.EnableTLS = true
	_, err := NewServer(conf, nil)
	require.Error(t, err)

	conf = newTestConfig()
	conf.Engine.CacheBackend = "nope"
	_, err = NewServer(conf, nil)
	require.Error(t, err)
}

func TestStartFailsOnBusyAddress(t *testing.T) {
	first, err := NewServer(newTestConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, first.Start())
	defer first.Stop()

	conf := newTestConfig()
	conf.HTTPAddr = first.Addr()
	second, err := NewServer(conf, nil)
	require.NoError(t, err)
	require.Error(t, second.Start())
}

func TestLoadConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "hashlife-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yml")
	content := `
http-addr: "0.0.0.0:9000"
shutdown-timeout: 3s
engine:
  max-level: 20
  greedy-leaps: true
worker:
  queue-size: 3
`
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))

	conf, err := LoadConfigFile(path, DefaultConfig())
	require.NoError(t, err)

	defaults := DefaultConfig()
	require.Equal(t, "0.0.0.0:9000", conf.HTTPAddr)
	require.Equal(t, 3*time.Second, conf.ShutdownTimeout)
	require.Equal(t, defaults.MetricsAddr, conf.MetricsAddr)
	require.Equal(t, defaults.Log, conf.Log)
	require.Equal(t, uint(20), conf.Engine.MaxLevel)
	require.True(t, conf.Engine.GreedyLeaps)
	require.Equal(t, defaults.Engine.MaxNodes, conf.Engine.MaxNodes)
	require.Equal(t, defaults.Engine.CacheBackend, conf.Engine.CacheBackend)
	require.Equal(t, 3, conf.Worker.QueueSize)
	require.Equal(t, defaults.Worker.EnqueueTimeout, conf.Worker.EnqueueTimeout)

	_, err = LoadConfigFile(filepath.Join(dir, "missing.yml"), DefaultConfig())
	require.Error(t, err)
}
