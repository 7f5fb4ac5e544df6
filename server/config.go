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
	"time"

	"github.com/imdario/mergo"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/bbva/hashlife/hashlife"
	"github.com/bbva/hashlife/worker"
)

type Config struct {
	// Log level
	Log string `desc:"Set log level to info, error or debug" mapstructure:"log"`

	// API server bind address/port.
	HTTPAddr string `desc:"Endpoint for REST and websocket requests on (host:port)" mapstructure:"http-addr"`

	// Metrics bind address/port.
	MetricsAddr string `desc:"Endpoint for Prometheus metrics (host:port)" mapstructure:"metrics-addr"`

	// Enable TLS service
	EnableTLS bool `desc:"Serve the API over TLS" mapstructure:"enable-tls"`

	// TLS server cerificate
	TLSCertPath string `desc:"Server certificate file path" mapstructure:"tls-cert-path"`

	// TLS server cerificate key
	TLSKeyPath string `desc:"Server certificate key file path" mapstructure:"tls-key-path"`

	// Enable Pprof prifiling server
	EnableProfiling bool `desc:"Enable the pprof profiling server" mapstructure:"enable-profiling"`

	// Profiling server address/port
	ProfilingAddr string `desc:"Endpoint for the profiling server (host:port)" mapstructure:"profiling-addr"`

	// Grace period for in-flight requests on shutdown.
	ShutdownTimeout time.Duration `desc:"Grace period for in-flight requests on shutdown" mapstructure:"shutdown-timeout"`

	// Simulation engine limits and caches.
	Engine *hashlife.Config `mapstructure:"engine"`

	// Request queue.
	Worker *worker.Config `mapstructure:"worker"`
}

func DefaultConfig() *Config {
	return &Config{
		Log:             "info",
		HTTPAddr:        "127.0.0.1:8800",
		MetricsAddr:     "127.0.0.1:8600",
		EnableTLS:       false,
		EnableProfiling: false,
		ProfilingAddr:   "127.0.0.1:6060",
		ShutdownTimeout: 10 * time.Second,
		Engine:          hashlife.DefaultConfig(),
		Worker:          worker.DefaultConfig(),
	}
}

// LoadConfigFile reads a yaml, toml or json config file and fills the
// settings it leaves out from base. A leading "~" in path is expanded to
// the user home directory.
func LoadConfigFile(path string, base *Config) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to expand config path %s", path)
	}

	v := viper.New()
	v.SetConfigFile(expanded)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", expanded)
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrapf(err, "unable to decode config file %s", expanded)
	}
	if err := mergo.Merge(conf, *base); err != nil {
		return nil, errors.Wrap(err, "unable to merge config file with defaults")
	}
	return conf, nil
}
