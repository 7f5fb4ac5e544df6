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


package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bbva/hashlife/log"
	"github.com/bbva/hashlife/server"
	"github.com/bbva/hashlife/util"
)

var serverStart *cobra.Command = &cobra.Command{
	Use:   "start",
	Short: "Starts the hashlife simulation service",
	RunE:  runServerStart,
}

func init() {
	serverCmd.AddCommand(serverStart)
}

func runServerStart(cmd *cobra.Command, args []string) error {
	ctx := serverCtx.Value(k("server.context")).(*cmdContext)
	conf := serverCtx.Value(k("server.config")).(*server.Config)

	if ctx.configFile != "" {
		var err error
		conf, err = server.LoadConfigFile(ctx.configFile, conf)
		if err != nil {
			return err
		}
	}

	err := checkBindAddr(conf.HTTPAddr, conf.MetricsAddr, conf.ProfilingAddr)
	if err != nil {
		return err
	}

	logger := newLogger("hashlife", conf.Log)
	log.SetDefault(logger)
	logger.Debugf("Server configuration: %+v", conf)

	srv, err := server.NewServer(conf, logger)
	if err != nil {
		logger.Errorf("Can't create hashlife server: %v", err)
		return err
	}

	err = srv.Start()
	if err != nil {
		logger.Errorf("Can't start hashlife server: %v", err)
		return err
	}

	util.AwaitTermSignal(srv.Stop)

	logger.Debug("Stopping server, about to exit...")
	return nil
}
