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

// Package util holds process level helpers.
package util

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bbva/hashlife/log"
)

// AwaitTermSignal waits for standard termination signals, then runs the given
// function; it should be run as a separate goroutine.
func AwaitTermSignal(closeFn func() error) {
	signals := make(chan os.Signal, 1)
	// sigint: Ctrl-C, sigterm: kill command
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	// block main and wait for a signal
	sig := <-signals
	log.L().Infof("Signal received: %v", sig)

	if err := closeFn(); err != nil {
		log.L().Errorf("Error while closing: %v", err)
	}
}
