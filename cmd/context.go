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
	"encoding/json"
	"io"
	"io/ioutil"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"

	"github.com/bbva/hashlife/hashlife"
	"github.com/bbva/hashlife/log"
	"github.com/bbva/hashlife/protocol"
)

type cmdContext struct {
	logLevel, input, configFile string
}

// runContext carries the flags shared by the local simulation commands.
type runContext struct {
	cmdContext
	engine *hashlife.Config
}

func newLogger(name, level string) log.Logger {
	return log.New(&log.LoggerOptions{
		Name:   name,
		Level:  log.LevelFromString(level),
		Output: os.Stderr,
	})
}

// openInput returns the named file, or stdin when path is empty or "-".
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return ioutil.NopCloser(stdin), nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to expand input path %s", path)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open input %s", expanded)
	}
	return f, nil
}

// readCells decodes a JSON array of cells in any of the accepted shapes.
func readCells(r io.Reader) ([]hashlife.Cell, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read cells")
	}
	var cells protocol.Cells
	if err := json.Unmarshal(data, &cells); err != nil {
		return nil, err
	}
	return []hashlife.Cell(cells), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
