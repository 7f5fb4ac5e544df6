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

package log

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {

	testCases := []struct {
		input    string
		expected Level
	}{
		{"off", Off},
		{"silent", Off},
		{" INFO ", Info},
		{"debug", Debug},
		{"trace", Trace},
		{"error", Error},
		{"fatal", Fatal},
		{"warn", Warn},
		{"verbose", NotSet},
	}

	for i, c := range testCases {
		require.Equalf(t, c.expected, LevelFromString(c.input), "Wrong level in test case %d", i)
	}
}

func TestLogger(t *testing.T) {

	t.Run("writes at or above the threshold", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&LoggerOptions{
			Name:   "test",
			Output: &buf,
			Level:  Info,
		})

		logger.Debug("hidden")
		require.Equal(t, "", buf.String())

		logger.Infof("advanced %d generations", 8)
		str := buf.String()
		require.True(t, strings.Contains(str, "[INFO]"), str)
		require.True(t, strings.Contains(str, "test: advanced 8 generations"), str)
	})

	t.Run("named loggers are appended", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&LoggerOptions{
			Name:   "hashlife",
			Output: &buf,
			Level:  Debug,
		})

		logger.Named("engine").Debug("rebuilt tree")
		require.True(t, strings.Contains(buf.String(), "hashlife.engine: rebuilt tree"), buf.String())

		buf.Reset()
		logger.Named("engine").ResetNamed("worker").Warn("queue full")
		require.True(t, strings.Contains(buf.String(), "worker: queue full"), buf.String())
		require.False(t, strings.Contains(buf.String(), "engine"), buf.String())
	})

	t.Run("off writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&LoggerOptions{Output: &buf, Level: Off})
		logger.Error("nothing")
		require.Equal(t, "", buf.String())
		require.Equal(t, Off, logger.GetLevel())
	})

	t.Run("with level changes the threshold", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&LoggerOptions{Output: &buf, Level: Error}).WithLevel(Debug)
		logger.Debugf("level %s", "debug")
		require.True(t, strings.Contains(buf.String(), "[DEBUG]"), buf.String())
	})

	t.Run("fatal exits", func(t *testing.T) {
		var buf bytes.Buffer
		code := 0
		osExit = func(c int) { code = c }
		defer func() { osExit = os.Exit }()

		New(&LoggerOptions{Output: &buf, Level: Info}).Fatalf("killed in the name %s", "off")
		require.Equal(t, 1, code)
		require.True(t, strings.Contains(buf.String(), "killed in the name off"), buf.String())
	})

	t.Run("default logger can be replaced", func(t *testing.T) {
		var buf bytes.Buffer
		prev := SetDefault(New(&LoggerOptions{Name: "default", Output: &buf, Level: Info}))
		defer SetDefault(prev)

		L().Named("test").Info("this is a test")
		require.True(t, strings.Contains(buf.String(), "default.test: this is a test"), buf.String())
	})
}

func TestIncludeLocation(t *testing.T) {
	var buf bytes.Buffer
	l := New(&LoggerOptions{
		Name:            "located",
		Level:           Info,
		Output:          &buf,
		IncludeLocation: true,
	})

	l.Infof("cells=%d", 5)
	out := buf.String()
	require.Contains(t, out, "located")
	require.Contains(t, out, "cells=5")
	require.Contains(t, out, ".go:", "a file and line must be reported")
}
