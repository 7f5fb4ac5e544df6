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

// Package log implements a levelled, named logger used across the hashlife
// packages. It is a thin facade over hashicorp/go-hclog that keeps the
// printf-style API the rest of the code base is written against.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	hclog "github.com/hashicorp/go-hclog"
)

// Level represents the logging level.
type Level uint32

const (
	// NotSet level is used to indicate that no level has been set
	// and allow for a default to be used
	NotSet Level = iota

	// Off is intended to avoid tracing any action.
	Off

	// Fatal designates very severe errors that lead the application to
	// abort.
	Fatal

	// Error designates error events that might still allow the application
	// to continue running.
	Error

	// Warn designates potentially harmful situations.
	Warn

	// Info designates coarse-grained informational messages.
	Info

	// Debug designates fine-grained events useful to debug the engine
	// (driver iterations, cache activity). Don't use it in production.
	Debug

	// Trace designates even finer-grained events than Debug.
	Trace
)

func (l Level) String() string {
	switch l {
	case Off:
		return "off"
	case Fatal:
		return "fatal"
	case Error:
		return "error"
	case Warn:
		return "warn"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	default:
		return "unknown"
	}
}

// LevelFromString returns a Level type for the named log level, or
// "NotSet" if the level passed as argument is invalid.
func LevelFromString(level string) Level {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "off", "silent":
		return Off
	case "fatal":
		return Fatal
	case "error":
		return Error
	case "warn":
		return Warn
	case "info":
		return Info
	case "debug":
		return Debug
	case "trace":
		return Trace
	default:
		return NotSet
	}
}

// hclogLevel maps our levels into the backend ones. Fatal has no
// counterpart so it is emitted as an error.
func (l Level) hclogLevel() hclog.Level {
	switch l {
	case Fatal, Error:
		return hclog.Error
	case Warn:
		return hclog.Warn
	case Info:
		return hclog.Info
	case Debug:
		return hclog.Debug
	case Trace:
		return hclog.Trace
	default:
		return hclog.Info
	}
}

type Logger interface {
	Trace(msg string)
	Tracef(format string, args ...interface{})
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	Fatal(msg string)
	Fatalf(format string, args ...interface{})
	Panic(msg string)
	Panicf(format string, args ...interface{})

	// Create a logger that will prepend the given name on front of all
	// messages. If the logger has a previously set name, the new value
	// will be the appended to it.
	Named(name string) Logger

	// Create a logger that will prepend the given name on front of all
	// messages. It overrides any previously set name.
	ResetNamed(name string) Logger

	WithLevel(level Level) Logger

	// GetLevel returns the threshold of this logger.
	GetLevel() Level

	// StdLogger returns a logger implementation that conforms to the
	// stdlib log.Logger interface, for third party packages (net/http)
	// that expect one.
	StdLogger() *log.Logger
}

// LoggerOptions can be used to configure a new logger.
type LoggerOptions struct {
	// Name of the subsystem to prefix logs with.
	Name string

	// Level is the threshold for the logger. Any log trace less
	// sever is supressed.
	Level Level

	// Output is the writer implementation where to write logs to.
	// If nil, defaults to DefaultOutput.
	Output io.Writer

	// TimeFormat is the time format to use instead of the default one.
	TimeFormat string

	// IncludeLocation includes file and line information in each log line.
	IncludeLocation bool

	// Mutex is an optional mutex pointer in case Output is shared.
	Mutex *sync.Mutex
}

// To allow mocking we require a switchable variable.
var osExit = os.Exit

type hcLogger struct {
	opts  LoggerOptions
	level Level
	l     hclog.Logger
}

func New(opts *LoggerOptions) Logger {
	if opts == nil {
		opts = &LoggerOptions{}
	}
	o := *opts

	if o.Output == nil {
		o.Output = DefaultOutput
	}
	if o.Level == NotSet {
		o.Level = DefaultLevel
	}
	if o.Mutex == nil {
		o.Mutex = new(sync.Mutex)
	}
	if o.TimeFormat == "" {
		o.TimeFormat = DefaultTimeFormat
	}
	return newHcLogger(o)
}

func newHcLogger(o LoggerOptions) *hcLogger {
	var backend hclog.Logger
	if o.Level == Off {
		backend = hclog.NewNullLogger()
	} else {
		backend = hclog.New(&hclog.LoggerOptions{
			Name:            o.Name,
			Level:           o.Level.hclogLevel(),
			Output:          o.Output,
			Mutex:           o.Mutex,
			TimeFormat:      o.TimeFormat,
			IncludeLocation: o.IncludeLocation,
		})
	}
	return &hcLogger{opts: o, level: o.Level, l: backend}
}

func (l *hcLogger) Trace(msg string) { l.l.Trace(msg) }

func (l *hcLogger) Tracef(format string, args ...interface{}) {
	if l.l.IsTrace() {
		l.l.Trace(fmt.Sprintf(format, args...))
	}
}

func (l *hcLogger) Debug(msg string) { l.l.Debug(msg) }

func (l *hcLogger) Debugf(format string, args ...interface{}) {
	if l.l.IsDebug() {
		l.l.Debug(fmt.Sprintf(format, args...))
	}
}

func (l *hcLogger) Info(msg string) { l.l.Info(msg) }

func (l *hcLogger) Infof(format string, args ...interface{}) {
	if l.l.IsInfo() {
		l.l.Info(fmt.Sprintf(format, args...))
	}
}

func (l *hcLogger) Warn(msg string) { l.l.Warn(msg) }

func (l *hcLogger) Warnf(format string, args ...interface{}) {
	if l.l.IsWarn() {
		l.l.Warn(fmt.Sprintf(format, args...))
	}
}

func (l *hcLogger) Error(msg string) { l.l.Error(msg) }

func (l *hcLogger) Errorf(format string, args ...interface{}) {
	if l.l.IsError() {
		l.l.Error(fmt.Sprintf(format, args...))
	}
}

// Fatal writes the message at error level and exits the process.
func (l *hcLogger) Fatal(msg string) {
	l.l.Error(msg)
	osExit(1)
}

func (l *hcLogger) Fatalf(format string, args ...interface{}) {
	l.Fatal(fmt.Sprintf(format, args...))
}

// Panic writes the message at error level and panics with it.
func (l *hcLogger) Panic(msg string) {
	l.l.Error(msg)
	panic(msg)
}

func (l *hcLogger) Panicf(format string, args ...interface{}) {
	l.Panic(fmt.Sprintf(format, args...))
}

func (l *hcLogger) Named(name string) Logger {
	o := l.opts
	if o.Name != "" {
		o.Name = o.Name + "." + name
	} else {
		o.Name = name
	}
	return newHcLogger(o)
}

func (l *hcLogger) ResetNamed(name string) Logger {
	o := l.opts
	o.Name = name
	return newHcLogger(o)
}

func (l *hcLogger) WithLevel(level Level) Logger {
	o := l.opts
	o.Level = level
	return newHcLogger(o)
}

func (l *hcLogger) GetLevel() Level {
	return l.level
}

func (l *hcLogger) StdLogger() *log.Logger {
	return l.l.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})
}
