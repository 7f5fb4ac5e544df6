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

// Package protocol defines the messages exchanged with a simulation
// worker and their JSON and msgpack encodings.
package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/hashicorp/go-msgpack/codec"
	"github.com/pkg/errors"

	"github.com/bbva/hashlife/hashlife"
)

type MessageType string

const (
	Run    MessageType = "run"
	Cancel MessageType = "cancel"
	Clear  MessageType = "clear"
	Stats  MessageType = "stats"
	Result MessageType = "result"
	Error  MessageType = "error"
)

// Error kinds reported in error responses.
const (
	KindValidation = "validation"
	KindResource   = "resource"
	KindCanceled   = "canceled"
	KindInternal   = "internal"
)

// ErrCanceled is returned for runs abandoned after a cancel request.
var ErrCanceled = errors.New("run canceled")

type Cell = hashlife.Cell

// Cells is a list of live cells. In JSON it accepts every shape the
// engine normalizes: {x, y} objects, [x, y] pairs, interleaved numbers
// and "x,y" strings.
type Cells []Cell

func (c *Cells) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	cells, err := hashlife.Normalize(raw)
	if err != nil {
		return err
	}
	*c = cells
	return nil
}

// Request is sent to the worker. ID identifies a run so that it can be
// canceled; the worker assigns one when empty.
type Request struct {
	Type        MessageType `json:"type" codec:"type"`
	ID          string      `json:"id,omitempty" codec:"id"`
	Cells       Cells       `json:"cells,omitempty" codec:"cells"`
	Generations int64       `json:"generations,omitempty" codec:"generations"`
}

// Validate checks the fields required by the request type.
func (r *Request) Validate() error {
	switch r.Type {
	case Run:
		if r.Generations < 0 {
			return &hashlife.ValidationError{Field: "generations", Reason: "must not be negative"}
		}
	case Cancel:
		if r.ID == "" {
			return &hashlife.ValidationError{Field: "id", Reason: "cancel requires the id of a run"}
		}
	case Clear, Stats:
	default:
		return &hashlife.ValidationError{Field: "type", Reason: "unknown message type " + string(r.Type)}
	}
	return nil
}

// Response answers a request with the same ID.
type Response struct {
	Type        MessageType     `json:"type" codec:"type"`
	ID          string          `json:"id,omitempty" codec:"id"`
	Cells       Cells           `json:"cells" codec:"cells"`
	Generations int64           `json:"generations,omitempty" codec:"generations"`
	OriginX     int64           `json:"originX" codec:"originX"`
	OriginY     int64           `json:"originY" codec:"originY"`
	Level       uint            `json:"level" codec:"level"`
	Population  int64           `json:"population" codec:"population"`
	Stats       *hashlife.Stats `json:"stats,omitempty" codec:"stats"`
	Kind        string          `json:"kind,omitempty" codec:"kind"`
	Error       string          `json:"error,omitempty" codec:"error"`
}

// NewResult builds the response to a finished run.
func NewResult(id string, res *hashlife.Result) *Response {
	cells := Cells(res.Cells)
	if cells == nil {
		cells = Cells{}
	}
	return &Response{
		Type:        Result,
		ID:          id,
		Cells:       cells,
		Generations: res.Generations,
		OriginX:     res.OriginX,
		OriginY:     res.OriginY,
		Level:       res.Tree.Level(),
		Population:  res.Tree.Population(),
	}
}

// NewError builds an error response classified by KindOf.
func NewError(id string, err error) *Response {
	return &Response{
		Type:  Error,
		ID:    id,
		Kind:  KindOf(err),
		Error: err.Error(),
	}
}

// KindOf classifies err by its cause.
func KindOf(err error) string {
	cause := errors.Cause(err)
	switch {
	case hashlife.IsValidation(err):
		return KindValidation
	case hashlife.IsResourceExhaustion(err):
		return KindResource
	case cause == ErrCanceled, cause == context.Canceled, cause == context.DeadlineExceeded:
		return KindCanceled
	default:
		return KindInternal
	}
}

type Format string

const (
	JSON    Format = "application/json"
	Msgpack Format = "application/msgpack"
)

// FormatFromContentType maps a Content-Type or Accept header to a format,
// JSON being the default.
func FormatFromContentType(contentType string) Format {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "msgpack") {
		return Msgpack
	}
	return JSON
}

func Encode(f Format, v interface{}) ([]byte, error) {
	if f == Msgpack {
		var buf bytes.Buffer
		encoder := codec.NewEncoder(&buf, &codec.MsgpackHandle{})
		if err := encoder.Encode(v); err != nil {
			return nil, errors.Wrap(err, "failed to encode msgpack message")
		}
		return buf.Bytes(), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode json message")
	}
	return b, nil
}

func Decode(f Format, msg []byte, v interface{}) error {
	if f == Msgpack {
		decoder := codec.NewDecoder(bytes.NewReader(msg), &codec.MsgpackHandle{})
		if err := decoder.Decode(v); err != nil {
			return &hashlife.ValidationError{Field: "body", Reason: err.Error()}
		}
		return nil
	}
	if err := json.Unmarshal(msg, v); err != nil {
		if hashlife.IsValidation(err) {
			return err
		}
		return &hashlife.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}
