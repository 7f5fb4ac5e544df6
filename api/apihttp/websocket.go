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

package apihttp

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pborman/uuid"

	"github.com/bbva/hashlife/log"
	"github.com/bbva/hashlife/protocol"
	"github.com/bbva/hashlife/worker"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = maxBodySize

	// Outbound messages buffered per connection.
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type frame struct {
	kind int
	data []byte
}

// client is a middleman between a websocket connection and the worker.
// Text frames carry JSON and binary frames carry msgpack; answers use the
// format of the request.
type client struct {
	worker *worker.Worker
	conn   *websocket.Conn
	log    log.Logger

	// Buffered channel of outbound messages.
	send chan frame
	// Closed when writePump is gone.
	done chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	// In-flight requests.
	wg sync.WaitGroup
}

// WebSocket upgrades the connection and serves run, cancel, clear and
// stats messages over it. Runs are answered as they finish, so a client
// may cancel a run it sent before.
//	GET /ws
func WebSocket(wk *worker.Worker, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Infof("Upgrade error: %v", err)
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		c := &client{
			worker: wk,
			conn:   conn,
			log:    logger,
			send:   make(chan frame, sendBuffer),
			done:   make(chan struct{}),
			ctx:    ctx,
			cancel: cancel,
		}

		go c.writePump()
		go c.readPump()
	}
}

// readPump pumps messages from the websocket connection to the worker.
func (c *client) readPump() {
	defer func() {
		c.cancel()
		c.wg.Wait()
		close(c.send)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		kind, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Infof("error: %v", err)
			}
			break
		}

		format := protocol.JSON
		if kind == websocket.BinaryMessage {
			format = protocol.Msgpack
		}

		var req protocol.Request
		if err := protocol.Decode(format, message, &req); err != nil {
			c.reply(kind, format, protocol.NewError("", err))
			continue
		}

		switch req.Type {
		case protocol.Cancel:
			c.reply(kind, format, c.worker.Do(c.ctx, &req))
		default:
			if req.ID == "" {
				req.ID = uuid.New()
			}
			c.wg.Add(1)
			go func(req *protocol.Request) {
				defer c.wg.Done()
				c.reply(kind, format, c.worker.Do(c.ctx, req))
			}(&req)
		}
	}
}

func (c *client) reply(kind int, format protocol.Format, res *protocol.Response) {
	out, err := protocol.Encode(format, res)
	if err != nil {
		c.log.Errorf("unable to encode response %s: %v", res.ID, err)
		return
	}
	select {
	case c.send <- frame{kind, out}:
	case <-c.done:
	}
}

// writePump pumps messages from the worker to the websocket connection.
// This is the only place that writes to the connection.
func (c *client) writePump() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(message.kind, message.data); err != nil {
			c.log.Infof("write error, closing connection: %v", err)
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
