/*
 * MIT License
 *
 * Copyright (c) 2026 The SKAL Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package socket

// EventType identifies what happened on a socket of a set.
type EventType int

const (
	// EventConnect reports that a server socket accepted a connection. This
	// behaviour is emulated on connectionless server sockets: the first
	// datagram from an unknown peer creates a comm socket dedicated to that
	// peer and generates this event.
	EventConnect EventType = iota

	// EventDisconnect reports that a peer disconnected from an established
	// connection. For a connectionless comm socket it only means no activity
	// took place during the idle timeout; the socket should be destroyed, and
	// later traffic from the same peer creates a fresh comm socket.
	EventDisconnect

	// EventDataIn reports received data.
	EventDataIn

	// EventWritable reports that a socket marked with WantToSend can now be
	// written without blocking.
	EventWritable

	// EventEstablished reports that a comm socket finished connecting to its
	// server.
	EventEstablished

	// EventNotEstablished reports that a comm socket could not connect to its
	// server; the socket should be destroyed.
	EventNotEstablished

	// EventError reports an error on the socket; the socket should be
	// destroyed.
	EventError
)

var eventTypeNames = map[EventType]string{
	EventConnect:        "connect",
	EventDisconnect:     "disconnect",
	EventDataIn:         "data-in",
	EventWritable:       "writable",
	EventEstablished:    "established",
	EventNotEstablished: "not-established",
	EventError:          "error",
}

// String returns the text representation of the event type.
func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event is one occurrence reported by Poll.
//
// For EventConnect, SockID is the id of the server socket, not of the new
// comm socket; the new comm socket id is in ConnID.
type Event struct {
	// Type is the event type.
	Type EventType
	// SockID is the id of the socket that originated the event.
	SockID int
	// ConnID is the id of the newly created comm socket (EventConnect only).
	ConnID int
	// Data is the received payload (EventDataIn only); never empty.
	Data []byte
	// Context is the private context of the socket, as set by the owner. It
	// is captured at delivery time, not at detection time.
	Context any

	// gen ties the event to the socket slot generation that produced it, so
	// events for a destroyed socket are suppressed instead of delivered.
	gen uint64
}
