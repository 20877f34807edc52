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

package socket_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"
	"go.uber.org/goleak"

	"github.com/skal-io/skal/address"
	"github.com/skal-io/skal/errors"
	"github.com/skal-io/skal/log"
	"github.com/skal-io/skal/socket"
)

// pump drains a set from a dedicated goroutine, as the runtime does. The
// channel closes when the set is closed.
func pump(s *socket.Set) <-chan *socket.Event {
	ch := make(chan *socket.Event, 64)
	go func() {
		defer close(ch)
		for {
			ev := s.Poll()
			if ev == nil {
				return
			}
			ch <- ev
		}
	}()
	return ch
}

// next fails the test unless an event arrives in time.
func next(t *testing.T, events <-chan *socket.Event) *socket.Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "set closed while waiting for an event")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for a socket event")
		return nil
	}
}

// waitFor discards events until one of the wanted type shows up.
func waitFor(t *testing.T, events <-chan *socket.Event, typ socket.EventType) *socket.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "set closed while waiting for %s", typ)
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("timeout waiting for a %s event", typ)
			return nil
		}
	}
}

func newSet(t *testing.T) *socket.Set {
	t.Helper()
	s := socket.NewSet(
		socket.WithLogger(log.DiscardLogger),
		socket.WithPollTimeout(20*time.Millisecond),
	)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPipe(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newSet(t)
	events := pump(s)

	readID, err := s.CreateServer(address.MustParse("pipe://"), 0, "read-side", 0)
	require.NoError(t, err)

	ev := next(t, events)
	require.Equal(t, socket.EventConnect, ev.Type)
	assert.Equal(t, readID, ev.SockID)
	assert.Equal(t, "read-side", ev.Context)
	writeID := ev.ConnID

	require.NoError(t, s.Send(writeID, []byte("wake up")))
	ev = waitFor(t, events, socket.EventDataIn)
	assert.Equal(t, readID, ev.SockID)
	assert.Equal(t, []byte("wake up"), ev.Data)

	require.NoError(t, s.Close())
}

func TestUnixSeqPacket(t *testing.T) {
	defer goleak.VerifyNone(t)

	addr := address.MustParse("unix://" + filepath.Join(t.TempDir(), "test.sock"))
	s := newSet(t)
	events := pump(s)

	serverID, err := s.CreateServer(addr, 0, nil, 0)
	require.NoError(t, err)

	clientID, err := s.CreateComm(nil, addr, 0, nil, 0)
	require.NoError(t, err)

	connect := waitFor(t, events, socket.EventConnect)
	assert.Equal(t, serverID, connect.SockID)
	acceptedID := connect.ConnID
	established := waitFor(t, events, socket.EventEstablished)
	assert.Equal(t, clientID, established.SockID)

	t.Run("Client to server", func(t *testing.T) {
		require.NoError(t, s.Send(clientID, []byte("hello")))
		ev := waitFor(t, events, socket.EventDataIn)
		assert.Equal(t, acceptedID, ev.SockID)
		assert.Equal(t, []byte("hello"), ev.Data)
	})

	t.Run("Server to client", func(t *testing.T) {
		require.NoError(t, s.Send(acceptedID, []byte("hi there")))
		ev := waitFor(t, events, socket.EventDataIn)
		assert.Equal(t, clientID, ev.SockID)
		assert.Equal(t, []byte("hi there"), ev.Data)
	})

	t.Run("Destroying the client disconnects the peer", func(t *testing.T) {
		require.NoError(t, s.Destroy(clientID))
		ev := waitFor(t, events, socket.EventDisconnect)
		assert.Equal(t, acceptedID, ev.SockID)
	})

	require.NoError(t, s.Close())
}

func TestTCPStream(t *testing.T) {
	defer goleak.VerifyNone(t)

	port := dynaport.Get(1)[0]
	addr := address.MustParse(fmt.Sprintf("tcp://127.0.0.1:%d", port))
	s := newSet(t)
	events := pump(s)

	_, err := s.CreateServer(addr, 0, nil, 0)
	require.NoError(t, err)
	clientID, err := s.CreateComm(nil, addr, 0, nil, 0)
	require.NoError(t, err)

	connect := waitFor(t, events, socket.EventConnect)
	acceptedID := connect.ConnID
	waitFor(t, events, socket.EventEstablished)

	payload := []byte("streamed payload")
	require.NoError(t, s.Send(clientID, payload))

	// A stream may hand the payload over in several pieces.
	var got []byte
	for len(got) < len(payload) {
		ev := waitFor(t, events, socket.EventDataIn)
		require.Equal(t, acceptedID, ev.SockID)
		got = append(got, ev.Data...)
	}
	assert.Equal(t, payload, got)

	require.NoError(t, s.Close())
}

func TestTCPConnectionRefused(t *testing.T) {
	defer goleak.VerifyNone(t)

	port := dynaport.Get(1)[0]
	addr := address.MustParse(fmt.Sprintf("tcp://127.0.0.1:%d", port))
	s := newSet(t)
	events := pump(s)

	clientID, err := s.CreateComm(nil, addr, 0, nil, 0)
	require.NoError(t, err)
	ev := waitFor(t, events, socket.EventNotEstablished)
	assert.Equal(t, clientID, ev.SockID)

	// The failure is reported once; the socket must not keep generating
	// events while it waits to be destroyed.
	select {
	case ev := <-events:
		t.Fatalf("unexpected %s event after the failure was reported", ev.Type)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, s.Close())
}

func TestConnectionlessVirtualPeers(t *testing.T) {
	defer goleak.VerifyNone(t)

	addr := address.MustParse("unixd://" + filepath.Join(t.TempDir(), "dgram.sock"))

	server := newSet(t)
	serverEvents := pump(server)
	serverID, err := server.CreateServer(addr, 0, nil, 100)
	require.NoError(t, err)

	client := newSet(t)
	clientEvents := pump(client)
	clientID, err := client.CreateComm(nil, addr, 0, nil, time.Minute)
	require.NoError(t, err)

	t.Run("First datagram creates a virtual peer", func(t *testing.T) {
		require.NoError(t, client.Send(clientID, []byte("first")))

		connect := waitFor(t, serverEvents, socket.EventConnect)
		assert.Equal(t, serverID, connect.SockID)
		peerID := connect.ConnID

		data := waitFor(t, serverEvents, socket.EventDataIn)
		assert.Equal(t, peerID, data.SockID)
		assert.Equal(t, []byte("first"), data.Data)

		t.Run("Next datagram reuses the peer", func(t *testing.T) {
			require.NoError(t, client.Send(clientID, []byte("second")))
			data := waitFor(t, serverEvents, socket.EventDataIn)
			assert.Equal(t, peerID, data.SockID)
			assert.Equal(t, []byte("second"), data.Data)
		})

		t.Run("Server can answer through the virtual peer", func(t *testing.T) {
			require.NoError(t, server.Send(peerID, []byte("yes?")))
			data := waitFor(t, clientEvents, socket.EventDataIn)
			assert.Equal(t, clientID, data.SockID)
			assert.Equal(t, []byte("yes?"), data.Data)
		})

		t.Run("Silent peer is reported disconnected exactly once", func(t *testing.T) {
			ev := waitFor(t, serverEvents, socket.EventDisconnect)
			assert.Equal(t, peerID, ev.SockID)

			select {
			case ev := <-serverEvents:
				t.Fatalf("unexpected %s event for an already disconnected peer", ev.Type)
			case <-time.After(300 * time.Millisecond):
			}
		})

		t.Run("Traffic after idling out shows up as a fresh peer", func(t *testing.T) {
			require.NoError(t, client.Send(clientID, []byte("third")))

			connect := waitFor(t, serverEvents, socket.EventConnect)
			freshID := connect.ConnID
			assert.NotEqual(t, peerID, freshID)

			data := waitFor(t, serverEvents, socket.EventDataIn)
			assert.Equal(t, freshID, data.SockID)
			assert.Equal(t, []byte("third"), data.Data)
		})
	})

	require.NoError(t, client.Close())
	require.NoError(t, server.Close())
}

func TestWantToSend(t *testing.T) {
	defer goleak.VerifyNone(t)

	addr := address.MustParse("unix://" + filepath.Join(t.TempDir(), "w.sock"))
	s := newSet(t)
	events := pump(s)

	_, err := s.CreateServer(addr, 0, nil, 0)
	require.NoError(t, err)
	clientID, err := s.CreateComm(nil, addr, 0, nil, 0)
	require.NoError(t, err)
	waitFor(t, events, socket.EventEstablished)

	require.NoError(t, s.WantToSend(clientID, true))
	ev := waitFor(t, events, socket.EventWritable)
	assert.Equal(t, clientID, ev.SockID)

	require.NoError(t, s.Close())
}

func TestContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newSet(t)
	readID, err := s.CreateServer(address.MustParse("pipe://"), 0, "initial", 0)
	require.NoError(t, err)

	ctx, err := s.Context(readID)
	require.NoError(t, err)
	assert.Equal(t, "initial", ctx)

	require.NoError(t, s.SetContext(readID, "replaced"))
	ctx, _ = s.Context(readID)
	assert.Equal(t, "replaced", ctx)

	require.NoError(t, s.Close())
}

func TestInvalidSocketID(t *testing.T) {
	s := newSet(t)
	assert.ErrorIs(t, s.Send(99, []byte("x")), errors.ErrInvalidSocketID)
	assert.ErrorIs(t, s.Destroy(99), errors.ErrInvalidSocketID)
	assert.ErrorIs(t, s.WantToSend(99, true), errors.ErrInvalidSocketID)
	_, err := s.Context(99)
	assert.ErrorIs(t, err, errors.ErrInvalidSocketID)
}

func TestCloseUnblocksPoll(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := socket.NewSet(socket.WithLogger(log.DiscardLogger))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s.Poll() != nil {
		}
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Close())
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Poll did not return after Close")
	}
}

func TestContextReleaser(t *testing.T) {
	released := make(map[any]bool)
	s := socket.NewSet(
		socket.WithLogger(log.DiscardLogger),
		socket.WithContextReleaser(func(ctx any) { released[ctx] = true }),
	)
	defer s.Close()

	readID, err := s.CreateServer(address.MustParse("pipe://"), 0, "ctx-A", 0)
	require.NoError(t, err)
	require.NoError(t, s.Destroy(readID))
	assert.True(t, released["ctx-A"])
}
