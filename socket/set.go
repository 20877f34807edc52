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

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	eaqueue "github.com/eapache/queue"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/skal-io/skal/address"
	"github.com/skal-io/skal/errors"
	"github.com/skal-io/skal/log"
)

// kind classifies the slots of a set.
type kind int

const (
	// kindServer accepts connections, or emulates them over a
	// connectionless transport.
	kindServer kind = iota
	// kindComm exchanges data with exactly one peer.
	kindComm
	// kindPipeRead and kindPipeWrite are the two ends of a local pipe.
	kindPipeRead
	kindPipeWrite
)

// sock is one slot of a set. Slots are reused; gen disambiguates successive
// occupants so that events and sends for a destroyed socket are rejected.
type sock struct {
	used bool
	gen  uint64
	kind kind

	fd     int
	domain int
	sotype int

	// cnxLess is true for datagram transports with emulated connections.
	cnxLess bool
	// ownsFd is false for comm sockets emulated on top of a connectionless
	// server; they share the server fd and must never close it.
	ownsFd bool
	// serverID is the id of the server this socket was accepted or emulated
	// from; -1 for sockets created directly.
	serverID int

	// boundPath is the unix socket path this socket bound, unlinked on
	// destroy.
	boundPath string

	connecting bool
	wantSend   bool
	// dead marks a socket whose terminal event has been reported. It is no
	// longer polled; the owner is expected to destroy it.
	dead bool

	bufsize      int
	idleTimeout  time.Duration
	lastActivity time.Time

	peerSA  unix.Sockaddr
	peerKey string
	// peers maps a peer address key to the emulated comm socket id; server
	// sockets over connectionless transports only.
	peers map[string]int

	ctx any
}

// Set is a group of sockets polled together. All sockets of a set are meant
// to be polled from a single goroutine; Send, WantToSend, SetContext and
// Destroy may be called from any goroutine.
type Set struct {
	mu     sync.Mutex
	socks  []*sock
	nextG  uint64
	closed bool

	// pending holds events detected but not yet delivered.
	pending *eaqueue.Queue

	pollTimeout time.Duration
	ctxRelease  func(any)
	logger      log.Logger
}

// NewSet creates an empty socket set.
func NewSet(opts ...Option) *Set {
	s := &Set{
		pending:     eaqueue.New(),
		pollTimeout: DefaultPollTimeout,
		logger:      log.DefaultLogger,
	}
	for _, opt := range opts {
		opt.Apply(s)
	}
	return s
}

// Close destroys every socket of the set and releases it. Any goroutine
// blocked in Poll returns nil.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	for id, sk := range s.socks {
		if sk != nil && sk.used {
			s.destroyLocked(id)
		}
	}
	s.closed = true
	return nil
}

// CreateServer creates a server socket listening on the given address and
// returns its id.
//
// The meaning of extra depends on the transport: the listen backlog for
// connection-oriented transports, the peer idle timeout in milliseconds for
// connectionless ones. Zero selects the default in both cases.
//
// A pipe server is special: the read end is the returned server socket and
// the write end is delivered through an immediate EventConnect, exactly as
// if a peer had connected.
func (s *Set) CreateServer(addr *address.Address, bufsize int, ctx any, extra int) (int, error) {
	if addr == nil {
		return -1, errors.ErrInvalidAddress
	}
	if addr.IsPipe() {
		return s.createPipe(bufsize, ctx)
	}

	domain, sotype, err := sockParams(addr)
	if err != nil {
		return -1, err
	}
	sa, err := sockaddr(addr)
	if err != nil {
		return -1, err
	}
	fd, err := newFD(domain, sotype, bufsize)
	if err != nil {
		return -1, err
	}
	if domain == unix.AF_INET {
		_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("bind %s: %w", addr, err)
	}

	cnxLess := sotype == unix.SOCK_DGRAM
	if !cnxLess {
		backlog := extra
		if backlog <= 0 {
			backlog = DefaultBacklog
		}
		if err := unix.Listen(fd, backlog); err != nil {
			_ = unix.Close(fd)
			return -1, fmt.Errorf("listen %s: %w", addr, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sk := s.allocLocked()
	sk.kind = kindServer
	sk.fd = fd
	sk.domain = domain
	sk.sotype = sotype
	sk.cnxLess = cnxLess
	sk.ownsFd = true
	sk.serverID = -1
	sk.bufsize = clampBufsize(bufsize)
	sk.ctx = ctx
	if addr.IsUnix() {
		sk.boundPath = addr.Path()
	}
	if cnxLess {
		sk.peers = make(map[string]int)
		sk.idleTimeout = DefaultIdleTimeout
		if extra > 0 {
			sk.idleTimeout = time.Duration(extra) * time.Millisecond
		}
	}
	return s.idOf(sk), nil
}

// CreateComm creates a comm socket connected to the given peer address and
// returns its id.
//
// For connection-oriented transports the outcome of the connection attempt
// is always reported asynchronously, as either EventEstablished or
// EventNotEstablished. Connectionless sockets are usable immediately and
// report EventDisconnect after idleTimeout of silence (zero selects the
// default).
//
// local may be nil; it is only honoured for tcp and udp.
func (s *Set) CreateComm(local, peer *address.Address, bufsize int, ctx any, idleTimeout time.Duration) (int, error) {
	if peer == nil {
		return -1, errors.ErrInvalidAddress
	}
	if peer.IsPipe() {
		return -1, fmt.Errorf("%w: cannot connect to a pipe", errors.ErrInvalidAddress)
	}

	domain, sotype, err := sockParams(peer)
	if err != nil {
		return -1, err
	}
	peerSA, err := sockaddr(peer)
	if err != nil {
		return -1, err
	}
	fd, err := newFD(domain, sotype, bufsize)
	if err != nil {
		return -1, err
	}
	cnxLess := sotype == unix.SOCK_DGRAM

	// A unix datagram socket must be bound to be answerable; without a
	// local name the server has no address to send replies to.
	var boundPath string
	if domain == unix.AF_UNIX && cnxLess {
		boundPath = localDgramPath(local)
		if err := unix.Bind(fd, &unix.SockaddrUnix{Name: boundPath}); err != nil {
			_ = unix.Close(fd)
			return -1, fmt.Errorf("bind %s: %w", boundPath, err)
		}
	} else if local != nil && domain == unix.AF_INET {
		localSA, err := sockaddr(local)
		if err != nil {
			_ = unix.Close(fd)
			return -1, err
		}
		if err := unix.Bind(fd, localSA); err != nil {
			_ = unix.Close(fd)
			return -1, fmt.Errorf("bind %s: %w", local, err)
		}
	}
	connecting := false
	connectFailed := false
	switch err := unix.Connect(fd, peerSA); err {
	case nil:
		// Even a synchronous connect is announced through the poll loop, so
		// the caller always observes established after connect, never before.
		connecting = !cnxLess
	case unix.EINPROGRESS, unix.EAGAIN:
		connecting = !cnxLess
	default:
		if cnxLess {
			_ = unix.Close(fd)
			return -1, fmt.Errorf("connect %s: %w", peer, err)
		}
		connectFailed = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sk := s.allocLocked()
	sk.kind = kindComm
	sk.fd = fd
	sk.domain = domain
	sk.sotype = sotype
	sk.cnxLess = cnxLess
	sk.ownsFd = true
	sk.serverID = -1
	sk.bufsize = clampBufsize(bufsize)
	sk.connecting = connecting
	sk.peerSA = peerSA
	sk.peerKey = sockaddrKey(peerSA)
	sk.boundPath = boundPath
	sk.ctx = ctx
	id := s.idOf(sk)
	if cnxLess {
		sk.idleTimeout = idleTimeout
		if sk.idleTimeout <= 0 {
			sk.idleTimeout = DefaultIdleTimeout
		}
		sk.lastActivity = time.Now()
	} else if connectFailed {
		sk.dead = true
		s.enqueueLocked(&Event{Type: EventNotEstablished, SockID: id, gen: sk.gen})
	}
	return id, nil
}

// createPipe creates a pipe pair: the read end is returned as the server
// socket and the write end is announced through EventConnect.
func (s *Set) createPipe(bufsize int, ctx any) (int, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return -1, fmt.Errorf("pipe: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rd := s.allocLocked()
	rd.kind = kindPipeRead
	rd.fd = p[0]
	rd.ownsFd = true
	rd.serverID = -1
	rd.bufsize = clampBufsize(bufsize)
	rd.ctx = ctx
	rdID := s.idOf(rd)

	wr := s.allocLocked()
	wr.kind = kindPipeWrite
	wr.fd = p[1]
	wr.ownsFd = true
	wr.serverID = rdID
	wr.bufsize = rd.bufsize
	wrID := s.idOf(wr)

	s.enqueueLocked(&Event{Type: EventConnect, SockID: rdID, ConnID: wrID, gen: rd.gen})
	return rdID, nil
}

// Destroy releases a socket. Pending events for this socket are silently
// dropped. Destroying a connectionless server also destroys the comm sockets
// emulated on top of it.
func (s *Set) Destroy(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sockAt(id) == nil {
		return fmt.Errorf("%w: %d", errors.ErrInvalidSocketID, id)
	}
	s.destroyLocked(id)
	return nil
}

func (s *Set) destroyLocked(id int) {
	sk := s.sockAt(id)
	if sk == nil {
		return
	}

	// Emulated comm sockets cascade with their server.
	for _, peerID := range sk.peers {
		s.destroyLocked(peerID)
	}

	if !sk.ownsFd {
		// The key may already name a successor peer if this one idled out
		// and traffic resumed before it was destroyed.
		if srv := s.sockAt(sk.serverID); srv != nil && srv.peers != nil {
			if pid, ok := srv.peers[sk.peerKey]; ok && pid == id {
				delete(srv.peers, sk.peerKey)
			}
		}
	} else {
		if sk.kind == kindComm && !sk.cnxLess {
			_ = unix.Shutdown(sk.fd, unix.SHUT_RDWR)
		}
		_ = unix.Close(sk.fd)
		if sk.boundPath != "" {
			_ = unix.Unlink(sk.boundPath)
		}
	}

	if s.ctxRelease != nil && sk.ctx != nil {
		s.ctxRelease(sk.ctx)
	}
	*sk = sock{gen: sk.gen + 1}
}

// SetContext attaches a private context to a socket; it is reported back
// with every event on that socket.
func (s *Set) SetContext(id int, ctx any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk := s.sockAt(id)
	if sk == nil {
		return fmt.Errorf("%w: %d", errors.ErrInvalidSocketID, id)
	}
	sk.ctx = ctx
	return nil
}

// Context returns the private context of a socket.
func (s *Set) Context(id int) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk := s.sockAt(id)
	if sk == nil {
		return nil, fmt.Errorf("%w: %d", errors.ErrInvalidSocketID, id)
	}
	return sk.ctx, nil
}

// WantToSend arms write readiness notification on a comm socket: the next
// time it can be written without blocking, EventWritable is generated and
// the flag is cleared.
func (s *Set) WantToSend(id int, flag bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk := s.sockAt(id)
	if sk == nil {
		return fmt.Errorf("%w: %d", errors.ErrInvalidSocketID, id)
	}
	if sk.kind != kindComm && sk.kind != kindPipeWrite {
		return fmt.Errorf("%w: socket %d cannot send", errors.ErrInvalidSocketID, id)
	}
	sk.wantSend = flag
	return nil
}

// sockAt returns the slot if it exists and is in use.
func (s *Set) sockAt(id int) *sock {
	if id < 0 || id >= len(s.socks) {
		return nil
	}
	sk := s.socks[id]
	if sk == nil || !sk.used {
		return nil
	}
	return sk
}

func (s *Set) idOf(sk *sock) int {
	for id, candidate := range s.socks {
		if candidate == sk {
			return id
		}
	}
	return -1
}

// allocLocked returns a fresh slot, reusing the lowest free one.
func (s *Set) allocLocked() *sock {
	for _, sk := range s.socks {
		if !sk.used {
			gen := sk.gen
			*sk = sock{gen: gen}
			sk.used = true
			return sk
		}
	}
	s.nextG++
	sk := &sock{used: true, gen: s.nextG}
	s.socks = append(s.socks, sk)
	return sk
}

func (s *Set) enqueueLocked(ev *Event) {
	s.pending.Add(ev)
}

func clampBufsize(bufsize int) int {
	switch {
	case bufsize <= 0:
		return DefaultBufferSize
	case bufsize < MinBufferSize:
		return MinBufferSize
	case bufsize > MaxBufferSize:
		return MaxBufferSize
	default:
		return bufsize
	}
}

// localDgramPath picks the local name of a unix datagram comm socket: the
// configured one when given, a fresh unique one otherwise.
func localDgramPath(local *address.Address) string {
	if local != nil && local.IsUnix() && local.Path() != "" {
		return local.Path()
	}
	return filepath.Join(os.TempDir(),
		fmt.Sprintf("skal-%d-%s.sock", os.Getpid(), uuid.NewString()[:8]))
}

// newFD creates a non-blocking socket with its kernel buffers sized.
func newFD(domain, sotype, bufsize int) (int, error) {
	fd, err := unix.Socket(domain, sotype|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}
	size := clampBufsize(bufsize)
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, size)
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, size)
	return fd, nil
}
