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
	"time"

	"golang.org/x/sys/unix"
)

// Poll blocks until an event occurs on any socket of the set and returns it.
// It returns nil once the set has been closed and all pending events have
// been delivered. Poll must be called from a single goroutine.
func (s *Set) Poll() *Event {
	for {
		s.mu.Lock()
		s.scanIdleLocked()
		if ev := s.dequeueLocked(); ev != nil {
			s.mu.Unlock()
			return ev
		}
		if s.closed {
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()
		s.pollOnce()
	}
}

// dequeueLocked pops the next deliverable event, dropping events whose
// socket has been destroyed since detection. The socket context is captured
// here, at delivery time.
func (s *Set) dequeueLocked() *Event {
	for s.pending.Length() > 0 {
		ev := s.pending.Remove().(*Event)
		sk := s.sockAt(ev.SockID)
		if sk == nil || sk.gen != ev.gen {
			continue
		}
		ev.Context = sk.ctx
		return ev
	}
	return nil
}

// condemnLocked reports a terminal condition exactly once. The socket stops
// being polled; it stays allocated until the owner destroys it.
func (s *Set) condemnLocked(id int, sk *sock, typ EventType) {
	if sk.dead {
		return
	}
	sk.dead = true
	s.logger.Debugf("socket %d condemned: %s", id, typ)
	s.enqueueLocked(&Event{Type: typ, SockID: id, gen: sk.gen})
}

// scanIdleLocked reports connectionless comm sockets that have been silent
// for their idle timeout. An idle peer is disconnected exactly once and
// withdrawn from its server's peer map, so traffic resuming later shows up
// as a brand new peer.
func (s *Set) scanIdleLocked() {
	now := time.Now()
	for id, sk := range s.socks {
		if sk == nil || !sk.used || sk.dead || sk.kind != kindComm || !sk.cnxLess {
			continue
		}
		if sk.idleTimeout <= 0 || now.Sub(sk.lastActivity) < sk.idleTimeout {
			continue
		}
		if srv := s.sockAt(sk.serverID); srv != nil && srv.peers != nil {
			if pid, ok := srv.peers[sk.peerKey]; ok && pid == id {
				delete(srv.peers, sk.peerKey)
			}
		}
		s.condemnLocked(id, sk, EventDisconnect)
	}
}

// pollOnce performs one bounded poll(2) pass and turns fd readiness into
// events. The set lock is not held while blocked in poll(2).
func (s *Set) pollOnce() {
	type ref struct {
		id  int
		gen uint64
		fd  int
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var pfds []unix.PollFd
	var refs []ref
	for id, sk := range s.socks {
		if sk == nil || !sk.used || !sk.ownsFd || sk.dead {
			continue
		}
		var events int16
		switch sk.kind {
		case kindPipeWrite:
			if sk.wantSend {
				events = unix.POLLOUT
			}
		case kindComm:
			events = unix.POLLIN
			if sk.wantSend || sk.connecting {
				events |= unix.POLLOUT
			}
		default:
			events = unix.POLLIN
		}
		if events == 0 {
			continue
		}
		pfds = append(pfds, unix.PollFd{Fd: int32(sk.fd), Events: events})
		refs = append(refs, ref{id: id, gen: sk.gen, fd: sk.fd})
	}
	timeout := int(s.pollTimeout / time.Millisecond)
	s.mu.Unlock()

	n, err := unix.Poll(pfds, timeout)
	if err != nil && err != unix.EINTR {
		s.logger.Warnf("poll: %v", err)
	}
	if err != nil || n <= 0 {
		// EINTR and timeouts are indistinguishable from an empty pass.
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, pfd := range pfds {
		if pfd.Revents == 0 {
			continue
		}
		sk := s.sockAt(refs[i].id)
		if sk == nil || sk.gen != refs[i].gen || sk.fd != refs[i].fd {
			// Destroyed or recycled while poll(2) was in flight.
			continue
		}
		id := refs[i].id
		if pfd.Revents&unix.POLLNVAL != 0 {
			s.condemnLocked(id, sk, EventError)
			continue
		}
		if pfd.Revents&unix.POLLERR != 0 {
			if sk.connecting {
				sk.connecting = false
				s.condemnLocked(id, sk, EventNotEstablished)
			} else {
				s.condemnLocked(id, sk, EventError)
			}
			continue
		}
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP) != 0 {
			s.handleInLocked(id, sk, pfd.Revents)
		}
		if pfd.Revents&unix.POLLOUT != 0 {
			s.handleOutLocked(id, sk)
		}
	}
}

func (s *Set) handleInLocked(id int, sk *sock, revents int16) {
	switch {
	case sk.kind == kindServer && !sk.cnxLess:
		s.acceptLocked(id, sk)
	case sk.kind == kindServer && sk.cnxLess:
		s.readDatagramLocked(id, sk)
	case sk.kind == kindPipeRead:
		s.readPipeLocked(id, sk)
	case sk.kind == kindComm && sk.sotype == unix.SOCK_STREAM:
		s.readStreamLocked(id, sk)
	case sk.kind == kindComm:
		s.readPacketLocked(id, sk)
	default:
		if revents&unix.POLLHUP != 0 {
			s.condemnLocked(id, sk, EventDisconnect)
		}
	}
}

func (s *Set) handleOutLocked(id int, sk *sock) {
	if sk.connecting {
		sk.connecting = false
		soerr, err := unix.GetsockoptInt(sk.fd, unix.SOL_SOCKET, unix.SO_ERROR)
		typ := EventEstablished
		if err != nil || soerr != 0 {
			typ = EventNotEstablished
		}
		s.enqueueLocked(&Event{Type: typ, SockID: id, gen: sk.gen})
		return
	}
	if sk.wantSend {
		sk.wantSend = false
		s.enqueueLocked(&Event{Type: EventWritable, SockID: id, gen: sk.gen})
	}
}

// acceptLocked accepts one pending connection on a connection-oriented
// server and announces the resulting comm socket.
func (s *Set) acceptLocked(id int, sk *sock) {
	nfd, sa, err := unix.Accept4(sk.fd, unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR || err == unix.ECONNABORTED {
			return
		}
		s.condemnLocked(id, sk, EventError)
		return
	}
	_ = unix.SetsockoptInt(nfd, unix.SOL_SOCKET, unix.SO_RCVBUF, sk.bufsize)
	_ = unix.SetsockoptInt(nfd, unix.SOL_SOCKET, unix.SO_SNDBUF, sk.bufsize)

	comm := s.allocLocked()
	comm.kind = kindComm
	comm.fd = nfd
	comm.domain = sk.domain
	comm.sotype = sk.sotype
	comm.ownsFd = true
	comm.serverID = id
	comm.bufsize = sk.bufsize
	comm.peerSA = sa
	if sa != nil {
		comm.peerKey = sockaddrKey(sa)
	}
	s.enqueueLocked(&Event{Type: EventConnect, SockID: id, ConnID: s.idOf(comm), gen: sk.gen})
}

// readDatagramLocked handles traffic on a connectionless server: datagrams
// from an unknown peer first materialise a comm socket dedicated to that
// peer, then all data is reported against the comm socket.
func (s *Set) readDatagramLocked(id int, sk *sock) {
	buf := make([]byte, sk.bufsize)
	n, from, err := unix.Recvfrom(sk.fd, buf, 0)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return
		}
		s.condemnLocked(id, sk, EventError)
		return
	}
	if n == 0 || from == nil {
		return
	}

	key := sockaddrKey(from)
	peerID, known := sk.peers[key]
	if !known {
		peer := s.allocLocked()
		peer.kind = kindComm
		peer.fd = sk.fd
		peer.domain = sk.domain
		peer.sotype = sk.sotype
		peer.cnxLess = true
		peer.ownsFd = false
		peer.serverID = id
		peer.bufsize = sk.bufsize
		peer.idleTimeout = sk.idleTimeout
		peer.peerSA = from
		peer.peerKey = key
		peerID = s.idOf(peer)
		sk.peers[key] = peerID
		s.enqueueLocked(&Event{Type: EventConnect, SockID: id, ConnID: peerID, gen: sk.gen})
	}
	peer := s.sockAt(peerID)
	if peer == nil {
		return
	}
	peer.lastActivity = time.Now()
	s.enqueueLocked(&Event{Type: EventDataIn, SockID: peerID, Data: buf[:n], gen: peer.gen})
}

func (s *Set) readPipeLocked(id int, sk *sock) {
	buf := make([]byte, sk.bufsize)
	n, err := unix.Read(sk.fd, buf)
	switch {
	case err == unix.EAGAIN || err == unix.EINTR:
	case err != nil:
		s.condemnLocked(id, sk, EventError)
	case n == 0:
		s.condemnLocked(id, sk, EventDisconnect)
	default:
		s.enqueueLocked(&Event{Type: EventDataIn, SockID: id, Data: buf[:n], gen: sk.gen})
	}
}

// readStreamLocked drains a stream socket into one EventDataIn, stopping at
// a full buffer or when the socket runs dry.
func (s *Set) readStreamLocked(id int, sk *sock) {
	buf := make([]byte, sk.bufsize)
	total := 0
	for total < len(buf) {
		n, _, err := unix.Recvfrom(sk.fd, buf[total:], unix.MSG_DONTWAIT)
		if err == unix.EAGAIN || err == unix.EINTR {
			break
		}
		if err == unix.ECONNRESET || err == unix.EPIPE {
			s.condemnLocked(id, sk, EventDisconnect)
			return
		}
		if err != nil {
			s.condemnLocked(id, sk, EventError)
			return
		}
		if n == 0 {
			if total == 0 {
				s.condemnLocked(id, sk, EventDisconnect)
				return
			}
			break
		}
		total += n
	}
	if total > 0 {
		s.enqueueLocked(&Event{Type: EventDataIn, SockID: id, Data: buf[:total], gen: sk.gen})
	}
}

// readPacketLocked reads one packet from a packet-based comm socket that
// owns its fd (seqpacket, or a client-side datagram socket).
func (s *Set) readPacketLocked(id int, sk *sock) {
	if !sk.ownsFd {
		// Emulated peers receive through their server fd.
		return
	}
	buf := make([]byte, sk.bufsize)
	n, _, err := unix.Recvfrom(sk.fd, buf, 0)
	if err == unix.EAGAIN || err == unix.EINTR {
		return
	}
	if err == unix.ECONNRESET || err == unix.EPIPE {
		s.condemnLocked(id, sk, EventDisconnect)
		return
	}
	if err != nil {
		s.condemnLocked(id, sk, EventError)
		return
	}
	if sk.cnxLess {
		sk.lastActivity = time.Now()
		if n == 0 {
			return
		}
	} else if n == 0 {
		// Peer closed a seqpacket connection.
		s.condemnLocked(id, sk, EventDisconnect)
		return
	}
	s.enqueueLocked(&Event{Type: EventDataIn, SockID: id, Data: buf[:n], gen: sk.gen})
}
