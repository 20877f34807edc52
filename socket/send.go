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
	"time"

	"golang.org/x/sys/unix"

	"github.com/skal-io/skal/errors"
)

// Send writes data on a comm socket or pipe write end, blocking until the
// whole payload is handed to the kernel.
//
// Stream sockets write in as many chunks as necessary. Packet sockets send
// the payload as a single packet: a payload larger than the transport allows
// fails with ErrTooBig, and a partial send fails with ErrTruncated.
func (s *Set) Send(id int, data []byte) error {
	s.mu.Lock()
	sk := s.sockAt(id)
	if sk == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", errors.ErrInvalidSocketID, id)
	}
	if sk.kind != kindComm && sk.kind != kindPipeWrite {
		s.mu.Unlock()
		return fmt.Errorf("%w: socket %d cannot send", errors.ErrInvalidSocketID, id)
	}
	gen := sk.gen
	fd := sk.fd
	isPipe := sk.kind == kindPipeWrite
	isStream := isPipe || sk.sotype == unix.SOCK_STREAM
	cnxLess := sk.cnxLess
	peerSA := sk.peerSA
	ownsFd := sk.ownsFd
	s.mu.Unlock()

	var err error
	if isStream {
		err = sendStream(fd, data, isPipe)
	} else {
		err = sendPacket(fd, data, cnxLess, ownsFd, peerSA)
	}
	if err != nil {
		return err
	}

	if cnxLess {
		s.mu.Lock()
		if sk := s.sockAt(id); sk != nil && sk.gen == gen {
			sk.lastActivity = time.Now()
		}
		s.mu.Unlock()
	}
	return nil
}

// sendStream writes the whole payload, waiting for writability whenever the
// kernel buffer is full.
func sendStream(fd int, data []byte, isPipe bool) error {
	for len(data) > 0 {
		var n int
		var err error
		if isPipe {
			n, err = unix.Write(fd, data)
		} else {
			n, err = unix.SendmsgN(fd, data, nil, nil, unix.MSG_NOSIGNAL)
		}
		switch err {
		case nil:
			data = data[n:]
		case unix.EINTR:
		case unix.EAGAIN:
			if werr := waitWritable(fd); werr != nil {
				return fmt.Errorf("%w: %v", errors.ErrSendFailure, werr)
			}
		case unix.ECONNRESET, unix.EPIPE:
			return errors.ErrConnectionReset
		default:
			return fmt.Errorf("%w: %v", errors.ErrSendFailure, err)
		}
	}
	return nil
}

// sendPacket sends the payload as a single packet. Emulated peer sockets
// share the server fd and must address the packet explicitly.
func sendPacket(fd int, data []byte, cnxLess, ownsFd bool, peerSA unix.Sockaddr) error {
	for {
		var to unix.Sockaddr
		if cnxLess && !ownsFd && peerSA != nil {
			// Emulated peers share the server fd and address explicitly.
			to = peerSA
		}
		n, err := unix.SendmsgN(fd, data, nil, to, unix.MSG_NOSIGNAL)
		switch err {
		case nil:
			if n < len(data) {
				return errors.ErrTruncated
			}
			return nil
		case unix.EINTR:
		case unix.EAGAIN:
			if werr := waitWritable(fd); werr != nil {
				return fmt.Errorf("%w: %v", errors.ErrSendFailure, werr)
			}
		case unix.EMSGSIZE:
			return errors.ErrTooBig
		case unix.ECONNRESET, unix.EPIPE:
			return errors.ErrConnectionReset
		default:
			return fmt.Errorf("%w: %v", errors.ErrSendFailure, err)
		}
	}
}

func waitWritable(fd int) error {
	pfds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		_, err := unix.Poll(pfds, -1)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}
