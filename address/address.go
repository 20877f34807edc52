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

// Package address implements the URL-like addressing scheme used to select a
// transport and its parameters:
//
//	unix:///tmp/my.sock  UNIX socket of type SOCK_SEQPACKET
//	unixs:///tmp/xyz     UNIX socket of type SOCK_STREAM
//	unixd://local.sock   UNIX socket of type SOCK_DGRAM (relative path allowed)
//	tcp://host:port      IPv4 TCP socket
//	udp://host:port      IPv4 UDP socket
//	pipe://              an unnamed pipe, as in pipe(2)
//
// When a host name is given instead of a numerical address, a DNS lookup is
// performed at socket-creation time when resolving the address.
package address

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/skal-io/skal/errors"
)

// Scheme identifies a transport.
type Scheme string

const (
	// UnixSeqPacket is a UNIX socket of type SOCK_SEQPACKET.
	UnixSeqPacket Scheme = "unix"
	// UnixStream is a UNIX socket of type SOCK_STREAM.
	UnixStream Scheme = "unixs"
	// UnixDgram is a UNIX socket of type SOCK_DGRAM.
	UnixDgram Scheme = "unixd"
	// TCP is an IPv4 TCP socket.
	TCP Scheme = "tcp"
	// UDP is an IPv4 UDP socket.
	UDP Scheme = "udp"
	// Pipe is an unnamed pipe pair.
	Pipe Scheme = "pipe"
)

// DefaultDaemonURL is the well-known local address of the router daemon.
const DefaultDaemonURL = "unix:///tmp/skald.sock"

// Address is a parsed transport address.
type Address struct {
	scheme Scheme
	host   string
	port   int
	path   string
}

// Parse parses a textual URL into an Address.
func Parse(rawURL string) (*Address, error) {
	scheme, rest, found := strings.Cut(rawURL, "://")
	if !found {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidAddress, rawURL)
	}

	switch Scheme(scheme) {
	case Pipe:
		if rest != "" {
			return nil, fmt.Errorf("%w: pipe address takes no path: %q", errors.ErrInvalidAddress, rawURL)
		}
		return &Address{scheme: Pipe}, nil

	case UnixSeqPacket, UnixStream, UnixDgram:
		if rest == "" {
			return nil, fmt.Errorf("%w: missing socket path: %q", errors.ErrInvalidAddress, rawURL)
		}
		return &Address{scheme: Scheme(scheme), path: rest}, nil

	case TCP, UDP:
		host, portStr, err := net.SplitHostPort(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", errors.ErrInvalidAddress, rawURL, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 0 || port > 65535 {
			return nil, fmt.Errorf("%w: bad port in %q", errors.ErrInvalidAddress, rawURL)
		}
		return &Address{scheme: Scheme(scheme), host: host, port: port}, nil

	default:
		return nil, fmt.Errorf("%w: unknown scheme %q", errors.ErrInvalidAddress, scheme)
	}
}

// MustParse parses a textual URL and panics on failure. Reserved for
// hard-coded addresses.
func MustParse(rawURL string) *Address {
	addr, err := Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return addr
}

// Scheme returns the transport scheme.
func (a *Address) Scheme() Scheme { return a.scheme }

// Host returns the host part of a tcp:// or udp:// address.
func (a *Address) Host() string { return a.host }

// Port returns the port part of a tcp:// or udp:// address.
func (a *Address) Port() int { return a.port }

// Path returns the filesystem path of a unix-domain address.
func (a *Address) Path() string { return a.path }

// HostPort returns "host:port" for tcp:// and udp:// addresses.
func (a *Address) HostPort() string {
	return net.JoinHostPort(a.host, strconv.Itoa(a.port))
}

// Connectionless reports whether the transport is datagram-based and has no
// notion of connection (unixd, udp).
func (a *Address) Connectionless() bool {
	return a.scheme == UnixDgram || a.scheme == UDP
}

// PacketBased reports whether the transport preserves packet boundaries
// (unix seqpacket, unixd, udp).
func (a *Address) PacketBased() bool {
	switch a.scheme {
	case UnixSeqPacket, UnixDgram, UDP:
		return true
	}
	return false
}

// IsUnix reports whether the address is in the UNIX domain.
func (a *Address) IsUnix() bool {
	switch a.scheme {
	case UnixSeqPacket, UnixStream, UnixDgram:
		return true
	}
	return false
}

// IsPipe reports whether the address designates an unnamed pipe pair.
func (a *Address) IsPipe() bool { return a.scheme == Pipe }

// String formats the address back into its URL form.
func (a *Address) String() string {
	switch a.scheme {
	case Pipe:
		return "pipe://"
	case TCP, UDP:
		return fmt.Sprintf("%s://%s", a.scheme, a.HostPort())
	default:
		return fmt.Sprintf("%s://%s", a.scheme, a.path)
	}
}
