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
	"net"

	"golang.org/x/sys/unix"

	"github.com/skal-io/skal/address"
	"github.com/skal-io/skal/errors"
)

// sockParams maps an address scheme to the socket(2) domain and type.
func sockParams(addr *address.Address) (domain int, sotype int, err error) {
	switch addr.Scheme() {
	case address.UnixSeqPacket:
		return unix.AF_UNIX, unix.SOCK_SEQPACKET, nil
	case address.UnixStream:
		return unix.AF_UNIX, unix.SOCK_STREAM, nil
	case address.UnixDgram:
		return unix.AF_UNIX, unix.SOCK_DGRAM, nil
	case address.TCP:
		return unix.AF_INET, unix.SOCK_STREAM, nil
	case address.UDP:
		return unix.AF_INET, unix.SOCK_DGRAM, nil
	default:
		return 0, 0, fmt.Errorf("%w: scheme %q is not a socket scheme", errors.ErrInvalidAddress, addr.Scheme())
	}
}

// sockaddr resolves an address into the kernel representation. Only IPv4 is
// supported for tcp and udp.
func sockaddr(addr *address.Address) (unix.Sockaddr, error) {
	if addr.IsUnix() {
		if addr.Path() == "" {
			return nil, fmt.Errorf("%w: unix address without a path", errors.ErrInvalidAddress)
		}
		return &unix.SockaddrUnix{Name: addr.Path()}, nil
	}

	sa := &unix.SockaddrInet4{Port: addr.Port()}
	host := addr.Host()
	if host == "" {
		return sa, nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot resolve %q: %v", errors.ErrInvalidAddress, host, err)
		}
		for _, candidate := range ips {
			if candidate.To4() != nil {
				ip = candidate
				break
			}
		}
	}
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("%w: %q does not resolve to an IPv4 address", errors.ErrInvalidAddress, host)
	}
	copy(sa.Addr[:], ip.To4())
	return sa, nil
}

// sockaddrKey returns a stable string identity for a peer address, used to
// recognise datagrams from an already known peer.
func sockaddrKey(sa unix.Sockaddr) string {
	switch peer := sa.(type) {
	case *unix.SockaddrUnix:
		return "unix:" + peer.Name
	case *unix.SockaddrInet4:
		return fmt.Sprintf("ip4:%d.%d.%d.%d:%d", peer.Addr[0], peer.Addr[1], peer.Addr[2], peer.Addr[3], peer.Port)
	case *unix.SockaddrInet6:
		return fmt.Sprintf("ip6:%v:%d", peer.Addr, peer.Port)
	default:
		return fmt.Sprintf("%T:%v", sa, sa)
	}
}
