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

package errors

import "errors"

var (
	// ErrInvalidAddress is returned when a socket address URL cannot be parsed
	// or uses an unknown scheme.
	ErrInvalidAddress = errors.New("invalid address URL")

	// ErrInvalidSocketID is returned when an operation targets a socket id that
	// does not exist in the set, or a server socket where a comm socket is
	// required.
	ErrInvalidSocketID = errors.New("invalid socket id")

	// ErrTooBig is returned by a packet send when the payload exceeds what the
	// underlying protocol can carry atomically. No data has been sent.
	ErrTooBig = errors.New("packet too big to be sent atomically")

	// ErrTruncated is returned by a packet send when only part of the payload
	// was accepted by the kernel.
	ErrTruncated = errors.New("packet truncated")

	// ErrConnectionReset is returned by a stream send when the peer reset the
	// connection mid-send. The socket should be destroyed.
	ErrConnectionReset = errors.New("connection reset by peer")

	// ErrSendFailure is returned when a send fails for an unexpected reason.
	ErrSendFailure = errors.New("send failed")

	// ErrInvalidMessage indicates that a wire message is malformed or uses an
	// unsupported protocol version.
	ErrInvalidMessage = errors.New("invalid wire message")

	// ErrMissingField is returned when a message lacks a required field.
	ErrMissingField = errors.New("missing required message field")

	// ErrNoDomain indicates a sender or recipient name without a domain part.
	ErrNoDomain = errors.New("name has no domain")

	// ErrActorNotFound is returned when no actor with the given name is
	// registered in the local runtime.
	ErrActorNotFound = errors.New("actor not found")

	// ErrDuplicateActor is returned when spawning an actor whose name is
	// already taken in the local runtime.
	ErrDuplicateActor = errors.New("actor name already registered")

	// ErrNameRequired is returned when an actor or process name is empty.
	ErrNameRequired = errors.New("name is required")

	// ErrReservedName is returned when spawning an actor with a name reserved
	// for the runtime itself.
	ErrReservedName = errors.New("actor name is reserved")

	// ErrSystemNotStarted indicates the runtime has not been started before use.
	ErrSystemNotStarted = errors.New("system is not running")

	// ErrSystemStopping is returned when an operation is attempted while the
	// runtime is shutting down.
	ErrSystemStopping = errors.New("system is shutting down")

	// ErrDaemonUnreachable is returned when the router daemon cannot be
	// connected to.
	ErrDaemonUnreachable = errors.New("router daemon is unreachable")
)
