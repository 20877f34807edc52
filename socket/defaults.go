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

import "time"

const (
	// DefaultBufferSize is the default size of the socket send and receive
	// kernel buffers.
	DefaultBufferSize = 128 * 1024

	// DefaultBacklog is the default listen queue depth of a
	// connection-oriented server socket.
	DefaultBacklog = 20

	// DefaultIdleTimeout is how long a connectionless comm socket may stay
	// silent before it is reported as disconnected.
	DefaultIdleTimeout = 10 * time.Second

	// DefaultPollTimeout bounds a single poll pass so that idle
	// connectionless peers are detected even when no fd is active.
	DefaultPollTimeout = 100 * time.Millisecond

	// MinBufferSize and MaxBufferSize bound the configurable socket buffer
	// size.
	MinBufferSize = 2048
	MaxBufferSize = 212992
)
