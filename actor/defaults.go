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

package actor

import (
	"time"

	"github.com/skal-io/skal/queue"
)

const (
	// DefaultXoffTimeout is how long a paused actor waits for a resume
	// notification before asking again.
	DefaultXoffTimeout = 50 * time.Millisecond

	// DefaultQueueThreshold is the queue size above which senders are asked
	// to pause.
	DefaultQueueThreshold = queue.DefaultThreshold

	// DefaultStartTimeout bounds the handshake with the router daemon.
	DefaultStartTimeout = 10 * time.Second
)

// DaemonName is the unqualified actor name of the local router daemon.
const DaemonName = "skald"

// ExternalName is the sender name attributed to messages injected from
// outside any actor.
const ExternalName = "external"

// masterName is the per-process pseudo actor that owns the daemon
// connection.
const masterName = "master"
