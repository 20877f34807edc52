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

// Package queue implements the per-actor mailbox: three ordered sub-lists
// (internal, urgent, regular) behind one mutex and condition variable. A push
// never fails and never blocks; the blocking pop is the only blocking point
// of an actor.
package queue

import (
	"sync"

	"github.com/skal-io/skal/message"
)

// DefaultThreshold is the queue capacity threshold used when none is given.
// Crossing it triggers the pause half of the backpressure protocol.
const DefaultThreshold = 100

// Queue is one actor's mailbox. All methods are safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	name     string
	internal []*message.Message
	urgent   []*message.Message
	regular  []*message.Message
	// threshold is the high-water mark; the low-water mark is half of it.
	threshold int64
	pushHook  func()
}

// New creates a message queue. A threshold of zero or less selects
// DefaultThreshold.
func New(name string, threshold int64) *Queue {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	q := &Queue{
		name:      name,
		threshold: threshold,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Name returns the queue name as set at creation.
func (q *Queue) Name() string { return q.name }

// SetPushHook attaches a hook called after every push, outside the queue
// lock. Any previous hook is overwritten; nil cancels it. The master actor
// uses this to wake its poll loop.
func (q *Queue) SetPushHook(hook func()) {
	q.mu.Lock()
	q.pushHook = hook
	q.mu.Unlock()
}

// Push inserts the message into the sub-list selected by its class:
// internal ahead of urgent ahead of regular. Push always succeeds and never
// blocks; ownership of the message transfers to the queue.
func (q *Queue) Push(msg *message.Message) {
	q.mu.Lock()
	switch {
	case msg.IsInternal():
		q.internal = append(q.internal, msg)
	case msg.IsUrgent():
		q.urgent = append(q.urgent, msg)
	default:
		q.regular = append(q.regular, msg)
	}
	hook := q.pushHook
	q.mu.Unlock()

	q.cond.Broadcast()
	if hook != nil {
		hook()
	}
}

func popFront(list *[]*message.Message) *message.Message {
	msg := (*list)[0]
	(*list)[0] = nil
	*list = (*list)[1:]
	return msg
}

// must be called with q.mu held
func (q *Queue) tryPopLocked(internalOnly bool) *message.Message {
	if len(q.internal) > 0 {
		return popFront(&q.internal)
	}
	if internalOnly {
		return nil
	}
	if len(q.urgent) > 0 {
		return popFront(&q.urgent)
	}
	if len(q.regular) > 0 {
		return popFront(&q.regular)
	}
	return nil
}

// Pop removes and returns the message at the front of the queue, blocking
// until one is available. Internal messages are drained first, then urgent,
// then regular, FIFO within each class. When internalOnly is set, urgent and
// regular messages are ignored entirely; this is used while the actor itself
// is paused.
func (q *Queue) Pop(internalOnly bool) *message.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if msg := q.tryPopLocked(internalOnly); msg != nil {
			return msg
		}
		q.cond.Wait()
	}
}

// TryPop works like Pop but returns nil instead of blocking.
func (q *Queue) TryPop(internalOnly bool) *message.Message {
	q.mu.Lock()
	msg := q.tryPopLocked(internalOnly)
	q.mu.Unlock()
	return msg
}

// Len returns a point-in-time snapshot of the total queue size, summed
// across the three sub-lists. This is the size backpressure thresholds are
// compared against.
func (q *Queue) Len() int64 {
	q.mu.Lock()
	n := int64(len(q.internal) + len(q.urgent) + len(q.regular))
	q.mu.Unlock()
	return n
}

// IsOverHighThreshold reports whether the queue is full or more than full.
func (q *Queue) IsOverHighThreshold() bool {
	return q.Len() >= q.threshold
}

// IsOverLowThreshold reports whether the queue is half-full or more than
// half-full.
func (q *Queue) IsOverLowThreshold() bool {
	return q.Len() >= q.threshold/2
}
