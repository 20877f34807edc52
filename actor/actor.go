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
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/skal-io/skal/internal/ticker"
	"github.com/skal-io/skal/message"
	"github.com/skal-io/skal/queue"
)

// Behavior processes one message on behalf of an actor. Returning an error
// terminates the actor.
type Behavior func(ctx *Context, msg *message.Message) error

// actorRef is the runtime state of one actor. Fields below the queue are
// owned by the runner goroutine and must not be touched by anyone else.
type actorRef struct {
	sys      *System
	name     string
	behavior Behavior
	queue    *queue.Queue

	xoffTimeout time.Duration

	// xoff maps the peers that asked this actor to pause to the time the
	// last resume notification request was sent to them.
	xoff map[string]time.Time
	// ntfXon holds the peers waiting for this actor's queue to drain.
	ntfXon mapset.Set[string]
	// retry drives ntf-xon retransmissions while paused.
	retry *ticker.Ticker

	done chan struct{}
	stop bool
}

func newActorRef(sys *System, name string, behavior Behavior, cfg *spawnConfig) *actorRef {
	return &actorRef{
		sys:         sys,
		name:        name,
		behavior:    behavior,
		queue:       queue.New(name, cfg.queueThreshold),
		xoffTimeout: cfg.xoffTimeout,
		xoff:        make(map[string]time.Time),
		ntfXon:      mapset.NewSet[string](),
		retry:       ticker.New(cfg.xoffTimeout),
		done:        make(chan struct{}),
	}
}

// run is the actor goroutine. While at least one peer has this actor
// paused, only internal messages are popped; urgent and regular traffic
// stays queued until every pause is lifted.
func (a *actorRef) run() {
	defer a.sys.actorDied(a)
	defer a.retry.Stop()
	defer close(a.done)

	go a.forwardRetryTicks()

	ctx := &Context{actor: a}
	for {
		msg := a.queue.Pop(len(a.xoff) > 0)
		if a.process(ctx, msg) {
			return
		}
		a.maybeResumePeers()
	}
}

// process handles one message and reports whether the actor must terminate.
// Flow-control and lifecycle messages are consumed by the runtime; protocol
// replies of interest to the application (drop notices, pongs, alarm
// listings) go to the behavior like ordinary messages.
func (a *actorRef) process(ctx *Context, msg *message.Message) bool {
	if runtimeHandled(msg.Name()) &&
		(msg.IsInternal() || strings.HasPrefix(msg.Name(), message.ProtocolPrefix)) {
		return a.processInternal(msg)
	}
	if err := a.behavior(ctx, msg); err != nil {
		a.sys.logger.Errorf("actor %s terminated by message %s: %v", a.name, msg.Name(), err)
		return true
	}
	return a.stop
}

func (a *actorRef) processInternal(msg *message.Message) bool {
	switch msg.Name() {
	case message.NameXoff:
		origin := originOf(msg)
		a.xoff[origin] = time.Now()
		a.sendNtfXon(origin)
		a.retry.Start()

	case message.NameXon:
		delete(a.xoff, originOf(msg))
		if len(a.xoff) == 0 {
			a.retry.Stop()
		}

	case message.NameNtfXon:
		a.ntfXon.Add(msg.Sender())

	case message.NameRetryTick:
		now := time.Now()
		for origin, last := range a.xoff {
			if now.Sub(last) >= a.xoffTimeout {
				a.sendNtfXon(origin)
				a.xoff[origin] = now
			}
		}

	case message.NamePing:
		pong := message.NewInternal(message.NamePong, msg.Sender())
		pong.SetSender(a.name)
		a.sys.route(pong)

	case message.NameTerminate:
		return true

	default:
		a.sys.logger.Debugf("actor %s ignored protocol message %s from %s",
			a.name, msg.Name(), msg.Sender())
	}
	return false
}

// runtimeHandled tells whether a protocol message is for the runtime alone.
func runtimeHandled(name string) bool {
	switch name {
	case message.NameErrorDrop, message.NamePong, message.NameAlarms:
		return false
	}
	return true
}

// sendNtfXon asks the peer that paused this actor to signal when its queue
// has drained.
func (a *actorRef) sendNtfXon(origin string) {
	ntf := message.NewInternal(message.NameNtfXon, origin)
	ntf.SetSender(a.name)
	a.sys.route(ntf)
}

// maybeResumePeers resumes the peers blocked on this actor once the queue
// has drained below the low threshold.
func (a *actorRef) maybeResumePeers() {
	if a.ntfXon.Cardinality() == 0 || a.queue.IsOverLowThreshold() {
		return
	}
	for _, peer := range a.ntfXon.ToSlice() {
		xon := message.NewInternal(message.NameXon, peer)
		xon.SetSender(a.name)
		xon.AddString("origin", a.name)
		a.sys.route(xon)
	}
	a.ntfXon.Clear()
}

// forwardRetryTicks turns retry ticker expiries into internal messages so
// the runner sees them through its queue like everything else.
func (a *actorRef) forwardRetryTicks() {
	for {
		select {
		case <-a.retry.Ticks:
			tick := message.NewInternal(message.NameRetryTick, a.name)
			tick.SetSender(a.name)
			a.queue.Push(tick)
		case <-a.done:
			return
		}
	}
}

// originOf returns the peer a flow-control message is about: the explicit
// origin field when present, the message sender otherwise.
func originOf(msg *message.Message) string {
	if origin, ok := msg.GetString("origin"); ok {
		return origin
	}
	return msg.Sender()
}
