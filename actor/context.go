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
	"github.com/skal-io/skal/alarm"
	"github.com/skal-io/skal/log"
	"github.com/skal-io/skal/message"
)

// Context is handed to a behavior for each message it processes.
type Context struct {
	actor *actorRef
}

// Name returns the fully qualified name of the actor.
func (c *Context) Name() string { return c.actor.name }

// Domain returns the domain of the system.
func (c *Context) Domain() string { return c.actor.sys.Domain() }

// System returns the system the actor belongs to.
func (c *Context) System() *System { return c.actor.sys }

// Logger returns the logger of the system.
func (c *Context) Logger() log.Logger { return c.actor.sys.logger }

// Send sends a message on behalf of the actor.
func (c *Context) Send(msg *message.Message) error {
	if msg == nil {
		return nil
	}
	msg.SetSender(c.actor.name)
	return c.actor.sys.Send(msg)
}

// Stop terminates the actor once the current message has been processed.
// Queued messages are discarded.
func (c *Context) Stop() { c.actor.stop = true }

// QueueLen returns the current size of the actor queue.
func (c *Context) QueueLen() int64 { return c.actor.queue.Len() }

// RaiseAlarm reports an alarm (raised or cleared) to the router daemon. The
// alarm origin defaults to the actor name.
func (c *Context) RaiseAlarm(al *alarm.Alarm) error {
	if al == nil {
		return nil
	}
	if al.Origin == "" {
		al.Origin = c.actor.name
	}
	msg := message.NewInternal(message.NameAlarms, DaemonName)
	msg.AttachAlarm(al)
	return c.Send(msg)
}

// Subscribe adds the actor to a multicast group. An empty filter delivers
// every message published to the group; a filter starting with "~" is a
// regular expression matched against message names; any other filter is a
// verbatim message name prefix.
func (c *Context) Subscribe(group, filter string) error {
	msg := message.NewInternal(message.NameSubscribe, DaemonName)
	msg.AddString("group", group)
	if filter != "" {
		msg.AddString("filter", filter)
	}
	return c.Send(msg)
}

// Unsubscribe removes the actor from a multicast group.
func (c *Context) Unsubscribe(group string) error {
	msg := message.NewInternal(message.NameUnsubscribe, DaemonName)
	msg.AddString("group", group)
	return c.Send(msg)
}
