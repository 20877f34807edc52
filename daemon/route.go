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

package daemon

import (
	"strings"

	"github.com/skal-io/skal/alarm"
	"github.com/skal-io/skal/message"
)

// Alarm names raised by the daemon.
const (
	alarmDropTTL         = "skal-drop-ttl"
	alarmDropNoRecipient = "skal-drop-no-recipient"
	alarmForeignDomain   = "skal-drop-foreign-domain"
	alarmInvalidFilter   = "skal-invalid-filter"
	alarmNameConflict    = "skal-conflict-duplicate-thread"
	alarmUnknownThread   = "skal-conflict-unknown-thread"
	alarmCircularMsg     = "skal-conflict-circular-msg"
	alarmProtocolFault   = "skal-protocol-invalid-json"
	alarmMissingField    = "skal-protocol-missing-field"
	alarmSenderNoDomain  = "skal-protocol-sender-has-no-domain"
	alarmRecipNoDomain   = "skal-protocol-recipient-has-no-domain"
	alarmUnknownMsg      = "skal-protocol-unknown-message"
	alarmSendFail        = "skal-io-send-fail"
)

// handle processes one inbound message. Alarms attached to any message feed
// the domain registry first, whatever the message is.
func (d *Skald) handle(c *conn, msg *message.Message) {
	for _, al := range msg.Alarms() {
		d.alarms.Process(al)
	}

	// A message claiming the daemon as its sender came back to its author.
	if msg.Sender() == d.name {
		d.alarms.Process(alarm.New(alarmCircularMsg, alarm.SeverityWarning, true, true,
			"message %s to %s claims the daemon as sender", msg.Name(), msg.Recipient()))
		return
	}

	// Only messages addressed to the daemon itself are interpreted here;
	// everything else is routed. Handshake messages are always local: the
	// connecting process does not know its domain yet. Resume notification
	// requests are inspected on the way through so that requests towards a
	// dead actor can be answered on its behalf.
	recipient := msg.Recipient()
	if recipient != d.name && recipient != DaemonName &&
		!strings.HasPrefix(msg.Name(), message.InitPrefix) {
		if msg.Name() == message.NameNtfXon {
			d.ntfXon(msg)
			return
		}
		d.route(msg)
		return
	}

	switch msg.Name() {
	case message.NameMasterBorn:
		c.kind = connProcess
		reply := message.NewInternal(message.NameInitDomain, msg.Sender())
		reply.SetSender(d.name)
		reply.AddString("domain", d.domain)
		d.sendOn(c.sockID, reply)

	case message.NameMasterTerminated:
		d.dropConn(c.sockID)

	case message.NameBorn:
		name := msg.Sender()
		if _, ok := d.registry[name]; ok {
			d.logger.Warnf("duplicate birth notice for %s, rejecting", name)
			d.alarms.Process(alarm.New(alarmNameConflict, alarm.SeverityError, true, true,
				"actor name %s is already registered", name))
			return
		}
		d.registry[name] = c.sockID
		c.names[name] = struct{}{}
		d.logger.Debugf("actor %s born on socket %d", name, c.sockID)

	case message.NameDied:
		name := msg.Sender()
		if _, ok := d.registry[name]; !ok {
			d.alarms.Process(alarm.New(alarmUnknownThread, alarm.SeverityWarning, true, true,
				"death notice for unregistered actor %s", name))
			return
		}
		delete(c.names, name)
		d.unregister(name)
		d.logger.Debugf("actor %s died", name)

	case message.NamePing:
		pong := message.NewInternal(message.NamePong, msg.Sender())
		pong.SetSender(d.name)
		d.route(pong)

	case message.NameSubscribe:
		d.subscribe(msg)

	case message.NameUnsubscribe:
		d.unsubscribe(msg)

	case message.NameQueryAlarms:
		reply := message.NewInternal(message.NameAlarms, msg.Sender())
		reply.SetSender(d.name)
		for _, al := range d.alarms.Active() {
			reply.AttachAlarm(al)
		}
		d.route(reply)

	case message.NameAlarms:
		// Attached alarms were processed above; nothing left to do.

	default:
		d.logger.Warnf("ignoring message %s from %s addressed to the daemon",
			msg.Name(), msg.Sender())
		d.alarms.Process(alarm.New(alarmUnknownMsg, alarm.SeverityWarning, true, true,
			"daemon cannot interpret message %s from %s", msg.Name(), msg.Sender()))
	}
}

// subscribe adds the sender to a multicast group. The group springs into
// existence with its first subscriber.
func (d *Skald) subscribe(msg *message.Message) {
	gname, ok := msg.GetString("group")
	if !ok || gname == "" {
		d.logger.Warnf("subscribe from %s without a group, ignored", msg.Sender())
		return
	}
	gname = message.WithDomain(gname, d.domain)
	filter, _ := msg.GetString("filter")
	sub, err := newSubscriber(msg.Sender(), filter)
	if err != nil {
		d.alarms.Process(alarm.New(alarmInvalidFilter, alarm.SeverityWarning, true, true,
			"subscription of %s to %s rejected: %v", msg.Sender(), gname, err))
		return
	}
	g, ok := d.groups[gname]
	if !ok {
		g = newGroup(gname)
		d.groups[gname] = g
	}
	g.add(sub)
	d.logger.Debugf("%s subscribed to %s (filter %q)", msg.Sender(), gname, filter)
}

// unsubscribe removes the sender from a group; the group vanishes with its
// last subscriber.
func (d *Skald) unsubscribe(msg *message.Message) {
	gname, ok := msg.GetString("group")
	if !ok || gname == "" {
		return
	}
	gname = message.WithDomain(gname, d.domain)
	g, ok := d.groups[gname]
	if !ok {
		return
	}
	if g.remove(msg.Sender()) && g.empty() {
		delete(d.groups, gname)
	}
}

// ntfXon handles a resume notification request. When the blocking actor is
// already dead there is no one left to drain a queue, so the daemon resumes
// the requester immediately on its behalf; without this, a sender paused by
// a dying actor would stay paused forever.
func (d *Skald) ntfXon(msg *message.Message) {
	recipient := msg.Recipient()
	if _, ok := d.registry[recipient]; ok {
		d.route(msg)
		return
	}
	xon := message.NewInternal(message.NameXon, msg.Sender())
	xon.SetSender(d.name)
	xon.AddString("origin", recipient)
	d.route(xon)
}

// route forwards a message to its recipient: a registered actor, or every
// matching subscriber when the recipient is a multicast group.
func (d *Skald) route(msg *message.Message) {
	if message.Domain(msg.Sender()) == "" {
		d.alarms.Process(alarm.New(alarmSenderNoDomain, alarm.SeverityWarning, true, true,
			"message %s carries the domainless sender %s", msg.Name(), msg.Sender()))
		return
	}
	recipient := msg.Recipient()
	if message.Domain(recipient) == "" {
		d.alarms.Process(alarm.New(alarmRecipNoDomain, alarm.SeverityWarning, true, true,
			"message %s carries the domainless recipient %s", msg.Name(), recipient))
		d.dropMsg(msg, message.DropReasonNoRecipient)
		return
	}
	if message.Domain(recipient) != d.domain {
		d.alarms.Process(alarm.New(alarmForeignDomain, alarm.SeverityWarning, true, true,
			"no route towards domain %q for message %s", message.Domain(recipient), msg.Name()))
		d.dropMsg(msg, message.DropReasonNoRecipient)
		return
	}
	if !msg.DecrementTTL() {
		d.alarms.Process(alarm.New(alarmDropTTL, alarm.SeverityWarning, true, true,
			"message %s from %s to %s ran out of hops", msg.Name(), msg.Sender(), recipient))
		d.dropMsg(msg, message.DropReasonTTL)
		return
	}

	// Multicast resolves against groups only, and a group with no subscriber
	// does not exist: the message evaporates without an alarm or a notice.
	if msg.IsMulticast() {
		if g, ok := d.groups[recipient]; ok {
			d.fanout(g, msg)
		}
		return
	}
	if sockID, ok := d.registry[recipient]; ok {
		d.sendOn(sockID, msg)
		return
	}
	d.alarms.Process(alarm.New(alarmDropNoRecipient, alarm.SeverityWarning, true, true,
		"no actor named %s for message %s from %s", recipient, msg.Name(), msg.Sender()))
	d.dropMsg(msg, message.DropReasonNoRecipient)
}

// fanout delivers one copy per matching subscriber. A subscriber that is no
// longer registered is skipped silently; group traffic is best-effort.
func (d *Skald) fanout(g *group, msg *message.Message) {
	for _, sub := range g.subs {
		if !sub.matches(msg.Name()) {
			continue
		}
		sockID, ok := d.registry[sub.name]
		if !ok {
			continue
		}
		d.sendOn(sockID, msg.Copy(sub.name))
	}
}

// dropMsg finalises an undeliverable message: when the sender asked to be
// told, a drop notice goes back carrying the reason and the marker of the
// dropped message.
func (d *Skald) dropMsg(msg *message.Message, reason string) {
	if msg.Flags()&message.FlagNtfDrop == 0 || msg.Name() == message.NameErrorDrop {
		return
	}
	notice := message.NewInternal(message.NameErrorDrop, msg.Sender())
	notice.SetSender(d.name)
	notice.AddString("reason", reason)
	notice.AddString("original-marker", msg.Marker())
	notice.AddString("extra", msg.Recipient())
	if sockID, ok := d.registry[msg.Sender()]; ok {
		d.sendOn(sockID, notice)
	}
}

// sendOn writes a message on a connection. A failed write condemns the
// connection: the process behind it is treated as gone.
func (d *Skald) sendOn(sockID int, msg *message.Message) {
	data, err := msg.Encode()
	if err != nil {
		d.logger.Errorf("cannot encode message %s: %v", msg.Name(), err)
		return
	}
	if err := d.sockets.Send(sockID, data); err != nil {
		d.alarms.Process(alarm.New(alarmSendFail, alarm.SeverityError, true, true,
			"cannot send %s on socket %d: %v", msg.Name(), sockID, err))
		d.dropConn(sockID)
	}
}
