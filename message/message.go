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

// Package message implements the unit of communication exchanged between
// actors: an immutable-once-sent envelope carrying a name, a sender, a
// recipient, routing flags, a time-to-live hop counter, an ordered set of
// named typed fields and any attached alarms.
package message

import (
	"strings"

	"github.com/google/uuid"

	"github.com/skal-io/skal/alarm"
)

// Version is the version number of the wire message format.
const Version = 1

// DefaultTTL is the initial time-to-live of a message when none is given.
// A message is dropped by the router once its TTL reaches zero.
const DefaultTTL = 4

// Flag is a message flag set by the sender.
type Flag uint8

const (
	// FlagOutOfOrderOK indicates the message may be delivered out of order.
	FlagOutOfOrderOK Flag = 1 << iota
	// FlagDropOK indicates the message may be dropped silently.
	FlagDropOK
	// FlagNtfDrop requests a notification be sent back to the sender if the
	// message is dropped.
	FlagNtfDrop
	// FlagUrgent makes the message jump ahead of regular messages in the
	// recipient queue.
	FlagUrgent
	// FlagMulticast marks the recipient as a multicast group.
	FlagMulticast
)

// IFlag is a message flag reserved for protocol-internal use.
type IFlag uint8

// IFlagInternal marks runtime control traffic. Internal messages are popped
// before anything else and are exempt from backpressure.
const IFlagInternal IFlag = 0x01

// Message is one unit of communication. A message must not be modified once
// sent; fan-out duplicates it with Copy.
type Message struct {
	version   int
	name      string
	sender    string
	recipient string
	flags     Flag
	iflags    IFlag
	ttl       int
	marker    string
	fields    []Field
	alarms    []*alarm.Alarm
}

// New creates a message with the given name, addressed to recipient. A ttl
// of zero or less selects DefaultTTL. The sender is stamped by the runtime
// when the message is sent.
func New(name, recipient string, flags Flag, ttl int) *Message {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Message{
		version:   Version,
		name:      name,
		recipient: recipient,
		flags:     flags,
		ttl:       ttl,
		marker:    uuid.NewString(),
	}
}

// NewInternal creates a runtime control message.
func NewInternal(name, recipient string) *Message {
	msg := New(name, recipient, 0, 0)
	msg.iflags = IFlagInternal
	return msg
}

// Name returns the message name.
func (m *Message) Name() string { return m.name }

// Sender returns the name of the actor that sent the message.
func (m *Message) Sender() string { return m.sender }

// SetSender stamps the sender. Use with caution outside the runtime: it makes
// the message pretend it was sent by another actor.
func (m *Message) SetSender(sender string) { m.sender = sender }

// Recipient returns the name of the destination actor or group.
func (m *Message) Recipient() string { return m.recipient }

// SetRecipient rewrites the destination. Used for multicast fan-out.
func (m *Message) SetRecipient(recipient string) { m.recipient = recipient }

// Flags returns the message flags.
func (m *Message) Flags() Flag { return m.flags }

// IFlags returns the protocol-internal flags.
func (m *Message) IFlags() IFlag { return m.iflags }

// SetIFlags sets the given protocol-internal flags.
func (m *Message) SetIFlags(iflags IFlag) { m.iflags |= iflags }

// IsInternal reports whether the message is runtime control traffic.
func (m *Message) IsInternal() bool { return m.iflags&IFlagInternal != 0 }

// IsUrgent reports whether the message carries the urgent flag.
func (m *Message) IsUrgent() bool { return m.flags&FlagUrgent != 0 }

// IsMulticast reports whether the recipient is a multicast group.
func (m *Message) IsMulticast() bool { return m.flags&FlagMulticast != 0 }

// TTL returns the remaining time-to-live hop count.
func (m *Message) TTL() int { return m.ttl }

// DecrementTTL decrements the time-to-live by one and reports whether the
// message is still alive.
func (m *Message) DecrementTTL() bool {
	m.ttl--
	return m.ttl > 0
}

// Marker returns the unique marker identifying this message.
func (m *Message) Marker() string { return m.marker }

// AttachAlarm attaches an alarm to the message.
func (m *Message) AttachAlarm(a *alarm.Alarm) {
	m.alarms = append(m.alarms, a)
}

// Alarms returns the alarms attached to the message, in attachment order.
func (m *Message) Alarms() []*alarm.Alarm { return m.alarms }

// Copy duplicates the message for fan-out, rewriting the recipient. The copy
// keeps the marker and the current TTL; the TTL is not reset.
func (m *Message) Copy(recipient string) *Message {
	dup := *m
	dup.recipient = recipient
	dup.fields = make([]Field, len(m.fields))
	copy(dup.fields, m.fields)
	dup.alarms = make([]*alarm.Alarm, len(m.alarms))
	for i, al := range m.alarms {
		clone := *al
		dup.alarms[i] = &clone
	}
	return &dup
}

// Domain extracts the domain part of an actor name of the form "name@domain".
// It returns "" when the name carries no domain.
func Domain(name string) string {
	_, domain, found := strings.Cut(name, "@")
	if !found {
		return ""
	}
	return domain
}

// WithDomain appends the given domain to the name unless it already has one.
func WithDomain(name, domain string) string {
	if name == "" || domain == "" || Domain(name) != "" {
		return name
	}
	return name + "@" + domain
}
