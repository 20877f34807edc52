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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skal-io/skal/message"
)

func newConn(id int) *conn {
	return &conn{
		kind:   connProcess,
		sockID: id,
		framer: &message.Framer{},
		names:  make(map[string]struct{}),
	}
}

func TestHandleFaultAlarms(t *testing.T) {
	t.Run("Duplicate birth raises a conflict alarm", func(t *testing.T) {
		d := New(WithDomain("test"))
		c := newConn(1)

		born := message.NewInternal(message.NameBorn, d.name)
		born.SetSender("alice@test")
		d.handle(c, born)
		require.Contains(t, d.registry, "alice@test")

		other := newConn(2)
		again := message.NewInternal(message.NameBorn, d.name)
		again.SetSender("alice@test")
		d.handle(other, again)

		al, ok := d.alarms.Get("", "skal-conflict-duplicate-thread")
		require.True(t, ok)
		assert.Contains(t, al.Comment, "alice@test")
		assert.Equal(t, 1, d.registry["alice@test"], "first registration must stand")
	})

	t.Run("Death notice for an unknown actor raises an alarm", func(t *testing.T) {
		d := New(WithDomain("test"))
		died := message.NewInternal(message.NameDied, d.name)
		died.SetSender("ghost@test")
		d.handle(newConn(1), died)

		_, ok := d.alarms.Get("", "skal-conflict-unknown-thread")
		assert.True(t, ok)
	})

	t.Run("Unintelligible daemon message raises an alarm", func(t *testing.T) {
		d := New(WithDomain("test"))
		msg := message.NewInternal("skal-no-such-thing", d.name)
		msg.SetSender("alice@test")
		d.handle(newConn(1), msg)

		_, ok := d.alarms.Get("", "skal-protocol-unknown-message")
		assert.True(t, ok)
	})

	t.Run("Message claiming the daemon as sender is circular", func(t *testing.T) {
		d := New(WithDomain("test"))
		msg := message.New("hello", "alice@test", 0, 4)
		msg.SetSender(d.name)
		d.handle(newConn(1), msg)

		_, ok := d.alarms.Get("", "skal-conflict-circular-msg")
		assert.True(t, ok)
	})

	t.Run("Domainless sender and recipient raise protocol alarms", func(t *testing.T) {
		d := New(WithDomain("test"))

		msg := message.New("hello", "bob@test", 0, 4)
		msg.SetSender("alice")
		d.handle(newConn(1), msg)
		_, ok := d.alarms.Get("", "skal-protocol-sender-has-no-domain")
		assert.True(t, ok)

		msg = message.New("hello", "bob", 0, 4)
		msg.SetSender("alice@test")
		d.handle(newConn(1), msg)
		_, ok = d.alarms.Get("", "skal-protocol-recipient-has-no-domain")
		assert.True(t, ok)
	})

	t.Run("Multicast to an unknown group is a silent no-op", func(t *testing.T) {
		d := New(WithDomain("test"))
		msg := message.New("weather-report", "nothing@test", message.FlagMulticast|message.FlagNtfDrop, 4)
		msg.SetSender("alice@test")
		d.handle(newConn(1), msg)

		assert.Zero(t, d.alarms.Len(), "multicast never drops in the alarm sense")
	})

	t.Run("Unicast to a group name resolves against the registry only", func(t *testing.T) {
		d := New(WithDomain("test"))

		sub := message.NewInternal(message.NameSubscribe, d.name)
		sub.SetSender("listener@test")
		sub.AddString("group", "news")
		d.handle(newConn(1), sub)
		require.Contains(t, d.groups, "news@test")

		msg := message.New("hello", "news@test", 0, 4)
		msg.SetSender("alice@test")
		d.handle(newConn(1), msg)

		_, ok := d.alarms.Get("", "skal-drop-no-recipient")
		assert.True(t, ok, "a plain message must not be swallowed by a group of the same name")
	})

	t.Run("Foreign domain recipient raises an alarm", func(t *testing.T) {
		d := New(WithDomain("test"))
		msg := message.New("hello", "bob@elsewhere", 0, 4)
		msg.SetSender("alice@test")
		d.handle(newConn(1), msg)

		_, ok := d.alarms.Get("", "skal-drop-foreign-domain")
		assert.True(t, ok)
	})
}
