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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skal-io/skal/log"
	"github.com/skal-io/skal/message"
)

// spawnBare wires an actor straight into an unstarted system: outbound
// traffic accumulates on the global queue where the test can inspect it
// instead of going to a daemon.
func spawnBare(t *testing.T, s *System, name string, behavior Behavior, opts ...SpawnOption) *actorRef {
	t.Helper()
	ref := newActorRef(s, name, behavior, newSpawnConfig(opts...))
	require.True(t, s.actors.SetIfAbsent(name, ref))
	s.wg.Add(1)
	go ref.run()
	t.Cleanup(func() {
		terminate := message.NewInternal(message.NameTerminate, name)
		ref.queue.Push(terminate)
	})
	return ref
}

// nextOutbound polls the global queue for the next message the actor sent
// towards a non-local recipient.
func nextOutbound(t *testing.T, s *System, timeout time.Duration) *message.Message {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if msg := s.global.TryPop(false); msg != nil {
			return msg
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func newBareSystem() *System {
	return NewSystem(WithLogger(log.DiscardLogger))
}

func TestXoffPausesActor(t *testing.T) {
	s := newBareSystem()
	received := make(chan string, 16)
	ref := spawnBare(t, s, "worker@test", func(_ *Context, msg *message.Message) error {
		received <- msg.Name()
		return nil
	})

	// A pause request makes the actor ask to be notified of the resume.
	xoff := message.NewInternal(message.NameXoff, "worker@test")
	xoff.SetSender("blocker@test")
	xoff.AddString("origin", "blocker@test")
	ref.queue.Push(xoff)

	ntf := nextOutbound(t, s, time.Second)
	require.NotNil(t, ntf)
	assert.Equal(t, message.NameNtfXon, ntf.Name())
	assert.Equal(t, "blocker@test", ntf.Recipient())
	assert.Equal(t, "worker@test", ntf.Sender())

	// While paused, user messages stay queued.
	ref.queue.Push(message.New("job", "worker@test", 0, 0))
	select {
	case name := <-received:
		t.Fatalf("paused actor processed %q", name)
	case <-time.After(100 * time.Millisecond):
	}

	// The resume unblocks the queued work.
	xon := message.NewInternal(message.NameXon, "worker@test")
	xon.SetSender("blocker@test")
	xon.AddString("origin", "blocker@test")
	ref.queue.Push(xon)

	select {
	case name := <-received:
		assert.Equal(t, "job", name)
	case <-time.After(time.Second):
		t.Fatal("actor did not resume after skal-xon")
	}
}

func TestNtfXonRetry(t *testing.T) {
	s := newBareSystem()
	spawnBareRef := spawnBare(t, s, "worker@test",
		func(_ *Context, _ *message.Message) error { return nil },
		WithXoffTimeout(20*time.Millisecond))

	xoff := message.NewInternal(message.NameXoff, "worker@test")
	xoff.SetSender("blocker@test")
	spawnBareRef.queue.Push(xoff)

	// The first request, then at least one retry while no xon shows up.
	for i := 0; i < 2; i++ {
		ntf := nextOutbound(t, s, time.Second)
		require.NotNil(t, ntf, "request %d never sent", i)
		assert.Equal(t, message.NameNtfXon, ntf.Name())
		assert.Equal(t, "blocker@test", ntf.Recipient())
	}
}

func TestNtfXonAnsweredWhenQueueDrains(t *testing.T) {
	s := newBareSystem()
	ref := spawnBare(t, s, "worker@test", func(_ *Context, _ *message.Message) error {
		return nil
	})

	ntf := message.NewInternal(message.NameNtfXon, "worker@test")
	ntf.SetSender("starved@test")
	ref.queue.Push(ntf)

	xon := nextOutbound(t, s, time.Second)
	require.NotNil(t, xon)
	assert.Equal(t, message.NameXon, xon.Name())
	assert.Equal(t, "starved@test", xon.Recipient())
	origin, ok := xon.GetString("origin")
	require.True(t, ok)
	assert.Equal(t, "worker@test", origin)
}

func TestPingPong(t *testing.T) {
	s := newBareSystem()
	ref := spawnBare(t, s, "worker@test", func(_ *Context, _ *message.Message) error {
		return nil
	})

	ping := message.NewInternal(message.NamePing, "worker@test")
	ping.SetSender("pinger@test")
	ref.queue.Push(ping)

	pong := nextOutbound(t, s, time.Second)
	require.NotNil(t, pong)
	assert.Equal(t, message.NamePong, pong.Name())
	assert.Equal(t, "pinger@test", pong.Recipient())
}

func TestBehaviorErrorTerminatesActor(t *testing.T) {
	s := newBareSystem()
	ref := newActorRef(s, "doomed@test", func(_ *Context, _ *message.Message) error {
		return assert.AnError
	}, newSpawnConfig())
	require.True(t, s.actors.SetIfAbsent("doomed@test", ref))
	s.wg.Add(1)
	go ref.run()

	ref.queue.Push(message.New("poison", "doomed@test", 0, 0))

	require.Eventually(t, func() bool {
		_, alive := s.actors.Get("doomed@test")
		return !alive
	}, time.Second, 5*time.Millisecond)

	// Death is announced towards the daemon.
	died := nextOutbound(t, s, time.Second)
	require.NotNil(t, died)
	assert.Equal(t, message.NameDied, died.Name())
	assert.Equal(t, "doomed@test", died.Sender())
}

func TestDropNoticeReachesBehavior(t *testing.T) {
	s := newBareSystem()
	received := make(chan *message.Message, 1)
	ref := spawnBare(t, s, "worker@test", func(_ *Context, msg *message.Message) error {
		received <- msg
		return nil
	})

	notice := message.NewInternal(message.NameErrorDrop, "worker@test")
	notice.SetSender("skald@test")
	notice.AddString("reason", message.DropReasonNoRecipient)
	ref.queue.Push(notice)

	select {
	case msg := <-received:
		assert.Equal(t, message.NameErrorDrop, msg.Name())
		reason, _ := msg.GetString("reason")
		assert.Equal(t, message.DropReasonNoRecipient, reason)
	case <-time.After(time.Second):
		t.Fatal("drop notice never reached the behavior")
	}
}

func TestContextStop(t *testing.T) {
	s := newBareSystem()
	ref := spawnBare(t, s, "oneshot@test", func(ctx *Context, _ *message.Message) error {
		ctx.Stop()
		return nil
	})

	ref.queue.Push(message.New("only-one", "oneshot@test", 0, 0))
	require.Eventually(t, func() bool {
		_, alive := s.actors.Get("oneshot@test")
		return !alive
	}, time.Second, 5*time.Millisecond)
}

func TestSpawnValidation(t *testing.T) {
	s := newBareSystem()
	noop := func(_ *Context, _ *message.Message) error { return nil }

	t.Run("Requires a started system", func(t *testing.T) {
		err := s.Spawn("worker", noop)
		assert.Error(t, err)
	})
	t.Run("Rejects empty names", func(t *testing.T) {
		assert.Error(t, s.Spawn("", noop))
	})
	t.Run("Rejects qualified names", func(t *testing.T) {
		assert.Error(t, s.Spawn("worker@elsewhere", noop))
	})
	t.Run("Rejects reserved names", func(t *testing.T) {
		assert.Error(t, s.Spawn("skald", noop))
		assert.Error(t, s.Spawn("skal-worker", noop))
		assert.Error(t, s.Spawn("external", noop))
	})
}

func TestSendValidation(t *testing.T) {
	s := newBareSystem()
	assert.Error(t, s.Send(nil))
	assert.Error(t, s.Send(message.New("x", "", 0, 0)))
	err := s.Send(message.New("x", "someone", 0, 0))
	assert.Error(t, err, "system not started")
}
