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
	"fmt"

	"github.com/skal-io/skal/errors"
	"github.com/skal-io/skal/message"
	"github.com/skal-io/skal/socket"
)

// wakeToken is the byte written to the wakeup pipe when the global queue
// receives a message. Its value is irrelevant; only the poll wakeup matters.
var wakeToken = []byte{0x01}

// masterLoop is the per-process master: it owns the socket set, forwards
// outbound messages to the router daemon and routes inbound messages to the
// local actors. It exits when the socket set is closed.
func (s *System) masterLoop() {
	defer close(s.masterDone)

	framer := &message.Framer{}
	for {
		ev := s.sockets.Poll()
		if ev == nil {
			return
		}
		switch {
		case ev.Type == socket.EventEstablished && ev.SockID == s.daemonID:
			s.sendHandshake()

		case ev.Type == socket.EventDataIn && ev.SockID == s.pipeReadID:
			s.drainGlobal()

		case ev.Type == socket.EventDataIn && ev.SockID == s.daemonID:
			for _, frame := range framer.Push(ev.Data) {
				msg, err := message.Decode(frame)
				if err != nil {
					s.logger.Warnf("discarding undecodable daemon frame: %v", err)
					continue
				}
				s.handleFromDaemon(msg)
			}

		case ev.SockID == s.daemonID:
			// Not established, error or disconnect: the daemon is gone.
			err := fmt.Errorf("%w: connection %s", errors.ErrDaemonUnreachable, ev.Type)
			s.finishStart(err)
			s.logger.Errorf("router daemon lost: %v", err)
			return
		}
	}
}

// sendHandshake opens the session: the daemon answers with the domain name.
func (s *System) sendHandshake() {
	hello := message.NewInternal(message.NameMasterBorn, DaemonName)
	hello.SetSender(masterName)
	s.sendToDaemon(hello)
}

// drainGlobal flushes the global queue to the daemon. Messages whose
// recipient turns out to be local are delivered directly; this happens when
// an actor was spawned between enqueue and drain.
func (s *System) drainGlobal() {
	for {
		msg := s.global.TryPop(false)
		if msg == nil {
			return
		}
		if ref, ok := s.actors.Get(msg.Recipient()); ok {
			s.deliverLocal(ref, msg)
			continue
		}
		s.sendToDaemon(msg)
	}
}

func (s *System) sendToDaemon(msg *message.Message) {
	data, err := msg.Encode()
	if err != nil {
		s.logger.Errorf("cannot encode message %s: %v", msg.Name(), err)
		return
	}
	if err := s.sockets.Send(s.daemonID, data); err != nil {
		s.logger.Errorf("cannot send message %s to router daemon: %v", msg.Name(), err)
	}
}

// handleFromDaemon dispatches one inbound message.
func (s *System) handleFromDaemon(msg *message.Message) {
	switch msg.Name() {
	case message.NameInitDomain:
		domain, ok := msg.GetString("domain")
		if !ok || domain == "" {
			s.finishStart(fmt.Errorf("%w: handshake reply carries no domain", errors.ErrDaemonUnreachable))
			return
		}
		s.mu.Lock()
		s.domain = domain
		s.mu.Unlock()
		s.logger.Infof("connected to router daemon, domain %q", domain)
		s.finishStart(nil)
		return

	case message.NamePing:
		pong := message.NewInternal(message.NamePong, msg.Sender())
		pong.SetSender(message.WithDomain(masterName, s.Domain()))
		s.sendToDaemon(pong)
		return
	}

	if ref, ok := s.actors.Get(msg.Recipient()); ok {
		s.deliverLocal(ref, msg)
		return
	}

	s.logger.Warnf("dropping message %s from %s: no local actor %s",
		msg.Name(), msg.Sender(), msg.Recipient())
	if msg.Flags()&message.FlagNtfDrop != 0 {
		notice := message.NewInternal(message.NameErrorDrop, msg.Sender())
		notice.SetSender(message.WithDomain(masterName, s.Domain()))
		notice.AddString("reason", message.DropReasonNoRecipient)
		notice.AddString("original-marker", msg.Marker())
		notice.AddString("extra", msg.Recipient())
		s.sendToDaemon(notice)
	}
}

func (s *System) finishStart(err error) {
	s.startOnce.Do(func() {
		s.startErr = err
		close(s.domainReady)
	})
}
