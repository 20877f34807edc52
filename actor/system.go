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
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/skal-io/skal/address"
	"github.com/skal-io/skal/errors"
	"github.com/skal-io/skal/internal/syncmap"
	"github.com/skal-io/skal/log"
	"github.com/skal-io/skal/message"
	"github.com/skal-io/skal/queue"
	"github.com/skal-io/skal/socket"
)

// System hosts the actors of one process and owns the connection to the
// local router daemon. A process normally has exactly one System.
type System struct {
	logger      log.Logger
	daemonURL   string
	bufsize     int
	pauseExempt func(*message.Message) bool

	mu        sync.Mutex
	cond      *sync.Cond
	started   bool
	stopping  bool
	cancelled bool
	domain    string

	actors *syncmap.SyncMap[string, *actorRef]
	// global carries the messages the master must forward to the daemon.
	global *queue.Queue

	sockets    *socket.Set
	pipeReadID int
	wakeID     int
	daemonID   int

	startOnce   sync.Once
	startErr    error
	domainReady chan struct{}
	masterDone  chan struct{}
	wg          sync.WaitGroup
}

// NewSystem creates a system. It must be started before actors can be
// spawned.
func NewSystem(opts ...Option) *System {
	s := &System{
		logger:      log.DefaultLogger,
		daemonURL:   address.DefaultDaemonURL,
		actors:      syncmap.New[string, *actorRef](),
		global:      queue.New(masterName, queue.DefaultThreshold),
		domainReady: make(chan struct{}),
		masterDone:  make(chan struct{}),
		pauseExempt: defaultPauseExemption,
	}
	s.cond = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt.Apply(s)
	}
	return s
}

// Domain returns the domain assigned by the router daemon; empty until the
// system is started.
func (s *System) Domain() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.domain
}

// Start connects to the router daemon and blocks until the daemon has
// assigned the system its domain, or ctx expires.
func (s *System) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	daemonAddr, err := address.Parse(s.daemonURL)
	if err != nil {
		return err
	}

	s.sockets = socket.NewSet(socket.WithLogger(s.logger))

	// The pipe wakes the master out of poll whenever a message lands on the
	// global queue. Its write end arrives through the connect event.
	pipeID, err := s.sockets.CreateServer(address.MustParse("pipe://"), s.bufsize, nil, 0)
	if err != nil {
		_ = s.sockets.Close()
		return err
	}
	ev := s.sockets.Poll()
	if ev == nil || ev.Type != socket.EventConnect || ev.SockID != pipeID {
		_ = s.sockets.Close()
		return fmt.Errorf("%w: wakeup pipe setup failed", errors.ErrDaemonUnreachable)
	}
	s.pipeReadID, s.wakeID = ev.SockID, ev.ConnID

	s.daemonID, err = s.sockets.CreateComm(nil, daemonAddr, s.bufsize, nil, 0)
	if err != nil {
		_ = s.sockets.Close()
		return fmt.Errorf("%w: %v", errors.ErrDaemonUnreachable, err)
	}

	s.global.SetPushHook(func() {
		_ = s.sockets.Send(s.wakeID, wakeToken)
	})

	go s.masterLoop()

	select {
	case <-s.domainReady:
	case <-ctx.Done():
		_ = s.sockets.Close()
		<-s.masterDone
		return ctx.Err()
	}
	if s.startErr != nil {
		_ = s.sockets.Close()
		<-s.masterDone
		return s.startErr
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	return nil
}

// Spawn creates an actor. The name must be unqualified; the system appends
// its domain. The actor is announced to the router daemon so that other
// processes of the domain can reach it.
func (s *System) Spawn(name string, behavior Behavior, opts ...SpawnOption) error {
	if name == "" {
		return errors.ErrNameRequired
	}
	if behavior == nil {
		return fmt.Errorf("%w: actor %s has no behavior", errors.ErrInvalidMessage, name)
	}
	if strings.ContainsAny(name, "@#") {
		return fmt.Errorf("%w: %q", errors.ErrNameRequired, name)
	}
	if strings.HasPrefix(name, message.ProtocolPrefix) ||
		name == DaemonName || name == ExternalName || name == masterName {
		return fmt.Errorf("%w: %q", errors.ErrReservedName, name)
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.ErrSystemNotStarted
	}
	if s.stopping {
		s.mu.Unlock()
		return errors.ErrSystemStopping
	}
	qualified := message.WithDomain(name, s.domain)
	s.mu.Unlock()

	ref := newActorRef(s, qualified, behavior, newSpawnConfig(opts...))
	if !s.actors.SetIfAbsent(qualified, ref) {
		return fmt.Errorf("%w: %s", errors.ErrDuplicateActor, qualified)
	}
	s.wg.Add(1)
	go ref.run()

	born := message.NewInternal(message.NameBorn, s.daemonRecipient())
	born.SetSender(qualified)
	s.global.Push(born)
	return nil
}

// Send routes a message to its recipient, local or not. An unqualified
// recipient name is taken to be in the system domain. Messages with no
// sender are attributed to "external".
func (s *System) Send(msg *message.Message) error {
	if msg == nil || msg.Name() == "" || msg.Recipient() == "" {
		return errors.ErrInvalidMessage
	}

	s.mu.Lock()
	started, stopping, domain := s.started, s.stopping, s.domain
	s.mu.Unlock()
	if !started {
		return errors.ErrSystemNotStarted
	}
	if stopping && !msg.IsInternal() {
		return errors.ErrSystemStopping
	}

	if msg.Sender() == "" {
		msg.SetSender(message.WithDomain(ExternalName, domain))
	} else {
		msg.SetSender(message.WithDomain(msg.Sender(), domain))
	}
	msg.SetRecipient(message.WithDomain(msg.Recipient(), domain))
	s.route(msg)
	return nil
}

// route delivers locally when the recipient lives in this process, and
// hands everything else to the master for forwarding to the daemon.
func (s *System) route(msg *message.Message) {
	if ref, ok := s.actors.Get(msg.Recipient()); ok {
		s.deliverLocal(ref, msg)
		return
	}
	s.global.Push(msg)
}

// deliverLocal enqueues the message and, when that pushes the recipient
// queue over its threshold, asks the sender to pause.
func (s *System) deliverLocal(ref *actorRef, msg *message.Message) {
	ref.queue.Push(msg)
	if !s.shouldPauseSender(msg, ref) {
		return
	}
	xoff := message.NewInternal(message.NameXoff, msg.Sender())
	xoff.SetSender(ref.name)
	xoff.AddString("origin", ref.name)
	s.route(xoff)
}

// shouldPauseSender decides whether delivering msg warrants pausing its
// sender. The exemption policy is pluggable via WithPauseExemption.
func (s *System) shouldPauseSender(msg *message.Message, ref *actorRef) bool {
	if s.pauseExempt(msg) {
		return false
	}
	return ref.queue.IsOverHighThreshold()
}

// defaultPauseExemption exempts internal and multicast traffic as well as
// senders that do not manage a queue of their own.
func defaultPauseExemption(msg *message.Message) bool {
	if msg.IsInternal() || msg.IsMulticast() {
		return true
	}
	if msg.Flags()&message.FlagOutOfOrderOK != 0 {
		return true
	}
	base := msg.Sender()
	if at := strings.IndexByte(base, '@'); at >= 0 {
		base = base[:at]
	}
	return base == "" || base == DaemonName || base == ExternalName || base == masterName
}

// Wait blocks until every actor of the system has terminated, ctx expires,
// or Cancel is called.
func (s *System) Wait(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.cond.Broadcast()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.actors.Len() > 0 && !s.cancelled && ctx.Err() == nil {
		s.cond.Wait()
	}
	if s.cancelled {
		s.cancelled = false
		return nil
	}
	return ctx.Err()
}

// Cancel unblocks a pending Wait without terminating any actor.
func (s *System) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Shutdown terminates every actor, tells the daemon the process is gone and
// releases the daemon connection.
func (s *System) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.stopping = true
	s.mu.Unlock()

	s.actors.Range(func(_ string, ref *actorRef) {
		terminate := message.NewInternal(message.NameTerminate, ref.name)
		terminate.SetSender(message.WithDomain(masterName, s.Domain()))
		ref.queue.Push(terminate)
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	farewell := message.NewInternal(message.NameMasterTerminated, s.daemonRecipient())
	farewell.SetSender(message.WithDomain(masterName, s.Domain()))
	if data, encErr := farewell.Encode(); encErr == nil {
		_ = s.sockets.Send(s.daemonID, data)
	}

	_ = s.sockets.Close()
	<-s.masterDone

	s.mu.Lock()
	s.started = false
	s.stopping = false
	s.mu.Unlock()
	return err
}

// actorDied finalises a terminated actor: it is withdrawn from the local
// registry and its death is announced to the daemon.
func (s *System) actorDied(ref *actorRef) {
	s.actors.Delete(ref.name)

	died := message.NewInternal(message.NameDied, s.daemonRecipient())
	died.SetSender(ref.name)
	s.global.Push(died)

	s.wg.Done()
	s.cond.Broadcast()
}

func (s *System) daemonRecipient() string {
	return message.WithDomain(DaemonName, s.Domain())
}
