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
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/skal-io/skal/address"
	"github.com/skal-io/skal/alarm"
	"github.com/skal-io/skal/errors"
	"github.com/skal-io/skal/log"
	"github.com/skal-io/skal/message"
	"github.com/skal-io/skal/socket"
)

// DefaultDomain is the domain assigned to processes when none is configured.
const DefaultDomain = "local"

// connKind tells what kind of peer sits behind a connection. A connection
// starts undetermined; its first handshake message settles the kind.
type connKind int

const (
	connUndetermined connKind = iota
	connProcess
)

// conn is one connection of the daemon, normally the master of a process of
// the domain.
type conn struct {
	kind   connKind
	sockID int
	framer *message.Framer
	// names lists the actors registered through this connection, so they can
	// be withdrawn together when the process goes away.
	names map[string]struct{}
}

// Skald is the router daemon. It routes messages between the processes of
// its domain, fans multicast groups out, keeps the domain alarm registry and
// answers flow-control queries on behalf of dead actors.
type Skald struct {
	domain   string
	localURL string
	bufsize  int
	logger   log.Logger

	name string

	sockets  *socket.Set
	serverID int

	// Owned by the run goroutine.
	conns    map[int]*conn
	registry map[string]int
	groups   map[string]*group

	alarms *alarm.Registry

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// Option configures the daemon.
type Option interface {
	Apply(*Skald)
}

type optionFunc func(*Skald)

func (f optionFunc) Apply(d *Skald) { f(d) }

// WithDomain sets the domain this daemon routes for.
func WithDomain(domain string) Option {
	return optionFunc(func(d *Skald) {
		if domain != "" {
			d.domain = domain
		}
	})
}

// WithLocalURL sets the URL the daemon listens on for the processes of its
// domain.
func WithLocalURL(rawURL string) Option {
	return optionFunc(func(d *Skald) {
		if rawURL != "" {
			d.localURL = rawURL
		}
	})
}

// WithBufferSize sets the kernel buffer size of the listening socket.
func WithBufferSize(bufsize int) Option {
	return optionFunc(func(d *Skald) {
		d.bufsize = bufsize
	})
}

// WithLogger sets the logger of the daemon.
func WithLogger(logger log.Logger) Option {
	return optionFunc(func(d *Skald) {
		d.logger = logger
	})
}

// New creates a daemon.
func New(opts ...Option) *Skald {
	d := &Skald{
		domain:   DefaultDomain,
		localURL: address.DefaultDaemonURL,
		logger:   log.DefaultLogger,
		conns:    make(map[int]*conn),
		registry: make(map[string]int),
		groups:   make(map[string]*group),
		alarms:   alarm.NewRegistry(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt.Apply(d)
	}
	d.name = message.WithDomain(DaemonName, d.domain)
	return d
}

// DaemonName is the unqualified name the daemon registers under.
const DaemonName = "skald"

// Domain returns the domain this daemon routes for.
func (d *Skald) Domain() string { return d.domain }

// Alarms returns the domain alarm registry.
func (d *Skald) Alarms() *alarm.Registry { return d.alarms }

// Start begins listening and routing. It returns once the listening socket
// is bound.
func (d *Skald) Start(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return nil
	}

	addr, err := address.Parse(d.localURL)
	if err != nil {
		return err
	}
	if addr.IsPipe() || addr.Connectionless() {
		return fmt.Errorf("%w: daemon cannot listen on %s", errors.ErrInvalidAddress, addr)
	}

	d.sockets = socket.NewSet(socket.WithLogger(d.logger))
	d.serverID, err = d.sockets.CreateServer(addr, d.bufsize, nil, 0)
	if err != nil {
		_ = d.sockets.Close()
		return err
	}

	go d.run()
	d.started = true
	d.logger.Infof("skald listening on %s, domain %q", addr, d.domain)
	return nil
}

// Stop closes the daemon and waits for the routing loop to exit.
func (d *Skald) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return nil
	}
	d.started = false
	d.mu.Unlock()

	_ = d.sockets.Close()
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the routing loop. All daemon state except the alarm registry is
// owned by this goroutine.
func (d *Skald) run() {
	defer close(d.done)
	for {
		ev := d.sockets.Poll()
		if ev == nil {
			return
		}
		switch ev.Type {
		case socket.EventConnect:
			d.conns[ev.ConnID] = &conn{
				sockID: ev.ConnID,
				framer: &message.Framer{},
				names:  make(map[string]struct{}),
			}

		case socket.EventDataIn:
			c, ok := d.conns[ev.SockID]
			if !ok {
				continue
			}
			for _, frame := range c.framer.Push(ev.Data) {
				msg, err := message.Decode(frame)
				if err != nil {
					d.logger.Warnf("discarding undecodable frame from socket %d: %v", ev.SockID, err)
					name := alarmProtocolFault
					if stderrors.Is(err, errors.ErrMissingField) {
						name = alarmMissingField
					}
					d.alarms.Process(alarm.New(name, alarm.SeverityWarning, true, true,
						"undecodable frame on socket %d: %v", ev.SockID, err))
					continue
				}
				d.handle(c, msg)
			}

		case socket.EventDisconnect, socket.EventError:
			if ev.SockID == d.serverID {
				d.logger.Errorf("listening socket failed (%s), daemon stopping", ev.Type)
				return
			}
			d.dropConn(ev.SockID)
		}
	}
}

// dropConn withdraws a gone process: its actors are unregistered and their
// group subscriptions cancelled.
func (d *Skald) dropConn(sockID int) {
	c, ok := d.conns[sockID]
	if !ok {
		return
	}
	for name := range c.names {
		d.unregister(name)
	}
	delete(d.conns, sockID)
	_ = d.sockets.Destroy(sockID)
	d.logger.Infof("process on socket %d gone, %d actors withdrawn", sockID, len(c.names))
}

func (d *Skald) unregister(name string) {
	delete(d.registry, name)
	for gname, g := range d.groups {
		if g.remove(name) && g.empty() {
			delete(d.groups, gname)
		}
	}
}
