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
	"time"

	"github.com/skal-io/skal/log"
	"github.com/skal-io/skal/message"
)

// Option configures a System.
type Option interface {
	Apply(*System)
}

type optionFunc func(*System)

func (f optionFunc) Apply(s *System) { f(s) }

// WithLogger sets the logger of the system.
func WithLogger(logger log.Logger) Option {
	return optionFunc(func(s *System) {
		s.logger = logger
	})
}

// WithDaemonURL sets the URL of the local router daemon. The default is
// address.DefaultDaemonURL.
func WithDaemonURL(rawURL string) Option {
	return optionFunc(func(s *System) {
		s.daemonURL = rawURL
	})
}

// WithBufferSize sets the kernel buffer size of the daemon connection.
func WithBufferSize(bufsize int) Option {
	return optionFunc(func(s *System) {
		s.bufsize = bufsize
	})
}

// WithPauseExemption replaces the predicate deciding which deliveries may
// never pause their sender. The default exempts internal, multicast and
// out-of-order-tolerant messages as well as messages sent by the daemon,
// the master or an external process.
func WithPauseExemption(exempt func(*message.Message) bool) Option {
	return optionFunc(func(s *System) {
		s.pauseExempt = exempt
	})
}

// SpawnOption configures a single actor.
type SpawnOption interface {
	apply(*spawnConfig)
}

type spawnOptionFunc func(*spawnConfig)

func (f spawnOptionFunc) apply(cfg *spawnConfig) { f(cfg) }

type spawnConfig struct {
	queueThreshold int64
	xoffTimeout    time.Duration
}

func newSpawnConfig(opts ...SpawnOption) *spawnConfig {
	cfg := &spawnConfig{
		queueThreshold: DefaultQueueThreshold,
		xoffTimeout:    DefaultXoffTimeout,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return cfg
}

// WithQueueThreshold sets the queue size above which senders to this actor
// are asked to pause.
func WithQueueThreshold(threshold int64) SpawnOption {
	return spawnOptionFunc(func(cfg *spawnConfig) {
		if threshold > 0 {
			cfg.queueThreshold = threshold
		}
	})
}

// WithXoffTimeout sets how long this actor stays paused without news from
// the blocking peer before asking again.
func WithXoffTimeout(timeout time.Duration) SpawnOption {
	return spawnOptionFunc(func(cfg *spawnConfig) {
		if timeout > 0 {
			cfg.xoffTimeout = timeout
		}
	})
}
