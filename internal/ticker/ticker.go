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

// Package ticker provides a stoppable time ticker that drops ticks when the
// receiver is slow instead of backing up.
package ticker

import (
	"sync"
	"time"
)

// Ticker delivers ticks at intervals on its Ticks channel. A tick that finds
// no ready receiver is dropped.
type Ticker struct {
	Ticks    chan time.Time
	interval time.Duration
	mu       sync.Mutex
	ticking  bool
	stopCh   chan struct{}
}

// New creates a Ticker that ticks every interval once started.
func New(interval time.Duration) *Ticker {
	if interval <= 0 {
		panic("ticker interval must be greater than zero")
	}
	return &Ticker{
		Ticks:    make(chan time.Time),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start starts the ticker. Ticks are delivered on the Ticks channel until
// Stop is called.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ticking {
		go t.loop()
		t.ticking = true
	}
}

// Stop stops the ticker. No tick is delivered after Stop returns and before
// Start is called again.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticking {
		t.ticking = false
		t.stopCh <- struct{}{}
	}
}

// Ticking reports whether the ticker is running.
func (t *Ticker) Ticking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticking
}

func (t *Ticker) loop() {
	ticker := time.NewTicker(t.interval)
	for {
		select {
		case tick := <-ticker.C:
			select {
			case t.Ticks <- tick:
			default:
			}
		case <-t.stopCh:
			ticker.Stop()
			return
		}
	}
}
