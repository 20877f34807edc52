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

package alarm

import "sync"

// Registry holds the alarms currently active. An "on" alarm replaces any
// existing entry for the same (origin, name) key; an "off" alarm removes it.
// Both operations are idempotent under repeated delivery.
type Registry struct {
	mu     sync.Mutex
	active map[string]*Alarm
}

// NewRegistry creates an empty alarm registry.
func NewRegistry() *Registry {
	return &Registry{
		active: make(map[string]*Alarm),
	}
}

// Process inserts or removes the alarm depending on whether it is on or off.
func (r *Registry) Process(a *Alarm) {
	r.mu.Lock()
	if a.On {
		r.active[a.Key()] = a
	} else {
		delete(r.active, a.Key())
	}
	r.mu.Unlock()
}

// Get returns the active alarm for the given origin and name, if any.
func (r *Registry) Get(origin, name string) (*Alarm, bool) {
	r.mu.Lock()
	a, ok := r.active[origin+"#"+name]
	r.mu.Unlock()
	return a, ok
}

// Active returns a snapshot of the currently active alarms.
func (r *Registry) Active() []*Alarm {
	r.mu.Lock()
	out := make([]*Alarm, 0, len(r.active))
	for _, a := range r.active {
		out = append(out, a)
	}
	r.mu.Unlock()
	return out
}

// Len returns the number of currently active alarms.
func (r *Registry) Len() int {
	r.mu.Lock()
	n := len(r.active)
	r.mu.Unlock()
	return n
}
