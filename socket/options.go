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

package socket

import (
	"time"

	"github.com/skal-io/skal/log"
)

// Option configures a socket set.
type Option interface {
	Apply(*Set)
}

type optionFunc func(*Set)

func (f optionFunc) Apply(s *Set) { f(s) }

// WithPollTimeout bounds a single poll pass. A shorter timeout detects idle
// connectionless peers sooner at the cost of more wakeups.
func WithPollTimeout(timeout time.Duration) Option {
	return optionFunc(func(s *Set) {
		if timeout > 0 {
			s.pollTimeout = timeout
		}
	})
}

// WithContextReleaser registers a function called on the private context of a
// socket when the socket is destroyed.
func WithContextReleaser(release func(ctx any)) Option {
	return optionFunc(func(s *Set) {
		s.ctxRelease = release
	})
}

// WithLogger sets the logger of the set.
func WithLogger(logger log.Logger) Option {
	return optionFunc(func(s *Set) {
		s.logger = logger
	})
}
