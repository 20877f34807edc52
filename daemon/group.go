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
	"fmt"
	"regexp"
	"strings"
)

// subscriber is one member of a multicast group, with its message name
// filter. An empty filter matches everything; a filter starting with "~" is
// a regular expression; anything else is a verbatim prefix.
type subscriber struct {
	name   string
	filter string
	re     *regexp.Regexp
}

func newSubscriber(name, filter string) (*subscriber, error) {
	sub := &subscriber{name: name, filter: filter}
	if strings.HasPrefix(filter, "~") {
		re, err := regexp.Compile(strings.TrimPrefix(filter, "~"))
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q for %s: %w", filter, name, err)
		}
		sub.re = re
	}
	return sub, nil
}

// matches reports whether a message with the given name should be forwarded
// to this subscriber.
func (s *subscriber) matches(msgName string) bool {
	switch {
	case s.filter == "":
		return true
	case s.re != nil:
		return s.re.MatchString(msgName)
	default:
		return strings.HasPrefix(msgName, s.filter)
	}
}

// group is a multicast group. Subscribers are kept in subscription order;
// re-subscribing updates the filter in place.
type group struct {
	name string
	subs []*subscriber
}

func newGroup(name string) *group {
	return &group{name: name}
}

func (g *group) add(sub *subscriber) {
	for i, existing := range g.subs {
		if existing.name == sub.name {
			g.subs[i] = sub
			return
		}
	}
	g.subs = append(g.subs, sub)
}

// remove drops a subscriber and reports whether it was a member.
func (g *group) remove(name string) bool {
	for i, sub := range g.subs {
		if sub.name == name {
			g.subs = append(g.subs[:i], g.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (g *group) empty() bool {
	return len(g.subs) == 0
}
