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

// Package alarm implements operator-visible conditions. An alarm is raised or
// cleared idempotently and is keyed by its (origin, name) pair. The running
// alarm registry, not log output, is the primary failure-observation channel.
package alarm

import (
	"fmt"
	"time"
)

// Severity qualifies how serious an alarm condition is.
type Severity int

const (
	// SeverityNotice is for conditions that are informational only.
	SeverityNotice Severity = iota
	// SeverityWarning is for conditions that deserve operator attention.
	SeverityWarning
	// SeverityError is for conditions that indicate a malfunction.
	SeverityError
)

var severityNames = map[Severity]string{
	SeverityNotice:  "notice",
	SeverityWarning: "warning",
	SeverityError:   "error",
}

// String returns the text representation of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity parses the text representation of a severity.
func ParseSeverity(text string) (Severity, error) {
	for sev, name := range severityNames {
		if name == text {
			return sev, nil
		}
	}
	return SeverityNotice, fmt.Errorf("unknown alarm severity %q", text)
}

// Alarm is one operator-visible condition.
type Alarm struct {
	// Name identifies the condition, eg "skal-drop-no-recipient".
	Name string `json:"name"`
	// Severity qualifies the condition.
	Severity Severity `json:"severity"`
	// Origin names who raised the alarm; may be empty.
	Origin string `json:"origin,omitempty"`
	// On tells whether the alarm is being raised (true) or cleared (false).
	On bool `json:"on"`
	// AutoOff tells whether the condition clears itself without operator
	// intervention.
	AutoOff bool `json:"auto-off"`
	// Timestamp records when the condition was observed.
	Timestamp time.Time `json:"timestamp"`
	// Comment is a free-text description for the operator.
	Comment string `json:"comment,omitempty"`
}

// New creates an alarm observed now.
func New(name string, severity Severity, on, autoOff bool, format string, args ...any) *Alarm {
	return &Alarm{
		Name:      name,
		Severity:  severity,
		On:        on,
		AutoOff:   autoOff,
		Timestamp: time.Now(),
		Comment:   fmt.Sprintf(format, args...),
	}
}

// Key returns the registry key of the alarm. Two alarms with the same origin
// and name refer to the same condition.
func (a *Alarm) Key() string {
	return a.Origin + "#" + a.Name
}
