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

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestInfo(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := New(InfoLevel, buf)
	logger.Info("routing started")

	entry := parseEntry(t, buf)
	assert.Equal(t, "routing started", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, InfoLevel, logger.LogLevel())
}

func TestInfof(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := New(InfoLevel, buf)
	logger.Infof("actor %s born", "worker@local")

	entry := parseEntry(t, buf)
	assert.Equal(t, "actor worker@local born", entry["msg"])
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := New(InfoLevel, buf)
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())
}

func TestDebugAtDebugLevel(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := New(DebugLevel, buf)
	logger.Debug("visible")

	entry := parseEntry(t, buf)
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
}

func TestWarnAndError(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := New(WarningLevel, buf)
	logger.Warn("queue filling up")
	entry := parseEntry(t, buf)
	assert.Equal(t, "warn", entry["level"])

	buf.Reset()
	logger.Error("daemon lost")
	entry = parseEntry(t, buf)
	assert.Equal(t, "error", entry["level"])
}

func TestPanic(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := New(PanicLevel, buf)
	assert.Panics(t, func() { logger.Panic("unrecoverable") })
}

func TestMultipleWriters(t *testing.T) {
	first := new(bytes.Buffer)
	second := new(bytes.Buffer)
	logger := New(InfoLevel, first, second)
	logger.Info("fan out")

	assert.NotZero(t, first.Len())
	assert.Equal(t, first.String(), second.String())
	assert.Len(t, logger.LogOutput(), 2)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "", InvalidLevel.String())
	assert.Equal(t, "", Level(99).String())
}

func TestDiscardLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		DiscardLogger.Info("nowhere")
		DiscardLogger.Debugf("nowhere %d", 1)
	})
	assert.Panics(t, func() { DiscardLogger.Panic("boom") })
}
