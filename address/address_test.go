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

package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skal-io/skal/errors"
)

func TestParse(t *testing.T) {
	t.Run("Unix seqpacket", func(t *testing.T) {
		addr, err := Parse("unix:///tmp/skald.sock")
		require.NoError(t, err)
		assert.Equal(t, UnixSeqPacket, addr.Scheme())
		assert.Equal(t, "/tmp/skald.sock", addr.Path())
		assert.True(t, addr.IsUnix())
		assert.True(t, addr.PacketBased())
		assert.False(t, addr.Connectionless())
		assert.Equal(t, "unix:///tmp/skald.sock", addr.String())
	})

	t.Run("Unix stream", func(t *testing.T) {
		addr, err := Parse("unixs:///run/app.sock")
		require.NoError(t, err)
		assert.Equal(t, UnixStream, addr.Scheme())
		assert.False(t, addr.PacketBased())
		assert.False(t, addr.Connectionless())
	})

	t.Run("Unix datagram", func(t *testing.T) {
		addr, err := Parse("unixd:///run/app.sock")
		require.NoError(t, err)
		assert.Equal(t, UnixDgram, addr.Scheme())
		assert.True(t, addr.Connectionless())
		assert.True(t, addr.PacketBased())
	})

	t.Run("TCP", func(t *testing.T) {
		addr, err := Parse("tcp://127.0.0.1:7000")
		require.NoError(t, err)
		assert.Equal(t, TCP, addr.Scheme())
		assert.Equal(t, "127.0.0.1", addr.Host())
		assert.Equal(t, 7000, addr.Port())
		assert.Equal(t, "127.0.0.1:7000", addr.HostPort())
		assert.False(t, addr.IsUnix())
		assert.Equal(t, "tcp://127.0.0.1:7000", addr.String())
	})

	t.Run("UDP", func(t *testing.T) {
		addr, err := Parse("udp://0.0.0.0:9000")
		require.NoError(t, err)
		assert.Equal(t, UDP, addr.Scheme())
		assert.True(t, addr.Connectionless())
		assert.True(t, addr.PacketBased())
	})

	t.Run("Pipe", func(t *testing.T) {
		addr, err := Parse("pipe://")
		require.NoError(t, err)
		assert.True(t, addr.IsPipe())
		assert.Equal(t, "pipe://", addr.String())
	})

	t.Run("Default daemon URL parses", func(t *testing.T) {
		addr, err := Parse(DefaultDaemonURL)
		require.NoError(t, err)
		assert.Equal(t, UnixSeqPacket, addr.Scheme())
	})

	t.Run("Invalid", func(t *testing.T) {
		for name, raw := range map[string]string{
			"no scheme":        "/tmp/skald.sock",
			"unknown scheme":   "ftp://host:1",
			"pipe with path":   "pipe:///tmp/x",
			"unix no path":     "unix://",
			"tcp no port":      "tcp://127.0.0.1",
			"tcp bad port":     "tcp://127.0.0.1:notaport",
			"tcp port too big": "tcp://127.0.0.1:70000",
		} {
			t.Run(name, func(t *testing.T) {
				_, err := Parse(raw)
				assert.ErrorIs(t, err, errors.ErrInvalidAddress)
			})
		}
	})
}

func TestMustParse(t *testing.T) {
	assert.NotPanics(t, func() { MustParse("pipe://") })
	assert.Panics(t, func() { MustParse("nonsense") })
}
