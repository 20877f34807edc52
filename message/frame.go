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

package message

import "bytes"

// Framer reassembles NUL-terminated frames out of a byte stream. Packet
// transports deliver one frame per read, but stream transports may deliver
// several frames, or a fraction of one, in a single read.
type Framer struct {
	buf []byte
}

// Push appends data to the reassembly buffer and returns the complete frames
// now available, without their NUL terminators.
func (f *Framer) Push(data []byte) [][]byte {
	f.buf = append(f.buf, data...)
	var frames [][]byte
	for {
		idx := bytes.IndexByte(f.buf, 0)
		if idx < 0 {
			return frames
		}
		if idx > 0 {
			frame := make([]byte, idx)
			copy(frame, f.buf[:idx])
			frames = append(frames, frame)
		}
		f.buf = f.buf[idx+1:]
	}
}

// Pending returns the number of buffered bytes not yet forming a complete
// frame.
func (f *Framer) Pending() int {
	return len(f.buf)
}
