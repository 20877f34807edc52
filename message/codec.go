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

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/skal-io/skal/alarm"
	"github.com/skal-io/skal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// wireField is the self-describing wire form of a Field: a name, a type tag
// and exactly one value.
type wireField struct {
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	Int   *int64   `json:"int,omitempty"`
	Float *float64 `json:"float,omitempty"`
	Str   *string  `json:"string,omitempty"`
	Bytes []byte   `json:"bytes,omitempty"`
}

type wireMessage struct {
	Version   int            `json:"version"`
	Name      string         `json:"name"`
	Sender    string         `json:"sender"`
	Recipient string         `json:"recipient"`
	TTL       int            `json:"ttl"`
	Flags     uint8          `json:"flags"`
	IFlags    uint8          `json:"iflags,omitempty"`
	Marker    string         `json:"marker,omitempty"`
	Fields    []wireField    `json:"fields,omitempty"`
	Alarms    []*alarm.Alarm `json:"alarms,omitempty"`
}

// Encode serializes the message into its wire form: a JSON document
// terminated by a null byte, sent whole over a byte-stream or datagram
// socket.
func (m *Message) Encode() ([]byte, error) {
	wire := wireMessage{
		Version:   m.version,
		Name:      m.name,
		Sender:    m.sender,
		Recipient: m.recipient,
		TTL:       m.ttl,
		Flags:     uint8(m.flags),
		IFlags:    uint8(m.iflags),
		Marker:    m.marker,
		Alarms:    m.alarms,
	}
	for i := range m.fields {
		f := &m.fields[i]
		wf := wireField{Name: f.Name, Type: string(f.Kind)}
		switch f.Kind {
		case FieldInt:
			wf.Int = &f.Int
		case FieldFloat:
			wf.Float = &f.Float
		case FieldString:
			wf.Str = &f.Str
		case FieldBytes:
			wf.Bytes = f.Bytes
		default:
			panic(fmt.Sprintf("unknown field kind %q", f.Kind))
		}
		wire.Fields = append(wire.Fields, wf)
	}

	encoded, err := json.Marshal(&wire)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	return append(encoded, 0), nil
}

// Decode parses a wire message. Everything from the first null byte on is
// ignored, whether or not the payload carries its terminator.
func Decode(data []byte) (*Message, error) {
	if idx := bytes.IndexByte(data, 0); idx >= 0 {
		data = data[:idx]
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", errors.ErrInvalidMessage)
	}

	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	if wire.Version != Version {
		return nil, fmt.Errorf("%w: version %d, want %d",
			errors.ErrInvalidMessage, wire.Version, Version)
	}
	for _, req := range [...]struct{ name, value string }{
		{"name", wire.Name},
		{"sender", wire.Sender},
		{"recipient", wire.Recipient},
	} {
		if req.value == "" {
			return nil, fmt.Errorf("%w: %q", errors.ErrMissingField, req.name)
		}
	}
	if wire.TTL <= 0 {
		return nil, fmt.Errorf("%w: %q", errors.ErrMissingField, "ttl")
	}

	msg := &Message{
		version:   wire.Version,
		name:      wire.Name,
		sender:    wire.Sender,
		recipient: wire.Recipient,
		flags:     Flag(wire.Flags),
		iflags:    IFlag(wire.IFlags),
		ttl:       wire.TTL,
		marker:    wire.Marker,
		alarms:    wire.Alarms,
	}
	for _, wf := range wire.Fields {
		f := Field{Name: wf.Name, Kind: FieldKind(wf.Type)}
		switch f.Kind {
		case FieldInt:
			if wf.Int == nil {
				return nil, fmt.Errorf("%w: field %q has no value", errors.ErrInvalidMessage, wf.Name)
			}
			f.Int = *wf.Int
		case FieldFloat:
			if wf.Float == nil {
				return nil, fmt.Errorf("%w: field %q has no value", errors.ErrInvalidMessage, wf.Name)
			}
			f.Float = *wf.Float
		case FieldString:
			if wf.Str == nil {
				return nil, fmt.Errorf("%w: field %q has no value", errors.ErrInvalidMessage, wf.Name)
			}
			f.Str = *wf.Str
		case FieldBytes:
			f.Bytes = wf.Bytes
		default:
			return nil, fmt.Errorf("%w: field %q has unknown type %q",
				errors.ErrInvalidMessage, wf.Name, wf.Type)
		}
		msg.fields = append(msg.fields, f)
	}
	return msg, nil
}
