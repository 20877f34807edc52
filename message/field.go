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

// FieldKind is the type tag of a message field.
type FieldKind string

const (
	// FieldInt is a signed 64-bit integer field.
	FieldInt FieldKind = "int"
	// FieldFloat is a 64-bit floating point field.
	FieldFloat FieldKind = "float"
	// FieldString is a text field.
	FieldString FieldKind = "string"
	// FieldBytes is a binary field, carried base64-encoded on the wire.
	FieldBytes FieldKind = "bytes"
)

// Field is one named typed value. Fields keep their insertion order.
type Field struct {
	Name  string
	Kind  FieldKind
	Int   int64
	Float float64
	Str   string
	Bytes []byte
}

func (m *Message) upsertField(f Field) {
	for i := range m.fields {
		if m.fields[i].Name == f.Name {
			m.fields[i] = f
			return
		}
	}
	m.fields = append(m.fields, f)
}

// AddInt64 adds an integer field, replacing any field with the same name.
func (m *Message) AddInt64(name string, value int64) {
	m.upsertField(Field{Name: name, Kind: FieldInt, Int: value})
}

// AddFloat64 adds a floating point field, replacing any field with the same
// name.
func (m *Message) AddFloat64(name string, value float64) {
	m.upsertField(Field{Name: name, Kind: FieldFloat, Float: value})
}

// AddString adds a text field, replacing any field with the same name.
func (m *Message) AddString(name, value string) {
	m.upsertField(Field{Name: name, Kind: FieldString, Str: value})
}

// AddBytes adds a binary field, replacing any field with the same name.
func (m *Message) AddBytes(name string, value []byte) {
	m.upsertField(Field{Name: name, Kind: FieldBytes, Bytes: value})
}

// HasField reports whether the message carries a field with the given name.
func (m *Message) HasField(name string) bool {
	for i := range m.fields {
		if m.fields[i].Name == name {
			return true
		}
	}
	return false
}

func (m *Message) field(name string, kind FieldKind) (*Field, bool) {
	for i := range m.fields {
		if m.fields[i].Name == name && m.fields[i].Kind == kind {
			return &m.fields[i], true
		}
	}
	return nil, false
}

// GetInt64 returns the integer field with the given name.
func (m *Message) GetInt64(name string) (int64, bool) {
	f, ok := m.field(name, FieldInt)
	if !ok {
		return 0, false
	}
	return f.Int, true
}

// GetFloat64 returns the floating point field with the given name.
func (m *Message) GetFloat64(name string) (float64, bool) {
	f, ok := m.field(name, FieldFloat)
	if !ok {
		return 0, false
	}
	return f.Float, true
}

// GetString returns the text field with the given name.
func (m *Message) GetString(name string) (string, bool) {
	f, ok := m.field(name, FieldString)
	if !ok {
		return "", false
	}
	return f.Str, true
}

// GetBytes returns the binary field with the given name.
func (m *Message) GetBytes(name string) ([]byte, bool) {
	f, ok := m.field(name, FieldBytes)
	if !ok {
		return nil, false
	}
	return f.Bytes, true
}

// Fields returns the message fields in insertion order.
func (m *Message) Fields() []Field { return m.fields }
