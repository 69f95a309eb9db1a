// Package json provides JSON serialization on goccy/go-json with pooled
// buffers.
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 1024*1024 { // Don't pool very large buffers
		return
	}
	bufferPool.Put(buf)
}

// Marshal is a drop-in replacement for encoding/json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for encoding/json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a drop-in replacement for encoding/json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// ArrayEncoder writes values one at a time as the elements of a single
// JSON array. Nothing is written until the first Encode or Close.
type ArrayEncoder struct {
	w      io.Writer
	indent string
	count  int
	err    error
}

// NewArrayEncoder creates an encoder writing to w. A non-empty indent
// pretty-prints each element on its own lines.
func NewArrayEncoder(w io.Writer, indent string) *ArrayEncoder {
	return &ArrayEncoder{w: w, indent: indent}
}

// Encode appends v to the array.
func (e *ArrayEncoder) Encode(v interface{}) error {
	if e.err != nil {
		return e.err
	}

	buf := GetBuffer()
	defer PutBuffer(buf)

	if e.count == 0 {
		buf.WriteByte('[')
	} else {
		buf.WriteByte(',')
	}

	var (
		data []byte
		err  error
	)
	if e.indent != "" {
		buf.WriteByte('\n')
		buf.WriteString(e.indent)
		data, err = gojson.MarshalIndent(v, e.indent, e.indent)
	} else {
		data, err = gojson.Marshal(v)
	}
	if err != nil {
		e.err = err
		return err
	}
	buf.Write(data)

	if _, err := e.w.Write(buf.Bytes()); err != nil {
		e.err = err
		return err
	}
	e.count++
	return nil
}

// Close terminates the array and a trailing newline. An encoder that
// encoded nothing writes "[]".
func (e *ArrayEncoder) Close() error {
	if e.err != nil {
		return e.err
	}

	var tail string
	switch {
	case e.count == 0:
		tail = "[]\n"
	case e.indent != "":
		tail = "\n]\n"
	default:
		tail = "]\n"
	}
	_, err := io.WriteString(e.w, tail)
	return err
}

// Count returns how many values were encoded.
func (e *ArrayEncoder) Count() int {
	return e.count
}
