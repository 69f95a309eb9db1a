package json

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func TestArrayEncoder_Compact(t *testing.T) {
	var buf bytes.Buffer
	enc := NewArrayEncoder(&buf, "")
	require.NoError(t, enc.Encode(item{"a", 1}))
	require.NoError(t, enc.Encode(item{"b", 2}))
	require.NoError(t, enc.Close())

	assert.Equal(t, `[{"name":"a","n":1},{"name":"b","n":2}]`+"\n", buf.String())
	assert.Equal(t, 2, enc.Count())

	var back []item
	require.NoError(t, Unmarshal(bytes.TrimSpace(buf.Bytes()), &back))
	assert.Equal(t, []item{{"a", 1}, {"b", 2}}, back)
}

func TestArrayEncoder_Indented(t *testing.T) {
	var buf bytes.Buffer
	enc := NewArrayEncoder(&buf, "  ")
	require.NoError(t, enc.Encode(item{"a", 1}))
	require.NoError(t, enc.Close())

	want := "[\n  {\n    \"name\": \"a\",\n    \"n\": 1\n  }\n]\n"
	assert.Equal(t, want, buf.String())
}

func TestArrayEncoder_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewArrayEncoder(&buf, "  ").Close())
	assert.Equal(t, "[]\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestArrayEncoder_WriteError(t *testing.T) {
	enc := NewArrayEncoder(failingWriter{}, "")
	assert.EqualError(t, enc.Encode(item{"a", 1}), "disk full")
	assert.EqualError(t, enc.Close(), "disk full")
	assert.Equal(t, 0, enc.Count())
}

func TestBufferPool(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("stale")
	PutBuffer(buf)

	assert.Equal(t, 0, GetBuffer().Len())
}

func BenchmarkArrayEncoder(b *testing.B) {
	var buf bytes.Buffer
	for i := 0; i < b.N; i++ {
		buf.Reset()
		enc := NewArrayEncoder(&buf, "")
		for j := 0; j < 100; j++ {
			_ = enc.Encode(item{"leaf", j})
		}
		_ = enc.Close()
	}
}
