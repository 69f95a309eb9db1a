package errors

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CapturesStack(t *testing.T) {
	err := New(ErrorTypeInternal, "boom")
	require.NotEmpty(t, err.Stack)
	assert.Contains(t, err.Stack[0].Function, "TestNew_CapturesStack")
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "nothing"))
}

func TestWrap_PreservesStack(t *testing.T) {
	inner := NewShapeMismatch("Schemas", "list")
	outer := Wrap(inner, ErrorTypeParse, "decode")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, IsType(outer, ErrorTypeParse))
	assert.ErrorIs(t, outer, inner)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		typ  ErrorType
		key  string
		val  string
	}{
		{"parse", NewParseError("top-level document must be a sequence", nil), ErrorTypeParse, "", ""},
		{"shape", NewShapeMismatch("Placeholders", "map"), ErrorTypeShapeMismatch, DetailKey, "Placeholders"},
		{"key", NewExpectedKeyNotFound("MigrationDefinitions"), ErrorTypeKeyNotFound, DetailKey, "MigrationDefinitions"},
		{"file", NewFileNotFound("/tmp/x.yml", fs.ErrNotExist), ErrorTypeFileNotFound, DetailPath, "/tmp/x.yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			if tt.key != "" {
				assert.Equal(t, tt.val, tt.err.Detail(tt.key))
			}
		})
	}
}

func TestDetail_NonString(t *testing.T) {
	err := New(ErrorTypeValidation, "bad").WithDetail("n", 3)
	assert.Equal(t, "3", err.Detail("n"))
	assert.Equal(t, "", err.Detail("missing"))
}
