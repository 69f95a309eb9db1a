package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/errors"
)

func TestParse_Sequence(t *testing.T) {
	text := `
- MigrationDefinitions:
    Dbms: PostgreSQL
    Locations: [a, b]
    Encoding: ~
- plain
`
	values, err := Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, values, 2)

	entry, ok := values[0].AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"MigrationDefinitions"}, entry.Keys())

	defs, found, err := entry.Map("MigrationDefinitions")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"Dbms", "Locations", "Encoding"}, defs.Keys())

	dbms, found, err := defs.String("Dbms")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "PostgreSQL", dbms)

	locs, found, err := defs.List("Locations")
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, locs, 2)
	s, _ := locs[1].AsScalar()
	assert.Equal(t, "b", s)

	// null counts as absent
	assert.True(t, defs.Has("Encoding"))
	_, found = defs.Get("Encoding")
	assert.False(t, found)

	assert.Equal(t, KindScalar, values[1].Kind())
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "# only a comment\n"} {
		values, err := Parse([]byte(text))
		require.NoError(t, err)
		assert.Empty(t, values)
	}
}

func TestParse_TopLevelNotSequence(t *testing.T) {
	_, err := Parse([]byte("MigrationDefinitions:\n  Dbms: MySQL\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("- [unclosed\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestParse_AliasAndMergeKey(t *testing.T) {
	text := `
- base: &base
    Encoding: UTF-8
    Schemas: [public]
- MigrationDefinitions:
    <<: *base
    Schemas: [audit]
    Copy: *base
`
	values, err := Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, values, 2)

	entry, _ := values[1].AsMap()
	defs, _, err := entry.Map("MigrationDefinitions")
	require.NoError(t, err)

	enc, found, err := defs.String("Encoding")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "UTF-8", enc)

	// explicit key beats the merged one
	schemas, _, err := defs.List("Schemas")
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	s, _ := schemas[0].AsScalar()
	assert.Equal(t, "audit", s)

	copied, found, err := defs.Map("Copy")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, copied.Len())
}

func TestMap_ShapeMismatch(t *testing.T) {
	m := NewMap().
		Set("Locations", Scalar("db/migrations")).
		Set("Placeholders", List(Scalar("x"))).
		Set("Dbms", MapValue(NewMap()))

	_, _, err := m.List("Locations")
	assertShape(t, err, "Locations", "list")

	_, _, err = m.Map("Placeholders")
	assertShape(t, err, "Placeholders", "map")

	_, _, err = m.String("Dbms")
	assertShape(t, err, "Dbms", "scalar")

	_, found, err := m.List("Missing")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestMap_SetKeepsPosition(t *testing.T) {
	m := NewMap().Set("a", Scalar("1")).Set("b", Scalar("2")).Set("a", Scalar("3"))
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	s, _, _ := m.String("a")
	assert.Equal(t, "3", s)
}

func assertShape(t *testing.T, err error, key, expected string) {
	t.Helper()
	require.Error(t, err)
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errors.ErrorTypeShapeMismatch, e.Type)
	assert.Equal(t, key, e.Detail(errors.DetailKey))
	assert.Equal(t, expected, e.Detail(errors.DetailExpected))
}
