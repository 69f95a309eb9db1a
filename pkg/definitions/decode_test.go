package definitions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/optional"
)

const sampleDefinitions = `
- MigrationDefinitions:
    Dbms: PostgreSQL
    ConnectionStringTemplate:
      ConnectionString: "Host={host};Port={port}"
      PlaceholderPrefix: "{"
      PlaceholderSuffix: "}"
      Placeholders:
        - host: db1
        - port: 5432
    Placeholders:
      env: prod
    Locations: [migrations/common]
    Children:
      - MigrationDefinitions:
          Command: Migrate
          Locations: [migrations/a]
          Placeholders:
            tenant: a
      - MigrationDefinitions:
          Command: Erase
          EraseDisabled: false
- MigrationDefinitions:
    Dbms: SQLite
    WorkingDirectoryTemplate:
      WorkingDirectory: /srv/{app}
      Placeholders:
        app: billing
`

func TestParseAll_Structure(t *testing.T) {
	roots, err := ParseAll([]byte(sampleDefinitions))
	require.NoError(t, err)
	require.Len(t, roots, 2)

	first := roots[0]
	assert.Equal(t, optional.Of(DbmsPostgreSQL), first.Dbms)
	assert.Equal(t, optional.Of([]string{"migrations/common"}), first.Locations)
	require.Len(t, first.Children, 2)
	assert.Equal(t, optional.Of(CommandMigrate), first.Children[0].Command)
	assert.Equal(t, optional.Of(false), first.Children[1].EraseDisabled)
	assert.True(t, roots[1].IsLeaf())

	tmpl, ok := first.ConnectionStringTemplate.Get()
	require.True(t, ok)
	assert.Equal(t, "Host={host};Port={port}", tmpl.Value.OrElse(""))
	got, _ := tmpl.Placeholders.Get()
	assert.Equal(t, map[string]string{"host": "db1", "port": "5432"}, got)

	wd, ok := roots[1].WorkingDirectoryTemplate.Get()
	require.True(t, ok)
	assert.Equal(t, "/srv/{app}", wd.Value.OrElse(""))
	assert.False(t, wd.PlaceholderPrefix.IsSet())
}

func TestParseAll_Flatten(t *testing.T) {
	roots, err := ParseAll([]byte(sampleDefinitions))
	require.NoError(t, err)

	leaves := Flatten(roots)
	require.Len(t, leaves, 3)

	a := leaves[0]
	assert.Equal(t, optional.Of(DbmsPostgreSQL), a.Dbms)
	assert.Equal(t, optional.Of([]string{"migrations/a"}), a.Locations)
	ph, _ := a.Placeholders.Get()
	assert.Equal(t, map[string]string{"env": "prod", "tenant": "a"}, ph)
	assert.True(t, a.ConnectionStringTemplate.IsSet())

	b := leaves[1]
	assert.Equal(t, optional.Of(CommandErase), b.Command)
	assert.Equal(t, optional.Of([]string{"migrations/common"}), b.Locations)

	c := leaves[2]
	assert.Equal(t, optional.Of(DbmsSQLite), c.Dbms)
	assert.False(t, c.Locations.IsSet())
}

func TestParseAll_EmptyDocument(t *testing.T) {
	for _, text := range []string{"", "   \n", "[]"} {
		roots, err := ParseAll([]byte(text))
		require.NoError(t, err, "input %q", text)
		assert.Empty(t, roots)
		assert.Empty(t, Flatten(roots))
	}
}

func TestParseAll_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		errType  errors.ErrorType
		key      string
		expected string
	}{
		{
			name:    "top level map",
			input:   "MigrationDefinitions: {}",
			errType: errors.ErrorTypeParse,
		},
		{
			name:    "malformed yaml",
			input:   "- MigrationDefinitions: [unclosed",
			errType: errors.ErrorTypeParse,
		},
		{
			name:    "missing wrapper",
			input:   "- Dbms: PostgreSQL",
			errType: errors.ErrorTypeKeyNotFound,
			key:     RootKey,
		},
		{
			name:    "scalar entry",
			input:   "- just a string",
			errType: errors.ErrorTypeShapeMismatch,
			key:     RootKey,
		},
		{
			name:     "wrapper is a list",
			input:    "- MigrationDefinitions: [a, b]",
			errType:  errors.ErrorTypeShapeMismatch,
			key:      RootKey,
			expected: "map",
		},
		{
			name:     "locations is a scalar",
			input:    "- MigrationDefinitions:\n    Locations: here",
			errType:  errors.ErrorTypeShapeMismatch,
			key:      "Locations",
			expected: "list",
		},
		{
			name:     "children is a map",
			input:    "- MigrationDefinitions:\n    Children: {a: b}",
			errType:  errors.ErrorTypeShapeMismatch,
			key:      "Children",
			expected: "list",
		},
		{
			name:     "dbms is a map",
			input:    "- MigrationDefinitions:\n    Dbms: {a: b}",
			errType:  errors.ErrorTypeShapeMismatch,
			key:      "Dbms",
			expected: "scalar",
		},
		{
			name:     "template is a scalar",
			input:    "- MigrationDefinitions:\n    ConnectionStringTemplate: oops",
			errType:  errors.ErrorTypeShapeMismatch,
			key:      "ConnectionStringTemplate",
			expected: "map",
		},
		{
			name:     "placeholders list holds a scalar",
			input:    "- MigrationDefinitions:\n    Placeholders: [a]",
			errType:  errors.ErrorTypeShapeMismatch,
			key:      "Placeholders",
			expected: "map",
		},
		{
			name:    "nested child misses wrapper",
			input:   "- MigrationDefinitions:\n    Children:\n      - Dbms: MySQL",
			errType: errors.ErrorTypeKeyNotFound,
			key:     RootKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAll([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), "got %v", err)

			var e *errors.Error
			require.True(t, errors.As(err, &e))
			if tt.key != "" {
				assert.Equal(t, tt.key, e.Detail(errors.DetailKey))
			}
			if tt.expected != "" {
				assert.Equal(t, tt.expected, e.Detail(errors.DetailExpected))
			}
		})
	}
}

func TestParseAll_ErrorNamesNode(t *testing.T) {
	input := `
- MigrationDefinitions:
    Children:
      - MigrationDefinitions: {}
      - MigrationDefinitions:
          Schemas: public
`
	_, err := ParseAll([]byte(input))
	require.Error(t, err)

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "[0].Children[1]", e.Detail("node"))
	assert.Equal(t, "Schemas", e.Detail(errors.DetailKey))
}

func TestParseAll_NullWrapperIsEmptyNode(t *testing.T) {
	roots, err := ParseAll([]byte("- MigrationDefinitions:\n"))
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, Node{}, roots[0])
}

func TestParseAll_ChildrenEmptyVsAbsent(t *testing.T) {
	roots, err := ParseAll([]byte(`
- MigrationDefinitions:
    Encoding: UTF-8
    Children: []
- MigrationDefinitions:
    Encoding: UTF-8
`))
	require.NoError(t, err)
	require.Len(t, roots, 2)

	assert.NotNil(t, roots[0].Children)
	assert.Nil(t, roots[1].Children)

	leaves := Flatten(roots)
	require.Len(t, leaves, 2)
	assert.Equal(t, leaves[0], leaves[1])
}

func TestParseAll_NullFieldIsAbsent(t *testing.T) {
	roots, err := ParseAll([]byte(`
- MigrationDefinitions:
    Encoding: UTF-8
    Children:
      - MigrationDefinitions:
          Encoding:
          Locations: []
`))
	require.NoError(t, err)

	leaves := Flatten(roots)
	require.Len(t, leaves, 1)
	assert.Equal(t, "UTF-8", leaves[0].Encoding.OrElse(""))
	locs, ok := leaves[0].Locations.Get()
	assert.True(t, ok)
	assert.Empty(t, locs)
}

func TestParseAll_RetryAlias(t *testing.T) {
	roots, err := ParseAll([]byte(`
- MigrationDefinitions:
    RetryRepeatableUntilNoError: true
- MigrationDefinitions:
    RetryRepeatableMigrationsUntilNoError: true
    RetryRepeatableUntilNoError: false
`))
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, optional.Of(true), roots[0].RetryRepeatableUntilNoError)
	assert.Equal(t, optional.Of(true), roots[1].RetryRepeatableUntilNoError)
}

func TestParseAll_RetryAliasSkipsNull(t *testing.T) {
	roots, err := ParseAll([]byte(`
- MigrationDefinitions:
    RetryRepeatableMigrationsUntilNoError: ~
    RetryRepeatableUntilNoError: true
- MigrationDefinitions:
    RetryRepeatableMigrationsUntilNoError:
`))
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, optional.Of(true), roots[0].RetryRepeatableUntilNoError)
	assert.False(t, roots[1].RetryRepeatableUntilNoError.IsSet())
}

func TestParseAll_PlaceholderListLaterEntryWins(t *testing.T) {
	roots, err := ParseAll([]byte(`
- MigrationDefinitions:
    ConnectionStringTemplate:
      ConnectionString: "Host=${host}"
      Placeholders:
        - host: first
          port: "5432"
        - host: second
        - host: third
          db: app
    Placeholders:
      - env: dev
      - env: prod
`))
	require.NoError(t, err)
	require.Len(t, roots, 1)

	tmpl, ok := roots[0].ConnectionStringTemplate.Get()
	require.True(t, ok)
	got, _ := tmpl.Placeholders.Get()
	assert.Equal(t, map[string]string{"host": "third", "port": "5432", "db": "app"}, got)

	node, _ := roots[0].Placeholders.Get()
	assert.Equal(t, map[string]string{"env": "prod"}, node)
}

func TestParseAll_PlaceholderForms(t *testing.T) {
	roots, err := ParseAll([]byte(`
- MigrationDefinitions:
    Placeholders:
      - a: "1"
      - a: "2"
        b:
- MigrationDefinitions:
    Placeholders: {x: "y"}
`))
	require.NoError(t, err)

	first, _ := roots[0].Placeholders.Get()
	assert.Equal(t, map[string]string{"a": "2", "b": ""}, first)
	second, _ := roots[1].Placeholders.Get()
	assert.Equal(t, map[string]string{"x": "y"}, second)
}

func TestParseAll_AnchorsAndMergeKeys(t *testing.T) {
	roots, err := ParseAll([]byte(`
- MigrationDefinitions: &base
    Dbms: MySQL
    Encoding: UTF-8
- MigrationDefinitions:
    <<: *base
    Encoding: latin1
`))
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, optional.Of(DbmsMySQL), roots[1].Dbms)
	assert.Equal(t, optional.Of("latin1"), roots[1].Encoding)
}

func TestParseAll_UnparsableTokensFallBack(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var fallbacks []Fallback

	roots, err := ParseAll([]byte(`
- MigrationDefinitions:
    Dbms: postgresql
    Command: Migrate
    TransactionMode: Sometimes
    StartVersion: one
    OutOfOrder: maybe
    Colour: blue
`),
		WithLogger(zap.New(core)),
		WithFallbackHook(func(f Fallback) { fallbacks = append(fallbacks, f) }),
	)
	require.NoError(t, err)
	require.Len(t, roots, 1)

	n := roots[0]
	assert.False(t, n.Dbms.IsSet(), "enum matching is case-sensitive")
	assert.Equal(t, optional.Of(CommandMigrate), n.Command)
	assert.False(t, n.TransactionMode.IsSet())
	assert.False(t, n.StartVersion.IsSet())
	assert.False(t, n.OutOfOrder.IsSet())

	fields := make([]string, 0, len(fallbacks))
	for _, f := range fallbacks {
		fields = append(fields, f.Field)
		assert.Equal(t, "[0]", f.Path)
	}
	assert.Equal(t, []string{"Dbms", "TransactionMode", "OutOfOrder", "StartVersion"}, fields)

	assert.Equal(t, 4, logs.FilterMessage("unparsable value treated as absent").Len())
	unknown := logs.FilterMessage("ignoring unknown definition field").All()
	require.Len(t, unknown, 1)
	assert.Equal(t, "Colour", unknown[0].ContextMap()["field"])
}

func TestParseAll_FallbackInheritsFromParent(t *testing.T) {
	roots, err := ParseAll([]byte(`
- MigrationDefinitions:
    Dbms: CockroachDB
    Children:
      - MigrationDefinitions:
          Dbms: Oracle
`))
	require.NoError(t, err)

	leaves := Flatten(roots)
	require.Len(t, leaves, 1)
	assert.Equal(t, optional.Of(DbmsCockroachDB), leaves[0].Dbms)
}

func TestParseEnums(t *testing.T) {
	d, ok := ParseDbms("MariaDB")
	assert.True(t, ok)
	assert.Equal(t, DbmsMariaDB, d)

	_, ok = ParseDbms("mariadb")
	assert.False(t, ok)

	c, ok := ParseCommand("Info")
	assert.True(t, ok)
	assert.Equal(t, "Info", c.String())

	m, ok := ParseTransactionMode("RollbackAll")
	assert.True(t, ok)
	text, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "RollbackAll", string(text))

	_, ok = ParseTransactionMode("")
	assert.False(t, ok)
}
