package definitions

import (
	"slices"

	"github.com/ajitpratap0/strata/pkg/optional"
)

// Document keys of the template values.
const (
	ConnectionStringKey = "ConnectionString"
	WorkingDirectoryKey = "WorkingDirectory"
)

// nodeFields is the merge table for Node: one row per field, naming its
// document key and merge policy. Children is structural and not listed.
var nodeFields = []field[Node]{
	scalarField(func(n *Node) *optional.Value[Dbms] { return &n.Dbms }, ParseDbms, "Dbms"),
	templateField(func(n *Node) *optional.Value[Template] { return &n.ConnectionStringTemplate }, ConnectionStringKey, "ConnectionStringTemplate"),
	templateField(func(n *Node) *optional.Value[Template] { return &n.WorkingDirectoryTemplate }, WorkingDirectoryKey, "WorkingDirectoryTemplate"),

	listField(func(n *Node) *optional.Value[[]string] { return &n.Locations }, "Locations"),
	listField(func(n *Node) *optional.Value[[]string] { return &n.Schemas }, "Schemas"),

	scalarField(func(n *Node) *optional.Value[string] { return &n.PlaceholderPrefix }, parseString, "PlaceholderPrefix"),
	scalarField(func(n *Node) *optional.Value[string] { return &n.PlaceholderSuffix }, parseString, "PlaceholderSuffix"),
	dictField(func(n *Node) *optional.Value[map[string]string] { return &n.Placeholders }, "Placeholders"),

	scalarField(func(n *Node) *optional.Value[Command] { return &n.Command }, ParseCommand, "Command"),
	scalarField(func(n *Node) *optional.Value[TransactionMode] { return &n.TransactionMode }, ParseTransactionMode, "TransactionMode"),

	scalarField(func(n *Node) *optional.Value[bool] { return &n.EraseDisabled }, parseBool, "EraseDisabled"),
	scalarField(func(n *Node) *optional.Value[bool] { return &n.EraseOnValidationError }, parseBool, "EraseOnValidationError"),
	scalarField(func(n *Node) *optional.Value[bool] { return &n.OutOfOrder }, parseBool, "OutOfOrder"),
	scalarField(func(n *Node) *optional.Value[bool] { return &n.SkipNextMigrations }, parseBool, "SkipNextMigrations"),
	scalarField(func(n *Node) *optional.Value[bool] { return &n.RetryRepeatableUntilNoError }, parseBool,
		"RetryRepeatableMigrationsUntilNoError", "RetryRepeatableUntilNoError"),
	scalarField(func(n *Node) *optional.Value[bool] { return &n.EnableClusterMode }, parseBool, "EnableClusterMode"),

	scalarField(func(n *Node) *optional.Value[int] { return &n.StartVersion }, parseInt, "StartVersion"),
	scalarField(func(n *Node) *optional.Value[int] { return &n.TargetVersion }, parseInt, "TargetVersion"),
	scalarField(func(n *Node) *optional.Value[int] { return &n.CommandTimeout }, parseInt, "CommandTimeout"),

	listField(func(n *Node) *optional.Value[[]string] { return &n.EmbeddedResourceAssemblies }, "EmbeddedResourceAssemblies"),
	listField(func(n *Node) *optional.Value[[]string] { return &n.EmbeddedResourceFilters }, "EmbeddedResourceFilters"),

	scalarField(func(n *Node) *optional.Value[string] { return &n.Encoding }, parseString, "Encoding"),
	scalarField(func(n *Node) *optional.Value[string] { return &n.SQLMigrationPrefix }, parseString, "SqlMigrationPrefix"),
	scalarField(func(n *Node) *optional.Value[string] { return &n.SQLRepeatableMigrationPrefix }, parseString, "SqlRepeatableMigrationPrefix"),
	scalarField(func(n *Node) *optional.Value[string] { return &n.SQLMigrationSeparator }, parseString, "SqlMigrationSeparator"),
	scalarField(func(n *Node) *optional.Value[string] { return &n.SQLMigrationSuffix }, parseString, "SqlMigrationSuffix"),
	scalarField(func(n *Node) *optional.Value[string] { return &n.MetadataTableSchema }, parseString, "MetadataTableSchema"),
	scalarField(func(n *Node) *optional.Value[string] { return &n.MetadataTableName }, parseString, "MetadataTableName"),
}

// templateFields is the merge table for Template. valueKey is the document
// key holding Value, which depends on where the template appears.
func templateFields(valueKey string) []field[Template] {
	return []field[Template]{
		scalarField(func(t *Template) *optional.Value[string] { return &t.Value }, parseString, valueKey),
		scalarField(func(t *Template) *optional.Value[string] { return &t.PlaceholderPrefix }, parseString, "PlaceholderPrefix"),
		scalarField(func(t *Template) *optional.Value[string] { return &t.PlaceholderSuffix }, parseString, "PlaceholderSuffix"),
		dictField(func(t *Template) *optional.Value[map[string]string] { return &t.Placeholders }, "Placeholders"),
	}
}

var templateMergeFields = templateFields("Value")

// Merge combines a parent node with a child node. Each field follows its
// policy in nodeFields; the result carries the child's children. Neither
// argument is modified and the result shares no maps or slices with them.
func Merge(parent, child Node) Node {
	out := mergeRecords(nodeFields, parent, child)
	out.Children = slices.Clone(child.Children)
	return out
}

// MergeTemplate combines a parent template with a child template field by
// field: Value and the placeholder affixes take the child's value if set,
// Placeholders are unioned with the child winning.
func MergeTemplate(parent, child Template) Template {
	return mergeRecords(templateMergeFields, parent, child)
}
