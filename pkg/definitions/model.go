package definitions

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/strata/pkg/optional"
)

// Template is a string value paired with its placeholder declaration. It
// backs both the connection string and the working directory of a node.
type Template struct {
	Value             optional.Value[string]            `json:"Value" yaml:"Value,omitempty"`
	PlaceholderPrefix optional.Value[string]            `json:"PlaceholderPrefix" yaml:"PlaceholderPrefix,omitempty"`
	PlaceholderSuffix optional.Value[string]            `json:"PlaceholderSuffix" yaml:"PlaceholderSuffix,omitempty"`
	Placeholders      optional.Value[map[string]string] `json:"Placeholders" yaml:"Placeholders,omitempty"`
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	return MergeTemplate(Template{}, t)
}

// Node is one migration definition in the tree. Every field except Children
// may be absent, meaning the node inherits it from its nearest ancestor.
type Node struct {
	Dbms                     optional.Value[Dbms]     `json:"Dbms" yaml:"Dbms,omitempty"`
	ConnectionStringTemplate optional.Value[Template] `json:"ConnectionStringTemplate" yaml:"ConnectionStringTemplate,omitempty"`
	WorkingDirectoryTemplate optional.Value[Template] `json:"WorkingDirectoryTemplate" yaml:"WorkingDirectoryTemplate,omitempty"`

	Locations optional.Value[[]string] `json:"Locations" yaml:"Locations,omitempty"`
	Schemas   optional.Value[[]string] `json:"Schemas" yaml:"Schemas,omitempty"`

	PlaceholderPrefix optional.Value[string]            `json:"PlaceholderPrefix" yaml:"PlaceholderPrefix,omitempty"`
	PlaceholderSuffix optional.Value[string]            `json:"PlaceholderSuffix" yaml:"PlaceholderSuffix,omitempty"`
	Placeholders      optional.Value[map[string]string] `json:"Placeholders" yaml:"Placeholders,omitempty"`

	Command         optional.Value[Command]         `json:"Command" yaml:"Command,omitempty"`
	TransactionMode optional.Value[TransactionMode] `json:"TransactionMode" yaml:"TransactionMode,omitempty"`

	EraseDisabled               optional.Value[bool] `json:"EraseDisabled" yaml:"EraseDisabled,omitempty"`
	EraseOnValidationError      optional.Value[bool] `json:"EraseOnValidationError" yaml:"EraseOnValidationError,omitempty"`
	OutOfOrder                  optional.Value[bool] `json:"OutOfOrder" yaml:"OutOfOrder,omitempty"`
	SkipNextMigrations          optional.Value[bool] `json:"SkipNextMigrations" yaml:"SkipNextMigrations,omitempty"`
	RetryRepeatableUntilNoError optional.Value[bool] `json:"RetryRepeatableMigrationsUntilNoError" yaml:"RetryRepeatableMigrationsUntilNoError,omitempty"`
	EnableClusterMode           optional.Value[bool] `json:"EnableClusterMode" yaml:"EnableClusterMode,omitempty"`

	StartVersion   optional.Value[int] `json:"StartVersion" yaml:"StartVersion,omitempty"`
	TargetVersion  optional.Value[int] `json:"TargetVersion" yaml:"TargetVersion,omitempty"`
	CommandTimeout optional.Value[int] `json:"CommandTimeout" yaml:"CommandTimeout,omitempty"`

	EmbeddedResourceAssemblies optional.Value[[]string] `json:"EmbeddedResourceAssemblies" yaml:"EmbeddedResourceAssemblies,omitempty"`
	EmbeddedResourceFilters    optional.Value[[]string] `json:"EmbeddedResourceFilters" yaml:"EmbeddedResourceFilters,omitempty"`

	Encoding                     optional.Value[string] `json:"Encoding" yaml:"Encoding,omitempty"`
	SQLMigrationPrefix           optional.Value[string] `json:"SqlMigrationPrefix" yaml:"SqlMigrationPrefix,omitempty"`
	SQLRepeatableMigrationPrefix optional.Value[string] `json:"SqlRepeatableMigrationPrefix" yaml:"SqlRepeatableMigrationPrefix,omitempty"`
	SQLMigrationSeparator        optional.Value[string] `json:"SqlMigrationSeparator" yaml:"SqlMigrationSeparator,omitempty"`
	SQLMigrationSuffix           optional.Value[string] `json:"SqlMigrationSuffix" yaml:"SqlMigrationSuffix,omitempty"`
	MetadataTableSchema          optional.Value[string] `json:"MetadataTableSchema" yaml:"MetadataTableSchema,omitempty"`
	MetadataTableName            optional.Value[string] `json:"MetadataTableName" yaml:"MetadataTableName,omitempty"`

	// Children is never part of JSON output: rendered values are resolved
	// leaves, and the JSON encoder cannot build a self-referencing type.
	Children []Node `json:"-" yaml:"Children,omitempty"`
}

// IsLeaf reports whether n has no children. An empty Children list and an
// absent one are the same thing.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Clone returns a deep copy of n, children included.
func (n Node) Clone() Node {
	out := Merge(Node{}, n)
	if n.Children != nil {
		out.Children = make([]Node, len(n.Children))
		for i := range n.Children {
			out.Children[i] = n.Children[i].Clone()
		}
	}
	return out
}

// Resolved is a flattened leaf: every field holds the value inherited from
// its nearest ancestor, and it never has children.
type Resolved struct {
	Node `yaml:",inline"`
}

// Summary renders a one-line description for logs and listings.
func (r Resolved) Summary() string {
	var b strings.Builder

	if d, ok := r.Dbms.Get(); ok {
		b.WriteString(d.String())
	} else {
		b.WriteString("<no dbms>")
	}
	if c, ok := r.Command.Get(); ok {
		fmt.Fprintf(&b, " %s", c)
	}
	if locs, ok := r.Locations.Get(); ok {
		fmt.Fprintf(&b, " locations=[%s]", strings.Join(locs, ","))
	}
	if schemas, ok := r.Schemas.Get(); ok {
		fmt.Fprintf(&b, " schemas=[%s]", strings.Join(schemas, ","))
	}
	if t, ok := r.TargetVersion.Get(); ok {
		fmt.Fprintf(&b, " target=%d", t)
	}

	return b.String()
}
