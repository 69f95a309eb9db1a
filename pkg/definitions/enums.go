package definitions

// Dbms is the target database management system.
type Dbms int

const (
	DbmsPostgreSQL Dbms = iota
	DbmsSQLite
	DbmsSQLServer
	DbmsMySQL
	DbmsMariaDB
	DbmsCassandra
	DbmsCockroachDB
)

var dbmsNames = []string{
	DbmsPostgreSQL:  "PostgreSQL",
	DbmsSQLite:      "SQLite",
	DbmsSQLServer:   "SQLServer",
	DbmsMySQL:       "MySQL",
	DbmsMariaDB:     "MariaDB",
	DbmsCassandra:   "Cassandra",
	DbmsCockroachDB: "CockroachDB",
}

func (d Dbms) String() string { return enumName(dbmsNames, d) }

// MarshalText encodes the member name.
func (d Dbms) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// ParseDbms matches s against the member names exactly, case-sensitively.
func ParseDbms(s string) (Dbms, bool) { return parseEnum[Dbms](dbmsNames, s) }

// Command is the migration command to run.
type Command int

const (
	CommandUndefined Command = iota
	CommandMigrate
	CommandErase
	CommandRepair
	CommandInfo
)

var commandNames = []string{
	CommandUndefined: "Undefined",
	CommandMigrate:   "Migrate",
	CommandErase:     "Erase",
	CommandRepair:    "Repair",
	CommandInfo:      "Info",
}

func (c Command) String() string { return enumName(commandNames, c) }

// MarshalText encodes the member name.
func (c Command) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ParseCommand matches s against the member names exactly, case-sensitively.
func ParseCommand(s string) (Command, bool) { return parseEnum[Command](commandNames, s) }

// TransactionMode controls how migrations are grouped into transactions.
type TransactionMode int

const (
	TransactionModeUndefined TransactionMode = iota
	TransactionModeCommitEach
	TransactionModeCommitAll
	TransactionModeRollbackAll
)

var transactionModeNames = []string{
	TransactionModeUndefined:   "Undefined",
	TransactionModeCommitEach:  "CommitEach",
	TransactionModeCommitAll:   "CommitAll",
	TransactionModeRollbackAll: "RollbackAll",
}

func (t TransactionMode) String() string { return enumName(transactionModeNames, t) }

// MarshalText encodes the member name.
func (t TransactionMode) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ParseTransactionMode matches s against the member names exactly, case-sensitively.
func ParseTransactionMode(s string) (TransactionMode, bool) {
	return parseEnum[TransactionMode](transactionModeNames, s)
}

func enumName[E ~int](names []string, e E) string {
	if int(e) < 0 || int(e) >= len(names) {
		return "Unknown"
	}
	return names[e]
}

func parseEnum[E ~int](names []string, s string) (E, bool) {
	for i, name := range names {
		if name == s {
			return E(i), true
		}
	}
	return 0, false
}
