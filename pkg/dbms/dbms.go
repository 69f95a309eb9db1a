// Package dbms inspects the connection strings of resolved definitions.
//
// Strings that still hold placeholder tokens are skipped. The rest are
// parsed with the driver library for the leaf's Dbms: pgconn for PostgreSQL and CockroachDB, the
// go-sql-driver/mysql DSN parser for MySQL and MariaDB. Other systems get
// a best-effort split of semicolon separated strings. No connection is
// ever opened and passwords are never reported.
package dbms

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ajitpratap0/strata/pkg/definitions"
)

// Family groups database systems that share a wire protocol and DSN format.
type Family string

const (
	FamilyPostgres  Family = "postgres"
	FamilyMySQL     Family = "mysql"
	FamilySQLite    Family = "sqlite"
	FamilySQLServer Family = "sqlserver"
	FamilyCassandra Family = "cassandra"
	FamilyUnknown   Family = "unknown"
)

// FamilyOf returns the driver family of d.
func FamilyOf(d definitions.Dbms) Family {
	switch d {
	case definitions.DbmsPostgreSQL, definitions.DbmsCockroachDB:
		return FamilyPostgres
	case definitions.DbmsMySQL, definitions.DbmsMariaDB:
		return FamilyMySQL
	case definitions.DbmsSQLite:
		return FamilySQLite
	case definitions.DbmsSQLServer:
		return FamilySQLServer
	case definitions.DbmsCassandra:
		return FamilyCassandra
	default:
		return FamilyUnknown
	}
}

// Status is the outcome of inspecting one leaf.
type Status string

const (
	// StatusParsed means the connection string was parsed.
	StatusParsed Status = "parsed"
	// StatusSkipped means there was nothing parsable: no Dbms, no
	// connection string, or placeholder tokens in it.
	StatusSkipped Status = "skipped"
	// StatusInvalid means the driver parser rejected the string.
	StatusInvalid Status = "invalid"
)

// DefaultPlaceholderPrefix and DefaultPlaceholderSuffix delimit
// placeholders when neither the template nor the node declares them.
const (
	DefaultPlaceholderPrefix = "${"
	DefaultPlaceholderSuffix = "}"
)

const redacted = "xxxxx"

// Report describes one resolved leaf's connection target.
type Report struct {
	Index    int    `json:"index" yaml:"index"`
	Dbms     string `json:"dbms" yaml:"dbms"`
	Family   Family `json:"family" yaml:"family"`
	Status   Status `json:"status" yaml:"status"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	// HasPassword reports whether a password is configured
	HasPassword bool `json:"has_password" yaml:"has_password"`
	// Redacted is the parsed DSN with the password masked
	Redacted string `json:"redacted,omitempty" yaml:"redacted,omitempty"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Inspect reports on every leaf in order. Failures are recorded in the
// report of the leaf concerned; Inspect itself never fails.
func Inspect(leaves []definitions.Resolved) []Report {
	reports := make([]Report, 0, len(leaves))
	for i := range leaves {
		r := InspectLeaf(leaves[i])
		r.Index = i
		reports = append(reports, r)
	}
	return reports
}

// InspectLeaf reports on a single leaf.
func InspectLeaf(leaf definitions.Resolved) Report {
	d, ok := leaf.Dbms.Get()
	if !ok {
		return Report{Dbms: "", Family: FamilyUnknown, Status: StatusSkipped, Reason: "no Dbms set"}
	}
	r := Report{Dbms: d.String(), Family: FamilyOf(d)}

	dsn, reason := ConnectionString(leaf.Node)
	if reason != "" {
		r.Status = StatusSkipped
		r.Reason = reason
		return r
	}

	var err error
	switch r.Family {
	case FamilyPostgres:
		err = inspectPostgres(dsn, &r)
	case FamilyMySQL:
		err = inspectMySQL(dsn, &r)
	default:
		err = inspectKeyValues(dsn, &r)
	}
	if err != nil {
		r.Status = StatusInvalid
		r.Reason = err.Error()
		return r
	}
	r.Status = StatusParsed
	return r
}

// ConnectionString returns the leaf's connection string as written. A
// non-empty reason is returned when there is none, or when it still holds a
// placeholder token: substituting placeholders belongs to the executor, so
// such strings are not parsed. The template's placeholder affixes win over
// the node's, and ${ and } apply when neither declares them.
func ConnectionString(n definitions.Node) (dsn string, reason string) {
	tmpl, ok := n.ConnectionStringTemplate.Get()
	if !ok {
		return "", "no connection string"
	}
	value, ok := tmpl.Value.Get()
	if !ok || value == "" {
		return "", "no connection string"
	}

	prefix := tmpl.PlaceholderPrefix.Or(n.PlaceholderPrefix).OrElse(DefaultPlaceholderPrefix)
	suffix := tmpl.PlaceholderSuffix.Or(n.PlaceholderSuffix).OrElse(DefaultPlaceholderSuffix)
	if hasPlaceholder(value, prefix, suffix) {
		return "", "unresolved placeholders"
	}
	return value, ""
}

// hasPlaceholder reports whether s contains prefix followed, later on, by
// suffix.
func hasPlaceholder(s, prefix, suffix string) bool {
	if prefix == "" {
		return false
	}
	start := strings.Index(s, prefix)
	if start < 0 {
		return false
	}
	return strings.Contains(s[start+len(prefix):], suffix)
}

func inspectPostgres(dsn string, r *Report) error {
	if kv, ok := parseKeyValues(dsn); ok {
		dsn = postgresKeywords(kv)
	}

	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		// pgconn masks the password in its error text
		return fmt.Errorf("postgres: %w", err)
	}

	r.Host = cfg.Host
	r.Port = int(cfg.Port)
	r.Database = cfg.Database
	r.User = cfg.User
	r.HasPassword = cfg.Password != ""

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port))),
		Path:   "/" + cfg.Database,
	}
	switch {
	case cfg.User != "" && r.HasPassword:
		u.User = url.UserPassword(cfg.User, redacted)
	case cfg.User != "":
		u.User = url.User(cfg.User)
	}
	r.Redacted = u.String()
	return nil
}

func postgresKeywords(kv keyValues) string {
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+quoteKeyword(value))
		}
	}
	add("host", kv.host())
	add("port", kv.port())
	add("dbname", kv.database())
	add("user", kv.user())
	add("password", kv.password())
	add("sslmode", strings.ToLower(kv.first("ssl mode", "sslmode")))
	return strings.Join(parts, " ")
}

func inspectMySQL(dsn string, r *Report) error {
	var cfg *mysql.Config
	if kv, ok := parseKeyValues(dsn); ok {
		cfg = mysql.NewConfig()
		cfg.Net = "tcp"
		host, port := kv.host(), kv.port()
		if host == "" {
			host = "localhost"
		}
		if port == "" {
			port = "3306"
		}
		cfg.Addr = net.JoinHostPort(host, port)
		cfg.DBName = kv.database()
		cfg.User = kv.user()
		cfg.Passwd = kv.password()
	} else {
		parsed, err := mysql.ParseDSN(dsn)
		if err != nil {
			return fmt.Errorf("mysql: %w", err)
		}
		cfg = parsed
	}

	host, port, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		host = cfg.Addr
	} else if p, err := strconv.Atoi(port); err == nil {
		r.Port = p
	}
	r.Host = host
	r.Database = cfg.DBName
	r.User = cfg.User
	r.HasPassword = cfg.Passwd != ""

	masked := cfg.Clone()
	if masked.Passwd != "" {
		masked.Passwd = redacted
	}
	r.Redacted = masked.FormatDSN()
	return nil
}

func inspectKeyValues(dsn string, r *Report) error {
	kv, ok := parseKeyValues(dsn + ";")
	if !ok {
		return fmt.Errorf("%s: not a key=value connection string", r.Family)
	}
	r.Host = kv.host()
	r.Database = kv.database()
	r.User = kv.user()
	r.HasPassword = kv.password() != ""
	if p := kv.port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", r.Family, p)
		}
		r.Port = n
	}
	return nil
}
