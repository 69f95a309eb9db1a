package dbms

import "strings"

// keyValues is a semicolon separated connection string such as
// "Server=db1;Port=5432;Database=app", with keys folded to lower case.
type keyValues map[string]string

// parseKeyValues splits s when it looks like a semicolon separated
// connection string. Strings without a semicolon are left to the driver
// parsers, which have their own URL and keyword formats.
func parseKeyValues(s string) (keyValues, bool) {
	if !strings.Contains(s, ";") {
		return nil, false
	}
	out := keyValues{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, false
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out, len(out) > 0
}

// first returns the value of the first alias present.
func (kv keyValues) first(aliases ...string) string {
	for _, a := range aliases {
		if v, ok := kv[a]; ok {
			return v
		}
	}
	return ""
}

func (kv keyValues) host() string {
	return kv.first("host", "server", "data source", "datasource", "address", "contact points")
}

func (kv keyValues) port() string {
	return kv.first("port")
}

func (kv keyValues) database() string {
	return kv.first("database", "initial catalog", "dbname", "keyspace")
}

func (kv keyValues) user() string {
	return kv.first("username", "user id", "userid", "user", "uid")
}

func (kv keyValues) password() string {
	return kv.first("password", "pwd")
}

// quoteKeyword quotes v for a libpq keyword/value string.
func quoteKeyword(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
