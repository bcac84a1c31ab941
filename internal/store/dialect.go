// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/prospectus/pkg/types"
)

// dialect holds the SQL differences between the supported backends.
// Queries are written with ? placeholders and rebound per backend.
type dialect struct {
	driver types.StoreDriver
}

func dialectFor(driver types.StoreDriver) (dialect, error) {
	switch driver {
	case "", types.DriverSQLite:
		return dialect{driver: types.DriverSQLite}, nil
	case types.DriverPostgres, "postgres", "postgresql":
		return dialect{driver: types.DriverPostgres}, nil
	}
	return dialect{}, fmt.Errorf("unsupported store driver %q (want %s or %s)",
		driver, types.DriverSQLite, types.DriverPostgres)
}

// insertIgnore builds an insert that silently skips rows whose key exists.
func (d dialect) insertIgnore(table string, columns ...string) string {
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	cols := strings.Join(columns, ", ")
	if d.driver == types.DriverPostgres {
		return d.rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING", table, cols, ph))
	}
	return fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)", table, cols, ph)
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL. Queries in
// this package never carry a literal ? inside a string.
func (d dialect) rebind(query string) string {
	if d.driver != types.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
