package pgsource

import (
	"fmt"
	"strings"
)

const columnsSQL = `SELECT column_name
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteColumns quotes each column name in the slice.
func quoteColumns(cols []string) []string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdentifier(col)
	}
	return quoted
}

// selectSQL builds the snapshot query. Every column is read as text and rows
// are ordered by the key columns, or by all columns for keyless tables.
func selectSQL(spec TableSpec, columns []string) string {
	quoted := quoteColumns(columns)

	selected := make([]string, len(quoted))
	for i, q := range quoted {
		selected[i] = q + "::text"
	}

	order := quoted
	if len(spec.Key) > 0 {
		order = quoteColumns(spec.Key)
	}

	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(selected, ", "),
		spec.qualifiedName(),
		strings.Join(order, ", "),
	)
}

// updateSQL builds the statement that writes one cell. $1 is the new value,
// $2.. are the key values in key order.
func updateSQL(spec TableSpec, column string) string {
	conditions := make([]string, len(spec.Key))
	for i, k := range spec.Key {
		conditions[i] = fmt.Sprintf("%s::text = $%d", quoteIdentifier(k), i+2)
	}

	return fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s",
		spec.qualifiedName(),
		quoteIdentifier(column),
		strings.Join(conditions, " AND "),
	)
}
