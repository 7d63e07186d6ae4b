package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// introspectSQLite reads the sqlite_master catalog and per-table PRAGMAs into
// the ordered predicate sequence. The schema qualifier is unused: a SQLite
// connection sees exactly one database.
func introspectSQLite(ctx context.Context, b Backend, db *sql.DB, _ string) ([]Predicate, error) {
	names, err := sqliteTableNames(ctx, db)
	if err != nil {
		return nil, err
	}

	var preds []Predicate
	for _, name := range names {
		meta, err := sqliteTableMeta(ctx, db, name)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		preds = append(preds, tablePredicates(b, meta)...)
	}
	return preds, nil
}

func sqliteTableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, &ConnectionError{Op: "list sqlite tables", Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &ConnectionError{Op: "scan sqlite table name", Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &ConnectionError{Op: "list sqlite tables", Err: err}
	}
	return names, nil
}

func sqliteTableMeta(ctx context.Context, db *sql.DB, tableName string) (tableMeta, error) {
	quoted := strings.ReplaceAll(tableName, `"`, `""`)
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info("%s")`, quoted))
	if err != nil {
		return tableMeta{}, &ConnectionError{Op: "read column info", Err: err}
	}
	defer rows.Close()

	meta := tableMeta{Table: TableName{Name: tableName}}
	for rows.Next() {
		var cid, notnull, pk int
		var name, colType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notnull, &dflt, &pk); err != nil {
			return tableMeta{}, &ConnectionError{Op: "scan column info", Err: err}
		}
		meta.Columns = append(meta.Columns, columnMeta{
			Name:       name,
			NativeType: colType,
			Ordinal:    cid + 1,
			NotNull:    notnull != 0,
			PKOrdinal:  pk,
		})
	}
	if err := rows.Err(); err != nil {
		return tableMeta{}, &ConnectionError{Op: "read column info", Err: err}
	}

	markSQLiteAutoIncrement(ctx, db, tableName, meta.Columns)
	return meta, nil
}

// markSQLiteAutoIncrement flags autoincrementing primary-key columns. SQLite
// exposes no structured catalog flag for this, so two rules apply: a
// single-column INTEGER primary key is a rowid alias (autoincrementing by
// nature), and an explicit AUTOINCREMENT keyword is scraped from the table's
// creation DDL in sqlite_master.
func markSQLiteAutoIncrement(ctx context.Context, db *sql.DB, tableName string, cols []columnMeta) {
	pkCount := 0
	for i := range cols {
		if cols[i].PKOrdinal > 0 {
			pkCount++
		}
	}
	if pkCount == 1 {
		for i := range cols {
			if cols[i].PKOrdinal > 0 && strings.EqualFold(strings.TrimSpace(cols[i].NativeType), "integer") {
				cols[i].AutoIncrement = true
			}
		}
	}

	var createSQL sql.NullString
	err := db.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE type='table' AND name=?", tableName,
	).Scan(&createSQL)
	if err != nil || !createSQL.Valid {
		return
	}
	for _, name := range autoIncrementColumns(createSQL.String) {
		for i := range cols {
			if cols[i].Name == name {
				cols[i].AutoIncrement = true
			}
		}
	}
}

// autoIncrementColumns scrapes column names declared INTEGER PRIMARY KEY
// AUTOINCREMENT out of raw creation DDL. Formatting and quoting variations
// can slip past this; the rowid-alias rule above covers the common case
// without touching DDL text.
func autoIncrementColumns(createSQL string) []string {
	upper := strings.ToUpper(createSQL)
	var found []string
	for from := 0; ; {
		idx := strings.Index(upper[from:], "AUTOINCREMENT")
		if idx < 0 {
			break
		}
		idx += from
		from = idx + len("AUTOINCREMENT")

		// Walk back over the INTEGER PRIMARY KEY keywords to the column name.
		tokens := strings.Fields(createSQL[:idx])
		for i := len(tokens) - 1; i >= 0; i-- {
			switch strings.ToUpper(tokens[i]) {
			case "INTEGER", "INT", "PRIMARY", "KEY", "NOT", "NULL":
				continue
			}
			name := strings.Trim(tokens[i], "\",(`[]")
			if name != "" {
				found = append(found, name)
			}
			break
		}
	}
	return found
}
