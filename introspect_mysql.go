package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// introspectMySQL reads INFORMATION_SCHEMA into the ordered predicate
// sequence. schemaName selects the database; empty means the connection's
// current database.
func introspectMySQL(ctx context.Context, b Backend, db *sql.DB, schemaName string) ([]Predicate, error) {
	if schemaName == "" {
		var current sql.NullString
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&current); err != nil {
			return nil, &ConnectionError{Op: "resolve current database", Err: err}
		}
		if !current.Valid || current.String == "" {
			return nil, fmt.Errorf("no database selected; set schema in the config or the DSN")
		}
		schemaName = current.String
	}

	names, err := mysqlTableNames(ctx, db, schemaName)
	if err != nil {
		return nil, err
	}

	var preds []Predicate
	for _, name := range names {
		meta, err := mysqlTableMeta(ctx, db, schemaName, name)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		preds = append(preds, tablePredicates(b, meta)...)
	}
	return preds, nil
}

func mysqlTableNames(ctx context.Context, db *sql.DB, dbName string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		 ORDER BY TABLE_NAME`,
		dbName,
	)
	if err != nil {
		return nil, &ConnectionError{Op: "list mysql tables", Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &ConnectionError{Op: "scan mysql table name", Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &ConnectionError{Op: "list mysql tables", Err: err}
	}
	return names, nil
}

func mysqlTableMeta(ctx context.Context, db *sql.DB, dbName, tableName string) (tableMeta, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT COLUMN_NAME, COLUMN_TYPE, ORDINAL_POSITION, IS_NULLABLE, EXTRA
		 FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		 ORDER BY ORDINAL_POSITION`,
		dbName, tableName,
	)
	if err != nil {
		return tableMeta{}, &ConnectionError{Op: "read column info", Err: err}
	}
	defer rows.Close()

	meta := tableMeta{Table: TableName{Name: tableName}}
	for rows.Next() {
		var name, colType, nullable, extra string
		var ordinal int
		if err := rows.Scan(&name, &colType, &ordinal, &nullable, &extra); err != nil {
			return tableMeta{}, &ConnectionError{Op: "scan column info", Err: err}
		}
		meta.Columns = append(meta.Columns, columnMeta{
			Name:          name,
			NativeType:    colType,
			Ordinal:       ordinal,
			NotNull:       nullable == "NO",
			AutoIncrement: strings.Contains(strings.ToLower(extra), "auto_increment"),
		})
	}
	if err := rows.Err(); err != nil {
		return tableMeta{}, &ConnectionError{Op: "read column info", Err: err}
	}

	if err := mysqlMarkPrimaryKey(ctx, db, dbName, tableName, meta.Columns); err != nil {
		return tableMeta{}, err
	}
	return meta, nil
}

// mysqlMarkPrimaryKey fills PKOrdinal from the PRIMARY index statistics.
func mysqlMarkPrimaryKey(ctx context.Context, db *sql.DB, dbName, tableName string, cols []columnMeta) error {
	rows, err := db.QueryContext(ctx,
		`SELECT COLUMN_NAME, SEQ_IN_INDEX
		 FROM INFORMATION_SCHEMA.STATISTICS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND INDEX_NAME = 'PRIMARY'
		 ORDER BY SEQ_IN_INDEX`,
		dbName, tableName,
	)
	if err != nil {
		return &ConnectionError{Op: "read primary key", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var seq int
		if err := rows.Scan(&name, &seq); err != nil {
			return &ConnectionError{Op: "scan primary key", Err: err}
		}
		for i := range cols {
			if cols[i].Name == name {
				cols[i].PKOrdinal = seq
			}
		}
	}
	if err := rows.Err(); err != nil {
		return &ConnectionError{Op: "read primary key", Err: err}
	}
	return nil
}
