package main

import (
	"context"
	"database/sql"
	"fmt"
)

const pgDefaultSchema = "public"

// introspectPostgres reads pg_catalog into the ordered predicate sequence.
// Serial/identity columns are detected from structured catalog metadata
// (attidentity, attached sequences), never from DDL text.
func introspectPostgres(ctx context.Context, b Backend, db *sql.DB, schemaName string) ([]Predicate, error) {
	if schemaName == "" {
		schemaName = pgDefaultSchema
	}

	names, err := pgTableNames(ctx, db, schemaName)
	if err != nil {
		return nil, err
	}

	var preds []Predicate
	for _, name := range names {
		meta, err := pgTableMeta(ctx, db, schemaName, name)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		preds = append(preds, tablePredicates(b, meta)...)
	}
	return preds, nil
}

func pgTableNames(ctx context.Context, db *sql.DB, schemaName string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.relname
		 FROM pg_catalog.pg_class c
		 JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		 WHERE n.nspname = $1 AND c.relkind = 'r'
		 ORDER BY c.relname`,
		schemaName,
	)
	if err != nil {
		return nil, &ConnectionError{Op: "list postgres tables", Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &ConnectionError{Op: "scan postgres table name", Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &ConnectionError{Op: "list postgres tables", Err: err}
	}
	return names, nil
}

func pgTableMeta(ctx context.Context, db *sql.DB, schemaName, tableName string) (tableMeta, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT a.attname,
		        pg_catalog.format_type(a.atttypid, a.atttypmod),
		        a.attnum,
		        a.attnotnull,
		        a.attidentity <> ''
		          OR pg_catalog.pg_get_serial_sequence(format('%I.%I', $1::text, $2::text), a.attname) IS NOT NULL
		 FROM pg_catalog.pg_attribute a
		 JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
		 JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		 WHERE n.nspname = $1 AND c.relname = $2
		   AND a.attnum > 0 AND NOT a.attisdropped
		 ORDER BY a.attnum`,
		schemaName, tableName,
	)
	if err != nil {
		return tableMeta{}, &ConnectionError{Op: "read column info", Err: err}
	}
	defer rows.Close()

	table := TableName{Name: tableName}
	if schemaName != pgDefaultSchema {
		table.Schema = schemaName
	}

	meta := tableMeta{Table: table}
	for rows.Next() {
		var name, native string
		var ordinal int
		var notNull, serial bool
		if err := rows.Scan(&name, &native, &ordinal, &notNull, &serial); err != nil {
			return tableMeta{}, &ConnectionError{Op: "scan column info", Err: err}
		}
		meta.Columns = append(meta.Columns, columnMeta{
			Name:          name,
			NativeType:    native,
			Ordinal:       ordinal,
			NotNull:       notNull,
			AutoIncrement: serial,
		})
	}
	if err := rows.Err(); err != nil {
		return tableMeta{}, &ConnectionError{Op: "read column info", Err: err}
	}

	if err := pgMarkPrimaryKey(ctx, db, schemaName, tableName, meta.Columns); err != nil {
		return tableMeta{}, err
	}
	return meta, nil
}

// pgMarkPrimaryKey fills PKOrdinal from pg_index, preserving key order.
func pgMarkPrimaryKey(ctx context.Context, db *sql.DB, schemaName, tableName string, cols []columnMeta) error {
	rows, err := db.QueryContext(ctx,
		`SELECT a.attname, k.ord
		 FROM pg_catalog.pg_index i
		 JOIN pg_catalog.pg_class c ON c.oid = i.indrelid
		 JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		 CROSS JOIN LATERAL unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord)
		 JOIN pg_catalog.pg_attribute a ON a.attrelid = c.oid AND a.attnum = k.attnum
		 WHERE n.nspname = $1 AND c.relname = $2 AND i.indisprimary
		 ORDER BY k.ord`,
		schemaName, tableName,
	)
	if err != nil {
		return &ConnectionError{Op: "read primary key", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var ord int
		if err := rows.Scan(&name, &ord); err != nil {
			return &ConnectionError{Op: "scan primary key", Err: err}
		}
		for i := range cols {
			if cols[i].Name == name {
				cols[i].PKOrdinal = ord
			}
		}
	}
	if err := rows.Err(); err != nil {
		return &ConnectionError{Op: "read primary key", Err: err}
	}
	return nil
}
