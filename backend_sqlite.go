package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

type sqliteBackend struct{}

func (s *sqliteBackend) ID() string   { return "sqlite" }
func (s *sqliteBackend) Name() string { return "SQLite" }

func (s *sqliteBackend) ParseNativeType(native string) DataType {
	return parseDataType(native)
}

// RenderType leans on SQLite's permissive type grammar: any declared name is
// accepted and only its affinity matters, so most kinds keep their canonical
// spelling.
func (s *sqliteBackend) RenderType(dt DataType) (string, error) {
	switch dt.Kind {
	case KindChar:
		return withLength("char", dt.Length), nil
	case KindVarChar:
		return withLength("varchar", dt.Length), nil
	case KindNChar:
		return withLength("nchar", dt.Length), nil
	case KindNVarChar:
		return withLength("nvarchar", dt.Length), nil
	case KindBit:
		return withLength("binary", dt.Length), nil
	case KindVarBit:
		return withLength("varbinary", dt.Length), nil
	case KindNumeric:
		return withPrecScale("numeric", dt.Precision, dt.Scale), nil
	case KindDecimal:
		return withPrecScale("decimal", dt.Precision, dt.Scale), nil
	case KindFloat:
		return withLength("float", dt.Precision), nil
	case KindDouble:
		return "double precision", nil
	case KindReal:
		return "real", nil
	case KindInt:
		return "integer", nil
	case KindSmallInt:
		return "smallint", nil
	case KindBigInt:
		return "bigint", nil
	case KindSmallSerial, KindSerial, KindBigSerial:
		// Rowid alias; autoincrement behavior comes from INTEGER PRIMARY KEY.
		return "integer", nil
	case KindBoolean:
		return "boolean", nil
	case KindDate:
		return "date", nil
	case KindTime:
		return withLength("time", dt.Precision), nil
	case KindTimestamp:
		return withLength("timestamp", dt.Precision), nil
	case KindText:
		return "text", nil
	case KindBlob:
		return "blob", nil
	case KindCustom:
		return renderCustom(dt)
	}
	return "", fmt.Errorf("unknown canonical type kind %q", dt.Kind)
}

func (s *sqliteBackend) CanonicalType(dt DataType) (DataType, bool) {
	switch dt.Kind {
	case KindNChar:
		return DataType{Kind: KindChar, Length: dt.Length}, true
	case KindNVarChar:
		return DataType{Kind: KindVarChar, Length: dt.Length}, true
	case KindSmallSerial, KindSerial, KindBigSerial:
		// Rowids are 64-bit.
		return DataType{Kind: KindBigSerial}, true
	}
	return dt, true
}

// SerialType ignores the integer width: an autoincrement primary key is
// always a 64-bit rowid alias.
func (s *sqliteBackend) SerialType(TypeKind) DataType {
	return DataType{Kind: KindBigSerial}
}

func (s *sqliteBackend) NotNull() string { return "NOT NULL" }

func (s *sqliteBackend) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *sqliteBackend) QualifyTable(t TableName) string {
	if t.Schema == "" {
		return s.QuoteIdent(t.Name)
	}
	return s.QuoteIdent(t.Schema) + "." + s.QuoteIdent(t.Name)
}

// AlterColumnSetNotNull reports unsupported: SQLite cannot alter column
// constraints without a table rebuild.
func (s *sqliteBackend) AlterColumnSetNotNull(TableName, string) (string, bool) {
	return "", false
}

func (s *sqliteBackend) Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (s *sqliteBackend) Introspect(ctx context.Context, db *sql.DB, schemaName string) ([]Predicate, error) {
	return introspectSQLite(ctx, s, db, schemaName)
}

// sqliteReadOnlyURI rewrites a DSN to open the database read-only, the way
// introspection-only access should. In-memory databases are rejected since
// every sql.Open would see a different empty database.
func sqliteReadOnlyURI(dsn string) (string, error) {
	if dsn == ":memory:" || dsn == "file::memory:" || strings.Contains(dsn, "mode=memory") {
		return "", fmt.Errorf("in-memory SQLite databases cannot be introspected by path")
	}
	if !strings.HasPrefix(dsn, "file:") {
		return "file:" + dsn + "?mode=ro", nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse sqlite URI: %w", err)
	}
	q := u.Query()
	q.Set("mode", "ro")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
