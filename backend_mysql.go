package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

type mysqlBackend struct{}

func (m *mysqlBackend) ID() string   { return "mysql" }
func (m *mysqlBackend) Name() string { return "MySQL" }

func (m *mysqlBackend) ParseNativeType(native string) DataType {
	return parseDataType(native)
}

func (m *mysqlBackend) RenderType(dt DataType) (string, error) {
	switch dt.Kind {
	case KindChar:
		return withCharset(withLength("char", dt.Length), dt.Charset), nil
	case KindVarChar:
		return withCharset(withLength("varchar", dt.Length), dt.Charset), nil
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
		return "int", nil
	case KindSmallInt:
		return "smallint", nil
	case KindBigInt:
		return "bigint", nil
	case KindSmallSerial, KindSerial, KindBigSerial:
		// MySQL's only serial spelling; SERIAL is BIGINT UNSIGNED AUTO_INCREMENT.
		return "serial", nil
	case KindBoolean:
		return "boolean", nil
	case KindDate:
		return "date", nil
	case KindTime:
		// MySQL stores no zone; the timezone flag has no native spelling.
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

func (m *mysqlBackend) CanonicalType(dt DataType) (DataType, bool) {
	switch dt.Kind {
	case KindReal:
		// MySQL treats REAL as DOUBLE unless REAL_AS_FLOAT is set.
		return DataType{Kind: KindDouble}, true
	case KindSmallSerial, KindSerial, KindBigSerial:
		return DataType{Kind: KindBigSerial}, true
	}
	return dt, true
}

func (m *mysqlBackend) SerialType(base TypeKind) DataType {
	switch base {
	case KindSmallInt:
		return DataType{Kind: KindSmallSerial}
	case KindBigInt:
		return DataType{Kind: KindBigSerial}
	default:
		return DataType{Kind: KindSerial}
	}
}

func (m *mysqlBackend) NotNull() string { return "NOT NULL" }

func (m *mysqlBackend) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (m *mysqlBackend) QualifyTable(t TableName) string {
	if t.Schema == "" {
		return m.QuoteIdent(t.Name)
	}
	return m.QuoteIdent(t.Schema) + "." + m.QuoteIdent(t.Name)
}

// AlterColumnSetNotNull reports unsupported: MySQL's MODIFY requires the full
// column definition, which a constraint predicate alone does not carry.
func (m *mysqlBackend) AlterColumnSetNotNull(TableName, string) (string, bool) {
	return "", false
}

func (m *mysqlBackend) Open(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (m *mysqlBackend) Introspect(ctx context.Context, db *sql.DB, schemaName string) ([]Predicate, error) {
	return introspectMySQL(ctx, m, db, schemaName)
}

func withCharset(decl, charset string) string {
	if charset == "" {
		return decl
	}
	return decl + " character set " + charset
}
