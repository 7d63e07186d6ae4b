package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver named "pgx"
)

type postgresBackend struct{}

func (p *postgresBackend) ID() string   { return "postgres" }
func (p *postgresBackend) Name() string { return "PostgreSQL" }

func (p *postgresBackend) ParseNativeType(native string) DataType {
	return parseDataType(native)
}

func (p *postgresBackend) RenderType(dt DataType) (string, error) {
	switch dt.Kind {
	case KindChar:
		return withLength("char", dt.Length), nil
	case KindVarChar:
		return withLength("varchar", dt.Length), nil
	case KindNChar:
		return withLength("national char", dt.Length), nil
	case KindNVarChar:
		return withLength("national char varying", dt.Length), nil
	case KindBit:
		return withLength("bit", dt.Length), nil
	case KindVarBit:
		return withLength("varbit", dt.Length), nil
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
	case KindSmallSerial:
		return "smallserial", nil
	case KindSerial:
		return "serial", nil
	case KindBigSerial:
		return "bigserial", nil
	case KindBoolean:
		return "boolean", nil
	case KindDate:
		return "date", nil
	case KindTime:
		return timeDecl("time", dt), nil
	case KindTimestamp:
		return timeDecl("timestamp", dt), nil
	case KindText:
		return "text", nil
	case KindBlob:
		return "bytea", nil
	case KindCustom:
		return renderCustom(dt)
	}
	return "", fmt.Errorf("unknown canonical type kind %q", dt.Kind)
}

// CanonicalType is the identity for PostgreSQL: every canonical type has a
// direct representation.
func (p *postgresBackend) CanonicalType(dt DataType) (DataType, bool) {
	return dt, true
}

func (p *postgresBackend) SerialType(base TypeKind) DataType {
	switch base {
	case KindSmallInt:
		return DataType{Kind: KindSmallSerial}
	case KindBigInt:
		return DataType{Kind: KindBigSerial}
	default:
		return DataType{Kind: KindSerial}
	}
}

func (p *postgresBackend) NotNull() string { return "NOT NULL" }

func (p *postgresBackend) QuoteIdent(name string) string { return pgIdent(name) }

func (p *postgresBackend) QualifyTable(t TableName) string {
	if t.Schema == "" {
		return pgIdent(t.Name)
	}
	return pgIdent(t.Schema) + "." + pgIdent(t.Name)
}

func (p *postgresBackend) AlterColumnSetNotNull(t TableName, column string) (string, bool) {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL",
		p.QualifyTable(t), pgIdent(column)), true
}

func (p *postgresBackend) Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (p *postgresBackend) Introspect(ctx context.Context, db *sql.DB, schemaName string) ([]Predicate, error) {
	return introspectPostgres(ctx, p, db, schemaName)
}

// pgReservedWords are PostgreSQL reserved words that must be quoted as identifiers.
var pgReservedWords = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "authorization": true, "between": true,
	"binary": true, "both": true, "case": true, "cast": true, "check": true,
	"collate": true, "column": true, "constraint": true, "create": true, "cross": true,
	"current_date": true, "current_role": true, "current_time": true,
	"current_timestamp": true, "current_user": true, "default": true, "deferrable": true,
	"desc": true, "distinct": true, "do": true, "else": true, "end": true, "except": true,
	"false": true, "fetch": true, "for": true, "foreign": true, "freeze": true,
	"from": true, "full": true, "grant": true, "group": true, "having": true,
	"ilike": true, "in": true, "initially": true, "inner": true, "intersect": true,
	"into": true, "is": true, "isnull": true, "join": true, "lateral": true,
	"leading": true, "left": true, "like": true, "limit": true, "localtime": true,
	"localtimestamp": true, "natural": true, "not": true, "notnull": true, "null": true,
	"offset": true, "on": true, "only": true, "or": true, "order": true, "outer": true,
	"overlaps": true, "placing": true, "primary": true, "references": true,
	"returning": true, "right": true, "select": true, "session_user": true,
	"similar": true, "some": true, "symmetric": true, "table": true, "then": true,
	"to": true, "trailing": true, "true": true, "union": true, "unique": true,
	"user": true, "using": true, "variadic": true, "verbose": true, "when": true,
	"where": true, "window": true, "with": true,
}

// pgNeedsQuoting reports whether a PG identifier needs quoting beyond
// reserved-word checks (e.g. contains hyphens, spaces, uppercase, etc.).
func pgNeedsQuoting(name string) bool {
	for i, r := range name {
		if r >= 'a' && r <= 'z' || r == '_' {
			continue
		}
		if i > 0 && (r >= '0' && r <= '9' || r == '$') {
			continue
		}
		return true
	}
	return false
}

// pgIdent returns a PG-safe identifier, quoting reserved words and names
// that contain characters invalid in unquoted identifiers.
func pgIdent(name string) string {
	if pgReservedWords[name] || pgNeedsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// --- shared rendering helpers ---

func withLength(name string, length *int64) string {
	if length == nil {
		return name
	}
	return fmt.Sprintf("%s(%d)", name, *length)
}

func withPrecScale(name string, prec, scale *int64) string {
	switch {
	case prec != nil && scale != nil:
		return fmt.Sprintf("%s(%d,%d)", name, *prec, *scale)
	case prec != nil:
		return fmt.Sprintf("%s(%d)", name, *prec)
	}
	return name
}

func timeDecl(name string, dt DataType) string {
	decl := withLength(name, dt.Precision)
	if dt.WithTimezone {
		decl += " with time zone"
	}
	return decl
}

func renderCustom(dt DataType) (string, error) {
	if dt.CustomName == "" {
		return "", fmt.Errorf("custom type %s has no native declaration", string(dt.CustomRaw))
	}
	return dt.CustomName, nil
}
