package main

import (
	"context"
	"database/sql"
	"fmt"
)

// Backend bundles the dialect-specific capabilities: parsing and rendering
// native type declarations, constraint literals, identifier quoting, and
// catalog introspection. One implementation per supported engine, selected by
// an explicit identifier in newBackend.
type Backend interface {
	// ID returns the canonical backend identifier ("postgres", "mysql", "sqlite").
	ID() string

	// Name returns a human-readable engine name for logging.
	Name() string

	// ParseNativeType parses a native type declaration. Total: unrecognized
	// declarations come back as custom types.
	ParseNativeType(native string) DataType

	// RenderType renders a canonical type as a native declaration. Fails only
	// for opaque custom types that carry no native spelling.
	RenderType(dt DataType) (string, error)

	// CanonicalType maps a canonical type to this backend's preferred
	// equivalent. Reports false when the type has no meaningful equivalent.
	CanonicalType(dt DataType) (DataType, bool)

	// SerialType returns the dedicated autoincrement type this backend uses
	// for an autoincrement integer primary key of the given integer kind.
	SerialType(base TypeKind) DataType

	// NotNull returns this backend's NOT NULL constraint literal.
	NotNull() string

	// QuoteIdent quotes an identifier for use in DDL.
	QuoteIdent(name string) string

	// QualifyTable renders a possibly schema-qualified table reference.
	QualifyTable(t TableName) string

	// AlterColumnSetNotNull renders a statement adding a NOT NULL
	// constraint to an existing column. Reports false when the dialect cannot
	// express it as a standalone statement.
	AlterColumnSetNotNull(t TableName, column string) (string, bool)

	// Open opens a database handle with engine-specific connection options.
	Open(dsn string) (*sql.DB, error)

	// Introspect reads the live catalog and returns the ordered predicate
	// sequence describing the current schema. schemaName selects the
	// database/schema to read; empty means the backend default.
	Introspect(ctx context.Context, db *sql.DB, schemaName string) ([]Predicate, error)
}

// newBackend returns the Backend implementation for the given identifier.
func newBackend(id string) (Backend, error) {
	switch id {
	case "postgres", "postgresql", "pg":
		return &postgresBackend{}, nil
	case "mysql", "mariadb":
		return &mysqlBackend{}, nil
	case "sqlite", "sqlite3":
		return &sqliteBackend{}, nil
	default:
		return nil, fmt.Errorf("unsupported backend %q (must be postgres, mysql or sqlite)", id)
	}
}

// connect opens and pings a backend, wrapping failures as connection errors.
func connect(ctx context.Context, b Backend, dsn string) (*sql.DB, error) {
	db, err := b.Open(dsn)
	if err != nil {
		return nil, &ConnectionError{Op: "open " + b.Name(), Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{Op: "ping " + b.Name(), Err: err}
	}
	return db, nil
}
