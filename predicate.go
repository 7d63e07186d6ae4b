package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// PredicateKind discriminates the closed set of schema facts.
type PredicateKind string

const (
	PredTableExists      PredicateKind = "table"
	PredHasColumn        PredicateKind = "column"
	PredColumnConstraint PredicateKind = "constraint"
	PredHasPrimaryKey    PredicateKind = "primary-key"

	// PredOpaque carries a predicate document written by a future tool
	// version. It is never produced by introspection; it exists so persisted
	// migrations survive a round trip through an older decoder.
	PredOpaque PredicateKind = "opaque"
)

// TableName is a possibly schema-qualified table name. An empty Schema means
// the backend's default schema.
type TableName struct {
	Schema string
	Name   string
}

func (t TableName) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Predicate is one atomic, verifiable fact about a schema's structure.
// Which payload fields are meaningful depends on Kind:
//
//	PredTableExists      Table
//	PredHasColumn        Table, Column, Type
//	PredColumnConstraint Table, Column, Constraint
//	PredHasPrimaryKey    Table, PKColumns (non-empty, in key-ordinal order)
//	PredOpaque           Raw (original document, re-encoded verbatim)
type Predicate struct {
	Kind       PredicateKind
	Table      TableName
	Column     string
	Type       *DataType
	Constraint string
	PKColumns  []string
	Raw        json.RawMessage
}

func tableExists(t TableName) Predicate {
	return Predicate{Kind: PredTableExists, Table: t}
}

func hasColumn(t TableName, column string, dt DataType) Predicate {
	return Predicate{Kind: PredHasColumn, Table: t, Column: column, Type: &dt}
}

func columnConstraint(t TableName, column, constraint string) Predicate {
	return Predicate{Kind: PredColumnConstraint, Table: t, Column: column, Constraint: constraint}
}

func hasPrimaryKey(t TableName, columns []string) Predicate {
	return Predicate{Kind: PredHasPrimaryKey, Table: t, PKColumns: columns}
}

// Equal reports structural equality of two predicates.
func (p Predicate) Equal(o Predicate) bool {
	if p.Kind != o.Kind || p.Table != o.Table || p.Column != o.Column || p.Constraint != o.Constraint {
		return false
	}
	if (p.Type == nil) != (o.Type == nil) {
		return false
	}
	if p.Type != nil && !p.Type.Equal(*o.Type) {
		return false
	}
	return slices.Equal(p.PKColumns, o.PKColumns) && bytes.Equal(p.Raw, o.Raw)
}

func (p Predicate) String() string {
	switch p.Kind {
	case PredTableExists:
		return fmt.Sprintf("table %s exists", p.Table)
	case PredHasColumn:
		return fmt.Sprintf("table %s has column %s %s", p.Table, p.Column, p.Type)
	case PredColumnConstraint:
		return fmt.Sprintf("table %s column %s has constraint %q", p.Table, p.Column, p.Constraint)
	case PredHasPrimaryKey:
		return fmt.Sprintf("table %s has primary key (%s)", p.Table, strings.Join(p.PKColumns, ", "))
	case PredOpaque:
		return fmt.Sprintf("opaque predicate %s", string(p.Raw))
	}
	return fmt.Sprintf("unknown predicate %q", p.Kind)
}

// predicatesEqual compares two ordered predicate sequences.
func predicatesEqual(a, b []Predicate) bool {
	return slices.EqualFunc(a, b, Predicate.Equal)
}

// MigrationStep is a named, ordered group of DDL commands applied as one
// logical unit by the executor.
type MigrationStep struct {
	Label    string   `json:"label"`
	Commands []string `json:"commands"`
}
