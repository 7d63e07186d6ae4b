package main

import (
	"fmt"
	"log"
	"strings"
)

// planMigration compares a desired predicate set against the current one and
// produces the ordered migration steps that close the gap on the target
// backend. Missing tables become CREATE TABLE steps carrying their columns,
// NOT NULL markers and primary key; tables already present get ADD COLUMN and
// constraint statements. Nothing is ever dropped: predicates are facts a
// schema must satisfy, not an exhaustive description.
func planMigration(desired, current []Predicate, target Backend) ([]MigrationStep, error) {
	if err := checkTypeConsistency(desired); err != nil {
		return nil, err
	}

	cur := indexPredicates(current)
	des := indexPredicates(desired)

	var steps []MigrationStep
	for _, table := range des.tableOrder {
		t := des.tables[table]
		if _, exists := cur.tables[table]; !exists {
			cmd, err := createTableDDL(target, t)
			if err != nil {
				return nil, err
			}
			steps = append(steps, MigrationStep{
				Label:    "create table " + t.name.String(),
				Commands: []string{cmd},
			})
			continue
		}

		cmds, err := alterTableDDL(target, t, cur.tables[table])
		if err != nil {
			return nil, err
		}
		if len(cmds) > 0 {
			steps = append(steps, MigrationStep{
				Label:    "alter table " + t.name.String(),
				Commands: cmds,
			})
		}
	}
	return steps, nil
}

// checkTypeConsistency rejects predicate sets asserting two different types
// for the same (table, column) pair.
func checkTypeConsistency(preds []Predicate) error {
	seen := make(map[string]*DataType)
	for _, p := range preds {
		if p.Kind != PredHasColumn {
			continue
		}
		key := p.Table.String() + "\x00" + p.Column
		if prev, ok := seen[key]; ok {
			if !prev.Equal(*p.Type) {
				return fmt.Errorf("contradictory types for %s.%s: %s vs %s",
					p.Table, p.Column, prev, p.Type)
			}
			continue
		}
		seen[key] = p.Type
	}
	return nil
}

// tableFacts gathers one table's predicates in their original order.
type tableFacts struct {
	name      TableName
	columns   []Predicate // PredHasColumn, in predicate order
	notNull   map[string]bool
	pkColumns []string
}

type predicateIndex struct {
	tableOrder []string
	tables     map[string]*tableFacts
}

func indexPredicates(preds []Predicate) *predicateIndex {
	idx := &predicateIndex{tables: make(map[string]*tableFacts)}
	get := func(t TableName) *tableFacts {
		key := t.String()
		tf, ok := idx.tables[key]
		if !ok {
			tf = &tableFacts{name: t, notNull: make(map[string]bool)}
			idx.tables[key] = tf
			idx.tableOrder = append(idx.tableOrder, key)
		}
		return tf
	}

	for _, p := range preds {
		switch p.Kind {
		case PredTableExists:
			get(p.Table)
		case PredHasColumn:
			tf := get(p.Table)
			tf.columns = append(tf.columns, p)
		case PredColumnConstraint:
			get(p.Table).notNull[p.Column] = true
		case PredHasPrimaryKey:
			get(p.Table).pkColumns = p.PKColumns
		}
	}
	return idx
}

// createTableDDL produces a single-statement CREATE TABLE for all known facts
// about a missing table.
func createTableDDL(b Backend, t *tableFacts) (string, error) {
	var defs []string
	for _, col := range t.columns {
		decl, err := b.RenderType(*col.Type)
		if err != nil {
			return "", fmt.Errorf("table %s column %s: %w", t.name, col.Column, err)
		}
		def := b.QuoteIdent(col.Column) + " " + decl
		if t.notNull[col.Column] && !col.Type.isSerial() {
			def += " " + b.NotNull()
		}
		defs = append(defs, def)
	}
	if len(t.pkColumns) > 0 {
		quoted := make([]string, len(t.pkColumns))
		for i, c := range t.pkColumns {
			quoted[i] = b.QuoteIdent(c)
		}
		defs = append(defs, "PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}
	if len(defs) == 0 {
		return fmt.Sprintf("CREATE TABLE %s ()", b.QualifyTable(t.name)), nil
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", b.QualifyTable(t.name), strings.Join(defs, ", ")), nil
}

// alterTableDDL produces the statements bringing an existing table up to the
// desired facts. Column type changes and primary-key changes are reported and
// skipped; rewriting live columns is outside what predicates can express
// safely.
func alterTableDDL(b Backend, want, have *tableFacts) ([]string, error) {
	haveCols := make(map[string]*DataType)
	for _, col := range have.columns {
		haveCols[col.Column] = col.Type
	}

	var cmds []string
	for _, col := range want.columns {
		existing, ok := haveCols[col.Column]
		if ok {
			if !existing.Equal(*col.Type) {
				log.Printf("  WARN: column %s.%s has type %s, want %s; type changes are not planned",
					want.name, col.Column, existing, col.Type)
			}
			continue
		}
		decl, err := b.RenderType(*col.Type)
		if err != nil {
			return nil, fmt.Errorf("table %s column %s: %w", want.name, col.Column, err)
		}
		cmd := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			b.QualifyTable(want.name), b.QuoteIdent(col.Column), decl)
		if want.notNull[col.Column] {
			cmd += " " + b.NotNull()
		}
		cmds = append(cmds, cmd)
	}

	// Existing columns missing a desired NOT NULL.
	for _, col := range have.columns {
		if want.notNull[col.Column] && !have.notNull[col.Column] {
			stmt, ok := b.AlterColumnSetNotNull(want.name, col.Column)
			if !ok {
				log.Printf("  WARN: %s cannot add NOT NULL to existing column %s.%s; skipped",
					b.Name(), want.name, col.Column)
				continue
			}
			cmds = append(cmds, stmt)
		}
	}

	if len(want.pkColumns) > 0 && len(have.pkColumns) == 0 {
		quoted := make([]string, len(want.pkColumns))
		for i, c := range want.pkColumns {
			quoted[i] = b.QuoteIdent(c)
		}
		cmds = append(cmds, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)",
			b.QualifyTable(want.name), strings.Join(quoted, ", ")))
	}
	return cmds, nil
}
