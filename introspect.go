package main

import (
	"slices"
)

// columnMeta is one immutable catalog row describing a column, in the shape
// every backend's catalog can produce.
type columnMeta struct {
	Name          string
	NativeType    string
	Ordinal       int
	NotNull       bool
	AutoIncrement bool
	PKOrdinal     int // position within the primary key, 0 when not a member
}

// tableMeta is the introspected raw material for one table.
type tableMeta struct {
	Table   TableName
	Columns []columnMeta
}

// tablePredicates turns one table's catalog rows into its ordered predicate
// sequence: existence, primary key, columns in ordinal order, then NOT NULL
// constraints in ordinal order. An autoincrement integer primary-key column
// is reported as the backend's dedicated serial type instead of a plain
// integer. The same catalog rows always produce the same sequence, so
// repeated introspection of an unchanged schema diffs clean.
func tablePredicates(b Backend, t tableMeta) []Predicate {
	cols := slices.Clone(t.Columns)
	slices.SortStableFunc(cols, func(a, b columnMeta) int { return a.Ordinal - b.Ordinal })

	preds := []Predicate{tableExists(t.Table)}

	var pkCols []columnMeta
	for _, c := range cols {
		if c.PKOrdinal > 0 {
			pkCols = append(pkCols, c)
		}
	}
	if len(pkCols) > 0 {
		slices.SortStableFunc(pkCols, func(a, b columnMeta) int { return a.PKOrdinal - b.PKOrdinal })
		names := make([]string, len(pkCols))
		for i, c := range pkCols {
			names[i] = c.Name
		}
		preds = append(preds, hasPrimaryKey(t.Table, names))
	}

	for _, c := range cols {
		dt := b.ParseNativeType(c.NativeType)
		if c.AutoIncrement && c.PKOrdinal > 0 && isIntegerKind(dt.Kind) {
			dt = b.SerialType(dt.Kind)
		}
		preds = append(preds, hasColumn(t.Table, c.Name, dt))
	}

	for _, c := range cols {
		if c.NotNull {
			preds = append(preds, columnConstraint(t.Table, c.Name, b.NotNull()))
		}
	}
	return preds
}

func isIntegerKind(k TypeKind) bool {
	switch k {
	case KindInt, KindSmallInt, KindBigInt:
		return true
	}
	return false
}
