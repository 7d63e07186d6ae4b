package main

import "testing"

func TestTablePredicatesOrdering(t *testing.T) {
	pg, err := newBackend("postgres")
	if err != nil {
		t.Fatal(err)
	}
	users := TableName{Name: "users"}

	// Catalog rows deliberately shuffled: ordering must come from the
	// ordinals, not from the slice.
	meta := tableMeta{
		Table: users,
		Columns: []columnMeta{
			{Name: "name", NativeType: "varchar(150)", Ordinal: 2, NotNull: true},
			{Name: "id", NativeType: "bigint", Ordinal: 1, NotNull: true, AutoIncrement: true, PKOrdinal: 1},
			{Name: "bio", NativeType: "text", Ordinal: 3},
		},
	}

	want := []Predicate{
		tableExists(users),
		hasPrimaryKey(users, []string{"id"}),
		hasColumn(users, "id", DataType{Kind: KindBigSerial}),
		hasColumn(users, "name", DataType{Kind: KindVarChar, Length: int64Ptr(150)}),
		hasColumn(users, "bio", DataType{Kind: KindText}),
		columnConstraint(users, "id", "NOT NULL"),
		columnConstraint(users, "name", "NOT NULL"),
	}

	got := tablePredicates(pg, meta)
	if !predicatesEqual(got, want) {
		t.Fatalf("predicate sequence:\n got %v\nwant %v", got, want)
	}

	// Same rows, same sequence.
	again := tablePredicates(pg, meta)
	if !predicatesEqual(got, again) {
		t.Errorf("repeated introspection differed:\n%v\nvs\n%v", got, again)
	}
}

func TestTablePredicatesCompositeKey(t *testing.T) {
	pg, err := newBackend("postgres")
	if err != nil {
		t.Fatal(err)
	}
	events := TableName{Schema: "audit", Name: "events"}
	meta := tableMeta{
		Table: events,
		Columns: []columnMeta{
			{Name: "day", NativeType: "date", Ordinal: 1, NotNull: true, PKOrdinal: 2},
			{Name: "seq", NativeType: "int", Ordinal: 2, NotNull: true, PKOrdinal: 1},
		},
	}
	got := tablePredicates(pg, meta)
	// Key columns follow key order, not column order.
	want := hasPrimaryKey(events, []string{"seq", "day"})
	if len(got) < 2 || !got[1].Equal(want) {
		t.Fatalf("got %v, want second predicate %v", got, want)
	}
}

func TestTablePredicatesSerialRules(t *testing.T) {
	tests := []struct {
		backend string
		native  string
		col     columnMeta
		want    DataType
	}{
		// Autoincrement without key membership stays a plain integer.
		{"postgres", "int", columnMeta{Name: "n", NativeType: "int", Ordinal: 1, AutoIncrement: true}, DataType{Kind: KindInt}},
		// Autoincrement over a non-integer type is left alone.
		{"postgres", "varchar(10)", columnMeta{Name: "n", NativeType: "varchar(10)", Ordinal: 1, AutoIncrement: true, PKOrdinal: 1}, DataType{Kind: KindVarChar, Length: int64Ptr(10)}},
		{"postgres", "smallint", columnMeta{Name: "n", NativeType: "smallint", Ordinal: 1, AutoIncrement: true, PKOrdinal: 1}, DataType{Kind: KindSmallSerial}},
		{"postgres", "int", columnMeta{Name: "n", NativeType: "int", Ordinal: 1, AutoIncrement: true, PKOrdinal: 1}, DataType{Kind: KindSerial}},
		{"mysql", "bigint", columnMeta{Name: "n", NativeType: "bigint", Ordinal: 1, AutoIncrement: true, PKOrdinal: 1}, DataType{Kind: KindBigSerial}},
		// SQLite rowid aliases are always 64-bit.
		{"sqlite", "integer", columnMeta{Name: "n", NativeType: "integer", Ordinal: 1, AutoIncrement: true, PKOrdinal: 1}, DataType{Kind: KindBigSerial}},
	}
	for _, tt := range tests {
		t.Run(tt.backend+" "+tt.native, func(t *testing.T) {
			b, err := newBackend(tt.backend)
			if err != nil {
				t.Fatal(err)
			}
			tbl := TableName{Name: "t"}
			preds := tablePredicates(b, tableMeta{Table: tbl, Columns: []columnMeta{tt.col}})
			var got *DataType
			for _, p := range preds {
				if p.Kind == PredHasColumn && p.Column == "n" {
					got = p.Type
				}
			}
			if got == nil || !got.Equal(tt.want) {
				t.Errorf("column type = %v, want %s", got, tt.want)
			}
		})
	}
}
