package main

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T, ddl ...string) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}

func TestIntrospectSQLite(t *testing.T) {
	db := openTestDB(t,
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name VARCHAR(150) NOT NULL,
			bio TEXT
		)`,
	)
	b, err := newBackend("sqlite")
	if err != nil {
		t.Fatal(err)
	}

	got, err := introspectSQLite(context.Background(), b, db, "")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}

	users := TableName{Name: "users"}
	want := []Predicate{
		tableExists(users),
		hasPrimaryKey(users, []string{"id"}),
		hasColumn(users, "id", DataType{Kind: KindBigSerial}),
		hasColumn(users, "name", DataType{Kind: KindVarChar, Length: int64Ptr(150)}),
		hasColumn(users, "bio", DataType{Kind: KindText}),
		columnConstraint(users, "name", "NOT NULL"),
	}
	if !predicatesEqual(got, want) {
		t.Fatalf("predicate sequence:\n got %v\nwant %v", got, want)
	}

	again, err := introspectSQLite(context.Background(), b, db, "")
	if err != nil {
		t.Fatalf("second introspect: %v", err)
	}
	if !predicatesEqual(got, again) {
		t.Errorf("unchanged schema introspected differently:\n%v\nvs\n%v", got, again)
	}
}

func TestIntrospectSQLiteTableOrder(t *testing.T) {
	db := openTestDB(t,
		`CREATE TABLE zebra (n INT)`,
		`CREATE TABLE apple (n INT)`,
		`CREATE TABLE mango (n INT)`,
	)
	b, err := newBackend("sqlite")
	if err != nil {
		t.Fatal(err)
	}
	preds, err := introspectSQLite(context.Background(), b, db, "")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	var tables []string
	for _, p := range preds {
		if p.Kind == PredTableExists {
			tables = append(tables, p.Table.Name)
		}
	}
	want := []string{"apple", "mango", "zebra"}
	if len(tables) != len(want) {
		t.Fatalf("tables = %v, want %v", tables, want)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Fatalf("tables = %v, want name order %v", tables, want)
		}
	}
}

func TestIntrospectSQLiteRowidAlias(t *testing.T) {
	// No AUTOINCREMENT keyword: a lone INTEGER PRIMARY KEY is still a rowid
	// alias and therefore autoincrementing.
	db := openTestDB(t, `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)
	b, err := newBackend("sqlite")
	if err != nil {
		t.Fatal(err)
	}
	preds, err := introspectSQLite(context.Background(), b, db, "")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	for _, p := range preds {
		if p.Kind == PredHasColumn && p.Column == "id" {
			if p.Type.Kind != KindBigSerial {
				t.Fatalf("id type = %s, want %s", p.Type.Kind, KindBigSerial)
			}
			return
		}
	}
	t.Fatal("no column predicate for id")
}

func TestIntrospectSQLiteCompositeKeyNotSerial(t *testing.T) {
	db := openTestDB(t, `CREATE TABLE pairs (a INTEGER, b INTEGER, PRIMARY KEY (a, b))`)
	b, err := newBackend("sqlite")
	if err != nil {
		t.Fatal(err)
	}
	preds, err := introspectSQLite(context.Background(), b, db, "")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	for _, p := range preds {
		if p.Kind == PredHasColumn && p.Type.Kind != KindInt {
			t.Errorf("column %s type = %s, want %s", p.Column, p.Type.Kind, KindInt)
		}
		if p.Kind == PredHasPrimaryKey {
			if len(p.PKColumns) != 2 || p.PKColumns[0] != "a" || p.PKColumns[1] != "b" {
				t.Errorf("key columns = %v, want [a b]", p.PKColumns)
			}
		}
	}
}

func TestAutoIncrementColumns(t *testing.T) {
	tests := []struct {
		ddl  string
		want []string
	}{
		{`CREATE TABLE t (id INTEGER PRIMARY KEY AUTOINCREMENT)`, []string{"id"}},
		{`CREATE TABLE t (id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, body TEXT)`, []string{"id"}},
		{"CREATE TABLE t (\n  seq int primary key autoincrement\n)", []string{"seq"}},
		{`CREATE TABLE t (id INTEGER PRIMARY KEY)`, nil},
	}
	for _, tt := range tests {
		got := autoIncrementColumns(tt.ddl)
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.ddl, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.ddl, got, tt.want)
			}
		}
	}
}
