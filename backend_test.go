package main

import "testing"

func TestNewBackend(t *testing.T) {
	for alias, want := range map[string]string{
		"postgres": "postgres", "postgresql": "postgres", "pg": "postgres",
		"mysql": "mysql", "mariadb": "mysql",
		"sqlite": "sqlite", "sqlite3": "sqlite",
	} {
		b, err := newBackend(alias)
		if err != nil {
			t.Errorf("newBackend(%q): %v", alias, err)
			continue
		}
		if b.ID() != want {
			t.Errorf("newBackend(%q).ID() = %q, want %q", alias, b.ID(), want)
		}
	}
	if _, err := newBackend("oracle"); err == nil {
		t.Error("newBackend(oracle) succeeded, want error")
	}
}

func TestRenderType(t *testing.T) {
	tests := []struct {
		backend string
		dt      DataType
		want    string
	}{
		{"postgres", DataType{Kind: KindVarChar, Length: int64Ptr(150)}, "varchar(150)"},
		{"postgres", DataType{Kind: KindNumeric, Precision: int64Ptr(10), Scale: int64Ptr(2)}, "numeric(10,2)"},
		{"postgres", DataType{Kind: KindTimestamp, WithTimezone: true}, "timestamp with time zone"},
		{"postgres", DataType{Kind: KindNVarChar, Length: int64Ptr(20)}, "national char varying(20)"},
		{"postgres", DataType{Kind: KindBlob}, "bytea"},
		{"postgres", DataType{Kind: KindBigSerial}, "bigserial"},
		{"postgres", customType("GEOMETRY(point, 4326)"), "GEOMETRY(point, 4326)"},

		{"mysql", DataType{Kind: KindBit, Length: int64Ptr(16)}, "binary(16)"},
		{"mysql", DataType{Kind: KindVarBit, Length: int64Ptr(32)}, "varbinary(32)"},
		{"mysql", DataType{Kind: KindVarChar, Length: int64Ptr(20), Charset: "utf8mb4"}, "varchar(20) character set utf8mb4"},
		{"mysql", DataType{Kind: KindTimestamp, WithTimezone: true}, "timestamp"},
		{"mysql", DataType{Kind: KindBigSerial}, "serial"},

		{"sqlite", DataType{Kind: KindBigSerial}, "integer"},
		{"sqlite", DataType{Kind: KindText}, "text"},
		{"sqlite", DataType{Kind: KindDouble}, "double precision"},
	}
	for _, tt := range tests {
		t.Run(tt.backend+" "+tt.want, func(t *testing.T) {
			b, err := newBackend(tt.backend)
			if err != nil {
				t.Fatal(err)
			}
			got, err := b.RenderType(tt.dt)
			if err != nil {
				t.Fatalf("RenderType(%s): %v", tt.dt, err)
			}
			if got != tt.want {
				t.Errorf("RenderType(%s) = %q, want %q", tt.dt, got, tt.want)
			}
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	pg, _ := newBackend("postgres")
	my, _ := newBackend("mysql")
	lite, _ := newBackend("sqlite")

	tests := []struct {
		b    Backend
		in   string
		want string
	}{
		{pg, "users", "users"},
		{pg, "order", `"order"`},
		{pg, "MixedCase", `"MixedCase"`},
		{pg, "with space", `"with space"`},
		{my, "users", "`users`"},
		{my, "odd`name", "`odd``name`"},
		{lite, "users", `"users"`},
		{lite, `odd"name`, `"odd""name"`},
	}
	for _, tt := range tests {
		if got := tt.b.QuoteIdent(tt.in); got != tt.want {
			t.Errorf("%s QuoteIdent(%q) = %s, want %s", tt.b.ID(), tt.in, got, tt.want)
		}
	}
}

func TestQualifyTable(t *testing.T) {
	pg, _ := newBackend("postgres")
	my, _ := newBackend("mysql")

	if got := pg.QualifyTable(TableName{Name: "users"}); got != "users" {
		t.Errorf("pg bare = %q", got)
	}
	if got := pg.QualifyTable(TableName{Schema: "audit", Name: "events"}); got != "audit.events" {
		t.Errorf("pg qualified = %q", got)
	}
	if got := my.QualifyTable(TableName{Schema: "appdb", Name: "users"}); got != "`appdb`.`users`" {
		t.Errorf("mysql qualified = %q", got)
	}
}

func TestSerialType(t *testing.T) {
	pg, _ := newBackend("postgres")
	my, _ := newBackend("mysql")
	lite, _ := newBackend("sqlite")

	tests := []struct {
		b    Backend
		base TypeKind
		want TypeKind
	}{
		{pg, KindSmallInt, KindSmallSerial},
		{pg, KindInt, KindSerial},
		{pg, KindBigInt, KindBigSerial},
		{my, KindInt, KindSerial},
		{lite, KindSmallInt, KindBigSerial},
		{lite, KindInt, KindBigSerial},
		{lite, KindBigInt, KindBigSerial},
	}
	for _, tt := range tests {
		if got := tt.b.SerialType(tt.base); got.Kind != tt.want {
			t.Errorf("%s SerialType(%s) = %s, want %s", tt.b.ID(), tt.base, got.Kind, tt.want)
		}
	}
}

func TestSQLiteReadOnlyURI(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "app.db", want: "file:app.db?mode=ro"},
		{in: "file:app.db", want: "file:app.db?mode=ro"},
		{in: "file:app.db?cache=shared", want: "file:app.db?cache=shared&mode=ro"},
		{in: ":memory:", wantErr: true},
		{in: "file::memory:", wantErr: true},
		{in: "file:x?mode=memory", wantErr: true},
	}
	for _, tt := range tests {
		got, err := sqliteReadOnlyURI(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("sqliteReadOnlyURI(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("sqliteReadOnlyURI(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("sqliteReadOnlyURI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
