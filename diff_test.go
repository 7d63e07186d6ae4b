package main

import (
	"strings"
	"testing"
)

func TestPlanMigrationCreateTable(t *testing.T) {
	pg, err := newBackend("postgres")
	if err != nil {
		t.Fatal(err)
	}
	users := TableName{Name: "users"}
	desired := []Predicate{
		tableExists(users),
		hasPrimaryKey(users, []string{"id"}),
		hasColumn(users, "id", DataType{Kind: KindBigSerial}),
		hasColumn(users, "name", DataType{Kind: KindVarChar, Length: int64Ptr(150)}),
		columnConstraint(users, "id", "NOT NULL"),
		columnConstraint(users, "name", "NOT NULL"),
	}

	steps, err := planMigration(desired, nil, pg)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("got %d steps, want 1: %v", len(steps), steps)
	}
	if steps[0].Label != "create table users" {
		t.Errorf("label = %q", steps[0].Label)
	}
	// Serial columns carry an implicit NOT NULL; the declaration must not
	// repeat it.
	want := "CREATE TABLE users (id bigserial, name varchar(150) NOT NULL, PRIMARY KEY (id))"
	if len(steps[0].Commands) != 1 || steps[0].Commands[0] != want {
		t.Errorf("commands = %v\nwant single %q", steps[0].Commands, want)
	}
}

func TestPlanMigrationAlterTable(t *testing.T) {
	pg, err := newBackend("postgres")
	if err != nil {
		t.Fatal(err)
	}
	users := TableName{Name: "users"}
	current := []Predicate{
		tableExists(users),
		hasColumn(users, "id", DataType{Kind: KindBigInt}),
		hasColumn(users, "name", DataType{Kind: KindVarChar, Length: int64Ptr(150)}),
	}
	desired := []Predicate{
		tableExists(users),
		hasPrimaryKey(users, []string{"id"}),
		hasColumn(users, "id", DataType{Kind: KindBigInt}),
		hasColumn(users, "name", DataType{Kind: KindVarChar, Length: int64Ptr(150)}),
		hasColumn(users, "email", DataType{Kind: KindVarChar, Length: int64Ptr(100)}),
		columnConstraint(users, "name", "NOT NULL"),
		columnConstraint(users, "email", "NOT NULL"),
	}

	steps, err := planMigration(desired, current, pg)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("got %d steps, want 1: %v", len(steps), steps)
	}
	wantCmds := []string{
		"ALTER TABLE users ADD COLUMN email varchar(100) NOT NULL",
		"ALTER TABLE users ALTER COLUMN name SET NOT NULL",
		"ALTER TABLE users ADD PRIMARY KEY (id)",
	}
	got := steps[0].Commands
	if len(got) != len(wantCmds) {
		t.Fatalf("commands = %v\nwant %v", got, wantCmds)
	}
	for i := range wantCmds {
		if got[i] != wantCmds[i] {
			t.Errorf("command %d = %q, want %q", i, got[i], wantCmds[i])
		}
	}
}

func TestPlanMigrationNoChangesNoSteps(t *testing.T) {
	pg, err := newBackend("postgres")
	if err != nil {
		t.Fatal(err)
	}
	users := TableName{Name: "users"}
	preds := []Predicate{
		tableExists(users),
		hasColumn(users, "id", DataType{Kind: KindBigSerial}),
		hasPrimaryKey(users, []string{"id"}),
	}
	steps, err := planMigration(preds, preds, pg)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(steps) != 0 {
		t.Errorf("got %v, want no steps", steps)
	}
}

func TestPlanMigrationContradictoryTypes(t *testing.T) {
	pg, err := newBackend("postgres")
	if err != nil {
		t.Fatal(err)
	}
	users := TableName{Name: "users"}
	desired := []Predicate{
		tableExists(users),
		hasColumn(users, "id", DataType{Kind: KindInt}),
		hasColumn(users, "id", DataType{Kind: KindBigInt}),
	}
	if _, err := planMigration(desired, nil, pg); err == nil {
		t.Fatal("plan succeeded, want contradictory-type error")
	} else if !strings.Contains(err.Error(), "contradictory") {
		t.Errorf("err = %v", err)
	}
}

func TestPlanMigrationSkipsUnsupportedNotNull(t *testing.T) {
	lite, err := newBackend("sqlite")
	if err != nil {
		t.Fatal(err)
	}
	users := TableName{Name: "users"}
	current := []Predicate{
		tableExists(users),
		hasColumn(users, "name", DataType{Kind: KindText}),
	}
	desired := []Predicate{
		tableExists(users),
		hasColumn(users, "name", DataType{Kind: KindText}),
		columnConstraint(users, "name", "NOT NULL"),
	}
	steps, err := planMigration(desired, current, lite)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	// SQLite cannot retrofit the constraint; the plan warns and moves on.
	if len(steps) != 0 {
		t.Errorf("got %v, want no steps", steps)
	}
}

func TestPlanMigrationQuotesReservedIdents(t *testing.T) {
	pg, err := newBackend("postgres")
	if err != nil {
		t.Fatal(err)
	}
	order := TableName{Name: "order"}
	desired := []Predicate{
		tableExists(order),
		hasColumn(order, "select", DataType{Kind: KindInt}),
	}
	steps, err := planMigration(desired, nil, pg)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(steps) != 1 || len(steps[0].Commands) != 1 {
		t.Fatalf("steps = %v", steps)
	}
	want := `CREATE TABLE "order" ("select" integer)`
	if steps[0].Commands[0] != want {
		t.Errorf("command = %q, want %q", steps[0].Commands[0], want)
	}
}
