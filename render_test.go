package main

import "testing"

func TestRenderScript(t *testing.T) {
	steps := []MigrationStep{
		{
			Label:    "create table users",
			Commands: []string{"CREATE TABLE users (id bigserial, PRIMARY KEY (id))"},
		},
		{
			Label: "alter table orders",
			Commands: []string{
				"ALTER TABLE orders ADD COLUMN note text",
				"ALTER TABLE orders ALTER COLUMN note SET NOT NULL",
			},
		},
	}

	want := []string{
		"-- Migration script generated by beam.",
		"-- One statement per line; review before applying.",
		"-- create table users",
		"CREATE TABLE users (id bigserial, PRIMARY KEY (id));",
		"-- alter table orders",
		"ALTER TABLE orders ADD COLUMN note text;",
		"ALTER TABLE orders ALTER COLUMN note SET NOT NULL;",
	}

	got := renderScript(steps)
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRenderScriptEmptyPlan(t *testing.T) {
	got := renderScript(nil)
	if len(got) != len(scriptBanner) {
		t.Fatalf("got %v, want banner only", got)
	}
}
