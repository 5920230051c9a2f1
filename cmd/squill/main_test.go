package main

import "testing"

func TestSplitStatements(t *testing.T) {
	content := `CREATE TABLE t (id INT);
INSERT INTO t VALUES (1);
-- a comment line
INSERT INTO t VALUES ('semi;colon');
SELECT * FROM t`

	statements := splitStatements(content)
	if len(statements) != 4 {
		t.Fatalf("Expected 4 statements, got %d: %v", len(statements), statements)
	}
	if statements[2] != "INSERT INTO t VALUES ('semi;colon')" {
		t.Errorf("Expected semicolon inside string to survive, got %q", statements[2])
	}
	if statements[3] != "SELECT * FROM t" {
		t.Errorf("Expected trailing statement without semicolon, got %q", statements[3])
	}
}

func TestReturnsRows(t *testing.T) {
	cases := []struct {
		sql  string
		want bool
	}{
		{"SELECT 1", true},
		{"  select * from t", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"EXPLAIN SELECT 1", true},
		{"INSERT INTO t VALUES (1)", false},
		{"CREATE TABLE t (id INT)", false},
		{"UPDATE t SET id = 2", false},
	}
	for _, c := range cases {
		if got := returnsRows(c.sql); got != c.want {
			t.Errorf("Expected %v for %q, got %v", c.want, c.sql, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 50); got != "short" {
		t.Errorf("Expected short, got %q", got)
	}
	long := truncate("SELECT a, b, c, d, e, f FROM some_very_long_table_name", 20)
	if len(long) != 20 {
		t.Errorf("Expected 20 characters, got %d: %q", len(long), long)
	}
}
