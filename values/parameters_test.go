package values

import "testing"

func TestFromArgsPositional(t *testing.T) {
	params, err := FromArgs(int32(1), "hello", nil)
	if err != nil {
		t.Fatalf("Failed to build parameters: %v", err)
	}
	if params.Len() != 3 {
		t.Fatalf("Expected 3 bindings, got %d", params.Len())
	}
	v, ok := params.At(1)
	if !ok {
		t.Fatal("Expected binding at index 1")
	}
	if text, err := v.Text(); err != nil || text != "hello" {
		t.Errorf("Expected hello, got %q (%v)", text, err)
	}
	v, _ = params.At(2)
	if !v.IsNull() {
		t.Error("Expected null binding at index 2")
	}
}

func TestFromArgsNamed(t *testing.T) {
	name, err := Named("name", "Alice")
	if err != nil {
		t.Fatalf("Failed to build named binding: %v", err)
	}
	age, err := Named("age", int32(30))
	if err != nil {
		t.Fatalf("Failed to build named binding: %v", err)
	}
	params, err := FromArgs(name, age)
	if err != nil {
		t.Fatalf("Failed to build parameters: %v", err)
	}
	if params.Len() != 2 {
		t.Fatalf("Expected 2 bindings, got %d", params.Len())
	}
	v, ok := params.Get("name")
	if !ok {
		t.Fatal("Expected binding for name")
	}
	if text, _ := v.Text(); text != "Alice" {
		t.Errorf("Expected Alice, got %q", text)
	}
	if _, ok := params.Get("missing"); ok {
		t.Error("Expected no binding for missing")
	}
}

func TestFromArgsMixedIsRejected(t *testing.T) {
	name, _ := Named("name", "Alice")
	if _, err := FromArgs(int32(1), name); err == nil {
		t.Error("Expected error mixing positional and named bindings")
	}
}

func TestNoParams(t *testing.T) {
	if !NoParams.IsEmpty() {
		t.Error("Expected NoParams to be empty")
	}
	if _, ok := NoParams.At(0); ok {
		t.Error("Expected no binding at index 0")
	}
}
