package lang

import "testing"

func TestEnvDeclareLookupAndParents(t *testing.T) {
	parent := NewEnv(nil)
	if _, err := parent.Declare("x", NumberValue(1), true); err != nil {
		t.Fatalf("Declare x: %v", err)
	}
	child := NewEnv(parent)
	if child.parent != parent {
		t.Fatalf("expected child parent to be parent env")
	}

	val, err := child.Lookup("x")
	if err != nil || val.Number() != 1 {
		t.Fatalf("expected inherited x=1, got %v (%v)", val, err)
	}
	if _, err := child.Declare("x", NumberValue(2), true); err != nil {
		t.Fatalf("shadowing in a child frame must succeed: %v", err)
	}
	if val, _ := child.Lookup("x"); val.Number() != 2 {
		t.Fatalf("expected shadowed x=2, got %v", val)
	}
	if val, _ := parent.Lookup("x"); val.Number() != 1 {
		t.Fatalf("expected parent x untouched, got %v", val)
	}

	_, err = parent.Lookup("missing")
	if kind, ok := KindOf(err); !ok || kind != KindNameResolution {
		t.Fatalf("expected NameResolution error, got %v", err)
	}
	if child.Has("missing") || !child.Has("x") {
		t.Fatalf("Has reported wrong membership")
	}
}

func TestEnvDuplicateDeclaration(t *testing.T) {
	env := NewEnv(nil)
	env.Declare("x", NumberValue(1), true)
	_, err := env.Declare("x", NumberValue(2), true)
	if kind, ok := KindOf(err); !ok || kind != KindDuplicate {
		t.Fatalf("expected Duplicate error, got %v", err)
	}
	if val, _ := env.Lookup("x"); val.Number() != 1 {
		t.Fatalf("failed redeclaration must keep the old value, got %v", val)
	}
}

func TestEnvAssign(t *testing.T) {
	parent := NewEnv(nil)
	parent.Declare("m", NumberValue(1), true)
	parent.Declare("c", NumberValue(1), false)
	child := NewEnv(parent)

	if _, err := child.Assign("m", NumberValue(5)); err != nil {
		t.Fatalf("Assign m: %v", err)
	}
	if val, _ := parent.Lookup("m"); val.Number() != 5 {
		t.Fatalf("expected assignment to reach the owning frame, got %v", val)
	}

	_, err := child.Assign("c", NumberValue(2))
	if kind, ok := KindOf(err); !ok || kind != KindImmutability {
		t.Fatalf("expected Immutability error, got %v", err)
	}
	_, err = child.Assign("nope", Null)
	if kind, ok := KindOf(err); !ok || kind != KindNameResolution {
		t.Fatalf("expected NameResolution error, got %v", err)
	}
}

func TestEnvRemove(t *testing.T) {
	parent := NewEnv(nil)
	parent.Declare("x", NumberValue(1), false)
	child := NewEnv(parent)
	child.Declare("x", NumberValue(2), false)

	child.Remove("x")
	if val, _ := child.Lookup("x"); val.Number() != 1 {
		t.Fatalf("expected lookup to fall back to parent, got %v", val)
	}
	child.Remove("never-declared")

	if _, err := child.Declare("x", NumberValue(3), true); err != nil {
		t.Fatalf("redeclare after Remove: %v", err)
	}
	if _, err := child.Assign("x", NumberValue(4)); err != nil {
		t.Fatalf("constant flag must be cleared by Remove: %v", err)
	}
}

func TestEnvSnapshotIsolatesBindings(t *testing.T) {
	global := NewEnv(nil)
	global.Declare("g", NumberValue(1), true)
	global.Declare("k", NumberValue(1), false)
	local := NewEnv(global)
	local.Declare("l", NumberValue(1), true)
	shared := ArrayValue([]Value{NumberValue(1)})
	local.Declare("arr", shared, true)

	snap := local.Snapshot()

	global.Assign("g", NumberValue(2))
	local.Assign("l", NumberValue(2))
	global.Declare("later", Null, true)

	if val, _ := snap.Lookup("g"); val.Number() != 1 {
		t.Fatalf("snapshot observed global reassignment: %v", val)
	}
	if val, _ := snap.Lookup("l"); val.Number() != 1 {
		t.Fatalf("snapshot observed local reassignment: %v", val)
	}
	if snap.Has("later") {
		t.Fatalf("snapshot observed a later declaration")
	}
	if _, err := snap.Assign("k", Null); err == nil {
		t.Fatalf("snapshot must keep constants immutable")
	}

	shared.Array().Elements[0] = NumberValue(9)
	if val, _ := snap.Lookup("arr"); val.Array().Elements[0].Number() != 9 {
		t.Fatalf("arrays must stay shared across snapshots, got %v", val)
	}

	snap.Assign("g", NumberValue(3))
	if val, _ := global.Lookup("g"); val.Number() != 2 {
		t.Fatalf("snapshot writes leaked into the source env: %v", val)
	}
}
