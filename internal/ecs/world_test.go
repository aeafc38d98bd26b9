package ecs

import (
	"errors"
	"testing"
)

// stub components used only in tests
type testComp struct{ val int }

func (*testComp) Kind() Kind { return KindBiological }

type otherComp struct{}

func (*otherComp) Kind() Kind { return KindCognitive }

type badComp struct{}

func (*badComp) Kind() Kind { return Kind(99) }

func TestCreateEntity(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	if id == NilEntity {
		t.Fatal("expected non-nil entity ID")
	}
	if !w.Exists(id) {
		t.Fatal("expected entity to exist after creation")
	}
	if w.Exists(id + 1) {
		t.Fatal("entity that was never created must not exist")
	}
}

func TestAddAndGetComponent(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	if err := w.Add(id, &testComp{val: 42}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tc, ok := Lookup[*testComp](w, id, KindBiological)
	if !ok {
		t.Fatal("expected component, got none")
	}
	if tc.val != 42 {
		t.Fatalf("val = %d; want 42", tc.val)
	}
}

func TestAddToUnknownEntity(t *testing.T) {
	w := NewWorld()
	err := w.Add(EntityID(7), &testComp{})
	if !errors.Is(err, ErrNoEntity) {
		t.Fatalf("err = %v; want ErrNoEntity", err)
	}
}

func TestAddInvalidKind(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	if err := w.Add(id, &badComp{}); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("err = %v; want ErrInvalidKind", err)
	}
}

func TestUpdateRequiresComponent(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()

	if err := w.Update(id, &testComp{val: 1}); !errors.Is(err, ErrNoComponent) {
		t.Fatalf("err = %v; want ErrNoComponent", err)
	}
	if w.Has(id, KindBiological) {
		t.Fatal("failed Update must not attach the component")
	}

	_ = w.Add(id, &testComp{val: 1})
	if err := w.Update(id, &testComp{val: 2}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	tc, _ := Lookup[*testComp](w, id, KindBiological)
	if tc.val != 2 {
		t.Errorf("val = %d; want 2", tc.val)
	}

	if err := w.Update(EntityID(50), &testComp{}); !errors.Is(err, ErrNoEntity) {
		t.Fatalf("err = %v; want ErrNoEntity", err)
	}
}

func TestRemoveComponent(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	_ = w.Add(id, &testComp{val: 5})

	w.Remove(id, KindBiological)

	if w.Has(id, KindBiological) {
		t.Fatal("component should be gone after Remove")
	}
	// Removing again, or an unknown kind, must not panic.
	w.Remove(id, KindBiological)
	w.Remove(id, Kind(99))
}

func TestQueryRequiredAndExcluded(t *testing.T) {
	w := NewWorld()

	both := w.CreateEntity()
	_ = w.Add(both, &testComp{})
	_ = w.Add(both, &otherComp{})

	onlyA := w.CreateEntity()
	_ = w.Add(onlyA, &testComp{})

	bare := w.CreateEntity()

	results := w.Query([]Kind{KindBiological, KindCognitive}, nil)
	if len(results) != 1 || results[0] != both {
		t.Fatalf("required query = %v; want [%d]", results, both)
	}

	results = w.Query([]Kind{KindBiological}, []Kind{KindCognitive})
	if len(results) != 1 || results[0] != onlyA {
		t.Fatalf("excluded query = %v; want [%d]", results, onlyA)
	}

	results = w.Query(nil, []Kind{KindBiological})
	if len(results) != 1 || results[0] != bare {
		t.Fatalf("exclude-only query = %v; want [%d]", results, bare)
	}
}

func TestQueryCreationOrder(t *testing.T) {
	w := NewWorld()
	var ids []EntityID
	for i := 0; i < 50; i++ {
		id := w.CreateEntity()
		_ = w.Add(id, &testComp{val: i})
		ids = append(ids, id)
	}
	got := w.Query([]Kind{KindBiological}, nil)
	if len(got) != len(ids) {
		t.Fatalf("len = %d; want %d", len(got), len(ids))
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Fatalf("result[%d] = %d; want %d", i, got[i], ids[i])
		}
	}
}

func TestNoticesPublishedSynchronously(t *testing.T) {
	w := NewWorld()
	var got []Notice
	w.Subscribe(func(n Notice) { got = append(got, n) })

	id := w.CreateEntity()
	_ = w.Add(id, &testComp{})
	_ = w.Update(id, &testComp{val: 3})
	w.Remove(id, KindBiological)
	w.Remove(id, KindBiological) // absent: no notice

	want := []NoticeType{EntityCreated, ComponentAdded, ComponentUpdated, ComponentRemoved}
	if len(got) != len(want) {
		t.Fatalf("got %d notices; want %d", len(got), len(want))
	}
	for i, n := range got {
		if n.Type != want[i] {
			t.Errorf("notice[%d] = %s; want %s", i, n.Type, want[i])
		}
		if n.Entity != id {
			t.Errorf("notice[%d] entity = %d; want %d", i, n.Entity, id)
		}
	}
}

func TestInvariantReturnsCondition(t *testing.T) {
	if !Invariant(true, "always") {
		t.Fatal("Invariant(true) should report true")
	}
	if strictInvariants {
		t.Skip("strict build panics on violation")
	}
	if Invariant(false, "never", "entity", 1) {
		t.Fatal("Invariant(false) should report false")
	}
}

func TestPatchInPlace(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	orig := &testComp{val: 1}
	if err := w.Add(id, orig); err != nil {
		t.Fatal(err)
	}

	var notices []Notice
	w.Subscribe(func(n Notice) { notices = append(notices, n) })

	if err := Patch(w, id, KindBiological, func(c *testComp) { c.val += 4 }); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if got, _ := Lookup[*testComp](w, id, KindBiological); got != orig || got.val != 5 {
		t.Errorf("component = %+v; want the original pointer with val 5", got)
	}
	if len(notices) != 1 || notices[0].Type != ComponentUpdated || notices[0].Entity != id {
		t.Errorf("notices = %+v; want one ComponentUpdated", notices)
	}
}

func TestPatchFailuresLeaveState(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	_ = w.Add(id, &testComp{val: 1})

	var notices int
	w.Subscribe(func(Notice) { notices++ })
	called := false
	mark := func(*testComp) { called = true }

	if err := Patch(w, EntityID(99), KindBiological, mark); !errors.Is(err, ErrNoEntity) {
		t.Errorf("unknown entity err = %v", err)
	}
	if err := Patch(w, id, KindCognitive, func(*otherComp) { called = true }); !errors.Is(err, ErrNoComponent) {
		t.Errorf("absent component err = %v", err)
	}
	if err := Patch(w, id, Kind(99), mark); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("invalid kind err = %v", err)
	}
	if err := Patch(w, id, KindBiological, func(*otherComp) { called = true }); !errors.Is(err, ErrNoComponent) {
		t.Errorf("type mismatch err = %v", err)
	}
	if called || notices != 0 {
		t.Errorf("failed patches called fn=%v published %d notices", called, notices)
	}
}
