package registry

import "testing"

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()
	def1 := &BlockDef{TypeName: "Add", Capability: CapabilityPure}
	r.Register(def1)

	def2 := &BlockDef{TypeName: "Add", Capability: CapabilityState}
	r.Register(def2)

	got, ok := r.Lookup("Add")
	if !ok {
		t.Fatal("expected Add to be registered")
	}
	if got.Capability != CapabilityState {
		t.Fatalf("expected second registration to replace the first, got capability %v", got.Capability)
	}
}

func TestLookupMissing(t *testing.T) {
	r := New()
	if _, ok := r.Lookup("DoesNotExist"); ok {
		t.Fatal("expected lookup of unregistered type to fail")
	}
}

func TestInputOutputByID(t *testing.T) {
	def := &BlockDef{
		TypeName: "Add",
		Inputs:   []InputPortDef{{ID: "a"}, {ID: "b"}},
		Outputs:  []OutputPortDef{{ID: "out"}},
	}
	if _, ok := def.InputByID("a"); !ok {
		t.Fatal("expected input a to be found")
	}
	if _, ok := def.InputByID("missing"); ok {
		t.Fatal("expected missing input to be absent")
	}
	if _, ok := def.OutputByID("out"); !ok {
		t.Fatal("expected output out to be found")
	}
}

func TestParseCapabilityAndForm(t *testing.T) {
	c, err := ParseCapability("state")
	if err != nil || c != CapabilityState {
		t.Fatalf("expected CapabilityState, got %v %v", c, err)
	}
	f, err := ParseForm("composite")
	if err != nil || f != FormComposite {
		t.Fatalf("expected FormComposite, got %v %v", f, err)
	}
	if _, err := ParseCapability("bogus"); err == nil {
		t.Fatal("expected error for unknown capability")
	}
}
