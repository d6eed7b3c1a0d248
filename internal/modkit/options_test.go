package modkit

import (
	"testing"
)

func TestWithName(t *testing.T) {
	t.Parallel()
	var c buildCfg
	WithName("directory")(&c)
	if c.name != "directory" {
		t.Fatalf("expected name=directory got=%q", c.name)
	}
}

func TestWithPorts_GenericStoresConcreteType(t *testing.T) {
	t.Parallel()

	type Ports struct {
		Hello string
		N     int
	}

	var c buildCfg
	WithPorts(Ports{Hello: "world", N: 7})(&c)

	ps, ok := c.ports.(Ports)
	if !ok {
		t.Fatalf("expected ports of type Ports got %T", c.ports)
	}
	if ps.Hello != "world" || ps.N != 7 {
		t.Fatalf("unexpected ports value: %+v", ps)
	}
}

func TestOptions_Compose(t *testing.T) {
	t.Parallel()

	opts := []Option{
		WithName("history"),
		WithPorts(map[string]int{"ok": 1}),
	}

	var c buildCfg
	for _, opt := range opts {
		opt(&c)
	}

	if c.name != "history" {
		t.Fatalf("unexpected cfg: %+v", c)
	}
	if _, ok := c.ports.(map[string]int); !ok {
		t.Fatalf("expected ports to be map[string]int got %T", c.ports)
	}
}
