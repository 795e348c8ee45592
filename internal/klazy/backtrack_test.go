package klazy

import (
	"testing"

	"github.com/kcl-lang/kclvm-core/internal/kschema"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
)

type constExec struct {
	calls int
}

func (c *constExec) ExecPlaceholder(ph kschema.Placeholder, inst *kvalue.Schema) (kvalue.Value, error) {
	c.calls++
	if ph.Priority == kschema.PriorityConfig {
		return ph.Config, nil
	}
	return kvalue.NewInt(int64(ph.Priority)), nil
}

func newInst() *kvalue.Schema {
	s := kvalue.NewSchema("Server", "app", "rt:Server")
	return s
}

func TestLoadPrefersTailPlaceholder(t *testing.T) {
	exec := &constExec{}
	phs := map[string][]kschema.Placeholder{
		"port": {
			{Priority: kschema.PriorityBaseDefault},
			{Priority: kschema.PriorityConfig, Config: kvalue.NewInt(9)},
		},
	}
	r := NewResolver(exec, phs)
	v, err := r.Load("port", newInst(), false, Fallbacks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(*kvalue.Int).Value != 9 {
		t.Errorf("expected tail placeholder value 9, got %v", v)
	}
}

func TestLoadCachesTailResult(t *testing.T) {
	exec := &constExec{}
	phs := map[string][]kschema.Placeholder{
		"port": {{Priority: kschema.PriorityConfig, Config: kvalue.NewInt(3)}},
	}
	r := NewResolver(exec, phs)
	inst := newInst()
	if _, err := r.Load("port", inst, false, Fallbacks{}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, err := r.Load("port", inst, false, Fallbacks{}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if exec.calls != 1 {
		t.Errorf("expected placeholder executed once (cached thereafter), got %d calls", exec.calls)
	}
}

func TestLoadRecursionErrorWhenDepthExhausted(t *testing.T) {
	exec := &recursingExec{}
	phs := map[string][]kschema.Placeholder{
		"x": {{Priority: kschema.PriorityBaseDefault}},
	}
	r := NewResolver(exec, phs)
	exec.r = r
	inst := newInst()
	_, err := r.Load("x", inst, false, Fallbacks{})
	if err == nil {
		t.Fatalf("expected recursion error")
	}
}

// recursingExec re-enters Load for the same name, simulating a
// place-holder body that reads its own attribute again.
type recursingExec struct {
	r *Resolver
}

func (e *recursingExec) ExecPlaceholder(ph kschema.Placeholder, inst *kvalue.Schema) (kvalue.Value, error) {
	return e.r.Load("x", inst, false, Fallbacks{})
}

func TestLoadFallsBackToLocalsThenGlobals(t *testing.T) {
	exec := &constExec{}
	r := NewResolver(exec, nil)
	fb := Fallbacks{
		Locals: []func(string) (kvalue.Value, bool){
			func(n string) (kvalue.Value, bool) { return nil, false },
		},
		Globals: func(n string) (kvalue.Value, bool) {
			if n == "base" {
				return kvalue.NewString("g"), true
			}
			return nil, false
		},
	}
	v, err := r.Load("base", newInst(), false, fb)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if v.(*kvalue.String).Value != "g" {
		t.Errorf("expected global fallback value, got %v", v)
	}
}

func TestLoadNameNotDefined(t *testing.T) {
	exec := &constExec{}
	r := NewResolver(exec, nil)
	_, err := r.Load("missing", newInst(), false, Fallbacks{})
	if err == nil {
		t.Fatalf("expected name-not-defined error")
	}
}
