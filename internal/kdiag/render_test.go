package kdiag

import (
	"strings"
	"testing"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
)

func TestMain(m *testing.M) {
	DisableColor()
	m.Run()
}

func TestRenderIncludesCodeMessageAndFrame(t *testing.T) {
	d := kerrors.New(kerrors.ClassSchemaCheck, kerrors.SCH007, "port must be positive").
		WithFrame(kerrors.PosFrame{Filename: "app.k", Line: 10, Column: 3})

	out := Render(d)
	for _, want := range []string{kerrors.SCH007, "port must be positive", "app.k:10:3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected rendered output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderWarningUsesWarningLabel(t *testing.T) {
	d := kerrors.NewWarning(kerrors.ClassEvaluation, kerrors.SCH008, "deprecated attribute read")
	if !strings.Contains(Render(d), "warning") {
		t.Fatalf("expected warning label in rendered output")
	}
}

func TestRenderAllJoinsDiagnostics(t *testing.T) {
	ds := []*kerrors.Diagnostic{
		kerrors.New(kerrors.ClassName, kerrors.VM001, "x not found"),
		kerrors.New(kerrors.ClassType, kerrors.TYP001, "bad type"),
	}
	out := RenderAll(ds)
	if !strings.Contains(out, "VM001") || !strings.Contains(out, "TYP001") {
		t.Fatalf("expected both diagnostics rendered, got:\n%s", out)
	}
}

func TestRenderNilIsEmpty(t *testing.T) {
	if Render(nil) != "" {
		t.Fatalf("expected Render(nil) == \"\"")
	}
}
