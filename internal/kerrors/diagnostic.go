package kerrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PosFrame is a single source-position frame attached to a diagnostic,
// most specific first. A diagnostic may carry more than one frame when
// the failure spans an attribute's config-literal position and the
// current VM instruction position (spec §7).
type PosFrame struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func (p PosFrame) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Diagnostic is the canonical structured error/warning type for the
// engine. Every class in spec §6.3 is represented; Warning distinguishes
// non-fatal reports routed to the side channel described in §7.
type Diagnostic struct {
	Class   Class          `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Frames  []PosFrame     `json:"frames,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Warning bool           `json:"warning,omitempty"`
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Code)
	b.WriteString(": ")
	b.WriteString(d.Message)
	if len(d.Frames) > 0 {
		b.WriteString(" (at ")
		b.WriteString(d.Frames[0].String())
		b.WriteString(")")
	}
	return b.String()
}

// WithFrame prepends a position frame, so the most recently added frame
// comes first.
func (d *Diagnostic) WithFrame(f PosFrame) *Diagnostic {
	d.Frames = append([]PosFrame{f}, d.Frames...)
	return d
}

// WithData attaches structured data (e.g. both conflicting values for a
// UNI001 diagnostic).
func (d *Diagnostic) WithData(key string, value any) *Diagnostic {
	if d.Data == nil {
		d.Data = make(map[string]any)
	}
	d.Data[key] = value
	return d
}

// New builds a fatal diagnostic.
func New(class Class, code, message string) *Diagnostic {
	return &Diagnostic{Class: class, Code: code, Message: message}
}

// NewWarning builds a non-fatal diagnostic for the warning side channel.
func NewWarning(class Class, code, message string) *Diagnostic {
	return &Diagnostic{Class: class, Code: code, Message: message, Warning: true}
}

// AsDiagnostic extracts a *Diagnostic from an error chain, mirroring the
// teacher's errors.As(*ReportError) pattern.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// ToJSON renders a diagnostic deterministically for tooling consumption.
func (d *Diagnostic) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(d, "", "  ")
	} else {
		data, err = json.Marshal(d)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
