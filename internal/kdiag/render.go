// Package kdiag renders kerrors.Diagnostic values for a terminal: ANSI
// color-coded by severity/class (fatih/color, the teacher's REPL
// coloring convention), with every filename and message run through the
// teacher's lexer-boundary Unicode normalization (golang.org/x/text/unicode/norm)
// so two diagnostics referencing the same path under different Unicode
// forms render and compare identically.
package kdiag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/text/unicode/norm"

	"github.com/kcl-lang/kclvm-core/internal/kerrors"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningLabel = color.New(color.FgYellow, color.Bold).SprintFunc()
	codeStyle    = color.New(color.FgCyan).SprintFunc()
	frameStyle   = color.New(color.Faint).SprintFunc()
)

// catalog, when set via SetCatalog, localizes a diagnostic's message
// before it reaches the terminal renderer; nil means render d.Message
// as-is (the default, English-only behavior).
var catalog *kerrors.Catalog

// SetCatalog installs the message catalog used by Render/RenderAll,
// e.g. from cmd/kclvm's PersistentPreRunE after loading the run
// profile's locale.
func SetCatalog(c *kerrors.Catalog) {
	catalog = c
}

func renderedMessage(d *kerrors.Diagnostic) string {
	if catalog == nil {
		return d.Message
	}
	return catalog.Render(d)
}

// Render formats a single diagnostic for terminal output: a colored
// severity label, the error code, the message, and every position frame
// (most specific first, spec §7), each frame's column padded to a
// common display width.
func Render(d *kerrors.Diagnostic) string {
	if d == nil {
		return ""
	}
	label := errorLabel("error")
	if d.Warning {
		label = warningLabel("warning")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]: %s\n", label, codeStyle(d.Code), normalize(renderedMessage(d)))
	for _, f := range alignFrames(d.Frames) {
		fmt.Fprintf(&b, "  %s %s\n", frameStyle("-->"), frameStyle(f))
	}
	return b.String()
}

// normalize applies NFC normalization so diagnostic text renders
// identically regardless of the source encoding of the string it came
// from (spec §7: messages may echo config-literal string values
// verbatim).
func normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// RenderAll formats every diagnostic in order, one per call to Render,
// joined by blank lines.
func RenderAll(ds []*kerrors.Diagnostic) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = Render(d)
	}
	return strings.Join(parts, "\n")
}

// alignFrames renders each frame's "file:line:col" string, normalized
// and padded to the widest frame so a multi-frame trace lines up in a
// fixed-width terminal.
func alignFrames(frames []kerrors.PosFrame) []string {
	rendered := make([]string, len(frames))
	maxW := 0
	for i, f := range frames {
		s := normalize(f.String())
		rendered[i] = s
		if w := utf8.RuneCountInString(s); w > maxW {
			maxW = w
		}
	}
	for i, s := range rendered {
		pad := maxW - utf8.RuneCountInString(s)
		if pad > 0 {
			rendered[i] = s + strings.Repeat(" ", pad)
		}
	}
	return rendered
}

// DisableColor turns off ANSI styling, for non-TTY output (e.g. CI
// logs, `kclvm run --no-color`).
func DisableColor() { color.NoColor = true }
