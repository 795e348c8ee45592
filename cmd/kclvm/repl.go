package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/kcl-lang/kclvm-core/internal/kbc"
	"github.com/kcl-lang/kclvm-core/internal/kdiag"
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kschema"
	"github.com/kcl-lang/kclvm-core/internal/kvm"
)

var (
	replBold = color.New(color.Bold).SprintFunc()
	replDim  = color.New(color.Faint).SprintFunc()
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive shell for loading, running, and inspecting a compiled program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd.OutOrStdout())
		},
	}
}

// replState holds the currently loaded program and VM between commands;
// there is no source-level evaluation here (the compiler is out of
// scope, spec §1) — this is a manual-inspection shell over the VM/schema
// runtime, the ambient dev tooling named in SPEC_FULL.md.
type replState struct {
	prog *kbc.Program
	vm   *kvm.VM
}

func runRepl(out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Fprintf(out, "%s\n", replBold("kclvm inspection shell"))
	fmt.Fprintln(out, replDim("Commands: :load <program.json>  :run  :disasm [pkg] [func]  :globals <pkg>  :quit"))

	st := &replState{}
	for {
		input, err := line.Prompt("kclvm> ")
		if err == io.EOF {
			fmt.Fprintln(out, "goodbye")
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if err := st.dispatch(input, out); err != nil {
			if err == io.EOF {
				fmt.Fprintln(out, "goodbye")
				return nil
			}
			fmt.Fprintln(out, err)
		}
	}
}

func (s *replState) dispatch(input string, out io.Writer) error {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":quit", ":q":
		return io.EOF
	case ":load":
		if len(fields) < 2 {
			return fmt.Errorf("usage: :load <program.json>")
		}
		prog, err := loadProgram(fields[1])
		if err != nil {
			return err
		}
		s.prog = prog
		fmt.Fprintf(out, "loaded %s (main package %q, %d packages)\n", fields[1], prog.MainPkgpath, len(prog.Pkgs))
		return nil
	case ":run":
		if s.prog == nil {
			return fmt.Errorf("no program loaded; use :load first")
		}
		main, err := s.prog.Main()
		if err != nil {
			return err
		}
		s.vm = kvm.New(kschema.NewRegistry())
		s.vm.SetLoader(s.prog.Loader())
		registerDemoBuiltins(s.vm, out)
		result, runErr := s.vm.Run(main, nil, nil)
		for _, w := range s.vm.Warnings() {
			fmt.Fprint(out, kdiag.Render(w))
		}
		if runErr != nil {
			if d, ok := kerrors.AsDiagnostic(runErr); ok {
				fmt.Fprint(out, kdiag.Render(d))
				return nil
			}
			return runErr
		}
		fmt.Fprintln(out, result.String())
		return nil
	case ":disasm":
		if s.prog == nil {
			return fmt.Errorf("no program loaded; use :load first")
		}
		pkgpath := s.prog.MainPkgpath
		funcName := "$main"
		if len(fields) > 1 {
			pkgpath = fields[1]
		}
		if len(fields) > 2 {
			funcName = fields[2]
		}
		pb, ok := s.prog.Pkgs[pkgpath]
		if !ok {
			return fmt.Errorf("package %q not found", pkgpath)
		}
		fb, ok := pb.Funcs[funcName]
		if !ok {
			return fmt.Errorf("function %q not found in %q", funcName, pkgpath)
		}
		code, err := kbc.Decode(fb)
		if err != nil {
			return err
		}
		fmt.Fprint(out, kbc.Disasm(code))
		return nil
	case ":globals":
		if s.vm == nil {
			return fmt.Errorf("no VM run yet; use :run first")
		}
		if len(fields) < 2 {
			return fmt.Errorf("usage: :globals <pkgpath>")
		}
		g := s.vm.Globals(fields[1])
		fmt.Fprintln(out, g.String())
		return nil
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}
