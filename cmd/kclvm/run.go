package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kcl-lang/kclvm-core/internal/kbc"
	"github.com/kcl-lang/kclvm-core/internal/kdiag"
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
	"github.com/kcl-lang/kclvm-core/internal/kschema"
	"github.com/kcl-lang/kclvm-core/internal/kvalue"
	"github.com/kcl-lang/kclvm-core/internal/kvm"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <program.json>",
		Short: "Run a pre-compiled program's main package through the VM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd, args[0])
		},
	}
	return cmd
}

func loadProgram(path string) (*kbc.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var prog kbc.Program
	if err := json.Unmarshal(data, &prog); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	return &prog, nil
}

func runProgram(cmd *cobra.Command, path string) error {
	prog, err := loadProgram(path)
	if err != nil {
		return err
	}
	main, err := prog.Main()
	if err != nil {
		return err
	}

	logger := newLogger(traceFlag)
	vm := kvm.New(kschema.NewRegistry())
	vm.SetLoader(prog.Loader())
	registerDemoBuiltins(vm, cmd.OutOrStdout())
	if traceFlag {
		vm.Trace = func(pkgpath string, inst kvalue.Instruction) {
			logger.Debug("step", "pkg", pkgpath, "op", fmt.Sprint(inst.Op), "pos", inst.Pos.String())
		}
	}

	result, runErr := vm.Run(main, nil, nil)
	for _, w := range vm.Warnings() {
		fmt.Fprint(cmd.ErrOrStderr(), kdiag.Render(w))
	}
	if runErr != nil {
		if d, ok := kerrors.AsDiagnostic(runErr); ok {
			fmt.Fprint(cmd.ErrOrStderr(), kdiag.Render(d))
			return fmt.Errorf("run failed: %s", d.Code)
		}
		return runErr
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.String())
	return nil
}
