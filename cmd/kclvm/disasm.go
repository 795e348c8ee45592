package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcl-lang/kclvm-core/internal/kbc"
)

func newDisasmCmd() *cobra.Command {
	var pkgpath, funcName string
	cmd := &cobra.Command{
		Use:   "disasm <program.json>",
		Short: "Disassemble one function's instruction stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			if pkgpath == "" {
				pkgpath = prog.MainPkgpath
			}
			pb, ok := prog.Pkgs[pkgpath]
			if !ok {
				return fmt.Errorf("package %q not found", pkgpath)
			}
			if funcName == "" {
				funcName = "$main"
			}
			fb, ok := pb.Funcs[funcName]
			if !ok {
				return fmt.Errorf("function %q not found in package %q", funcName, pkgpath)
			}
			code, err := kbc.Decode(fb)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), kbc.Disasm(code))
			return nil
		},
	}
	cmd.Flags().StringVar(&pkgpath, "pkg", "", "package path (defaults to main_pkgpath)")
	cmd.Flags().StringVar(&funcName, "func", "", "function name within the package (defaults to $main)")
	return cmd
}
