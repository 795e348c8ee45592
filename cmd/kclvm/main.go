// Command kclvm is a thin demonstration shell over the bytecode VM and
// schema runtime: it loads a pre-compiled program (JSON-encoded
// kbc.Program — the bytecode compiler itself is an external
// collaborator per spec §1), runs it, disassembles it, or drops into an
// inspection REPL. It is not a KCL compiler front-end.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kcl-lang/kclvm-core/internal/kdiag"
	"github.com/kcl-lang/kclvm-core/internal/kerrors"
)

var (
	traceFlag   bool
	noColorFlag bool
	profilePath string
)

func main() {
	root := &cobra.Command{
		Use:           "kclvm",
		Short:         "Demonstration shell for the KCL bytecode VM and schema runtime",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadRunProfile(profilePath)
			if err != nil {
				return fmt.Errorf("loading run profile: %w", err)
			}
			if profile.NoColor || noColorFlag {
				kdiag.DisableColor()
			}
			catalog, err := kerrors.NewCatalog()
			if err != nil {
				return fmt.Errorf("loading diagnostic message catalog: %w", err)
			}
			if profile.Locale != "" {
				catalog.SetLocale(profile.Locale)
			}
			kdiag.SetCatalog(catalog)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&traceFlag, "trace", false, "print a per-instruction execution trace")
	root.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable ANSI diagnostic coloring")
	root.PersistentFlags().StringVar(&profilePath, "profile", ".kclvm.yaml", "path to an optional run-profile file")

	root.AddCommand(newRunCmd(), newDisasmCmd(), newReplCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
