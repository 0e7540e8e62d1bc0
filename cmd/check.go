package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/depmatch/ruleset"
)

// checkCmd: depmatch check
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile a rule file and print its rules in canonical form",
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := resolveMatchOptions(cmd, cfgFile)
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}
		if err := runCheck(opts, cmd.OutOrStdout()); err != nil {
			cliTelemetry.metrics.ObserveCompileError()
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	checkCmd.Flags().StringVar(&rulesPath, "rules", "", "Rule file (overrides the configuration)")
	checkCmd.Flags().StringVar(&matchMode, "mode", "", `Default match mode, "any" or "all"`)
}

func runCheck(opts matchOptions, w io.Writer) error {
	rs, err := ruleset.Load(opts.rules, opts.mode)
	if err != nil {
		return err
	}

	for i, r := range rs.Rules() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "# %s (mode: %s)\n%s\n", r.Name(), r.Mode(), r.String())
	}
	fmt.Fprintf(w, "\n%d rules, triggers: %v\n", rs.Len(), rs.Triggers())
	return nil
}
