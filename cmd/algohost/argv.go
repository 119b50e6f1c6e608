package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/betbot/algohost/internal/argvcheck"
	"github.com/betbot/algohost/pkg/logger"
)

func newArgvCheckCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "argv-check [args...]",
		Short: "Check that loading the script runtimes leaves os.Args intact",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			if err := logger.Init(logger.Config{Level: level, Console: cmd.ErrOrStderr()}); err != nil {
				return err
			}

			checker, err := argvcheck.NewChecker()
			if err != nil {
				return err
			}
			checker.Stderr = cmd.ErrOrStderr()

			res, err := checker.Run(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status:   %s\n", res.Status)
			fmt.Fprintf(out, "expected: %q\n", res.Expected)
			fmt.Fprintf(out, "observed: %q\n", res.Observed)
			if res.Status != argvcheck.Passed {
				fmt.Fprintf(out, "diff (-expected +tail):\n%s", res.Diff)
				return fmt.Errorf("argv tail mismatch")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	return cmd
}

func newArgvFixtureCommand() *cobra.Command {
	return &cobra.Command{
		Use:                argvcheck.FixtureCommand + " [args...]",
		Short:              "Load every script runtime and print os.Args as JSON",
		Hidden:             true,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return argvcheck.Fixture(os.Stdout)
		},
	}
}
