package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// 导入脚本运行时和原生算法以触发 init() 注册
	_ "github.com/betbot/algohost/internal/bridge/all"
	_ "github.com/betbot/algohost/internal/strategies/sample"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "algohost",
		Short:         "Run trading algorithms with an optional wait-for-debugger gate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(), newArgvCheckCommand(), newArgvFixtureCommand())
	return root
}
