package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/betbot/algohost/internal/algorithm"
	"github.com/betbot/algohost/internal/engine"
	"github.com/betbot/algohost/pkg/config"
	"github.com/betbot/algohost/pkg/logger"
)

type runFlags struct {
	configPath  string
	envFile     string
	algorithm   string
	script      string
	debug       string
	attachPoint string
	ticks       int
	logLevel    string
	wait        bool
}

func firstExistingFile(paths ...string) (string, bool) {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

func newRunCommand() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load an algorithm and feed it market-data ticks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAlgorithm(cmd, f)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "配置文件路径（支持 .yaml, .yml, .json），默认 yml/config.yaml")
	flags.StringVar(&f.envFile, "env-file", ".env", ".env 文件路径（不存在则忽略）")
	flags.StringVar(&f.algorithm, "algorithm", "", fmt.Sprintf("算法名称 %v", algorithm.Registered()))
	flags.StringVar(&f.script, "script", "", "脚本路径（lua/js/yaegi 算法）")
	flags.StringVar(&f.debug, "debug", "", "调试模式: disabled | pause")
	flags.StringVar(&f.attachPoint, "attach-point", "", "调试器附加点: data | load")
	flags.IntVar(&f.ticks, "ticks", -1, "tick 数量（默认取配置）")
	flags.StringVar(&f.logLevel, "log-level", "", "日志级别")
	flags.BoolVar(&f.wait, "wait", false, "结束后等待按键再退出")
	return cmd
}

// applyFlags 命令行参数优先级最高
func applyFlags(cfg *config.Config, f *runFlags) error {
	if f.algorithm != "" {
		cfg.Algorithm.Name = f.algorithm
	}
	if f.script != "" {
		cfg.Algorithm.Script = f.script
	}
	if f.debug != "" {
		cfg.Debug.Mode = f.debug
	}
	if f.attachPoint != "" {
		cfg.Debug.AttachPoint = f.attachPoint
	}
	if f.ticks >= 0 {
		cfg.Feed.Ticks = f.ticks
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	return cfg.Validate()
}

func runAlgorithm(cmd *cobra.Command, f *runFlags) error {
	if err := config.LoadEnvFile(f.envFile); err != nil {
		return err
	}

	configPath := f.configPath
	if configPath == "" {
		if p, ok := firstExistingFile("yml/config.yaml", "yml/config.yml", "yml/config.json"); ok {
			configPath = p
		}
	}

	// 先叠加命令行参数再验证，参数可以修正文件或环境变量中的值
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, f); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	if configPath != "" {
		logger.Infof("使用配置文件: %s", configPath)
	}

	opts, err := engine.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := engine.New(opts).Run(ctx)
	if err != nil && summary == nil {
		return err
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	out := cmd.OutOrStdout()
	if f.wait {
		fmt.Fprintf(out, "%s. Press Enter to exit.", summary)
		_, _ = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		return nil
	}
	fmt.Fprintln(out, summary)
	return nil
}
