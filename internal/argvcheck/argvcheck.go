// Package argvcheck verifies that loading the script runtimes does not change
// the process argument vector.
//
// The check runs out of process: a fresh child is started with known trailing
// arguments, the child loads every runtime and prints its own os.Args as a JSON
// array, and the parent compares the tail of that vector with what it passed.
package argvcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/betbot/algohost/internal/bridge"
	_ "github.com/betbot/algohost/internal/bridge/all"
)

var checkLog = logrus.WithField("component", "argvcheck")

// FixtureCommand 子进程中运行 fixture 的子命令
const FixtureCommand = "argv-fixture"

// Status 检查状态：NotRun -> Passed | Failed
type Status int

const (
	NotRun Status = iota
	Passed
	Failed
)

func (s Status) String() string {
	switch s {
	case NotRun:
		return "not_run"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result 一次检查的结果
type Result struct {
	Status   Status
	Expected []string
	Observed []string // 子进程看到的完整参数向量
	Tail     []string // Observed 的最后 len(Expected) 个元素
	Diff     string   // 不匹配时 Expected 与 Tail 的差异
}

// Checker 启动 fixture 子进程
type Checker struct {
	// Executable 子进程可执行文件，默认为当前可执行文件
	Executable string
	// FixtureArgs 放在额外参数之前的参数，默认 [argv-fixture]
	FixtureArgs []string
	// Env 追加到子进程环境变量
	Env []string
	// Stderr 子进程 stderr，默认丢弃
	Stderr io.Writer
}

// NewChecker 创建以当前可执行文件为 fixture 的 Checker
func NewChecker() (*Checker, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("定位当前可执行文件失败: %w", err)
	}
	return &Checker{Executable: exe, FixtureArgs: []string{FixtureCommand}}, nil
}

// Observe 启动子进程并返回它看到的完整参数向量
func (c *Checker) Observe(ctx context.Context, extraArgs []string) ([]string, error) {
	args := make([]string, 0, len(c.FixtureArgs)+len(extraArgs))
	args = append(args, c.FixtureArgs...)
	args = append(args, extraArgs...)

	cmd := exec.CommandContext(ctx, c.Executable, args...)
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stderr = c.Stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("fixture 进程失败: %w", err)
	}
	return DecodeArgv(out)
}

// Run 执行检查：子进程参数向量的尾部必须与 extraArgs 完全一致
func (c *Checker) Run(ctx context.Context, extraArgs []string) (*Result, error) {
	observed, err := c.Observe(ctx, extraArgs)
	if err != nil {
		return nil, err
	}
	res := Evaluate(extraArgs, observed)
	checkLog.WithField("status", res.Status.String()).Debugf("argv 检查完成: expected=%q observed=%q", extraArgs, observed)
	return res, nil
}

// Evaluate 比较期望参数与观察到的参数向量
func Evaluate(expected, observed []string) *Result {
	res := &Result{
		Expected: expected,
		Observed: observed,
		Tail:     Tail(observed, len(expected)),
	}
	if cmp.Equal(expected, res.Tail) {
		res.Status = Passed
		return res
	}
	res.Status = Failed
	res.Diff = cmp.Diff(expected, res.Tail)
	return res
}

// Tail 返回 argv 的最后 n 个元素；argv 不足 n 个时返回整个 argv
func Tail(argv []string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	if len(argv) <= n {
		return append([]string{}, argv...)
	}
	return append([]string{}, argv[len(argv)-n:]...)
}

// DecodeArgv 解析 fixture 输出的 JSON 数组
func DecodeArgv(out []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(out)
	var argv []string
	if err := json.Unmarshal(trimmed, &argv); err != nil {
		return nil, fmt.Errorf("无法解析 fixture 输出 %q: %w", truncate(string(trimmed), 200), err)
	}
	return argv, nil
}

// WriteArgv 把参数向量以 JSON 数组写出
func WriteArgv(w io.Writer, argv []string) error {
	return json.NewEncoder(w).Encode(argv)
}

// Fixture 是子进程的主体：加载所有脚本运行时，然后输出 os.Args
func Fixture(w io.Writer) error {
	if _, err := bridge.WarmupAll(); err != nil {
		return err
	}
	return WriteArgv(w, os.Args)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}
