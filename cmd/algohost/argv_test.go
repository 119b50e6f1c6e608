package main

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/algohost/internal/argvcheck"
)

// swapTailEnv 让 fixture 子进程交换最后两个参数，制造不匹配
const swapTailEnv = "ALGOHOST_ARGV_SWAP_TAIL"

// TestMain argv-check 以测试二进制自身作为 fixture 子进程：
// 子进程的第一个参数是 argv-fixture 时走真实的 cobra 子命令。
func TestMain(m *testing.M) {
	if len(os.Args) < 2 || os.Args[1] != argvcheck.FixtureCommand {
		os.Exit(m.Run())
	}

	if os.Getenv(swapTailEnv) != "" && len(os.Args) >= 4 {
		argv := append([]string{}, os.Args...)
		n := len(argv)
		argv[n-2], argv[n-1] = argv[n-1], argv[n-2]
		if err := argvcheck.WriteArgv(os.Stdout, argv); err != nil {
			os.Exit(2)
		}
		os.Exit(0)
	}

	root := newRootCommand()
	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	os.Exit(0)
}

func TestArgvCheck_Passed(t *testing.T) {
	out, err := executeRoot(t, "", "argv-check", "foo", "bar")
	require.NoError(t, err)
	assert.Contains(t, out, "status:   passed")
	assert.Contains(t, out, `expected: ["foo" "bar"]`)
	assert.Contains(t, out, argvcheck.FixtureCommand)
}

func TestArgvCheck_FlagLikeArgsReachFixture(t *testing.T) {
	out, err := executeRoot(t, "", "argv-check", "--", "--help", "-x")
	require.NoError(t, err)
	assert.Contains(t, out, "status:   passed")
	assert.Contains(t, out, `expected: ["--help" "-x"]`)
}

func TestArgvCheck_MismatchFails(t *testing.T) {
	t.Setenv(swapTailEnv, "1")

	out, err := executeRoot(t, "", "argv-check", "foo", "bar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argv tail mismatch")
	assert.Contains(t, out, "status:   failed")
	assert.Contains(t, out, "diff (-expected +tail):")
}
