// Package bridgetest 提供脚本运行时共用的测试工具
package bridgetest

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/algohost/internal/algorithm"
)

// Gate 记录 AwaitAttach 调用次数
type Gate struct {
	mu    sync.Mutex
	calls int
}

func (g *Gate) AwaitAttach() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
}

// Calls 返回 AwaitAttach 调用次数
func (g *Gate) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// View 只读快照，记录每次读取现金时 gate 已被调用的次数
type View struct {
	cash    decimal.Decimal
	gate    *Gate
	ReadsAt []int
}

// NewView 创建快照
func NewView(cash decimal.Decimal, gate *Gate) *View {
	return &View{cash: cash, gate: gate}
}

func (v *View) Cash() decimal.Decimal {
	v.ReadsAt = append(v.ReadsAt, v.gate.Calls())
	return v.cash
}

// WriteScript 把脚本写入临时目录并返回路径
func WriteScript(t *testing.T, name, src string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	return p
}

// RunLifecycle 按宿主顺序驱动脚本算法：注入 gate -> Initialize -> OnData，
// 检查初始资金、gate 先于读取现金、日志内容。
func RunLifecycle(t *testing.T, a algorithm.Algorithm) {
	t.Helper()
	hook := test.NewGlobal()
	defer hook.Reset()

	gate := &Gate{}
	setter, ok := a.(algorithm.GateSetter)
	require.True(t, ok, "script algorithm must accept a debug gate")
	setter.SetDebugGate(gate)

	portfolio := algorithm.NewPortfolio()
	require.NoError(t, a.Initialize(portfolio))
	assert.True(t, portfolio.Cash().Equal(decimal.NewFromInt(1000)), "cash = %s", portfolio.Cash())

	view := NewView(portfolio.Cash(), gate)
	require.NoError(t, a.OnData("tick-1", view))

	assert.Equal(t, 1, gate.Calls())
	assert.Equal(t, []int{1}, view.ReadsAt)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "OnData: data = tick-1, cash = 1000", entry.Message)

	if c, ok := a.(algorithm.Closer); ok {
		assert.NoError(t, c.Close())
	}
}
