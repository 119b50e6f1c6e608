// Package algorithm 定义宿主与算法之间的能力边界。
//
// 宿主不依赖任何算法基类：算法只通过 Setup 设置初始资金，
// 通过只读的 PortfolioView 观察现金余额。
package algorithm

import (
	"github.com/shopspring/decimal"
)

// Setup 初始化阶段暴露给算法的能力
type Setup interface {
	SetCash(cash decimal.Decimal)
}

// PortfolioView 数据回调中暴露给算法的只读快照
type PortfolioView interface {
	Cash() decimal.Decimal
}

// Algorithm 宿主消费的两个生命周期钩子
type Algorithm interface {
	ID() string
	// Initialize 只调用一次
	Initialize(setup Setup) error
	// OnData 每个行情 tick 调用一次，data 对宿主不透明
	OnData(data string, portfolio PortfolioView) error
}

// Gate 调试器等待点，*debuggate.Gate 实现此接口
type Gate interface {
	AwaitAttach()
}

// GateSetter 可选接口：需要在回调内等待调试器的算法实现此接口，宿主在 Initialize 之前注入
type GateSetter interface {
	SetDebugGate(gate Gate)
}

// Closer 可选接口：持有运行时资源（脚本解释器）的算法在宿主关闭时被释放
type Closer interface {
	Close() error
}
