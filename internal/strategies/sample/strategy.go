package sample

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/betbot/algohost/internal/algorithm"
)

const ID = "sample"

// StartingCash Initialize 设置的初始资金
var StartingCash = decimal.NewFromInt(1000)

var log = logrus.WithField("strategy", ID)

func init() {
	algorithm.Register(ID, func(algorithm.Options) (algorithm.Algorithm, error) {
		return &MyAlgorithm{}, nil
	})
}

// MyAlgorithm 原生示例算法：
// - Initialize 设置初始资金
// - OnData 先等待调试器（如果启用），再读取并打印现金
type MyAlgorithm struct {
	gate algorithm.Gate
}

func (a *MyAlgorithm) ID() string { return ID }

// SetDebugGate 实现 algorithm.GateSetter
func (a *MyAlgorithm) SetDebugGate(gate algorithm.Gate) { a.gate = gate }

func (a *MyAlgorithm) Initialize(setup algorithm.Setup) error {
	setup.SetCash(StartingCash)
	return nil
}

func (a *MyAlgorithm) OnData(data string, portfolio algorithm.PortfolioView) error {
	// 必须在读取快照之前等待，调试器附加后才能观察到回调内的状态
	if a.gate != nil {
		a.gate.AwaitAttach()
	}
	cash := portfolio.Cash()
	log.WithField("cash", cash.String()).Infof("OnData: data = %s, cash = %s", data, cash.String())
	return nil
}
