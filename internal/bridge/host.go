package bridge

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/betbot/algohost/internal/algorithm"
)

var (
	// ErrNotInitializing SetCash 只能在 Initialize 中调用
	ErrNotInitializing = errors.New("SetCash is only available during Initialize")
	// ErrNoSnapshot Cash 只能在 OnData 中调用
	ErrNoSnapshot = errors.New("Cash is only available during OnData")
)

// Host 暴露给脚本的宿主能力。
// setup 只在 Initialize 期间有效，view 只在 OnData 期间有效。
type Host struct {
	mu    sync.Mutex
	setup algorithm.Setup
	view  algorithm.PortfolioView
	gate  algorithm.Gate
	log   *logrus.Entry
}

// NewHost 创建 Host，runtime 用作日志字段
func NewHost(runtime string) *Host {
	return &Host{log: logrus.WithField("runtime", runtime)}
}

// SetCash 设置初始资金
func (h *Host) SetCash(v float64) error {
	h.mu.Lock()
	setup := h.setup
	h.mu.Unlock()
	if setup == nil {
		return ErrNotInitializing
	}
	setup.SetCash(decimal.NewFromFloat(v))
	return nil
}

// Cash 读取当前快照中的现金余额
func (h *Host) Cash() (float64, error) {
	h.mu.Lock()
	view := h.view
	h.mu.Unlock()
	if view == nil {
		return 0, ErrNoSnapshot
	}
	return view.Cash().InexactFloat64(), nil
}

// AttachDebugger 等待调试器（未注入 gate 时直接返回）
func (h *Host) AttachDebugger() {
	h.mu.Lock()
	gate := h.gate
	h.mu.Unlock()
	if gate != nil {
		gate.AwaitAttach()
	}
}

// Log 以 info 级别输出脚本日志
func (h *Host) Log(msg string) {
	h.log.Info(msg)
}

func (h *Host) setGate(gate algorithm.Gate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gate = gate
}

func (h *Host) beginInitialize(setup algorithm.Setup) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setup = setup
}

func (h *Host) beginData(view algorithm.PortfolioView) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.view = view
}

func (h *Host) end() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setup = nil
	h.view = nil
}
