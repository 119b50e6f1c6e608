package debuggate

import "sync"

// FlagDetector 由程序显式调用 Attach 标记“已附加”的探测器，主要用于测试。
type FlagDetector struct {
	mu       sync.Mutex
	attached bool
	identity string
	notify   chan string
}

// NewFlagDetector 创建未附加状态的 FlagDetector
func NewFlagDetector() *FlagDetector {
	return &FlagDetector{notify: make(chan string, 1)}
}

// Attach 标记调试器已附加。重复调用无效。
func (d *FlagDetector) Attach(identity string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.attached {
		return
	}
	d.attached = true
	d.identity = identity
	d.notify <- identity
}

// Attached 实现 Detector
func (d *FlagDetector) Attached() (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attached, d.identity
}

// PollingOnly 返回只暴露 Detector 的包装，强制 Gate 走轮询路径
func (d *FlagDetector) PollingOnly() Detector {
	return pollingOnly{d}
}

type pollingOnly struct{ d *FlagDetector }

func (p pollingOnly) Attached() (bool, string) { return p.d.Attached() }

// AttachNotify 实现 Notifier
func (d *FlagDetector) AttachNotify() <-chan string {
	return d.notify
}
