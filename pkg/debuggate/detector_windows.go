//go:build windows

package debuggate

import (
	"golang.org/x/sys/windows"
)

var procIsDebuggerPresent = windows.NewLazySystemDLL("kernel32.dll").NewProc("IsDebuggerPresent")

// DebuggerPresentDetector 使用 kernel32!IsDebuggerPresent
type DebuggerPresentDetector struct{}

// NewPlatformDetector 返回当前平台的调试器探测器
func NewPlatformDetector() Detector {
	return DebuggerPresentDetector{}
}

// Attached 实现 Detector
func (DebuggerPresentDetector) Attached() (bool, string) {
	if err := procIsDebuggerPresent.Find(); err != nil {
		return false, ""
	}
	r, _, _ := procIsDebuggerPresent.Call()
	if r == 0 {
		return false, ""
	}
	return true, "native"
}
