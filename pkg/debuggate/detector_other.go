//go:build !linux && !windows

package debuggate

// nopDetector 在不支持探测的平台上永远报告未附加，Gate 会一直等待
type nopDetector struct{}

// NewPlatformDetector 返回当前平台的调试器探测器
func NewPlatformDetector() Detector {
	return nopDetector{}
}

func (nopDetector) Attached() (bool, string) { return false, "" }
