//go:build linux

package debuggate

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TracerDetector 通过 /proc/self/status 的 TracerPid 判断是否被 ptrace（dlv、gdb 等）
type TracerDetector struct {
	procRoot string
}

// NewPlatformDetector 返回当前平台的调试器探测器
func NewPlatformDetector() Detector {
	return &TracerDetector{procRoot: "/proc"}
}

// Attached 实现 Detector
func (d *TracerDetector) Attached() (bool, string) {
	pid, err := d.tracerPid()
	if err != nil || pid == 0 {
		return false, ""
	}
	return true, d.identity(pid)
}

func (d *TracerDetector) tracerPid() (int, error) {
	data, err := os.ReadFile(d.procRoot + "/self/status")
	if err != nil {
		return 0, err
	}
	return parseTracerPid(data)
}

func (d *TracerDetector) identity(pid int) string {
	comm, err := os.ReadFile(fmt.Sprintf("%s/%d/comm", d.procRoot, pid))
	name := strings.TrimSpace(string(comm))
	if err != nil || name == "" {
		name = "tracer"
	}
	return fmt.Sprintf("%s (pid %d)", name, pid)
}

func parseTracerPid(status []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(status))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "TracerPid:") {
			continue
		}
		return strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "TracerPid:")))
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("status 中没有 TracerPid 字段")
}
