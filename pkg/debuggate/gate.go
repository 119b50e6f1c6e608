package debuggate

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// DefaultInterval 轮询调试器状态的间隔
const DefaultInterval = 100 * time.Millisecond

// Mode 调试模式，进程启动时设置一次，之后只读
type Mode int

const (
	// Disabled 不等待调试器
	Disabled Mode = iota
	// PauseUntilAttached 阻塞直到调试器附加
	PauseUntilAttached
)

func (m Mode) String() string {
	switch m {
	case Disabled:
		return "disabled"
	case PauseUntilAttached:
		return "pause"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode 解析配置中的调试模式字符串
// 兼容原始脚本里的数字写法：0=disabled, 1=pause
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "disabled", "off", "0", "false":
		return Disabled, nil
	case "pause", "pause_until_attached", "wait", "1", "true":
		return PauseUntilAttached, nil
	default:
		return Disabled, fmt.Errorf("未知的调试模式: %q", s)
	}
}

// Detector 报告当前进程是否有调试器附加
type Detector interface {
	// Attached 返回是否已附加以及调试器标识（未附加时为空）
	Attached() (bool, string)
}

// Notifier 可选接口：平台支持附加通知时，Gate 订阅通知而不是轮询
type Notifier interface {
	// AttachNotify 返回一个 channel，调试器附加时发送其标识
	AttachNotify() <-chan string
}

// Gate 在调试器附加前阻塞回调的执行
type Gate struct {
	mode     Mode
	interval time.Duration
	detector Detector
	out      io.Writer
}

// Option 配置 Gate
type Option func(*Gate)

// WithInterval 设置轮询间隔
func WithInterval(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.interval = d
		}
	}
}

// WithDetector 替换默认的平台调试器探测
func WithDetector(d Detector) Option {
	return func(g *Gate) {
		if d != nil {
			g.detector = d
		}
	}
}

// WithOutput 设置提示信息的输出位置（默认 stdout）
func WithOutput(w io.Writer) Option {
	return func(g *Gate) {
		if w != nil {
			g.out = w
		}
	}
}

// New 创建 Gate。mode 在创建后不可修改。
func New(mode Mode, opts ...Option) *Gate {
	g := &Gate{
		mode:     mode,
		interval: DefaultInterval,
		detector: NewPlatformDetector(),
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Mode 返回 Gate 的调试模式
func (g *Gate) Mode() Mode {
	if g == nil {
		return Disabled
	}
	return g.mode
}

// AwaitAttach 在 PauseUntilAttached 模式下阻塞直到调试器附加。
// 没有超时也没有取消：只能通过结束进程来中断。
func (g *Gate) AwaitAttach() {
	if g == nil || g.mode != PauseUntilAttached {
		return
	}

	fmt.Fprintln(g.out, "Waiting for debugger to attach...")

	var identity string
	if n, ok := g.detector.(Notifier); ok {
		identity = g.waitNotify(n)
	} else {
		identity = g.poll()
	}

	fmt.Fprintf(g.out, "%s debugger attached\n", identity)
}

func (g *Gate) poll() string {
	for {
		if attached, identity := g.detector.Attached(); attached {
			return identity
		}
		time.Sleep(g.interval)
	}
}

func (g *Gate) waitNotify(n Notifier) string {
	// 订阅前可能已经附加
	if attached, identity := g.detector.Attached(); attached {
		return identity
	}
	return <-n.AttachNotify()
}

var defaultGate = New(Disabled)

// Configure 设置进程级默认 Gate，只应在启动时调用一次（非线程安全）
func Configure(mode Mode, opts ...Option) *Gate {
	defaultGate = New(mode, opts...)
	return defaultGate
}

// Default 返回 Configure 设置的默认 Gate
func Default() *Gate {
	return defaultGate
}

// AwaitAttach 使用默认 Gate 等待调试器
func AwaitAttach() {
	defaultGate.AwaitAttach()
}
