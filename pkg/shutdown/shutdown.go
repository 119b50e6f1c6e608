package shutdown

import (
	"context"
	"sync"

	"github.com/betbot/algohost/pkg/logger"
)

// Handler 关闭处理函数
type Handler func(ctx context.Context) error

type namedHandler struct {
	name    string
	handler Handler
}

// Manager 关闭管理器：按注册的逆序依次执行回调
// （后加载的资源先释放，例如先关闭脚本运行时再关闭日志文件）
type Manager struct {
	mu        sync.Mutex
	callbacks []namedHandler
	done      bool
}

// NewManager 创建新的关闭管理器
func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown 注册关闭回调
func (m *Manager) OnShutdown(name string, handler Handler) {
	if handler == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, namedHandler{name: name, handler: handler})
}

// Shutdown 执行所有关闭回调（阻塞调用，只执行一次）
// ctx 超时后剩余回调被跳过。返回第一个出错的回调的错误。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil
	}
	m.done = true
	callbacks := m.callbacks
	m.callbacks = nil
	m.mu.Unlock()

	if len(callbacks) == 0 {
		logger.Debugf("没有注册的关闭回调")
		return nil
	}

	var firstErr error
	for i := len(callbacks) - 1; i >= 0; i-- {
		cb := callbacks[i]
		if err := ctx.Err(); err != nil {
			logger.Warnf("关闭超时，跳过 %d 个回调: %v", i+1, err)
			if firstErr == nil {
				firstErr = err
			}
			break
		}
		if err := cb.handler(ctx); err != nil {
			logger.Errorf("关闭回调 %s 失败: %v", cb.name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
