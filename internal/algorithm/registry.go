package algorithm

import (
	"fmt"
	"sort"
	"sync"
)

// Options 创建算法实例的参数
type Options struct {
	// Script 脚本路径，原生算法忽略
	Script string
}

// Factory 创建算法实例
type Factory func(opts Options) (Algorithm, error)

var (
	factories   = make(map[string]Factory)
	factoriesMu sync.RWMutex
)

// Register 注册算法类型
// 算法或运行时桥应该在 init() 函数中调用此函数进行注册
func Register(id string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Errorf("algorithm %s already registered", id))
	}
	factories[id] = factory
}

// New 按 id 创建算法实例
func New(id string, opts Options) (Algorithm, error) {
	factoriesMu.RLock()
	factory, exists := factories[id]
	factoriesMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("algorithm %s not found (registered: %v)", id, Registered())
	}
	return factory(opts)
}

// Registered 返回已注册的算法 id（排序后）
func Registered() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	ids := make([]string, 0, len(factories))
	for id := range factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
