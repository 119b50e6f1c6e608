package bridge

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/betbot/algohost/internal/algorithm"
)

// Script 一个已加载的脚本实例
type Script interface {
	CallInitialize() error
	CallOnData(data string) error
	Close() error
}

// Algorithm 把脚本适配为 algorithm.Algorithm。
// 脚本运行时不是线程安全的，所有调用串行执行。
type Algorithm struct {
	id     string
	host   *Host
	script Script

	mu     sync.Mutex
	closed bool
}

// NewAlgorithm 创建脚本算法
func NewAlgorithm(id string, host *Host, script Script) *Algorithm {
	return &Algorithm{id: id, host: host, script: script}
}

func (a *Algorithm) ID() string { return a.id }

// SetDebugGate 实现 algorithm.GateSetter
func (a *Algorithm) SetDebugGate(gate algorithm.Gate) { a.host.setGate(gate) }

func (a *Algorithm) Initialize(setup algorithm.Setup) error {
	return a.call("Initialize", func() error {
		a.host.beginInitialize(setup)
		defer a.host.end()
		return a.script.CallInitialize()
	})
}

func (a *Algorithm) OnData(data string, portfolio algorithm.PortfolioView) error {
	return a.call("OnData", func() error {
		a.host.beginData(portfolio)
		defer a.host.end()
		return a.script.CallOnData(data)
	})
}

// Close 释放脚本运行时，可重复调用
func (a *Algorithm) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.script.Close()
}

func (a *Algorithm) call(hook string, fn func() error) (err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errors.Errorf("%s: algorithm closed", a.id)
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%s.%s panic: %v", a.id, hook, r)
		}
	}()
	if err := fn(); err != nil {
		return errors.Wrapf(err, "%s.%s", a.id, hook)
	}
	return nil
}

// Runtime 一种脚本运行时
type Runtime struct {
	Name string
	// Load 加载脚本并绑定宿主函数
	Load func(path string, host *Host) (Script, error)
	// Warmup 创建并释放一个空运行时，不执行任何脚本
	Warmup func() error
}

var (
	runtimes   = make(map[string]Runtime)
	runtimesMu sync.RWMutex
)

// Register 注册脚本运行时，同时把它注册为同名算法
func Register(rt Runtime) {
	runtimesMu.Lock()
	if _, exists := runtimes[rt.Name]; exists {
		runtimesMu.Unlock()
		panic(fmt.Errorf("runtime %s already registered", rt.Name))
	}
	runtimes[rt.Name] = rt
	runtimesMu.Unlock()

	algorithm.Register(rt.Name, func(opts algorithm.Options) (algorithm.Algorithm, error) {
		a, err := Load(rt, opts.Script)
		if err != nil {
			return nil, err
		}
		return a, nil
	})
}

// Load 用指定运行时加载脚本
func Load(rt Runtime, path string) (*Algorithm, error) {
	if path == "" {
		return nil, errors.Errorf("%s: script path is empty", rt.Name)
	}
	host := NewHost(rt.Name)
	script, err := rt.Load(path, host)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s script %s", rt.Name, path)
	}
	return NewAlgorithm(rt.Name, host, script), nil
}

// WarmupAll 依次初始化所有已注册的运行时，返回已初始化的运行时名称
func WarmupAll() ([]string, error) {
	runtimesMu.RLock()
	list := make([]Runtime, 0, len(runtimes))
	for _, rt := range runtimes {
		list = append(list, rt)
	}
	runtimesMu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	names := make([]string, 0, len(list))
	for _, rt := range list {
		if rt.Warmup == nil {
			continue
		}
		if err := rt.Warmup(); err != nil {
			return names, errors.Wrapf(err, "warmup %s", rt.Name)
		}
		names = append(names, rt.Name)
	}
	return names, nil
}
