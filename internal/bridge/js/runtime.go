// Package js runs algorithms written in JavaScript on goja.
package js

import (
	"fmt"
	"os"
	"strings"

	"github.com/dop251/goja"

	"github.com/betbot/algohost/internal/bridge"
)

// Name 运行时名称
const Name = "js"

func init() {
	bridge.Register(bridge.Runtime{Name: Name, Load: Load, Warmup: Warmup})
}

type script struct {
	vm         *goja.Runtime
	initialize goja.Callable
	onData     goja.Callable
}

// Warmup 创建一个空 VM
func Warmup() error {
	vm := goja.New()
	_, err := vm.RunString("undefined")
	return err
}

// Load 加载 JS 脚本，脚本必须定义全局函数 Initialize 和 OnData
func Load(path string, host *bridge.Host) (bridge.Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	vm := goja.New()
	if err := bind(vm, host); err != nil {
		return nil, err
	}
	if _, err := vm.RunScript(path, string(src)); err != nil {
		return nil, err
	}

	s := &script{vm: vm}
	var ok bool
	if s.initialize, ok = goja.AssertFunction(vm.Get("Initialize")); !ok {
		return nil, fmt.Errorf("js script must define function Initialize")
	}
	if s.onData, ok = goja.AssertFunction(vm.Get("OnData")); !ok {
		return nil, fmt.Errorf("js script must define function OnData")
	}
	return s, nil
}

func bind(vm *goja.Runtime, host *bridge.Host) error {
	logFn := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}
		host.Log(strings.Join(parts, " "))
		return goja.Undefined()
	}

	console := vm.NewObject()
	if err := console.Set("log", logFn); err != nil {
		return err
	}

	bindings := map[string]interface{}{
		"Log":     logFn,
		"console": console,
		"SetCash": func(v float64) {
			if err := host.SetCash(v); err != nil {
				panic(vm.NewGoError(err))
			}
		},
		"Cash": func() float64 {
			cash, err := host.Cash()
			if err != nil {
				panic(vm.NewGoError(err))
			}
			return cash
		},
		"AttachDebugger": host.AttachDebugger,
	}
	for name, v := range bindings {
		if err := vm.Set(name, v); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	return nil
}

func (s *script) CallInitialize() error {
	_, err := s.initialize(goja.Undefined())
	return err
}

func (s *script) CallOnData(data string) error {
	_, err := s.onData(goja.Undefined(), s.vm.ToValue(data))
	return err
}

// Close goja 运行时没有需要释放的资源，交给 GC
func (s *script) Close() error { return nil }
