// Package yaegi runs algorithms written as interpreted Go on yaegi.
//
// Scripts (examples/algorithm.yaegi) are `package main` sources that import
// the host package "algohost":
//
//	import "algohost"
//
//	func Initialize()         { algohost.SetCash(1000) }
//	func OnData(data string) { algohost.AttachDebugger(); ... algohost.Cash() ... }
package yaegi

import (
	"fmt"
	"os"
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/betbot/algohost/internal/bridge"
)

// Name 运行时名称
const Name = "yaegi"

// hostImportPath 脚本中 import 的宿主包路径
const hostImportPath = "algohost"

func init() {
	bridge.Register(bridge.Runtime{Name: Name, Load: Load, Warmup: Warmup})
}

type script struct {
	initialize func()
	onData     func(string)
}

func newInterpreter() (*interp.Interpreter, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}
	return i, nil
}

// Warmup 创建一个空解释器
func Warmup() error {
	_, err := newInterpreter()
	return err
}

// Load 加载 Go 脚本，脚本必须定义 func Initialize() 和 func OnData(string)
func Load(path string, host *bridge.Host) (bridge.Script, error) {
	i, err := newInterpreter()
	if err != nil {
		return nil, err
	}
	if err := i.Use(exports(host)); err != nil {
		return nil, fmt.Errorf("failed to bind host: %w", err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if _, err := i.Eval(string(src)); err != nil {
		return nil, err
	}

	s := &script{}
	v, err := i.Eval("main.Initialize")
	if err != nil {
		return nil, fmt.Errorf("Initialize function not found: %w", err)
	}
	var ok bool
	if s.initialize, ok = v.Interface().(func()); !ok {
		return nil, fmt.Errorf("Initialize has incorrect signature (expected: func())")
	}

	v, err = i.Eval("main.OnData")
	if err != nil {
		return nil, fmt.Errorf("OnData function not found: %w", err)
	}
	if s.onData, ok = v.Interface().(func(string)); !ok {
		return nil, fmt.Errorf("OnData has incorrect signature (expected: func(string))")
	}
	return s, nil
}

func exports(host *bridge.Host) interp.Exports {
	return interp.Exports{
		hostImportPath + "/" + hostImportPath: {
			"SetCash": reflect.ValueOf(func(v float64) {
				if err := host.SetCash(v); err != nil {
					panic(err)
				}
			}),
			"Cash": reflect.ValueOf(func() float64 {
				cash, err := host.Cash()
				if err != nil {
					panic(err)
				}
				return cash
			}),
			"AttachDebugger": reflect.ValueOf(host.AttachDebugger),
			"Log":            reflect.ValueOf(host.Log),
		},
	}
}

// 解释器内的 panic 由 bridge.Algorithm 恢复为错误
func (s *script) CallInitialize() error {
	s.initialize()
	return nil
}

func (s *script) CallOnData(data string) error {
	s.onData(data)
	return nil
}

func (s *script) Close() error { return nil }
