// Package lua runs algorithms written in Lua on gopher-lua.
package lua

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/betbot/algohost/internal/bridge"
)

// Name 运行时名称
const Name = "lua"

func init() {
	bridge.Register(bridge.Runtime{Name: Name, Load: Load, Warmup: Warmup})
}

// script 一个 Lua state，gopher-lua 的 LState 不是线程安全的，由 bridge.Algorithm 串行调用
type script struct {
	L *lua.LState
}

// newState 创建只打开安全库的 Lua state
// 不打开 io、os、debug，并移除 base 库里的 dofile、loadfile：脚本只能通过宿主函数与外界交互
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// Warmup 创建并关闭一个空 state
func Warmup() error {
	L := newState()
	L.Close()
	return nil
}

// Load 加载 Lua 脚本，脚本必须定义全局函数 Initialize 和 OnData
func Load(path string, host *bridge.Host) (bridge.Script, error) {
	L := newState()
	bind(L, host)

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, err
	}
	for _, fn := range []string{"Initialize", "OnData"} {
		if L.GetGlobal(fn).Type() != lua.LTFunction {
			L.Close()
			return nil, fmt.Errorf("lua script must define function %s", fn)
		}
	}
	return &script{L: L}, nil
}

func bind(L *lua.LState, host *bridge.Host) {
	logFn := L.NewFunction(func(L *lua.LState) int {
		host.Log(joinArgs(L))
		return 0
	})
	L.SetGlobal("Log", logFn)
	L.SetGlobal("print", logFn)

	L.SetGlobal("SetCash", L.NewFunction(func(L *lua.LState) int {
		if err := host.SetCash(float64(L.CheckNumber(1))); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))
	L.SetGlobal("Cash", L.NewFunction(func(L *lua.LState) int {
		cash, err := host.Cash()
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(lua.LNumber(cash))
		return 1
	}))
	L.SetGlobal("AttachDebugger", L.NewFunction(func(L *lua.LState) int {
		host.AttachDebugger()
		return 0
	}))
}

func joinArgs(L *lua.LState) string {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	return strings.Join(parts, " ")
}

func (s *script) callGlobal(name string, args ...lua.LValue) error {
	return s.L.CallByParam(lua.P{
		Fn:      s.L.GetGlobal(name),
		NRet:    0,
		Protect: true,
	}, args...)
}

func (s *script) CallInitialize() error {
	return s.callGlobal("Initialize")
}

func (s *script) CallOnData(data string) error {
	return s.callGlobal("OnData", lua.LString(data))
}

func (s *script) Close() error {
	s.L.Close()
	return nil
}
