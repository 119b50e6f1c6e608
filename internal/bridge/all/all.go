// Package all 导入所有脚本运行时以触发 init() 注册
package all

import (
	_ "github.com/betbot/algohost/internal/bridge/js"
	_ "github.com/betbot/algohost/internal/bridge/lua"
	_ "github.com/betbot/algohost/internal/bridge/yaegi"
)
