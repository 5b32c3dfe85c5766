// Package registry 保存 oracle、strategy、atomizer 的静态按名工厂表：
// 外部接口所要求的插件发现机制，实现为一个在 init 时填充的简单
// name->factory 映射，不做任何动态加载。
package registry

import (
	"bytes"
	"encoding/json"

	"lithium/internal/atomize"
	"lithium/internal/oracle"
	"lithium/internal/strategy"
	"lithium/internal/testcase"
	execoracle "lithium/plugins/oracle/exec"
	mockoracle "lithium/plugins/oracle/mock"
	pipeoracle "lithium/plugins/oracle/pipe"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，让 oracle JSON
// 选项里的拼写错误立刻暴露，而不是被悄悄忽略。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewOracle 工厂签名：接收原样 JSON Options。
type NewOracle func(raw json.RawMessage) (oracle.Oracle, error)

// Oracle: 传输方式注册表。内置 "exec"（每次 test 调用一个子进程）与
// "pipe"（说行分隔 JSON 的常驻辅助进程）；"mock" 供测试使用。
var Oracle = map[string]NewOracle{
	"exec": func(raw json.RawMessage) (oracle.Oracle, error) {
		var opts execoracle.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return execoracle.New(opts), nil
	},
	"pipe": func(raw json.RawMessage) (oracle.Oracle, error) {
		var opts pipeoracle.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return pipeoracle.New(opts), nil
	},
	"mock": func(raw json.RawMessage) (oracle.Oracle, error) {
		var opts mockoracle.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return mockoracle.New(opts), nil
	},
}

// Atomizer: 名字到原子化器的映射。CLI 布尔 flag（--char、--symbol、
// 默认 line）的选择发生在 internal/config；本注册表的存在是为了让更
// 丰富的 JsStr 与 Attribute 原子化器无需改动 flag 解析即可被使用。
var Atomizer = map[string]testcase.Atomizer{
	"line":      atomize.Line{},
	"char":      atomize.Char{},
	"symbol":    atomize.Symbol{},
	"jsstr":     atomize.JsStr{},
	"attribute": atomize.Attribute{},
}

// Strategy: --strategy 名字到其实现的映射。
var Strategy = map[string]strategy.Strategy{
	"check-only":                    strategy.CheckOnly{},
	"minimize":                      strategy.Minimize{},
	"minimize-around":               strategy.MinimizeSurroundingPairs{},
	"minimize-balanced":             strategy.MinimizeBalancedPairs{},
	"minimize-collapse-brace":       strategy.CollapseEmptyBraces{},
	"replace-properties-by-globals": strategy.ReplacePropertiesByGlobals{},
	"replace-arguments-by-globals":  strategy.ReplaceArgumentsByGlobals{},
}
