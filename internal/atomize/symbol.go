package atomize

import (
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// symbolDelims 是固定的分隔符集合：花括号、圆括号、方括号、逗号、分号
// 与换行符。
var symbolDelims = map[byte]bool{
	'{': true, '}': true,
	'(': true, ')': true,
	'[': true, ']': true,
	',': true, ';': true,
	'\n': true,
}

// Symbol 按固定的 ASCII 分隔符集合切分整个文件，同时保留分隔符作为原
// 子边界：每个原子是分隔符之前的片段及其后的分隔符；相邻分隔符之间片
// 段为空，此时该分隔符自成一个原子（文件末尾没有后续分隔符的片段自成
// 最后一个原子）。此原子化方式不查找 DDBEGIN/
// DDEND 标记。
type Symbol struct{}

func (Symbol) Atomize(path string, data []byte) (*testcase.Testcase, error) {
	parts := splitSymbols(data)
	if len(parts) == 0 {
		return nil, contract.ErrEmptyReducibleRegion
	}
	return testcase.New(path, nil, nil, parts), nil
}

func splitSymbols(data []byte) [][]byte {
	var parts [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		if symbolDelims[data[i]] {
			parts = append(parts, data[start:i+1])
			start = i + 1
		}
	}
	if start < len(data) {
		parts = append(parts, data[start:])
	}
	return parts
}
