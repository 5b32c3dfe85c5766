package atomize

import (
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// Line 按换行符边界切分可约简区域；每个原子保留其后的换行符（若文件
// 末尾没有换行符，最后一个原子可能没有）。遵循 DDBEGIN/DDEND。
type Line struct{}

func (Line) Atomize(path string, data []byte) (*testcase.Testcase, error) {
	before, middle, after, err := splitDD(data)
	if err != nil {
		return nil, err
	}
	parts := splitLines(middle)
	if len(parts) == 0 {
		return nil, contract.ErrEmptyReducibleRegion
	}
	return testcase.New(path, before, after, parts), nil
}

// splitLines 在 '\n' 处将 data 切成原子，终止符归属前一个原子。没有
// 终止符的末尾片段自成最后一个原子。
func splitLines(data []byte) [][]byte {
	var parts [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			parts = append(parts, data[start:i+1])
			start = i + 1
		}
	}
	if start < len(data) {
		parts = append(parts, data[start:])
	}
	return parts
}
