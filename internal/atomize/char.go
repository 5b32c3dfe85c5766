package atomize

import (
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// Char 将可约简区域切分为每个 Unicode 码点一个原子（而非每字节一个）：
// 码点对文本类测试用例而言是更有用的单位，因为一个多字节 rune 永远不
// 会被拆分到两个原子之间。遵循 DDBEGIN/DDEND。
type Char struct{}

func (Char) Atomize(path string, data []byte) (*testcase.Testcase, error) {
	before, middle, after, err := splitDD(data)
	if err != nil {
		return nil, err
	}
	parts := splitRunes(middle)
	if len(parts) == 0 {
		return nil, contract.ErrEmptyReducibleRegion
	}
	return testcase.New(path, before, after, parts), nil
}

func splitRunes(data []byte) [][]byte {
	var parts [][]byte
	s := string(data)
	for _, r := range s {
		parts = append(parts, []byte(string(r)))
	}
	return parts
}
