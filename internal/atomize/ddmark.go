// Package atomize 实现将原始文件字节转为 Testcase 的 before/parts/
// after 三元组的各种原子化方式：Line、Char、Symbol、JsStr 与
// Attribute。
package atomize

import (
	"bytes"
	"fmt"

	"lithium/pkg/contract"
)

const (
	ddbegin = "DDBEGIN"
	ddend   = "DDEND"
)

// splitDD 以行为粒度定位 DDBEGIN/DDEND 标记，返回固定的 before/after
// 区域与可约简的 middle。若不存在 DDBEGIN 所在行，before 与 after 为
// 空，middle 为整个输入。DDBEGIN 出现而之后没有 DDEND 是一种错误。
func splitDD(data []byte) (before, middle, after []byte, err error) {
	beginIdx := bytes.Index(data, []byte(ddbegin))
	if beginIdx < 0 {
		return nil, data, nil, nil
	}

	// before 延伸至 DDBEGIN 所在行的末尾。
	lineEnd := bytes.IndexByte(data[beginIdx:], '\n')
	var beforeEnd int
	if lineEnd < 0 {
		beforeEnd = len(data)
	} else {
		beforeEnd = beginIdx + lineEnd + 1
	}
	before = data[:beforeEnd]
	rest := data[beforeEnd:]

	endIdx := bytes.Index(rest, []byte(ddend))
	if endIdx < 0 {
		return nil, nil, nil, fmt.Errorf("%w", contract.ErrMissingDDEnd)
	}
	lineStart := bytes.LastIndexByte(rest[:endIdx], '\n')
	afterStart := lineStart + 1 // 前面没有换行符时 -1+1 == 0

	middle = rest[:afterStart]
	after = rest[afterStart:]
	return before, middle, after, nil
}
