package atomize

import (
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// JsStr 将文件当作包含零个或多个引号字符串字面量（单引号、双引号或
// 反引号）的源文本来解析，只将这些字面量内部的字符原子化；其余部分
// ——代码、引号定界符，以及完整的反斜杠转义序列——都是固定胶水，使用
// 分段式 Testcase 模型（见 testcase.NewSegmented）。这保证约简永远不会
// 产生带悬空转义或引号不匹配的字符串字面量。
type JsStr struct{}

func (JsStr) Atomize(path string, data []byte) (*testcase.Testcase, error) {
	glue, parts := scanJsStr(data)
	if len(parts) == 0 {
		return nil, contract.ErrEmptyReducibleRegion
	}
	return testcase.NewSegmented(path, glue, parts), nil
}

// scanJsStr 遍历 data 并跟踪是否处于引号字面量内部。在字面量内部，每
// 个普通字符自成一个原子；反斜杠与它转义的字符一起作为胶水附着在当前
// 原子片段的边界上，使约简永远不会拆分一个转义序列。
func scanJsStr(data []byte) (glue [][]byte, parts [][]byte) {
	var curGlue []byte
	inString := false
	var quote byte

	flushGlue := func() []byte {
		g := curGlue
		curGlue = nil
		return g
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		if !inString {
			curGlue = append(curGlue, c)
			if c == '"' || c == '\'' || c == '`' {
				inString = true
				quote = c
			}
			continue
		}
		// 处于字符串内部
		if c == '\\' && i+1 < len(data) {
			curGlue = append(curGlue, c, data[i+1])
			i++
			continue
		}
		if c == quote {
			curGlue = append(curGlue, c)
			inString = false
			continue
		}
		glue = append(glue, flushGlue())
		parts = append(parts, []byte{c})
	}
	glue = append(glue, flushGlue())
	return glue, parts
}
