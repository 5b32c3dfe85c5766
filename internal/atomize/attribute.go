package atomize

import (
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// Attribute 原子化标签内部类 HTML/XML 的属性赋值：`<tag ...>` 内每个
// `name=value` 或 `name="value"` 词元是一个原子；标签名、尖括号与属性
// 间的空白都是固定胶水，使用分段式 Testcase 模型。标签之外的字节同样
// 是胶水。
type Attribute struct{}

func (Attribute) Atomize(path string, data []byte) (*testcase.Testcase, error) {
	glue, parts := scanAttributes(data)
	if len(parts) == 0 {
		return nil, contract.ErrEmptyReducibleRegion
	}
	return testcase.NewSegmented(path, glue, parts), nil
}

func scanAttributes(data []byte) (glue [][]byte, parts [][]byte) {
	var curGlue []byte
	i := 0
	n := len(data)

	for i < n {
		if data[i] != '<' {
			curGlue = append(curGlue, data[i])
			i++
			continue
		}
		// 找到标签起点；将直到（包含）标签名的一切都作为胶水发出，
		// 然后扫描属性。
		curGlue = append(curGlue, data[i])
		i++
		for i < n && !isTagSpace(data[i]) && data[i] != '>' {
			curGlue = append(curGlue, data[i])
			i++
		}

		for i < n && data[i] != '>' {
			if isTagSpace(data[i]) {
				curGlue = append(curGlue, data[i])
				i++
				continue
			}
			// 属性词元：name[=value|="value"|='value']
			start := i
			for i < n && data[i] != '=' && !isTagSpace(data[i]) && data[i] != '>' {
				i++
			}
			if i < n && data[i] == '=' {
				i++
				if i < n && (data[i] == '"' || data[i] == '\'') {
					q := data[i]
					i++
					for i < n && data[i] != q {
						i++
					}
					if i < n {
						i++ // 消费掉闭合引号
					}
				} else {
					for i < n && !isTagSpace(data[i]) && data[i] != '>' {
						i++
					}
				}
			}
			glue = append(glue, curGlue)
			curGlue = nil
			parts = append(parts, data[start:i])
		}
		if i < n && data[i] == '>' {
			curGlue = append(curGlue, data[i])
			i++
		}
	}
	glue = append(glue, curGlue)
	return glue, parts
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
