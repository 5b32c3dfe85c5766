package contract

import "path"

// NormalizeFileID: 将路径规范化为跨平台稳定的 FileID —— 反斜杠统一转为
// 正斜杠，再经 path.Clean 去除冗余分隔符与 "."/".." 段。不做隐式绝对化，
// 相对/绝对语义保持不变。
func NormalizeFileID(p string) FileID {
	s := make([]rune, 0, len(p))
	for _, r := range p {
		if r == '\\' {
			r = '/'
		}
		s = append(s, r)
	}
	return FileID(path.Clean(string(s)))
}
