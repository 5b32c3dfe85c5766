package testcase

import (
	"fmt"
	"os"
	"strings"

	"lithium/pkg/contract"
)

// Atomizer: 从原始文件内容构造 Testcase。实现方通过 New（纯 before/
// parts/after）或 NewSegmented（交错的 glue/parts）构造，取决于该原子化
// 方式采用哪种模型；无论哪种，结果的 Bytes() 必须与 data 逐字节相同。
type Atomizer interface {
	Atomize(path string, data []byte) (*Testcase, error)
}

// Load 读取一次 path 并原子化其内容；磁盘上的字节成为本次运行剩余阶段的
// 真值来源。path 先经 contract.NormalizeFileID 规范化（统一分隔符、清理
// "."/".." 段），越出当前工作目录的路径（规范化后仍以 ".." 开头）或空
// 路径一律拒绝为 ErrPathInvalid。
func Load(path string, a Atomizer) (*Testcase, error) {
	id := contract.NormalizeFileID(path)
	normalized := string(id)
	if normalized == "" || normalized == "." || strings.HasPrefix(normalized, "..") {
		return nil, fmt.Errorf("%w: %s", contract.ErrPathInvalid, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return a.Atomize(normalized, data)
}
