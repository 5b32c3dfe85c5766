// Package testcase 实现约简器的磁盘测试用例模型：一个固定的 before/
// after 信封包裹可变的原子序列，并保证崩溃安全的原子化落盘。
package testcase

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"lithium/pkg/contract"
)

// Testcase: before || join(parts) || after，与磁盘上 Path 的内容镜像。
//
// Line、Char、Symbol 三种原子化方式只需要纯两区模型：before/after 固定，
// parts 是可约简序列。JsStr 与 Attribute 需要在原子之间交错固定的、不可
// 删除的文本（例如字符串字面量外的代码，或属性周围的标签标记）；该固定
// 文本保存在 glue 中，长度为 len(parts)+1，glue[i] 紧邻 parts[i] 之前，
// glue[len(parts)] 扮演 after 的角色。纯两区模式下 glue 为 nil，直接使用
// before/after。
type Testcase struct {
	Path   string
	before []byte
	after  []byte
	parts  [][]byte
	glue   [][]byte
}

// New 由已切分的 before/parts/after 三元组构造 Testcase，供 Line、Char、
// Symbol 原子化器使用。不触碰磁盘。
func New(path string, before, after []byte, parts [][]byte) *Testcase {
	return &Testcase{Path: path, before: before, after: after, parts: parts}
}

// NewSegmented 由 JsStr、Attribute 原子化器使用的广义分段模型构造
// Testcase：len(glue) 必须等于 len(parts)+1。
func NewSegmented(path string, glue [][]byte, parts [][]byte) *Testcase {
	return &Testcase{Path: path, parts: parts, glue: glue}
}

// Before 返回固定、永不删除的前缀。
func (t *Testcase) Before() []byte {
	if t.glue != nil {
		return t.glue[0]
	}
	return t.before
}

// After 返回固定、永不删除的后缀。
func (t *Testcase) After() []byte {
	if t.glue != nil {
		return t.glue[len(t.glue)-1]
	}
	return t.after
}

// Len 返回可约简区域当前的原子数量。
func (t *Testcase) Len() int { return len(t.parts) }

// Part 返回下标 i 处原子的序列化字节。
func (t *Testcase) Part(i int) []byte { return t.parts[i] }

// Bytes 返回 before || parts... || after 的完整拼接（分段形式下则是 glue
// 与 parts 的交错拼接）。
func (t *Testcase) Bytes() []byte {
	var buf bytes.Buffer
	if t.glue != nil {
		for i, p := range t.parts {
			buf.Write(t.glue[i])
			buf.Write(p)
		}
		buf.Write(t.glue[len(t.glue)-1])
		return buf.Bytes()
	}
	buf.Grow(len(t.before) + len(t.after) + t.byteLen())
	buf.Write(t.before)
	for _, p := range t.parts {
		buf.Write(p)
	}
	buf.Write(t.after)
	return buf.Bytes()
}

func (t *Testcase) byteLen() int {
	n := 0
	for _, p := range t.parts {
		n += len(p)
	}
	return n
}

// Remove 删除 parts 中的连续区间 [lo, hi)，后续下标前移。越界的边界会被
// 裁剪到 [0, Len()]。对分段 Testcase，被删除区间两侧的 glue 会合并，确保
// 不丢失任何固定文本。
func (t *Testcase) Remove(lo, hi int) {
	if lo < 0 {
		lo = 0
	}
	if hi > len(t.parts) {
		hi = len(t.parts)
	}
	if lo >= hi {
		return
	}
	if t.glue != nil {
		merged := append(append([]byte{}, t.glue[lo]...), t.glue[hi]...)
		newGlue := make([][]byte, 0, len(t.glue)-(hi-lo))
		newGlue = append(newGlue, t.glue[:lo]...)
		newGlue = append(newGlue, merged)
		newGlue = append(newGlue, t.glue[hi+1:]...)
		t.glue = newGlue
	}
	t.parts = append(t.parts[:lo:lo], t.parts[hi:]...)
}

// Snapshot 捕获 parts（分段模式下连同 glue）以供之后 Restore。对原子字节
// 切片本身是浅拷贝（这些切片从不被原地修改），但对切片头是深拷贝，因此
// 之后的 Remove 调用不会破坏已保存的快照。
type Snapshot struct {
	parts [][]byte
	glue  [][]byte
}

// Snapshot 返回一个只能配合 Restore 使用的不透明令牌。
func (t *Testcase) Snapshot() Snapshot {
	cp := make([][]byte, len(t.parts))
	copy(cp, t.parts)
	s := Snapshot{parts: cp}
	if t.glue != nil {
		gc := make([][]byte, len(t.glue))
		copy(gc, t.glue)
		s.glue = gc
	}
	return s
}

// Restore 用之前捕获的 Snapshot 替换 parts（及 glue）。
func (t *Testcase) Restore(s Snapshot) {
	cp := make([][]byte, len(s.parts))
	copy(cp, s.parts)
	t.parts = cp
	if s.glue != nil {
		gc := make([][]byte, len(s.glue))
		copy(gc, s.glue)
		t.glue = gc
	}
}

// Save 原子化地将当前测试用例写入 Path：先写到同目录下的临时文件，
// fsync，再 rename 覆盖目标文件，最后尽力 fsync 所在目录以保证崩溃安全。
// 失败时磁盘上原有文件保持不变。
func (t *Testcase) Save() error {
	dir := filepath.Dir(t.Path)
	tmp, err := os.CreateTemp(dir, ".lithium-tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", contract.ErrInvariantViolation, err)
	}
	tmpName := tmp.Name()
	cleanupTmp := true
	defer func() {
		if cleanupTmp {
			_ = os.Remove(tmpName)
		}
	}()

	if t.glue != nil {
		for i, p := range t.parts {
			if _, err := tmp.Write(t.glue[i]); err != nil {
				tmp.Close()
				return ioErr("write glue", err)
			}
			if _, err := tmp.Write(p); err != nil {
				tmp.Close()
				return ioErr("write part", err)
			}
		}
		if _, err := tmp.Write(t.glue[len(t.glue)-1]); err != nil {
			tmp.Close()
			return ioErr("write glue", err)
		}
	} else {
		if _, err := tmp.Write(t.before); err != nil {
			tmp.Close()
			return ioErr("write before", err)
		}
		for _, p := range t.parts {
			if _, err := tmp.Write(p); err != nil {
				tmp.Close()
				return ioErr("write part", err)
			}
		}
		if _, err := tmp.Write(t.after); err != nil {
			tmp.Close()
			return ioErr("write after", err)
		}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return ioErr("fsync temp", err)
	}
	if err := tmp.Close(); err != nil {
		return ioErr("close temp", err)
	}

	if err := osReplace(tmpName, t.Path); err != nil {
		return ioErr("rename", err)
	}
	cleanupTmp = false
	syncDir(dir)
	return nil
}

func ioErr(stage string, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}

// WriteFileAtomic 原子化地将 data 写入 path，复用 Save 同样的
// 临时文件加 fsync 加 rename 协议，供绕过 Testcase 原子模型、直接操作
// 整文件字节的策略（例如全局变量重写）使用。
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".lithium-tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", contract.ErrInvariantViolation, err)
	}
	tmpName := tmp.Name()
	cleanupTmp := true
	defer func() {
		if cleanupTmp {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return ioErr("write data", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return ioErr("fsync temp", err)
	}
	if err := tmp.Close(); err != nil {
		return ioErr("close temp", err)
	}

	if err := osReplace(tmpName, path); err != nil {
		return ioErr("rename", err)
	}
	cleanupTmp = false
	syncDir(dir)
	return nil
}
