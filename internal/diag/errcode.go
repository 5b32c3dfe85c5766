package diag

import (
	"context"
	"errors"
	"os"
	"time"

	"lithium/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/退出码映射，与具体哨兵错误解耦。
type Code string

const (
	CodeUnknown        Code = "unknown"
	CodeConfig         Code = "config"
	CodeLoad           Code = "load"
	CodeNotInteresting Code = "not_interesting"
	CodeOracleFatal    Code = "oracle_fatal"
	CodeTransient      Code = "transient"
	CodeIO             Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeTransient
	}
	// 配置相关：未知策略/原子化器/非二的幂边界
	if errors.Is(err, contract.ErrUnknownStrategy) ||
		errors.Is(err, contract.ErrUnknownAtomizer) ||
		errors.Is(err, contract.ErrNotPowerOfTwo) {
		return CodeConfig
	}
	// 用例加载/不变量
	if errors.Is(err, contract.ErrPathInvalid) ||
		errors.Is(err, contract.ErrMissingDDEnd) ||
		errors.Is(err, contract.ErrEmptyReducibleRegion) ||
		errors.Is(err, contract.ErrInvariantViolation) {
		return CodeLoad
	}
	// 初始用例本身不 interesting
	if errors.Is(err, contract.ErrInitialNotInteresting) {
		return CodeNotInteresting
	}
	// oracle 连续失败触发的致命错误
	if errors.Is(err, contract.ErrOracleFatal) {
		return CodeOracleFatal
	}
	// I/O
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// ExitCode 将分类代码映射为进程退出码：
// 0 成功，1 初始用例不 interesting，2 配置/加载错误，3 其余（oracle 致命/瞬时/IO）。
func ExitCode(c Code) int {
	switch c {
	case CodeUnknown:
		return 0
	case CodeNotInteresting:
		return 1
	case CodeConfig, CodeLoad:
		return 2
	default:
		return 3
	}
}

// NowUTC 返回 RFC3339 UTC 时间字符串（用于结构化日志字段 ts）。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
