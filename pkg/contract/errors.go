package contract

import "errors"

// 由 internal/diag.Classify 归类到退出码体系的哨兵错误。调用方一律用
// errors.Is/errors.As 判定，不做字符串匹配。
var (
	// ErrPathInvalid: 测试用例路径为空，或规范化后为 "." 或以 ".." 开头
	// （越出工作目录）。绝对路径不被拒绝。
	ErrPathInvalid = errors.New("path invalid")

	// ErrMissingDDEnd: 出现 DDBEGIN 但没有对应的 DDEND。
	ErrMissingDDEnd = errors.New("DDBEGIN without matching DDEND")

	// ErrEmptyReducibleRegion: 原子化器产出零个原子（例如 DD 标记括起的
	// 区域为空，或无标记的空文件）。
	ErrEmptyReducibleRegion = errors.New("reducible region is empty")

	// ErrNotPowerOfTwo: --min 或 --max 不是 2 的幂。
	ErrNotPowerOfTwo = errors.New("chunk size must be a power of two")

	// ErrInvariantViolation: 内部不变量被破坏的通用哨兵（例如
	// before+parts+after 往返不一致）。
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrOracleFatal: oracle 驱动本身故障（Init 失败，或连续三次基础设施
	// 失败，例如协议响应无法解析、oracle 进程无法启动；单次此类失败只按
	// Uninteresting 处理）。
	ErrOracleFatal = errors.New("oracle infrastructure failure")

	// ErrInitialNotInteresting: 首次调用 oracle 时，未经修改的输入就不
	// 满足其判据。
	ErrInitialNotInteresting = errors.New("initial testcase is not interesting")

	// ErrUnknownStrategy / ErrUnknownAtomizer: --strategy 或原子化方式
	// 选择的名字不在注册表中。
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrUnknownAtomizer = errors.New("unknown atomizer")
)
