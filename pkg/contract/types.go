package contract

// FileID: 规范化、跨平台一致的路径标识，指代一次运行所操作的唯一测试
// 用例文件。
type FileID string

// Verdict: oracle 对候选测试用例的布尔判定。不存在第三态：外部测试的
// 超时与崩溃，在 strategy 观察到之前已由 oracle 驱动映射为 Uninteresting。
type Verdict int

const (
	Uninteresting Verdict = iota
	Interesting
)

func (v Verdict) String() string {
	if v == Interesting {
		return "interesting"
	}
	return "uninteresting"
}

// RepeatPolicy: 控制某个 chunk size 在一轮删除了至少一个原子之后是否
// 重试。
type RepeatPolicy int

const (
	// RepeatNever: 一轮结束后该 chunk size 永不重试。
	RepeatNever RepeatPolicy = iota
	// RepeatLast: 仅当 chunk_size 已降到 chunk_min 时才重试。
	RepeatLast
	// RepeatAlways: 只要上一轮删除了至少一个原子，任意 chunk size 都重试。
	RepeatAlways
)

// ParseRepeatPolicy 将 --repeat 的取值映射为 RepeatPolicy。
func ParseRepeatPolicy(s string) (RepeatPolicy, error) {
	switch s {
	case "always":
		return RepeatAlways, nil
	case "last":
		return RepeatLast, nil
	case "never":
		return RepeatNever, nil
	default:
		return 0, ErrInvariantViolation
	}
}

func (p RepeatPolicy) String() string {
	switch p {
	case RepeatAlways:
		return "always"
	case RepeatNever:
		return "never"
	default:
		return "last"
	}
}

// Chunk: Testcase parts 中的半开下标区间 [Lo, Hi)。
type Chunk struct {
	Lo, Hi int
}

// Len 返回该区间跨越的原子数。
func (c Chunk) Len() int { return c.Hi - c.Lo }

// Empty 报告该区间是否不跨越任何原子。
func (c Chunk) Empty() bool { return c.Hi <= c.Lo }

// ReductionReport: 一次完整 strategy 运行的汇总。
type ReductionReport struct {
	Strategy       string
	InitialAtoms   int
	FinalAtoms     int
	OracleCalls    int
	AnyRemoved     bool
	InitialVerdict Verdict
}
