// Package oracle 定义“有趣性” oracle 契约，以及调用它的驱动：驱动拥有
// 每次调用的临时工作区，以及基础设施失败策略。
package oracle

import (
	"context"
	"fmt"
	"time"

	"lithium/internal/diag"
	"lithium/pkg/contract"
)

// Oracle 包装用户提供的有趣性判据。Init 在任何 Test 调用之前只调用一次，
// 失败即致命。Test 针对每个已落盘的候选测试用例调用一次，调用之间不得
// 共享会影响判定的状态。Cleanup 在运行结束时恰好调用一次，无论运行如何
// 结束。
type Oracle interface {
	Init(ctx context.Context, args []string) error
	Test(ctx context.Context, tempdirPrefix string) (contract.Verdict, error)
	Cleanup(ctx context.Context) error
}

// Driver 包装一个 Oracle，持有为每次调用铸造新鲜 tempdir_prefix 的计数器，
// 以及基础设施失败“连续三次即中止”的策略。
type Driver struct {
	oracle              Oracle
	workdir             string
	counter             int
	consecutiveFailures int

	// OnCall 若非空，则在每次 Test 调用、得出判定之后被调用，用于进度
	// 日志。不得修改 driver。
	OnCall func(callNumber int, verdict contract.Verdict)
}

// NewDriver 围绕 oracle 构造一个 Driver，在 workdir（经 contract.
// NormalizeFileID 规范化）下铸造 tempdir 前缀。
func NewDriver(o Oracle, workdir string) *Driver {
	return &Driver{oracle: o, workdir: string(contract.NormalizeFileID(workdir))}
}

// Calls 报告目前为止已发生的 Test 调用次数。
func (d *Driver) Calls() int { return d.counter }

// Init 调用被包装 oracle 的 Init。这里的失败永远是致命的。
func (d *Driver) Init(ctx context.Context, args []string) error {
	if err := d.oracle.Init(ctx, args); err != nil {
		diag.IncError("oracle", "init")
		return fmt.Errorf("%w: init: %v", contract.ErrOracleFatal, err)
	}
	return nil
}

// Test 铸造一个新鲜的 tempdir 前缀并调用被包装的 oracle。从被包装 oracle
// 中恢复的异常/panic 被视为 Uninteresting，不会中止运行，除非连续发生
// 三次这样的基础设施失败，此时返回 ErrOracleFatal。每次调用都计入
// op_total/op_duration_ms 指标。
func (d *Driver) Test(ctx context.Context) (verdict contract.Verdict, err error) {
	d.counter++
	prefix := fmt.Sprintf("%s/%d-", d.workdir, d.counter)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			verdict, err = d.classifyFailure(fmt.Errorf("oracle panic: %v", r))
		}
		result := "success"
		if err != nil {
			result = "error"
		}
		diag.IncOp("oracle", "test", result)
		diag.ObserveDuration("oracle", "test", time.Since(start).Milliseconds())
	}()

	v, testErr := d.oracle.Test(ctx, prefix)
	if testErr != nil {
		verdict, err = d.classifyFailure(testErr)
	} else {
		d.consecutiveFailures = 0
		verdict, err = v, nil
	}
	if d.OnCall != nil {
		d.OnCall(d.counter, verdict)
	}
	return verdict, err
}

func (d *Driver) classifyFailure(cause error) (contract.Verdict, error) {
	d.consecutiveFailures++
	diag.IncError("oracle", "test")
	if d.consecutiveFailures >= 3 {
		return contract.Uninteresting, fmt.Errorf("%w: %v", contract.ErrOracleFatal, cause)
	}
	return contract.Uninteresting, nil
}

// Cleanup 无条件调用被包装 oracle 的 Cleanup。
func (d *Driver) Cleanup(ctx context.Context) error {
	return d.oracle.Cleanup(ctx)
}
