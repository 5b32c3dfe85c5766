// Package runner 实现运行控制器：加载测试用例，装配所配置的 oracle 与
// strategy，驱动约简直到不动点，并保证在每条退出路径上都释放 oracle。
package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	"lithium/internal/diag"
	"lithium/internal/oracle"
	"lithium/internal/strategy"
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// Options 携带 runner 所需、但尚未烘焙进 Oracle/Strategy/Atomizer 值本身
// 的一切。
type Options struct {
	TestcasePath string
	OracleArgs   []string
	Atomizer     testcase.Atomizer
	Strategy     strategy.Strategy
	StrategyCfg  strategy.Config
	WorkDir      string
}

// Run 加载测试用例，驱动所配置的 strategy 与 oracle 交互直到不动点，并
// 返回最终报告。无论运行如何结束（包括加载失败与 Init 失败），oracle 的
// Cleanup 总会在返回前被调用——与“唯一挂起点、资源保证释放”的模型一致：这里唯一的阻塞调用
// 在 drv.Test 内部，经由 strategy.Run 触达。每次运行都计入 op_total/
// op_duration_ms 指标。
func Run(ctx context.Context, o oracle.Oracle, opts Options, logger *diag.Logger) (report contract.ReductionReport, err error) {
	runStart := time.Now()
	defer func() {
		result := "success"
		if err != nil {
			result = "error"
		}
		diag.IncOp("runner", "run", result)
		diag.ObserveDuration("runner", "run", time.Since(runStart).Milliseconds())
	}()
	defer func() {
		_ = o.Cleanup(ctx)
	}()

	tc, err := testcase.Load(opts.TestcasePath, opts.Atomizer)
	if err != nil {
		diag.IncError("runner", "load")
		return contract.ReductionReport{}, err
	}

	workdir := opts.WorkDir
	if workdir == "" {
		workdir = defaultWorkDir()
	}
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return contract.ReductionReport{}, fmt.Errorf("create oracle workdir: %w", err)
	}

	drv := oracle.NewDriver(o, workdir)
	drv.OnCall = func(callNumber int, verdict contract.Verdict) {
		if logger == nil {
			return
		}
		logger.DebugStart("oracle", "test", "", "", map[string]string{
			"call":    fmt.Sprintf("%d", callNumber),
			"verdict": verdict.String(),
		})
	}

	if err := drv.Init(ctx, opts.OracleArgs); err != nil {
		return contract.ReductionReport{}, err
	}

	report, err = runStrategy(ctx, opts.Strategy, tc, drv, opts.StrategyCfg)
	if err != nil {
		diag.IncError("runner", "strategy")
	}
	if logger != nil {
		logger.InfoFinish("runner", "reduction finished", time.Now(), int64(report.OracleCalls))
	}
	return report, err
}

// runStrategy 以 oracle 驱动恢复 oracle panic 同样的方式恢复 strategy
// panic：strategy 的 bug 既不能让磁盘上的测试用例停在半写状态，也不能
// 让进程崩溃而不释放 oracle。
func runStrategy(ctx context.Context, s strategy.Strategy, tc *testcase.Testcase, drv *oracle.Driver, cfg strategy.Config) (report contract.ReductionReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: strategy panic: %v", contract.ErrInvariantViolation, r)
		}
	}()
	return s.Run(ctx, tc, drv, cfg)
}

func defaultWorkDir() string {
	return fmt.Sprintf("%s/lithium-%d", os.TempDir(), os.Getpid())
}
