package strategy

import (
	"context"
	"fmt"

	"lithium/internal/oracle"
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// CheckOnly 对输入只调用一次 oracle.Test 并报告判定结果，从不修改文件。
// 用于冒烟测试一个判据：判定为 Uninteresting 时以 ErrInitialNotInteresting
// 返回，使其退出码与其他策略在初始不有趣时保持一致（$? 用来表达结果）。
type CheckOnly struct{}

func (CheckOnly) Run(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, cfg Config) (contract.ReductionReport, error) {
	if err := tc.Save(); err != nil {
		return contract.ReductionReport{}, err
	}
	verdict, err := drv.Test(ctx)
	if err != nil {
		return contract.ReductionReport{}, err
	}
	report := contract.ReductionReport{
		Strategy:       "check-only",
		InitialAtoms:   tc.Len(),
		FinalAtoms:     tc.Len(),
		OracleCalls:    drv.Calls(),
		AnyRemoved:     false,
		InitialVerdict: verdict,
	}
	if verdict != contract.Interesting {
		return report, fmt.Errorf("%w", contract.ErrInitialNotInteresting)
	}
	return report, nil
}
